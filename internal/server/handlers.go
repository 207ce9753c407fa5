package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/dashcsv/internal/derive"
	"github.com/KaramelBytes/dashcsv/internal/figure"
	"github.com/KaramelBytes/dashcsv/internal/history"
	"github.com/KaramelBytes/dashcsv/internal/table"
)

type deriveFunc func(*table.Table, string) figure.Figure

var (
	primaryChart deriveFunc = derive.PrimaryChart
	pieChart     deriveFunc = derive.PieChart
)

type errorResponse struct {
	Error string `json:"error"`
}

type pageData struct {
	Version     string
	MaxUploadMB int64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.session(w, r)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := pageData{Version: s.opts.Version, MaxUploadMB: s.opts.MaxUploadBytes >> 20}
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Printf("template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// uploadRequest mirrors the upload widget payload; a null contents field
// means the widget was cleared.
type uploadRequest struct {
	Contents *string `json:"contents"`
	FileName *string `json:"filename"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, s.bodyLimit(r))

	t, cleared, err := s.ingestRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, errFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
			err = fmt.Errorf("file too large (limit %d MB)", s.opts.MaxUploadBytes>>20)
		}
		s.logger.Printf("upload rejected for session %s: %v", sess.ID, err)
		// The previous table stays in place.
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	if cleared {
		sess.Clear()
		writeJSON(w, http.StatusOK, table.SelectionFor(nil))
		return
	}
	sess.Replace(t)
	if s.history != nil {
		entry := history.Entry{SessionID: sess.ID, FileName: t.Name(), Rows: t.Rows(), Columns: t.Names(), UploadedAt: time.Now()}
		if _, err := s.history.Record(r.Context(), entry); err != nil {
			s.logger.Printf("record upload: %v", err)
		}
	}
	if s.opts.Debug {
		s.logger.Printf("session %s ingested %s (%d rows, %d columns)", sess.ID, t.Name(), t.Rows(), len(t.Names()))
	}
	writeJSON(w, http.StatusOK, table.SelectionFor(t))
}

// errFileTooLarge reports a decoded file above MaxUploadBytes.
var errFileTooLarge = errors.New("file too large")

// bodyLimit caps the request body. JSON uploads carry base64, which is 4/3 of
// the file size, and both encodings need room for their envelope.
func (s *Server) bodyLimit(r *http.Request) int64 {
	const envelope = 64 << 10
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return s.opts.MaxUploadBytes + envelope
	}
	return s.opts.MaxUploadBytes/3*4 + 4 + envelope
}

func (s *Server) ingestRequest(r *http.Request) (*table.Table, bool, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
			return nil, false, fmt.Errorf("parse form: %w", err)
		}
		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("read file: %w", err)
		}
		defer file.Close()
		if header.Size > s.opts.MaxUploadBytes {
			return nil, false, errFileTooLarge
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			return nil, false, fmt.Errorf("read file: %w", err)
		}
		t, err := table.Decode(header.Filename, header.Header.Get("Content-Type"), buf.Bytes(), s.opts.Ingest)
		return t, false, err
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, false, fmt.Errorf("decode request: %w", err)
	}
	if req.Contents == nil {
		return nil, true, nil
	}
	// DecodedLen counts padding, so allow two bytes of slack.
	if _, payload, ok := strings.Cut(*req.Contents, ","); ok {
		if n := base64.StdEncoding.DecodedLen(len(strings.TrimSpace(payload))); int64(n) > s.opts.MaxUploadBytes+2 {
			return nil, false, errFileTooLarge
		}
	}
	up := table.Upload{Contents: *req.Contents}
	if req.FileName != nil {
		up.FileName = *req.FileName
	}
	t, err := table.Ingest(up, s.opts.Ingest)
	return t, false, err
}

func (s *Server) handleFigure(fn deriveFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := s.session(w, r).Table()
		writeJSON(w, http.StatusOK, fn(t, r.URL.Query().Get("column")))
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	t := s.session(w, r).Table()
	writeJSON(w, http.StatusOK, derive.Statistics(t, r.URL.Query().Get("column")))
}

func (s *Server) handlePNG(fn deriveFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := s.session(w, r).Table()
		fig := fn(t, r.URL.Query().Get("column"))
		var buf bytes.Buffer
		if err := figure.Render(&buf, fig, s.opts.Render); err != nil {
			if errors.Is(err, figure.ErrNoData) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			s.logger.Printf("render: %v", err)
			http.Error(w, "Failed to render chart", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(buf.Bytes())
	}
}

type historyResponse struct {
	Enabled bool            `json:"enabled"`
	Uploads []history.Entry `json:"uploads"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if s.history == nil {
		writeJSON(w, http.StatusOK, historyResponse{Uploads: []history.Entry{}})
		return
	}
	entries, err := s.history.Recent(r.Context(), sess.ID, 20)
	if err != nil {
		s.logger.Printf("history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load history"})
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Enabled: true, Uploads: entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   s.opts.Version,
		"sessions":  s.sessions.Len(),
	})
}

// writeJSON encodes before writing the header so an encode failure becomes a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
