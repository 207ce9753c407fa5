// Package server exposes the dashboard over HTTP: the page itself, the
// upload endpoint that feeds the column selector, and the chart and
// statistics endpoints that read the caller's session table.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/KaramelBytes/dashcsv/internal/figure"
	"github.com/KaramelBytes/dashcsv/internal/history"
	"github.com/KaramelBytes/dashcsv/internal/session"
	"github.com/KaramelBytes/dashcsv/internal/table"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "dashcsv_session"

// Options configures a Server.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	SessionTTL     time.Duration
	Ingest         table.Options
	Render         figure.RenderOptions
	Debug          bool
	Version        string
}

// Server wires sessions, ingestion and derivation to HTTP routes.
type Server struct {
	opts     Options
	sessions *session.Store
	history  *history.Store
	tmpl     *template.Template
	logger   *log.Logger
	mux      *http.ServeMux
}

// New builds a server. hist may be nil to disable upload history.
func New(opts Options, hist *history.Store) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		opts:     opts,
		sessions: session.NewStore(opts.SessionTTL),
		history:  hist,
		tmpl:     template.Must(template.ParseFS(templateFS, "templates/*.html")),
		logger:   log.New(os.Stderr, "[server] ", log.LstdFlags),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /api/upload", s.handleUpload)
	s.mux.HandleFunc("GET /api/figure/bar", s.handleFigure(primaryChart))
	s.mux.HandleFunc("GET /api/figure/pie", s.handleFigure(pieChart))
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /chart/bar.png", s.handlePNG(primaryChart))
	s.mux.HandleFunc("GET /chart/pie.png", s.handlePNG(pieChart))
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the root handler, with request logging in debug mode.
func (s *Server) Handler() http.Handler {
	if s.opts.Debug {
		return s.logRequests(s.mux)
	}
	return s.mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.sessions.Run(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	s.logger.Printf("stopped")
	return nil
}

// session resolves the caller's session from the cookie, starting a new one
// when it is missing or expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions.Get(c.Value); ok {
			return sess
		}
	}
	sess := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Microsecond))
	})
}
