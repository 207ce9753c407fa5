package table

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Options controls ingestion.
type Options struct {
	// MaxRows rejects uploads with more data rows; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// NaNValues are cell contents treated as missing.
	NaNValues []string
}

// DefaultOptions returns reasonable defaults for uploads.
func DefaultOptions() Options {
	return Options{
		MaxRows:   100000,
		NaNValues: []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"},
	}
}

// Ingest decodes an upload and builds a fresh Table from it.
func Ingest(up Upload, opt Options) (*Table, error) {
	if strings.TrimSpace(up.Contents) == "" {
		return nil, &IngestError{File: up.FileName, Stage: "decode", Err: ErrEmptyUpload}
	}
	mt, raw, err := DecodeDataURI(up.Contents)
	if err != nil {
		return nil, &IngestError{File: up.FileName, Stage: "decode", Err: err}
	}
	return Decode(up.FileName, mt, raw, opt)
}

// ReadFile ingests a file from disk.
func ReadFile(path string, opt Options) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	name := filepath.Base(path)
	mt, _, _ := strings.Cut(mime.TypeByExtension(filepath.Ext(name)), ";")
	return Decode(name, mt, b, opt)
}

// Decode parses raw bytes with the decoder matching the file name or media
// type and builds a Table.
func Decode(filename, mimeType string, raw []byte, opt Options) (*Table, error) {
	if len(raw) == 0 {
		return nil, &IngestError{File: filename, Stage: "decode", Err: ErrEmptyUpload}
	}
	dec := lookup(filename, mimeType)
	if dec == nil {
		return nil, &IngestError{File: filename, Stage: "decode", Err: fmt.Errorf("%w: %s", ErrUnsupported, describeType(filename, mimeType))}
	}
	records, err := dec.Records(raw, filename, opt)
	if err != nil {
		return nil, &IngestError{File: filename, Stage: "parse", Err: err}
	}
	t, err := fromRecords(filename, records, opt)
	if err != nil {
		return nil, &IngestError{File: filename, Stage: "build", Err: err}
	}
	return t, nil
}

func describeType(filename, mimeType string) string {
	if mimeType != "" {
		return mimeType
	}
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	return "unknown"
}

func fromRecords(name string, records [][]string, opt Options) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyUpload
	}
	header := normalizeHeader(records[0])
	if len(header) == 0 {
		return nil, ErrEmptyUpload
	}
	body := records[1:]
	if opt.MaxRows > 0 && len(body) > opt.MaxRows {
		return nil, fmt.Errorf("%w: %d rows (limit %d)", ErrTooManyRows, len(body), opt.MaxRows)
	}
	ncol := len(header)
	nan := make(map[string]bool, len(opt.NaNValues))
	for _, v := range opt.NaNValues {
		nan[v] = true
	}
	// Missing cells become "NaN" so gota's type detection skips them.
	raw := make([][]string, len(body))
	norm := make([][]string, 0, len(body)+1)
	norm = append(norm, header)
	for i, rec := range body {
		row := make([]string, ncol)
		copy(row, rec)
		raw[i] = row
		cells := make([]string, ncol)
		for j, v := range row {
			if nan[strings.TrimSpace(v)] {
				cells[j] = "NaN"
			} else {
				cells[j] = v
			}
		}
		norm = append(norm, cells)
	}

	if len(body) == 0 {
		cols := make([]Column, ncol)
		for j, h := range header {
			cols[j] = Column{Name: h, Kind: Categorical, Labels: []string{}, Missing: []bool{}}
		}
		return New(name, cols...)
	}

	df := dataframe.LoadRecords(norm,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, df.Err)
	}
	names := df.Names()
	if len(names) != ncol {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", ErrMalformed, ncol, len(names))
	}
	cols := make([]Column, ncol)
	for j := range header {
		s := df.Col(names[j])
		switch s.Type() {
		case series.Int, series.Float, series.Bool:
			// "inf" cells parse as floats; they are kept as missing.
			cols[j] = Column{Name: header[j], Kind: Numeric, Numbers: finiteOrNaN(s.Float())}
		default:
			labels := make([]string, len(raw))
			missing := make([]bool, len(raw))
			for i := range raw {
				labels[i] = raw[i][j]
				missing[i] = nan[strings.TrimSpace(raw[i][j])]
				if missing[i] {
					labels[i] = ""
				}
			}
			cols[j] = Column{Name: header[j], Kind: Categorical, Labels: labels, Missing: missing}
		}
	}
	return New(name, cols...)
}

// normalizeHeader trims names, fills blanks with Column_N and makes
// duplicates unique with a numeric suffix.
func normalizeHeader(rec []string) []string {
	out := make([]string, len(rec))
	seen := make(map[string]bool, len(rec))
	for i, h := range rec {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		base := h
		for k := 2; seen[h]; k++ {
			h = fmt.Sprintf("%s_%d", base, k)
		}
		seen[h] = true
		out[i] = h
	}
	return out
}
