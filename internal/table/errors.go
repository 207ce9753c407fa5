package table

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyUpload indicates there were no bytes or no header row.
	ErrEmptyUpload = errors.New("empty upload")
	// ErrEncoding indicates a bad data URI, bad base64, or non UTF-8 text.
	ErrEncoding = errors.New("invalid encoding")
	// ErrMalformed indicates the content could not be parsed as a table.
	ErrMalformed = errors.New("malformed table")
	// ErrTooManyRows indicates the row limit was exceeded.
	ErrTooManyRows = errors.New("too many rows")
	// ErrUnsupported indicates no decoder accepts the file.
	ErrUnsupported = errors.New("unsupported file type")
)

// IngestError records which stage of ingestion failed for which file.
type IngestError struct {
	File  string
	Stage string // decode|parse|build
	Err   error
}

func (e *IngestError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("ingest %s: %s: %v", e.File, e.Stage, e.Err)
	}
	return fmt.Sprintf("ingest: %s: %v", e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }
