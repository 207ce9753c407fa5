package table

import (
	"path/filepath"
	"strings"
)

// Decoder turns raw file bytes into header-first records.
type Decoder interface {
	CanDecode(filename, mime string) bool
	Records(content []byte, filename string, opt Options) ([][]string, error)
}

var registry []Decoder

// Register adds a decoder implementation to the registry.
func Register(d Decoder) {
	registry = append(registry, d)
}

// lookup picks the first decoder claiming the file. Anything text-like or
// unlabelled falls back to CSV, which is how browsers label many CSV uploads.
func lookup(filename, mime string) Decoder {
	for _, d := range registry {
		if d.CanDecode(filename, mime) {
			return d
		}
	}
	switch {
	case mime == "", strings.HasPrefix(mime, "text/"),
		mime == "application/octet-stream", mime == "application/vnd.ms-excel":
		if !binaryExt[strings.ToLower(filepath.Ext(filename))] {
			return csvDecoder{}
		}
	}
	return nil
}

var binaryExt = map[string]bool{
	".xls": true, ".pdf": true, ".zip": true, ".png": true, ".jpg": true, ".gz": true,
}

func init() {
	Register(xlsxDecoder{})
	Register(csvDecoder{})
}
