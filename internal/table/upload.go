package table

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Upload is what the upload widget sends: a data URI and the original file
// name. A nil upload means the widget was cleared.
type Upload struct {
	Contents string `json:"contents"`
	FileName string `json:"filename"`
}

// DecodeDataURI splits "data:<mime>;base64,<payload>" and decodes the payload.
func DecodeDataURI(contents string) (mime string, raw []byte, err error) {
	prefix, payload, ok := strings.Cut(contents, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data URI separator", ErrEncoding)
	}
	prefix = strings.TrimSpace(prefix)
	if !strings.HasPrefix(prefix, "data:") {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrEncoding)
	}
	meta := strings.TrimPrefix(prefix, "data:")
	params := strings.Split(meta, ";")
	mime = strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 data URIs are accepted", ErrEncoding)
	}
	raw, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", nil, fmt.Errorf("%w: base64: %v", ErrEncoding, err)
	}
	return mime, raw, nil
}

// EncodeDataURI is the inverse of DecodeDataURI.
func EncodeDataURI(mime string, raw []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
