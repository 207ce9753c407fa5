package table

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type xlsxDecoder struct{}

func (xlsxDecoder) CanDecode(filename, mime string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx") || mime == xlsxMime
}

// Records reads the first sheet of the workbook.
func (xlsxDecoder) Records(content []byte, _ string, _ Options) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrMalformed, sheet, err)
	}
	return rows, nil
}
