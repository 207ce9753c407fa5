package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func csvUpload(name, body string) Upload {
	return Upload{Contents: EncodeDataURI("text/csv", []byte(body)), FileName: name}
}

func TestIngestInfersKinds(t *testing.T) {
	body := "category,values,note,score\n" +
		"A,10,first,1.5\n" +
		"B,5,,2\n" +
		"A,1,third,NA\n"
	tb, err := Ingest(csvUpload("sales.csv", body), DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if tb.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", tb.Rows())
	}
	if got := strings.Join(tb.Names(), ","); got != "category,values,note,score" {
		t.Fatalf("names = %q", got)
	}
	want := map[string]Kind{"category": Categorical, "values": Numeric, "note": Categorical, "score": Numeric}
	for name, k := range want {
		c, ok := tb.Column(name)
		if !ok {
			t.Fatalf("missing column %q", name)
		}
		if c.Kind != k {
			t.Fatalf("%s kind = %v, want %v", name, c.Kind, k)
		}
	}
	note, _ := tb.Column("note")
	if !note.IsMissing(1) || note.IsMissing(0) {
		t.Fatalf("note missing mask wrong: %v", note.Missing)
	}
	score, _ := tb.Column("score")
	if !math.IsNaN(score.Numbers[2]) {
		t.Fatalf("expected NA to be missing, got %v", score.Numbers[2])
	}
	if got := score.Present(); len(got) != 2 || got[0] != 1.5 || got[1] != 2 {
		t.Fatalf("present = %v", got)
	}
	v, ok := tb.Values()
	if !ok || v.Name != ValuesColumn {
		t.Fatalf("values column not resolved")
	}
}

func TestIngestTextValuesColumnIsNotAggregated(t *testing.T) {
	tb, err := Ingest(csvUpload("x.csv", "category,values\nA,high\nB,low\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, ok := tb.Values(); ok {
		t.Fatalf("text values column must not be used for sums")
	}
}

func TestIngestHeaderOnlyIsEmptyTable(t *testing.T) {
	tb, err := Ingest(csvUpload("h.csv", "a,b\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !tb.Empty() {
		t.Fatalf("expected empty table")
	}
	if len(tb.Names()) != 2 {
		t.Fatalf("expected two columns, got %v", tb.Names())
	}
}

func TestIngestNormalizesHeader(t *testing.T) {
	tb, err := Ingest(csvUpload("h.csv", "a,,a,a_2\n1,2,3,4\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got := strings.Join(tb.Names(), ","); got != "a,Column_2,a_2,a_2_2" {
		t.Fatalf("names = %q", got)
	}
}

func TestIngestRaggedRowsArePadded(t *testing.T) {
	tb, err := Ingest(csvUpload("r.csv", "a,b,c\n1,x\n2,y,z,extra\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	c, _ := tb.Column("c")
	if !c.IsMissing(0) || c.Labels[1] != "z" {
		t.Fatalf("unexpected column c: %+v", c)
	}
}

func TestIngestErrors(t *testing.T) {
	cases := []struct {
		name string
		up   Upload
		want error
	}{
		{"empty contents", Upload{FileName: "a.csv"}, ErrEmptyUpload},
		{"no separator", Upload{Contents: "data:text/csv;base64"}, ErrEncoding},
		{"not base64 uri", Upload{Contents: "data:text/csv,a,b"}, ErrEncoding},
		{"bad base64", Upload{Contents: "data:text/csv;base64,@@@"}, ErrEncoding},
		{"invalid utf8", Upload{Contents: EncodeDataURI("text/csv", []byte{0xff, 0xfe, 'a'}), FileName: "a.csv"}, ErrEncoding},
		{"empty payload", Upload{Contents: "data:text/csv;base64,", FileName: "a.csv"}, ErrEmptyUpload},
		{"bad quotes", csvUpload("q.csv", "a,b\n\"x,1\n"), ErrMalformed},
		{"binary type", Upload{Contents: EncodeDataURI("application/pdf", []byte("%PDF")), FileName: "a.pdf"}, ErrUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Ingest(tc.up, DefaultOptions())
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var ie *IngestError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *IngestError, got %T", err)
			}
		})
	}
}

func TestIngestMaxRows(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 2
	_, err := Ingest(csvUpload("m.csv", "a\n1\n2\n3\n"), opt)
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("err = %v, want ErrTooManyRows", err)
	}
}

func TestIngestStripsBOMAndReadsTSV(t *testing.T) {
	tb, err := Ingest(csvUpload("t.tsv", "\xef\xbb\xbfname\tqty\nx\t3\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if tb.Names()[0] != "name" {
		t.Fatalf("BOM not stripped: %q", tb.Names()[0])
	}
	q, _ := tb.Column("qty")
	if q.Kind != Numeric || q.Numbers[0] != 3 {
		t.Fatalf("unexpected qty: %+v", q)
	}
}

func TestIngestXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{{"fruit", "values"}, {"apple", 4}, {"pear", 6}, {"apple", 1}}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	tb, err := Ingest(Upload{Contents: EncodeDataURI(xlsxMime, buf.Bytes()), FileName: "fruit.xlsx"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if tb.Rows() != 3 {
		t.Fatalf("rows = %d", tb.Rows())
	}
	if _, ok := tb.Values(); !ok {
		t.Fatalf("expected numeric values column")
	}
}

func TestReadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "d.csv")
	if err := os.WriteFile(p, []byte("x\n1\n2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tb, err := ReadFile(p, DefaultOptions())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tb.Name() != "d.csv" || tb.Rows() != 2 {
		t.Fatalf("unexpected table %q rows=%d", tb.Name(), tb.Rows())
	}
}

func TestSelectionFor(t *testing.T) {
	sel := SelectionFor(nil)
	if len(sel.Options) != 0 || sel.Value != nil || sel.Style["display"] != "none" {
		t.Fatalf("unexpected empty selection: %+v", sel)
	}
	tb, err := New("x", NumericColumn("n", 1), CategoricalColumn("c", "a"))
	if err != nil {
		t.Fatal(err)
	}
	sel = SelectionFor(tb)
	if len(sel.Options) != 2 || sel.Value == nil || *sel.Value != "n" || sel.Style["display"] != "block" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestNewRejectsMismatchedColumns(t *testing.T) {
	if _, err := New("x", NumericColumn("a", 1, 2), CategoricalColumn("b", "x")); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if _, err := New("x", NumericColumn("a", 1), NumericColumn("a", 2)); err == nil {
		t.Fatalf("expected duplicate column error")
	}
}

func TestIngestInfinityIsMissing(t *testing.T) {
	tb, err := Ingest(csvUpload("inf.csv", "x\n1\ninf\n3\n-Infinity\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	x, _ := tb.Column("x")
	if x.Kind != Numeric {
		t.Fatalf("kind = %v, want numeric", x.Kind)
	}
	if !x.IsMissing(1) || !x.IsMissing(3) || x.IsMissing(0) {
		t.Fatalf("missing mask wrong: %v", x.Numbers)
	}
	if got := x.Present(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("present = %v", got)
	}
	if c := NumericColumn("y", math.Inf(1), 2); !c.IsMissing(0) {
		t.Fatalf("NumericColumn kept +Inf: %v", c.Numbers)
	}
}

func TestIngestBoolColumnIsNumeric(t *testing.T) {
	tb, err := Ingest(csvUpload("flags.csv", "flag\ntrue\nfalse\ntrue\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	flag, _ := tb.Column("flag")
	if flag.Kind != Numeric {
		t.Fatalf("kind = %v, want numeric", flag.Kind)
	}
	if got := flag.Present(); len(got) != 3 || got[0] != 1 || got[1] != 0 || got[2] != 1 {
		t.Fatalf("present = %v", got)
	}
}
