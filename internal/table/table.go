// Package table holds the in-memory representation of an uploaded dataset
// and the ingestion pipeline that builds it.
package table

import (
	"fmt"
	"math"
)

// ValuesColumn is the column name whose numeric contents are summed per
// category by the aggregated views.
const ValuesColumn = "values"

// Kind tags a column as numeric or categorical. It is assigned once at
// ingestion and never re-inferred.
type Kind int

const (
	Categorical Kind = iota
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a single named column. Numeric columns use Numbers (NaN marks a
// missing cell); categorical columns use Labels with a parallel Missing mask.
type Column struct {
	Name    string
	Kind    Kind
	Numbers []float64
	Labels  []string
	Missing []bool
}

// Len returns the number of cells in the column.
func (c Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Numbers)
	}
	return len(c.Labels)
}

// IsMissing reports whether row i holds no value.
func (c Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return !finite(c.Numbers[i])
	}
	return i < len(c.Missing) && c.Missing[i]
}

// Present returns the non-missing numbers of a numeric column.
func (c Column) Present() []float64 {
	out := make([]float64, 0, len(c.Numbers))
	for _, v := range c.Numbers {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out
}

// NumericColumn builds a numeric column; NaN and infinite entries are missing.
func NumericColumn(name string, vals ...float64) Column {
	return Column{Name: name, Kind: Numeric, Numbers: finiteOrNaN(vals)}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// finiteOrNaN copies vals with infinities replaced by NaN.
func finiteOrNaN(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// CategoricalColumn builds a categorical column; empty labels are missing.
func CategoricalColumn(name string, labels ...string) Column {
	missing := make([]bool, len(labels))
	for i, l := range labels {
		missing[i] = l == ""
	}
	return Column{Name: name, Kind: Categorical, Labels: labels, Missing: missing}
}

// Table is an immutable, ordered set of equally long columns. A new upload
// produces a new Table; nothing mutates one after New returns.
type Table struct {
	name   string
	cols   []Column
	index  map[string]int
	values int
	rows   int
}

// New assembles a table. Column names must be unique and all columns must
// have the same length.
func New(name string, cols ...Column) (*Table, error) {
	t := &Table{name: name, cols: cols, index: make(map[string]int, len(cols)), values: -1}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		if c.Name == ValuesColumn && c.Kind == Numeric {
			t.values = i
		}
	}
	return t, nil
}

// Name returns the source file name the table was ingested from.
func (t *Table) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Empty reports whether there is nothing to derive from.
func (t *Table) Empty() bool { return t == nil || t.rows == 0 || len(t.cols) == 0 }

// Names returns the column names in file order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	if t == nil {
		return Column{}, false
	}
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// Values returns the numeric "values" column when the table has one.
func (t *Table) Values() (Column, bool) {
	if t == nil || t.values < 0 {
		return Column{}, false
	}
	return t.cols[t.values], true
}
