// Package derive turns a table and a selected column into the dashboard's
// outputs: the primary chart, the pie chart and the statistics summary.
// Every function here is pure in its arguments.
package derive

import (
	"sort"

	"github.com/KaramelBytes/dashcsv/internal/table"
)

// Bucket is one category of an aggregated view.
type Bucket struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// GroupSums sums the table's values column per category of col, sorted by
// descending sum. Rows with a missing category are dropped and missing values
// contribute nothing. ok is false when the table has no values column or col
// is not categorical.
func GroupSums(t *table.Table, col string) (buckets []Bucket, ok bool) {
	c, found := t.Column(col)
	if !found || c.Kind != table.Categorical {
		return nil, false
	}
	vals, found := t.Values()
	if !found {
		return nil, false
	}
	sums := map[string]float64{}
	for i, label := range c.Labels {
		if c.IsMissing(i) {
			continue
		}
		if _, seen := sums[label]; !seen {
			sums[label] = 0
		}
		if !vals.IsMissing(i) {
			sums[label] += vals.Numbers[i]
		}
	}
	out := make([]Bucket, 0, len(sums))
	for k, v := range sums {
		out = append(out, Bucket{Category: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Category < out[j].Category
		}
		return out[i].Value > out[j].Value
	})
	return out, true
}

// Frequencies counts occurrences of each distinct non-missing value of col,
// sorted by descending count with ties in order of first appearance.
func Frequencies(t *table.Table, col string) []Bucket {
	c, found := t.Column(col)
	if !found {
		return nil
	}
	index := map[string]int{}
	var out []Bucket
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		label := cellLabel(c, i)
		if j, seen := index[label]; seen {
			out[j].Value++
			continue
		}
		index[label] = len(out)
		out = append(out, Bucket{Category: label, Value: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

func split(b []Bucket) (cats []string, vals []float64) {
	cats = make([]string, len(b))
	vals = make([]float64, len(b))
	for i, x := range b {
		cats[i] = x.Category
		vals[i] = x.Value
	}
	return cats, vals
}
