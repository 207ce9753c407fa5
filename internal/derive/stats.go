package derive

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/dashcsv/internal/table"
)

// NoData is the statistics message for the no-data condition.
const NoData = "no data available."

// Item is one labelled line of the statistics list.
type Item struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary is either a message or a list of statistics for one column.
type Summary struct {
	Column  string `json:"column,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
	Items   []Item `json:"items,omitempty"`
}

// Lines renders the summary as "Label : value" lines.
func (s Summary) Lines() []string {
	if len(s.Items) == 0 {
		return []string{s.Message}
	}
	out := make([]string, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Label + " : " + it.Value
	}
	return out
}

func (s Summary) String() string { return strings.Join(s.Lines(), "\n") }

// Statistics describes the selected column: count, mean, median and sample
// standard deviation for numeric columns; count, distinct values and the
// most frequent value for categorical ones.
func Statistics(t *table.Table, col string) Summary {
	c, ok := selected(t, col)
	if !ok {
		return Summary{Message: NoData}
	}
	sum := Summary{Column: col, Kind: c.Kind.String()}
	if c.Kind == table.Numeric {
		present := c.Present()
		mean, median, std := math.NaN(), math.NaN(), math.NaN()
		if len(present) > 0 {
			s := series.Floats(present)
			mean = s.Mean()
			median = s.Median()
			if len(present) > 1 {
				std = s.StdDev()
			}
		}
		sum.Items = []Item{
			{Label: "Count", Value: strconv.Itoa(len(present))},
			{Label: "Mean", Value: fixed2(mean)},
			{Label: "Median", Value: fixed2(median)},
			{Label: "Std", Value: fixed2(std)},
		}
		return sum
	}
	count := 0
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			count++
		}
	}
	freq := Frequencies(t, col)
	top, topCount := "nan", "nan"
	if len(freq) > 0 {
		top = freq[0].Category
		topCount = formatNumber(freq[0].Value)
	}
	sum.Items = []Item{
		{Label: "Count", Value: strconv.Itoa(count)},
		{Label: "Unique values", Value: strconv.Itoa(len(freq))},
		{Label: "Most frequent", Value: top},
		{Label: "Frequency", Value: topCount},
	}
	return sum
}

func fixed2(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func cellLabel(c table.Column, i int) string {
	if c.Kind == table.Numeric {
		return formatNumber(c.Numbers[i])
	}
	return c.Labels[i]
}
