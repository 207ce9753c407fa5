package derive

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/dashcsv/internal/figure"
	"github.com/KaramelBytes/dashcsv/internal/table"
)

// Titles and axis labels shown by the dashboard.
const (
	NoCategoryDataTitle = "no numeric data for the categories"
	PieNumericTitle     = "pie chart not applicable for numeric data"

	AxisValues     = "Valeurs"
	AxisTotal      = "Total des valeurs"
	AxisCategories = "Catégories"

	titleFontSize = 24
	themeName     = "plotly_white"
)

// selected resolves the column for a derivation. ok is false for the
// no-data condition: nil or zero-row table, empty selection, unknown column.
func selected(t *table.Table, col string) (table.Column, bool) {
	if t.Empty() || col == "" {
		return table.Column{}, false
	}
	return t.Column(col)
}

// PrimaryChart is a histogram for numeric columns and a bar chart of summed
// values per category for categorical ones.
func PrimaryChart(t *table.Table, col string) figure.Figure {
	c, ok := selected(t, col)
	if !ok {
		return figure.Figure{}
	}
	if c.Kind == table.Numeric {
		return figure.Figure{
			Data: []figure.Trace{{
				Kind:   figure.Histogram,
				Values: c.Present(),
				Color:  figure.Accent,
			}},
			Layout: styled(fmt.Sprintf("Distribution of %s", col), AxisValues),
		}
	}
	sums, ok := GroupSums(t, col)
	if !ok {
		return figure.Placeholder(figure.Title{Text: NoCategoryDataTitle})
	}
	cats, vals := split(sums)
	text := make([]string, len(vals))
	for i, v := range vals {
		text[i] = formatNumber(v)
	}
	return figure.Figure{
		Data: []figure.Trace{{
			Kind:       figure.Bar,
			Categories: cats,
			Values:     vals,
			Text:       text,
			Color:      figure.Accent,
		}},
		Layout: styled(fmt.Sprintf("Total values by category in %s", col), AxisCategories),
	}
}

// PieChart shows summed values per category when the table has a values
// column, otherwise category frequencies. Numeric columns get a placeholder.
func PieChart(t *table.Table, col string) figure.Figure {
	c, ok := selected(t, col)
	if !ok {
		return figure.Figure{}
	}
	if c.Kind == table.Numeric {
		return figure.Placeholder(figure.Centered(PieNumericTitle, 0))
	}
	var (
		buckets []Bucket
		title   string
	)
	if sums, ok := GroupSums(t, col); ok {
		buckets = sums
		title = fmt.Sprintf("Share of total values by category in %s", col)
	} else {
		buckets = Frequencies(t, col)
		title = fmt.Sprintf("Categories in %s", col)
	}
	cats, vals := split(buckets)
	return figure.Figure{
		Data: []figure.Trace{{
			Kind:       figure.Pie,
			Categories: cats,
			Values:     vals,
			Colors:     figure.RdBu,
		}},
		Layout: &figure.Layout{Title: figure.Centered(title, 0)},
	}
}

func styled(title, xAxis string) *figure.Layout {
	return &figure.Layout{
		Title:    figure.Centered(title, titleFontSize),
		XAxis:    &figure.Axis{Title: figure.Title{Text: xAxis}},
		YAxis:    &figure.Axis{Title: figure.Title{Text: AxisTotal}},
		Template: themeName,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
