// Package figure defines chart specifications that serialize to the JSON
// figure format understood by Plotly, and rasterizes them to PNG.
package figure

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind is the trace type.
type Kind string

const (
	Histogram Kind = "histogram"
	Bar       Kind = "bar"
	Pie       Kind = "pie"
)

// Accent is the single-series colour used by bar and histogram traces.
const Accent = "#636EFA"

// RdBu is the diverging red/blue sequence used for pie slices.
var RdBu = []string{
	"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7",
	"#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061",
}

// Figure is a chart specification. The zero Figure means "nothing to show"
// and marshals to {}.
type Figure struct {
	Data   []Trace `json:"data,omitempty"`
	Layout *Layout `json:"layout,omitempty"`
}

// IsZero reports whether the figure carries neither data nor layout.
func (f Figure) IsZero() bool { return len(f.Data) == 0 && f.Layout == nil }

// HasData reports whether at least one trace has points.
func (f Figure) HasData() bool {
	for _, t := range f.Data {
		if len(t.Values) > 0 {
			return true
		}
	}
	return false
}

// Trace is one data series.
type Trace struct {
	Kind Kind
	// Categories are bar x positions or pie labels.
	Categories []string
	// Values are histogram samples, bar heights, or pie slice sizes.
	Values []float64
	// Text labels drawn on top of bars.
	Text   []string
	Color  string
	Colors []string
}

type traceJSON struct {
	Type         string    `json:"type"`
	X            any       `json:"x,omitempty"`
	Y            numbers   `json:"y,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
	Values       numbers   `json:"values,omitempty"`
	Text         []string  `json:"text,omitempty"`
	TextPosition string    `json:"textposition,omitempty"`
	Marker       *marker   `json:"marker,omitempty"`
}

type marker struct {
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

// numbers marshals non-finite values as null, which Plotly skips.
type numbers []float64

func (ns numbers) MarshalJSON() ([]byte, error) {
	b := []byte{'['}
	for i, v := range ns {
		if i > 0 {
			b = append(b, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b = append(b, "null"...)
			continue
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		b = append(b, enc...)
	}
	return append(b, ']'), nil
}

// MarshalJSON emits the Plotly trace layout for the trace kind.
func (t Trace) MarshalJSON() ([]byte, error) {
	out := traceJSON{Type: string(t.Kind)}
	if t.Color != "" || len(t.Colors) > 0 {
		out.Marker = &marker{Color: t.Color, Colors: t.Colors}
	}
	switch t.Kind {
	case Histogram:
		out.X = numbers(t.Values)
	case Bar:
		out.X = t.Categories
		out.Y = t.Values
		out.Text = t.Text
		if len(t.Text) > 0 {
			out.TextPosition = "outside"
		}
	case Pie:
		out.Labels = t.Categories
		out.Values = t.Values
	default:
		return nil, fmt.Errorf("unknown trace kind %q", t.Kind)
	}
	return json.Marshal(out)
}

// Layout carries titles, axes and the theme name.
type Layout struct {
	Title    Title  `json:"title"`
	XAxis    *Axis  `json:"xaxis,omitempty"`
	YAxis    *Axis  `json:"yaxis,omitempty"`
	Template string `json:"template,omitempty"`
}

// Title is a chart or axis title.
type Title struct {
	Text string   `json:"text,omitempty"`
	X    *float64 `json:"x,omitempty"`
	Font *Font    `json:"font,omitempty"`
}

type Font struct {
	Size int `json:"size"`
}

type Axis struct {
	Title Title `json:"title"`
}

// templates expands theme names into the layout defaults Plotly.js expects,
// since only the Python front end resolves names like "plotly_white".
var templates = map[string]map[string]any{
	"plotly_white": {
		"layout": map[string]any{
			"paper_bgcolor": "white",
			"plot_bgcolor":  "white",
			"xaxis":         map[string]any{"gridcolor": "rgb(232,232,232)", "zerolinecolor": "rgb(232,232,232)"},
			"yaxis":         map[string]any{"gridcolor": "rgb(232,232,232)", "zerolinecolor": "rgb(232,232,232)"},
		},
	},
}

// MarshalJSON replaces a known template name with its expanded form.
func (l Layout) MarshalJSON() ([]byte, error) {
	type plain Layout
	tmpl, ok := templates[l.Template]
	if !ok {
		return json.Marshal(plain(l))
	}
	return json.Marshal(struct {
		plain
		Template map[string]any `json:"template"`
	}{plain: plain(l), Template: tmpl})
}

// Centered returns a title centred horizontally, optionally with a font size.
func Centered(text string, size int) Title {
	x := 0.5
	t := Title{Text: text, X: &x}
	if size > 0 {
		t.Font = &Font{Size: size}
	}
	return t
}

// Placeholder is a figure with a title and no data series.
func Placeholder(title Title) Figure {
	return Figure{Data: []Trace{}, Layout: &Layout{Title: title}}
}
