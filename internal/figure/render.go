package figure

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a figure has no series to draw.
var ErrNoData = errors.New("figure has no data to render")

// RenderOptions sizes the raster output.
type RenderOptions struct {
	Width  int
	Height int
}

// DefaultRenderOptions matches the dashboard's chart area.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Width: 800, Height: 500}
}

// Render writes fig as a PNG image. Only the first trace is drawn.
func Render(w io.Writer, fig Figure, opt RenderOptions) error {
	if !fig.HasData() {
		return ErrNoData
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		opt = DefaultRenderOptions()
	}
	title := ""
	yName := ""
	if fig.Layout != nil {
		title = fig.Layout.Title.Text
		if fig.Layout.YAxis != nil {
			yName = fig.Layout.YAxis.Title.Text
		}
	}
	tr := fig.Data[0]
	switch tr.Kind {
	case Histogram:
		bins := Bins(tr.Values, 0)
		vals := make([]chart.Value, len(bins))
		for i, b := range bins {
			vals[i] = chart.Value{Label: b.Label(), Value: float64(b.Count)}
		}
		return renderBars(w, title, yName, vals, tr.Color, opt)
	case Bar:
		vals := make([]chart.Value, 0, len(tr.Values))
		for i, v := range tr.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			label := ""
			if i < len(tr.Categories) {
				label = tr.Categories[i]
			}
			vals = append(vals, chart.Value{Label: label, Value: v})
		}
		if len(vals) == 0 {
			return ErrNoData
		}
		return renderBars(w, title, yName, vals, tr.Color, opt)
	case Pie:
		return renderPie(w, title, tr, opt)
	default:
		return fmt.Errorf("render: unknown trace kind %q", tr.Kind)
	}
}

func renderBars(w io.Writer, title, yName string, vals []chart.Value, color string, opt RenderOptions) error {
	fill := hexColor(color)
	lo, hi := 0.0, 0.0
	for i := range vals {
		vals[i].Style = chart.Style{FillColor: fill, StrokeColor: fill}
		lo = math.Min(lo, vals[i].Value)
		hi = math.Max(hi, vals[i].Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	spacing := 10
	barWidth := (opt.Width-120)/len(vals) - spacing
	if barWidth < 2 {
		barWidth = 2
		spacing = 1
	}
	bc := chart.BarChart{
		Title:        title,
		Width:        opt.Width,
		Height:       opt.Height,
		BarWidth:     barWidth,
		BarSpacing:   spacing,
		Background:   chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis:        chart.YAxis{Name: yName, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         vals,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

func renderPie(w io.Writer, title string, tr Trace, opt RenderOptions) error {
	var vals []chart.Value
	for i, v := range tr.Values {
		// Slices must be positive for the angle computation.
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		label := ""
		if i < len(tr.Categories) {
			label = tr.Categories[i]
		}
		val := chart.Value{Label: label, Value: v}
		if len(tr.Colors) > 0 {
			c := hexColor(tr.Colors[i%len(tr.Colors)])
			val.Style = chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite}
		}
		vals = append(vals, val)
	}
	if len(vals) == 0 {
		return ErrNoData
	}
	pc := chart.PieChart{
		Title:  title,
		Width:  opt.Width,
		Height: opt.Height,
		Values: vals,
	}
	if err := pc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

func hexColor(s string) drawing.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		s = strings.TrimPrefix(Accent, "#")
	}
	return drawing.ColorFromHex(s)
}
