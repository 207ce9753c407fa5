// Package view renders column summaries for the terminal.
package view

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/KaramelBytes/dashcsv/internal/derive"
	"github.com/KaramelBytes/dashcsv/internal/figure"
	"github.com/KaramelBytes/dashcsv/internal/table"
)

const (
	terminalWidthBackup = 80
	minBarWidth         = 10
	maxBars             = 12
	maxLabelWidth       = 18
	barGlyph            = "█"
)

// Options controls the layout.
type Options struct {
	// Width is the total width available; 0 means the terminal width.
	Width int
}

// TerminalWidth reports the width of f, or a fallback when f is not a terminal.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

type styles struct {
	header lipgloss.Style
	card   lipgloss.Style
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	bar    lipgloss.Style
	muted  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true),
		card: r.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")),
		title: r.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		label: r.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		value: r.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
		bar:   r.NewStyle().Foreground(lipgloss.Color(figure.Accent)),
		muted: r.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
	}
}

// Describe writes a header line and one card per column. An empty cols
// describes every column of t.
func Describe(w io.Writer, t *table.Table, cols []string, opt Options) error {
	if opt.Width <= 0 {
		opt.Width = terminalWidthBackup
	}
	st := newStyles(w)
	if len(cols) == 0 {
		cols = t.Names()
	}
	header := fmt.Sprintf("%s: %d rows, %d columns", t.Name(), t.Rows(), len(t.Names()))
	if _, err := fmt.Fprintln(w, st.header.Render(header)); err != nil {
		return err
	}
	for _, col := range cols {
		if _, err := fmt.Fprintln(w, card(st, t, col, opt.Width)); err != nil {
			return err
		}
	}
	return nil
}

func card(st styles, t *table.Table, col string, width int) string {
	sum := derive.Statistics(t, col)
	inner := width - st.card.GetHorizontalFrameSize()
	if inner < minBarWidth+maxLabelWidth {
		inner = minBarWidth + maxLabelWidth
	}
	box := st.card.Width(inner + st.card.GetHorizontalPadding())
	var b strings.Builder
	if sum.Message != "" {
		b.WriteString(st.title.Render(col))
		b.WriteString("\n")
		b.WriteString(st.muted.Render(sum.Message))
		return box.Render(b.String())
	}
	b.WriteString(st.title.Render(fmt.Sprintf("%s (%s)", col, sum.Kind)))
	for _, it := range sum.Items {
		b.WriteString("\n")
		b.WriteString(st.label.Render(it.Label + " : "))
		b.WriteString(st.value.Render(it.Value))
	}
	if rows := Buckets(t, col); len(rows) > 0 {
		b.WriteString("\n\n")
		b.WriteString(bars(st, rows, inner))
	}
	return box.Render(b.String())
}

// Buckets returns the series the dashboard charts for col: histogram bins for
// numeric columns, summed values or frequencies for categorical ones.
func Buckets(t *table.Table, col string) []derive.Bucket {
	c, ok := t.Column(col)
	if !ok || t.Empty() {
		return nil
	}
	if c.Kind == table.Numeric {
		bins := figure.Bins(c.Present(), 0)
		out := make([]derive.Bucket, len(bins))
		for i, bin := range bins {
			out[i] = derive.Bucket{Category: bin.Label(), Value: float64(bin.Count)}
		}
		return out
	}
	if sums, ok := derive.GroupSums(t, col); ok {
		return sums
	}
	return derive.Frequencies(t, col)
}

func bars(st styles, rows []derive.Bucket, width int) string {
	extra := 0
	if len(rows) > maxBars {
		extra = len(rows) - maxBars
		rows = rows[:maxBars]
	}
	labelW := 0
	valueW := 0
	peak := 0.0
	for _, r := range rows {
		labelW = max(labelW, runewidth.StringWidth(r.Category))
		valueW = max(valueW, len(formatValue(r.Value)))
		peak = math.Max(peak, math.Abs(r.Value))
	}
	labelW = min(labelW, maxLabelWidth)
	barW := width - labelW - valueW - 2
	if barW < minBarWidth {
		barW = minBarWidth
	}

	lines := make([]string, 0, len(rows)+1)
	for _, r := range rows {
		label := runewidth.FillRight(runewidth.Truncate(r.Category, labelW, "…"), labelW)
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(r.Value) / peak * float64(barW)))
		}
		bar := runewidth.FillRight(strings.Repeat(barGlyph, n), barW)
		lines = append(lines, fmt.Sprintf("%s %s %s", st.label.Render(label), st.bar.Render(bar), formatValue(r.Value)))
	}
	if extra > 0 {
		lines = append(lines, st.muted.Render(fmt.Sprintf("… %d more", extra)))
	}
	return strings.Join(lines, "\n")
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
