package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/dashcsv/internal/derive"
	"github.com/KaramelBytes/dashcsv/internal/figure"
	"github.com/KaramelBytes/dashcsv/internal/table"
	"github.com/KaramelBytes/dashcsv/internal/utils"
	"github.com/KaramelBytes/dashcsv/internal/view"
	"github.com/spf13/cobra"
)

var (
	descColumns   []string
	descJSON      bool
	descPNGDir    string
	descDelimiter string
	descMaxRows   int
	descWidth     int
)

// columnReport is the JSON shape of one described column.
type columnReport struct {
	Column  string         `json:"column"`
	Summary derive.Summary `json:"summary"`
	Primary figure.Figure  `json:"primary_chart"`
	Pie     figure.Figure  `json:"pie_chart"`
}

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Summarize a CSV/TSV/XLSX file the way the dashboard does",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := table.DefaultOptions()
		if c, err := effectiveConfig(); err == nil {
			opt.MaxRows = c.MaxRows
		}
		if descMaxRows > 0 {
			opt.MaxRows = descMaxRows
		}
		switch descDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		case "|":
			opt.Delimiter = '|'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", descDelimiter)
		}

		t, err := table.ReadFile(args[0], opt)
		if err != nil {
			return err
		}
		cols := descColumns
		if len(cols) == 0 {
			cols = t.Names()
		}
		for _, c := range cols {
			if _, ok := t.Column(c); !ok {
				fmt.Fprintf(os.Stderr, "⚠ Warning: column %q not found in %s\n", c, t.Name())
			}
		}

		if descPNGDir != "" {
			n, err := writeCharts(t, cols, descPNGDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Wrote %d chart(s) to %s\n", n, descPNGDir)
		}

		out := cmd.OutOrStdout()
		if descJSON {
			reports := make([]columnReport, 0, len(cols))
			for _, c := range cols {
				reports = append(reports, columnReport{
					Column:  c,
					Summary: derive.Statistics(t, c),
					Primary: derive.PrimaryChart(t, c),
					Pie:     derive.PieChart(t, c),
				})
			}
			b, err := utils.PrettyJSON(reports)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(b))
			return err
		}

		width := descWidth
		if width <= 0 {
			width = view.TerminalWidth(os.Stdout)
		}
		return view.Describe(out, t, cols, view.Options{Width: width})
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringSliceVarP(&descColumns, "column", "c", nil, "column(s) to describe (default: all)")
	describeCmd.Flags().BoolVar(&descJSON, "json", false, "print statistics and chart figures as JSON")
	describeCmd.Flags().StringVar(&descPNGDir, "png-dir", "", "write bar and pie charts as PNG files into this directory")
	describeCmd.Flags().StringVar(&descDelimiter, "delimiter", "", "CSV delimiter override: ',', ';', '|' or 'tab'")
	describeCmd.Flags().IntVar(&descMaxRows, "max-rows", 0, "reject files with more data rows than this (overrides config)")
	describeCmd.Flags().IntVar(&descWidth, "width", 0, "output width (default: terminal width)")
}

// writeCharts renders <column>_bar.png and <column>_pie.png for each column
// that has something to draw, and returns how many files were written.
func writeCharts(t *table.Table, cols []string, dir string) (int, error) {
	ropt := figure.DefaultRenderOptions()
	if cfg != nil && cfg.ChartWidth > 0 && cfg.ChartHeight > 0 {
		ropt = figure.RenderOptions{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	}
	n := 0
	for _, c := range cols {
		charts := []struct {
			suffix string
			fig    figure.Figure
		}{
			{"bar", derive.PrimaryChart(t, c)},
			{"pie", derive.PieChart(t, c)},
		}
		for _, ch := range charts {
			var buf bytes.Buffer
			if err := figure.Render(&buf, ch.fig, ropt); err != nil {
				if errors.Is(err, figure.ErrNoData) {
					continue
				}
				return n, fmt.Errorf("render %s %s: %w", c, ch.suffix, err)
			}
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", utils.SlugFileName(c), ch.suffix))
			if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
				return n, err
			}
			if debug {
				fmt.Fprintf(os.Stderr, "[describe] wrote %s\n", path)
			}
			n++
		}
	}
	return n, nil
}
