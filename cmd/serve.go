package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/dashcsv/internal/figure"
	"github.com/KaramelBytes/dashcsv/internal/history"
	"github.com/KaramelBytes/dashcsv/internal/server"
	"github.com/KaramelBytes/dashcsv/internal/table"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	serveNoHistory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		opts := serverOptions(cmd)

		var hist *history.Store
		if c.HistoryDB != "" && !serveNoHistory {
			hist, err = history.Open(c.HistoryDB)
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: upload history disabled: %v\n", err)
				hist = nil
			} else {
				defer hist.Close()
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard on http://%s\n", displayAddr(opts.Addr))
		return server.New(opts, hist).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "do not record uploads in the history database")
}

// serverOptions maps the effective configuration and flags onto server options.
func serverOptions(cmd *cobra.Command) server.Options {
	ingest := table.DefaultOptions()
	ingest.MaxRows = cfg.MaxRows
	opts := server.Options{
		Addr:           cfg.Addr,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		SessionTTL:     cfg.SessionTTL(),
		Ingest:         ingest,
		Render:         figure.RenderOptions{Width: cfg.ChartWidth, Height: cfg.ChartHeight},
		Debug:          debug,
		Version:        Version,
	}
	if cmd.Flags().Changed("addr") && serveAddr != "" {
		opts.Addr = serveAddr
	}
	return opts
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
