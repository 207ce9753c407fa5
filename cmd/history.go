package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/dashcsv/internal/history"
	"github.com/spf13/cobra"
)

var (
	histLimit   int
	histSession string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent dashboard uploads",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if c.HistoryDB == "" {
			fmt.Fprintln(out, "Upload history is disabled (history_db: off)")
			return nil
		}
		st, err := history.Open(c.HistoryDB)
		if err != nil {
			return err
		}
		defer st.Close()
		entries, err := st.Recent(context.Background(), histSession, histLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "(no uploads)")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "- %s  %s  %d rows  [%s]  session %s\n",
				e.UploadedAt.Local().Format("2006-01-02 15:04:05"), e.FileName, e.Rows, strings.Join(e.Columns, ", "), shortID(e.SessionID))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&histLimit, "limit", "n", 20, "number of uploads to list")
	historyCmd.Flags().StringVar(&histSession, "session", "", "only list uploads from this session id")
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
