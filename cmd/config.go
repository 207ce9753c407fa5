package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/dashcsv/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dashcsv configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "addr: %s\n", c.Addr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "session_ttl_min: %d\n", c.SessionTTLMin)
		if c.HistoryDB == "" {
			fmt.Fprintln(out, "history_db: off")
		} else {
			fmt.Fprintf(out, "history_db: %s\n", c.HistoryDB)
		}
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", c.ChartHeight)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		switch key {
		case "addr":
			if !strings.Contains(val, ":") {
				return fmt.Errorf("invalid addr: %s (use host:port or :port)", val)
			}
			c.Addr = val
		case "max_upload_mb":
			return setPositive(&c.MaxUploadMB, key, val, c, cmd)
		case "max_rows":
			return setPositive(&c.MaxRows, key, val, c, cmd)
		case "session_ttl_min":
			return setPositive(&c.SessionTTLMin, key, val, c, cmd)
		case "chart_width":
			return setPositive(&c.ChartWidth, key, val, c, cmd)
		case "chart_height":
			return setPositive(&c.ChartHeight, key, val, c, cmd)
		case "history_db":
			if strings.EqualFold(val, "off") {
				val = ""
			}
			c.HistoryDB = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		return save(c, cmd)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setPositive(dst *int, key, val string, c *cfgpkg.Global, cmd *cobra.Command) error {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return fmt.Errorf("invalid positive int for %s: %v", key, val)
	}
	*dst = i
	return save(c, cmd)
}

func save(c *cfgpkg.Global, cmd *cobra.Command) error {
	if err := cfgpkg.Save(c, cfgFile); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
	return nil
}
