package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Addr          string `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB   int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	MaxRows       int    `mapstructure:"max_rows" yaml:"max_rows"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
	// HistoryDB is the SQLite ledger path; "off" disables upload history.
	HistoryDB string `mapstructure:"history_db" yaml:"history_db"`

	// PNG rendering
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`
}

// SessionTTL returns the idle expiry as a duration.
func (g *Global) SessionTTL() time.Duration {
	return time.Duration(g.SessionTTLMin) * time.Minute
}

// MaxUploadBytes returns the request body limit for uploads.
func (g *Global) MaxUploadBytes() int64 {
	return int64(g.MaxUploadMB) << 20
}

// Dir returns ~/.dashcsv.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dashcsv"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dashcsv/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	out := *c
	if out.HistoryDB == "" {
		out.HistoryDB = "off"
	}
	b, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. CLI flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DASHCSV")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8050")
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("max_rows", 100000)
	v.SetDefault("session_ttl_min", 60)
	v.SetDefault("history_db", "")
	v.SetDefault("chart_width", 800)
	v.SetDefault("chart_height", 500)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a present but unparsable file is an error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// history_db unset means ~/.dashcsv/history.db; "off" disables it.
	if c.HistoryDB == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.HistoryDB = filepath.Join(dir, "history.db")
	}
	if c.HistoryDB == "off" {
		c.HistoryDB = ""
	}
	return &c, nil
}
