package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const envPrefix = "TYPETRACE_"

type Config struct {
	ServiceURL     string        `toml:"service_url"`
	Token          string        `toml:"token"`
	DBPath         string        `toml:"db_path"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	LogLevel       string        `toml:"log_level"`
	LogFile        string        `toml:"log_file"`
	CorrectionKeys []string      `toml:"correction_keys"`

	// Path is the file the config was read from, empty when none existed.
	Path string `toml:"-"`
}

// Dir returns the directory holding the config file, database and log.
func Dir(home string) string {
	return filepath.Join(home, ".config", "typetrace")
}

// DefaultPath returns the config file location, honouring TYPETRACE_CONFIG.
func DefaultPath(home string) string {
	if p := os.Getenv(envPrefix + "CONFIG"); p != "" {
		return expandHome(p, home)
	}
	return filepath.Join(Dir(home), "config.toml")
}

func Defaults(home string) *Config {
	return &Config{
		ServiceURL:     "http://localhost:8000",
		DBPath:         filepath.Join(Dir(home), "typetrace.db"),
		RequestTimeout: 10 * time.Second,
		LogLevel:       "info",
		LogFile:        filepath.Join(Dir(home), "typetrace.log"),
	}
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := Defaults(home)

	cfgPath := DefaultPath(home)
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		cfg.Path = cfgPath
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// expand ~ in paths
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVICE_URL": &cfg.ServiceURL,
		"TOKEN":       &cfg.Token,
		"DB_PATH":     &cfg.DBPath,
		"LOG_LEVEL":   &cfg.LogLevel,
		"LOG_FILE":    &cfg.LogFile,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ValidationError{Field: "request_timeout", Message: fmt.Sprintf("invalid %sREQUEST_TIMEOUT %q", envPrefix, v)}
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv(envPrefix + "CORRECTION_KEYS"); ok {
		cfg.CorrectionKeys = nil
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.CorrectionKeys = append(cfg.CorrectionKeys, k)
			}
		}
	}
	return nil
}

// Write encodes the effective config as TOML. The token is masked.
func (c *Config) Write(w io.Writer) error {
	view := struct {
		ServiceURL     string   `toml:"service_url"`
		Token          string   `toml:"token,omitempty"`
		DBPath         string   `toml:"db_path"`
		RequestTimeout string   `toml:"request_timeout"`
		LogLevel       string   `toml:"log_level"`
		LogFile        string   `toml:"log_file"`
		CorrectionKeys []string `toml:"correction_keys,omitempty"`
	}{
		ServiceURL:     c.ServiceURL,
		DBPath:         c.DBPath,
		RequestTimeout: c.RequestTimeout.String(),
		LogLevel:       c.LogLevel,
		LogFile:        c.LogFile,
		CorrectionKeys: c.CorrectionKeys,
	}
	if c.Token != "" {
		view.Token = "********"
	}
	return toml.NewEncoder(w).Encode(view)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
