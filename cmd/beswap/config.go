package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/beswap/internal/logger"
)

// Config is the optional beswap config file (~/.config/beswap/config.yaml).
type Config struct {
	SourceOrder  string `yaml:"source_order"`
	ReportFormat string `yaml:"report_format"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "beswap", "config.yaml")
}

// LoadConfig reads path. A missing file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig copies file values into f for every flag not set explicitly.
func applyConfig(c *cli.Command, cfg Config, f *appFlags) {
	if cfg.SourceOrder != "" && !c.IsSet("from") {
		f.from = cfg.SourceOrder
	}
	if cfg.ReportFormat != "" && !c.IsSet("report") {
		f.report = cfg.ReportFormat
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		f.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		f.logFormat = cfg.LogFormat
	}
}

// setup loads the config file and installs the logger in the context.
func setup(f *appFlags, stderr io.Writer) cli.BeforeFunc {
	return func(ctx context.Context, c *cli.Command) (context.Context, error) {
		path := f.configPath
		if path == "" {
			path = defaultConfigPath()
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			return ctx, fmt.Errorf("config: %w", err)
		}
		applyConfig(c, cfg, f)

		level := logger.ParseLevel(f.logLevel)
		if f.debug {
			level = logger.ParseLevel("debug")
		}
		log, err := logger.ForFormat(stderr, f.logFormat, level)
		if err != nil {
			return ctx, err
		}
		return logger.WithContext(ctx, log), nil
	}
}
