//-------------------------------------------------------------------------
//
// salesload
//
// Copyright (c) 2025 - 2026, the salesload authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for salesload.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load modes accepted by the loader. There is deliberately no default:
// replacing a table and appending to it are not interchangeable, so the
// caller must choose one explicitly.
const (
	ModeReplace = "replace"
	ModeAppend  = "append"
)

// Config holds all configuration for salesload.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Source holds configuration for the extraction stage.
	Source SourceConfig `mapstructure:"source"`

	// Load holds configuration for the load stage.
	Load LoadConfig `mapstructure:"load"`
}

// SourceConfig describes the raw delimited input file.
type SourceConfig struct {
	// Path is the location of the raw sales export.
	Path string `mapstructure:"path"`

	// Delimiter is the field separator, a single character.
	Delimiter string `mapstructure:"delimiter"`

	// DateFormat is the expected layout of the order date column,
	// in Go reference-time notation.
	DateFormat string `mapstructure:"date_format"`
}

// LoadConfig describes the destination table and write mode.
type LoadConfig struct {
	// Table is the destination table name.
	Table string `mapstructure:"table"`

	// Mode is the write mode: "replace" or "append". Required.
	Mode string `mapstructure:"mode"`
}

// DefaultConfig returns a Config with default values. Mode is left empty
// on purpose; Validate rejects a run that never chose one.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Source: SourceConfig{
			Delimiter:  ",",
			DateFormat: "2006-01-02",
		},
		Load: LoadConfig{
			Table: "sales_orders",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./salesload.yaml
// 3. ~/.config/salesload/salesload.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("salesload")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "salesload"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.Source.Path == "" {
		return fmt.Errorf("source file path is required")
	}
	if len(c.Source.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Source.Delimiter)
	}
	if c.Source.DateFormat == "" {
		return fmt.Errorf("source date format is required")
	}
	if c.Load.Table == "" {
		return fmt.Errorf("destination table name is required")
	}
	switch c.Load.Mode {
	case ModeReplace, ModeAppend:
	case "":
		return fmt.Errorf("load mode is required: choose %q or %q", ModeReplace, ModeAppend)
	default:
		return fmt.Errorf("invalid load mode %q: choose %q or %q", c.Load.Mode, ModeReplace, ModeAppend)
	}
	return nil
}
