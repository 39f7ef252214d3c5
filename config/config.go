// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package config loads virtnbdbackup settings from flags, environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/sitedata/virtnbdbackup/extentmap"
	"github.com/sitedata/virtnbdbackup/extents"
)

// EnvPrefix is the prefix of environment variables overriding settings,
// for example VIRTNBDBACKUP_LOG_LEVEL.
const EnvPrefix = "VIRTNBDBACKUP"

// Config holds settings for scanning and writing extent maps.
type Config struct {
	MetaContext      string `mapstructure:"meta_context"`
	MaxRequest       uint64 `mapstructure:"max_request"`
	DefaultBlockSize uint64 `mapstructure:"default_block_size"`
	Format           string `mapstructure:"format"`
	OutputDir        string `mapstructure:"output_dir"`
	Zip              bool   `mapstructure:"zip"`
	Insecure         bool   `mapstructure:"insecure"`
	LogLevel         string `mapstructure:"log_level"`
}

// SetDefaults registers default values in v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("meta_context", extents.AllocationContext)
	v.SetDefault("max_request", extents.MaxRequest)
	v.SetDefault("default_block_size", extents.DefaultBlockSize)
	v.SetDefault("format", string(extentmap.FormatJSON))
	v.SetDefault("output_dir", "")
	v.SetDefault("zip", false)
	v.SetDefault("insecure", false)
	v.SetDefault("log_level", "info")
}

// Load reads configuration into v and returns the validated settings. If
// path is empty, virtnbdbackup.yaml is looked up in the usual locations and
// a missing file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("virtnbdbackup")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.virtnbdbackup")
		v.AddConfigPath("/etc/virtnbdbackup")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would fail only after connecting.
func (c *Config) Validate() error {
	if c.MetaContext == "" {
		return fmt.Errorf("%w: meta_context is empty", extents.ErrConfig)
	}
	if _, err := extents.MaxRequestLength(c.MaxRequest, c.DefaultBlockSize); err != nil {
		return err
	}
	if _, err := extentmap.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Zip && c.OutputDir != "" {
		return fmt.Errorf("%w: zip and output_dir are mutually exclusive", extents.ErrConfig)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// ScanOptions returns scanner options for the settings.
func (c *Config) ScanOptions() []extents.Option {
	return []extents.Option{
		extents.WithMetaContext(c.MetaContext),
		extents.WithMaxRequest(c.MaxRequest),
		extents.WithDefaultBlockSize(c.DefaultBlockSize),
	}
}
