// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/sitedata/virtnbdbackup/extents"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "virtnbdbackup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, &Config{
		MetaContext:      extents.AllocationContext,
		MaxRequest:       extents.MaxRequest,
		DefaultBlockSize: extents.DefaultBlockSize,
		Format:           "json",
		LogLevel:         "info",
	}, cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
meta_context: qemu:allocation-depth
max_request: 1073741824
format: yaml
output_dir: /var/backup/vm1
log_level: debug
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "qemu:allocation-depth", cfg.MetaContext)
	require.Equal(t, uint64(1073741824), cfg.MaxRequest)
	require.Equal(t, "yaml", cfg.Format)
	require.Equal(t, "/var/backup/vm1", cfg.OutputDir)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("VIRTNBDBACKUP_FORMAT", "msgpack")
	path := writeConfig(t, "format: yaml\n")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "msgpack", cfg.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			MetaContext:      extents.AllocationContext,
			MaxRequest:       extents.MaxRequest,
			DefaultBlockSize: extents.DefaultBlockSize,
			Format:           "json",
			LogLevel:         "info",
		}
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty meta context", func(c *Config) { c.MetaContext = "" }},
		{"max request too small", func(c *Config) { c.MaxRequest = 256 }},
		{"max request zero", func(c *Config) { c.MaxRequest = 0 }},
		{"max request above protocol limit", func(c *Config) { c.MaxRequest = 1 << 40 }},
		{"unknown format", func(c *Config) { c.Format = "xml" }},
		{"zip and directory", func(c *Config) { c.Zip = true; c.OutputDir = "/backup" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	c := valid()
	require.NoError(t, c.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			require.Error(t, c.Validate())
		})
	}
}
