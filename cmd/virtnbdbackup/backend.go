// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/sitedata/virtnbdbackup"
	"github.com/sitedata/virtnbdbackup/config"
	"github.com/sitedata/virtnbdbackup/extents"
	"github.com/sitedata/virtnbdbackup/http"
	"github.com/sitedata/virtnbdbackup/nbd"
	"github.com/sitedata/virtnbdbackup/qemuimg"
)

func connect(s string, cfg *config.Config, log *zap.Logger) (virtnbdbackup.Backend, error) {
	file, err := isFile(s)
	if err != nil {
		return nil, err
	}
	if file {
		return connectFile(s, cfg, log)
	}
	return connectURL(s, cfg, log)
}

func isFile(s string) (bool, error) {
	_, err := os.Stat(s)
	if err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	// We canot tell.
	return false, err
}

func scanOptions(cfg *config.Config, log *zap.Logger) []extents.Option {
	return append(cfg.ScanOptions(), extents.WithLogger(log))
}

func connectFile(s string, cfg *config.Config, log *zap.Logger) (virtnbdbackup.Backend, error) {
	info, err := qemuimg.Info(s)
	if err != nil {
		return nil, err
	}
	log.Debug("Serving local image",
		zap.String("filename", s),
		zap.String("format", info.Format),
		zap.Uint64("size", info.Size))
	return nbd.ConnectFile(s, info.Format, cfg.MetaContext, scanOptions(cfg, log)...)
}

func connectURL(s string, cfg *config.Config, log *zap.Logger) (virtnbdbackup.Backend, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "nbd", "nbd+unix":
		return nbd.Connect(s, cfg.MetaContext, scanOptions(cfg, log)...)
	case "https":
		return http.Connect(s, cfg.Insecure)
	case "file":
		return connectFile(u.Path, cfg, log)
	default:
		return nil, fmt.Errorf("Unsupported URL: %s", s)
	}
}
