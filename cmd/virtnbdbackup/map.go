// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sitedata/virtnbdbackup"
	"github.com/sitedata/virtnbdbackup/config"
	"github.com/sitedata/virtnbdbackup/extentmap"
	"github.com/sitedata/virtnbdbackup/log"
	"github.com/sitedata/virtnbdbackup/output"
)

var mapCmd = &cobra.Command{
	Use:   "map FILE|URL",
	Short: "Print or save the extents of a disk image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(settings, configFile)
		if err != nil {
			return err
		}

		logger, err := log.New(cfg.LogLevel, os.Stderr)
		if err != nil {
			return err
		}
		defer logger.Sync()

		name, _ := cmd.Flags().GetString("name")
		return mapURL(args[0], name, cfg, logger)
	},
}

func init() {
	flags := mapCmd.Flags()
	flags.StringP("format", "f", string(extentmap.FormatJSON), "extent map format (json, yaml, msgpack)")
	flags.StringP("output-dir", "o", "", "write the extent map to this directory")
	flags.Bool("zip", false, "write the extent map as zip stream to stdout")
	flags.Bool("insecure", false, "do not verify imageio server certificate")
	flags.String("name", "disk", "name of the extent map file")

	settings.BindPFlag("format", flags.Lookup("format"))
	settings.BindPFlag("output_dir", flags.Lookup("output-dir"))
	settings.BindPFlag("zip", flags.Lookup("zip"))
	settings.BindPFlag("insecure", flags.Lookup("insecure"))
}

func mapURL(url, name string, cfg *config.Config, logger *zap.Logger) error {
	format, err := extentmap.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	b, err := connect(url, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.Extents()
	if err != nil {
		return err
	}

	logger.Info("Discovered image extents", zap.String("url", url))

	sink, err := openSink(cfg, logger)
	if err != nil {
		return err
	}
	if sink == nil {
		w := bufio.NewWriterSize(os.Stdout, 32*1024)
		if err := extentmap.Write(w, format, res); err != nil {
			return err
		}
		return w.Flush()
	}

	return writeMap(sink, name+".extents."+format.Ext(), format, res)
}

// openSink returns nil when the map should be printed to stdout.
func openSink(cfg *config.Config, logger *zap.Logger) (output.Sink, error) {
	switch {
	case cfg.Zip:
		return output.NewZip(os.Stdout, logger), nil
	case cfg.OutputDir != "":
		d, err := output.NewDirectory(cfg.OutputDir, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, nil
	}
}

func writeMap(sink output.Sink, filename string, format extentmap.Format, res virtnbdbackup.ExtentsResult) (err error) {
	defer func() {
		err = multierr.Append(err, sink.Close())
	}()

	w, err := sink.Create(filename)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, 32*1024)
	if err := extentmap.Write(bw, format, res); err != nil {
		w.Close()
		return err
	}

	return multierr.Combine(bw.Flush(), w.Close())
}
