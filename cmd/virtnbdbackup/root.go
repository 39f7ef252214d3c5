// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/sitedata/virtnbdbackup/extents"
)

var (
	// Common flags.
	configFile string
	cpuprofile string

	settings = viper.New()
	profile  *os.File
)

var rootCmd = &cobra.Command{
	Use:   "virtnbdbackup",
	Short: "Sparse backup helper for NBD exports",
	Long: `virtnbdbackup inspects disk images exported over NBD and reports
which ranges hold data, read as zeroes, or are unallocated, so a backup
needs to copy only allocated data.`,
	SilenceUsage:      true,
	PersistentPreRunE: startProfile,
}

// Execute runs the command selected by the command line.
func Execute() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command and stops the cpu profile even if the command
// failed. PersistentPostRunE is skipped on errors.
func run(args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return multierr.Append(err, stopProfile())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default virtnbdbackup.yaml)")
	flags.StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile to file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("meta-context", extents.AllocationContext, "NBD meta context reporting allocation")
	flags.Uint64("max-request", extents.MaxRequest, "maximum length of a block status request (at most 4294967295)")

	settings.BindPFlag("log_level", flags.Lookup("log-level"))
	settings.BindPFlag("meta_context", flags.Lookup("meta-context"))
	settings.BindPFlag("max_request", flags.Lookup("max-request"))

	rootCmd.AddCommand(mapCmd)
}

func startProfile(cmd *cobra.Command, args []string) error {
	if cpuprofile == "" {
		return nil
	}

	f, err := os.Create(cpuprofile)
	if err != nil {
		return err
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}

	profile = f
	return nil
}

func stopProfile() error {
	if profile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	f := profile
	profile = nil
	return f.Close()
}
