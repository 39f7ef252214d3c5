// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"
	"path/filepath"
	"runtime/pprof"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStopsProfileOnError(t *testing.T) {
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	prof := filepath.Join(t.TempDir(), "cpu.prof")
	t.Cleanup(func() { cpuprofile = "" })

	err := run([]string{"--cpuprofile", prof, "map", "ftp://example.com/disk.img"})
	require.ErrorContains(t, err, "Unsupported URL")
	require.Nil(t, profile)

	info, err := os.Stat(prof)
	require.NoError(t, err)
	require.NotZero(t, info.Size())

	// Profiling was stopped, so it can be started again.
	f, err := os.Create(filepath.Join(t.TempDir(), "again.prof"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, pprof.StartCPUProfile(f))
	pprof.StopCPUProfile()
}
