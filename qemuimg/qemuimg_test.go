// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package qemuimg

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitedata/virtnbdbackup/units"
)

func requireQemuImg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("qemu-img"); err != nil {
		t.Skip("qemu-img not available")
	}
}

func TestInfo(t *testing.T) {
	requireQemuImg(t)

	for _, format := range []string{"raw", "qcow2"} {
		t.Run(format, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "disk."+format)
			require.NoError(t, Create(filename, format, 6*units.GiB))

			info, err := Info(filename)
			require.NoError(t, err)
			require.Equal(t, format, info.Format)
			require.Equal(t, 6*units.GiB, info.Size)
		})
	}
}

func TestInfoMissing(t *testing.T) {
	requireQemuImg(t)

	_, err := Info(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "failed")
}
