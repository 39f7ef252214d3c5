// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, s Sink, name, data string) {
	t.Helper()

	w, err := s.Create(name)
	require.NoError(t, err)
	_, err = io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup", "vm1")

	d, err := NewDirectory(path, nil)
	require.NoError(t, err)
	writeFile(t, d, "sda.extents.json", "[]\n")
	require.NoError(t, d.Close())

	data, err := os.ReadFile(filepath.Join(path, "sda.extents.json"))
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(data))
}

func TestDirectoryExisting(t *testing.T) {
	path := t.TempDir()

	d, err := NewDirectory(path, nil)
	require.NoError(t, err)
	require.Equal(t, path, d.Path())
	require.NoError(t, d.Close())
}

func TestDirectoryCloseOpenFiles(t *testing.T) {
	d, err := NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = d.Create("sda.data")
	require.NoError(t, err)
	require.Len(t, d.files, 1)

	require.NoError(t, d.Close())
	require.Empty(t, d.files)
}

func TestDirectoryNotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := NewDirectory(path, nil)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestZip(t *testing.T) {
	var buf bytes.Buffer

	z := NewZip(&buf, nil)
	writeFile(t, z, "sda.extents.json", "[]\n")
	writeFile(t, z, "sdb.extents.json", "[{}]\n")
	require.NoError(t, z.Close())

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, r.File, 2)

	expected := map[string]string{
		"sda.extents.json": "[]\n",
		"sdb.extents.json": "[{}]\n",
	}
	for _, f := range r.File {
		require.Equal(t, zip.Store, f.Method)

		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		require.Equal(t, expected[f.Name], string(data))
	}
}
