// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Directory writes files to a target directory.
type Directory struct {
	path  string
	log   *zap.Logger
	files map[string]*os.File
}

// NewDirectory returns a sink writing to path, creating the directory if
// needed.
func NewDirectory(path string, log *zap.Logger) (*Directory, error) {
	if log == nil {
		log = zap.NewNop()
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, path)
		}
	case os.IsNotExist(err):
		log.Debug("Creating target directory", zap.String("path", path))
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("Unable to create target directory: %w", err)
		}
	default:
		return nil, err
	}

	return &Directory{path: path, log: log, files: map[string]*os.File{}}, nil
}

// Path returns the target directory.
func (d *Directory) Path() string {
	return d.path
}

// Create creates or truncates name in the target directory.
func (d *Directory) Create(name string) (io.WriteCloser, error) {
	target := filepath.Join(d.path, filepath.Base(name))
	f, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("Unable to open target file %q: %w", target, err)
	}
	d.files[target] = f
	return &dirFile{File: f, dir: d, name: target}, nil
}

// Close closes files left open by the caller.
func (d *Directory) Close() error {
	var err error
	for name, f := range d.files {
		err = multierr.Append(err, f.Close())
		delete(d.files, name)
	}
	return err
}

type dirFile struct {
	*os.File
	dir  *Directory
	name string
}

func (f *dirFile) Close() error {
	delete(f.dir.files, f.name)
	return multierr.Combine(f.File.Sync(), f.File.Close())
}
