// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package output writes backup files to a directory or a zip stream.
package output

import (
	"errors"
	"io"
)

// ErrNotDirectory is returned when the backup target exists and is not a
// directory.
var ErrNotDirectory = errors.New("target is not a directory")

// Sink stores named backup files.
type Sink interface {
	// Create starts a new file. The returned writer must be closed before
	// creating the next file.
	Create(name string) (io.WriteCloser, error)

	// Close flushes and releases the sink.
	Close() error
}
