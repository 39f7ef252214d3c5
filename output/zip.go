// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package output

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Zip streams files as an uncompressed zip archive, for example to stdout.
type Zip struct {
	zw *zip.Writer
}

// NewZip returns a sink writing a zip archive to w.
func NewZip(w io.Writer, log *zap.Logger) *Zip {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("Writing zip file stream")
	return &Zip{zw: zip.NewWriter(w)}
}

// Create adds a new file to the archive. Data is stored, not compressed.
func (z *Zip) Create(name string) (io.WriteCloser, error) {
	w, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("Unable to open zip stream: %w", err)
	}
	return nopCloser{w}, nil
}

// Close writes the archive central directory.
func (z *Zip) Close() error {
	return z.zw.Close()
}

// The zip writer finishes a file when the next one is created.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
