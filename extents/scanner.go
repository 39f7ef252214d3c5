// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package extents discovers which parts of an NBD export hold data.
//
// The NBD block status command can describe at most 4 GiB per request, so
// a scan of a large export is split into many requests. Runs that span a
// request boundary are reported twice; the scanner merges them back before
// converting the runs to extents.
package extents

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitedata/virtnbdbackup"
)

// AllocationContext is the NBD meta context reporting allocation status.
const AllocationContext = "base:allocation"

// StatusFunc receives block status entries as {length, flags, length,
// flags, ...} for the range starting at offset. Returning an error fails
// the request.
type StatusFunc func(metaContext string, offset uint64, entries []uint32) error

// Source is a device that can report block status.
type Source interface {
	// Size returns the size of the export in bytes.
	Size() (uint64, error)

	// BlockSize returns the minimum block size of the export, or 0 if the
	// server does not report one.
	BlockSize() (uint64, error)

	// BlockStatus requests status for [offset, offset+length). fn is
	// called zero or more times before BlockStatus returns.
	BlockStatus(length, offset uint64, fn StatusFunc) error
}

// Scanner queries the allocation status of a Source.
type Scanner struct {
	src              Source
	metaContext      string
	maxRequest       uint64
	defaultBlockSize uint64
	log              *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMetaContext selects the meta context to accept entries from.
func WithMetaContext(name string) Option {
	return func(s *Scanner) { s.metaContext = name }
}

// WithMaxRequest limits the length of a single block status request.
func WithMaxRequest(n uint64) Option {
	return func(s *Scanner) { s.maxRequest = n }
}

// WithDefaultBlockSize sets the block size used when the source does not
// report one.
func WithDefaultBlockSize(n uint64) Option {
	return func(s *Scanner) { s.defaultBlockSize = n }
}

// WithLogger sets the scanner logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scanner) { s.log = log }
}

// NewScanner returns a scanner for src.
func NewScanner(src Source, opts ...Option) *Scanner {
	s := &Scanner{
		src:              src,
		metaContext:      AllocationContext,
		maxRequest:       MaxRequest,
		defaultBlockSize: DefaultBlockSize,
		log:              zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Result is the outcome of Discover.
type Result struct {
	// Size of the export.
	Size uint64

	// Runs in offset order, covering Size bytes.
	Runs []StatusRun

	// Requests is the number of block status requests sent.
	Requests int
}

// Discover queries the status of the entire export and returns the
// coalesced runs. Requests are sent one at a time in offset order.
func (s *Scanner) Discover() (*Result, error) {
	log := s.log.With(zap.String("scan_id", uuid.NewString()))

	size, err := s.src.Size()
	if err != nil {
		return nil, fmt.Errorf("cannot get export size: %w", err)
	}

	blockSize, err := s.src.BlockSize()
	if err != nil {
		return nil, fmt.Errorf("cannot get export block size: %w", err)
	}
	if blockSize == 0 {
		blockSize = s.defaultBlockSize
	}

	maxLength, err := MaxRequestLength(s.maxRequest, blockSize)
	if err != nil {
		return nil, err
	}

	log.Debug("Starting block status scan",
		zap.Uint64("size", size),
		zap.Uint64("block_size", blockSize),
		zap.Uint64("max_length", maxLength),
		zap.String("meta_context", s.metaContext))

	acc := newAccumulator(s.metaContext)

	for offset := uint64(0); offset < size; {
		length := min(size-offset, maxLength)
		if err := acc.query(s.src, offset, length); err != nil {
			return nil, err
		}
		offset += length
	}

	res := &Result{
		Size:     size,
		Requests: len(acc.reports),
		Runs:     Coalesce(acc.reports, log),
	}

	log.Debug("Finished block status scan",
		zap.Int("requests", res.Requests),
		zap.Int("runs", len(res.Runs)))

	return res, nil
}

// Scan discovers the export status and returns extents covering the entire
// export. Nothing is returned if any request fails.
func (s *Scanner) Scan() ([]*virtnbdbackup.Extent, error) {
	res, err := s.Discover()
	if err != nil {
		return nil, err
	}
	return Normalize(res.Runs, res.Size)
}
