// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package nbd queries disk images served by an NBD server using libnbd.
package nbd

import (
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/multierr"
	"libguestfs.org/libnbd"

	"github.com/sitedata/virtnbdbackup"
	"github.com/sitedata/virtnbdbackup/extents"
)

// maxInterrupts limits retries of a block status command failing with
// EINTR.
const maxInterrupts = 10

// handle is the part of libnbd.Libnbd used for queries.
type handle interface {
	GetSize() (uint64, error)
	GetBlockSize(sizeType int) (uint64, error)
	BlockStatus(count uint64, offset uint64, extent libnbd.ExtentCallback, optargs *libnbd.BlockStatusOptargs) error
}

// Backend exposes a disk image served by a Network Block Device (NBD) server.
type Backend struct {
	h           *libnbd.Libnbd
	ops         handle
	metaContext string
	opts        []extents.Option
}

// Connect returns a connected Backend. Caller should close the backend when
// done. opts are used when scanning the image extents.
func Connect(url, metaContext string, opts ...extents.Option) (*Backend, error) {
	return connect(metaContext, opts, func(h *libnbd.Libnbd) error {
		return h.ConnectUri(url)
	})
}

// ConnectFile serves filename using qemu-nbd and returns a connected
// Backend.
func ConnectFile(filename, format, metaContext string, opts ...extents.Option) (*Backend, error) {
	argv := []string{
		"qemu-nbd",
		"--read-only",
		"--persistent",
		"--shared=8",
		"--cache=none",
		"--format", format,
		filename,
	}
	return connect(metaContext, opts, func(h *libnbd.Libnbd) error {
		return h.ConnectSystemdSocketActivation(argv)
	})
}

func connect(metaContext string, opts []extents.Option, fn func(*libnbd.Libnbd) error) (*Backend, error) {
	h, err := libnbd.Create()
	if err != nil {
		return nil, err
	}

	if err := h.AddMetaContext(metaContext); err != nil {
		h.Close()
		return nil, err
	}

	if err := fn(h); err != nil {
		h.Close()
		return nil, err
	}

	ok, err := h.CanMetaContext(metaContext)
	if err != nil {
		h.Close()
		return nil, err
	}
	if !ok {
		h.Close()
		return nil, fmt.Errorf("Server does not support meta context %q", metaContext)
	}

	return &Backend{h: h, ops: h, metaContext: metaContext, opts: opts}, nil
}

// Size return image size.
func (b *Backend) Size() (uint64, error) {
	return b.ops.GetSize()
}

// BlockSize returns the minimum block size advertised by the server, or 0.
func (b *Backend) BlockSize() (uint64, error) {
	return b.ops.GetBlockSize(libnbd.SIZE_MINIMUM)
}

type reply struct {
	metaContext string
	offset      uint64
	entries     []uint32
}

// BlockStatus gets the status of length bytes at offset and passes the
// replies to fn before returning. Replies are delivered only after the
// command succeeded, so a retried command never reports twice.
func (b *Backend) BlockStatus(length, offset uint64, fn extents.StatusFunc) error {
	for attempt := 1; ; attempt++ {
		var replies []reply
		var cbErr error

		cb := func(metacontext string, off uint64, e []uint32, error *int) int {
			if *error != 0 {
				cbErr = fmt.Errorf("%w: server error: %s",
					extents.ErrProtocol, syscall.Errno(*error))
				return -1
			}
			replies = append(replies, reply{metacontext, off, append([]uint32(nil), e...)})
			return 0
		}

		err := b.ops.BlockStatus(length, offset, cb, nil)
		if cbErr != nil {
			return cbErr
		}
		if err != nil {
			// BlockStatus may fail randomly, looks like bug in libnbd.
			// https://listman.redhat.com/archives/libguestfs/2021-October/msg00113.html
			var nbdErr *libnbd.LibnbdError
			if errors.As(err, &nbdErr) && nbdErr.Errno == syscall.EINTR && attempt < maxInterrupts {
				continue
			}
			return err
		}

		for _, r := range replies {
			if err := fn(r.metaContext, r.offset, r.entries); err != nil {
				return err
			}
		}

		return nil
	}
}

// Extents returns all image extents, merging extents split by the maximum
// request size.
func (b *Backend) Extents() (virtnbdbackup.ExtentsResult, error) {
	opts := append([]extents.Option{extents.WithMetaContext(b.metaContext)}, b.opts...)

	res, err := extents.NewScanner(b, opts...).Scan()
	if err != nil {
		return nil, err
	}

	return virtnbdbackup.NewExtentsWrapper(res), nil
}

// Close closes the connection the NBD server. The Backend cannot be used after
// closing the connection.
func (b *Backend) Close() error {
	var err error
	if e := b.h.Shutdown(nil); e != nil {
		err = multierr.Append(err, e)
	}
	if e := b.h.Close(); e != nil {
		err = multierr.Append(err, e)
	}
	return err
}
