// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package extents

import (
	"fmt"

	"github.com/sitedata/virtnbdbackup/units"
)

const (
	// MaxRequest is the largest length a single NBD block status command
	// can describe (2**32 - 1).
	MaxRequest uint64 = 1<<32 - 1

	// DefaultBlockSize is used when the server does not advertise a
	// minimum block size.
	DefaultBlockSize = units.Sector
)

// MaxRequestLength returns the longest range to request in one block
// status command. The result is one block short of maxRequest so that the
// last request of a scan, rounded up to blockSize by the transport, still
// fits in maxRequest. A blockSize of 0 means the server did not report one
// and DefaultBlockSize is used. maxRequest must be in [1, MaxRequest].
func MaxRequestLength(maxRequest, blockSize uint64) (uint64, error) {
	if maxRequest == 0 || maxRequest > MaxRequest {
		return 0, fmt.Errorf("%w: max request %d not in range 1-%d",
			ErrConfig, maxRequest, MaxRequest)
	}
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	if blockSize > maxRequest {
		return 0, fmt.Errorf("%w: block size %d larger than max request %d",
			ErrConfig, blockSize, maxRequest)
	}

	return maxRequest - blockSize + 1, nil
}
