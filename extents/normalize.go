// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package extents

import (
	"fmt"

	"github.com/sitedata/virtnbdbackup"
)

// Normalize converts coalesced runs to extents with absolute offsets. The
// runs must cover exactly size bytes. Returns nil if there are no runs and
// size is 0.
func Normalize(runs []StatusRun, size uint64) ([]*virtnbdbackup.Extent, error) {
	if len(runs) == 0 {
		if size != 0 {
			return nil, fmt.Errorf("%w: no extents for size %d", ErrAccounting, size)
		}
		return nil, nil
	}

	res := make([]*virtnbdbackup.Extent, 0, len(runs))
	var start uint64

	for _, r := range runs {
		if !r.Code.Valid() {
			return nil, fmt.Errorf("%w: %s at offset %d", ErrUnknownStatus, r.Code, start)
		}
		if r.Length == 0 {
			return nil, fmt.Errorf("%w: empty extent at offset %d", ErrAccounting, start)
		}

		res = append(res, virtnbdbackup.NewExtent(start, r.Length, r.Code.HasData(), r.Code.IsZero()))
		start += r.Length
	}

	if start != size {
		return nil, fmt.Errorf("%w: extents end at %d, image size %d", ErrAccounting, start, size)
	}

	return res, nil
}

// Validate checks that extents are ordered, have no gaps, and cover exactly
// size bytes.
func Validate(extents []*virtnbdbackup.Extent, size uint64) error {
	var start uint64

	for i, e := range extents {
		if e.Start != start {
			return fmt.Errorf("%w: extent %d starts at %d, expected %d",
				ErrAccounting, i, e.Start, start)
		}
		if e.Length == 0 {
			return fmt.Errorf("%w: extent %d is empty", ErrAccounting, i)
		}
		start += e.Length
	}

	if start != size {
		return fmt.Errorf("%w: extents end at %d, image size %d", ErrAccounting, start, size)
	}

	return nil
}
