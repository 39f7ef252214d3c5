// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package extents

import "errors"

type request struct {
	offset uint64
	length uint64
}

// fakeSource reports status from a list of runs describing the entire
// device, splitting them at request boundaries like a real server.
type fakeSource struct {
	runs      []StatusRun
	blockSize uint64
	requests  []request

	// Optional override of BlockStatus.
	blockStatus func(length, offset uint64, fn StatusFunc) error
}

func newFakeSource(runs ...StatusRun) *fakeSource {
	return &fakeSource{runs: runs}
}

func (s *fakeSource) Size() (uint64, error) {
	var size uint64
	for _, r := range s.runs {
		size += r.Length
	}
	return size, nil
}

func (s *fakeSource) BlockSize() (uint64, error) {
	return s.blockSize, nil
}

func (s *fakeSource) BlockStatus(length, offset uint64, fn StatusFunc) error {
	s.requests = append(s.requests, request{offset: offset, length: length})

	if s.blockStatus != nil {
		return s.blockStatus(length, offset, fn)
	}

	// Entries for other contexts must be ignored.
	if err := fn("qemu:dirty-bitmap:backup", offset, []uint32{uint32(length), 1}); err != nil {
		return err
	}

	return fn(AllocationContext, offset, s.entries(offset, length))
}

func (s *fakeSource) entries(offset, length uint64) []uint32 {
	var entries []uint32
	end := offset + length

	var start uint64
	for _, r := range s.runs {
		runEnd := start + r.Length
		if runEnd > offset && start < end {
			n := min(runEnd, end) - max(start, offset)
			entries = append(entries, uint32(n), uint32(r.Code))
		}
		start = runEnd
	}

	return entries
}

var errTransport = errors.New("connection reset")
