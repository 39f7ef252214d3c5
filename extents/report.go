// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package extents

import "fmt"

// StatusRun describes Length bytes with the same status, starting where the
// previous run in the same report ended.
type StatusRun struct {
	Length uint64
	Code   Status
}

// Report holds the runs returned by one block status request for the range
// [Offset, Offset+Length).
type Report struct {
	Offset uint64
	Length uint64
	Runs   []StatusRun

	// Bytes described by Runs so far.
	covered uint64
}

// accumulator collects one report per request, in request order. It is
// owned by a single scan.
type accumulator struct {
	metaContext string
	reports     []Report
}

func newAccumulator(metaContext string) *accumulator {
	return &accumulator{metaContext: metaContext}
}

// query sends one block status request and appends its report. The source
// must deliver all entries before BlockStatus returns.
func (a *accumulator) query(src Source, offset, length uint64) error {
	r := &Report{Offset: offset, Length: length}

	err := src.BlockStatus(length, offset, func(metaContext string, off uint64, entries []uint32) error {
		if metaContext != a.metaContext {
			return nil
		}
		return r.add(off, entries)
	})
	if err != nil {
		return fmt.Errorf("block status offset=%d length=%d: %w", offset, length, err)
	}

	if len(r.Runs) == 0 {
		return fmt.Errorf("%w: no %q entries for offset=%d length=%d",
			ErrProtocol, a.metaContext, offset, length)
	}
	if r.covered != length {
		return fmt.Errorf("%w: entries for offset=%d length=%d cover %d bytes",
			ErrProtocol, offset, length, r.covered)
	}

	a.reports = append(a.reports, *r)
	return nil
}

// add appends flat {length, flags, ...} entries delivered by one callback.
func (r *Report) add(offset uint64, entries []uint32) error {
	if len(entries)%2 != 0 {
		return fmt.Errorf("%w: odd number of entries (%d) at offset=%d",
			ErrProtocol, len(entries), offset)
	}
	if offset != r.Offset+r.covered {
		return fmt.Errorf("%w: entries start at offset=%d, expected %d",
			ErrProtocol, offset, r.Offset+r.covered)
	}

	for i := 0; i < len(entries); i += 2 {
		length := uint64(entries[i])
		if length == 0 {
			return fmt.Errorf("%w: zero length entry at offset=%d",
				ErrProtocol, r.Offset+r.covered)
		}
		r.Runs = append(r.Runs, StatusRun{Length: length, Code: Status(entries[i+1])})
		r.covered += length
	}

	return nil
}
