// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package extents

import "go.uber.org/zap"

// Coalesce merges runs split by request boundaries and returns all runs in
// offset order.
//
// Only the last run of a report and the first run of the next report are
// considered, and they are merged only if they have the same status. A
// status change at a boundary is a real change and is kept. Runs inside a
// report are never merged. Coalesce modifies reports.
func Coalesce(reports []Report, log *zap.Logger) []StatusRun {
	if log == nil {
		log = zap.NewNop()
	}

	for i := 1; i < len(reports); i++ {
		prev := &reports[i-1]
		curr := &reports[i]
		if len(prev.Runs) == 0 || len(curr.Runs) == 0 {
			continue
		}

		last := prev.Runs[len(prev.Runs)-1]
		if last.Code != curr.Runs[0].Code {
			log.Debug("Status changes at request boundary",
				zap.Uint64("offset", curr.Offset),
				zap.Stringer("before", last.Code),
				zap.Stringer("after", curr.Runs[0].Code))
			continue
		}

		curr.Runs[0].Length += last.Length
		curr.Offset -= last.Length
		curr.Length += last.Length
		prev.Runs = prev.Runs[:len(prev.Runs)-1]
		prev.Length -= last.Length
	}

	n := 0
	for i := range reports {
		n += len(reports[i].Runs)
	}

	runs := make([]StatusRun, 0, n)
	for i := range reports {
		runs = append(runs, reports[i].Runs...)
	}

	return runs
}
