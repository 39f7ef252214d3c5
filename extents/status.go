// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package extents

import "fmt"

// Status is the value reported by the "base:allocation" meta context for
// a run of bytes. Bit 0 means hole, bit 1 means the range reads as zeroes.
type Status uint32

const (
	StatusData     Status = 0
	StatusHole     Status = 1
	StatusZero     Status = 2
	StatusHoleZero Status = 3
)

// Valid returns true for statuses the normalizer knows how to map. A hole
// that does not read as zeroes is legal in the protocol but has no sane
// meaning for backup, so it is rejected.
func (s Status) Valid() bool {
	switch s {
	case StatusData, StatusZero, StatusHoleZero:
		return true
	default:
		return false
	}
}

// HasData returns true if the range is allocated.
func (s Status) HasData() bool {
	return s != StatusHoleZero
}

// IsZero returns true if the range reads as zeroes.
func (s Status) IsZero() bool {
	return s == StatusZero || s == StatusHoleZero
}

func (s Status) String() string {
	switch s {
	case StatusData:
		return "data"
	case StatusHole:
		return "hole"
	case StatusZero:
		return "zero"
	case StatusHoleZero:
		return "hole,zero"
	default:
		return fmt.Sprintf("status(%d)", uint32(s))
	}
}
