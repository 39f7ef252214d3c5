// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package units provides constants for common units.
package units

const (
	// Sector is the traditional disk sector size, used when a device does
	// not report its block size.
	Sector uint64 = 512

	KiB uint64 = 1024
	MiB uint64 = 1024 * KiB
	GiB uint64 = 1024 * MiB
	TiB uint64 = 1024 * GiB
)
