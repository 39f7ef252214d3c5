// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package virtnbdbackup

// Backend exposes a disk image for discovering which ranges a backup must
// copy.
type Backend interface {

	// Size return the size of the underlying disk image.
	Size() (uint64, error)

	// Extents return image extents covering the entire image.
	Extents() (ExtentsResult, error)

	// Close the backend.
	Close() error
}
