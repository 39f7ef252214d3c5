// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package extents

import "errors"

var (
	// ErrConfig is returned when the scanner cannot compute a usable
	// request length. No request is sent to the device.
	ErrConfig = errors.New("invalid block status configuration")

	// ErrProtocol is returned when the device replies with block status
	// that does not describe exactly the requested range.
	ErrProtocol = errors.New("block status protocol violation")

	// ErrUnknownStatus is returned for status codes without a defined
	// meaning for backup.
	ErrUnknownStatus = errors.New("unknown block status")

	// ErrAccounting is returned when the extents do not add up to the
	// image size.
	ErrAccounting = errors.New("extents do not cover the image")
)
