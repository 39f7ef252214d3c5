// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package http gets extents of a disk image served by an imageio server.
package http

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sitedata/virtnbdbackup"
	"github.com/sitedata/virtnbdbackup/extents"
)

// extent is the imageio server representation of an extent.
type extent struct {
	Start  uint64 `json:"start"`
	Length uint64 `json:"length"`
	Zero   bool   `json:"zero"`

	// Servers not reporting holes report all extents as allocated.
	Hole bool `json:"hole"`
}

// Backend exposes a disk image served by imageio server on a oVirt host.
type Backend struct {
	url     string
	client  *http.Client
	size    uint64
	extents []*virtnbdbackup.Extent
}

// Connect returns a connected Backend. Caller should close the backend when
// done.
func Connect(url string, insecure bool) (*Backend, error) {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
	}
	return newBackend(url, &http.Client{Transport: tr}), nil
}

func newBackend(url string, client *http.Client) *Backend {
	return &Backend{url: url, client: client}
}

// Size return image size.
func (b *Backend) Size() (uint64, error) {
	if b.extents == nil {
		// imageio does not expose the size of the image in the OPTIONS request
		// yet. The only way to get size is to get all the extents and compute
		// the size from the last extent.
		if err := b.getExtents(); err != nil {
			return 0, err
		}
	}
	return b.size, nil
}

// Extents returns all image extents. Imageio server does not support getting
// partial extent yet.
func (b *Backend) Extents() (virtnbdbackup.ExtentsResult, error) {
	if b.extents == nil {
		if err := b.getExtents(); err != nil {
			return nil, err
		}
	}
	return virtnbdbackup.NewExtentsWrapper(b.extents), nil
}

// Close closes the connection to imageio server.
func (b *Backend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

func (b *Backend) getExtents() error {
	res, err := b.client.Get(b.url + "/extents")
	if err != nil {
		return err
	}

	// We always want to read the entire response and close the body so we can
	// send a new request on the same connection.
	defer res.Body.Close()

	// If the response is an errror, the response body contains the error
	// message from the server.
	if res.StatusCode != http.StatusOK {
		reason, err := io.ReadAll(res.Body)
		if err != nil {
			reason = []byte(err.Error())
		}
		return fmt.Errorf("Cannot get extents: %s", reason)
	}

	var server []extent
	if err := json.NewDecoder(res.Body).Decode(&server); err != nil {
		return fmt.Errorf("Cannot get extents: %w", err)
	}

	result := make([]*virtnbdbackup.Extent, 0, len(server))
	for _, e := range server {
		result = append(result, virtnbdbackup.NewExtent(e.Start, e.Length, !e.Hole, e.Zero))
	}

	var size uint64
	if n := len(result); n > 0 {
		size = result[n-1].End()
	}

	if err := extents.Validate(result, size); err != nil {
		return fmt.Errorf("Cannot get extents: %w", err)
	}

	b.extents = result
	b.size = size
	return nil
}
