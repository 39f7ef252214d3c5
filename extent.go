// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package virtnbdbackup

// Extent describes allocation info for byte range in a disk image.
type Extent struct {
	// Start is the offset of the extent from the start of the image.
	Start uint64 `json:"start" yaml:"start" msgpack:"start"`

	// Length is the length of the extent.
	Length uint64 `json:"length" yaml:"length" msgpack:"length"`

	// Data means this byte range is allocated and must be copied by a
	// backup. Unallocated holes have Data=false.
	Data bool `json:"data" yaml:"data" msgpack:"data"`

	// Zero means this byte range reads as zeroes. The extent may be
	// unallocated area or a zero cluster in a qcow2 image.
	Zero bool `json:"zero" yaml:"zero" msgpack:"zero"`
}

// NewExtent creates a new Extent.
func NewExtent(start uint64, length uint64, data bool, zero bool) *Extent {
	return &Extent{start, length, data, zero}
}

// End returns the offset of the first byte after the extent.
func (e *Extent) End() uint64 {
	return e.Start + e.Length
}

// ExtentsResult iterates over extents.
type ExtentsResult interface {
	// Next returns true if there are more extents.
	Next() bool
	// Value returns the next extent.
	Value() *Extent
}

// ExtentsWrapper wraps []*Extent to provide the ExtentsResult interface.
type ExtentsWrapper struct {
	extents []*Extent
	next    int
}

// NewExtentsWrapper create new wrapper.
func NewExtentsWrapper(e []*Extent) *ExtentsWrapper {
	return &ExtentsWrapper{extents: e}
}

// Next returns true if there are more extents.
func (w *ExtentsWrapper) Next() bool {
	return w.next < len(w.extents)
}

// Value returns the next extent.
func (w *ExtentsWrapper) Value() *Extent {
	v := w.extents[w.next]
	w.next++
	return v
}

// Collect drains res into a slice.
func Collect(res ExtentsResult) []*Extent {
	var all []*Extent
	for res.Next() {
		all = append(all, res.Value())
	}
	return all
}
