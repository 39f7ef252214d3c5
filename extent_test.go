// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

package virtnbdbackup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtentsWrapper(t *testing.T) {
	extents := []*Extent{
		NewExtent(0, 4096, true, false),
		NewExtent(4096, 8192, false, true),
	}

	w := NewExtentsWrapper(extents)
	require.True(t, w.Next())
	require.Equal(t, extents[0], w.Value())
	require.True(t, w.Next())
	require.Equal(t, extents[1], w.Value())
	require.False(t, w.Next())
}

func TestCollectEmpty(t *testing.T) {
	require.Empty(t, Collect(NewExtentsWrapper(nil)))
}

func TestExtentEnd(t *testing.T) {
	e := NewExtent(4096, 512, true, false)
	require.Equal(t, uint64(4608), e.End())
}
