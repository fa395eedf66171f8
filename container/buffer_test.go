// Copyright 2024 The BAL Authors
// This file is part of BAL.
//
// BAL is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BAL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with BAL. If not, see <http://www.gnu.org/licenses/>.

package container

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAppendAndGet(t *testing.T) {
	b := NewBuffer[uint32](0)
	b.Append(7, 3)
	require.Equal(t, uint32(3), b.Size())
	for i := uint32(0); i < 3; i++ {
		require.Equal(t, uint32(7), b.Get(i))
	}
}

func TestBufferGeometricGrowth(t *testing.T) {
	b := NewBuffer[uint32](4)
	b.Append(1, 4)
	require.Equal(t, 4, b.Cap())
	b.Append(2, 1)
	// target = size(4) + extra(1) + cap/2(2) = 7
	require.Equal(t, 7, b.Cap())
}

func TestBufferTruncate(t *testing.T) {
	b := NewBuffer[uint32](0)
	b.Append(1, 5)
	b.Truncate(2)
	require.Equal(t, uint32(2), b.Size())
	require.Panics(t, func() { b.Truncate(3) })
}

func TestBufferAtOutOfRangePanics(t *testing.T) {
	b := NewBuffer[uint32](0)
	b.Append(1, 1)
	require.Panics(t, func() { b.At(1) })
}

func TestBufferReset(t *testing.T) {
	b := NewBuffer[uint32](0)
	b.Append(1, 10)
	b.Reset(4)
	require.Equal(t, uint32(0), b.Size())
	require.Equal(t, 4, b.Cap())
}

func TestBufferSliceAliasesBackingArray(t *testing.T) {
	b := NewBuffer[uint32](0)
	b.AppendSlice([]uint32{1, 2, 3})
	s := b.Slice(0, 3)
	s[0] = 99
	require.Equal(t, uint32(99), b.Get(0))
}
