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

package avltree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boolalg/bal/index"
)

// intContainer stores values directly, offset == index into a slice.
type intContainer struct{ values []int }

func (c intContainer) At(offset uint32) *int { return &c.values[offset] }

func intCmp(lhs, rhs *int) int {
	switch {
	case *lhs < *rhs:
		return -1
	case *lhs > *rhs:
		return 1
	default:
		return 0
	}
}

func newIntIndex() (*AVLIndex[int], *intContainer) {
	c := &intContainer{}
	a := New[int](c, intCmp)
	a.Reset(1, 0)
	return a, c
}

func insert(t *testing.T, a *AVLIndex[int], c *intContainer, instance uint32, v int) {
	t.Helper()
	c.values = append(c.values, v)
	offset := uint32(len(c.values) - 1)
	var p index.InsertionPoint
	a.FindInsertionPoint(instance, &v, &p)
	require.Equal(t, index.End, p.ContainerOffset, "duplicate insert of %d", v)
	a.Append(instance, p, offset)
}

func TestInsertAndInOrderIsSorted(t *testing.T) {
	a, c := newIntIndex()
	values := []int{50, 20, 80, 10, 30, 70, 90, 5, 15, 25, 35}
	for _, v := range values {
		insert(t, a, c, 0, v)
	}

	offsets := a.InOrder(0)
	require.Len(t, offsets, len(values))
	got := make([]int, len(offsets))
	for i, off := range offsets {
		got[i] = c.values[off]
	}
	want := append([]int(nil), values...)
	sort.Ints(want)
	require.Equal(t, want, got)
}

func TestFindLocatesExistingValue(t *testing.T) {
	a, c := newIntIndex()
	for _, v := range []int{10, 20, 30, 40, 50} {
		insert(t, a, c, 0, v)
	}
	key := 30
	offset := a.Find(0, &key)
	require.NotEqual(t, index.End, offset)
	require.Equal(t, 30, c.values[offset])

	missing := 31
	require.Equal(t, index.End, a.Find(0, &missing))
}

func TestRandomizedInsertStaysBalancedAndOrdered(t *testing.T) {
	a, c := newIntIndex()
	rng := rand.New(rand.NewSource(1))
	seen := make(map[int]bool)
	var values []int
	for len(values) < 500 {
		v := rng.Intn(100000)
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
		insert(t, a, c, 0, v)
	}

	offsets := a.InOrder(0)
	require.Len(t, offsets, len(values))
	for i := 1; i < len(offsets); i++ {
		require.Less(t, c.values[offsets[i-1]], c.values[offsets[i]])
	}

	var height func(n uint32) int
	height = func(n uint32) int {
		if n == index.End {
			return 0
		}
		node := a.idx.Node(n)
		lh, rh := height(node.left), height(node.right)
		require.LessOrEqual(t, lh-rh, 1, "node %d is left-heavy", n)
		require.LessOrEqual(t, rh-lh, 1, "node %d is right-heavy", n)
		if lh > rh {
			return lh + 1
		}
		return rh + 1
	}
	height(a.idx.InstanceRoot(0))
}

func TestAppendWithStaleInsertionPointPanics(t *testing.T) {
	a, c := newIntIndex()
	v := 10
	var p index.InsertionPoint
	a.FindInsertionPoint(0, &v, &p)
	// a second, unrelated insert bumps the node count, invalidating p.
	insert(t, a, c, 0, 99)
	require.False(t, a.IsValidInsertionPoint(p))
	c.values = append(c.values, v)
	require.Panics(t, func() { a.Append(0, p, uint32(len(c.values)-1)) })
}

func TestAppendKindCurrentOverwritesPayloadInPlace(t *testing.T) {
	a, c := newIntIndex()
	insert(t, a, c, 0, 10)
	insert(t, a, c, 0, 20)

	v := 10
	var p index.InsertionPoint
	a.FindInsertionPoint(0, &v, &p)
	require.Equal(t, index.KindCurrent, p.Kind)

	c.values = append(c.values, 10)
	newOffset := uint32(len(c.values) - 1)
	before := a.NodeCount()
	a.Append(0, p, newOffset)
	require.Equal(t, before, a.NodeCount(), "KindCurrent must not add a node")

	offset := a.Find(0, &v)
	require.Equal(t, newOffset, offset)
}

func TestMultipleInstancesAreIndependent(t *testing.T) {
	a, c := newIntIndex()
	a.ResetInstancesSize(3)
	insert(t, a, c, 0, 1)
	insert(t, a, c, 2, 100)

	require.Equal(t, []uint32{0}, a.InOrder(0))
	require.Nil(t, a.InOrder(1))
	require.Equal(t, []uint32{1}, a.InOrder(2))

	all := a.All()
	require.Len(t, all, 2)
}
