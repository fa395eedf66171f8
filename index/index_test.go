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

package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstanceRootGrowsTable(t *testing.T) {
	idx := New[uint32]()
	idx.Reset(0, 0)
	require.Equal(t, End, idx.InstanceRoot(5))
	require.Equal(t, uint32(6), idx.InstancesSize())
}

func TestAppendNodeAndVersionStamp(t *testing.T) {
	idx := New[uint32]()
	idx.Reset(1, 0)
	var p InsertionPoint
	p.Reset()
	require.False(t, idx.IsValidInsertionPoint(p))
	p.VersionStamp = idx.NodeCount()
	require.True(t, idx.IsValidInsertionPoint(p))
	idx.AppendNode(42)
	require.False(t, idx.IsValidInsertionPoint(p))
}

func TestTransactionRollbackWithoutRebuildTruncates(t *testing.T) {
	idx := New[uint32]()
	idx.Reset(1, 0)
	idx.TransactionBegin(0)
	idx.AppendNode(1)
	idx.AppendNode(2)
	idx.SetInstanceRoot(0, 0)
	idx.TransactionRollback()
	require.Equal(t, uint32(0), idx.NodeCount())
	require.Equal(t, End, idx.InstanceRoot(0))
}

func TestNestedTransactionPanics(t *testing.T) {
	idx := New[uint32]()
	idx.Reset(0, 0)
	idx.TransactionBegin(0)
	require.Panics(t, func() { idx.TransactionBegin(0) })
}

func TestCommitWithoutBeginPanics(t *testing.T) {
	idx := New[uint32]()
	idx.Reset(0, 0)
	require.Panics(t, func() { idx.TransactionCommit() })
}

func TestTransactionOffsetIsImmutable(t *testing.T) {
	idx := New[uint32]()
	idx.Reset(0, 0)
	idx.TransactionBegin(10)
	require.True(t, idx.TransactionOffsetIsImmutable(5))
	require.False(t, idx.TransactionOffsetIsImmutable(15))
	idx.TransactionCommit()
	require.False(t, idx.TransactionOffsetIsImmutable(5))
}

func TestRebuildFuncOverridesDefaultRollback(t *testing.T) {
	idx := New[uint32]()
	idx.Reset(1, 0)
	var rebuiltWith [3]uint32
	idx.SetRebuildFunc(func(nodeSize, instancesSize, containerSize uint32) {
		rebuiltWith = [3]uint32{nodeSize, instancesSize, containerSize}
		idx.ResetNodes()
		idx.ResetInstancesTo(instancesSize)
	})
	idx.TransactionBegin(7)
	idx.AppendNode(1)
	idx.TransactionRollback()
	require.Equal(t, [3]uint32{0, 1, 7}, rebuiltWith)
}
