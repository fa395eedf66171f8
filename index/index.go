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

// Package index implements the generic container index: a set of
// per-instance item lists, each item referencing one offset in an
// external data buffer. It is the foundation avltree builds its
// ordered binary-trees index on top of.
package index

import "github.com/boolalg/bal/container"

// End is re-exported for callers that only import index, not container.
const End = container.End

// Kind identifies where an InsertionPoint splices a new node.
type Kind uint8

const (
	// KindNone marks a zero-value InsertionPoint that has not been
	// computed yet.
	KindNone Kind = iota
	KindRoot
	KindLeft
	KindRight
	KindCurrent
)

// InsertionPoint is a version-stamped location returned by a Find call
// into which an Append can splice a new node. It is only valid while
// VersionStamp equals the index's current node count; any intervening
// mutation invalidates it and it must be recomputed.
type InsertionPoint struct {
	Kind            Kind
	Offset          uint32 // instance offset for KindRoot, node offset otherwise
	ContainerOffset uint32 // payload at the matched node, for KindCurrent
	VersionStamp    uint32
}

// Reset reinitializes an InsertionPoint so IsValidInsertionPoint reports false until
// it is recomputed by a Find call.
func (p *InsertionPoint) Reset() {
	*p = InsertionPoint{VersionStamp: End}
}

// RebuildFunc rebuilds an index's instance/node tables from scratch
// after a transaction rollback, given the pre-begin node count,
// instance-table size, and external container size snapshots. It must
// discard every node and reinitialize the instance table to
// instancesSize entries of End before reinserting surviving records
// from the (already truncated) external container, from offset 0 up
// to containerSize. Specialized indices (the CNF L0 index) must supply
// one because plain snapshot-truncate would leave stale payload
// pointers behind a split/shadow append. nodeSize is passed for parity
// with the original rollback signature but is unused by a
// full-rebuild override, which always clears nodes entirely rather
// than truncating to a count.
type RebuildFunc func(nodeSize, instancesSize, containerSize uint32)

// Index is the generic per-instance item-list container. NODE is the
// per-node payload type; avltree adds
// parent/left/right/containerOffset fields on top of it via its own
// node type, so Index itself only manages the instance table and
// node-count bookkeeping plus transaction snapshots.
type Index[NODE any] struct {
	nodes     container.Buffer[NODE]
	instances container.Buffer[uint32] // instance id -> root node offset, or End

	rebuild RebuildFunc

	txNodeSize     uint32
	txInstanceSize uint32
	txContainerSz  uint32
	txOpen         bool
}

// New returns an empty Index. Call Reset before use.
func New[NODE any]() *Index[NODE] {
	idx := &Index[NODE]{}
	idx.instances.Reset(0)
	idx.nodes.Reset(0)
	return idx
}

// SetRebuildFunc installs the rollback rebuild hook. Must be called
// before any TransactionBegin/Rollback if the default (truncate-only)
// rollback behavior is insufficient — see cnf.Store, which installs one
// on its avltree-based L0 index, because an AVL append can overwrite a
// node's ContainerOffset in place (the KindCurrent merge case), which
// plain truncation cannot undo.
func (idx *Index[NODE]) SetRebuildFunc(f RebuildFunc) { idx.rebuild = f }

// Reset clears the index and preallocates the instance table to
// instances entries (all End) and the node array to nodeCapacity.
func (idx *Index[NODE]) Reset(instances, nodeCapacity int) {
	if idx.txOpen {
		panic("index: reset while transaction open")
	}
	idx.instances.Reset(instances)
	idx.instances.Append(End, instances)
	idx.nodes.Reset(nodeCapacity)
}

// ResetInstancesSize grows the instance table to n entries (End),
// without touching the node array.
func (idx *Index[NODE]) ResetInstancesSize(n uint32) {
	cur := idx.instances.Size()
	if n <= cur {
		return
	}
	idx.instances.Append(End, int(n-cur))
}

// InstancesSize reports the current instance table length.
func (idx *Index[NODE]) InstancesSize() uint32 { return idx.instances.Size() }

// InstanceRoot returns the root node offset for instance, growing the
// instance table with End entries first if instance is out of range.
func (idx *Index[NODE]) InstanceRoot(instance uint32) uint32 {
	if instance >= idx.instances.Size() {
		idx.ResetInstancesSize(instance + 1)
	}
	return idx.instances.Get(instance)
}

// SetInstanceRoot assigns the root node offset for instance.
func (idx *Index[NODE]) SetInstanceRoot(instance, nodeOffset uint32) {
	idx.instances.Set(instance, nodeOffset)
}

// NodeCount is the current node array size; it doubles as the version
// stamp for insertion points.
func (idx *Index[NODE]) NodeCount() uint32 { return idx.nodes.Size() }

// Node returns a pointer to node offset i for in-place mutation.
func (idx *Index[NODE]) Node(i uint32) *NODE { return idx.nodes.At(i) }

// AppendNode appends a new node, returning its offset.
func (idx *Index[NODE]) AppendNode(n NODE) uint32 {
	offset := idx.nodes.Size()
	idx.nodes.Append(n, 1)
	return offset
}

// IsValidInsertionPoint reports whether p was computed against the
// index's current node count.
func (idx *Index[NODE]) IsValidInsertionPoint(p InsertionPoint) bool {
	return p.VersionStamp == idx.NodeCount()
}

// MemorySize reports bytes used by nodes + instance table, for
// diagnostics (cnf.Store.MemorySize, cmd/cgraph -v).
func (idx *Index[NODE]) MemorySize(nodeSize uintptr) uint64 {
	return idx.nodes.MemorySize(nodeSize) + idx.instances.MemorySize(4)
}

// TransactionBegin snapshots node count, instance-table size, and the
// caller-provided external container size, for later rollback.
func (idx *Index[NODE]) TransactionBegin(containerSize uint32) {
	if idx.txOpen {
		panic("index: nested transaction")
	}
	idx.txOpen = true
	idx.txNodeSize = idx.NodeCount()
	idx.txInstanceSize = idx.instances.Size()
	idx.txContainerSz = containerSize
}

// TransactionCommit discards the snapshot.
func (idx *Index[NODE]) TransactionCommit() {
	if !idx.txOpen {
		panic("index: commit without open transaction")
	}
	idx.txOpen = false
}

// TransactionRollback restores the index to its pre-begin snapshot. If
// a RebuildFunc was installed, it is invoked with the (separately,
// externally truncated) container size instead of relying on a naive
// node-count truncate, because specialized indices may have
// overwritten node payloads in place. Without one, the node array and
// instance table are truncated to their snapshot sizes and every
// instance root that referenced a discarded node is reset to End.
func (idx *Index[NODE]) TransactionRollback() {
	if !idx.txOpen {
		panic("index: rollback without open transaction")
	}
	if idx.rebuild != nil {
		idx.rebuild(idx.txNodeSize, idx.txInstanceSize, idx.txContainerSz)
	} else {
		idx.nodes.Truncate(idx.txNodeSize)
		idx.instances.Truncate(idx.txInstanceSize)
		for i := uint32(0); i < idx.instances.Size(); i++ {
			if root := idx.instances.Get(i); root != End && root >= idx.txNodeSize {
				idx.instances.Set(i, End)
			}
		}
	}
	idx.txOpen = false
}

// TransactionOffsetIsImmutable reports whether offset predates the
// currently open transaction's snapshot.
func (idx *Index[NODE]) TransactionOffsetIsImmutable(offset uint32) bool {
	return idx.txOpen && offset < idx.txContainerSz
}

// TransactionOpen reports whether a transaction is currently open.
func (idx *Index[NODE]) TransactionOpen() bool { return idx.txOpen }

// ResetNodes replaces the node array's logical size to 0 without
// releasing capacity; used by RebuildFunc implementations.
func (idx *Index[NODE]) ResetNodes() { idx.nodes.Truncate(0) }

// ResetInstancesTo resets every instance table entry to End, growing
// or shrinking the logical table to exactly size entries.
func (idx *Index[NODE]) ResetInstancesTo(size uint32) {
	idx.instances.Truncate(0)
	idx.instances.Append(End, int(size))
}
