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

// Package avltree implements the AVL-ordered binary-trees index: a
// specialization of index.Index where each instance's items form a
// self-balancing ordered binary search tree, keyed by a
// caller-supplied comparator over an external buffer.
//
// The original C++ (binarytreeindex.hpp) names this "AvlTreesIndex"
// but never actually rebalances — it is a plain unbalanced BST, and
// its own TODO says rollback "does not implement rollback while
// changing matched items within the transaction bound." This
// implementation does the real thing: standard AVL rotations keep
// each instance's tree within one level of balance. Rollback still
// isn't attempted via reversing rotations — it is handled by a full
// rebuild instead (see cnf.Store's L0 index RebuildFunc).
package avltree

import "github.com/boolalg/bal/index"

// node is the per-item payload: parent/left/right node offsets plus
// the referenced external-buffer offset, and the subtree height that
// Append's rebalancing pass maintains and derives balance factors from.
type node struct {
	parent, left, right uint32
	containerOffset     uint32
	height              int32 // subtree height, leaf == 1, empty == 0
}

// Comparator compares the records referenced by two container
// offsets. It must return <0, 0, or >0 exactly like the original's
// comparator_t. Implementations must not assume either offset lives
// before the external buffer's current tail: the tentative
// (not-yet-committed) record may be passed in.
type Comparator[T any] func(lhs, rhs *T) int

// Container is the minimal read contract avltree needs from the
// external data buffer: given an offset, produce a pointer usable by
// the comparator.
type Container[T any] interface {
	At(offset uint32) *T
}

// AVLIndex is a BinaryTreesIndex/AvlTreesIndex specialization: each
// instance is an AVL tree of node, ordered by comparing the records
// the nodes' ContainerOffset fields point at.
type AVLIndex[T any] struct {
	idx        index.Index[node]
	container  Container[T]
	comparator Comparator[T]
}

// New constructs an AVLIndex reading records through container and
// ordering them with cmp.
func New[T any](container Container[T], cmp Comparator[T]) *AVLIndex[T] {
	return &AVLIndex[T]{container: container, comparator: cmp}
}

// Reset clears the index and preallocates instances/nodeCapacity.
func (a *AVLIndex[T]) Reset(instances, nodeCapacity uint32) {
	a.idx.Reset(int(instances), int(nodeCapacity))
}

// ResetInstancesSize grows the instance table without touching nodes.
func (a *AVLIndex[T]) ResetInstancesSize(n uint32) { a.idx.ResetInstancesSize(n) }

// NodeCount returns the current node count (== version stamp).
func (a *AVLIndex[T]) NodeCount() uint32 { return a.idx.NodeCount() }

// InstancesSize returns the current instance table length.
func (a *AVLIndex[T]) InstancesSize() uint32 { return a.idx.InstancesSize() }

// IsValidInsertionPoint reports whether p was computed at the current
// node count.
func (a *AVLIndex[T]) IsValidInsertionPoint(p index.InsertionPoint) bool {
	return a.idx.IsValidInsertionPoint(p)
}

// SetRebuildFunc installs a rollback hook; see index.RebuildFunc.
func (a *AVLIndex[T]) SetRebuildFunc(f index.RebuildFunc) { a.idx.SetRebuildFunc(f) }

// TransactionBegin/Commit/Rollback/TransactionOffsetIsImmutable forward
// to the underlying generic index.
func (a *AVLIndex[T]) TransactionBegin(containerSize uint32) { a.idx.TransactionBegin(containerSize) }
func (a *AVLIndex[T]) TransactionCommit()                    { a.idx.TransactionCommit() }
func (a *AVLIndex[T]) TransactionRollback()                  { a.idx.TransactionRollback() }
func (a *AVLIndex[T]) TransactionOffsetIsImmutable(offset uint32) bool {
	return a.idx.TransactionOffsetIsImmutable(offset)
}
func (a *AVLIndex[T]) TransactionOpen() bool { return a.idx.TransactionOpen() }

// MemorySize reports bytes used by the index, for diagnostics.
func (a *AVLIndex[T]) MemorySize() uint64 { return a.idx.MemorySize(24) } // 4xu32 + height, rounded

// ResetNodes / ResetInstancesTo expose the raw rebuild primitives to a
// RebuildFunc implementation (see cnf.Store's L0 index rebuild).
func (a *AVLIndex[T]) ResetNodes()                 { a.idx.ResetNodes() }
func (a *AVLIndex[T]) ResetInstancesTo(size uint32) { a.idx.ResetInstancesTo(size) }

// Find performs a pure lookup: walk from instance's root, comparing
// key against each node's referenced record. Returns the container
// offset of the first equal node, or index.End.
func (a *AVLIndex[T]) Find(instance uint32, key *T) uint32 {
	if instance >= a.idx.InstancesSize() {
		return index.End
	}
	offset := a.idx.InstanceRoot(instance)
	for offset != index.End {
		n := a.idx.Node(offset)
		result := a.comparator(key, a.container.At(n.containerOffset))
		switch {
		case result > 0:
			offset = n.right
		case result < 0:
			offset = n.left
		default:
			return n.containerOffset
		}
	}
	return index.End
}

// FindInsertionPoint performs the insertion-point variant of find:
// same walk, but computes where a new node would splice in if key is
// absent, or identifies the exact matching node if present. Grows the
// instance table with index.End entries first if instance is out of
// range.
func (a *AVLIndex[T]) FindInsertionPoint(instance uint32, key *T, p *index.InsertionPoint) {
	root := a.idx.InstanceRoot(instance) // grows instance table as a side effect
	p.VersionStamp = a.idx.NodeCount()
	p.ContainerOffset = index.End

	if root == index.End {
		p.Kind = index.KindRoot
		p.Offset = instance
		return
	}

	offset := root
	for {
		n := a.idx.Node(offset)
		result := a.comparator(key, a.container.At(n.containerOffset))
		switch {
		case result > 0:
			if n.right == index.End {
				p.Kind = index.KindRight
				p.Offset = offset
				return
			}
			offset = n.right
		case result < 0:
			if n.left == index.End {
				p.Kind = index.KindLeft
				p.Offset = offset
				return
			}
			offset = n.left
		default:
			p.Kind = index.KindCurrent
			p.Offset = offset
			p.ContainerOffset = n.containerOffset
			return
		}
	}
}

// Append mutates the tree for instance per p.Kind:
//   - KindRoot: the instance becomes a fresh single-node tree.
//   - KindLeft/KindRight: a new leaf is linked under the node at
//     p.Offset, then the path back to the root is rebalanced.
//   - KindCurrent: the existing node at p.Offset has its
//     ContainerOffset overwritten in place — the tree shape is
//     untouched. This is how aggregation merges into an existing
//     record, potentially relocating its payload to a later offset
//     (the split/shadow case in cnf.Store).
func (a *AVLIndex[T]) Append(instance uint32, p index.InsertionPoint, containerOffset uint32) {
	if p.Offset == index.End {
		panic("avltree: append with unset insertion point offset")
	}
	if !a.IsValidInsertionPoint(p) {
		panic("avltree: append with stale insertion point")
	}

	if p.Kind == index.KindCurrent {
		a.idx.Node(p.Offset).containerOffset = containerOffset
		return
	}

	newOffset := a.idx.AppendNode(node{parent: index.End, left: index.End, right: index.End, containerOffset: containerOffset, height: 1})

	switch p.Kind {
	case index.KindRoot:
		a.idx.SetInstanceRoot(p.Offset, newOffset)
		return // single-node tree, nothing to rebalance
	case index.KindLeft:
		parent := a.idx.Node(p.Offset)
		if parent.left != index.End {
			panic("avltree: left slot already occupied")
		}
		parent.left = newOffset
		a.idx.Node(newOffset).parent = p.Offset
	case index.KindRight:
		parent := a.idx.Node(p.Offset)
		if parent.right != index.End {
			panic("avltree: right slot already occupied")
		}
		parent.right = newOffset
		a.idx.Node(newOffset).parent = p.Offset
	default:
		panic("avltree: invalid insertion point kind")
	}

	a.rebalance(instance, p.Offset)
}

// rebalance walks from n, the parent of the newly-linked leaf, up to
// the root, recomputing each ancestor's stored height from its (already correct)
// children's heights and rotating as soon as a node's balance factor
// leaves [-1, 1]. Every step is O(1) — heights are maintained
// incrementally, never recomputed from scratch — so the whole walk is
// O(log n), amortized logarithmic depth as the original promises.
// Rotations fix up the grandparent (or instance root) link
// themselves, see rotateLeft/rotateRight.
func (a *AVLIndex[T]) rebalance(instance, n uint32) {
	for n != index.End {
		bf := a.balanceFactor(n)
		if bf > 1 || bf < -1 {
			n = a.rotate(instance, n, bf)
		} else {
			a.updateHeight(n)
		}
		n = a.idx.Node(n).parent
	}
}

func (a *AVLIndex[T]) nodeHeight(n uint32) int32 {
	if n == index.End {
		return 0
	}
	return a.idx.Node(n).height
}

func (a *AVLIndex[T]) balanceFactor(n uint32) int {
	node := a.idx.Node(n)
	return int(a.nodeHeight(node.right) - a.nodeHeight(node.left))
}

func (a *AVLIndex[T]) updateHeight(n uint32) {
	node := a.idx.Node(n)
	lh, rh := a.nodeHeight(node.left), a.nodeHeight(node.right)
	if lh > rh {
		node.height = lh + 1
	} else {
		node.height = rh + 1
	}
}

// rotate performs the rotation needed at n given its balance factor bf
// (>1: right-heavy, <-1: left-heavy), returning the offset of the node
// that replaces n as the subtree root. Heights of every node touched
// are refreshed before returning.
func (a *AVLIndex[T]) rotate(instance, n uint32, bf int) uint32 {
	if bf > 1 {
		right := a.idx.Node(n).right
		if a.balanceFactor(right) < 0 {
			a.rotateRight(instance, right)
		}
		return a.rotateLeft(instance, n)
	}
	left := a.idx.Node(n).left
	if a.balanceFactor(left) > 0 {
		a.rotateLeft(instance, left)
	}
	return a.rotateRight(instance, n)
}

// relinkParent retargets whichever of grandparent's child slots used
// to hold oldRoot so it now holds newRoot instead; if grandparent is
// index.End, oldRoot was the instance's tree root and the instance
// table is retargeted instead.
func (a *AVLIndex[T]) relinkParent(instance, grandparent, oldRoot, newRoot uint32) {
	if grandparent == index.End {
		a.idx.SetInstanceRoot(instance, newRoot)
		return
	}
	g := a.idx.Node(grandparent)
	if g.left == oldRoot {
		g.left = newRoot
	} else {
		g.right = newRoot
	}
}

// rotateLeft rotates n down and to the left, promoting n.right.
// Returns the new subtree root (the former n.right), with heights and
// the grandparent/instance-root link already fixed up.
func (a *AVLIndex[T]) rotateLeft(instance, n uint32) uint32 {
	nNode := a.idx.Node(n)
	r := nNode.right
	rNode := a.idx.Node(r)
	grandparent := nNode.parent

	nNode.right = rNode.left
	if rNode.left != index.End {
		a.idx.Node(rNode.left).parent = n
	}
	rNode.left = n
	rNode.parent = grandparent
	nNode.parent = r

	a.relinkParent(instance, grandparent, n, r)
	a.updateHeight(n)
	a.updateHeight(r)
	return r
}

// rotateRight rotates n down and to the right, promoting n.left.
// Returns the new subtree root (the former n.left), with heights and
// the grandparent/instance-root link already fixed up.
func (a *AVLIndex[T]) rotateRight(instance, n uint32) uint32 {
	nNode := a.idx.Node(n)
	l := nNode.left
	lNode := a.idx.Node(l)
	grandparent := nNode.parent

	nNode.left = lNode.right
	if lNode.right != index.End {
		a.idx.Node(lNode.right).parent = n
	}
	lNode.right = n
	lNode.parent = grandparent
	nNode.parent = l

	a.relinkParent(instance, grandparent, n, l)
	a.updateHeight(n)
	a.updateHeight(l)
	return l
}

// InOrder returns the container offsets for instance's tree in
// ascending comparator order — used both standalone, for "clauses
// sharing a leading variable", and by All for whole-index traversal.
func (a *AVLIndex[T]) InOrder(instance uint32) []uint32 {
	if instance >= a.idx.InstancesSize() {
		return nil
	}
	var out []uint32
	var walk func(n uint32)
	walk = func(n uint32) {
		if n == index.End {
			return
		}
		node := a.idx.Node(n)
		walk(node.left)
		out = append(out, node.containerOffset)
		walk(node.right)
	}
	walk(a.idx.InstanceRoot(instance))
	return out
}

// All visits every referenced container offset across every instance,
// in instance-id order and in-order within each instance: it skips
// empty instances and delegates within-instance order to InOrder.
func (a *AVLIndex[T]) All() []uint32 {
	var out []uint32
	for i := uint32(0); i < a.idx.InstancesSize(); i++ {
		out = append(out, a.InOrder(i)...)
	}
	return out
}
