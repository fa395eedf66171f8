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

// Package variables implements the variable-id allocator and the
// named-variable bookkeeping that sit above the CNF core, specified
// only where they touch cnf.Store: variable_generator().next()/.reset(n).
package variables

// Generator hands out variable ids starting at 0, monotonically.
// Reset raises the next id to n when n is larger and otherwise leaves
// it unchanged, so it never hands out an id below the current
// watermark, matching the original's "reset grows, never
// shrinks" contract used when a caller pre-declares a variable count
// up front.
type Generator struct {
	next uint32
}

// Next allocates and returns the next unused variable id.
func (g *Generator) Next() uint32 {
	id := g.next
	g.next++
	return id
}

// Size reports the number of ids that have been handed out or
// reserved — equivalently, the next id that Next would return.
func (g *Generator) Size() uint32 { return g.next }

// Reset raises the watermark to at least n; it is a no-op if the
// generator has already allocated n or more ids.
func (g *Generator) Reset(n uint32) {
	if n > g.next {
		g.next = n
	}
}
