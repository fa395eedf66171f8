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

package variables

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// namedLookupCacheSize bounds the LRU used by Lookup. Encoders built on
// top of cnf.Store (add/xor/sha, none of which are in this module's
// scope) tend to re-query the same handful of array names repeatedly
// while emitting bit-level clauses for one expression; this keeps that
// repeated lookup cheap without growing unbounded for formulas that
// declare many one-off named arrays.
const namedLookupCacheSize = 256

// NamedVariables records, for each declared array name, the ordered
// sequence of literal ids produced for it (a "variables array" in the
// original's terms — see variablesio.hpp). graphml/dot use this to
// label nodes with "name[index]" instead of a bare variable id, and to
// decide which variables to list first when walking all variables.
type NamedVariables struct {
	order []string
	arrays map[string][]uint32
	cache *lru.Cache[nameIndex, uint32]
}

type nameIndex struct {
	name  string
	index int
}

// NewNamedVariables returns an empty NamedVariables set.
func NewNamedVariables() *NamedVariables {
	cache, err := lru.New[nameIndex, uint32](namedLookupCacheSize)
	if err != nil {
		// only returns an error for a non-positive size, which
		// namedLookupCacheSize never is.
		panic(err)
	}
	return &NamedVariables{arrays: make(map[string][]uint32), cache: cache}
}

// Declare records literals as the array bound to name, in declaration
// order. A second Declare for the same name replaces the prior array
// and invalidates any cached lookups for it.
func (nv *NamedVariables) Declare(name string, literals []uint32) {
	old, exists := nv.arrays[name]
	if !exists {
		nv.order = append(nv.order, name)
	}
	cp := make([]uint32, len(literals))
	copy(cp, literals)
	nv.arrays[name] = cp
	for i := 0; i < len(old) || i < len(cp); i++ {
		nv.cache.Remove(nameIndex{name, i})
	}
}

// Lookup returns the literal id at index within name's array.
func (nv *NamedVariables) Lookup(name string, index int) (uint32, bool) {
	key := nameIndex{name, index}
	if v, ok := nv.cache.Get(key); ok {
		return v, true
	}
	arr, ok := nv.arrays[name]
	if !ok || index < 0 || index >= len(arr) {
		return 0, false
	}
	nv.cache.Add(key, arr[index])
	return arr[index], true
}

// Array returns the full literal sequence declared for name.
func (nv *NamedVariables) Array(name string) ([]uint32, bool) {
	arr, ok := nv.arrays[name]
	return arr, ok
}

// Names returns declared array names in declaration order, matching
// the "named first" iteration graphml/dot rely on.
func (nv *NamedVariables) Names() []string {
	out := make([]string, len(nv.order))
	copy(out, nv.order)
	return out
}
