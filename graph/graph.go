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

// Package graph walks a cnf.Store's clause records into an undirected
// variable co-occurrence graph: one node per variable, one edge per
// pair of variables occurring together in some clause. graphml and dot
// both render this same walk, so it lives here once instead of being
// duplicated per output format.
package graph

import (
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/boolalg/bal/cnf"
	"github.com/boolalg/bal/variables"
)

// Edge is an unordered pair of variable ids observed together in at
// least one clause.
type Edge struct {
	Source, Target uint32
}

// WeightedEdge additionally carries how many concrete sibling clauses
// contributed the pair (its cardinality) and the summed per-clause
// weight, normalized so a single clause's edges sum to 1
// (2*cardinality / (width*(width-1))).
type WeightedEdge struct {
	Edge
	Cardinality uint32
	Weight      float64
}

func edgeKey(a, b uint32) uint64 { return uint64(b)<<32 | uint64(a) }

// Enumerate returns every distinct variable pair co-occurring in some
// clause, in first-occurrence order.
func Enumerate(s *cnf.Store) []Edge {
	seen := make(map[uint64]bool)
	var edges []Edge
	for record := range s.SortedClauses() {
		size := len(record) - 1
		for i := 0; i < size; i++ {
			source := cnf.Literal(record[1+i]).Variable()
			for j := i + 1; j < size; j++ {
				target := cnf.Literal(record[1+j]).Variable()
				key := edgeKey(source, target)
				if seen[key] {
					continue
				}
				seen[key] = true
				edges = append(edges, Edge{Source: source, Target: target})
			}
		}
	}
	return edges
}

// EnumerateWeighted is Enumerate's cardinality/weight-tracking variant
// (graphml.hpp's GraphMLWeightedStreamWriter::write_clauses). Clauses
// of width 1 contribute no edges. For width 2 or 3, an aggregated
// record's cardinality is the number of set bits in its flags word —
// the count of concrete sign-pattern siblings it represents. Width 4
// and above always count as cardinality 1, matching the original
// exactly: aggregation covers widths up to 4, but the weighted writer
// only consults the flags word below that, so a width-4 aggregate's
// true sibling count is not reflected in its edge weight.
func EnumerateWeighted(s *cnf.Store) []WeightedEdge {
	index := make(map[uint64]int)
	var edges []WeightedEdge
	for record := range s.SortedClauses() {
		size := len(record) - 1
		if size <= 1 {
			continue
		}
		cardinality := uint32(1)
		if size < 4 {
			flags := uint16(record[0] >> 16)
			cardinality = uint32(bits.OnesCount16(flags))
		}
		weight := 2.0 * float64(cardinality) / float64(size) / float64(size-1)

		for i := 0; i < size; i++ {
			source := cnf.Literal(record[1+i]).Variable()
			for j := i + 1; j < size; j++ {
				target := cnf.Literal(record[1+j]).Variable()
				key := edgeKey(source, target)
				if pos, ok := index[key]; ok {
					edges[pos].Cardinality += cardinality
					edges[pos].Weight += weight
					continue
				}
				index[key] = len(edges)
				edges = append(edges, WeightedEdge{
					Edge:        Edge{Source: source, Target: target},
					Cardinality: cardinality,
					Weight:      weight,
				})
			}
		}
	}
	return edges
}

// NodeLabel is one variable-graph node: a bare variable id, or one
// bound to a named-array entry.
type NodeLabel struct {
	Variable uint32
	Name     string // "" when the variable has no named binding
	Index    int
}

// Nodes orders every variable id in [0, variablesSize) for emission,
// named ones first (graphml.hpp's write_variables: "first, write all
// variables that are part of named ones; second, write all other
// variables; link a variable to the first named array it occurs in and
// ignore other ones if any"). names may be nil, meaning no variable has
// a named binding.
//
// Unlike the original, which skips constant entries within a named
// array via literal_t__is_variable, NamedVariables.Declare has no
// constant representation of its own, so every declared entry is
// treated as a variable reference.
func Nodes(names *variables.NamedVariables, variablesSize uint32) []NodeLabel {
	processed := roaring.New()
	var out []NodeLabel

	if names != nil {
		for _, name := range names.Names() {
			arr, _ := names.Array(name)
			for i, lit := range arr {
				v := cnf.Literal(lit).Variable()
				if processed.Contains(v) {
					continue
				}
				processed.Add(v)
				out = append(out, NodeLabel{Variable: v, Name: name, Index: i})
			}
		}
	}

	for v := uint32(0); v < variablesSize; v++ {
		if processed.Contains(v) {
			continue
		}
		processed.Add(v)
		out = append(out, NodeLabel{Variable: v})
	}
	return out
}
