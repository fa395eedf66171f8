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

// Package dot renders the same variable co-occurrence graph graphml
// emits, as Graphviz DOT: a supplemental export format with no
// counterpart in the original, which only ever produced GraphML, but
// the node/edge semantics are identical.
package dot

import (
	"fmt"
	"io"
	"strconv"

	gv "github.com/emicklei/dot"

	"github.com/boolalg/bal/cnf"
	"github.com/boolalg/bal/graph"
	"github.com/boolalg/bal/variables"
)

// Writer renders a Store as a DOT graph.
type Writer struct {
	Weighted bool
	Names    *variables.NamedVariables
}

// Write builds the graph in memory with emicklei/dot and streams its
// textual representation to out.
func (w *Writer) Write(out io.Writer, s *cnf.Store) error {
	g := gv.NewGraph(gv.Undirected)
	nodes := make(map[uint32]gv.Node, s.VariablesSize())

	for _, n := range graph.Nodes(w.Names, s.VariablesSize()) {
		id := strconv.FormatUint(uint64(n.Variable), 10)
		node := g.Node(id)
		node.Attr("variable_id", id)
		if n.Name != "" {
			node.Attr("label", fmt.Sprintf("%s[%d](%d)", n.Name, n.Index, n.Variable))
		} else {
			node.Attr("label", id)
		}
		nodes[n.Variable] = node
	}

	if w.Weighted {
		for _, e := range graph.EnumerateWeighted(s) {
			edge := g.Edge(nodes[e.Source], nodes[e.Target])
			edge.Attr("cardinality", strconv.FormatUint(uint64(e.Cardinality), 10))
			edge.Attr("weight", strconv.FormatFloat(e.Weight, 'g', -1, 64))
		}
	} else {
		for _, e := range graph.Enumerate(s) {
			g.Edge(nodes[e.Source], nodes[e.Target])
		}
	}

	_, err := io.WriteString(out, g.String())
	return err
}
