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

// Package graphml emits a cnf.Store's variable co-occurrence graph as
// GraphML: nodes are variables, edges connect variables sharing a
// clause. The weighted variant additionally annotates each edge with
// its cardinality and normalized weight.
package graphml

import (
	"fmt"
	"io"

	"github.com/boolalg/bal/cnf"
	"github.com/boolalg/bal/graph"
	"github.com/boolalg/bal/variables"
)

// Writer renders a Store as GraphML.
type Writer struct {
	// Weighted adds e_cardinality/e_weight edge attributes.
	Weighted bool
	// Names supplies named-variable labels; nil means every node is
	// labeled by its bare variable id.
	Names *variables.NamedVariables
}

// Write streams the full document: header, variable nodes, edges,
// footer, in that order, matching GraphMLStreamWriter::write.
func (w *Writer) Write(out io.Writer, s *cnf.Store) error {
	if err := w.writeHeader(out); err != nil {
		return err
	}
	if err := w.writeVariables(out, s); err != nil {
		return err
	}
	if err := w.writeEdges(out, s); err != nil {
		return err
	}
	return w.writeFooter(out)
}

func (w *Writer) writeHeader(out io.Writer) error {
	_, err := fmt.Fprint(out,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"+
			"<graphml xmlns=\"http://graphml.graphdrawing.org/xmlns\" xmlns:xsi=\"http://www.w3.org/2001/XMLSchema-instance\" xsi:schemaLocation=\"http://graphml.graphdrawing.org/xmlns http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd\">\n"+
			"<graph id=\"CNF\" edgedefault=\"undirected\">\n"+
			"<key id=\"n_variable_name\" for=\"node\" attr.name=\"variable_name\" attr.type=\"string\"/>\n"+
			"<key id=\"n_variable_index\" for=\"node\" attr.name=\"variable_index\" attr.type=\"int\"/>\n"+
			"<key id=\"n_variable_id\" for=\"node\" attr.name=\"variable_id\" attr.type=\"int\"/>\n"+
			"<key id=\"n_label\" for=\"node\" attr.name=\"label\" attr.type=\"string\"/>\n")
	if err != nil {
		return err
	}
	if w.Weighted {
		_, err = fmt.Fprint(out,
			"<key id=\"e_cardinality\" for=\"edge\" attr.name=\"cardinality\" attr.type=\"int\"/>\n"+
				"<key id=\"e_weight\" for=\"edge\" attr.name=\"weight\" attr.type=\"double\"/>\n")
	}
	return err
}

func (w *Writer) writeFooter(out io.Writer) error {
	_, err := fmt.Fprint(out, "</graph>\n</graphml>\n")
	return err
}

func (w *Writer) writeVariables(out io.Writer, s *cnf.Store) error {
	for _, n := range graph.Nodes(w.Names, s.VariablesSize()) {
		if err := writeVariableNode(out, n); err != nil {
			return err
		}
	}
	return nil
}

func writeVariableNode(out io.Writer, n graph.NodeLabel) error {
	if _, err := fmt.Fprintf(out, "<node id=\"v%d\">\n<data key=\"n_variable_id\">%d</data>\n", n.Variable, n.Variable); err != nil {
		return err
	}
	if n.Name != "" {
		if _, err := fmt.Fprintf(out, "<data key=\"n_variable_name\">%s</data>\n<data key=\"n_variable_index\">%d</data>\n", n.Name, n.Index); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(out, "<data key=\"n_label\">"); err != nil {
		return err
	}
	if n.Name != "" {
		if _, err := fmt.Fprintf(out, "%s[%d](", n.Name, n.Index); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(out, "%d", n.Variable); err != nil {
		return err
	}
	if n.Name != "" {
		if _, err := fmt.Fprint(out, ")"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(out, "</data>\n</node>\n")
	return err
}

func (w *Writer) writeEdges(out io.Writer, s *cnf.Store) error {
	if w.Weighted {
		for _, e := range graph.EnumerateWeighted(s) {
			if _, err := fmt.Fprintf(out,
				"<edge source=\"v%d\" target=\"v%d\">\n<data key=\"e_cardinality\">%d</data>\n<data key=\"e_weight\">%g</data>\n</edge>\n",
				e.Source, e.Target, e.Cardinality, e.Weight); err != nil {
				return err
			}
		}
		return nil
	}
	for _, e := range graph.Enumerate(s) {
		if _, err := fmt.Fprintf(out, "<edge source=\"v%d\" target=\"v%d\"/>\n", e.Source, e.Target); err != nil {
			return err
		}
	}
	return nil
}
