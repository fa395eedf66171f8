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

package graphml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boolalg/bal/cnf"
	"github.com/boolalg/bal/variables"
)

func lit(v uint32, negated bool) uint32 { return uint32(cnf.NewLiteral(v, negated)) }

func TestWriteProducesWellFormedDocument(t *testing.T) {
	s := cnf.NewStore(3, 4)
	require.True(t, s.AppendClauseL(lit(0, false), lit(1, false)))

	var buf strings.Builder
	w := &Writer{}
	require.NoError(t, w.Write(&buf, s))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "<?xml"))
	require.Contains(t, out, "<graphml")
	require.Contains(t, out, "</graphml>")
	require.Contains(t, out, "<node id=\"v0\">")
	require.Contains(t, out, "<node id=\"v2\">") // unreferenced variable still gets a node
	require.Contains(t, out, "<edge source=\"v0\" target=\"v1\"/>")
	require.NotContains(t, out, "e_cardinality")
}

func TestWriteWeightedAddsEdgeAttributes(t *testing.T) {
	s := cnf.NewStore(2, 4)
	require.True(t, s.AppendClauseL(lit(0, false), lit(1, false)))

	var buf strings.Builder
	w := &Writer{Weighted: true}
	require.NoError(t, w.Write(&buf, s))

	out := buf.String()
	require.Contains(t, out, "e_cardinality")
	require.Contains(t, out, "<data key=\"e_cardinality\">1</data>")
}

func TestWriteNamedVariableLabel(t *testing.T) {
	s := cnf.NewStore(2, 2)
	names := variables.NewNamedVariables()
	names.Declare("x", []uint32{lit(0, false), lit(1, false)})

	var buf strings.Builder
	w := &Writer{Names: names}
	require.NoError(t, w.Write(&buf, s))

	out := buf.String()
	require.Contains(t, out, "<data key=\"n_variable_name\">x</data>")
	require.Contains(t, out, "x[0](0)")
}
