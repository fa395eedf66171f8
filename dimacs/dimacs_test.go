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

package dimacs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boolalg/bal/cnf"
)

const sample = `c a trivial example
p cnf 3 2
1 -2 0
2 3 0
`

func TestLoadParsesProblemLineAndClauses(t *testing.T) {
	s := cnf.NewStore(0, 0)
	count, err := Load(s, strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, uint32(3), s.VariablesSize())
	require.NoError(t, cnf.CheckAll(s))
}

func TestLoadClauseSpanningMultipleLines(t *testing.T) {
	const multi = "p cnf 4 1\n1 2\n3 4 0\n"
	s := cnf.NewStore(0, 0)
	count, err := Load(s, strings.NewReader(multi))
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestLoadRejectsMissingProblemLine(t *testing.T) {
	s := cnf.NewStore(0, 0)
	_, err := Load(s, strings.NewReader("1 2 0\n"))
	require.Error(t, err)
}

func TestLoadRejectsUnterminatedClause(t *testing.T) {
	s := cnf.NewStore(0, 0)
	_, err := Load(s, strings.NewReader("p cnf 2 1\n1 2\n"))
	require.Error(t, err)
}

func TestLoadIgnoresCommentsAndBlankLines(t *testing.T) {
	const withComments = "c header\n\nc another comment\np cnf 2 1\nc mid-file comment\n1 2 0\n"
	s := cnf.NewStore(0, 0)
	count, err := Load(s, strings.NewReader(withComments))
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
