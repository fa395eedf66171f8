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

package cnf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLiteralEncoding(t *testing.T) {
	pos := NewLiteral(5, false)
	neg := NewLiteral(5, true)
	require.False(t, pos.IsNegated())
	require.True(t, neg.IsNegated())
	require.Equal(t, uint32(5), pos.Variable())
	require.Equal(t, uint32(5), neg.Variable())
	require.Equal(t, neg, pos.Negate())
	require.Equal(t, pos, neg.Negate())
	require.True(t, pos.Uncomplement().IsNegated())
	require.True(t, neg.Uncomplement().IsNegated())
}

func TestClauseHeaderRoundTrip(t *testing.T) {
	h := clauseHeader(3, 0xBEEF)
	require.Equal(t, uint16(3), clauseSize(h))
	require.Equal(t, uint16(0xBEEF), clauseFlags(h))
}

func TestClauseIsAggregated(t *testing.T) {
	for w := uint16(1); w <= 4; w++ {
		require.True(t, clauseIsAggregated(w), "width %d", w)
	}
	require.False(t, clauseIsAggregated(5))
}

func TestClauseMemorySize(t *testing.T) {
	require.Equal(t, uint32(4), clauseMemorySize(3))
}

func TestPopcount16(t *testing.T) {
	require.Equal(t, uint16(0), popcount16(0))
	require.Equal(t, uint16(1), popcount16(1<<7))
	require.Equal(t, uint16(16), popcount16(0xFFFF))
}

func TestCompareClausesLexicographic(t *testing.T) {
	a := []uint32{2, 10, 20}
	b := []uint32{2, 10, 21}
	require.Negative(t, CompareClauses(a, b))
	require.Positive(t, CompareClauses(b, a))
	require.Zero(t, CompareClauses(a, a))
}

func TestCompareClausesShorterIsSmallerOnCommonPrefix(t *testing.T) {
	short := []uint32{1, 10}
	long := []uint32{2, 10, 20}
	require.Negative(t, CompareClauses(short, long))
	require.Positive(t, CompareClauses(long, short))
}

func TestCompareClausesIgnoresTrailingWordsBeyondCommonSize(t *testing.T) {
	// differs only past the shorter clause's length: decided by length.
	short := []uint32{1, 10}
	long := []uint32{2, 10, 0}
	require.Negative(t, CompareClauses(short, long))
}
