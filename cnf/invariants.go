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

import "fmt"

// The functions in this file are exported consistency checks over a
// live Store, so both cnf's own tests and adapter packages' tests
// (dimacs, graphml, dot) can assert them after any sequence of
// mutations. Transaction atomicity and normalization idempotency
// compare two points in time rather than one snapshot, so those are
// exercised directly by tests instead of living here.

// CheckBufferIntegrity verifies that walking the buffer from offset 0
// using literals_size+1 strides exactly reaches the buffer's logical
// size.
func CheckBufferIntegrity(s *Store) error {
	offset := uint32(0)
	size := s.clauses.Size()
	for offset < size {
		clauseSz := clauseSize(s.clauses.Get(offset))
		next := offset + clauseMemorySize(clauseSz)
		if next > size {
			return fmt.Errorf("cnf: record at %d overruns buffer size %d", offset, size)
		}
		offset = next
	}
	if offset != size {
		return fmt.Errorf("cnf: buffer walk ended at %d, buffer size %d", offset, size)
	}
	return nil
}

// CheckSortedness verifies that within every record, literal words are
// strictly ascending.
func CheckSortedness(s *Store) error {
	for offset := uint32(0); offset < s.clauses.Size(); {
		size := clauseSize(s.clauses.Get(offset))
		for i := uint16(1); i < size; i++ {
			if s.clauses.Get(offset+1+uint32(i-1)) >= s.clauses.Get(offset+1+uint32(i)) {
				return fmt.Errorf("cnf: record at %d not strictly ascending at literal %d", offset, i)
			}
		}
		offset += clauseMemorySize(size)
	}
	return nil
}

// CheckNoTautologies verifies that no record contains both w and w^1.
func CheckNoTautologies(s *Store) error {
	for offset := uint32(0); offset < s.clauses.Size(); {
		size := clauseSize(s.clauses.Get(offset))
		for i := uint16(0); i < size; i++ {
			wi := s.clauses.Get(offset + 1 + uint32(i))
			for j := i + 1; j < size; j++ {
				if s.clauses.Get(offset+1+uint32(j)) == wi^1 {
					return fmt.Errorf("cnf: record at %d contains a variable and its negation", offset)
				}
			}
		}
		offset += clauseMemorySize(size)
	}
	return nil
}

// CheckIndexCoverage verifies that every record's offset appears in
// exactly one index node, attached to the variable id of its first
// literal.
func CheckIndexCoverage(s *Store) error {
	indexed := make(map[uint32]bool)
	for _, offset := range s.l0.All() {
		if indexed[offset] {
			return fmt.Errorf("cnf: offset %d indexed more than once", offset)
		}
		indexed[offset] = true
		leading := Literal(s.clauses.Get(offset + 1)).Variable()
		found := false
		for _, o := range s.l0.InOrder(leading) {
			if o == offset {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("cnf: offset %d not reachable from variable %d's instance", offset, leading)
		}
	}
	for offset := uint32(0); offset < s.clauses.Size(); {
		size := clauseSize(s.clauses.Get(offset))
		if !indexed[offset] {
			return fmt.Errorf("cnf: record at %d is not indexed", offset)
		}
		offset += clauseMemorySize(size)
	}
	return nil
}

// CheckIndexOrdering verifies that for every instance tree, in-order
// traversal produces clause offsets whose records are non-decreasing
// under CompareClauses.
func CheckIndexOrdering(s *Store) error {
	for v := uint32(0); v < s.l0.InstancesSize(); v++ {
		offsets := s.l0.InOrder(v)
		for i := 1; i < len(offsets); i++ {
			if CompareClauses(s.recordAt(offsets[i-1]), s.recordAt(offsets[i])) > 0 {
				return fmt.Errorf("cnf: instance %d out of order at position %d", v, i)
			}
		}
	}
	return nil
}

// CheckAggregationCanonicality verifies that for width <=4, no two
// records share the same multiset of literal-variable words; for
// width >4, no two records share the same literal sequence.
func CheckAggregationCanonicality(s *Store) error {
	seen := make(map[string]uint32)
	for offset := uint32(0); offset < s.clauses.Size(); {
		size := clauseSize(s.clauses.Get(offset))
		key := fmt.Sprintf("%d:", size)
		for i := uint16(0); i < size; i++ {
			key += fmt.Sprintf("%d,", s.clauses.Get(offset+1+uint32(i)))
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("cnf: records at %d and %d share literal words", prev, offset)
		}
		seen[key] = offset
		offset += clauseMemorySize(size)
	}
	return nil
}

// CheckFlagBounds verifies that for width w <=4, the flag field fits
// in 2^w bits; for width >4, the flag field is zero.
func CheckFlagBounds(s *Store) error {
	for offset := uint32(0); offset < s.clauses.Size(); {
		header := s.clauses.Get(offset)
		size := clauseSize(header)
		flags := clauseFlags(header)
		if clauseIsAggregated(size) {
			flagBits := uint(1) << size
			if uint32(flags) >= uint32(1)<<flagBits {
				return fmt.Errorf("cnf: record at %d flags %#x do not fit in %d bits", offset, flags, flagBits)
			}
		} else if flags != 0 {
			return fmt.Errorf("cnf: record at %d has width %d but nonzero flags", offset, size)
		}
		offset += clauseMemorySize(size)
	}
	return nil
}

// CheckAll runs the structural invariants that hold after every public
// mutation, except while an open transaction holds a split (shadowed)
// aggregated record: the shadowed original then stays in the buffer
// unindexed, alongside the new record with the same literal words, so
// CheckIndexCoverage and CheckAggregationCanonicality report it until
// the transaction is rolled back.
func CheckAll(s *Store) error {
	checks := []func(*Store) error{
		CheckBufferIntegrity,
		CheckSortedness,
		CheckNoTautologies,
		CheckIndexCoverage,
		CheckIndexOrdering,
		CheckAggregationCanonicality,
		CheckFlagBounds,
	}
	for _, check := range checks {
		if err := check(s); err != nil {
			return err
		}
	}
	return nil
}
