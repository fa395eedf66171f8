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

// InvariantError is panicked when a core invariant (sort order, flag
// bounds, a duplicate non-aggregated clause, aggregation sign-bit
// expectations) is violated. These conditions are not recoverable at
// the store boundary: they indicate caller or index corruption, not a
// user-facing input error. cmd/cgraph recovers this at the top level
// to print a diagnostic and exit non-zero.
type InvariantError struct {
	Reason string
}

func (e InvariantError) Error() string { return "cnf: invariant violation: " + e.Reason }

// TransactionStateError is panicked for invalid transaction-state
// transitions: nested begin, commit/rollback with none open.
type TransactionStateError struct {
	Reason string
}

func (e TransactionStateError) Error() string { return "cnf: invalid transaction state: " + e.Reason }
