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

// Package metrics turns the original's global debug counters
// (__append_clause_, __compare_clauses_, __find_clause_found/unfound)
// into real Prometheus instruments, registered against a caller-owned
// registry rather than the global default one so multiple Store
// instances in one process (e.g. tests) don't collide.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Store holds the counters cnf.Store updates on its hot paths.
type Store struct {
	AppendClauseTotal  prometheus.Counter
	ClauseCompareTotal prometheus.Counter
	FindResultTotal    *prometheus.CounterVec
}

// NewStore registers a fresh instrument set against reg. Pass
// prometheus.NewRegistry() for an isolated registry (tests, multiple
// Store instances) or prometheus.DefaultRegisterer for a process-wide
// /metrics endpoint served by the caller.
func NewStore(reg prometheus.Registerer) *Store {
	s := &Store{
		AppendClauseTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bal_append_clause_total",
			Help: "Total number of append_clause invocations.",
		}),
		ClauseCompareTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bal_clause_compare_total",
			Help: "Total number of clause comparator invocations.",
		}),
		FindResultTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bal_find_result_total",
			Help: "Index find() calls, partitioned by hit/miss.",
		}, []string{"result"}),
	}
	reg.MustRegister(s.AppendClauseTotal, s.ClauseCompareTotal, s.FindResultTotal)
	return s
}

// ObserveFind records a find() outcome.
func (s *Store) ObserveFind(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.FindResultTotal.WithLabelValues("hit").Inc()
	} else {
		s.FindResultTotal.WithLabelValues("miss").Inc()
	}
}

// ObserveAppend records one append_clause call.
func (s *Store) ObserveAppend() {
	if s == nil {
		return
	}
	s.AppendClauseTotal.Inc()
}

// ObserveCompare records one clause comparator call.
func (s *Store) ObserveCompare() {
	if s == nil {
		return
	}
	s.ClauseCompareTotal.Inc()
}
