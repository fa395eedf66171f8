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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveAppendIncrementsCounter(t *testing.T) {
	s := NewStore(prometheus.NewRegistry())
	s.ObserveAppend()
	s.ObserveAppend()
	require.Equal(t, 2.0, counterValue(t, s.AppendClauseTotal))
}

func TestObserveCompareIncrementsCounter(t *testing.T) {
	s := NewStore(prometheus.NewRegistry())
	s.ObserveCompare()
	require.Equal(t, 1.0, counterValue(t, s.ClauseCompareTotal))
}

func TestObserveFindPartitionsHitAndMiss(t *testing.T) {
	s := NewStore(prometheus.NewRegistry())
	s.ObserveFind(true)
	s.ObserveFind(false)
	s.ObserveFind(true)
	require.Equal(t, 2.0, counterValue(t, s.FindResultTotal.WithLabelValues("hit")))
	require.Equal(t, 1.0, counterValue(t, s.FindResultTotal.WithLabelValues("miss")))
}

func TestNilStoreObservationsAreNoops(t *testing.T) {
	var s *Store
	require.NotPanics(t, func() {
		s.ObserveAppend()
		s.ObserveCompare()
		s.ObserveFind(true)
	})
}
