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

package container

// WordBuffer is the storage contract the cnf clause store needs: an
// append-only array of uint32 words with reserve/truncate and direct
// offset access. Buffer[uint32] satisfies it; MappedBuffer is the
// mmap-backed alternative for large instances.
type WordBuffer interface {
	Size() uint32
	Reserve(extra int)
	Append(value uint32, count int)
	Get(i uint32) uint32
	Set(i uint32, value uint32)
	Truncate(size uint32)
	Slice(from, to uint32) []uint32
	Raw() []uint32
	Reset(capacity int)
}

var _ WordBuffer = (*Buffer[uint32])(nil)
