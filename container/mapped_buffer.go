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

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MappedBuffer is a WordBuffer backed by a memory-mapped scratch file
// rather than a Go slice. It exists for CNF instances large enough that
// keeping the whole clause buffer resident as a regular slice would
// pressure the GC; growth still follows the same 1.5x geometric policy
// as Buffer, but each grow step remaps the backing file instead of
// reallocating a slice.
//
// MappedBuffer is not safe for concurrent use, matching the rest of
// this module's single-threaded model.
type MappedBuffer struct {
	file     *os.File
	mapping  mmap.MMap
	size     uint32 // logical word count
	capWords uint32 // mapped capacity, in words
}

const wordSize = 4

// NewMappedBuffer creates a MappedBuffer backed by a private temp file,
// pre-sized to hold capacity words.
func NewMappedBuffer(capacity int) (*MappedBuffer, error) {
	f, err := os.CreateTemp("", "bal-clauses-*.bin")
	if err != nil {
		return nil, fmt.Errorf("container: create mapped buffer scratch file: %w", err)
	}
	os.Remove(f.Name()) // unlinked immediately; the fd keeps the storage alive
	b := &MappedBuffer{file: f}
	if capacity > 0 {
		if err := b.remap(uint32(capacity)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return b, nil
}

func (b *MappedBuffer) remap(capWords uint32) error {
	if b.mapping != nil {
		if err := b.mapping.Unmap(); err != nil {
			return fmt.Errorf("container: unmap: %w", err)
		}
		b.mapping = nil
	}
	if err := b.file.Truncate(int64(capWords) * wordSize); err != nil {
		return fmt.Errorf("container: truncate scratch file: %w", err)
	}
	if capWords == 0 {
		b.capWords = 0
		return nil
	}
	m, err := mmap.MapRegion(b.file, int(capWords)*wordSize, mmap.RDWR, 0, 0)
	if err != nil {
		return fmt.Errorf("container: mmap: %w", err)
	}
	b.mapping = m
	b.capWords = capWords
	return nil
}

// Close releases the mapping and the underlying scratch file.
func (b *MappedBuffer) Close() error {
	if b.mapping != nil {
		if err := b.mapping.Unmap(); err != nil {
			return err
		}
		b.mapping = nil
	}
	return b.file.Close()
}

func (b *MappedBuffer) Size() uint32 { return b.size }

func (b *MappedBuffer) Reserve(extra int) {
	need := b.size + uint32(extra)
	if need <= b.capWords {
		return
	}
	target := b.size + uint32(extra) + b.capWords/2
	if target < need {
		target = need
	}
	if err := b.remap(target); err != nil {
		panic(err)
	}
}

func (b *MappedBuffer) wordAt(i uint32) []byte {
	return b.mapping[i*wordSize : i*wordSize+wordSize]
}

func (b *MappedBuffer) Append(value uint32, count int) {
	b.Reserve(count)
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint32(b.wordAt(b.size), value)
		b.size++
	}
}

func (b *MappedBuffer) Get(i uint32) uint32 {
	if i >= b.size {
		panic("container: index out of range")
	}
	return binary.LittleEndian.Uint32(b.wordAt(i))
}

func (b *MappedBuffer) Set(i uint32, value uint32) {
	if i >= b.size {
		panic("container: index out of range")
	}
	binary.LittleEndian.PutUint32(b.wordAt(i), value)
}

// At is provided to satisfy WordBuffer; because the backing store is a
// byte-mapped file rather than a native []uint32, it materializes a
// throwaway value rather than returning a real pointer into the
// mapping. Callers that need in-place mutation should use Set.
func (b *MappedBuffer) At(i uint32) *uint32 {
	v := b.Get(i)
	return &v
}

func (b *MappedBuffer) Truncate(size uint32) {
	if size > b.size {
		panic("container: truncate beyond current size")
	}
	b.size = size
}

func (b *MappedBuffer) Slice(from, to uint32) []uint32 {
	out := make([]uint32, to-from)
	for i := range out {
		out[i] = b.Get(from + uint32(i))
	}
	return out
}

func (b *MappedBuffer) Raw() []uint32 { return b.Slice(0, b.size) }

func (b *MappedBuffer) Reset(capacity int) {
	b.size = 0
	if err := b.remap(uint32(capacity)); err != nil {
		panic(err)
	}
}

var _ WordBuffer = (*MappedBuffer)(nil)
