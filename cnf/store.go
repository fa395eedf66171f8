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
	"errors"
	"iter"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	log "github.com/erigontech/erigon-lib/log/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/boolalg/bal/avltree"
	"github.com/boolalg/bal/config"
	"github.com/boolalg/bal/container"
	"github.com/boolalg/bal/index"
	"github.com/boolalg/bal/metrics"
	"github.com/boolalg/bal/variables"
)

// ErrTautology is returned by AppendClauseStrict when the clause was
// silently discarded because it is satisfied by every assignment.
var ErrTautology = errors.New("cnf: clause discarded as tautology")

// clauseRecord is a view of one buffer record (header word followed by
// its literal words), the key type avltree orders the L0 index by.
type clauseRecord []uint32

// clauseContainer adapts a container.WordBuffer to avltree.Container.
type clauseContainer struct{ buf container.WordBuffer }

func (c clauseContainer) At(offset uint32) *clauseRecord {
	size := clauseSize(c.buf.Get(offset))
	rec := clauseRecord(c.buf.Slice(offset, offset+uint32(size)+1))
	return &rec
}

// Store owns the clause buffer and the L0 index (per-leading-variable
// AVL trees of clause offsets). It is not safe for concurrent use from
// multiple goroutines: every public operation runs to completion
// without suspending or taking a lock, a single-threaded, synchronous
// model throughout.
type Store struct {
	clauses         container.WordBuffer
	clauseC         clauseContainer
	l0              *avltree.AVLIndex[clauseRecord]
	vars            *variables.Generator
	encoderOptions  config.EncoderOptions
	immutableOffset uint32
	metrics         *metrics.Store
	occurring       *roaring.Bitmap
}

type storeOptions struct {
	buf         container.WordBuffer
	encoderOpts *config.EncoderOptions
	registry    prometheus.Registerer
}

// Option configures a Store at construction time.
type Option func(*storeOptions)

// WithWordBuffer selects an alternate clause buffer backend, e.g.
// container.NewMappedBuffer for an mmap-backed instance. The default
// is a slice-backed container.Buffer[uint32].
func WithWordBuffer(buf container.WordBuffer) Option {
	return func(o *storeOptions) { o.buf = buf }
}

// WithEncoderOptions overrides the built-in defaults.
func WithEncoderOptions(opts config.EncoderOptions) Option {
	return func(o *storeOptions) { o.encoderOpts = &opts }
}

// WithMetricsRegistry registers the store's Prometheus instruments
// against reg instead of leaving metrics disabled.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(o *storeOptions) { o.registry = reg }
}

// NewStore constructs a Store with an initial variable count and
// clause-count hint.
func NewStore(varCount, clauseHint int, opts ...Option) *Store {
	var o storeOptions
	for _, f := range opts {
		f(&o)
	}

	s := &Store{vars: &variables.Generator{}}
	if o.buf != nil {
		s.clauses = o.buf
	} else {
		s.clauses = container.NewBuffer[uint32](0)
	}
	s.clauseC = clauseContainer{buf: s.clauses}
	s.l0 = avltree.New[clauseRecord](s.clauseC, s.compareClauseRecords)
	s.l0.SetRebuildFunc(s.rebuildL0)
	if o.registry != nil {
		s.metrics = metrics.NewStore(o.registry)
	}
	if o.encoderOpts != nil {
		s.encoderOptions = *o.encoderOpts
	} else {
		s.encoderOptions = config.DefaultEncoderOptions()
	}

	s.Initialize(varCount, clauseHint)
	return s
}

func (s *Store) compareClauseRecords(lhs, rhs *clauseRecord) int {
	s.metrics.ObserveCompare()
	return CompareClauses(*lhs, *rhs)
}

// Initialize resets the clause buffer, the L0 index, and the variable
// generator, preallocating 4 words per clause in the buffer. It does
// not touch encoder options.
func (s *Store) Initialize(varCount, clauseHint int) {
	s.vars.Reset(uint32(varCount))
	s.clauses.Reset(clauseHint << 2)
	s.l0.Reset(uint32(varCount), uint32(clauseHint))
	s.immutableOffset = 0
	s.occurring = roaring.New()
}

// EncoderOptions returns the store's current encoder knobs.
func (s *Store) EncoderOptions() config.EncoderOptions { return s.encoderOptions }

// SetEncoderOptions validates and installs new encoder knobs.
func (s *Store) SetEncoderOptions(opts config.EncoderOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s.encoderOptions = opts
	return nil
}

// NextVariable allocates a fresh variable id, growing the L0 index's
// instance table in lockstep.
func (s *Store) NextVariable() uint32 {
	id := s.vars.Next()
	s.l0.ResetInstancesSize(s.vars.Size())
	return id
}

// ResetVariables raises the variable watermark to at least n.
func (s *Store) ResetVariables(n uint32) {
	s.vars.Reset(n)
	s.l0.ResetInstancesSize(s.vars.Size())
}

// VariablesSize reports the number of variable ids allocated so far.
func (s *Store) VariablesSize() uint32 { return s.vars.Size() }

// NormalizeLiterals sorts literals ascending in place, drops adjacent
// duplicates, and returns nil if the clause is a tautology (some
// literal and its negation are both present). Otherwise it returns
// literals[:k] for the deduplicated length k. It is a pure, idempotent
// function of its input: a second call on its own output returns the
// identical slice.
func NormalizeLiterals(literals []uint32) []uint32 {
	if len(literals) == 0 {
		panic(InvariantError{Reason: "normalize_clause called with zero literals"})
	}
	sort.Slice(literals, func(i, j int) bool { return literals[i] < literals[j] })
	validated := 1
	for i := 1; i < len(literals); i++ {
		switch {
		case literals[i] == literals[validated-1]:
			continue
		case literals[i]^1 == literals[validated-1]:
			return nil
		default:
			literals[validated] = literals[i]
			validated++
		}
	}
	return literals[:validated]
}

// normalizeInBuffer runs NormalizeLiterals over size words starting at
// base within the clause buffer, writing the compacted result back and
// returning its length, or 0 for a discarded tautology.
func (s *Store) normalizeInBuffer(base uint32, size uint16) uint16 {
	lits := make([]uint32, size)
	for i := range lits {
		lits[i] = s.clauses.Get(base + uint32(i))
	}
	out := NormalizeLiterals(lits)
	if out == nil {
		return 0
	}
	for i, v := range out {
		s.clauses.Set(base+uint32(i), v)
	}
	return uint16(len(out))
}

// AppendClause is the primary operation: writes literals to the
// buffer tail, normalizes in place, and — unless discarded as a
// tautology — runs them through the aggregation/merge/split algorithm.
// Returns false iff the clause was silently discarded.
func (s *Store) AppendClause(literals []uint32) bool {
	if len(literals) == 0 {
		panic(InvariantError{Reason: "append_clause called with zero literals"})
	}

	headerOffset := s.clauses.Size()
	s.clauses.Reserve(len(literals) + 1)
	s.clauses.Append(uint32(len(literals)), 1) // header: flags=0, size=len(literals)
	for _, l := range literals {
		s.clauses.Append(l, 1)
	}

	newSize := s.normalizeInBuffer(headerOffset+1, uint16(len(literals)))
	if newSize == 0 {
		s.clauses.Truncate(headerOffset)
		log.Warn("cnf: discarding tautology", "literals", literals)
		return false
	}
	if int(newSize) < len(literals) {
		log.Debug("cnf: removed duplicate literals", "original_size", len(literals), "normalized_size", newSize)
		s.clauses.Truncate(headerOffset + 1 + uint32(newSize))
	}
	s.clauses.Set(headerOffset, clauseHeader(newSize, 0))

	var ip index.InsertionPoint
	ip.Reset()
	s.appendExistingRecord(false, headerOffset, &ip)
	return true
}

// AppendClauseL is a variadic convenience wrapping AppendClause.
func (s *Store) AppendClauseL(literals ...uint32) bool { return s.AppendClause(literals) }

// AppendClauseStrict wraps AppendClause, turning the silent-discard
// contract into an error for callers that want one.
func (s *Store) AppendClauseStrict(literals []uint32) error {
	if !s.AppendClause(literals) {
		return ErrTautology
	}
	return nil
}

// appendExistingRecord implements __append_clause<avoid_merging> from
// the original C++: offset points at a clause record already
// physically present in the buffer (header word whose size field is
// set; flags may be zero — a fresh append — or already populated, when
// re-run against a record that was aggregated earlier). ip is used as
// given while its version stamp is still valid, and recomputed otherwise.
func (s *Store) appendExistingRecord(avoidMerging bool, offset uint32, ip *index.InsertionPoint) {
	s.metrics.ObserveAppend()

	header := s.clauses.Get(offset)
	size := clauseSize(header)
	if size == 0 {
		panic(InvariantError{Reason: "append_clause with empty literal list"})
	}

	if clauseIsAggregated(size) && clauseFlags(header) == 0 {
		var bitmap uint16
		for i := uint16(0); i < size; i++ {
			lit := Literal(s.clauses.Get(offset + 1 + uint32(i)))
			if lit.IsNegated() {
				bitmap |= 1 << i
			} else {
				s.clauses.Set(offset+1+uint32(i), uint32(lit.Uncomplement()))
			}
		}
		header = clauseHeader(size, uint16(1)<<bitmap)
		s.clauses.Set(offset, header)
	}

	variable := Literal(s.clauses.Get(offset + 1)).Variable()
	if !s.l0.IsValidInsertionPoint(*ip) {
		s.l0.FindInsertionPoint(variable, s.clauseC.At(offset), ip)
	}
	existingOffset := ip.ContainerOffset
	s.metrics.ObserveFind(existingOffset != index.End)

	isAggregated := clauseIsAggregated(size)
	split := isAggregated && ((avoidMerging && existingOffset != index.End) || existingOffset < s.immutableOffset)

	switch {
	case split:
		// The new record inherits the existing record's flags and is
		// spliced in front of it by retargeting the index node (Kind ==
		// Current); the old record stays physically in the buffer,
		// unreachable from the index.
		log.Debug("cnf: shadowing aggregated clause", "offset", offset, "existing_offset", existingOffset)
		header |= s.clauses.Get(existingOffset)
		s.clauses.Set(offset, header)
		s.l0.Append(variable, *ip, offset)
		s.markOccurring(offset, size)
	case existingOffset == index.End:
		s.l0.Append(variable, *ip, offset)
		s.markOccurring(offset, size)
	case isAggregated:
		log.Debug("cnf: merging into aggregated clause", "existing_offset", existingOffset)
		s.clauses.Set(existingOffset, s.clauses.Get(existingOffset)|header)
		s.clauses.Truncate(offset)
	default:
		// drop the unindexed duplicate so a recovered panic leaves the
		// buffer consistent with the index
		s.clauses.Truncate(offset)
		panic(InvariantError{Reason: "duplicate non-aggregated clause"})
	}
}

func (s *Store) markOccurring(offset uint32, size uint16) {
	for i := uint16(0); i < size; i++ {
		s.occurring.Add(Literal(s.clauses.Get(offset + 1 + uint32(i))).Variable())
	}
}

// OccurringVariables returns the set of variable ids that appear in at
// least one clause, as a snapshot roaring.Bitmap safe for the caller to
// mutate or retain.
func (s *Store) OccurringVariables() *roaring.Bitmap { return s.occurring.Clone() }

// ClausesSize counts clauses, optionally filtered by width (0 = all
// widths). When aggregated is false and width <= 4, each aggregated
// record contributes popcount(flags) rather than 1.
func (s *Store) ClausesSize(width uint16, aggregated bool) uint32 {
	var result uint32
	for offset := uint32(0); offset < s.clauses.Size(); {
		header := s.clauses.Get(offset)
		size := clauseSize(header)
		if width == 0 || width == size {
			if !aggregated && clauseIsAggregated(size) {
				result += uint32(popcount16(clauseFlags(header)))
			} else {
				result++
			}
		}
		offset += clauseMemorySize(size)
	}
	return result
}

// LiteralsSize sums literal counts across all clauses, analogous to
// ClausesSize.
func (s *Store) LiteralsSize(aggregated bool) uint32 {
	var result uint32
	for offset := uint32(0); offset < s.clauses.Size(); {
		header := s.clauses.Get(offset)
		size := clauseSize(header)
		if !aggregated && clauseIsAggregated(size) {
			result += uint32(popcount16(clauseFlags(header))) * uint32(size)
		} else {
			result += uint32(size)
		}
		offset += clauseMemorySize(size)
	}
	return result
}

func (s *Store) recordAt(offset uint32) []uint32 {
	size := clauseSize(s.clauses.Get(offset))
	return s.clauses.Slice(offset, offset+uint32(size)+1)
}

// SortedClauses iterates every clause record (header word followed by
// its literal words) in index order: per leading variable, then
// lexicographically within it.
func (s *Store) SortedClauses() iter.Seq[[]uint32] {
	return func(yield func([]uint32) bool) {
		for _, offset := range s.l0.All() {
			if !yield(s.recordAt(offset)) {
				return
			}
		}
	}
}

// VariableClauses iterates the clause records whose leading variable
// is variable, in comparator order.
func (s *Store) VariableClauses(variable uint32) iter.Seq[[]uint32] {
	return func(yield func([]uint32) bool) {
		for _, offset := range s.l0.InOrder(variable) {
			if !yield(s.recordAt(offset)) {
				return
			}
		}
	}
}

// TransactionBegin snapshots the current store state so a subsequent
// Rollback can undo every AppendClause call made since. Transactions
// are not nestable.
func (s *Store) TransactionBegin() {
	if s.l0.TransactionOpen() {
		panic(TransactionStateError{Reason: "nested transaction"})
	}
	s.immutableOffset = s.clauses.Size()
	s.l0.TransactionBegin(s.immutableOffset)
}

// TransactionCommit discards the snapshot, making every append since
// TransactionBegin permanent.
func (s *Store) TransactionCommit() {
	if !s.l0.TransactionOpen() {
		panic(TransactionStateError{Reason: "commit without open transaction"})
	}
	s.immutableOffset = 0
	s.l0.TransactionCommit()
}

// TransactionRollback restores the store to its pre-begin snapshot.
// Because aggregation/split may have overwritten an index node's
// payload to point at a later offset, this cannot simply truncate the
// index along with the buffer: the L0 index's rebuild hook
// (rebuildL0) fully reconstructs it from the truncated buffer's
// surviving records.
func (s *Store) TransactionRollback() {
	if !s.l0.TransactionOpen() {
		panic(TransactionStateError{Reason: "rollback without open transaction"})
	}
	s.clauses.Truncate(s.immutableOffset)
	log.Debug("cnf: rolling back transaction", "surviving_words", s.immutableOffset)
	s.l0.TransactionRollback()
	s.rebuildOccurring()
	s.immutableOffset = 0
}

// rebuildL0 is the L0 index's RebuildFunc: it discards every node,
// reinitializes the instance table to instancesSize entries of End,
// then walks the (already-truncated) buffer from 0 to containerSize,
// re-finding and re-appending each surviving record. nodeSize is
// unused — a full rebuild always clears nodes outright rather than
// truncating to a count, matching CnfL0Index::rollback.
func (s *Store) rebuildL0(_, instancesSize, containerSize uint32) {
	s.l0.ResetNodes()
	s.l0.ResetInstancesTo(instancesSize)
	for offset := uint32(0); offset < containerSize; {
		size := clauseSize(s.clauses.Get(offset))
		variable := Literal(s.clauses.Get(offset + 1)).Variable()
		var ip index.InsertionPoint
		ip.Reset()
		s.l0.FindInsertionPoint(variable, s.clauseC.At(offset), &ip)
		if ip.ContainerOffset != index.End {
			panic(InvariantError{Reason: "index rebuild found a duplicate clause"})
		}
		s.l0.Append(variable, ip, offset)
		offset += clauseMemorySize(size)
	}
}

// rebuildOccurring recomputes the occurring-variable bitmap from the
// post-rollback buffer; rollback discards appended clauses wholesale,
// so an incremental bitmap union cannot be undone in place.
func (s *Store) rebuildOccurring() {
	occurring := roaring.New()
	for offset := uint32(0); offset < s.clauses.Size(); {
		size := clauseSize(s.clauses.Get(offset))
		for i := uint16(0); i < size; i++ {
			occurring.Add(Literal(s.clauses.Get(offset + 1 + uint32(i))).Variable())
		}
		offset += clauseMemorySize(size)
	}
	s.occurring = occurring
}

// IsClauseImmutable reports whether offset predates the currently open
// transaction's snapshot.
func (s *Store) IsClauseImmutable(offset uint32) bool { return offset < s.immutableOffset }

// MemorySize reports bytes used by the clause buffer and L0 index, for
// diagnostics (cmd/cgraph -v).
func (s *Store) MemorySize() uint64 {
	return uint64(s.clauses.Size())*4 + s.l0.MemorySize()
}
