// Copyright (c) 2015-2021 MinIO, Inc.
//
// This file is part of MinIO Object Storage stack
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package erasure implements a sliding-window Reed-Solomon erasure-coding
// layer for a ring-buffered, index-addressed blob window: an Insertion
// Helper that reserves parity slots in a producer's outgoing batch, an
// Encoder that fills those slots once a group completes, and a Recoverer
// that reconstructs holes in a group from its surviving members.
package erasure

import "github.com/appendlog/erasure/errs"

// Params holds the compile-time group parameters from the data model.
// They are fixed for the lifetime of a Window; construct once and share.
type Params struct {
	// GroupSize is the number of records (data + parity) per coded group.
	GroupSize int
	// ParityCount is the number of parity records per group, and so the
	// maximum number of recoverable losses in any one group.
	ParityCount int
	// FieldWidth is the Reed-Solomon symbol width in bits, informational
	// here: the actual GF(2^w) backend is selected by the primitive
	// package based on DataCount+ParityCount.
	FieldWidth int
	// HeaderLen is the fixed length, in bytes, of a Blob's header prefix.
	HeaderLen int
	// Capacity is the window's slot count. Recommended to be a multiple
	// of GroupSize and at least 2*GroupSize (see ring aliasing notes).
	Capacity int
}

// DataCount returns GroupSize - ParityCount.
func (p Params) DataCount() int { return p.GroupSize - p.ParityCount }

// Validate checks the invariants the rest of the package assumes hold.
func (p Params) Validate() error {
	if p.GroupSize <= 0 {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "GroupSize must be positive, got %d", p.GroupSize)
	}
	if p.ParityCount <= 0 || p.ParityCount >= p.GroupSize {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "ParityCount must be in (0, GroupSize), got %d", p.ParityCount)
	}
	if p.HeaderLen <= 0 || p.HeaderLen%16 != 0 {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "HeaderLen must be a positive multiple of 16, got %d", p.HeaderLen)
	}
	if p.Capacity <= 0 || p.Capacity%p.GroupSize != 0 {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "Capacity must be a positive multiple of GroupSize, got %d", p.Capacity)
	}
	if p.Capacity < 2*p.GroupSize {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "Capacity %d should be at least 2*GroupSize (%d) to avoid ring aliasing", p.Capacity, 2*p.GroupSize)
	}
	return nil
}

// Group returns the group number containing absolute index i.
func (p Params) Group(i uint64) uint64 { return i / uint64(p.GroupSize) }

// Offset returns i's position within its group, [0, GroupSize).
func (p Params) Offset(i uint64) uint64 { return i % uint64(p.GroupSize) }

// SlotKind reports whether absolute index i names a data or parity slot.
func (p Params) SlotKind(i uint64) Kind {
	if p.Offset(i) < uint64(p.DataCount()) {
		return KindData
	}
	return KindParity
}

// GroupStart returns the absolute index of the first slot of group g.
func (p Params) GroupStart(g uint64) uint64 { return g * uint64(p.GroupSize) }

// DataRange returns the [start, end) absolute index range of group g's
// data slots.
func (p Params) DataRange(g uint64) (start, end uint64) {
	start = p.GroupStart(g)
	return start, start + uint64(p.DataCount())
}

// ParityRange returns the [start, end) absolute index range of group g's
// parity slots.
func (p Params) ParityRange(g uint64) (start, end uint64) {
	_, dataEnd := p.DataRange(g)
	return dataEnd, dataEnd + uint64(p.ParityCount)
}

// BlockStartFor returns the start of the group containing i, i.e.
// i - i%GroupSize.
func (p Params) BlockStartFor(i uint64) uint64 {
	return i - i%uint64(p.GroupSize)
}
