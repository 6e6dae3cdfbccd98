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

package erasure

import (
	"go.uber.org/zap"

	"github.com/appendlog/erasure/errs"
	"github.com/appendlog/erasure/metrics"
	"github.com/appendlog/erasure/primitive"
)

// Encoder fills parity for completed data groups in a Window (§4.5,
// generate_coding). It holds no state of its own beyond its dependencies
// and is safe to reuse across calls as long as those calls come from the
// window's single logical owner (§5).
type Encoder struct {
	Params Params
	Codec  *primitive.Codec
	Logger *zap.SugaredLogger
	Metric *metrics.Recorder
}

// NewEncoder builds an Encoder for the given params, constructing a
// matching primitive.Codec. logger and metric may be nil.
func NewEncoder(params Params, logger *zap.SugaredLogger, metric *metrics.Recorder) (*Encoder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	codec, err := primitive.New(params.DataCount(), params.ParityCount)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		Params: params,
		Codec:  codec,
		Logger: orNop(logger),
		Metric: metrics.OrNop(metric),
	}, nil
}

// preparedGroup is one complete group whose data and parity blobs are
// collected, locked, and header-stamped, ready for the coding primitive.
type preparedGroup struct {
	group       uint64
	blockStart  uint64
	dataBlobs   []*Blob
	parityBlobs []*Blob
	codingLen   int
}

// GenerateCoding scans [consumed, consumed+count) for completed groups
// (those whose tail slot falls in range) and fills their parity blobs. A
// group whose data or parity slots are not all present aborts the scan:
// encoding is best-effort, since a missing blob there means the producer
// has not finished writing the group yet. A group that fails preparation
// with an error also ends the scan, and that error is returned after the
// groups before it are coded. Every group found complete before the stop
// point is prepared up front, then coded in one batch via
// primitive.EncodeGroups, so independent groups' matrix multiplications
// run concurrently instead of one group at a time.
func (e *Encoder) GenerateCoding(w *Window, consumed, count uint64) error {
	if count < uint64(e.Params.GroupSize) {
		return nil // P5: no-op below one group's worth of new records.
	}

	var prepared []preparedGroup
	var prepErr error
	blockStart := e.Params.BlockStartFor(consumed)
	for i := consumed; i < consumed+count; i++ {
		if e.Params.Offset(i) != uint64(e.Params.GroupSize-1) {
			continue
		}
		group := e.Params.Group(blockStart)
		pg, abort, err := e.prepareGroup(w, blockStart)
		if err != nil {
			e.Metric.EncodeFailed(group)
			prepErr = err
			break
		}
		if abort {
			e.Logger.Debugw("encode run aborted: group incomplete", "group", group, "blockStart", blockStart)
			break
		}
		prepared = append(prepared, pg)
		blockStart += uint64(e.Params.GroupSize)
	}

	if len(prepared) == 0 {
		return prepErr
	}
	defer unlockGroups(prepared)

	groups := make([]primitive.Group, len(prepared))
	for i, pg := range prepared {
		groups[i] = primitive.Group{
			Data:   blobPayloads(pg.dataBlobs, pg.codingLen),
			Parity: blobPayloads(pg.parityBlobs, pg.codingLen),
			Length: pg.codingLen,
		}
	}

	if err := primitive.EncodeGroups(e.Codec, groups); err != nil {
		for _, pg := range prepared {
			e.Metric.EncodeFailed(pg.group)
		}
		return errs.Wrapf(errs.ErrEncode, "batch encode failed: %v", err)
	}

	for _, pg := range prepared {
		e.Logger.Infow("group encoded", "group", pg.group, "blockStart", pg.blockStart, "codingLen", pg.codingLen)
		e.Metric.GroupEncoded(pg.group)
	}
	return prepErr
}

// prepareGroup collects, locks, and header-stamps one group's blobs.
// abort==true reports a missing data or parity slot, with no locks held
// on return; a non-nil error also leaves no locks held.
func (e *Encoder) prepareGroup(w *Window, blockStart uint64) (preparedGroup, bool, error) {
	g := e.Params.Group(blockStart)
	dataStart, dataEnd := e.Params.DataRange(g)

	dataBlobs := make([]*Blob, 0, e.Params.DataCount())
	for i := dataStart; i < dataEnd; i++ {
		b := w.Get(i)
		if b == nil {
			e.Logger.Debugw("data blob missing, aborting encode run", "index", i)
			return preparedGroup{}, true, nil
		}
		dataBlobs = append(dataBlobs, b)
	}
	for _, b := range dataBlobs {
		b.Lock()
	}

	maxPayload := 0
	for _, b := range dataBlobs {
		if n := b.PayloadSize(); n > maxPayload {
			maxPayload = n
		}
	}

	parityStart, parityEnd := e.Params.ParityRange(g)
	parityBlobs := make([]*Blob, 0, e.Params.ParityCount)
	for i := parityStart; i < parityEnd; i++ {
		b := w.Get(i)
		if b == nil {
			for _, db := range dataBlobs {
				db.Unlock()
			}
			e.Logger.Debugw("parity blob missing, aborting encode run", "index", i)
			return preparedGroup{}, true, nil
		}
		parityBlobs = append(parityBlobs, b)
	}
	for _, b := range parityBlobs {
		b.Lock()
	}

	for _, b := range parityBlobs {
		if err := b.SetPayloadSize(maxPayload); err != nil {
			unlockGroups([]preparedGroup{{dataBlobs: dataBlobs, parityBlobs: parityBlobs}})
			return preparedGroup{}, false, errs.Wrapf(errs.ErrEncode, "group %d: %v", g, err)
		}
		if err := b.SetKindParity(); err != nil {
			unlockGroups([]preparedGroup{{dataBlobs: dataBlobs, parityBlobs: parityBlobs}})
			return preparedGroup{}, false, errs.Wrapf(errs.ErrEncode, "group %d: set_kind_parity failed: %v", g, err)
		}
	}

	codingLen := roundUp16(maxPayload)
	if codingLen > dataBlobs[0].PayloadCapacity() {
		unlockGroups([]preparedGroup{{dataBlobs: dataBlobs, parityBlobs: parityBlobs}})
		return preparedGroup{}, false, errs.Wrapf(errs.ErrInvalidBlockSize, "group %d: max payload %d exceeds blob capacity", g, maxPayload)
	}

	return preparedGroup{
		group:       g,
		blockStart:  blockStart,
		dataBlobs:   dataBlobs,
		parityBlobs: parityBlobs,
		codingLen:   codingLen,
	}, false, nil
}

func unlockGroups(groups []preparedGroup) {
	for _, pg := range groups {
		for _, b := range pg.dataBlobs {
			b.Unlock()
		}
		for _, b := range pg.parityBlobs {
			b.Unlock()
		}
	}
}

// blobPayloads returns each blob's payload-only (header-excluded) region
// of length n: the range the coding primitive is allowed to touch.
func blobPayloads(blobs []*Blob, n int) [][]byte {
	out := make([][]byte, len(blobs))
	for i, b := range blobs {
		out[i] = b.PayloadBytesN(n)
	}
	return out
}

// roundUp16 rounds n up to the next multiple of 16 (I3's alignment
// requirement), so producers need not size every payload to a multiple
// of 16 themselves; only the coded block length must be.
func roundUp16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}
