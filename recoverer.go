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

// maxGroupsPerRecover is the safety cap on groups processed by a single
// Recover call (§4.6, P4), preventing unbounded work on a large gap
// between consumed and received.
const maxGroupsPerRecover = 100

// Recoverer fills holes in completed groups behind the receive frontier
// using surviving data and parity (§4.6, recover).
type Recoverer struct {
	Params Params
	Codec  *primitive.Codec
	Logger *zap.SugaredLogger
	Metric *metrics.Recorder
}

// NewRecoverer builds a Recoverer for the given params. logger and metric
// may be nil.
func NewRecoverer(params Params, logger *zap.SugaredLogger, metric *metrics.Recorder) (*Recoverer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	codec, err := primitive.New(params.DataCount(), params.ParityCount)
	if err != nil {
		return nil, err
	}
	return &Recoverer{
		Params: params,
		Codec:  codec,
		Logger: orNop(logger),
		Metric: metrics.OrNop(metric),
	}, nil
}

// Recover processes up to min(100, (received-consumed)/GroupSize)
// complete groups starting at the group containing consumed, filling any
// recoverable holes found in each.
func (r *Recoverer) Recover(pool *Pool, w *Window, consumed, received uint64) error {
	if received <= consumed {
		return nil
	}
	numGroups := (received - consumed) / uint64(r.Params.GroupSize)
	if numGroups == 0 {
		return nil // P5: no-op below one group's worth of arrivals.
	}
	if numGroups > maxGroupsPerRecover {
		numGroups = maxGroupsPerRecover
	}

	blockStart := r.Params.BlockStartFor(consumed)
	for n := uint64(0); n < numGroups; n++ {
		if err := r.recoverGroup(pool, w, blockStart); err != nil {
			return err
		}
		blockStart += uint64(r.Params.GroupSize)
	}
	return nil
}

// recoverGroup inspects one group and, if it has holes within recovery
// range, reconstructs them.
func (r *Recoverer) recoverGroup(pool *Pool, w *Window, blockStart uint64) error {
	g := r.Params.Group(blockStart)
	groupEnd := blockStart + uint64(r.Params.GroupSize)
	dataEnd := blockStart + uint64(r.Params.DataCount())

	dataMissing, parityMissing := 0, 0
	for i := blockStart; i < groupEnd; i++ {
		if w.Present(i) {
			continue
		}
		if i >= dataEnd {
			parityMissing++
		} else {
			dataMissing++
		}
	}

	if dataMissing == 0 {
		return nil // nothing for recovery to fix; parity-only holes are
		// left as holes until something actually needs them rebuilt.
	}
	if dataMissing+parityMissing > r.Params.ParityCount {
		r.Logger.Infow("group unrecoverable, skipping", "group", g, "dataMissing", dataMissing, "parityMissing", parityMissing)
		r.Metric.GroupSkipped()
		return nil
	}

	// Capture sibling metadata and the coded block length before
	// installing any replacement blobs.
	var metaRef []byte
	var lenRef int
	haveLen := false
	for i := blockStart; i < groupEnd; i++ {
		b := w.Get(i)
		if b == nil {
			continue
		}
		b.RLock()
		if metaRef == nil {
			metaRef = b.Meta()
		}
		if !haveLen && i >= dataEnd {
			lenRef = b.PayloadSize()
			haveLen = true
		}
		b.RUnlock()
	}
	if !haveLen {
		// No surviving parity blob to read the coded length from: fall
		// back to the largest surviving data payload, matching I4 (all
		// parity payload sizes equal the group's max_payload at encode
		// time, so any survivor bounds it from below).
		for i := blockStart; i < dataEnd; i++ {
			if b := w.Get(i); b != nil {
				b.RLock()
				if n := b.PayloadSize(); n > lenRef {
					lenRef = n
				}
				b.RUnlock()
			}
		}
	}

	handles := make([]*Blob, 0, r.Params.GroupSize)
	erasures := make([]int, 0, r.Params.ParityCount)
	for i := blockStart; i < groupEnd; i++ {
		pos := int(i - blockStart)
		b := w.Get(i)
		if b == nil {
			nb := pool.Allocate()
			nb.SetIndex(i)
			w.Set(i, nb)
			b = nb
			erasures = append(erasures, pos)
		}
		handles = append(handles, b)
	}

	for _, b := range handles {
		b.Lock()
	}
	defer func() {
		for _, b := range handles {
			b.Unlock()
		}
	}()

	codingLen := roundUp16(lenRef)
	dataBytes := make([][]byte, r.Params.DataCount())
	parityBytes := make([][]byte, r.Params.ParityCount)
	for i, b := range handles {
		if i < r.Params.DataCount() {
			dataBytes[i] = b.PayloadBytesN(codingLen)
		} else {
			parityBytes[i-r.Params.DataCount()] = b.PayloadBytesN(codingLen)
		}
	}

	if err := r.Codec.DecodeBlocks(dataBytes, parityBytes, erasures, codingLen); err != nil {
		r.Metric.DecodeFailed(g)
		return errs.Wrapf(errs.ErrDecode, "group %d: %v", g, err)
	}

	for _, pos := range erasures {
		b := handles[pos]
		if pos >= r.Params.DataCount() {
			// A rebuilt parity slot starts from a fresh blob's header, so
			// restore its kind (I2) and its size as the coded length (I4).
			if err := b.SetKindParity(); err != nil {
				return errs.Wrapf(errs.ErrDecode, "group %d: set_kind_parity failed: %v", g, err)
			}
			if err := b.SetPayloadSize(lenRef); err != nil {
				return errs.Wrapf(errs.ErrDecode, "group %d: restored parity size invalid: %v", g, err)
			}
			continue
		}
		b.SetMeta(metaRef)
		// The header is never part of the coded range (§4.2, §6), so a
		// freshly allocated hole has nothing to read a restored size from;
		// lenRef is the group's coded length, which by I4 upper-bounds
		// every slot's original payload, data included.
		if err := b.SetPayloadSize(lenRef); err != nil {
			return errs.Wrapf(errs.ErrDecode, "group %d: restored payload size invalid: %v", g, err)
		}
	}

	r.Logger.Infow("group recovered", "group", g, "erasures", len(erasures))
	r.Metric.GroupRecovered(len(erasures))
	return nil
}
