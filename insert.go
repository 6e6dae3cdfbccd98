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

import "go.uber.org/zap"

// AddCodingBlobs splices freshly-allocated parity placeholder blobs into
// blobs (a contiguous run of data blobs a producer is about to index
// starting at absolute offset base), at every position whose resulting
// absolute index i satisfies i > 0 && (i+ParityCount) % GroupSize == 0
// (§4.4). Each placeholder is marked parity with payload size 0.
//
// Downstream indexing assigns absolute indices by position in the
// returned slice, so this reserves the tail of every completed group for
// its parity records before that indexing pass runs.
func AddCodingBlobs(pool *Pool, blobs []*Blob, base uint64, params Params, logger *zap.SugaredLogger) []*Blob {
	logger = orNop(logger)
	n := uint64(len(blobs))
	out := make([]*Blob, len(blobs))
	copy(out, blobs)

	added := 0
	for i := base; i < base+n; i++ {
		if i != 0 && (i+uint64(params.ParityCount))%uint64(params.GroupSize) == 0 {
			pos := int(i - base)
			placeholders := make([]*Blob, params.ParityCount)
			for j := range placeholders {
				pb := pool.Allocate()
				_ = pb.SetPayloadSize(0)
				_ = pb.SetKindParity()
				placeholders[j] = pb
			}
			out = spliceAt(out, pos, placeholders)
			added += len(placeholders)
			logger.Debugw("reserved parity placeholders", "absoluteIndex", i, "position", pos, "count", len(placeholders))
		}
	}
	logger.Infow("add_coding_blobs complete", "base", base, "inputLen", n, "added", added)
	return out
}

// spliceAt inserts items into s at position pos, shifting the tail right.
func spliceAt(s []*Blob, pos int, items []*Blob) []*Blob {
	out := make([]*Blob, 0, len(s)+len(items))
	out = append(out, s[:pos]...)
	out = append(out, items...)
	out = append(out, s[pos:]...)
	return out
}

func orNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
