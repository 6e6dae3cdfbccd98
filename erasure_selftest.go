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
	"github.com/cespare/xxhash/v2"

	"github.com/appendlog/erasure/errs"
	"github.com/appendlog/erasure/primitive"
)

// selfTestConfigs mirrors the teacher's erasureSelfTest sweep: every
// (data, parity) pair with data+parity in [4, 16) and data >= (data+parity)/2
// rounded down, so for an odd total parity exceeds data by one.
func selfTestConfigs() [][2]int {
	var configs [][2]int
	for total := 4; total < 16; total++ {
		for data := total / 2; data < total; data++ {
			configs = append(configs, [2]int{data, total - data})
		}
	}
	return configs
}

// SelfTest exercises the coding primitive across a sweep of (data, parity)
// shapes on a fixed test vector, the way the teacher's erasureSelfTest
// catches a broken codec before it silently corrupts data. Unlike the
// teacher's variant, which compares against a table of precomputed xxhash
// sums, this checks the two properties that actually matter for a caller
// of this package: encoding the same bytes twice produces byte-identical
// parity (the codec is deterministic), and erasing up to ParityCount
// shards and decoding recovers the original bytes exactly.
func SelfTest() error {
	testData := make([]byte, 256)
	for i := range testData {
		testData[i] = byte(i)
	}

	for _, cfg := range selfTestConfigs() {
		dataCount, parityCount := cfg[0], cfg[1]
		blockLen := len(testData) / dataCount
		if blockLen%16 != 0 {
			blockLen -= blockLen % 16
		}
		if blockLen == 0 {
			continue
		}

		codec, err := primitive.New(dataCount, parityCount)
		if err != nil {
			return errs.Wrapf(errs.ErrEncode, "self-test [d:%d,p:%d]: %v", dataCount, parityCount, err)
		}

		data := splitBlocks(testData, dataCount, blockLen)
		parityA := makeBlocks(parityCount, blockLen)
		parityB := makeBlocks(parityCount, blockLen)

		if err := codec.EncodeBlocks(copyBlocks(data), parityA, blockLen); err != nil {
			return errs.Wrapf(errs.ErrEncode, "self-test [d:%d,p:%d]: %v", dataCount, parityCount, err)
		}
		if err := codec.EncodeBlocks(copyBlocks(data), parityB, blockLen); err != nil {
			return errs.Wrapf(errs.ErrEncode, "self-test [d:%d,p:%d]: %v", dataCount, parityCount, err)
		}
		if hashBlocks(parityA) != hashBlocks(parityB) {
			return errs.Wrapf(errs.ErrEncode, "self-test [d:%d,p:%d]: encode is non-deterministic", dataCount, parityCount)
		}

		erasures := make([]int, 0, parityCount)
		damaged := copyBlocks(data)
		for i := 0; i < parityCount && i < dataCount; i++ {
			damaged[i] = make([]byte, blockLen)
			erasures = append(erasures, i)
		}
		if err := codec.DecodeBlocks(damaged, copyBlocks(parityA), erasures, blockLen); err != nil {
			return errs.Wrapf(errs.ErrDecode, "self-test [d:%d,p:%d]: %v", dataCount, parityCount, err)
		}
		for _, pos := range erasures {
			if string(damaged[pos]) != string(data[pos]) {
				return errs.Wrapf(errs.ErrDecode, "self-test [d:%d,p:%d]: decode did not recover shard %d", dataCount, parityCount, pos)
			}
		}
	}
	return nil
}

func splitBlocks(src []byte, count, blockLen int) [][]byte {
	out := make([][]byte, count)
	for i := range out {
		b := make([]byte, blockLen)
		copy(b, src[(i*blockLen)%len(src):])
		out[i] = b
	}
	return out
}

func makeBlocks(count, blockLen int) [][]byte {
	out := make([][]byte, count)
	for i := range out {
		out[i] = make([]byte, blockLen)
	}
	return out
}

func copyBlocks(src [][]byte) [][]byte {
	out := make([][]byte, len(src))
	for i, b := range src {
		cp := make([]byte, len(b))
		copy(cp, b)
		out[i] = cp
	}
	return out
}

func hashBlocks(blocks [][]byte) uint64 {
	h := xxhash.New()
	for i, b := range blocks {
		_, _ = h.Write([]byte{byte(i)})
		_, _ = h.Write(b)
	}
	return h.Sum64()
}
