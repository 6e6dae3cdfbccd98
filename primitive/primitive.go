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

// Package primitive wraps a Reed-Solomon code over GF(2^w) as a pure
// function pair: EncodeBlocks and DecodeBlocks. It owns no memory beyond
// what the caller hands it and performs no I/O, matching the coding
// primitive contract of the erasure core it backs.
package primitive

import (
	"sync"

	"github.com/klauspost/reedsolomon"

	"github.com/appendlog/erasure/errs"
)

// Codec is a fixed (k, m) Reed-Solomon codec. w (the field width) is
// not a parameter here: klauspost/reedsolomon picks it, and Params'
// FieldWidth is never passed to this package. New caps
// DataCount+ParityCount at 256 shards, the single-byte-symbol range.
type Codec struct {
	dataCount, parityCount int

	once sync.Once
	enc  reedsolomon.Encoder
	err  error
}

// New creates a Codec for the given (k, m). Construction is cheap; the
// underlying reedsolomon.Encoder is built lazily on first use, mirroring
// the teacher's own Erasure.encoder() once.Do pattern.
func New(dataCount, parityCount int) (*Codec, error) {
	if dataCount <= 0 || parityCount <= 0 {
		return nil, errs.Wrap(errs.ErrInvalidBlockSize, "dataCount and parityCount must be positive")
	}
	if dataCount+parityCount > 256 {
		return nil, errs.Wrap(errs.ErrInvalidBlockSize, "dataCount+parityCount exceeds 256 shards")
	}
	return &Codec{dataCount: dataCount, parityCount: parityCount}, nil
}

func (c *Codec) encoder() (reedsolomon.Encoder, error) {
	c.once.Do(func() {
		c.enc, c.err = reedsolomon.New(c.dataCount, c.parityCount)
	})
	return c.enc, c.err
}

// validateBlocks checks every block in data and parity has length len and
// that the shard counts match the codec's (k, m).
func (c *Codec) validateBlocks(data, parity [][]byte, length int) error {
	if len(data) != c.dataCount {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "expected %d data blocks, got %d", c.dataCount, len(data))
	}
	if len(parity) != c.parityCount {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "expected %d parity blocks, got %d", c.parityCount, len(parity))
	}
	if length <= 0 || length%16 != 0 {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "block length %d must be a positive multiple of 16", length)
	}
	for i, b := range data {
		if len(b) != length {
			return errs.Wrapf(errs.ErrInvalidBlockSize, "data block %d has length %d, want %d", i, len(b), length)
		}
	}
	for i, b := range parity {
		if len(b) != length {
			return errs.Wrapf(errs.ErrInvalidBlockSize, "parity block %d has length %d, want %d", i, len(b), length)
		}
	}
	return nil
}

// EncodeBlocks computes ParityCount parity blocks from DataCount data
// blocks, all of length len (a multiple of 16). On return, every byte of
// every parity block is populated.
func (c *Codec) EncodeBlocks(data, parity [][]byte, length int) error {
	if err := c.validateBlocks(data, parity, length); err != nil {
		return err
	}
	enc, err := c.encoder()
	if err != nil {
		return errs.Wrap(errs.ErrEncode, err.Error())
	}
	shards := make([][]byte, 0, c.dataCount+c.parityCount)
	shards = append(shards, data...)
	shards = append(shards, parity...)
	if err := enc.Encode(shards); err != nil {
		return errs.Wrap(errs.ErrEncode, err.Error())
	}
	return nil
}

// DecodeBlocks reconstructs every block named in erasures (positions
// [0, DataCount) are data slots, [DataCount, DataCount+ParityCount) are
// parity slots) from the surviving blocks. Fails if len(erasures) exceeds
// ParityCount, or if the underlying reconstruction is infeasible.
func (c *Codec) DecodeBlocks(data, parity [][]byte, erasures []int, length int) error {
	if err := c.validateBlocks(data, parity, length); err != nil {
		return err
	}
	if len(erasures) > c.parityCount {
		return errs.Wrapf(errs.ErrDecode, "%d erasures exceeds parity count %d", len(erasures), c.parityCount)
	}
	if len(erasures) == 0 {
		return nil
	}
	enc, err := c.encoder()
	if err != nil {
		return errs.Wrap(errs.ErrDecode, err.Error())
	}

	shards := make([][]byte, c.dataCount+c.parityCount)
	copy(shards, data)
	copy(shards[c.dataCount:], parity)
	for _, pos := range erasures {
		if pos < 0 || pos >= len(shards) {
			return errs.Wrapf(errs.ErrDecode, "erasure position %d out of range", pos)
		}
		shards[pos] = nil
	}

	if err := enc.Reconstruct(shards); err != nil {
		return errs.Wrap(errs.ErrDecode, err.Error())
	}
	for _, pos := range erasures {
		if pos < c.dataCount {
			copy(data[pos], shards[pos])
		} else {
			copy(parity[pos-c.dataCount], shards[pos])
		}
	}
	return nil
}

// DataCount returns k.
func (c *Codec) DataCount() int { return c.dataCount }

// ParityCount returns m.
func (c *Codec) ParityCount() int { return c.parityCount }
