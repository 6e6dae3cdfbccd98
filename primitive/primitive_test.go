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

package primitive

import (
	"bytes"
	"testing"
)

// TestEncodeDecodeOneBlock mirrors scenario 1 from the spec: four data
// blocks D_j[i] = i+j, two parity blocks, zero out D_1 and recover it.
func TestEncodeDecodeOneBlock(t *testing.T) {
	const blockLen = 16
	codec, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}

	data := make([][]byte, 4)
	orig := make([][]byte, 4)
	for j := 0; j < 4; j++ {
		data[j] = make([]byte, blockLen)
		for i := 0; i < blockLen; i++ {
			data[j][i] = byte(i + j)
		}
		orig[j] = append([]byte(nil), data[j]...)
	}
	parity := make([][]byte, 2)
	for i := range parity {
		parity[i] = make([]byte, blockLen)
	}

	if err := codec.EncodeBlocks(data, parity, blockLen); err != nil {
		t.Fatalf("encode: %v", err)
	}

	for i := range data[1] {
		data[1][i] = 0
	}

	if err := codec.DecodeBlocks(data, parity, []int{1}, blockLen); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !bytes.Equal(data[1], orig[1]) {
		t.Errorf("D_1 = %v, want %v", data[1], orig[1])
	}
}

// TestRoundTripAnyErasurePattern is property P1: for any erasure pattern
// of size <= m, encode followed by decode reconstructs the originals.
func TestRoundTripAnyErasurePattern(t *testing.T) {
	const blockLen = 32
	k, m := 6, 3
	codec, err := New(k, m)
	if err != nil {
		t.Fatal(err)
	}

	patterns := [][]int{
		{0},
		{0, 1},
		{0, 1, 2},
		{k},
		{k, k + 1},
		{2, k, k + 2},
	}

	for _, pattern := range patterns {
		t.Run("", func(t *testing.T) {
			data := make([][]byte, k)
			orig := make([][]byte, k)
			for j := range data {
				data[j] = make([]byte, blockLen)
				for i := range data[j] {
					data[j][i] = byte((i*7 + j*13) % 251)
				}
				orig[j] = append([]byte(nil), data[j]...)
			}
			parity := make([][]byte, m)
			for i := range parity {
				parity[i] = make([]byte, blockLen)
			}
			if err := codec.EncodeBlocks(data, parity, blockLen); err != nil {
				t.Fatalf("encode: %v", err)
			}
			origParity := make([][]byte, m)
			for i := range parity {
				origParity[i] = append([]byte(nil), parity[i]...)
			}

			for _, pos := range pattern {
				if pos < k {
					for i := range data[pos] {
						data[pos][i] = 0
					}
				} else {
					for i := range parity[pos-k] {
						parity[pos-k][i] = 0
					}
				}
			}

			if err := codec.DecodeBlocks(data, parity, pattern, blockLen); err != nil {
				t.Fatalf("decode pattern %v: %v", pattern, err)
			}
			for j := range data {
				if !bytes.Equal(data[j], orig[j]) {
					t.Errorf("pattern %v: data block %d mismatch", pattern, j)
				}
			}
			for i := range parity {
				if !bytes.Equal(parity[i], origParity[i]) {
					t.Errorf("pattern %v: parity block %d mismatch", pattern, i)
				}
			}
		})
	}
}

// TestEncodeIdempotent is property P2: encoding a group twice yields
// identical parity bytes.
func TestEncodeIdempotent(t *testing.T) {
	const blockLen = 16
	codec, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	data := make([][]byte, 4)
	for j := range data {
		data[j] = make([]byte, blockLen)
		for i := range data[j] {
			data[j][i] = byte(i + j)
		}
	}
	parityA := make([][]byte, 2)
	parityB := make([][]byte, 2)
	for i := range parityA {
		parityA[i] = make([]byte, blockLen)
		parityB[i] = make([]byte, blockLen)
	}
	if err := codec.EncodeBlocks(data, parityA, blockLen); err != nil {
		t.Fatal(err)
	}
	if err := codec.EncodeBlocks(data, parityB, blockLen); err != nil {
		t.Fatal(err)
	}
	for i := range parityA {
		if !bytes.Equal(parityA[i], parityB[i]) {
			t.Errorf("parity block %d differs across encode calls", i)
		}
	}
}

func TestDecodeTooManyErasures(t *testing.T) {
	const blockLen = 16
	codec, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	data := make([][]byte, 4)
	for j := range data {
		data[j] = make([]byte, blockLen)
	}
	parity := make([][]byte, 2)
	for i := range parity {
		parity[i] = make([]byte, blockLen)
	}
	if err := codec.EncodeBlocks(data, parity, blockLen); err != nil {
		t.Fatal(err)
	}
	if err := codec.DecodeBlocks(data, parity, []int{0, 1, 2}, blockLen); err == nil {
		t.Error("expected error decoding with 3 erasures against 2 parity blocks")
	}
}

func TestInvalidBlockSize(t *testing.T) {
	codec, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	data := make([][]byte, 4)
	for j := range data {
		data[j] = make([]byte, 16)
	}
	data[0] = make([]byte, 15) // not a multiple of 16, and mismatched length
	parity := make([][]byte, 2)
	for i := range parity {
		parity[i] = make([]byte, 16)
	}
	if err := codec.EncodeBlocks(data, parity, 16); err == nil {
		t.Error("expected InvalidBlockSize error for mismatched block length")
	}
}
