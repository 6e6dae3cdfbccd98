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

import "testing"

func makeGroup(t *testing.T, codec *Codec, fill byte) Group {
	t.Helper()
	data := make([][]byte, codec.DataCount())
	for i := range data {
		b := make([]byte, 16)
		for j := range b {
			b[j] = fill
		}
		data[i] = b
	}
	parity := make([][]byte, codec.ParityCount())
	for i := range parity {
		parity[i] = make([]byte, 16)
	}
	return Group{Data: data, Parity: parity, Length: 16}
}

func TestEncodeGroupsEncodesAll(t *testing.T) {
	codec, err := New(4, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	groups := []Group{
		makeGroup(t, codec, 1),
		makeGroup(t, codec, 2),
		makeGroup(t, codec, 3),
	}
	if err := EncodeGroups(codec, groups); err != nil {
		t.Fatalf("EncodeGroups: %v", err)
	}
	for gi, g := range groups {
		for pi, p := range g.Parity {
			allZero := true
			for _, b := range p {
				if b != 0 {
					allZero = false
					break
				}
			}
			if allZero {
				t.Fatalf("group %d parity %d left unfilled", gi, pi)
			}
		}
	}
}

func TestEncodeGroupsPropagatesError(t *testing.T) {
	codec, err := New(4, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bad := makeGroup(t, codec, 1)
	bad.Data[0] = bad.Data[0][:8] // wrong length
	groups := []Group{bad}
	if err := EncodeGroups(codec, groups); err == nil {
		t.Fatal("expected EncodeGroups to surface the block-size error")
	}
}
