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

import "testing"

func TestWindowSetGetPresent(t *testing.T) {
	w := NewWindow(8)
	if w.Present(3) {
		t.Fatal("fresh window should have no present slots")
	}

	b := newBlob(16)
	b.SetIndex(3)
	w.Set(3, b)
	if !w.Present(3) {
		t.Fatal("expected slot 3 to be present after Set")
	}
	if got := w.Get(3); got != b {
		t.Fatal("Get did not return the blob installed by Set")
	}

	w.Set(3, nil)
	if w.Present(3) {
		t.Fatal("expected slot 3 to be a hole after Set(nil)")
	}
}

func TestWindowAliasesModuloCapacity(t *testing.T) {
	w := NewWindow(4)
	b1 := newBlob(16)
	b1.SetIndex(1)
	w.Set(1, b1)

	// Index 5 aliases to the same slot as index 1 (5 % 4 == 1).
	if got := w.Get(5); got != b1 {
		t.Fatal("expected index 5 to alias to the same slot as index 1")
	}

	b5 := newBlob(16)
	b5.SetIndex(5)
	w.Set(5, b5)
	if got := w.Get(1); got != b5 {
		t.Fatal("expected Set(5, ...) to overwrite the aliased slot")
	}
}

func TestWindowCapacity(t *testing.T) {
	w := NewWindow(32)
	if w.Capacity() != 32 {
		t.Fatalf("Capacity() = %d, want 32", w.Capacity())
	}
}
