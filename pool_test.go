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

func TestPoolAllocateZeroed(t *testing.T) {
	p := NewPool(64)
	b := p.Allocate()
	if b.Index() != 0 || b.PayloadSize() != 0 {
		t.Fatalf("freshly allocated blob not zeroed: index=%d size=%d", b.Index(), b.PayloadSize())
	}
	if b.PayloadCapacity() != 64 {
		t.Fatalf("PayloadCapacity() = %d, want 64", b.PayloadCapacity())
	}
}

func TestPoolAllocateDefaultsCapacity(t *testing.T) {
	p := NewPool(0)
	if p.PayloadCapacity() != DefaultPayloadCapacity {
		t.Fatalf("PayloadCapacity() = %d, want %d", p.PayloadCapacity(), DefaultPayloadCapacity)
	}
}

func TestPoolReusesReleasedBlobs(t *testing.T) {
	p := NewPool(32)
	b1 := p.Allocate()
	gen1 := b1.gen
	b1.SetIndex(99)
	p.Release(b1)

	b2 := p.Allocate()
	if b2 != b1 {
		t.Fatal("expected Allocate to reuse the released blob")
	}
	if b2.gen == gen1 {
		t.Fatal("expected a fresh generation tag after reuse")
	}
	if b2.Index() != 0 {
		t.Fatalf("reused blob not reset: Index() = %d", b2.Index())
	}
}

func TestPoolRetainDelaysReuse(t *testing.T) {
	p := NewPool(32)
	b := p.Allocate()
	p.Retain(b)
	p.Release(b) // refs now 1, still held
	b2 := p.Allocate()
	if b2 == b {
		t.Fatal("Allocate reused a blob that still has an outstanding reference")
	}
	p.Release(b) // refs now 0
}
