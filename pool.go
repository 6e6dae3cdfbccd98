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
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Pool is an allocator for reference-counted Blob handles (§4.7). It
// hands out zero-initialised, exclusively-owned blobs and reclaims them
// for reuse once the last handle to a blob is released.
type Pool struct {
	mu         sync.Mutex
	free       []*Blob
	payloadCap int
}

// NewPool creates a Pool whose blobs all have the given payload capacity.
func NewPool(payloadCap int) *Pool {
	if payloadCap <= 0 {
		payloadCap = DefaultPayloadCapacity
	}
	return &Pool{payloadCap: payloadCap}
}

// Allocate returns a fresh, exclusively-owned, zero-initialised blob
// handle with a reference count of one.
func (p *Pool) Allocate() *Blob {
	p.mu.Lock()
	n := len(p.free)
	var b *Blob
	if n > 0 {
		b = p.free[n-1]
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if b == nil {
		b = newBlob(p.payloadCap)
	} else {
		b.reset()
	}
	b.pool = p
	b.refs = 1
	b.gen = uuid.New()
	return b
}

// Retain increments b's reference count. Call before handing b to a
// second concurrent holder.
func (p *Pool) Retain(b *Blob) {
	atomic.AddInt32(&b.refs, 1)
}

// Release decrements b's reference count; at zero, b is returned to the
// pool for reuse and must not be touched by the caller again.
func (p *Pool) Release(b *Blob) {
	if atomic.AddInt32(&b.refs, -1) > 0 {
		return
	}
	p.mu.Lock()
	p.free = append(p.free, b)
	p.mu.Unlock()
}

// PayloadCapacity returns the fixed payload capacity of blobs this pool
// allocates.
func (p *Pool) PayloadCapacity() int { return p.payloadCap }
