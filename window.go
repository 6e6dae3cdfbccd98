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

import "sync"

// Window is a fixed-capacity, ring-addressed sequence of optional blob
// slots (§3). Slot j holds the blob for absolute index i iff i mod
// Capacity == j (I1); a slot may also be a hole (nil).
//
// The window has a single logical owner at a time (§5): Encode and
// Recover calls are made synchronously from that owner, so Window itself
// only needs to protect the slot slice from concurrent structural
// access, not the blobs it holds (those are protected by their own
// embedded RWMutex).
type Window struct {
	mu       sync.RWMutex
	slots    []*Blob
	capacity int
}

// NewWindow creates a Window with the given capacity.
func NewWindow(capacity int) *Window {
	return &Window{
		slots:    make([]*Blob, capacity),
		capacity: capacity,
	}
}

// Capacity returns the window's slot count.
func (w *Window) Capacity() int { return w.capacity }

func (w *Window) slot(i uint64) int {
	return int(i % uint64(w.capacity))
}

// Get returns the blob at absolute index i, or nil if that slot is a
// hole. It does not check that a present blob's stored index equals i;
// callers that rely on I1 should check Index() themselves if the slot may
// hold a stale blob from a previous lap of the ring.
func (w *Window) Get(i uint64) *Blob {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.slots[w.slot(i)]
}

// Set installs b at the slot for absolute index i, replacing whatever was
// there. Passing a nil b clears the slot (a hole).
func (w *Window) Set(i uint64, b *Blob) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slots[w.slot(i)] = b
}

// Present reports whether the slot for absolute index i is occupied.
func (w *Window) Present(i uint64) bool {
	return w.Get(i) != nil
}
