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
	"encoding/binary"
	"sync"

	"github.com/google/uuid"

	"github.com/appendlog/erasure/errs"
)

// Kind distinguishes a data blob from a parity blob (§3, I2).
type Kind uint8

const (
	// KindData marks a blob carrying producer-written payload bytes.
	KindData Kind = 0
	// KindParity marks a blob whose payload is computed by the Encoder
	// or reconstructed by the Recoverer from a group's data blobs.
	KindParity Kind = 1
)

func (k Kind) String() string {
	if k == KindParity {
		return "parity"
	}
	return "data"
}

// On-wire header layout (§6). HeaderLen is fixed at 32 bytes so that
// HeaderLen + payload capacity is always a multiple of 16 as long as the
// payload capacity itself is (DefaultPayloadCapacity is).
const (
	headerIndexOffset = 0
	headerSizeOffset  = 8
	headerKindOffset  = 16
	headerMetaOffset  = 17

	// HeaderLen is the fixed header prefix length in bytes.
	HeaderLen = 32
	// MetaLen is the number of header bytes reserved for source-address
	// metadata (opaque to the erasure layer; copied, never interpreted).
	MetaLen = HeaderLen - headerMetaOffset

	// DefaultPayloadCapacity is a reasonable default payload region size:
	// a multiple of 16, sized so the full blob (header+payload) fits in a
	// single UDP datagram under a standard 1500-byte MTU.
	DefaultPayloadCapacity = 1440
)

// Blob is an owning, fixed-layout record buffer: a HeaderLen-byte header
// followed by a fixed-capacity payload region. It embeds sync.RWMutex so
// it is directly usable as the "lockable blob handle" of §3: readers take
// RLock, a single writer (the Encoder or Recoverer processing this blob's
// group) takes Lock for the duration of its multi-step operation.
//
// Every accessor below assumes the caller already holds the appropriate
// lock; Blob does not lock internally, because callers frequently need to
// hold one lock across several accessor calls (§4.2 "Side effect
// ordering": SetPayloadSize must happen before BytesMut is read).
type Blob struct {
	sync.RWMutex

	buf        []byte
	payloadCap int

	pool *Pool
	refs int32
	gen  uuid.UUID
}

func newBlob(payloadCap int) *Blob {
	return &Blob{
		buf:        make([]byte, HeaderLen+payloadCap),
		payloadCap: payloadCap,
	}
}

// Index returns the absolute sequence index stored in the header.
func (b *Blob) Index() uint64 {
	return binary.LittleEndian.Uint64(b.buf[headerIndexOffset:])
}

// SetIndex writes the absolute sequence index into the header.
func (b *Blob) SetIndex(i uint64) {
	binary.LittleEndian.PutUint64(b.buf[headerIndexOffset:], i)
}

// PayloadSize returns the logical payload length in bytes.
func (b *Blob) PayloadSize() int {
	return int(binary.LittleEndian.Uint64(b.buf[headerSizeOffset:]))
}

// SetPayloadSize sets the logical payload length. Returns InvalidBlockSize
// if n exceeds the blob's payload capacity.
func (b *Blob) SetPayloadSize(n int) error {
	if n < 0 || n > b.payloadCap {
		return errs.Wrapf(errs.ErrInvalidBlockSize, "payload size %d exceeds capacity %d", n, b.payloadCap)
	}
	binary.LittleEndian.PutUint64(b.buf[headerSizeOffset:], uint64(n))
	return nil
}

// Kind returns the blob's kind flag.
func (b *Blob) Kind() Kind {
	return Kind(b.buf[headerKindOffset])
}

// SetKindParity marks the blob as a parity record. Per §4.2 this is
// defined to fail only if header capacity is exhausted, which cannot
// happen with a fixed HeaderLen; it returns an error for symmetry with
// the spec's documented signature and so a future variable-length header
// can fail without changing callers.
func (b *Blob) SetKindParity() error {
	b.buf[headerKindOffset] = byte(KindParity)
	return nil
}

// SetKindData marks the blob as a data record.
func (b *Blob) SetKindData() {
	b.buf[headerKindOffset] = byte(KindData)
}

// Meta returns the source-address metadata block, copied out.
func (b *Blob) Meta() []byte {
	m := make([]byte, MetaLen)
	copy(m, b.buf[headerMetaOffset:HeaderLen])
	return m
}

// SetMeta copies m into the metadata block, truncating or zero-padding to
// MetaLen.
func (b *Blob) SetMeta(m []byte) {
	dst := b.buf[headerMetaOffset:HeaderLen]
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, m)
}

// PayloadCapacity returns the fixed payload region size of this blob.
func (b *Blob) PayloadCapacity() int { return b.payloadCap }

// Bytes exposes header+payload[:PayloadSize()] as a single contiguous
// region, for callers that want the whole wire record (e.g. to ship it
// out over the network). Never pass this to the coding primitive: the
// header is not part of the coded range (see PayloadBytesN).
func (b *Blob) Bytes() []byte {
	return b.buf[:HeaderLen+b.PayloadSize()]
}

// BytesN exposes header+payload[:n] regardless of the stored payload
// size.
func (b *Blob) BytesN(n int) []byte {
	return b.buf[:HeaderLen+n]
}

// BytesMut is the mutable counterpart of Bytes.
func (b *Blob) BytesMut() []byte {
	return b.buf[:HeaderLen+b.PayloadSize()]
}

// BytesMutN is the mutable counterpart of BytesN.
func (b *Blob) BytesMutN(n int) []byte {
	return b.buf[:HeaderLen+n]
}

// PayloadBytesN exposes payload[:n] only, excluding the header, regardless
// of the stored payload size. This is what the Encoder/Recoverer must hand
// to the coding primitive: index/size/kind/meta live in the header, and
// reedsolomon's Encode/Reconstruct overwrite a shard's entire buffer, so
// including the header in the coded range would let the codec clobber
// those fields with whatever GF-combination of the other shards' header
// bytes falls out (§4.2, §6).
func (b *Blob) PayloadBytesN(n int) []byte {
	return b.buf[HeaderLen : HeaderLen+n]
}

// reset zeroes the buffer; called by Pool before a blob is handed out
// again. Pool bookkeeping (pool, refs, gen) is left to Pool.Allocate.
func (b *Blob) reset() {
	for i := range b.buf {
		b.buf[i] = 0
	}
}
