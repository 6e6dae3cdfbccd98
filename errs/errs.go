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

// Package errs holds the sentinel error kinds shared by the coding
// primitive and the erasure core that sits on top of it.
package errs

import "github.com/pkg/errors"

// Sentinel error kinds. Callers should compare with errors.Is, since every
// kind returned by this module is wrapped with call-site context via
// errors.Wrap before it crosses a package boundary.
var (
	// ErrInvalidBlockSize is returned when the caller passes heterogeneous
	// or misaligned block lengths to the coding primitive.
	ErrInvalidBlockSize = errors.New("erasure: invalid block size")

	// ErrNotEnoughBlocksToDecode means fewer than DataCount blocks survive
	// to reconstruct a group. Recoverer treats this as "skip the group".
	ErrNotEnoughBlocksToDecode = errors.New("erasure: not enough surviving blocks to decode")

	// ErrEncode wraps a failure from set_kind_parity or the coding
	// primitive's encode step. Fatal for the generate_coding call that
	// produced it; earlier groups in the same call remain coded.
	ErrEncode = errors.New("erasure: encode failed")

	// ErrDecode wraps a failure returned by the coding primitive's decode
	// step. Fatal for the recover call that produced it; already-recovered
	// groups remain installed, later groups are not attempted.
	ErrDecode = errors.New("erasure: decode failed")
)

// Wrap annotates err with msg and associates it with one of the sentinel
// kinds above, so the caller can still errors.Is(err, ErrEncode) etc.
// after the message is attached.
func Wrap(kind error, msg string) error {
	return errors.Wrap(kind, msg)
}

// Wrapf is Wrap with formatting.
func Wrapf(kind error, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}
