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

import "golang.org/x/sync/errgroup"

// Group is one group's data and parity blocks, each Length bytes long, as
// handed to EncodeGroups. EncodeGroups runs EncodeBlocks for every group
// concurrently via errgroup, one goroutine per group with no limit on how
// many run at once. It exists for callers that batch-encode many independent groups in one generate_coding pass
// and want the per-group matrix multiplication to overlap; a single
// group's own EncodeBlocks call is already internally parallel inside
// klauspost/reedsolomon, so this only helps when groups outnumber cores.
type Group struct {
	Data, Parity [][]byte
	Length       int
}

// EncodeGroups encodes every group with codec. Every group is attempted
// even if another fails; the first error encountered is returned, and the
// other groups are allowed to finish since the coding primitive does not support
// cancellation mid-computation (matches the no-suspension-point model).
func EncodeGroups(codec *Codec, groups []Group) error {
	var g errgroup.Group
	for i := range groups {
		grp := groups[i]
		g.Go(func() error {
			return codec.EncodeBlocks(grp.Data, grp.Parity, grp.Length)
		})
	}
	return g.Wait()
}
