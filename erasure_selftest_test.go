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

func TestSelfTest(t *testing.T) {
	if err := SelfTest(); err != nil {
		t.Fatalf("SelfTest failed: %v", err)
	}
}

func TestSelfTestConfigsNonEmpty(t *testing.T) {
	configs := selfTestConfigs()
	if len(configs) == 0 {
		t.Fatal("expected at least one (data, parity) config to sweep")
	}
	for _, c := range configs {
		if c[0] <= 0 || c[1] <= 0 {
			t.Fatalf("invalid config %v", c)
		}
	}
}
