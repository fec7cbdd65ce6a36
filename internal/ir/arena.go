// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ir

// OpID, BlockID and RegionID are stable integer handles, analogous to
// ValueID, minted from a module's Arena.  Per the design notes, the core
// holds one arena per module and never exposes raw pointer identity as the
// notion of "the same op" across a rewrite.
type (
	OpID     uint64
	BlockID  uint64
	RegionID uint64
)

// Arena mints stable handles for everything owned by a single module.  It
// never reclaims handles (erasing an op/block/value does not recycle its
// ID); this keeps stale handles (e.g. a side-table built by pdl-to-smt)
// unambiguous even if a numerically later object happens to exist.
type Arena struct {
	nextValue  ValueID
	nextOp     OpID
	nextBlock  BlockID
	nextRegion RegionID
}

// NewArena constructs a fresh, empty arena.
func NewArena() *Arena { return &Arena{} }

func (a *Arena) newValueID() ValueID {
	a.nextValue++
	return a.nextValue
}

func (a *Arena) newOpID() OpID {
	a.nextOp++
	return a.nextOp
}

func (a *Arena) newBlockID() BlockID {
	a.nextBlock++
	return a.nextBlock
}

func (a *Arena) newRegionID() RegionID {
	a.nextRegion++
	return a.nextRegion
}
