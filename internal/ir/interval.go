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

import "math/big"

// Interval bounds the set of values a BitVec-typed SSA value can evaluate
// to.  The OutOfRange check on bit-vector constants does not use it (it
// goes through IntegerAttr.InRange).  Unlike a general integer interval, a
// BitVec interval is always anchored to [0, 2^Width) unless narrowed.
type Interval struct {
	min big.Int
	max big.Int
}

// FullRange returns the interval covering every representable value of an
// unsigned bit-vector of the given width.
func FullRange(width uint) Interval {
	var min, max big.Int

	max.Lsh(big.NewInt(1), width)
	max.Sub(&max, big.NewInt(1))

	return Interval{min, max}
}

// NewInterval constructs an interval directly from bounds.
func NewInterval(lower, upper *big.Int) Interval {
	var min, max big.Int

	min.Set(lower)
	max.Set(upper)

	return Interval{min, max}
}

// Contains reports whether val lies within this interval.
func (i Interval) Contains(val *big.Int) bool {
	return i.min.Cmp(val) <= 0 && i.max.Cmp(val) >= 0
}

// Min returns the lower bound.
func (i Interval) Min() *big.Int { return new(big.Int).Set(&i.min) }

// Max returns the upper bound.
func (i Interval) Max() *big.Int { return new(big.Int).Set(&i.max) }

// IsSingleton reports whether this interval denotes exactly one value.
func (i Interval) IsSingleton() bool { return i.min.Cmp(&i.max) == 0 }
