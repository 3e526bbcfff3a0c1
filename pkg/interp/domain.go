// Copyright Fabriclab Software Inc.
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

// Package interp evaluates completed and symbolic netlist expressions.
// Evaluation is generic over a value domain, so the same primitive semantics
// drive both concrete interpretation (values in and out) and constraint
// construction (a solver's symbolic rendering of the same circuit).
package interp

import "github.com/fabriclab/go-techmap/pkg/bitvec"

// Domain abstracts the value algebra evaluation computes over.  Values carry
// their width; operations assume the width discipline already enforced at
// expression construction, and panic on violations (these indicate internal
// errors, not user errors).
type Domain[V any] interface {
	// Const injects a literal word into the domain.
	Const(word bitvec.Word) V
	// Width returns the bit width of a value.
	Width(v V) uint
	// Extract returns bits [hi:lo] of a value.
	Extract(v V, hi uint, lo uint) V
	// Concat concatenates two values, the first most significant.
	Concat(hi V, lo V) V
	// Not complements a value bitwise.
	Not(v V) V
	// And conjoins two equal-width values bitwise.
	And(a V, b V) V
	// Or disjoins two equal-width values bitwise.
	Or(a V, b V) V
	// Xor combines two equal-width values bitwise.
	Xor(a V, b V) V
	// Eq compares two equal-width values, yielding a single bit.
	Eq(a V, b V) V
	// Mux selects between two equal-width values with a 1-bit selector.
	Mux(sel V, onTrue V, onFalse V) V
	// Add sums two equal-width values modulo 2^width.
	Add(a V, b V) V
	// Sub subtracts two equal-width values modulo 2^width.
	Sub(a V, b V) V
	// Mul multiplies two equal-width values modulo 2^width.
	Mul(a V, b V) V
	// Shl shifts a value left by an amount held in another value.
	Shl(a V, amount V) V
	// Lshr shifts a value right logically.
	Lshr(a V, amount V) V
	// Ashr shifts a value right arithmetically.
	Ashr(a V, amount V) V
	// ZeroExtend widens a value with zero bits.
	ZeroExtend(v V, width uint) V
	// DupExtend widens a value by replicating its most significant bit.
	DupExtend(v V, width uint) V
}

// Bit extracts a single bit of a value.
func Bit[V any](d Domain[V], v V, i uint) V {
	return d.Extract(v, i, i)
}
