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
package sketch

import "github.com/fabriclab/go-techmap/pkg/ir"

// Permutation maps logical input bits onto the per-LUT physical inputs of a
// bit-slice, and physical outputs back onto logical bit positions.  Two
// permutations exist: the identity, and bit reversal (which iterates bits
// most-significant first).  These are the only routing strategies the
// generators need.
type Permutation uint8

const (
	// Forward routes logical bit i to physical position i.
	Forward Permutation = iota
	// Reverse routes logical bit i to physical position width-1-i.
	Reverse
)

// InputBit selects the bit of a logical input feeding physical position i.
func (p Permutation) InputBit(input ir.Expr, i uint, width uint) ir.Expr {
	if p == Reverse {
		return ir.Bit(input, width-1-i)
	}

	return ir.Bit(input, i)
}

// OutputConcat assembles per-position outputs (index 0 holding physical
// position 0) back into a single logical word.
func (p Permutation) OutputConcat(outs []ir.Expr) ir.Expr {
	width := uint(len(outs))
	args := make([]ir.Expr, width)
	// Concatenation is most-significant first.
	for i := uint(0); i < width; i++ {
		if p == Reverse {
			args[i] = outs[i]
		} else {
			args[i] = outs[width-1-i]
		}
	}

	return ir.NewConcat(args...)
}

// routeInput composes the two permutations around a choice hole: the
// physical bit is the reverse routing when the hole is set, otherwise the
// forward routing.  Choosing per wire rather than per array keeps one LUT
// array serving both routings.
func routeInput(choice ir.Expr, input ir.Expr, i uint, width uint) ir.Expr {
	forward := Forward.InputBit(input, i, width)
	reverse := Reverse.InputBit(input, i, width)
	//
	return ir.NewMux(choice, reverse, forward)
}

// routeOutput composes the two output permutations around a choice hole.
func routeOutput(choice ir.Expr, outs []ir.Expr) ir.Expr {
	return ir.NewMux(choice, Reverse.OutputConcat(outs), Forward.OutputConcat(outs))
}
