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

// Package sketch emits parameterized netlist templates with symbolic holes
// for LUT truth tables, mux selectors and carry-in values.  Five operation
// families are covered — bitwise, bitwise-with-carry, comparison,
// multiplication and barrel shift — over any fabric exposing the required
// interfaces.  A solver later assigns the holes to make a sketch equivalent
// to an abstract specification.
package sketch

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/arch"
	"github.com/fabriclab/go-techmap/pkg/ir"
	"github.com/fabriclab/go-techmap/pkg/synth"
)

// Generate is the signature shared by all sketch generators.  Logical inputs
// narrower than the requested width are extended, with the extension mode
// (zero versus MSB replication) chosen per input by a boolean hole.  The
// internal-data token follows the same reuse contract as synth.Realize.
type Generate func(d *arch.Description, inputs []ir.Expr, nInputs uint, width uint,
	data synth.Data, alloc *ir.Allocator) (ir.Expr, synth.Data, error)

// Lookup returns the generator for a named sketch family.
func Lookup(family string) (Generate, bool) {
	switch family {
	case "bitwise":
		return Bitwise, true
	case "bitwise-with-carry":
		return BitwiseWithCarry, true
	case "comparison":
		return Comparison, true
	case "multiplication":
		return Multiplication, true
	case "shift":
		return Shift, true
	}
	//
	return nil, false
}

// Families lists the sketch families in a fixed order.
func Families() []string {
	return []string{"bitwise", "bitwise-with-carry", "comparison", "multiplication", "shift"}
}

// extendInputs widens every logical input to the requested width.  Each
// narrower input gets a boolean hole selecting between zero extension and
// MSB replication, so the solver picks whichever matches the target
// semantics.  Inputs already at full width pass through untouched.
func extendInputs(inputs []ir.Expr, width uint, data synth.Data,
	alloc *ir.Allocator) ([]ir.Expr, *synth.Leaf, error) {
	var narrower int
	//
	for _, input := range inputs {
		if input.Width() > width {
			return nil, nil, fmt.Errorf("input wider (%d bits) than sketch width %d", input.Width(), width)
		} else if input.Width() < width {
			narrower++
		}
	}
	//
	leaf, err := boolLeaf(data, narrower, "extend_dup", alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	var (
		extended = make([]ir.Expr, len(inputs))
		next     = 0
	)
	//
	for i, input := range inputs {
		if input.Width() == width {
			extended[i] = input
			continue
		}
		//
		choice := leaf.States[next]
		next++
		//
		extended[i] = ir.NewMux(choice,
			ir.NewDupExtend(input, width), ir.NewZeroExtend(input, width))
	}
	//
	return extended, leaf, nil
}

// boolLeaf allocates a leaf of n fresh boolean holes, or checks a
// threaded-in leaf against that count.
func boolLeaf(data synth.Data, n int, name string, alloc *ir.Allocator) (*synth.Leaf, error) {
	if data != nil {
		return synth.AsLeaf(data, n)
	}
	//
	states := make([]ir.Expr, n)
	//
	for i := range states {
		states[i] = alloc.FreshBool(name)
	}
	//
	return &synth.Leaf{States: states}, nil
}

// bvLeaf allocates a leaf holding one fresh bit-vector hole, or checks a
// threaded-in leaf.
func bvLeaf(data synth.Data, name string, width uint, alloc *ir.Allocator) (*synth.Leaf, error) {
	if data != nil {
		return synth.AsLeaf(data, 1)
	}
	//
	return &synth.Leaf{States: []ir.Expr{alloc.FreshBV(name, width)}}, nil
}
