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

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/arch"
	"github.com/fabriclab/go-techmap/pkg/iface"
	"github.com/fabriclab/go-techmap/pkg/ir"
	"github.com/fabriclab/go-techmap/pkg/synth"
)

// BitwiseWithCarry generates a sketch driving a width-wide carry chain: a
// bitwise LUT slice feeds the chain's sum-select input S, logical input 0
// feeds the data input DI, and the carry-in is a fresh 1-bit hole.  The
// sketch's value is the chain's per-lane output O.
func BitwiseWithCarry(d *arch.Description, inputs []ir.Expr, nInputs uint, width uint,
	data synth.Data, alloc *ir.Allocator) (ir.Expr, synth.Data, error) {
	if len(inputs) == 0 {
		return nil, nil, fmt.Errorf("bitwise-with-carry sketch requires at least one input")
	}
	//
	items, err := synth.AsTuple(data, 4)
	if err != nil {
		return nil, nil, err
	}
	//
	s, bitwiseTok, err := Bitwise(d, inputs, nInputs, width, items[0], alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	di, diLeaf, err := extendInputs(inputs[:1], width, items[1], alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	ciLeaf, err := bvLeaf(items[2], "carry_CI", 1, alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	carry, carryTok, err := synth.Realize(d, iface.Carry(width), map[string]ir.Expr{
		"CI": ciLeaf.States[0], "DI": di[0], "S": s,
	}, items[3], alloc)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	token := &synth.Tuple{Items: []synth.Data{bitwiseTok, diLeaf, ciLeaf, carryTok}}
	//
	return ir.NewMapRef(carry, "O"), token, nil
}

// Comparison generates a sketch whose value is the 1-bit carry-out of a
// width-wide carry chain fed by two independent bitwise slices (potentially
// holding different truth tables): one drives DI, the other drives S, and
// the carry-in is a fresh hole.
func Comparison(d *arch.Description, inputs []ir.Expr, nInputs uint, width uint,
	data synth.Data, alloc *ir.Allocator) (ir.Expr, synth.Data, error) {
	items, err := synth.AsTuple(data, 4)
	if err != nil {
		return nil, nil, err
	}
	//
	di, diTok, err := Bitwise(d, inputs, nInputs, width, items[0], alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	s, sTok, err := Bitwise(d, inputs, nInputs, width, items[1], alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	ciLeaf, err := bvLeaf(items[2], "carry_CI", 1, alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	carry, carryTok, err := synth.Realize(d, iface.Carry(width), map[string]ir.Expr{
		"CI": ciLeaf.States[0], "DI": di, "S": s,
	}, items[3], alloc)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	token := &synth.Tuple{Items: []synth.Data{diTok, sTok, ciLeaf, carryTok}}
	//
	return ir.NewMapRef(carry, "CO"), token, nil
}
