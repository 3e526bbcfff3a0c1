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

// Shift generates a staged barrel-shift sketch over a value and a shift
// amount.  A boolean hole picks the right-shift fill (zero versus MSB
// replication, i.e. logical versus arithmetic).  Every stage holds, per bit,
// two candidate MUX2s — one reading from the right-shift direction with
// fill, one from the left-shift direction with zero fill — and an angelic
// choice hole selects between them, so the solver picks direction, fill and
// overshift behaviour.  The stage count is width, which over-provisions
// deliberately; the final stage's selector OR-reduces all remaining high
// bits of the amount through a LUT, saturating on overshift.  All MUX2s
// share one internal-data token.
func Shift(d *arch.Description, inputs []ir.Expr, nInputs uint, width uint,
	data synth.Data, alloc *ir.Allocator) (ir.Expr, synth.Data, error) {
	if nInputs != 2 || len(inputs) != 2 {
		return nil, nil, fmt.Errorf("shift sketch requires exactly two inputs")
	}
	//
	items, err := synth.AsTuple(data, 5)
	if err != nil {
		return nil, nil, err
	}
	//
	extended, extLeaf, err := extendInputs(inputs, width, items[0], alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	fillLeaf, err := boolLeaf(items[1], 1, "logical_or_arithmetic", alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	angelic, err := boolLeaf(items[2], int(width*width), "shift_choice", alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	var (
		value, amount = extended[0], extended[1]
		arithmetic    = fillLeaf.States[0]
		muxTok        = items[3]
		orTok         = items[4]
		numStages     = width
		cur           = value
	)
	//
	for s := uint(0); s < numStages; s++ {
		var sel ir.Expr
		//
		if s+1 < numStages {
			sel = ir.Bit(amount, s)
		} else {
			// Saturate the last selector on any overshift: OR-reduce the
			// remaining high bits of the amount through a LUT.
			remaining := width - s
			ports := make(map[string]ir.Expr, remaining)
			//
			for j := uint(0); j < remaining; j++ {
				ports[fmt.Sprintf("I%d", j)] = ir.Bit(amount, s+j)
			}
			//
			orLut, orData, err := synth.Realize(d, iface.Lut(remaining), ports, orTok, alloc)
			if err != nil {
				return nil, nil, err
			}
			//
			orTok = orData
			sel = ir.NewMapRef(orLut, "O")
		}
		//
		shift := uint(1) << s
		// Fill bit for the right-shift direction.
		fill := ir.NewMux(arithmetic, ir.Bit(cur, width-1), ir.ConstUint(0, 1))
		bits := make([]ir.Expr, width)
		//
		for i := uint(0); i < width; i++ {
			right := ir.Expr(fill)
			if i+shift < width {
				right = ir.Bit(cur, i+shift)
			}
			//
			left := ir.Expr(ir.ConstUint(0, 1))
			if i >= shift {
				left = ir.Bit(cur, i-shift)
			}
			//
			rightMux, muxData, err := synth.Realize(d, iface.Mux2(), map[string]ir.Expr{
				"I0": ir.Bit(cur, i), "I1": right, "S": sel,
			}, muxTok, alloc)
			//
			if err != nil {
				return nil, nil, err
			}
			//
			muxTok = muxData
			//
			leftMux, muxData, err := synth.Realize(d, iface.Mux2(), map[string]ir.Expr{
				"I0": ir.Bit(cur, i), "I1": left, "S": sel,
			}, muxTok, alloc)
			//
			if err != nil {
				return nil, nil, err
			}
			//
			muxTok = muxData
			// Angelic choice between the two directions.
			choice := angelic.States[s*width+i]
			bits[i] = ir.NewMux(choice, ir.NewMapRef(leftMux, "O"), ir.NewMapRef(rightMux, "O"))
		}
		//
		args := make([]ir.Expr, width)
		for i := uint(0); i < width; i++ {
			args[i] = bits[width-1-i]
		}
		//
		cur = ir.NewConcat(args...)
	}
	//
	token := &synth.Tuple{Items: []synth.Data{extLeaf, fillLeaf, angelic, muxTok, orTok}}
	//
	return cur, token, nil
}
