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

// Multiplication generates a partial-product sketch for two equal-width
// inputs.  Row r, column c holds a[c-r] AND b[r] for c >= r and constant 0
// below the diagonal; the AND cells are LUT2s sharing one internal-data
// token, which is what forces every cell to agree on the AND truth table.
// Rows are reduced by a left fold of bitwise-with-carry adder sketches, all
// sharing a second token so every adder carries identical programming.  The
// result is the low width bits of the product, which is two's-complement
// safe.
func Multiplication(d *arch.Description, inputs []ir.Expr, nInputs uint, width uint,
	data synth.Data, alloc *ir.Allocator) (ir.Expr, synth.Data, error) {
	if nInputs != 2 || len(inputs) != 2 {
		return nil, nil, fmt.Errorf("multiplication sketch requires exactly two inputs")
	}
	//
	a, b := inputs[0], inputs[1]
	//
	if a.Width() != width || b.Width() != width {
		return nil, nil, fmt.Errorf("multiplication inputs must both be %d bits", width)
	}
	// Width-one products need no adder fold, hence no adder token.
	tokens := 2
	if width == 1 {
		tokens = 1
	}
	//
	items, err := synth.AsTuple(data, tokens)
	if err != nil {
		return nil, nil, err
	}
	//
	var (
		cellTok = items[0]
		rows    = make([]ir.Expr, width)
	)
	//
	for r := uint(0); r < width; r++ {
		// Assemble row r most-significant bit first.
		bits := make([]ir.Expr, width)
		//
		for c := width; c > 0; c-- {
			col := c - 1
			//
			if col < r {
				bits[width-c] = ir.ConstUint(0, 1)
				continue
			}
			//
			cell, cellData, err := synth.Realize(d, iface.Lut(2), map[string]ir.Expr{
				"I0": ir.Bit(a, col-r), "I1": ir.Bit(b, r),
			}, cellTok, alloc)
			//
			if err != nil {
				return nil, nil, err
			}
			//
			cellTok = cellData
			bits[width-c] = ir.NewMapRef(cell, "O")
		}
		//
		rows[r] = ir.NewConcat(bits...)
	}
	//
	if width == 1 {
		return rows[0], &synth.Tuple{Items: []synth.Data{cellTok}}, nil
	}
	// Fold rows through a shared adder sketch.
	var (
		adderTok = items[1]
		acc      = rows[0]
	)
	//
	for r := uint(1); r < width; r++ {
		sum, adderData, err := BitwiseWithCarry(d, []ir.Expr{acc, rows[r]}, 2, width, adderTok, alloc)
		if err != nil {
			return nil, nil, err
		}
		//
		adderTok = adderData
		acc = sum
	}
	//
	return acc, &synth.Tuple{Items: []synth.Data{cellTok, adderTok}}, nil
}
