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

// Bitwise generates a bit-slice sketch: one LUT{nInputs} per bit position,
// fed by bit i of each (possibly extended) logical input.  All positions
// share one internal-data token, so the solver assigns a single truth table
// to the whole slice.  Two boolean holes choose whether the
// logical-to-physical and physical-to-logical routings run forward or in
// reverse.
func Bitwise(d *arch.Description, inputs []ir.Expr, nInputs uint, width uint,
	data synth.Data, alloc *ir.Allocator) (ir.Expr, synth.Data, error) {
	if uint(len(inputs)) != nInputs {
		return nil, nil, fmt.Errorf("bitwise sketch over %d inputs given %d", nInputs, len(inputs))
	}
	//
	items, err := synth.AsTuple(data, 3)
	if err != nil {
		return nil, nil, err
	}
	//
	extended, extLeaf, err := extendInputs(inputs, width, items[0], alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	routeLeaf, err := boolLeaf(items[1], 2, "route_reverse", alloc)
	if err != nil {
		return nil, nil, err
	}
	//
	var (
		toPhysical = routeLeaf.States[0]
		toLogical  = routeLeaf.States[1]
		lutData    = items[2]
		outs       = make([]ir.Expr, width)
	)
	//
	for i := uint(0); i < width; i++ {
		ports := make(map[string]ir.Expr, nInputs)
		//
		for j, input := range extended {
			ports[fmt.Sprintf("I%d", j)] = routeInput(toPhysical, input, i, width)
		}
		//
		lut, lutTok, err := synth.Realize(d, iface.Lut(nInputs), ports, lutData, alloc)
		if err != nil {
			return nil, nil, err
		}
		//
		lutData = lutTok
		outs[i] = ir.NewMapRef(lut, "O")
	}
	//
	result := routeOutput(toLogical, outs)
	//
	return result, &synth.Tuple{Items: []synth.Data{extLeaf, routeLeaf, lutData}}, nil
}
