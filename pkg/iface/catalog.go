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
package iface

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/ir"
)

// PortDef declares one port of an interface definition.
type PortDef struct {
	Name      string
	Direction ir.Direction
	Width     uint
}

// Definition pairs an interface identifier with its port signature.
type Definition struct {
	Id    Id
	Ports []PortDef
}

// Input returns the declared width of a named input port, if any.
func (d *Definition) Input(name string) (uint, bool) {
	for _, p := range d.Ports {
		if p.Direction == ir.Input && p.Name == name {
			return p.Width, true
		}
	}

	return 0, false
}

// Inputs returns the declared input ports, in order.
func (d *Definition) Inputs() []PortDef {
	var inputs []PortDef
	//
	for _, p := range d.Ports {
		if p.Direction == ir.Input {
			inputs = append(inputs, p)
		}
	}
	//
	return inputs
}

// Define resolves an interface identifier against the catalog, producing its
// port signature.  The catalog is closed over three families — LUT{k},
// MUX{2} and carry{w} — but open within them (any k ≥ 1, any w ≥ 1).
func Define(id Id) (Definition, error) {
	switch id.Kind {
	case LutKind:
		if k, ok := id.Param("num_inputs"); ok && k >= 1 {
			ports := make([]PortDef, 0, k+1)
			//
			for i := uint(0); i < k; i++ {
				ports = append(ports, PortDef{fmt.Sprintf("I%d", i), ir.Input, 1})
			}
			//
			ports = append(ports, PortDef{"O", ir.Output, 1})
			//
			return Definition{id, ports}, nil
		}
	case MuxKind:
		if n, ok := id.Param("num_inputs"); ok && n == 2 {
			return Definition{id, []PortDef{
				{"I0", ir.Input, 1},
				{"I1", ir.Input, 1},
				{"S", ir.Input, 1},
				{"O", ir.Output, 1},
			}}, nil
		}
	case CarryKind:
		if w, ok := id.Param("width"); ok && w >= 1 {
			return Definition{id, []PortDef{
				{"CI", ir.Input, 1},
				{"DI", ir.Input, w},
				{"S", ir.Input, w},
				{"O", ir.Output, w},
				{"CO", ir.Output, 1},
			}}, nil
		}
	}
	//
	return Definition{}, fmt.Errorf("unknown interface %s", id)
}

// Catalog returns the canonical, fixed catalog of interface definitions.
func Catalog() []Definition {
	var defs []Definition
	//
	for _, id := range []Id{Lut(2), Lut(4), Lut(6), Mux2(), Carry(2), Carry(8)} {
		def, err := Define(id)
		if err != nil {
			panic(err)
		}
		//
		defs = append(defs, def)
	}
	//
	return defs
}
