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
package interp

import "fmt"

// Key identifies a behavioural model by module name and source filepath.
type Key struct {
	Module   string
	Filepath string
}

// Semantics is the behavioural model of one hardware primitive: a function
// from evaluated input ports and parameters to evaluated outputs.
type Semantics[V any] func(d Domain[V], ports map[string]V, params map[string]V) (map[string]V, error)

// Table maps primitives to their behavioural models.
type Table[V any] struct {
	entries map[Key]Semantics[V]
}

// NewTable constructs an empty semantics table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{make(map[Key]Semantics[V])}
}

// Register a model under a (module, filepath) pair.  An empty filepath
// registers a fallback matching any filepath.
func (t *Table[V]) Register(module string, filepath string, semantics Semantics[V]) {
	t.entries[Key{module, filepath}] = semantics
}

// Lookup the model for a (module, filepath) pair, trying the exact pair
// first and then the module's fallback.
func (t *Table[V]) Lookup(module string, filepath string) (Semantics[V], bool) {
	if semantics, ok := t.entries[Key{module, filepath}]; ok {
		return semantics, true
	}
	//
	semantics, ok := t.entries[Key{module, ""}]
	//
	return semantics, ok
}

// Builtins returns the behavioural models for the primitives used by the
// shipped architecture descriptions.
func Builtins[V any]() *Table[V] {
	t := NewTable[V]()
	//
	t.Register("LUT2", "", lutSemantics[V]("INIT", "O", "I0", "I1"))
	t.Register("LUT4", "", lutSemantics[V]("INIT", "Z", "A", "B", "C", "D"))
	t.Register("LUT6", "", lutSemantics[V]("INIT", "O", "I0", "I1", "I2", "I3", "I4", "I5"))
	t.Register("frac_lut4", "", fracLut4[V])
	t.Register("MUX2", "", mux2[V])
	t.Register("CCU2C", "", ccu2c[V])
	t.Register("CARRY8", "", carry8[V])
	//
	return t
}

// ============================================================================
// Lookup tables
// ============================================================================

// lutEval reads a truth table at the index formed by single-bit inputs, the
// first input being the least significant index bit.  The table is halved
// from the most significant selector downwards.
func lutEval[V any](d Domain[V], init V, inputs []V) (V, error) {
	width := d.Width(init)
	//
	if width != uint(1)<<len(inputs) {
		return init, fmt.Errorf("truth table has %d bits, expected %d", width, uint(1)<<len(inputs))
	}
	//
	t := init
	//
	for j := len(inputs) - 1; j >= 0; j-- {
		half := d.Width(t) / 2
		t = d.Mux(inputs[j], d.Extract(t, d.Width(t)-1, half), d.Extract(t, half-1, 0))
	}
	//
	return t, nil
}

// lutSemantics builds the model of a simple LUT primitive with a truth-table
// parameter, named input ports (least significant first) and one output.
func lutSemantics[V any](param string, output string, inputs ...string) Semantics[V] {
	return func(d Domain[V], ports map[string]V, params map[string]V) (map[string]V, error) {
		init, ok := params[param]
		if !ok {
			return nil, fmt.Errorf("missing parameter %s", param)
		}
		//
		selectors := make([]V, len(inputs))
		//
		for i, name := range inputs {
			sel, ok := ports[name]
			if !ok {
				return nil, fmt.Errorf("missing port %s", name)
			}
			//
			selectors[i] = sel
		}
		//
		out, err := lutEval(d, init, selectors)
		if err != nil {
			return nil, err
		}
		//
		return map[string]V{output: out}, nil
	}
}

// fracLut4 models the SOFA fracturable LUT4 in its whole-LUT mode: a 4-bit
// input bus indexes a 16-bit sram.
func fracLut4[V any](d Domain[V], ports map[string]V, params map[string]V) (map[string]V, error) {
	in, ok := ports["in"]
	if !ok {
		return nil, fmt.Errorf("missing port in")
	}
	//
	sram, ok := params["sram"]
	if !ok {
		return nil, fmt.Errorf("missing parameter sram")
	}
	//
	selectors := make([]V, d.Width(in))
	for i := range selectors {
		selectors[i] = Bit(d, in, uint(i))
	}
	//
	out, err := lutEval(d, sram, selectors)
	if err != nil {
		return nil, err
	}
	//
	return map[string]V{"lut4_out": out}, nil
}

// ============================================================================
// Multiplexers
// ============================================================================

func mux2[V any](d Domain[V], ports map[string]V, params map[string]V) (map[string]V, error) {
	return map[string]V{"O": d.Mux(ports["S"], ports["I1"], ports["I0"])}, nil
}

// ============================================================================
// Carry chains
// ============================================================================

// ccu2c models the Lattice two-lane carry cell: each lane's LUT4 computes
// the propagate signal from (A,B,C,D) under its INIT truth table; the lane
// output is propagate xor carry, and the carry advances to B when propagate
// is low.
func ccu2c[V any](d Domain[V], ports map[string]V, params map[string]V) (map[string]V, error) {
	carry := ports["CIN"]
	outputs := make(map[string]V, 3)
	//
	for lane := 0; lane < 2; lane++ {
		var (
			a = ports[fmt.Sprintf("A%d", lane)]
			b = ports[fmt.Sprintf("B%d", lane)]
			c = ports[fmt.Sprintf("C%d", lane)]
			e = ports[fmt.Sprintf("D%d", lane)]
		)
		//
		init, ok := params[fmt.Sprintf("INIT%d", lane)]
		if !ok {
			return nil, fmt.Errorf("missing parameter INIT%d", lane)
		}
		//
		propagate, err := lutEval(d, init, []V{a, b, c, e})
		if err != nil {
			return nil, err
		}
		//
		outputs[fmt.Sprintf("S%d", lane)] = d.Xor(propagate, carry)
		carry = d.Mux(propagate, carry, b)
	}
	//
	outputs["COUT"] = carry
	//
	return outputs, nil
}

// carry8 models the Xilinx eight-lane carry chain: per lane, O = S xor c and
// the carry advances to DI when S is low.  CO exposes the running carry of
// every lane.
func carry8[V any](d Domain[V], ports map[string]V, params map[string]V) (map[string]V, error) {
	var (
		carry = ports["CI"]
		di    = ports["DI"]
		s     = ports["S"]
		outs  = make([]V, 8)
		cos   = make([]V, 8)
	)
	//
	for lane := uint(0); lane < 8; lane++ {
		si := Bit(d, s, lane)
		//
		outs[lane] = d.Xor(si, carry)
		carry = d.Mux(si, carry, Bit(d, di, lane))
		cos[lane] = carry
	}
	//
	return map[string]V{"O": concatBits(d, outs), "CO": concatBits(d, cos)}, nil
}

// concatBits assembles single bits (index 0 least significant) into a word.
func concatBits[V any](d Domain[V], bits []V) V {
	acc := bits[0]
	//
	for i := 1; i < len(bits); i++ {
		acc = d.Concat(bits[i], acc)
	}
	//
	return acc
}
