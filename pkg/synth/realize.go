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

// Package synth realizes abstract interfaces on concrete fabrics.  Given an
// architecture description and an interface identifier, it either
// instantiates a primitive directly or invents a composition of whatever the
// fabric actually offers: smaller LUTs padded up to larger ones, larger LUTs
// Shannon-expanded into smaller ones, carries retiled to other widths, and
// carries or multiplexers built from LUTs when the fabric has none.
package synth

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/arch"
	"github.com/fabriclab/go-techmap/pkg/iface"
	"github.com/fabriclab/go-techmap/pkg/ir"
	log "github.com/sirupsen/logrus"
)

// maxDepth bounds the realization recursion.  Shannon-expanding towards an
// architecture holding only tiny LUTs can cycle (larger LUT wants a MUX2,
// the MUX2 wants a LUT3, the LUT3 wants a Shannon expansion, ...); the depth
// limit turns that into a realization failure.
const maxDepth = 64

// Realize an abstract interface on the given architecture, binding its
// inputs to the expressions in the port map.  The result is a hash-map
// expression from interface output names to expressions, together with the
// internal-data token carrying the symbolic values allocated for
// programmable state.
//
// If data is non-nil it must be a token returned by a previous call with the
// same architecture, identifier and port-map shape; its leaves are threaded
// back into the recreated instantiations so no fresh symbolic values are
// allocated.
func Realize(d *arch.Description, id iface.Id, ports map[string]ir.Expr,
	data Data, alloc *ir.Allocator) (ir.Expr, Data, error) {
	st := &state{d, alloc}
	return st.realize(id, ports, data, 0)
}

type state struct {
	d     *arch.Description
	alloc *ir.Allocator
}

func (st *state) realize(id iface.Id, ports map[string]ir.Expr, data Data, depth int) (ir.Expr, Data, error) {
	if depth >= maxDepth {
		return nil, nil, fmt.Errorf("interface %s not realizable under architecture %s (depth limit)", id, st.d.Name())
	}
	//
	if err := checkPorts(id, ports); err != nil {
		return nil, nil, err
	}
	// R1: a direct implementation always wins.
	if impl, ok := st.d.Lookup(id); ok {
		return st.direct(impl, ports, data)
	}
	//
	switch id.Kind {
	case iface.LutKind:
		k, _ := id.Param("num_inputs")
		// R2: pad a smaller LUT up to a larger one.
		if _, kLarger, ok := st.d.FindLut(func(x uint) bool { return x > k }); ok {
			return st.padLut(k, kLarger, ports, data, depth)
		}
		// R3: Shannon-expand into a pair of smaller LUTs and a MUX2.
		if _, _, ok := st.d.FindLut(func(x uint) bool { return x < k }); ok {
			return st.expandLut(k, ports, data, depth)
		}
	case iface.CarryKind:
		w, _ := id.Param("width")
		// R4: retile an existing carry of another width.
		if impl, wTile, ok := st.d.FindCarry(func(x uint) bool { return x != w }); ok {
			return st.retileCarry(impl, w, wTile, ports, data, depth)
		}
		// R5: no carry at all; build one from LUTs and MUXes.
		if _, _, ok := st.d.FindLut(func(x uint) bool { return x >= 2 }); ok {
			return st.inventCarry(w, ports, data, depth)
		}
	case iface.MuxKind:
		// R6: a MUX2 is a LUT3 on fabrics without multiplexers.
		if _, _, ok := st.d.FindLut(func(x uint) bool { return true }); ok {
			log.Debugf("realizing %s as LUT3 on %s", id, st.d.Name())
			//
			return st.realize(iface.Lut(3), map[string]ir.Expr{
				"I0": ports["I0"], "I1": ports["I1"], "I2": ports["S"],
			}, data, depth+1)
		}
	}
	//
	return nil, nil, fmt.Errorf("interface %s not realizable under architecture %s", id, st.d.Name())
}

// ============================================================================
// R1: direct instantiation
// ============================================================================

func (st *state) direct(impl *arch.Implementation, ports map[string]ir.Expr, data Data) (ir.Expr, Data, error) {
	leaf, err := st.leafFor(impl, data)
	if err != nil {
		return nil, nil, err
	}
	// Internal-state scope
	internal := func(name string) (ir.Expr, bool) {
		for i, state := range impl.Internal {
			if state.Name == name {
				return leaf.States[i], true
			}
		}
		//
		return nil, false
	}
	// Ports resolve against the caller's port map first, then internal state.
	portScope := func(name string) (ir.Expr, bool) {
		if expr, ok := ports[name]; ok {
			return expr, true
		}
		//
		return internal(name)
	}
	//
	instPorts := make([]ir.Port, len(impl.Module.Ports))
	//
	for i, template := range impl.Module.Ports {
		port := ir.Port{Name: template.Name, Direction: template.Direction, Width: template.Width}
		//
		if template.Direction == ir.Input {
			value, err := template.Value.Resolve(portScope)
			if err != nil {
				return nil, nil, fmt.Errorf("implementation %s: %v", impl.Id, err)
			}
			//
			port.Value = value
		}
		//
		instPorts[i] = port
	}
	// Parameters resolve against internal state only.
	instParams := make([]ir.Param, len(impl.Module.Params))
	//
	for i, template := range impl.Module.Params {
		value, err := template.Value.Resolve(internal)
		if err != nil {
			return nil, nil, fmt.Errorf("implementation %s: %v", impl.Id, err)
		}
		//
		instParams[i] = ir.Param{Name: template.Name, Value: value}
	}
	//
	inst := ir.NewInstance(impl.Module.Name, impl.Module.Filepath, instPorts, instParams)
	// Project interface outputs out of the instance's ports.
	outScope := func(name string) (ir.Expr, bool) {
		if _, ok := inst.Output(name); ok {
			return ir.NewMapRef(inst, name), true
		}
		//
		return nil, false
	}
	//
	keys := make([]string, len(impl.Outputs))
	vals := make([]ir.Expr, len(impl.Outputs))
	//
	for i, output := range impl.Outputs {
		value, err := output.Term.Resolve(outScope)
		if err != nil {
			return nil, nil, fmt.Errorf("implementation %s: %v", impl.Id, err)
		}
		//
		keys[i] = output.Name
		vals[i] = value
	}
	//
	return ir.NewMap(keys, vals), leaf, nil
}

// leafFor allocates fresh symbolic state for an implementation, or checks a
// threaded-in leaf against its schema.
func (st *state) leafFor(impl *arch.Implementation, data Data) (*Leaf, error) {
	if data != nil {
		return AsLeaf(data, len(impl.Internal))
	}
	//
	states := make([]ir.Expr, len(impl.Internal))
	//
	for i, state := range impl.Internal {
		name := fmt.Sprintf("%s_%s", impl.Module.Name, state.Name)
		states[i] = st.alloc.FreshBV(name, state.Width)
	}
	//
	return &Leaf{states}, nil
}

// ============================================================================
// R2: smaller LUT from larger LUT
// ============================================================================

func (st *state) padLut(k uint, kLarger uint, ports map[string]ir.Expr, data Data, depth int) (ir.Expr, Data, error) {
	log.Debugf("padding LUT%d up to LUT%d on %s", k, kLarger, st.d.Name())
	//
	extended := make(map[string]ir.Expr, kLarger)
	//
	for name, expr := range ports {
		extended[name] = expr
	}
	// Unused inputs are tied high.
	for i := k; i < kLarger; i++ {
		extended[fmt.Sprintf("I%d", i)] = ir.ConstUint(1, 1)
	}
	//
	return st.realize(iface.Lut(kLarger), extended, data, depth+1)
}

// ============================================================================
// R3: larger LUT from smaller LUTs + MUX2
// ============================================================================

func (st *state) expandLut(k uint, ports map[string]ir.Expr, data Data, depth int) (ir.Expr, Data, error) {
	log.Debugf("expanding LUT%d into 2xLUT%d + MUX2 on %s", k, k-1, st.d.Name())
	//
	items, err := AsTuple(data, 3)
	if err != nil {
		return nil, nil, err
	}
	// Both halves share all inputs except the last, which selects.
	shared := make(map[string]ir.Expr, k-1)
	//
	for i := uint(0); i < k-1; i++ {
		name := fmt.Sprintf("I%d", i)
		shared[name] = ports[name]
	}
	//
	lut0, data0, err := st.realize(iface.Lut(k-1), shared, items[0], depth+1)
	if err != nil {
		return nil, nil, err
	}
	//
	lut1, data1, err := st.realize(iface.Lut(k-1), shared, items[1], depth+1)
	if err != nil {
		return nil, nil, err
	}
	//
	mux, data2, err := st.realize(iface.Mux2(), map[string]ir.Expr{
		"I0": out(lut0), "I1": out(lut1), "S": ports[fmt.Sprintf("I%d", k-1)],
	}, items[2], depth+1)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	result := ir.NewMap([]string{"O"}, []ir.Expr{out(mux)})
	//
	return result, &Tuple{[]Data{data0, data1, data2}}, nil
}

// ============================================================================
// R4: carry of non-native width from carry tiles
// ============================================================================

func (st *state) retileCarry(impl *arch.Implementation, w uint, wTile uint,
	ports map[string]ir.Expr, data Data, depth int) (ir.Expr, Data, error) {
	n := (w + wTile - 1) / wTile
	//
	log.Debugf("retiling carry%d as %d x carry%d on %s", w, n, wTile, st.d.Name())
	//
	items, err := AsTuple(data, 2)
	if err != nil {
		return nil, nil, err
	}
	// All tiles share one token for their programmable state.
	tile, err := st.leafFor(impl, items[0])
	if err != nil {
		return nil, nil, err
	}
	// Padding holes fill the last tile's unused lanes.
	pad, err := st.padFor(items[1])
	if err != nil {
		return nil, nil, err
	}
	//
	di := padded(ports["DI"], pad.States[0], n*wTile)
	s := padded(ports["S"], pad.States[1], n*wTile)
	//
	var (
		ci   = ports["CI"]
		outs = make([]ir.Expr, n)
	)
	//
	for i := uint(0); i < n; i++ {
		hi, lo := (i+1)*wTile-1, i*wTile
		//
		result, _, err := st.realize(iface.Carry(wTile), map[string]ir.Expr{
			"CI": ci,
			"DI": ir.NewExtract(di, hi, lo),
			"S":  ir.NewExtract(s, hi, lo),
		}, tile, depth+1)
		//
		if err != nil {
			return nil, nil, err
		}
		// Next tile's carry-in is this tile's carry-out.
		outs[n-1-i] = ir.NewMapRef(result, "O")
		ci = ir.NewMapRef(result, "CO")
	}
	//
	output := ir.NewExtract(ir.NewConcat(outs...), w-1, 0)
	result := ir.NewMap([]string{"O", "CO"}, []ir.Expr{output, ci})
	//
	return result, &Tuple{[]Data{tile, pad}}, nil
}

// padFor allocates the two 1-bit padding holes, or checks a threaded-in pair.
func (st *state) padFor(data Data) (*Leaf, error) {
	if data != nil {
		return AsLeaf(data, 2)
	}
	//
	return &Leaf{[]ir.Expr{
		st.alloc.FreshBV("carry_pad_DI", 1),
		st.alloc.FreshBV("carry_pad_S", 1),
	}}, nil
}

// padded widens an expression to the given width by replicating a padding
// bit at the top.
func padded(e ir.Expr, pad ir.Expr, width uint) ir.Expr {
	count := width - e.Width()
	//
	if count == 0 {
		return e
	}
	//
	args := make([]ir.Expr, count+1)
	//
	for i := uint(0); i < count; i++ {
		args[i] = pad
	}
	//
	args[count] = e
	//
	return ir.NewConcat(args...)
}

// ============================================================================
// R5: carry from LUT + MUX when no carry exists
// ============================================================================

func (st *state) inventCarry(w uint, ports map[string]ir.Expr, data Data, depth int) (ir.Expr, Data, error) {
	items, err := AsTuple(data, 2)
	if err != nil {
		return nil, nil, err
	}
	//
	if w == 1 {
		// Base case: carry-out is a MUX2, lane output is a LUT2.
		mux, data0, err := st.realize(iface.Mux2(), map[string]ir.Expr{
			"I0": ports["DI"], "I1": ports["CI"], "S": ports["S"],
		}, items[0], depth+1)
		//
		if err != nil {
			return nil, nil, err
		}
		//
		lut, data1, err := st.realize(iface.Lut(2), map[string]ir.Expr{
			"I0": ports["S"], "I1": ports["CI"],
		}, items[1], depth+1)
		//
		if err != nil {
			return nil, nil, err
		}
		//
		result := ir.NewMap([]string{"O", "CO"}, []ir.Expr{out(lut), out(mux)})
		//
		return result, &Tuple{[]Data{data0, data1}}, nil
	}
	// Recursive case: one lane low, the rest chained above it.
	di, s := ports["DI"], ports["S"]
	//
	low, data0, err := st.realize(iface.Carry(1), map[string]ir.Expr{
		"CI": ports["CI"], "DI": ir.Bit(di, 0), "S": ir.Bit(s, 0),
	}, items[0], depth+1)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	rest, data1, err := st.realize(iface.Carry(w-1), map[string]ir.Expr{
		"CI": ir.NewMapRef(low, "CO"),
		"DI": ir.NewExtract(di, w-1, 1),
		"S":  ir.NewExtract(s, w-1, 1),
	}, items[1], depth+1)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	result := ir.NewMap([]string{"O", "CO"}, []ir.Expr{
		ir.NewConcat(ir.NewMapRef(rest, "O"), ir.NewMapRef(low, "O")),
		ir.NewMapRef(rest, "CO"),
	})
	//
	return result, &Tuple{[]Data{data0, data1}}, nil
}

// ============================================================================
// Helpers
// ============================================================================

// out projects the single output O of a realized interface.
func out(realized ir.Expr) ir.Expr {
	return ir.NewMapRef(realized, "O")
}

func checkPorts(id iface.Id, ports map[string]ir.Expr) error {
	def, err := iface.Define(id)
	if err != nil {
		return err
	}
	//
	for _, input := range def.Inputs() {
		expr, ok := ports[input.Name]
		//
		if !ok {
			return fmt.Errorf("interface %s: missing port %s", id, input.Name)
		} else if expr.Width() != input.Width {
			return fmt.Errorf("interface %s: port %s expects %d bits, given %d",
				id, input.Name, input.Width, expr.Width())
		}
	}
	//
	return nil
}
