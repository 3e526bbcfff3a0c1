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

// Package arch models architecture descriptions: the per-fabric mapping from
// abstract interface identifiers to concrete hardware primitives.
package arch

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/iface"
	"github.com/fabriclab/go-techmap/pkg/ir"
	"github.com/fabriclab/go-techmap/pkg/util"
)

// State declares one internal-state variable of an implementation, modelling
// fabric-programmable state such as a LUT truth table.
type State struct {
	Name  string
	Width uint
}

// Output binds an interface output name to the wiring term which extracts it
// from the instantiated primitive's ports.
type Output struct {
	Name string
	Term Term
}

// TemplatePort is one port of a module template.  For inputs, Value is the
// wiring term which drives the port; for outputs, the port name itself
// stands for the produced signal and Value is nil.
type TemplatePort struct {
	Name      string
	Direction ir.Direction
	Width     uint
	Value     Term
}

// TemplateParam is one compile-time parameter of a module template, whose
// value resolves against the implementation's internal state.
type TemplateParam struct {
	Name  string
	Value Term
}

// ModuleTemplate describes the single hardware module instantiated by an
// implementation.
type ModuleTemplate struct {
	Name           string
	Filepath       string
	ImportFilepath string
	Ports          []TemplatePort
	Params         []TemplateParam
}

// Implementation maps one abstract interface onto a concrete primitive.
type Implementation struct {
	Id       iface.Id
	Module   ModuleTemplate
	Internal []State
	Outputs  []Output
}

// Arity returns the num_inputs parameter for LUT/MUX implementations, or the
// width parameter for carries.
func (impl *Implementation) Arity() uint {
	for _, name := range []string{"num_inputs", "width"} {
		if value, ok := impl.Id.Param(name); ok {
			return value
		}
	}
	//
	panic(fmt.Sprintf("implementation %s has no arity", impl.Id))
}

// Description is an ordered list of interface implementations describing one
// target fabric.  Declaration order is significant: when the synthesizer has
// a choice of implementations, the first declared wins.
type Description struct {
	name  string
	impls []*Implementation
	index *util.HashMap[iface.Id, *Implementation]
}

// NewDescription constructs a description from an ordered implementation
// list, validating each implementation against its interface definition:
// every input port's wiring term must have the width the port declares, and
// every projected output must have the width its interface output declares.
func NewDescription(name string, impls []*Implementation) (*Description, error) {
	index := util.NewHashMap[iface.Id, *Implementation]()
	//
	for _, impl := range impls {
		if err := validate(impl); err != nil {
			return nil, fmt.Errorf("implementation %s: %v", impl.Id, err)
		}
		// First declaration wins
		if !index.ContainsKey(impl.Id) {
			index.Insert(impl.Id, impl)
		}
	}
	//
	return &Description{name, impls, index}, nil
}

// Name returns the name of the described fabric.
func (d *Description) Name() string { return d.name }

// Implementations returns the implementation list in declaration order.
func (d *Description) Implementations() []*Implementation {
	return d.impls
}

// Lookup returns the implementation whose identifier structurally equals the
// given identifier, if any.
func (d *Description) Lookup(id iface.Id) (*Implementation, bool) {
	return d.index.Get(id)
}

// FindLut returns the first declared LUT implementation whose arity
// satisfies the given predicate.
func (d *Description) FindLut(pred func(k uint) bool) (*Implementation, uint, bool) {
	return d.find(iface.LutKind, "num_inputs", pred)
}

// FindCarry returns the first declared carry implementation whose width
// satisfies the given predicate.
func (d *Description) FindCarry(pred func(w uint) bool) (*Implementation, uint, bool) {
	return d.find(iface.CarryKind, "width", pred)
}

// HasMux reports whether any multiplexer implementation is declared.
func (d *Description) HasMux() bool {
	for _, impl := range d.impls {
		if impl.Id.Kind == iface.MuxKind {
			return true
		}
	}

	return false
}

func (d *Description) find(kind iface.Kind, param string, pred func(uint) bool) (*Implementation, uint, bool) {
	for _, impl := range d.impls {
		if impl.Id.Kind == kind {
			if value, ok := impl.Id.Param(param); ok && pred(value) {
				return impl, value, true
			}
		}
	}

	return nil, 0, false
}

// ============================================================================
// Validation
// ============================================================================

func validate(impl *Implementation) error {
	def, err := iface.Define(impl.Id)
	if err != nil {
		return err
	}
	// Symbols in port/param wiring terms resolve against the interface's
	// declared inputs and the internal state.
	widths := func(name string) (uint, bool) {
		if width, ok := def.Input(name); ok {
			return width, true
		}
		//
		for _, state := range impl.Internal {
			if state.Name == name {
				return state.Width, true
			}
		}
		//
		return 0, false
	}
	//
	for _, port := range impl.Module.Ports {
		switch port.Direction {
		case ir.Input:
			width, err := port.Value.Width(widths)
			//
			if err != nil {
				return fmt.Errorf("port %s: %v", port.Name, err)
			} else if width != port.Width {
				return fmt.Errorf("port %s declared %d bits, wired to %d bits", port.Name, port.Width, width)
			}
		case ir.Output:
			if port.Value != nil {
				return fmt.Errorf("output port %s cannot be driven", port.Name)
			}
		}
	}
	//
	for _, param := range impl.Module.Params {
		if _, err := param.Value.Width(widths); err != nil {
			return fmt.Errorf("parameter %s: %v", param.Name, err)
		}
	}
	// Projections resolve against the primitive's output ports.
	outputs := func(name string) (uint, bool) {
		for _, port := range impl.Module.Ports {
			if port.Direction == ir.Output && port.Name == name {
				return port.Width, true
			}
		}
		//
		return 0, false
	}
	//
	for _, declared := range def.Ports {
		if declared.Direction != ir.Output {
			continue
		}
		//
		projection, found := lookupOutput(impl.Outputs, declared.Name)
		if !found {
			return fmt.Errorf("missing projection for output %s", declared.Name)
		}
		//
		width, err := projection.Width(outputs)
		//
		if err != nil {
			return fmt.Errorf("output %s: %v", declared.Name, err)
		} else if width != declared.Width {
			return fmt.Errorf("output %s declared %d bits, projected %d bits", declared.Name, declared.Width, width)
		}
	}
	//
	return nil
}

func lookupOutput(outputs []Output, name string) (Term, bool) {
	for _, output := range outputs {
		if output.Name == name {
			return output.Term, true
		}
	}

	return nil, false
}
