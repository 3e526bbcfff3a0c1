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
package ir

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/bitvec"
)

// Lit represents a literal bit-vector value.
type Lit struct {
	Value bitvec.Word
}

// Const constructs a literal expression from a word.
func Const(value bitvec.Word) *Lit {
	return &Lit{value}
}

// ConstUint constructs a literal expression of a given width, panicking if
// the value does not fit.
func ConstUint(value uint64, width uint) *Lit {
	return &Lit{bitvec.Must(value, width)}
}

// Width returns the bit width of this expression.
func (e *Lit) Width() uint { return e.Value.Width() }

func (e *Lit) String() string { return e.Value.String() }

// Var represents a named variable of a given width.  Variables are the free
// inputs of an abstract specification; they are distinguished from symbolic
// holes by their node kind.
type Var struct {
	Name string
	W    uint
}

// NewVar constructs a named variable of the given width.
func NewVar(name string, width uint) *Var {
	if width == 0 {
		widthFailure("variable %s has zero width", name)
	}

	return &Var{name, width}
}

// Width returns the bit width of this expression.
func (e *Var) Width() uint { return e.W }

func (e *Var) String() string { return e.Name }

// Wire represents a placeholder for an expression which is not yet known,
// supporting the two-step construction of combinational feedback: declare the
// wire, reference it whilst building, then unify it with its defining
// expression via the owning Graph.
type Wire struct {
	index uint
	name  string
	width uint
}

// Index returns the arena index of this wire within its graph.
func (e *Wire) Index() uint { return e.index }

// Name returns the declared name of this wire.
func (e *Wire) Name() string { return e.name }

// Width returns the bit width of this expression.
func (e *Wire) Width() uint { return e.width }

func (e *Wire) String() string { return fmt.Sprintf("(wire %s)", e.name) }

// Graph is an arena of placeholder wires along with their unification map.
// Wires are identified by index handle; no pointer surgery occurs when a wire
// is finally unified with its definition.
type Graph struct {
	wires []*Wire
	defs  []Expr
}

// NewGraph constructs an empty wire arena.
func NewGraph() *Graph {
	return &Graph{}
}

// NewWire declares a fresh placeholder wire of the given width.
func (g *Graph) NewWire(name string, width uint) *Wire {
	w := &Wire{uint(len(g.wires)), name, width}
	g.wires = append(g.wires, w)
	g.defs = append(g.defs, nil)
	//
	return w
}

// Unify binds a wire to its defining expression.  A wire can be unified at
// most once, and the definition must agree on width.
func (g *Graph) Unify(w *Wire, def Expr) error {
	if g.defs[w.index] != nil {
		return fmt.Errorf("wire %s already unified", w.name)
	} else if def.Width() != w.width {
		return fmt.Errorf("wire %s has width %d, definition has width %d", w.name, w.width, def.Width())
	}
	//
	g.defs[w.index] = def
	//
	return nil
}

// Resolve returns the definition a wire was unified with, if any.
func (g *Graph) Resolve(w *Wire) (Expr, bool) {
	def := g.defs[w.index]
	return def, def != nil
}
