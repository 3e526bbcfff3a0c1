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

// Package solver completes sketches.  The query is exists-forall — find an
// assignment to the symbolic holes under which the sketch equals the
// abstract specification for every assignment to the free variables — and is
// answered by counterexample-guided inductive synthesis over a SAT core:
// synthesise against a growing example set, verify the candidate, feed any
// counterexample back.
package solver

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/bitvec"
	"github.com/fabriclab/go-techmap/pkg/interp"
	"github.com/fabriclab/go-techmap/pkg/ir"
	"github.com/fabriclab/go-techmap/pkg/spec"
	log "github.com/sirupsen/logrus"
)

// Status reports the outcome of a synthesis query.
type Status int

const (
	// StatusSat means a hole assignment was found and verified.
	StatusSat Status = iota
	// StatusUnsat means no assignment exists: no mapping was found for this
	// sketch on this architecture.
	StatusUnsat
	// StatusUnknown means the search gave out (iteration limit, or the SAT
	// core gave up) without an answer either way.
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	}
	//
	return "unknown"
}

// Model assigns words to symbolic holes, by allocation id.
type Model struct {
	values map[uint]bitvec.Word
}

// Value returns the word assigned to a hole id, if any.
func (m *Model) Value(id uint) (bitvec.Word, bool) {
	word, ok := m.values[id]
	return word, ok
}

// Bind adapts this model for expression substitution.
func (m *Model) Bind(s *ir.Symbolic) (bitvec.Word, bool) {
	return m.Value(s.Id())
}

// Query is one synthesis problem: make the sketch equivalent to the
// specification for all free-variable assignments.
type Query struct {
	// Spec is the abstract behaviour to match.
	Spec spec.Expr
	// Sketch is the netlist expression containing symbolic holes.
	Sketch ir.Expr
	// Holes to assign.  When nil, every symbolic value reachable from the
	// sketch is a hole.
	Holes []*ir.Symbolic
}

// Options tune the search.
type Options struct {
	// MaxIterations bounds the number of CEGIS rounds before giving up with
	// StatusUnknown.  Zero means the default.
	MaxIterations int
}

// Result carries the outcome of a query.
type Result struct {
	Status     Status
	Model      *Model
	Iterations int
}

// Synthesize answers a query.  Blocking: the SAT core runs on the calling
// goroutine; cancellation and timeouts are the caller's concern.
func Synthesize(q Query, opts Options) (Result, error) {
	maxIterations := opts.MaxIterations
	if maxIterations == 0 {
		maxIterations = 256
	}
	//
	holes := q.Holes
	if holes == nil {
		holes = ir.Symbols(q.Sketch)
	}
	//
	frees, err := freeVariables(q)
	if err != nil {
		return Result{}, err
	}
	//
	if q.Spec.Width() != q.Sketch.Width() {
		return Result{}, fmt.Errorf("specification is %d bits but sketch is %d bits",
			q.Spec.Width(), q.Sketch.Width())
	}
	// Seed with the all-zeros assignment.
	examples := []map[string]bitvec.Word{zeroExample(frees)}
	//
	for iteration := 1; iteration <= maxIterations; iteration++ {
		model, status, err := synthesise(q, holes, examples)
		//
		if err != nil {
			return Result{}, err
		} else if status != StatusSat {
			return Result{Status: status, Iterations: iteration}, nil
		}
		//
		counterexample, verified, err := verify(q, model, frees)
		if err != nil {
			return Result{}, err
		}
		//
		if verified {
			log.Debugf("cegis converged after %d iteration(s), %d example(s)", iteration, len(examples))
			return Result{Status: StatusSat, Model: model, Iterations: iteration}, nil
		} else if counterexample == nil {
			return Result{Status: StatusUnknown, Iterations: iteration}, nil
		}
		//
		log.Debugf("cegis iteration %d: counterexample %v", iteration, counterexample)
		examples = append(examples, counterexample)
	}
	//
	return Result{Status: StatusUnknown, Iterations: maxIterations}, nil
}

// synthesise searches for a hole assignment consistent with every example.
func synthesise(q Query, holes []*ir.Symbolic, examples []map[string]bitvec.Word) (*Model, Status, error) {
	var (
		b        = newBuilder()
		table    = interp.Builtins[Vec]()
		concrete = interp.Concrete{}
		holeVecs = make(map[uint]Vec, len(holes))
	)
	// Hole bits are shared across all examples.
	for _, hole := range holes {
		holeVecs[hole.Id()] = b.freshVec(hole.Width(), b.holes)
	}
	//
	for _, example := range examples {
		expected, err := spec.Eval[bitvec.Word](concrete, example, q.Spec)
		if err != nil {
			return nil, StatusUnknown, err
		}
		//
		vars := make(map[string]Vec, len(example))
		for name, word := range example {
			vars[name] = b.Const(word)
		}
		//
		env := &interp.Env[Vec]{Vars: vars, Syms: holeVecs}
		//
		out, err := interp.Eval[Vec](b, table, env, q.Sketch)
		if err != nil {
			return nil, StatusUnknown, err
		}
		// Pin the sketch's output to the specification's value.
		for i, lit := range out {
			if expected.Bit(uint(i)) {
				b.clause(lit)
			} else {
				b.clause(lit.Not())
			}
		}
	}
	//
	switch b.sat.Solve() {
	case -1:
		return nil, StatusUnsat, nil
	case 0:
		return nil, StatusUnknown, nil
	}
	//
	values := make(map[uint]bitvec.Word, len(holeVecs))
	for id, vec := range holeVecs {
		values[id] = b.value(vec, b.holes)
	}
	//
	return &Model{values}, StatusSat, nil
}

// verify searches for a free-variable assignment separating the completed
// sketch from the specification.  It returns (nil, true, nil) when none
// exists, a counterexample when one does, and (nil, false, nil) when the SAT
// core cannot tell.
func verify(q Query, model *Model, frees []*spec.Var) (map[string]bitvec.Word, bool, error) {
	var (
		b        = newBuilder()
		table    = interp.Builtins[Vec]()
		freeVecs = make(map[string]Vec, len(frees))
	)
	//
	for _, v := range frees {
		freeVecs[v.Name] = b.freshVec(v.W, b.frees)
	}
	//
	specOut, err := spec.Eval[Vec](b, freeVecs, q.Spec)
	if err != nil {
		return nil, false, err
	}
	//
	syms := make(map[uint]Vec, len(model.values))
	for id, word := range model.values {
		syms[id] = b.Const(word)
	}
	//
	env := &interp.Env[Vec]{Vars: freeVecs, Syms: syms}
	//
	sketchOut, err := interp.Eval[Vec](b, table, env, q.Sketch)
	if err != nil {
		return nil, false, err
	}
	// Assert disagreement.
	b.clause(b.Eq(specOut, sketchOut)[0].Not())
	//
	switch b.sat.Solve() {
	case -1:
		return nil, true, nil
	case 0:
		return nil, false, nil
	}
	//
	counterexample := make(map[string]bitvec.Word, len(frees))
	for _, v := range frees {
		counterexample[v.Name] = b.value(freeVecs[v.Name], b.frees)
	}
	//
	return counterexample, false, nil
}

// freeVariables unions the free variables of the specification and the
// sketch, checking width agreement.
func freeVariables(q Query) ([]*spec.Var, error) {
	var (
		frees  []*spec.Var
		widths = make(map[string]uint)
	)
	//
	for _, v := range spec.Vars(q.Spec) {
		widths[v.Name] = v.W
		frees = append(frees, v)
	}
	//
	for _, v := range ir.FreeVars(q.Sketch) {
		if width, ok := widths[v.Name]; ok {
			if width != v.Width() {
				return nil, fmt.Errorf("variable %s is %d bits in the specification but %d in the sketch",
					v.Name, width, v.Width())
			}
			//
			continue
		}
		//
		widths[v.Name] = v.Width()
		frees = append(frees, &spec.Var{Name: v.Name, W: v.Width()})
	}
	//
	return frees, nil
}

func zeroExample(frees []*spec.Var) map[string]bitvec.Word {
	example := make(map[string]bitvec.Word, len(frees))
	//
	for _, v := range frees {
		example[v.Name] = bitvec.Zero(v.W)
	}
	//
	return example
}
