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

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/ir"
)

// Env binds the free names of an expression for evaluation: variables by
// name, symbolic holes by allocation id, and (optionally) the wire arena for
// resolving placeholders.
type Env[V any] struct {
	Vars  map[string]V
	Syms  map[uint]V
	Graph *ir.Graph
}

// Eval evaluates an expression under an environment and a module-semantics
// table.  Shared subtrees are evaluated once.
func Eval[V any](d Domain[V], table *Table[V], env *Env[V], e ir.Expr) (V, error) {
	ev := &evaluator[V]{d, table, env, make(map[ir.Expr]V), make(map[*ir.Instance]map[string]V)}
	return ev.eval(e)
}

type evaluator[V any] struct {
	d     Domain[V]
	table *Table[V]
	env   *Env[V]
	memo  map[ir.Expr]V
	insts map[*ir.Instance]map[string]V
}

//nolint:gocyclo
func (ev *evaluator[V]) eval(e ir.Expr) (V, error) {
	var empty V
	//
	if v, ok := ev.memo[e]; ok {
		return v, nil
	}
	//
	var (
		v   V
		err error
	)
	//
	switch e := e.(type) {
	case *ir.Lit:
		v = ev.d.Const(e.Value)
	case *ir.Var:
		bound, ok := ev.env.Vars[e.Name]
		if !ok {
			return empty, fmt.Errorf("unbound variable %s", e.Name)
		}
		//
		v = bound
	case *ir.Symbolic:
		bound, ok := ev.env.Syms[e.Id()]
		if !ok {
			return empty, fmt.Errorf("unassigned symbolic %s", e)
		}
		//
		v = bound
	case *ir.Wire:
		if ev.env.Graph == nil {
			return empty, fmt.Errorf("wire %s outside any graph", e.Name())
		}
		//
		def, ok := ev.env.Graph.Resolve(e)
		if !ok {
			return empty, fmt.Errorf("wire %s never unified", e.Name())
		}
		//
		v, err = ev.eval(def)
	case *ir.Extract:
		v, err = ev.unary(e.Arg, func(arg V) V { return ev.d.Extract(arg, e.Hi, e.Lo) })
	case *ir.Concat:
		v, err = ev.fold(e.Args, ev.d.Concat)
	case *ir.ZeroExtend:
		v, err = ev.unary(e.Arg, func(arg V) V { return ev.d.ZeroExtend(arg, e.W) })
	case *ir.DupExtend:
		v, err = ev.unary(e.Arg, func(arg V) V { return ev.d.DupExtend(arg, e.W) })
	case *ir.Eq:
		v, err = ev.binary(e.Lhs, e.Rhs, ev.d.Eq)
	case *ir.And:
		v, err = ev.fold(e.Args, ev.d.And)
	case *ir.Or:
		v, err = ev.fold(e.Args, ev.d.Or)
	case *ir.Mux:
		var sel, onTrue, onFalse V
		//
		if sel, err = ev.eval(e.Sel); err == nil {
			if onTrue, err = ev.eval(e.OnTrue); err == nil {
				if onFalse, err = ev.eval(e.OnFalse); err == nil {
					v = ev.d.Mux(sel, onTrue, onFalse)
				}
			}
		}
	case *ir.Reg:
		return empty, fmt.Errorf("cannot evaluate sequential register combinationally")
	case *ir.MapRef:
		v, err = ev.mapRef(e)
	case *ir.ListRef:
		v, err = ev.eval(e.Src.Elems[e.Index])
	case *ir.Map, *ir.List, *ir.Instance:
		return empty, fmt.Errorf("%T has no single value", e)
	default:
		return empty, fmt.Errorf("unknown expression %T", e)
	}
	//
	if err != nil {
		return empty, err
	}
	//
	ev.memo[e] = v
	//
	return v, nil
}

func (ev *evaluator[V]) mapRef(e *ir.MapRef) (V, error) {
	var empty V
	//
	switch src := e.Src.(type) {
	case *ir.Map:
		val, _ := src.Get(e.Key)
		return ev.eval(val)
	case *ir.Instance:
		outputs, err := ev.instance(src)
		if err != nil {
			return empty, err
		}
		//
		v, ok := outputs[e.Key]
		if !ok {
			return empty, fmt.Errorf("module %s has no output %s", src.Module, e.Key)
		}
		//
		return v, nil
	}
	//
	return empty, fmt.Errorf("map lookup on %T", e.Src)
}

// instance evaluates a hardware-module instance by applying the behavioural
// model registered for its (module name, filepath) pair to its evaluated
// input ports and parameters.
func (ev *evaluator[V]) instance(inst *ir.Instance) (map[string]V, error) {
	if outputs, ok := ev.insts[inst]; ok {
		return outputs, nil
	}
	//
	semantics, ok := ev.table.Lookup(inst.Module, inst.Filepath)
	if !ok {
		return nil, fmt.Errorf("no semantics for module %s (%s)", inst.Module, inst.Filepath)
	}
	//
	ports := make(map[string]V, len(inst.Ports))
	//
	for _, port := range inst.Ports {
		if port.Direction != ir.Input {
			continue
		}
		//
		v, err := ev.eval(port.Value)
		if err != nil {
			return nil, err
		}
		//
		ports[port.Name] = v
	}
	//
	params := make(map[string]V, len(inst.Params))
	//
	for _, param := range inst.Params {
		v, err := ev.eval(param.Value)
		if err != nil {
			return nil, err
		}
		//
		params[param.Name] = v
	}
	//
	outputs, err := semantics(ev.d, ports, params)
	if err != nil {
		return nil, fmt.Errorf("module %s: %v", inst.Module, err)
	}
	//
	ev.insts[inst] = outputs
	//
	return outputs, nil
}

func (ev *evaluator[V]) unary(arg ir.Expr, op func(V) V) (V, error) {
	var empty V
	//
	v, err := ev.eval(arg)
	if err != nil {
		return empty, err
	}

	return op(v), nil
}

func (ev *evaluator[V]) binary(lhs ir.Expr, rhs ir.Expr, op func(V, V) V) (V, error) {
	var empty V
	//
	l, err := ev.eval(lhs)
	if err != nil {
		return empty, err
	}
	//
	r, err := ev.eval(rhs)
	if err != nil {
		return empty, err
	}

	return op(l, r), nil
}

// fold reduces arguments right to left, starting from the last argument, so
// each step pairs (earlier argument, accumulated).  For concatenation this
// builds the result upwards from the least significant (last) argument.
func (ev *evaluator[V]) fold(args []ir.Expr, op func(V, V) V) (V, error) {
	var empty V
	//
	acc, err := ev.eval(args[len(args)-1])
	if err != nil {
		return empty, err
	}
	//
	for i := len(args) - 2; i >= 0; i-- {
		v, err := ev.eval(args[i])
		if err != nil {
			return empty, err
		}
		//
		acc = op(v, acc)
	}

	return acc, nil
}
