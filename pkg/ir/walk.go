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

import "fmt"

// Walk visits every node reachable from the given expression exactly once,
// in depth-first preorder.  Shared subtrees are visited once.
func Walk(e Expr, fn func(Expr)) {
	visited := make(map[Expr]bool)
	walk(e, fn, visited)
}

func walk(e Expr, fn func(Expr), visited map[Expr]bool) {
	if visited[e] {
		return
	}
	//
	visited[e] = true
	fn(e)
	//
	switch e := e.(type) {
	case *Lit, *Var, *Symbolic, *Wire:
		// terminals
	case *Extract:
		walk(e.Arg, fn, visited)
	case *Concat:
		for _, arg := range e.Args {
			walk(arg, fn, visited)
		}
	case *ZeroExtend:
		walk(e.Arg, fn, visited)
	case *DupExtend:
		walk(e.Arg, fn, visited)
	case *Eq:
		walk(e.Lhs, fn, visited)
		walk(e.Rhs, fn, visited)
	case *And:
		for _, arg := range e.Args {
			walk(arg, fn, visited)
		}
	case *Or:
		for _, arg := range e.Args {
			walk(arg, fn, visited)
		}
	case *Mux:
		walk(e.Sel, fn, visited)
		walk(e.OnTrue, fn, visited)
		walk(e.OnFalse, fn, visited)
	case *Reg:
		walk(e.Next, fn, visited)
	case *Map:
		for _, val := range e.Vals {
			walk(val, fn, visited)
		}
	case *MapRef:
		walk(e.Src, fn, visited)
	case *List:
		for _, elem := range e.Elems {
			walk(elem, fn, visited)
		}
	case *ListRef:
		walk(e.Src, fn, visited)
	case *Instance:
		for _, port := range e.Ports {
			if port.Value != nil {
				walk(port.Value, fn, visited)
			}
		}
		//
		for _, param := range e.Params {
			walk(param.Value, fn, visited)
		}
	default:
		panic(fmt.Sprintf("unknown expression %T", e))
	}
}

// Symbols returns every symbolic hole reachable from the given expression, in
// first-visit order and without duplicates.
func Symbols(e Expr) []*Symbolic {
	var symbols []*Symbolic
	//
	Walk(e, func(e Expr) {
		if s, ok := e.(*Symbolic); ok {
			symbols = append(symbols, s)
		}
	})
	//
	return symbols
}

// FreeVars returns every named variable reachable from the given expression,
// in first-visit order and without duplicates.
func FreeVars(e Expr) []*Var {
	var (
		vars []*Var
		seen = make(map[string]bool)
	)
	//
	Walk(e, func(e Expr) {
		if v, ok := e.(*Var); ok && !seen[v.Name] {
			seen[v.Name] = true
			vars = append(vars, v)
		}
	})
	//
	return vars
}
