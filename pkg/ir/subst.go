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

// Substitute rebuilds an expression with every symbolic hole for which the
// binding function yields a value replaced by the corresponding literal.
// Unbound holes are retained.  Shared subtrees remain shared.
func Substitute(e Expr, bind func(*Symbolic) (bitvec.Word, bool)) Expr {
	memo := make(map[Expr]Expr)
	return substitute(e, bind, memo)
}

func substitute(e Expr, bind func(*Symbolic) (bitvec.Word, bool), memo map[Expr]Expr) Expr {
	if r, ok := memo[e]; ok {
		return r
	}
	//
	var result Expr
	//
	switch e := e.(type) {
	case *Lit, *Var, *Wire:
		result = e
	case *Symbolic:
		if value, ok := bind(e); ok {
			if value.Width() != e.Width() {
				widthFailure("hole %s assigned %d bits, expected %d", e, value.Width(), e.Width())
			}
			//
			result = Const(value)
		} else {
			result = e
		}
	case *Extract:
		result = NewExtract(substitute(e.Arg, bind, memo), e.Hi, e.Lo)
	case *Concat:
		result = NewConcat(substituteAll(e.Args, bind, memo)...)
	case *ZeroExtend:
		result = NewZeroExtend(substitute(e.Arg, bind, memo), e.W)
	case *DupExtend:
		result = NewDupExtend(substitute(e.Arg, bind, memo), e.W)
	case *Eq:
		result = NewEq(substitute(e.Lhs, bind, memo), substitute(e.Rhs, bind, memo))
	case *And:
		result = NewAnd(substituteAll(e.Args, bind, memo)...)
	case *Or:
		result = NewOr(substituteAll(e.Args, bind, memo)...)
	case *Mux:
		result = NewMux(substitute(e.Sel, bind, memo),
			substitute(e.OnTrue, bind, memo), substitute(e.OnFalse, bind, memo))
	case *Reg:
		result = NewReg(e.Init, substitute(e.Next, bind, memo))
	case *Map:
		result = NewMap(e.Keys, substituteAll(e.Vals, bind, memo))
	case *MapRef:
		result = NewMapRef(substitute(e.Src, bind, memo), e.Key)
	case *List:
		result = NewList(substituteAll(e.Elems, bind, memo)...)
	case *ListRef:
		list := substitute(e.Src, bind, memo).(*List)
		result = NewListRef(list, e.Index)
	case *Instance:
		ports := make([]Port, len(e.Ports))
		//
		for i, port := range e.Ports {
			ports[i] = port
			if port.Value != nil {
				ports[i].Value = substitute(port.Value, bind, memo)
			}
		}
		//
		params := make([]Param, len(e.Params))
		//
		for i, param := range e.Params {
			params[i] = Param{param.Name, substitute(param.Value, bind, memo)}
		}
		//
		result = NewInstance(e.Module, e.Filepath, ports, params)
	default:
		panic(fmt.Sprintf("unknown expression %T", e))
	}
	//
	memo[e] = result
	//
	return result
}

func substituteAll(es []Expr, bind func(*Symbolic) (bitvec.Word, bool), memo map[Expr]Expr) []Expr {
	results := make([]Expr, len(es))
	for i, e := range es {
		results[i] = substitute(e, bind, memo)
	}

	return results
}
