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
package spec

import (
	"errors"
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/bitvec"
	"github.com/fabriclab/go-techmap/pkg/sexp"
)

var parseOps = map[string]Op{
	"bvand": OpAnd, "bvor": OpOr, "bvxor": OpXor,
	"bvadd": OpAdd, "bvsub": OpSub, "bvmul": OpMul,
	"bvshl": OpShl, "bvlshr": OpLshr, "bvashr": OpAshr,
}

// Parse reads an abstract specification from its prefix surface form, e.g.
// "(bvand a b)" or "(bveq (bvadd a b) (bv 0 8))".  Free variables take their
// widths from the given map; an unknown variable is an error.
func Parse(input string, widths map[string]uint) (Expr, error) {
	sExp, err := sexp.Parse(input)
	if err != nil {
		return nil, err
	}

	return exprOf(sExp, widths)
}

func exprOf(sExp sexp.SExp, widths map[string]uint) (Expr, error) {
	switch sExp := sExp.(type) {
	case *sexp.Symbol:
		width, ok := widths[sExp.Value]
		if !ok {
			return nil, fmt.Errorf("variable %s has no declared width", sExp.Value)
		}
		//
		return &Var{sExp.Value, width}, nil
	case *sexp.List:
		return listExprOf(sExp, widths)
	}
	//
	return nil, errors.New("malformed specification")
}

func listExprOf(list *sexp.List, widths map[string]uint) (Expr, error) {
	head, ok := first(list)
	if !ok {
		return nil, fmt.Errorf("malformed specification %s", list)
	}
	//
	switch {
	case head == "bv":
		if list.Len() != 3 {
			return nil, fmt.Errorf("malformed literal %s", list)
		}
		//
		value, okV := asUint(list.Elements[1])
		width, okW := asUint(list.Elements[2])
		//
		if !okV || !okW {
			return nil, fmt.Errorf("malformed literal %s", list)
		}
		//
		word, err := bitvec.New(value, uint(width))
		if err != nil {
			return nil, err
		}
		//
		return &Const{word}, nil
	case head == "bvnot":
		if list.Len() != 2 {
			return nil, fmt.Errorf("bvnot expects one operand in %s", list)
		}
		//
		arg, err := exprOf(list.Elements[1], widths)
		if err != nil {
			return nil, err
		}
		//
		return &Not{arg}, nil
	case head == "bveq":
		lhs, rhs, err := operands(list, widths)
		if err != nil {
			return nil, err
		}
		//
		return checked(func() Expr { return NewEq(lhs, rhs) })
	default:
		if op, ok := parseOps[head]; ok {
			lhs, rhs, err := operands(list, widths)
			if err != nil {
				return nil, err
			}
			//
			return checked(func() Expr { return NewBin(op, lhs, rhs) })
		}
	}
	//
	return nil, fmt.Errorf("unknown operator %s", head)
}

func operands(list *sexp.List, widths map[string]uint) (Expr, Expr, error) {
	if list.Len() != 3 {
		return nil, nil, fmt.Errorf("operator expects two operands in %s", list)
	}
	//
	lhs, err := exprOf(list.Elements[1], widths)
	if err != nil {
		return nil, nil, err
	}
	//
	rhs, err := exprOf(list.Elements[2], widths)
	//
	return lhs, rhs, err
}

// checked converts a construction panic (width mismatch) into an error, so
// malformed user input surfaces as a diagnostic rather than a crash.
func checked(build func() Expr) (e Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	//
	return build(), nil
}

func first(list *sexp.List) (string, bool) {
	if list.Len() > 0 {
		if symbol, ok := list.Elements[0].(*sexp.Symbol); ok {
			return symbol.Value, true
		}
	}
	//
	return "", false
}

func asUint(sExp sexp.SExp) (uint64, bool) {
	if symbol, ok := sExp.(*sexp.Symbol); ok {
		return symbol.AsUint()
	}

	return 0, false
}
