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

// Package spec holds the abstract bit-vector expressions a caller supplies
// as the behaviour to map: the hardware function the completed sketch must
// be equivalent to.  No HDL is accepted at this layer.
package spec

import (
	"fmt"

	"github.com/fabriclab/go-techmap/pkg/bitvec"
	"github.com/fabriclab/go-techmap/pkg/interp"
)

// Expr is an abstract bit-vector expression over named free variables.
type Expr interface {
	// Width returns the bit width of this expression.
	Width() uint
	// String returns the surface form of this expression.
	String() string
}

// Const is a literal bit-vector.
type Const struct {
	Value bitvec.Word
}

// Width implementation for Expr.
func (e *Const) Width() uint { return e.Value.Width() }

func (e *Const) String() string { return e.Value.String() }

// Var is a free variable: equivalence is quantified over all assignments to
// the free variables of a specification.
type Var struct {
	Name string
	W    uint
}

// Width implementation for Expr.
func (e *Var) Width() uint { return e.W }

func (e *Var) String() string { return e.Name }

// Op enumerates the binary bit-vector operators.
type Op uint8

const (
	// OpAnd is bitwise conjunction.
	OpAnd Op = iota
	// OpOr is bitwise disjunction.
	OpOr
	// OpXor is bitwise exclusive-or.
	OpXor
	// OpAdd is addition modulo 2^width.
	OpAdd
	// OpSub is subtraction modulo 2^width.
	OpSub
	// OpMul is multiplication modulo 2^width.
	OpMul
	// OpShl is a left shift.
	OpShl
	// OpLshr is a logical right shift.
	OpLshr
	// OpAshr is an arithmetic right shift.
	OpAshr
)

var opNames = map[Op]string{
	OpAnd: "bvand", OpOr: "bvor", OpXor: "bvxor",
	OpAdd: "bvadd", OpSub: "bvsub", OpMul: "bvmul",
	OpShl: "bvshl", OpLshr: "bvlshr", OpAshr: "bvashr",
}

// Bin is the application of a binary operator to two equal-width operands.
type Bin struct {
	Op  Op
	Lhs Expr
	Rhs Expr
}

// NewBin constructs a binary operation, checking both operands agree on
// width.
func NewBin(op Op, lhs Expr, rhs Expr) *Bin {
	if lhs.Width() != rhs.Width() {
		panic(fmt.Sprintf("width mismatch: %s between %d bits and %d bits",
			opNames[op], lhs.Width(), rhs.Width()))
	}

	return &Bin{op, lhs, rhs}
}

// Width implementation for Expr.
func (e *Bin) Width() uint { return e.Lhs.Width() }

func (e *Bin) String() string {
	return fmt.Sprintf("(%s %s %s)", opNames[e.Op], e.Lhs, e.Rhs)
}

// Not is bitwise complement.
type Not struct {
	Arg Expr
}

// Width implementation for Expr.
func (e *Not) Width() uint { return e.Arg.Width() }

func (e *Not) String() string { return fmt.Sprintf("(bvnot %s)", e.Arg) }

// Eq is equality of two equal-width operands, yielding a single bit.
type Eq struct {
	Lhs Expr
	Rhs Expr
}

// NewEq constructs an equality, checking both sides agree on width.
func NewEq(lhs Expr, rhs Expr) *Eq {
	if lhs.Width() != rhs.Width() {
		panic(fmt.Sprintf("width mismatch: bveq between %d bits and %d bits", lhs.Width(), rhs.Width()))
	}

	return &Eq{lhs, rhs}
}

// Width implementation for Expr.
func (e *Eq) Width() uint { return 1 }

func (e *Eq) String() string { return fmt.Sprintf("(bveq %s %s)", e.Lhs, e.Rhs) }

// Vars returns the free variables of an expression, in first-visit order.
func Vars(e Expr) []*Var {
	var (
		vars []*Var
		seen = make(map[string]bool)
	)
	//
	collectVars(e, seen, &vars)
	//
	return vars
}

func collectVars(e Expr, seen map[string]bool, vars *[]*Var) {
	switch e := e.(type) {
	case *Const:
	case *Var:
		if !seen[e.Name] {
			seen[e.Name] = true
			*vars = append(*vars, e)
		}
	case *Bin:
		collectVars(e.Lhs, seen, vars)
		collectVars(e.Rhs, seen, vars)
	case *Not:
		collectVars(e.Arg, seen, vars)
	case *Eq:
		collectVars(e.Lhs, seen, vars)
		collectVars(e.Rhs, seen, vars)
	}
}

// Eval evaluates a specification under a value domain, binding free
// variables through the given environment.
func Eval[V any](d interp.Domain[V], env map[string]V, e Expr) (V, error) {
	var empty V
	//
	switch e := e.(type) {
	case *Const:
		return d.Const(e.Value), nil
	case *Var:
		v, ok := env[e.Name]
		if !ok {
			return empty, fmt.Errorf("unbound variable %s", e.Name)
		}
		//
		return v, nil
	case *Not:
		arg, err := Eval(d, env, e.Arg)
		if err != nil {
			return empty, err
		}
		//
		return d.Not(arg), nil
	case *Eq:
		lhs, rhs, err := eval2(d, env, e.Lhs, e.Rhs)
		if err != nil {
			return empty, err
		}
		//
		return d.Eq(lhs, rhs), nil
	case *Bin:
		lhs, rhs, err := eval2(d, env, e.Lhs, e.Rhs)
		if err != nil {
			return empty, err
		}
		//
		switch e.Op {
		case OpAnd:
			return d.And(lhs, rhs), nil
		case OpOr:
			return d.Or(lhs, rhs), nil
		case OpXor:
			return d.Xor(lhs, rhs), nil
		case OpAdd:
			return d.Add(lhs, rhs), nil
		case OpSub:
			return d.Sub(lhs, rhs), nil
		case OpMul:
			return d.Mul(lhs, rhs), nil
		case OpShl:
			return d.Shl(lhs, rhs), nil
		case OpLshr:
			return d.Lshr(lhs, rhs), nil
		case OpAshr:
			return d.Ashr(lhs, rhs), nil
		}
	}
	//
	return empty, fmt.Errorf("unknown expression %T", e)
}

func eval2[V any](d interp.Domain[V], env map[string]V, lhs Expr, rhs Expr) (V, V, error) {
	var empty V
	//
	l, err := Eval(d, env, lhs)
	if err != nil {
		return empty, empty, err
	}
	//
	r, err := Eval(d, env, rhs)
	//
	return l, r, err
}
