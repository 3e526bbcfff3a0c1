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

// Eq represents pairwise equality of two expressions of identical width,
// yielding a single bit.
type Eq struct {
	Lhs Expr
	Rhs Expr
}

// NewEq constructs an equality, checking both sides agree on width.
func NewEq(lhs Expr, rhs Expr) *Eq {
	if lhs.Width() != rhs.Width() {
		widthFailure("equality between %d bits and %d bits", lhs.Width(), rhs.Width())
	}

	return &Eq{lhs, rhs}
}

// Width returns the bit width of this expression.
func (e *Eq) Width() uint { return 1 }

func (e *Eq) String() string { return fmt.Sprintf("(eq %s %s)", e.Lhs, e.Rhs) }

// And represents the bitwise conjunction of one or more expressions of
// identical width.
type And struct {
	Args []Expr
}

// NewAnd constructs a conjunction, checking all arguments agree on width.
func NewAnd(args ...Expr) *And {
	checkUniformWidth("and", args)
	return &And{args}
}

// Width returns the bit width of this expression.
func (e *And) Width() uint { return e.Args[0].Width() }

func (e *And) String() string { return naryString("and", e.Args) }

// Or represents the bitwise disjunction of one or more expressions of
// identical width.
type Or struct {
	Args []Expr
}

// NewOr constructs a disjunction, checking all arguments agree on width.
func NewOr(args ...Expr) *Or {
	checkUniformWidth("or", args)
	return &Or{args}
}

// Width returns the bit width of this expression.
func (e *Or) Width() uint { return e.Args[0].Width() }

func (e *Or) String() string { return naryString("or", e.Args) }

// Mux represents a two-way multiplexer: OnTrue when Sel is 1, otherwise
// OnFalse.
type Mux struct {
	Sel     Expr
	OnTrue  Expr
	OnFalse Expr
}

// NewMux constructs a multiplexer.  The selector must be a single bit and
// both arms must agree on width.
func NewMux(sel Expr, onTrue Expr, onFalse Expr) *Mux {
	if sel.Width() != 1 {
		widthFailure("mux selector has width %d", sel.Width())
	} else if onTrue.Width() != onFalse.Width() {
		widthFailure("mux arms have widths %d and %d", onTrue.Width(), onFalse.Width())
	}

	return &Mux{sel, onTrue, onFalse}
}

// Width returns the bit width of this expression.
func (e *Mux) Width() uint { return e.OnTrue.Width() }

func (e *Mux) String() string {
	return fmt.Sprintf("(mux %s %s %s)", e.Sel, e.OnTrue, e.OnFalse)
}

// Reg represents a register with a reset value.  The register is sequential
// state; the combinational interpreter rejects it.
type Reg struct {
	Init bitvec.Word
	Next Expr
}

// NewReg constructs a register, checking the reset value and next-state
// expression agree on width.
func NewReg(init bitvec.Word, next Expr) *Reg {
	if init.Width() != next.Width() {
		widthFailure("register reset has width %d, next state has width %d", init.Width(), next.Width())
	}

	return &Reg{init, next}
}

// Width returns the bit width of this expression.
func (e *Reg) Width() uint { return e.Init.Width() }

func (e *Reg) String() string { return fmt.Sprintf("(reg %s %s)", e.Init, e.Next) }

func checkUniformWidth(op string, args []Expr) {
	if len(args) == 0 {
		widthFailure("empty %s", op)
	}
	//
	for _, arg := range args {
		if arg.Width() != args[0].Width() {
			widthFailure("%s between %d bits and %d bits", op, args[0].Width(), arg.Width())
		}
	}
}

func naryString(op string, args []Expr) string {
	s := "(" + op
	for _, arg := range args {
		s += " " + arg.String()
	}

	return s + ")"
}
