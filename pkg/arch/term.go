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
package arch

import (
	"fmt"
	"strings"

	"github.com/fabriclab/go-techmap/pkg/bitvec"
	"github.com/fabriclab/go-techmap/pkg/ir"
	"github.com/fabriclab/go-techmap/pkg/sexp"
)

// Scope resolves symbols appearing in a wiring term to expressions.  During
// realization, symbols resolve first against the caller's port map and then
// against the implementation's internal state.
type Scope func(name string) (ir.Expr, bool)

// WidthScope resolves symbols to declared widths only, for load-time
// validation.
type WidthScope func(name string) (uint, bool)

// Term is a wiring-DSL expression appearing inside an interface
// implementation.  The surface form is a parenthesised prefix language with
// four productions: (bv v w), (bit i e), (concat e ...), and bare symbols.
type Term interface {
	// Resolve this term into an expression under the given scope.
	Resolve(scope Scope) (ir.Expr, error)
	// Width infers the bit width of this term under a scope giving the
	// widths of resolvable symbols.
	Width(scope WidthScope) (uint, error)
	// String returns the surface form of this term.
	String() string
}

// ============================================================================
// Terms
// ============================================================================

// BV is a literal bit-vector wiring term.
type BV struct {
	Value bitvec.Word
}

// Resolve implementation for Term.
func (t *BV) Resolve(scope Scope) (ir.Expr, error) {
	return ir.Const(t.Value), nil
}

// Width implementation for Term.
func (t *BV) Width(scope WidthScope) (uint, error) {
	return t.Value.Width(), nil
}

func (t *BV) String() string { return t.Value.String() }

// Bit is a single-bit projection wiring term.
type Bit struct {
	Index uint
	Arg   Term
}

// Resolve implementation for Term.
func (t *Bit) Resolve(scope Scope) (ir.Expr, error) {
	arg, err := t.Arg.Resolve(scope)
	//
	if err != nil {
		return nil, err
	} else if t.Index >= arg.Width() {
		return nil, fmt.Errorf("bit %d out of range in %s", t.Index, t)
	}

	return ir.Bit(arg, t.Index), nil
}

// Width implementation for Term.
func (t *Bit) Width(scope WidthScope) (uint, error) {
	width, err := t.Arg.Width(scope)
	//
	if err != nil {
		return 0, err
	} else if t.Index >= width {
		return 0, fmt.Errorf("bit %d out of range in %s", t.Index, t)
	}

	return 1, nil
}

func (t *Bit) String() string { return fmt.Sprintf("(bit %d %s)", t.Index, t.Arg) }

// Concat is a concatenation wiring term, first argument most significant.
type Concat struct {
	Args []Term
}

// Resolve implementation for Term.
func (t *Concat) Resolve(scope Scope) (ir.Expr, error) {
	args := make([]ir.Expr, len(t.Args))
	//
	for i, arg := range t.Args {
		expr, err := arg.Resolve(scope)
		if err != nil {
			return nil, err
		}
		//
		args[i] = expr
	}

	return ir.NewConcat(args...), nil
}

// Width implementation for Term.
func (t *Concat) Width(scope WidthScope) (uint, error) {
	var sum uint
	//
	for _, arg := range t.Args {
		width, err := arg.Width(scope)
		if err != nil {
			return 0, err
		}
		//
		sum += width
	}

	return sum, nil
}

func (t *Concat) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(concat")
	//
	for _, arg := range t.Args {
		builder.WriteString(" ")
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// Sym is a symbol reference wiring term.
type Sym struct {
	Name string
}

// Resolve implementation for Term.
func (t *Sym) Resolve(scope Scope) (ir.Expr, error) {
	if expr, ok := scope(t.Name); ok {
		return expr, nil
	}

	return nil, fmt.Errorf("unresolved symbol %q in wiring expression", t.Name)
}

// Width implementation for Term.
func (t *Sym) Width(scope WidthScope) (uint, error) {
	if width, ok := scope(t.Name); ok {
		return width, nil
	}

	return 0, fmt.Errorf("unresolved symbol %q in wiring expression", t.Name)
}

func (t *Sym) String() string { return t.Name }

// ============================================================================
// Parsing
// ============================================================================

// ParseTerm reads a wiring term from its surface form.
func ParseTerm(input string) (Term, error) {
	sExp, err := sexp.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("malformed wiring expression %q: %v", input, err)
	}

	return termOf(sExp)
}

func termOf(sExp sexp.SExp) (Term, error) {
	switch sExp := sExp.(type) {
	case *sexp.Symbol:
		return &Sym{sExp.Value}, nil
	case *sexp.List:
		return listTermOf(sExp)
	}
	//
	return nil, fmt.Errorf("malformed wiring expression %s", sExp)
}

func listTermOf(list *sexp.List) (Term, error) {
	switch {
	case list.MatchSymbols(1, "bv"):
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
		return &BV{word}, nil
	case list.MatchSymbols(1, "bit"):
		if list.Len() != 3 {
			return nil, fmt.Errorf("malformed bit projection %s", list)
		}
		//
		index, ok := asUint(list.Elements[1])
		if !ok {
			return nil, fmt.Errorf("malformed bit projection %s", list)
		}
		//
		arg, err := termOf(list.Elements[2])
		if err != nil {
			return nil, err
		}
		//
		return &Bit{uint(index), arg}, nil
	case list.MatchSymbols(1, "concat"):
		if list.Len() < 2 {
			return nil, fmt.Errorf("empty concatenation %s", list)
		}
		//
		args := make([]Term, list.Len()-1)
		//
		for i, elem := range list.Elements[1:] {
			arg, err := termOf(elem)
			if err != nil {
				return nil, err
			}
			//
			args[i] = arg
		}
		//
		return &Concat{args}, nil
	}
	//
	return nil, fmt.Errorf("unknown wiring form %s", list)
}

func asUint(sExp sexp.SExp) (uint64, bool) {
	if symbol, ok := sExp.(*sexp.Symbol); ok {
		return symbol.AsUint()
	}

	return 0, false
}
