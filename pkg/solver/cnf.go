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
package solver

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/fabriclab/go-techmap/pkg/bitvec"
	"github.com/fabriclab/go-techmap/pkg/interp"
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// Vec renders a bit-vector value as CNF literals, least significant first.
type Vec []z.Lit

// builder constructs CNF alongside a SAT instance via Tseitin encoding.  It
// implements the evaluation domain, so netlist expressions and abstract
// specifications bit-blast through the ordinary evaluator.
type builder struct {
	sat  *gini.Gini
	vars uint32
	tru  z.Lit
	// Variable indices carrying symbolic-hole bits.
	holes *bitset.BitSet
	// Variable indices carrying free-variable bits.
	frees *bitset.BitSet
}

var _ interp.Domain[Vec] = (*builder)(nil)

func newBuilder() *builder {
	b := &builder{sat: gini.New(), holes: bitset.New(64), frees: bitset.New(64)}
	// Dedicated constant-true variable.
	b.tru = b.fresh()
	b.clause(b.tru)
	//
	return b
}

func (b *builder) fresh() z.Lit {
	b.vars++
	return z.Var(b.vars).Pos()
}

func (b *builder) fals() z.Lit { return b.tru.Not() }

func (b *builder) clause(lits ...z.Lit) {
	for _, lit := range lits {
		b.sat.Add(lit)
	}
	//
	b.sat.Add(z.LitNull)
}

// freshVec allocates fresh variables for a width-wide value, marking their
// indices in the given ownership set.
func (b *builder) freshVec(width uint, owner *bitset.BitSet) Vec {
	v := make(Vec, width)
	//
	for i := range v {
		v[i] = b.fresh()
		owner.Set(uint(v[i].Var()))
	}
	//
	return v
}

// value reads a solved vector back as a word, checking ownership.
func (b *builder) value(v Vec, owner *bitset.BitSet) bitvec.Word {
	var bits uint64
	//
	for i, lit := range v {
		if !owner.Test(uint(lit.Var())) {
			panic("reading a vector the solver does not own")
		}
		//
		if b.sat.Value(lit) {
			bits |= 1 << i
		}
	}
	//
	return bitvec.Must(bits, uint(len(v)))
}

// ============================================================================
// Gates
// ============================================================================

func (b *builder) andLit(x z.Lit, y z.Lit) z.Lit {
	switch {
	case x == b.fals() || y == b.fals():
		return b.fals()
	case x == b.tru:
		return y
	case y == b.tru:
		return x
	case x == y:
		return x
	case x == y.Not():
		return b.fals()
	}
	//
	o := b.fresh()
	b.clause(o.Not(), x)
	b.clause(o.Not(), y)
	b.clause(o, x.Not(), y.Not())
	//
	return o
}

func (b *builder) orLit(x z.Lit, y z.Lit) z.Lit {
	return b.andLit(x.Not(), y.Not()).Not()
}

func (b *builder) xorLit(x z.Lit, y z.Lit) z.Lit {
	switch {
	case x == b.fals():
		return y
	case x == b.tru:
		return y.Not()
	case y == b.fals():
		return x
	case y == b.tru:
		return x.Not()
	case x == y:
		return b.fals()
	case x == y.Not():
		return b.tru
	}
	//
	o := b.fresh()
	b.clause(o.Not(), x, y)
	b.clause(o.Not(), x.Not(), y.Not())
	b.clause(o, x.Not(), y)
	b.clause(o, x, y.Not())
	//
	return o
}

func (b *builder) muxLit(s z.Lit, t z.Lit, f z.Lit) z.Lit {
	switch {
	case s == b.tru:
		return t
	case s == b.fals():
		return f
	case t == f:
		return t
	}
	//
	o := b.fresh()
	b.clause(s.Not(), t.Not(), o)
	b.clause(s.Not(), t, o.Not())
	b.clause(s, f.Not(), o)
	b.clause(s, f, o.Not())
	//
	return o
}

// ============================================================================
// Domain implementation
// ============================================================================

// Const implementation for Domain.
func (b *builder) Const(word bitvec.Word) Vec {
	v := make(Vec, word.Width())
	//
	for i := range v {
		if word.Bit(uint(i)) {
			v[i] = b.tru
		} else {
			v[i] = b.fals()
		}
	}
	//
	return v
}

// Width implementation for Domain.
func (b *builder) Width(v Vec) uint { return uint(len(v)) }

// Extract implementation for Domain.
func (b *builder) Extract(v Vec, hi uint, lo uint) Vec {
	out := make(Vec, hi-lo+1)
	copy(out, v[lo:hi+1])
	//
	return out
}

// Concat implementation for Domain.
func (b *builder) Concat(hi Vec, lo Vec) Vec {
	out := make(Vec, 0, len(hi)+len(lo))
	out = append(out, lo...)
	out = append(out, hi...)
	//
	return out
}

// Not implementation for Domain.
func (b *builder) Not(v Vec) Vec {
	out := make(Vec, len(v))
	//
	for i, lit := range v {
		out[i] = lit.Not()
	}
	//
	return out
}

// And implementation for Domain.
func (b *builder) And(x Vec, y Vec) Vec { return b.zip(x, y, b.andLit) }

// Or implementation for Domain.
func (b *builder) Or(x Vec, y Vec) Vec { return b.zip(x, y, b.orLit) }

// Xor implementation for Domain.
func (b *builder) Xor(x Vec, y Vec) Vec { return b.zip(x, y, b.xorLit) }

// Eq implementation for Domain.
func (b *builder) Eq(x Vec, y Vec) Vec {
	acc := b.tru
	//
	for i := range x {
		acc = b.andLit(acc, b.xorLit(x[i], y[i]).Not())
	}
	//
	return Vec{acc}
}

// Mux implementation for Domain.
func (b *builder) Mux(sel Vec, onTrue Vec, onFalse Vec) Vec {
	out := make(Vec, len(onTrue))
	//
	for i := range out {
		out[i] = b.muxLit(sel[0], onTrue[i], onFalse[i])
	}
	//
	return out
}

// Add implementation for Domain.
func (b *builder) Add(x Vec, y Vec) Vec {
	return b.adder(x, y, b.fals())
}

// Sub implementation for Domain.
func (b *builder) Sub(x Vec, y Vec) Vec {
	return b.adder(x, b.Not(y), b.tru)
}

// adder is a ripple-carry chain with explicit carry-in.
func (b *builder) adder(x Vec, y Vec, carry z.Lit) Vec {
	out := make(Vec, len(x))
	//
	for i := range x {
		partial := b.xorLit(x[i], y[i])
		out[i] = b.xorLit(partial, carry)
		carry = b.orLit(b.andLit(x[i], y[i]), b.andLit(partial, carry))
	}
	//
	return out
}

// Mul implementation for Domain.
func (b *builder) Mul(x Vec, y Vec) Vec {
	width := len(x)
	acc := b.Const(bitvec.Zero(uint(width)))
	//
	for i := 0; i < width; i++ {
		// Partial product of x shifted by i, gated by y[i].
		addend := make(Vec, width)
		//
		for j := 0; j < width; j++ {
			if j < i {
				addend[j] = b.fals()
			} else {
				addend[j] = b.andLit(x[j-i], y[i])
			}
		}
		//
		acc = b.Add(acc, addend)
	}
	//
	return acc
}

// Shl implementation for Domain.
func (b *builder) Shl(x Vec, amount Vec) Vec {
	return b.shifter(x, amount, b.fals(), false)
}

// Lshr implementation for Domain.
func (b *builder) Lshr(x Vec, amount Vec) Vec {
	return b.shifter(x, amount, b.fals(), true)
}

// Ashr implementation for Domain.
func (b *builder) Ashr(x Vec, amount Vec) Vec {
	return b.shifter(x, amount, x[len(x)-1], true)
}

// shifter is a staged barrel shifter.  Amount bits whose weight reaches the
// width force the all-fill result directly, since staged shifting cannot
// represent them.
func (b *builder) shifter(x Vec, amount Vec, fill z.Lit, right bool) Vec {
	var (
		width = uint(len(x))
		cur   = make(Vec, width)
		over  = b.fals()
	)
	//
	copy(cur, x)
	//
	for i := uint(0); i < uint(len(amount)); i++ {
		weight := uint(1) << i
		//
		if weight >= width {
			over = b.orLit(over, amount[i])
			continue
		}
		//
		shifted := make(Vec, width)
		//
		for j := uint(0); j < width; j++ {
			src := j + weight
			if !right {
				src = j - weight
			}
			//
			if right && src < width {
				shifted[j] = cur[src]
			} else if !right && j >= weight {
				shifted[j] = cur[src]
			} else {
				shifted[j] = fill
			}
		}
		//
		cur = b.Mux(Vec{amount[i]}, shifted, cur)
	}
	// Overshift saturates to all-fill.
	fills := make(Vec, width)
	for i := range fills {
		fills[i] = fill
	}
	//
	return b.Mux(Vec{over}, fills, cur)
}

// ZeroExtend implementation for Domain.
func (b *builder) ZeroExtend(v Vec, width uint) Vec {
	out := make(Vec, 0, width)
	out = append(out, v...)
	//
	for uint(len(out)) < width {
		out = append(out, b.fals())
	}
	//
	return out
}

// DupExtend implementation for Domain.
func (b *builder) DupExtend(v Vec, width uint) Vec {
	var (
		out = make(Vec, 0, width)
		msb = v[len(v)-1]
	)
	//
	out = append(out, v...)
	//
	for uint(len(out)) < width {
		out = append(out, msb)
	}
	//
	return out
}

func (b *builder) zip(x Vec, y Vec, op func(z.Lit, z.Lit) z.Lit) Vec {
	out := make(Vec, len(x))
	//
	for i := range x {
		out[i] = op(x[i], y[i])
	}
	//
	return out
}
