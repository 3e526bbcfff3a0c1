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
	"strings"
)

// Extract represents the bit-range selection arg[hi:lo], where bit 0 is least
// significant and both bounds are inclusive.
type Extract struct {
	Arg Expr
	Hi  uint
	Lo  uint
}

// NewExtract constructs a bit-range selection, checking bounds eagerly.
func NewExtract(arg Expr, hi uint, lo uint) *Extract {
	if lo > hi || hi >= arg.Width() {
		widthFailure("extract [%d:%d] out of range for width %d", hi, lo, arg.Width())
	}

	return &Extract{arg, hi, lo}
}

// Bit selects a single bit of the given expression.
func Bit(arg Expr, i uint) *Extract {
	return NewExtract(arg, i, i)
}

// Width returns the bit width of this expression.
func (e *Extract) Width() uint { return e.Hi - e.Lo + 1 }

func (e *Extract) String() string {
	return fmt.Sprintf("(extract %d %d %s)", e.Hi, e.Lo, e.Arg)
}

// Concat represents the concatenation of one or more expressions, with the
// first argument most significant.
type Concat struct {
	Args []Expr
}

// NewConcat constructs a concatenation.  At least one argument is required.
func NewConcat(args ...Expr) *Concat {
	if len(args) == 0 {
		widthFailure("empty concatenation")
	}

	return &Concat{args}
}

// Width returns the bit width of this expression.
func (e *Concat) Width() uint {
	var sum uint
	for _, arg := range e.Args {
		sum += arg.Width()
	}

	return sum
}

func (e *Concat) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(concat")
	//
	for _, arg := range e.Args {
		builder.WriteString(" ")
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// ZeroExtend widens an expression to a given width with zero bits.
type ZeroExtend struct {
	Arg Expr
	W   uint
}

// NewZeroExtend constructs a zero extension.  The target width must be at
// least the argument width.
func NewZeroExtend(arg Expr, width uint) *ZeroExtend {
	if width < arg.Width() {
		widthFailure("cannot extend %d bits to %d bits", arg.Width(), width)
	}

	return &ZeroExtend{arg, width}
}

// Width returns the bit width of this expression.
func (e *ZeroExtend) Width() uint { return e.W }

func (e *ZeroExtend) String() string {
	return fmt.Sprintf("(zext %d %s)", e.W, e.Arg)
}

// DupExtend widens an expression to a given width by replicating its most
// significant bit.
type DupExtend struct {
	Arg Expr
	W   uint
}

// NewDupExtend constructs a duplicating extension.  The target width must be
// at least the argument width.
func NewDupExtend(arg Expr, width uint) *DupExtend {
	if width < arg.Width() {
		widthFailure("cannot extend %d bits to %d bits", arg.Width(), width)
	}

	return &DupExtend{arg, width}
}

// Width returns the bit width of this expression.
func (e *DupExtend) Width() uint { return e.W }

func (e *DupExtend) String() string {
	return fmt.Sprintf("(dupext %d %s)", e.W, e.Arg)
}
