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
package bitvec

import "fmt"

// MaxWidth is the widest value representable.  The widest programmable state
// shipped by any architecture description is a LUT6 truth table (64 bits).
const MaxWidth = 64

// Word is a fixed-width unsigned bit-vector value.  The width is part of the
// type: two words of different widths are never equal, and operations over
// words of mismatched widths fail eagerly.
type Word struct {
	value uint64
	width uint
}

// New constructs a word of the given width, or fails if the width is out of
// range or the value does not fit.
func New(value uint64, width uint) (Word, error) {
	if width == 0 || width > MaxWidth {
		return Word{}, fmt.Errorf("invalid bit-vector width %d", width)
	}

	if width < MaxWidth && value>>width != 0 {
		return Word{}, fmt.Errorf("value %d does not fit in %d bits", value, width)
	}

	return Word{value, width}, nil
}

// Must is like New, but panics on failure.  Intended for literals whose
// validity is statically evident.
func Must(value uint64, width uint) Word {
	word, err := New(value, width)
	if err != nil {
		panic(err)
	}

	return word
}

// Zero constructs the all-zeros word of a given width.
func Zero(width uint) Word {
	return Must(0, width)
}

// Uint64 returns the value held by this word.
func (w Word) Uint64() uint64 { return w.value }

// Width returns the width of this word in bits.
func (w Word) Width() uint { return w.width }

// Bit returns the ith bit of this word, where bit 0 is least significant.
func (w Word) Bit(i uint) bool {
	if i >= w.width {
		panic(fmt.Sprintf("bit %d out of range for width %d", i, w.width))
	}

	return (w.value>>i)&1 == 1
}

// Extract returns bits [hi:lo] of this word as a word of width hi-lo+1.
func (w Word) Extract(hi uint, lo uint) (Word, error) {
	if lo > hi || hi >= w.width {
		return Word{}, fmt.Errorf("extract [%d:%d] out of range for width %d", hi, lo, w.width)
	}

	return New((w.value>>lo)&mask(hi-lo+1), hi-lo+1)
}

// Concat returns the concatenation of this word (most significant) with
// another word (least significant).
func (w Word) Concat(lo Word) (Word, error) {
	if w.width+lo.width > MaxWidth {
		return Word{}, fmt.Errorf("concatenation of %d and %d bits exceeds %d bits", w.width, lo.width, MaxWidth)
	}

	return New(w.value<<lo.width|lo.value, w.width+lo.width)
}

// Equals determines whether two words have identical width and value.
func (w Word) Equals(o Word) bool {
	return w.width == o.width && w.value == o.value
}

func (w Word) String() string {
	return fmt.Sprintf("(bv %d %d)", w.value, w.width)
}

// ============================================================================
// Arithmetic & logic
// ============================================================================

// Not returns the bitwise complement of this word.
func (w Word) Not() Word {
	return Word{^w.value & mask(w.width), w.width}
}

// And returns the bitwise conjunction of two words of equal width.
func (w Word) And(o Word) Word { return w.binop(o, w.value&o.value) }

// Or returns the bitwise disjunction of two words of equal width.
func (w Word) Or(o Word) Word { return w.binop(o, w.value|o.value) }

// Xor returns the bitwise exclusive-or of two words of equal width.
func (w Word) Xor(o Word) Word { return w.binop(o, w.value^o.value) }

// Add returns the sum of two words of equal width, modulo 2^width.
func (w Word) Add(o Word) Word { return w.binop(o, w.value+o.value) }

// Sub returns the difference of two words of equal width, modulo 2^width.
func (w Word) Sub(o Word) Word { return w.binop(o, w.value-o.value) }

// Mul returns the product of two words of equal width, modulo 2^width.
func (w Word) Mul(o Word) Word { return w.binop(o, w.value*o.value) }

// Shl returns this word shifted left by the value of another word, which need
// not have the same width.  Shifts of width or more bits yield zero.
func (w Word) Shl(amount Word) Word {
	if amount.value >= uint64(w.width) {
		return Word{0, w.width}
	}

	return Word{(w.value << amount.value) & mask(w.width), w.width}
}

// Lshr returns this word logically shifted right by the value of another
// word.  Shifts of width or more bits yield zero.
func (w Word) Lshr(amount Word) Word {
	if amount.value >= uint64(w.width) {
		return Word{0, w.width}
	}

	return Word{w.value >> amount.value, w.width}
}

// Ashr returns this word arithmetically shifted right by the value of
// another word, replicating the most significant bit.
func (w Word) Ashr(amount Word) Word {
	sign := w.Bit(w.width - 1)
	//
	n := amount.value
	if n >= uint64(w.width) {
		n = uint64(w.width)
	}
	//
	result := w.value >> n
	if sign {
		result |= mask(w.width) &^ mask(w.width-uint(n))
	}

	return Word{result, w.width}
}

// ZeroExtend returns this word widened to the given width with zero bits.
func (w Word) ZeroExtend(width uint) (Word, error) {
	if width < w.width {
		return Word{}, fmt.Errorf("cannot extend %d bits to %d bits", w.width, width)
	}

	return New(w.value, width)
}

// DupExtend returns this word widened to the given width by replicating its
// most significant bit.
func (w Word) DupExtend(width uint) (Word, error) {
	if width < w.width {
		return Word{}, fmt.Errorf("cannot extend %d bits to %d bits", w.width, width)
	} else if width > MaxWidth {
		return Word{}, fmt.Errorf("invalid bit-vector width %d", width)
	}
	//
	value := w.value
	if w.Bit(w.width - 1) {
		value |= mask(width) &^ mask(w.width)
	}

	return Word{value, width}, nil
}

func (w Word) binop(o Word, value uint64) Word {
	if w.width != o.width {
		panic(fmt.Sprintf("width mismatch (%d vs %d)", w.width, o.width))
	}

	return Word{value & mask(w.width), w.width}
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return 1<<width - 1
}
