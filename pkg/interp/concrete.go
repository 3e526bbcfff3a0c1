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

import "github.com/fabriclab/go-techmap/pkg/bitvec"

// Concrete is the value domain of plain bit-vector words.
type Concrete struct{}

var _ Domain[bitvec.Word] = Concrete{}

// Const implementation for Domain.
func (Concrete) Const(word bitvec.Word) bitvec.Word { return word }

// Width implementation for Domain.
func (Concrete) Width(v bitvec.Word) uint { return v.Width() }

// Extract implementation for Domain.
func (Concrete) Extract(v bitvec.Word, hi uint, lo uint) bitvec.Word {
	word, err := v.Extract(hi, lo)
	if err != nil {
		panic(err)
	}

	return word
}

// Concat implementation for Domain.
func (Concrete) Concat(hi bitvec.Word, lo bitvec.Word) bitvec.Word {
	word, err := hi.Concat(lo)
	if err != nil {
		panic(err)
	}

	return word
}

// Not implementation for Domain.
func (Concrete) Not(v bitvec.Word) bitvec.Word { return v.Not() }

// And implementation for Domain.
func (Concrete) And(a bitvec.Word, b bitvec.Word) bitvec.Word { return a.And(b) }

// Or implementation for Domain.
func (Concrete) Or(a bitvec.Word, b bitvec.Word) bitvec.Word { return a.Or(b) }

// Xor implementation for Domain.
func (Concrete) Xor(a bitvec.Word, b bitvec.Word) bitvec.Word { return a.Xor(b) }

// Eq implementation for Domain.
func (Concrete) Eq(a bitvec.Word, b bitvec.Word) bitvec.Word {
	if a.Equals(b) {
		return bitvec.Must(1, 1)
	}

	return bitvec.Zero(1)
}

// Mux implementation for Domain.
func (Concrete) Mux(sel bitvec.Word, onTrue bitvec.Word, onFalse bitvec.Word) bitvec.Word {
	if sel.Uint64() == 1 {
		return onTrue
	}

	return onFalse
}

// Add implementation for Domain.
func (Concrete) Add(a bitvec.Word, b bitvec.Word) bitvec.Word { return a.Add(b) }

// Sub implementation for Domain.
func (Concrete) Sub(a bitvec.Word, b bitvec.Word) bitvec.Word { return a.Sub(b) }

// Mul implementation for Domain.
func (Concrete) Mul(a bitvec.Word, b bitvec.Word) bitvec.Word { return a.Mul(b) }

// Shl implementation for Domain.
func (Concrete) Shl(a bitvec.Word, amount bitvec.Word) bitvec.Word { return a.Shl(amount) }

// Lshr implementation for Domain.
func (Concrete) Lshr(a bitvec.Word, amount bitvec.Word) bitvec.Word { return a.Lshr(amount) }

// Ashr implementation for Domain.
func (Concrete) Ashr(a bitvec.Word, amount bitvec.Word) bitvec.Word { return a.Ashr(amount) }

// ZeroExtend implementation for Domain.
func (Concrete) ZeroExtend(v bitvec.Word, width uint) bitvec.Word {
	word, err := v.ZeroExtend(width)
	if err != nil {
		panic(err)
	}

	return word
}

// DupExtend implementation for Domain.
func (Concrete) DupExtend(v bitvec.Word, width uint) bitvec.Word {
	word, err := v.DupExtend(width)
	if err != nil {
		panic(err)
	}

	return word
}
