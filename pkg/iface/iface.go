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

// Package iface holds the canonical catalog of abstract hardware interfaces
// (lookup tables, multiplexers, carry chains) behind which architecture
// descriptions hide their concrete primitives.
package iface

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Kind identifies a family of abstract interfaces.
type Kind string

const (
	// LutKind is the family of k-input lookup tables.
	LutKind Kind = "LUT"
	// MuxKind is the family of n-to-1 multiplexers.
	MuxKind Kind = "MUX"
	// CarryKind is the family of w-wide carry chains.
	CarryKind Kind = "carry"
)

// Id identifies an abstract interface: a kind together with its parameters.
// Equality is structural.
type Id struct {
	Kind Kind
	// Params in sorted name order.
	Params []Param
}

// Param is a single named interface parameter.
type Param struct {
	Name  string
	Value uint
}

// NewId constructs an identifier from a kind and a parameters map,
// normalising the parameters into sorted order.
func NewId(kind Kind, params map[string]uint) Id {
	var sorted []Param
	//
	for name, value := range params {
		sorted = append(sorted, Param{name, value})
	}
	//
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	//
	return Id{kind, sorted}
}

// Lut returns the identifier of the k-input lookup table interface.
func Lut(k uint) Id {
	return Id{LutKind, []Param{{"num_inputs", k}}}
}

// Mux2 returns the identifier of the 2-to-1 multiplexer interface.
func Mux2() Id {
	return Id{MuxKind, []Param{{"num_inputs", 2}}}
}

// Carry is the identifier of the w-wide carry-chain interface.
func Carry(w uint) Id {
	return Id{CarryKind, []Param{{"width", w}}}
}

// Param returns the value of a named parameter, if present.
func (id Id) Param(name string) (uint, bool) {
	for _, p := range id.Params {
		if p.Name == name {
			return p.Value, true
		}
	}

	return 0, false
}

// Equals determines whether two identifiers are structurally equal.
func (id Id) Equals(other Id) bool {
	if id.Kind != other.Kind || len(id.Params) != len(other.Params) {
		return false
	}
	//
	for i, p := range id.Params {
		if p != other.Params[i] {
			return false
		}
	}

	return true
}

// Hash returns a 64bit code for this identifier, for use with hashed
// collections.
func (id Id) Hash() uint64 {
	return xxhash.Sum64String(id.String())
}

func (id Id) String() string {
	var builder strings.Builder
	//
	builder.WriteString(string(id.Kind))
	builder.WriteString("[")
	//
	for i, p := range id.Params {
		if i != 0 {
			builder.WriteString(",")
		}
		//
		fmt.Fprintf(&builder, "%s=%d", p.Name, p.Value)
	}
	//
	builder.WriteString("]")
	//
	return builder.String()
}
