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

// Map represents a hash-map literal binding names to expressions.  Key order
// is part of the structure (maps are immutable once built).
type Map struct {
	Keys []string
	Vals []Expr
}

// NewMap constructs a map literal from parallel key/value slices.
func NewMap(keys []string, vals []Expr) *Map {
	if len(keys) != len(vals) {
		panic(fmt.Sprintf("map literal has %d keys but %d values", len(keys), len(vals)))
	}

	return &Map{keys, vals}
}

// Get returns the expression bound to a given key, if any.
func (e *Map) Get(key string) (Expr, bool) {
	for i, k := range e.Keys {
		if k == key {
			return e.Vals[i], true
		}
	}

	return nil, false
}

// Width panics, since a map literal has no single bit width.
func (e *Map) Width() uint {
	panic("map literal has no bit width")
}

func (e *Map) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(map")
	//
	for i, k := range e.Keys {
		fmt.Fprintf(&builder, " (%s %s)", k, e.Vals[i])
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// MapRef represents a hash-map lookup.  The source must be a map literal
// containing the key, or a hardware-module instance with an output port of
// that name; either way the width is resolved at construction time.
type MapRef struct {
	Src Expr
	Key string
	w   uint
}

// NewMapRef constructs a map lookup, failing eagerly if the key cannot be
// resolved against the source.
func NewMapRef(src Expr, key string) *MapRef {
	switch src := src.(type) {
	case *Map:
		if val, ok := src.Get(key); ok {
			return &MapRef{src, key, val.Width()}
		}
	case *Instance:
		if port, ok := src.Output(key); ok {
			return &MapRef{src, key, port.Width}
		}
	default:
		panic(fmt.Sprintf("map lookup on %s", src))
	}
	//
	panic(fmt.Sprintf("map lookup of unbound key %s", key))
}

// Width returns the bit width of this expression.
func (e *MapRef) Width() uint { return e.w }

func (e *MapRef) String() string { return fmt.Sprintf("(map-ref %s %s)", e.Src, e.Key) }

// List represents a list literal of zero or more expressions.
type List struct {
	Elems []Expr
}

// NewList constructs a list literal.
func NewList(elems ...Expr) *List {
	return &List{elems}
}

// Width panics, since a list literal has no single bit width.
func (e *List) Width() uint {
	panic("list literal has no bit width")
}

func (e *List) String() string { return naryString("list", e.Elems) }

// ListRef represents indexing into a list literal with a constant index.
type ListRef struct {
	Src   *List
	Index uint
}

// NewListRef constructs a list index, failing eagerly if out of bounds.
func NewListRef(src *List, index uint) *ListRef {
	if index >= uint(len(src.Elems)) {
		panic(fmt.Sprintf("list index %d out of bounds (%d elements)", index, len(src.Elems)))
	}

	return &ListRef{src, index}
}

// Width returns the bit width of this expression.
func (e *ListRef) Width() uint { return e.Src.Elems[e.Index].Width() }

func (e *ListRef) String() string { return fmt.Sprintf("(list-ref %s %d)", e.Src, e.Index) }
