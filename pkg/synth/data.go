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
package synth

import (
	"fmt"
	"strings"

	"github.com/fabriclab/go-techmap/pkg/ir"
)

// Data is the opaque internal-data token threaded through realization and
// sketch generation.  It is an algebraic tree whose leaves carry the fresh
// symbolic values bound to programmable state.  The shape of the tree is a
// deterministic function of the synthesis path taken; a token returned from
// one call may be threaded into a later call taking the same path, in which
// case the same symbolic values are reused and no fresh allocation occurs.
type Data interface {
	// Shape returns a canonical description of this token's tree shape,
	// ignoring the identity of the symbolic values at the leaves.
	Shape() string
}

// Leaf holds the symbolic values bound to one implementation's internal
// state, in schema order.
type Leaf struct {
	States []ir.Expr
}

// Shape implementation for Data.
func (l *Leaf) Shape() string {
	return fmt.Sprintf("L%d", len(l.States))
}

// Tuple groups the tokens of a compound realization, e.g. the (lut0, lut1,
// mux) triple of a Shannon expansion.
type Tuple struct {
	Items []Data
}

// Shape implementation for Data.
func (t *Tuple) Shape() string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i, item := range t.Items {
		if i != 0 {
			builder.WriteString(" ")
		}
		//
		builder.WriteString(item.Shape())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// AsLeaf checks a threaded-in token is a leaf of the expected size.
func AsLeaf(data Data, states int) (*Leaf, error) {
	if leaf, ok := data.(*Leaf); ok && len(leaf.States) == states {
		return leaf, nil
	}

	return nil, fmt.Errorf("internal data shape mismatch (expected leaf of %d, found %s)", states, data.Shape())
}

// AsTuple checks a threaded-in token is a tuple of the expected size,
// returning its items.  A nil token yields nil items, meaning "allocate
// fresh".
func AsTuple(data Data, items int) ([]Data, error) {
	if data == nil {
		return make([]Data, items), nil
	}
	//
	if tuple, ok := data.(*Tuple); ok && len(tuple.Items) == items {
		return tuple.Items, nil
	}
	//
	return nil, fmt.Errorf("internal data shape mismatch (expected tuple of %d, found %s)", items, data.Shape())
}
