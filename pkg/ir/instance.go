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

// Port is a named connection point of a hardware-module instance.  Input
// ports carry the expression driving them; output ports carry no value (their
// name stands for the signal the primitive produces).
type Port struct {
	Name      string
	Direction Direction
	Width     uint
	Value     Expr
}

// Param is a named compile-time parameter of a hardware-module instance.
// Its value must reduce to a bit-vector constant once all symbolic holes have
// been assigned.
type Param struct {
	Name  string
	Value Expr
}

// Instance represents the instantiation of an architecture-specific hardware
// primitive, e.g. a LUT4 or a CARRY8.
type Instance struct {
	// Module is the primitive's module name.
	Module string
	// Filepath identifies the source file defining the primitive.
	Filepath string
	// Ports in declaration order.
	Ports []Port
	// Params in declaration order.
	Params []Param
}

// NewInstance constructs a hardware-module instance, checking that every
// input port is driven by an expression of its declared width.
func NewInstance(module string, filepath string, ports []Port, params []Param) *Instance {
	for _, port := range ports {
		if port.Direction == Input {
			if port.Value == nil {
				panic(fmt.Sprintf("input port %s of %s is undriven", port.Name, module))
			} else if port.Value.Width() != port.Width {
				widthFailure("port %s of %s declared %d bits, driven by %d bits",
					port.Name, module, port.Width, port.Value.Width())
			}
		}
	}

	return &Instance{module, filepath, ports, params}
}

// Output returns the output port with a given name, if any.
func (e *Instance) Output(name string) (Port, bool) {
	for _, port := range e.Ports {
		if port.Direction == Output && port.Name == name {
			return port, true
		}
	}

	return Port{}, false
}

// Width panics, since a module instance has no single bit width.
func (e *Instance) Width() uint {
	panic(fmt.Sprintf("instance of %s has no bit width", e.Module))
}

func (e *Instance) String() string {
	var builder strings.Builder
	//
	fmt.Fprintf(&builder, "(inst %s", e.Module)
	//
	for _, port := range e.Ports {
		if port.Direction == Input {
			fmt.Fprintf(&builder, " (%s %s)", port.Name, port.Value)
		} else {
			fmt.Fprintf(&builder, " (%s out)", port.Name)
		}
	}
	//
	for _, param := range e.Params {
		fmt.Fprintf(&builder, " (param %s %s)", param.Name, param.Value)
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
