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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fabriclab/go-techmap/pkg/iface"
	"github.com/fabriclab/go-techmap/pkg/ir"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load reads an architecture description from a YAML file.  The mutable
// dictionaries produced by the parser are normalised into the immutable
// Description form before use, with all load-time validation applied.
func Load(path string) (*Description, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	//
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	//
	description, err := Parse(name, bytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	//
	log.Debugf("loaded architecture %s (%d implementations)", name, len(description.Implementations()))
	//
	return description, nil
}

// Parse reads an architecture description from YAML source.
func Parse(name string, bytes []byte) (*Description, error) {
	var raw rawDescription
	//
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return nil, err
	} else if len(raw.Implementations) == 0 {
		return nil, fmt.Errorf("missing implementations")
	}
	//
	impls := make([]*Implementation, len(raw.Implementations))
	//
	for i, rawImpl := range raw.Implementations {
		impl, err := normalise(&rawImpl)
		if err != nil {
			return nil, fmt.Errorf("implementation %d: %v", i, err)
		}
		//
		impls[i] = impl
	}
	//
	return NewDescription(name, impls)
}

// ============================================================================
// Raw (parser-side) form
// ============================================================================

type rawDescription struct {
	Implementations []rawImplementation `yaml:"implementations"`
}

type rawImplementation struct {
	Interface *rawInterface `yaml:"interface"`
	Modules   []rawModule   `yaml:"modules"`
	// Ordered name -> width mapping; order determines internal-data shape.
	InternalData yaml.Node `yaml:"internal_data"`
	// Ordered interface-output -> wiring-term mapping.
	Outputs yaml.Node `yaml:"outputs"`
}

type rawInterface struct {
	Name       string          `yaml:"name"`
	Parameters map[string]uint `yaml:"parameters"`
}

type rawModule struct {
	ModuleName           string     `yaml:"module_name"`
	Ports                []rawPort  `yaml:"ports"`
	Parameters           []rawParam `yaml:"parameters"`
	Filepath             string     `yaml:"filepath"`
	RacketImportFilepath string     `yaml:"racket_import_filepath"`
}

type rawPort struct {
	Name      string `yaml:"name"`
	Value     string `yaml:"value"`
	Direction string `yaml:"direction"`
	Bitwidth  uint   `yaml:"bitwidth"`
}

type rawParam struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ============================================================================
// Normalisation
// ============================================================================

func normalise(raw *rawImplementation) (*Implementation, error) {
	if raw.Interface == nil {
		return nil, fmt.Errorf("missing interface")
	} else if len(raw.Modules) == 0 {
		return nil, fmt.Errorf("missing modules")
	} else if len(raw.Modules) != 1 {
		return nil, fmt.Errorf("exactly one module per implementation is supported (found %d)", len(raw.Modules))
	} else if raw.Outputs.IsZero() {
		return nil, fmt.Errorf("missing outputs")
	}
	//
	id := iface.NewId(iface.Kind(raw.Interface.Name), raw.Interface.Parameters)
	//
	module, err := normaliseModule(&raw.Modules[0])
	if err != nil {
		return nil, err
	}
	//
	internal, err := normaliseInternal(&raw.InternalData)
	if err != nil {
		return nil, fmt.Errorf("internal_data: %v", err)
	}
	//
	outputs, err := normaliseOutputs(&raw.Outputs)
	if err != nil {
		return nil, fmt.Errorf("outputs: %v", err)
	}
	//
	return &Implementation{id, *module, internal, outputs}, nil
}

func normaliseModule(raw *rawModule) (*ModuleTemplate, error) {
	if raw.ModuleName == "" {
		return nil, fmt.Errorf("missing module_name")
	}
	//
	ports := make([]TemplatePort, len(raw.Ports))
	//
	for i, rawPort := range raw.Ports {
		direction, err := parseDirection(rawPort.Direction)
		if err != nil {
			return nil, fmt.Errorf("port %s: %v", rawPort.Name, err)
		}
		//
		port := TemplatePort{rawPort.Name, direction, rawPort.Bitwidth, nil}
		// Outputs keep their symbolic name; inputs carry a wiring term.
		if direction == ir.Input {
			term, err := ParseTerm(rawPort.Value)
			if err != nil {
				return nil, err
			}
			//
			port.Value = term
		}
		//
		ports[i] = port
	}
	//
	params := make([]TemplateParam, len(raw.Parameters))
	//
	for i, rawParam := range raw.Parameters {
		term, err := ParseTerm(rawParam.Value)
		if err != nil {
			return nil, err
		}
		//
		params[i] = TemplateParam{rawParam.Name, term}
	}
	//
	return &ModuleTemplate{raw.ModuleName, raw.Filepath, raw.RacketImportFilepath, ports, params}, nil
}

func normaliseInternal(node *yaml.Node) ([]State, error) {
	var states []State
	//
	err := eachMapping(node, func(key string, value *yaml.Node) error {
		width, err := strconv.ParseUint(value.Value, 10, 32)
		if err != nil || width == 0 {
			return fmt.Errorf("invalid width %q for %s", value.Value, key)
		}
		//
		states = append(states, State{key, uint(width)})
		//
		return nil
	})
	//
	return states, err
}

func normaliseOutputs(node *yaml.Node) ([]Output, error) {
	var outputs []Output
	//
	err := eachMapping(node, func(key string, value *yaml.Node) error {
		term, err := ParseTerm(value.Value)
		if err != nil {
			return err
		}
		//
		outputs = append(outputs, Output{key, term})
		//
		return nil
	})
	//
	return outputs, err
}

// eachMapping iterates a YAML mapping node in document order, which Go's
// native map decoding would lose.
func eachMapping(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.IsZero() {
		return nil
	} else if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping")
	}
	//
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	//
	return nil
}

func parseDirection(direction string) (ir.Direction, error) {
	switch direction {
	case "input":
		return ir.Input, nil
	case "output":
		return ir.Output, nil
	}
	//
	return 0, fmt.Errorf("unknown port direction %q", direction)
}
