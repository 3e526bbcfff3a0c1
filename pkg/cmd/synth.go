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
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fabriclab/go-techmap/pkg/arch"
	"github.com/fabriclab/go-techmap/pkg/ir"
	"github.com/fabriclab/go-techmap/pkg/sketch"
	"github.com/fabriclab/go-techmap/pkg/solver"
	"github.com/fabriclab/go-techmap/pkg/spec"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var synthCmd = &cobra.Command{
	Use:   "synth [flags] specification",
	Short: "map a bit-vector specification onto an architecture.",
	Long: `Generate a sketch of the requested family over the given architecture, ask
	 the solver to complete it against the specification, and print the resulting
	 model and netlist as JSON.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		var (
			archPath = GetString(cmd, "arch")
			family   = GetString(cmd, "sketch")
			varsFlag = GetString(cmd, "vars")
			width    = GetUint(cmd, "width")
			maxIter  = GetInt(cmd, "max-iterations")
		)
		//
		description, err := arch.Load(archPath)
		if err != nil {
			fail(err)
		}
		//
		names, widths, err := parseVars(varsFlag)
		if err != nil {
			fail(err)
		}
		//
		specification, err := spec.Parse(args[0], widths)
		if err != nil {
			fail(err)
		}
		//
		if width == 0 {
			for _, name := range names {
				width = max(width, widths[name])
			}
		}
		//
		generate, ok := sketch.Lookup(family)
		if !ok {
			fail(fmt.Errorf("unknown sketch family %q (one of %s)",
				family, strings.Join(sketch.Families(), ", ")))
		}
		//
		inputs := make([]ir.Expr, len(names))
		for i, name := range names {
			inputs[i] = ir.NewVar(name, widths[name])
		}
		//
		allocator := ir.NewAllocator()
		//
		generated, _, err := generate(description, inputs, uint(len(inputs)), width, nil, allocator)
		if err != nil {
			fail(err)
		}
		//
		result, err := solver.Synthesize(solver.Query{
			Spec:   specification,
			Sketch: generated,
		}, solver.Options{MaxIterations: maxIter})
		//
		if err != nil {
			fail(err)
		}
		//
		report := synthReport{
			Architecture: description.Name(),
			Sketch:       family,
			Status:       result.Status.String(),
			Iterations:   result.Iterations,
		}
		//
		switch result.Status {
		case solver.StatusSat:
			report.Model = make(map[string]string)
			//
			for _, hole := range ir.Symbols(generated) {
				if word, ok := result.Model.Value(hole.Id()); ok {
					report.Model[hole.String()] = word.String()
				}
			}
			//
			report.Netlist = ir.Substitute(generated, result.Model.Bind).String()
		case solver.StatusUnsat:
			report.Reason = fmt.Sprintf("no mapping found for sketch family %q on architecture %q",
				family, description.Name())
		}
		//
		bytes, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fail(err)
		}
		//
		fmt.Println(string(bytes))
		//
		if result.Status != solver.StatusSat {
			os.Exit(1)
		}
	},
}

type synthReport struct {
	Architecture string            `json:"architecture"`
	Sketch       string            `json:"sketch"`
	Status       string            `json:"status"`
	Iterations   int               `json:"iterations"`
	Reason       string            `json:"reason,omitempty"`
	Model        map[string]string `json:"model,omitempty"`
	Netlist      string            `json:"netlist,omitempty"`
}

// parseVars reads a comma-separated list of name:width declarations.
func parseVars(flag string) ([]string, map[string]uint, error) {
	var (
		names  []string
		widths = make(map[string]uint)
	)
	//
	for _, item := range strings.Split(flag, ",") {
		split := strings.Split(strings.TrimSpace(item), ":")
		if len(split) != 2 {
			return nil, nil, fmt.Errorf("malformed variable declaration %q", item)
		}
		//
		width, err := strconv.ParseUint(split[1], 10, 32)
		if err != nil || width == 0 {
			return nil, nil, fmt.Errorf("malformed width in %q", item)
		}
		//
		names = append(names, split[0])
		widths[split[0]] = uint(width)
	}
	//
	return names, widths, nil
}

func fail(err error) {
	fmt.Printf("error: %s\n", err)
	os.Exit(1)
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(synthCmd)
	synthCmd.Flags().String("arch", "", "architecture description file")
	synthCmd.Flags().String("sketch", "bitwise", "sketch family to generate")
	synthCmd.Flags().String("vars", "", "free variables as name:width, comma separated")
	synthCmd.Flags().Uint("width", 0, "sketch width (defaults to the widest variable)")
	synthCmd.Flags().Int("max-iterations", 0, "bound on cegis iterations")
	synthCmd.MarkFlagRequired("arch")
	synthCmd.MarkFlagRequired("vars")
}
