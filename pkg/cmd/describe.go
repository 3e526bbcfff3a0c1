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

	"github.com/fabriclab/go-techmap/pkg/arch"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe [flags] architecture_file",
	Short: "list the interface implementations of an architecture.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		description, err := arch.Load(args[0])
		if err != nil {
			fail(err)
		}
		//
		fmt.Printf("architecture %s\n", description.Name())
		//
		for _, impl := range description.Implementations() {
			fmt.Printf("  %s => %s", impl.Id, impl.Module.Name)
			//
			if len(impl.Internal) > 0 {
				fmt.Printf(" (")
				//
				for i, state := range impl.Internal {
					if i != 0 {
						fmt.Printf(", ")
					}
					//
					fmt.Printf("%s:%d", state.Name, state.Width)
				}
				//
				fmt.Printf(")")
			}
			//
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
