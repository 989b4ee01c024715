// Copyright Consensys Software Inc.
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
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Luma-Programming-Language/Luma/pkg/backend"
	"github.com/Luma-Programming-Language/Luma/pkg/compiler"
	"github.com/Luma-Programming-Language/Luma/pkg/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] manifest.json",
	Short: "lower a module manifest to object code and link an executable.",
	Long: `Build reads a type-checked module manifest (the serialized form a
front end hands this core) and drives it through the Module Registry,
Import/Resolver, Lowering Driver, Parallel Emitter and Linker Invoker to
produce a linked executable.`,
	Args: cobra.ExactArgs(1),
	Run:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) {
	program := loadManifest(args[0])

	cfg := compiler.BuildConfig{
		OutputDir:      GetString(cmd, "output-dir"),
		ExecutableName: GetString(cmd, "output"),
		OptLevel:       GetInt(cmd, "opt"),
		EmitIR:         GetFlag(cmd, "emit-ir"),
		EmitAsm:        GetFlag(cmd, "emit-asm"),
		Debug:          GetFlag(cmd, "debug"),
		Defines:        parseDefines(GetStringArray(cmd, "define")),
		SkipLink:       GetFlag(cmd, "no-link"),
	}

	if err := compiler.ValidateConfig(cfg); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	newLowerer := func(handle *backend.Handle) driver.Lowerer {
		return &stubLowerer{handle: handle}
	}

	start := time.Now()
	result, err := compiler.Compile(program, newLowerer, cfg)

	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	printBuildSummary(result, time.Since(start))
}

func printBuildSummary(result *compiler.Result, elapsed time.Duration) {
	log.Infof("build finished in %s", elapsed.Round(time.Millisecond))

	printProgressTable(result.ObjectResults)
	summaryRule()

	if result.Executable != "" {
		fmt.Printf("linked %s\n", result.Executable)
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("output", "o", "a.out", "name of the linked executable")
	buildCmd.Flags().String("output-dir", "build", "directory for object, IR and assembly output")
	buildCmd.Flags().IntP("opt", "O", 0, "optimisation level (0-3) passed to the linker")
	buildCmd.Flags().Bool("emit-ir", false, "keep each module's intermediate .ll file")
	buildCmd.Flags().Bool("emit-asm", false, "additionally emit each module's .s assembly listing")
	buildCmd.Flags().Bool("debug", false, "verify each module before emission")
	buildCmd.Flags().Bool("no-link", false, "stop after object emission, skip linking")
	buildCmd.Flags().StringArrayP("define", "D", []string{}, "define a build metadata attribute (key=value)")
}
