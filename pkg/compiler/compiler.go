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

// Package compiler wires the arena, Backend Handle, Lowering Driver,
// Parallel Emitter and Linker Invoker into the single entry point the
// CLI and any embedder call (§4, §6).
package compiler

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Luma-Programming-Language/Luma/pkg/arena"
	"github.com/Luma-Programming-Language/Luma/pkg/ast"
	"github.com/Luma-Programming-Language/Luma/pkg/backend"
	"github.com/Luma-Programming-Language/Luma/pkg/driver"
	"github.com/Luma-Programming-Language/Luma/pkg/emitter"
	"github.com/Luma-Programming-Language/Luma/pkg/linker"
	"github.com/Luma-Programming-Language/Luma/pkg/util"
)

// BuildConfig holds every knob the CLI exposes over one compilation
// (§6).
type BuildConfig struct {
	// OutputDir is where object, and optionally .ll/.s, files land.
	OutputDir string
	// ExecutableName is the path of the final linked executable.
	ExecutableName string
	// OptLevel is passed through to the linker (0..3).
	OptLevel int
	// EmitIR keeps each module's intermediate .ll file instead of
	// deleting it after object emission.
	EmitIR bool
	// EmitAsm additionally emits each module's .s assembly listing.
	EmitAsm bool
	// Debug enables module verification before emission (§4.6 step 4).
	Debug bool
	// Defines are `-D key=value` preprocessor-style definitions
	// collected by the CLI. Compile does not read them, and they are
	// not passed to the Lowering Driver or the lowering callback.
	Defines map[string]string
	// SkipLink, when set, stops after object emission - useful for
	// `luma build --emit-ir`-only invocations that never need a
	// linked executable.
	SkipLink bool
}

// Result summarises one successful compilation.
type Result struct {
	ObjectResults []emitter.Result
	Executable    string
	Duration      time.Duration
}

// LowererFactory builds the lowering callback once this Handle (and
// its common-types cache) exists. Taking a factory rather than a bare
// Lowerer lets a caller-supplied lowerer reach the same Handle
// Compile itself constructs, instead of needing one passed in from
// outside.
type LowererFactory func(*backend.Handle) driver.Lowerer

// Compile runs the full pipeline over program: create/link/lower
// (Lowering Driver, §4.5), parallel object emission (§4.6), and
// linking (§4.7), in that order. newLowerer supplies the translation
// semantics for every non-`use` declaration; the core itself only
// drives ordering, symbol visibility, and caching.
func Compile(program *ast.Program, newLowerer LowererFactory, cfg BuildConfig) (*Result, error) {
	start := time.Now()
	stats := util.NewPerfStats()

	a := arena.New()
	defer a.Teardown()

	handle := backend.New()
	defer handle.Shutdown()

	d := driver.New(handle, newLowerer(handle))
	a.Keep(d.Registry)

	if err := d.Run(program); err != nil {
		return nil, &DiagnosticError{Err: err}
	}

	log.Infof("lowered %d module(s)", d.Registry.Len())

	objResults, err := emitObjects(d, cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{ObjectResults: objResults, Duration: time.Since(start)}

	if cfg.SkipLink {
		stats.Log("compilation")
		return result, nil
	}

	if err := linkExecutable(objResults, cfg); err != nil {
		return nil, err
	}

	result.Executable = cfg.ExecutableName
	result.Duration = time.Since(start)

	stats.Log("compilation")

	return result, nil
}

func emitObjects(d *driver.Driver, cfg BuildConfig) ([]emitter.Result, error) {
	e := emitter.New(d.Registry)

	results, err := e.Run(emitter.Options{
		OutputDir: cfg.OutputDir,
		Debug:     cfg.Debug,
		EmitIR:    cfg.EmitIR,
		EmitAsm:   cfg.EmitAsm,
	})
	if err != nil {
		var firstErr error

		for _, r := range results {
			if r.Err != nil {
				firstErr = r.Err
				break
			}
		}

		if firstErr == nil {
			// No task failed: the output directory could not be created.
			return results, &SystemError{Op: "creating output directory", Err: err}
		}

		return results, &BackendError{Module: firstFailingModule(results), Err: firstErr}
	}

	return results, nil
}

func firstFailingModule(results []emitter.Result) string {
	for _, r := range results {
		if r.Err != nil {
			return r.Module
		}
	}

	return ""
}

func linkExecutable(objResults []emitter.Result, cfg BuildConfig) error {
	objectPaths := make([]string, 0, len(objResults))

	for _, r := range objResults {
		objectPaths = append(objectPaths, r.ObjectPath)
	}

	executablePath := cfg.ExecutableName

	l := linker.New()

	if err := l.Link(linker.Options{
		ObjectPaths:    objectPaths,
		ExecutableName: executablePath,
		OptLevel:       cfg.OptLevel,
	}); err != nil {
		return &LinkError{Err: err}
	}

	log.Infof("linked %s from %d object file(s)", executablePath, len(objectPaths))

	return nil
}

// DefaultConfig returns a BuildConfig with the defaults described in
// §6: optimisation level 0, no IR/asm retention, linking enabled.
func DefaultConfig(outputDir, executableName string) BuildConfig {
	return BuildConfig{
		OutputDir:      outputDir,
		ExecutableName: executableName,
		OptLevel:       0,
		Defines:        map[string]string{},
	}
}

// ValidateConfig rejects an optimisation level outside the supported
// 0..3 range (§6), returning a SystemError since this is a misuse of
// the API rather than a property of the input program.
func ValidateConfig(cfg BuildConfig) error {
	if cfg.OptLevel < 0 || cfg.OptLevel > 3 {
		return &SystemError{Op: "validating build config", Err: fmt.Errorf("optimisation level %d out of range [0, 3]", cfg.OptLevel)}
	}

	return nil
}
