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
package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/llir/llvm/ir"
)

// RelocModel mirrors the handful of relocation models the Parallel
// Emitter needs (§4.6, "PIC relocation").
type RelocModel string

// CodeModel mirrors the code models the Parallel Emitter needs (§4.6,
// "small code model").
type CodeModel string

const (
	RelocPIC      RelocModel = "pic"
	CodeModelSmall CodeModel = "small"
)

// TargetMachine is a per-task target configuration (§4.6 step 3):
// "Targets are created per task rather than shared; disposed at task
// end." llir/llvm has no native target-machine concept (it only
// builds portable IR), so this models the same contract the LLVM C
// API exposes and hands the configuration to an external `llc`
// invocation for the actual machine-code step (see Emit below).
type TargetMachine struct {
	Triple   string
	CPU      string
	Features string
	Reloc    RelocModel
	Code     CodeModel
}

// HostTargetMachine constructs a target machine for "default triple,
// host CPU, host features, PIC relocation, small code model, no
// optimization" (§4.6 step 3). Host CPU/features detection is a thin
// wrapper since Go's toolchain does not expose llvm's host-feature
// string; "generic"/"" stand in, which is what llc treats as "use a
// safe baseline" when more specific detection is unavailable.
func HostTargetMachine() (*TargetMachine, error) {
	triple, err := defaultTriple()
	if err != nil {
		return nil, fmt.Errorf("creating target machine: %w", err)
	}

	return &TargetMachine{
		Triple: triple,
		CPU:    "generic",
		Reloc:  RelocPIC,
		Code:   CodeModelSmall,
	}, nil
}

// defaultTriple derives an LLVM-style target triple from the host
// GOOS/GOARCH, standing in for llvm::sys::getDefaultTargetTriple().
func defaultTriple() (string, error) {
	var arch string

	switch runtime.GOARCH {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	default:
		return "", fmt.Errorf("unsupported architecture %q", runtime.GOARCH)
	}

	switch runtime.GOOS {
	case "linux":
		return arch + "-unknown-linux-gnu", nil
	case "darwin":
		return arch + "-apple-macosx", nil
	default:
		return "", fmt.Errorf("unsupported operating system %q", runtime.GOOS)
	}
}

// Dispose releases the target machine. Provided for parity with the
// reference's explicit per-task disposal (§4.6 step 3); llir/llvm
// holds no native resources to free.
func (t *TargetMachine) Dispose() {}

// Emit lowers module to a native object file at objectPath, setting
// the module's target triple first (§4.6 step 4); the module's data
// layout is not set. It
// writes the module's textual IR and invokes an external `llc` (or,
// failing that, `clang -c`) to perform the actual machine-code
// generation - see SPEC_FULL.md's DOMAIN STACK note on why object
// emission is modeled as a subprocess boundary rather than an cgo
// call into LLVM.
func (t *TargetMachine) Emit(module *ir.Module, objectPath string, verify bool, keepIR bool, asText bool) error {
	module.TargetTriple = t.Triple

	if verify {
		if err := verifyModule(module); err != nil {
			return fmt.Errorf("module verification failed: %w", err)
		}
	}

	irPath := objectPath[:len(objectPath)-len(filepath.Ext(objectPath))] + ".ll"
	if err := os.WriteFile(irPath, []byte(module.String()), 0o644); err != nil {
		return fmt.Errorf("writing intermediate IR: %w", err)
	}

	if !keepIR {
		defer os.Remove(irPath)
	}

	outputFlag := "-filetype=obj"
	target := objectPath

	if asText {
		outputFlag = "-filetype=asm"
		target = objectPath
	}

	args := []string{
		irPath,
		outputFlag,
		"-mtriple=" + t.Triple,
		"-mcpu=" + t.CPU,
		"-relocation-model=" + string(t.Reloc),
		"-code-model=" + string(t.Code),
		"-O0",
		"-o", target,
	}

	if err := runFirstAvailable(args, "llc", "clang"); err != nil {
		return fmt.Errorf("emitting object for target %s: %w", t.Triple, err)
	}

	return nil
}

// runFirstAvailable runs the first of tools found on PATH with args,
// falling back to the next candidate (clang's `-c` flag substitutes
// for llc when only clang is installed). Extracted so tests can stub
// tool resolution without exec'ing a real toolchain.
var runFirstAvailable = func(args []string, tools ...string) error {
	var lastErr error

	for _, tool := range tools {
		path, err := exec.LookPath(tool)
		if err != nil {
			lastErr = err
			continue
		}

		toolArgs := args
		if tool == "clang" {
			toolArgs = append([]string{"-c"}, args...)
		}

		cmd := exec.Command(path, toolArgs...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		return cmd.Run()
	}

	return fmt.Errorf("none of %v found on PATH: %w", tools, lastErr)
}

// verifyModule performs module-level verification in debug builds
// (§4.6 step 4, §7 "Backend" error class). llir/llvm's ir.Module does
// not expose a standalone verifier; this checks the handful of
// invariants the core itself relies on (no two functions sharing a
// name, every block of every defined function is terminated) as a
// practical stand-in.
func verifyModule(module *ir.Module) error {
	seen := make(map[string]bool, len(module.Funcs))

	for _, fn := range module.Funcs {
		if seen[fn.Name()] {
			return fmt.Errorf("duplicate function %q in module %q", fn.Name(), module.SourceFilename)
		}

		seen[fn.Name()] = true

		if len(fn.Blocks) == 0 {
			continue
		}

		for _, block := range fn.Blocks {
			if block.Term == nil {
				return fmt.Errorf("function %q has unterminated block %v", fn.Name(), block.LocalIdent)
			}
		}
	}

	return nil
}
