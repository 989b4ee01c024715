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

// Package linker implements the Linker Invoker (§4.7): it composes a
// link command from the system C compiler and the produced object
// files, handling the macOS/other platform split.
package linker

import (
	"fmt"
	"os/exec"
	"runtime"

	log "github.com/sirupsen/logrus"
)

// Options configures one link invocation.
type Options struct {
	// ObjectPaths are the object files to link, in any order (object
	// outputs are keyed by module name so filesystem state is order-
	// independent, §5).
	ObjectPaths []string
	// ExecutableName is the path of the produced executable (§6).
	ExecutableName string
	// OptLevel is the requested optimisation level (0..3, §6).
	OptLevel int
}

// command abstracts process execution so tests can assert on the
// composed command line without actually invoking a compiler.
type command interface {
	Run(name string, args []string) error
}

// execCommand is the production command implementation.
type execCommand struct{}

func (execCommand) Run(name string, args []string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return err
	}

	return exec.Command(path, args...).Run()
}

// Linker invokes the system linker over a set of object files (§4.7).
type Linker struct {
	cmd command
	// GOOS is the target OS used to choose the platform branch;
	// overridable in tests, defaults to runtime.GOOS.
	GOOS string
}

// New constructs a Linker that shells out to the real system compiler.
func New() *Linker {
	return &Linker{cmd: execCommand{}, GOOS: runtime.GOOS}
}

// Link composes and runs the link command (§4.7): `cc`, falling back
// to `gcc` if unavailable, with platform-specific flags. On macOS-like
// systems it links position-independent with `-Wl,-dead_strip` and
// strips the result with `strip -x`; elsewhere it links `-pie` by
// default, retrying with `-no-pie` if that fails. A non-zero exit
// status from both attempts is fatal.
func (l *Linker) Link(opts Options) error {
	compiler, err := l.compilerName()
	if err != nil {
		return fmt.Errorf("linking: %w", err)
	}

	if l.GOOS == "darwin" {
		return l.linkDarwin(compiler, opts)
	}

	return l.linkOther(compiler, opts)
}

// compilerName resolves the compile-unit system C compiler: `cc`,
// with `gcc` as a fallback (§4.7).
func (l *Linker) compilerName() (string, error) {
	for _, name := range []string{"cc", "gcc"} {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}

	return "", fmt.Errorf("neither cc nor gcc found on PATH")
}

func (l *Linker) linkDarwin(compiler string, opts Options) error {
	args := append(baseArgs(opts), "-Wl,-dead_strip", "-fPIE", "-pie")

	if err := l.cmd.Run(compiler, args); err != nil {
		return fmt.Errorf("linking %s: %w", opts.ExecutableName, err)
	}

	if err := l.cmd.Run("strip", []string{"-x", opts.ExecutableName}); err != nil {
		return fmt.Errorf("stripping %s: %w", opts.ExecutableName, err)
	}

	return nil
}

func (l *Linker) linkOther(compiler string, opts Options) error {
	args := append(baseArgs(opts), "-pie")

	if err := l.cmd.Run(compiler, args); err == nil {
		return nil
	}

	log.Debugf("link with -pie failed, retrying with -no-pie")

	fallbackArgs := append(baseArgs(opts), "-no-pie")
	if err := l.cmd.Run(compiler, fallbackArgs); err != nil {
		return fmt.Errorf("linking %s: both -pie and -no-pie attempts failed: %w", opts.ExecutableName, err)
	}

	return nil
}

func baseArgs(opts Options) []string {
	args := make([]string, 0, len(opts.ObjectPaths)+4)
	args = append(args, opts.ObjectPaths...)
	args = append(args, fmt.Sprintf("-O%d", opts.OptLevel), "-o", opts.ExecutableName)

	return args
}
