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
package linker

import (
	"errors"
	"testing"
)

type fakeCommand struct {
	calls [][]string
}

func (f *fakeCommand) Run(name string, args []string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	return nil
}

func TestLinkDarwinStripsAfterSuccessfulLink(t *testing.T) {
	fc := &fakeCommand{}
	l := &Linker{cmd: fc, GOOS: "darwin"}

	err := l.linkDarwin("cc", Options{ObjectPaths: []string{"a.o", "b.o"}, ExecutableName: "out", OptLevel: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fc.calls) != 2 {
		t.Fatalf("expected a link call and a strip call, got %d calls", len(fc.calls))
	}

	link, strip := fc.calls[0], fc.calls[1]

	if !containsArg(link, "-Wl,-dead_strip") || !containsArg(link, "-pie") {
		t.Fatalf("expected darwin link args to include dead-strip and pie, got %v", link)
	}

	if strip[0] != "strip" || !containsArg(strip, "-x") || !containsArg(strip, "out") {
		t.Fatalf("expected a strip -x call naming the executable, got %v", strip)
	}
}

func TestLinkOtherFallsBackToNoPieOnFailure(t *testing.T) {
	fc := &fakeCommand{}

	callCount := 0
	runFn := func(name string, args []string) error {
		callCount++
		fc.calls = append(fc.calls, append([]string{name}, args...))

		if callCount == 1 {
			return errors.New("pie unsupported")
		}

		return nil
	}

	l := &Linker{cmd: runnerFunc(runFn), GOOS: "linux"}

	err := l.linkOther("cc", Options{ObjectPaths: []string{"a.o"}, ExecutableName: "out", OptLevel: 0})
	if err != nil {
		t.Fatalf("expected fallback to -no-pie to succeed, got %v", err)
	}

	if len(fc.calls) != 2 {
		t.Fatalf("expected two attempts (pie then no-pie), got %d", len(fc.calls))
	}

	if !containsArg(fc.calls[0], "-pie") {
		t.Fatalf("expected first attempt to use -pie, got %v", fc.calls[0])
	}

	if !containsArg(fc.calls[1], "-no-pie") {
		t.Fatalf("expected second attempt to use -no-pie, got %v", fc.calls[1])
	}
}

func TestLinkOtherFailsWhenBothAttemptsFail(t *testing.T) {
	l := &Linker{cmd: runnerFunc(func(name string, args []string) error {
		return errors.New("always fails")
	}), GOOS: "linux"}

	err := l.linkOther("cc", Options{ObjectPaths: []string{"a.o"}, ExecutableName: "out"})
	if err == nil {
		t.Fatalf("expected error when both -pie and -no-pie attempts fail")
	}
}

type runnerFunc func(name string, args []string) error

func (f runnerFunc) Run(name string, args []string) error { return f(name, args) }

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}

	return false
}
