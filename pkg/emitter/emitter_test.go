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
package emitter

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Luma-Programming-Language/Luma/pkg/registry"
)

func TestWorkerCountEnvOverride(t *testing.T) {
	t.Setenv(ThreadsEnvVar, "3")

	if got := WorkerCount(10); got != 3 {
		t.Fatalf("expected env override of 3, got %d", got)
	}
}

func TestWorkerCountEnvOutOfRangeFallsBack(t *testing.T) {
	t.Setenv(ThreadsEnvVar, "999")

	got := WorkerCount(10)
	if got < 1 || got > MaxWorkers {
		t.Fatalf("expected fallback worker count within [1, %d], got %d", MaxWorkers, got)
	}
}

func TestWorkerCountCappedAtModuleCount(t *testing.T) {
	t.Setenv(ThreadsEnvVar, "16")

	if got := WorkerCount(2); got != 2 {
		t.Fatalf("expected worker count capped at module count 2, got %d", got)
	}
}

func TestWorkerCountNeverExceedsMax(t *testing.T) {
	t.Setenv(ThreadsEnvVar, "64")

	if got := WorkerCount(1000); got != 64 {
		t.Fatalf("expected worker count capped at %d, got %d", MaxWorkers, got)
	}
}

func newRegistryWithModules(t *testing.T, names ...string) *registry.Registry {
	t.Helper()

	reg := registry.New()

	for _, name := range names {
		if _, err := reg.CreateMCU(name); err != nil {
			t.Fatalf("creating MCU %q: %v", name, err)
		}
	}

	return reg
}

func TestRunCreatesOutputDirectoryAndWritesAllResults(t *testing.T) {
	reg := newRegistryWithModules(t, "a", "b", "c")
	e := New(reg)

	var calls int32

	e.emitOneFn = func(mcu *registry.MCU, opts Options) Result {
		atomic.AddInt32(&calls, 1)
		return Result{Module: mcu.Name, ObjectPath: filepath.Join(opts.OutputDir, mcu.Name+".o")}
	}

	dir := t.TempDir()
	outDir := filepath.Join(dir, "nested", "objs")

	results, err := e.Run(Options{OutputDir: outDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, statErr := os.Stat(outDir); statErr != nil {
		t.Fatalf("expected output directory to be created: %v", statErr)
	}

	if len(results) != 3 || calls != 3 {
		t.Fatalf("expected 3 emitted modules, got %d results / %d calls", len(results), calls)
	}
}

func TestRunSurfacesFirstFailure(t *testing.T) {
	t.Setenv(ThreadsEnvVar, "1")

	reg := newRegistryWithModules(t, "a", "b", "c")
	e := New(reg)

	e.emitOneFn = func(mcu *registry.MCU, opts Options) Result {
		if mcu.Name == "b" {
			return Result{Module: mcu.Name, Err: errors.New("boom")}
		}

		return Result{Module: mcu.Name}
	}

	_, err := e.Run(Options{OutputDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error from failing module b")
	}

	if !containsSubstring(err.Error(), "\"b\"") {
		t.Fatalf("expected error to name module b, got %v", err)
	}
}

func TestRunJoinsAllWorkersEvenOnFailure(t *testing.T) {
	reg := newRegistryWithModules(t, "a", "b", "c", "d")
	e := New(reg)

	var completed int32

	e.emitOneFn = func(mcu *registry.MCU, opts Options) Result {
		defer atomic.AddInt32(&completed, 1)

		if mcu.Name == "a" {
			return Result{Module: mcu.Name, Err: errors.New("boom")}
		}

		return Result{Module: mcu.Name}
	}

	_, _ = e.Run(Options{OutputDir: t.TempDir()})

	if completed != 4 {
		t.Fatalf("expected all 4 tasks to complete despite one failure, got %d", completed)
	}
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}

		return false
	})()
}

