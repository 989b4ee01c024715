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

// Package emitter implements the Parallel Emitter (§4.6): it lowers
// every module's backend module to a native object file concurrently,
// in fixed-size batches joined at each batch boundary.
package emitter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Luma-Programming-Language/Luma/pkg/backend"
	"github.com/Luma-Programming-Language/Luma/pkg/registry"
)

// ThreadsEnvVar is the environment variable that overrides the worker
// count (§4.6 step 2, §6).
const ThreadsEnvVar = "LUMA_COMPILE_THREADS"

// MaxWorkers is the cap on the worker count, regardless of source
// (§5, MAX_COMPILE_THREADS).
const MaxWorkers = 64

// defaultWorkers is the fallback used when neither the environment
// override nor CPU detection yields a usable value (§4.6 step 2).
const defaultWorkers = 4

// Options configures one emission run.
type Options struct {
	// OutputDir is the directory object (and, optionally, .ll/.s)
	// files are written into. Created with mode 0755 if missing.
	OutputDir string
	// Debug enables module verification before emission (§4.6 step 4).
	Debug bool
	// EmitIR additionally writes each module's textual IR to
	// <output_dir>/<module>.ll (§6).
	EmitIR bool
	// EmitAsm additionally writes each module's assembly to
	// <output_dir>/<module>.s (§6).
	EmitAsm bool
}

// Result records the outcome of emitting one module's object file.
type Result struct {
	Module     string
	ObjectPath string
	Err        error
	Duration   time.Duration
}

// Emitter drives §4.6's batched parallel emission over a registry's
// MCUs.
type Emitter struct {
	Registry *registry.Registry
	// emitOneFn performs the actual per-module emission; overridable
	// so tests can exercise the batching/join/failure-propagation
	// logic without invoking a real external object emitter.
	emitOneFn func(mcu *registry.MCU, opts Options) Result
}

// New constructs an Emitter over reg.
func New(reg *registry.Registry) *Emitter {
	e := &Emitter{Registry: reg}
	e.emitOneFn = e.emitOne

	return e
}

// WorkerCount determines the worker count (§4.6 step 2): the
// environment override if present and within [1, MaxWorkers]; else
// the detected CPU count; else defaultWorkers. Capped at
// moduleCount, since there is never a reason to run more workers than
// there are modules to emit.
func WorkerCount(moduleCount int) int {
	workers := defaultWorkers

	if v, ok := os.LookupEnv(ThreadsEnvVar); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= MaxWorkers {
			workers = n
		} else {
			log.Warnf("ignoring invalid %s=%q (must be an integer in [1, %d])", ThreadsEnvVar, v, MaxWorkers)
			workers = runtime.NumCPU()
		}
	} else if n := runtime.NumCPU(); n > 0 {
		workers = n
	}

	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	if moduleCount > 0 && workers > moduleCount {
		workers = moduleCount
	}

	if workers < 1 {
		workers = 1
	}

	return workers
}

// Run emits every MCU's backend module to a native object file (§4.6).
// It ensures the output directory exists, determines the worker
// count, and executes tasks in batches of that size, joining every
// worker in a batch before launching the next. A task failure does
// not stop the run: every remaining batch is still launched and
// joined (so no goroutine is leaked), and only then is an error
// naming the first failing module returned.
func (e *Emitter) Run(opts Options) ([]Result, error) {
	mcus := e.Registry.All()

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %q: %w", opts.OutputDir, err)
	}

	workers := WorkerCount(len(mcus))

	results := make([]Result, 0, len(mcus))

	for start := 0; start < len(mcus); start += workers {
		end := start + workers
		if end > len(mcus) {
			end = len(mcus)
		}

		batch := mcus[start:end]
		batchResults := e.runBatch(batch, opts)
		results = append(results, batchResults...)
	}

	var firstFailure *Result

	for i := range results {
		if results[i].Err != nil {
			firstFailure = &results[i]
			break
		}
	}

	if firstFailure != nil {
		return results, fmt.Errorf("object emission failed for module %q: %w", firstFailure.Module, firstFailure.Err)
	}

	return results, nil
}

// runBatch launches one goroutine per MCU in the batch and joins all
// of them before returning, regardless of whether any of them failed
// (§4.6 step 6: "continue all outstanding joins...to avoid leaking
// threads").
func (e *Emitter) runBatch(batch []*registry.MCU, opts Options) []Result {
	results := make([]Result, len(batch))

	var wg sync.WaitGroup

	for i, mcu := range batch {
		wg.Add(1)

		go func(i int, mcu *registry.MCU) {
			defer wg.Done()

			results[i] = e.emitOneFn(mcu, opts)
		}(i, mcu)
	}

	wg.Wait()

	return results
}

// emitOne creates a fresh target machine for this task (§4.6 step 3:
// "Targets are created per task rather than shared; disposed at task
// end") and emits mcu's object file.
func (e *Emitter) emitOne(mcu *registry.MCU, opts Options) Result {
	start := time.Now()

	target, err := backend.HostTargetMachine()
	if err != nil {
		return Result{Module: mcu.Name, Err: fmt.Errorf("creating target machine: %w", err), Duration: time.Since(start)}
	}
	defer target.Dispose()

	objectPath := filepath.Join(opts.OutputDir, mcu.Name+".o")

	if opts.EmitAsm {
		asmPath := filepath.Join(opts.OutputDir, mcu.Name+".s")
		if err := target.Emit(mcu.Module, asmPath, opts.Debug, opts.EmitIR, true); err != nil {
			return Result{Module: mcu.Name, Err: err, Duration: time.Since(start)}
		}
	}

	if err := target.Emit(mcu.Module, objectPath, opts.Debug, opts.EmitIR, false); err != nil {
		return Result{Module: mcu.Name, ObjectPath: objectPath, Err: err, Duration: time.Since(start)}
	}

	return Result{Module: mcu.Name, ObjectPath: objectPath, Duration: time.Since(start)}
}
