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

// Package scheduler implements the Dependency Scheduler (§4.3): it
// builds a per-module dependency record from `use` directives and
// drives code emission in a safe, acyclic visitation order.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/Luma-Programming-Language/Luma/pkg/ast"
)

// Record is a Module Dependency Record (§3): one per module during an
// emission pass, naming its direct dependencies.
type Record struct {
	Module  string
	Depends []string
}

// CycleError names every module participating in a detected `use`
// cycle (§4.3, §7). This hardens the reference behaviour, which (per
// §9, "Cycle policy ambiguity") only sets its processed-flag after a
// module's body is fully emitted and so would otherwise manifest a
// cycle as unbounded recursion rather than a diagnosable error.
type CycleError struct {
	Modules []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Modules, " -> "))
}

// BuildRecords extracts one dependency Record per module from its
// `use` directives (§4.3 step 1), in program order.
func BuildRecords(program *ast.Program) []Record {
	records := make([]Record, 0, len(program.Modules))

	for _, mod := range program.Modules {
		rec := Record{Module: mod.Name}

		for _, stmt := range mod.Body {
			if use, ok := stmt.(*ast.Use); ok {
				rec.Depends = append(rec.Depends, use.Module)
			}
		}

		records = append(records, rec)
	}

	return records
}

// Visit is the per-module action the scheduler invokes once a
// module's dependencies have all been visited (§4.3 step 2, §4.5 Pass
// 3). It must be idempotent only in the sense that the scheduler
// itself guarantees it is called at most once per module; Visit need
// not re-check that.
type Visit func(module string) error

// Scheduler drives ordered code emission over a set of dependency
// Records (§4.3). Modules at the same depth are visited in program
// order (the order Records were built in) - the "Tie-breaks" rule.
type Scheduler struct {
	byName    map[string]*Record
	order     []string
	indexOf   map[string]uint
	processed *bitset.BitSet
	visiting  *bitset.BitSet
}

// New constructs a Scheduler from a set of dependency records, in
// program order.
func New(records []Record) *Scheduler {
	s := &Scheduler{
		byName:    make(map[string]*Record, len(records)),
		indexOf:   make(map[string]uint, len(records)),
		processed: bitset.New(uint(len(records))),
		visiting:  bitset.New(uint(len(records))),
	}

	for i := range records {
		rec := records[i]
		s.byName[rec.Module] = &rec
		s.indexOf[rec.Module] = uint(i)
		s.order = append(s.order, rec.Module)
	}

	return s
}

// Run visits every module in program order, recursively ensuring each
// module's dependencies are visited first (§4.3 step 2, §4.5 Pass 3:
// "Lower ... Build dependency records, then for each module in
// program order invoke the dependency scheduler, which recursively
// ensures dependencies are lowered first"). A missing dependency is a
// fatal error (§4.3, §7). A self-reentrant module (one reached while
// it is still being visited) is reported as a CycleError naming every
// module on the cycle's path.
func (s *Scheduler) Run(visit Visit) error {
	for _, name := range s.order {
		if err := s.visit(name, nil, visit); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scheduler) visit(name string, path []string, visit Visit) error {
	idx, known := s.indexOf[name]
	if !known {
		return fmt.Errorf("unknown module %q referenced by %s", name, pathTail(path))
	}

	if s.processed.Test(idx) {
		return nil
	}

	if s.visiting.Test(idx) {
		cycle := append(append([]string{}, path...), name)
		return &CycleError{Modules: cycle}
	}

	s.visiting.Set(idx)
	path = append(path, name)

	rec := s.byName[name]
	for _, dep := range rec.Depends {
		if err := s.visit(dep, path, visit); err != nil {
			return err
		}
	}

	if err := visit(name); err != nil {
		return err
	}

	s.visiting.Clear(idx)
	s.processed.Set(idx)

	return nil
}

func pathTail(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}

	return path[len(path)-1]
}
