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

// Package registry implements the Module Registry (§4.1): the ordered
// collection of module compilation units (MCUs).
package registry

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"github.com/Luma-Programming-Language/Luma/pkg/symbols"
)

// MCU is a Module Compilation Unit (§3): the central entity owning
// one backend module, its symbol table, and its main-module flag.
type MCU struct {
	// Name is the module's unique name, stored as passed to CreateMCU;
	// it is not interned in an arena.
	Name string
	// Module is the backend module this MCU populates during the
	// lower pass (§4.5 Pass 3) and consumes during emission (§4.6).
	Module *ir.Module
	// Symbols is this MCU's symbol table, in insertion order.
	Symbols *symbols.Table
	// IsMainModule is true iff Name == "main" (§3 invariant).
	IsMainModule bool
}

// Registry is the Module Registry (§4.1): an ordered collection of
// MCUs, one per module name, that exists for the duration of a single
// compilation.
//
// §9 ("Linked lists as primary collections") recommends an ordered
// dynamic array over the reference's intrusive linked list for
// exactly this collection; that is what order holds here, alongside a
// name index so Find is not a linear scan over large programs.
type Registry struct {
	order   []*MCU
	byName  map[string]*MCU
	current *MCU
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*MCU)}
}

// CreateMCU allocates a new MCU, creates its backing backend module
// with the given name, and appends it to the registry (§4.1). It
// fails if name already exists, preserving the "at most one MCU per
// module name" invariant (§3).
func (r *Registry) CreateMCU(name string) (*MCU, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("duplicate module %q", name)
	}

	module := ir.NewModule()
	module.SourceFilename = name

	mcu := &MCU{
		Name:         name,
		Module:       module,
		Symbols:      symbols.NewTable(),
		IsMainModule: name == "main",
	}

	r.order = append(r.order, mcu)
	r.byName[name] = mcu

	return mcu, nil
}

// FindMCU performs find_mcu(name) (§4.1): an exact lookup by name.
func (r *Registry) FindMCU(name string) (*MCU, bool) {
	mcu, ok := r.byName[name]
	return mcu, ok
}

// SetCurrentMCU changes which MCU subsequent symbol-insertion
// operations target (§4.1).
func (r *Registry) SetCurrentMCU(mcu *MCU) {
	r.current = mcu
}

// Current returns the MCU most recently passed to SetCurrentMCU, or
// nil before the first call.
func (r *Registry) Current() *MCU {
	return r.current
}

// All returns every MCU in registry insertion order. §4.1 notes the
// registry head is the most recently created MCU and that no
// operation depends on this order semantically for name resolution;
// All preserves insertion (oldest-first) order, which is what the
// Dependency Scheduler and Parallel Emitter iterate over.
func (r *Registry) All() []*MCU {
	return r.order
}

// Len reports the number of MCUs currently registered.
func (r *Registry) Len() int {
	return len(r.order)
}

// Other returns every MCU except the one named name, in registry
// order - used by find_symbol_global's "search every other MCU" step
// (§4.2) and by qualified-access resolution (§4.4).
func (r *Registry) Other(name string) []*MCU {
	others := make([]*MCU, 0, len(r.order))

	for _, mcu := range r.order {
		if mcu.Name != name {
			others = append(others, mcu)
		}
	}

	return others
}
