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
package driver

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Luma-Programming-Language/Luma/pkg/ast"
	"github.com/Luma-Programming-Language/Luma/pkg/backend"
	"github.com/Luma-Programming-Language/Luma/pkg/registry"
	"github.com/Luma-Programming-Language/Luma/pkg/resolver"
	"github.com/Luma-Programming-Language/Luma/pkg/scheduler"
	"github.com/Luma-Programming-Language/Luma/pkg/symbols"
)

// Driver runs the three deterministic passes over a program's modules
// described in §4.5: create, link, lower.
type Driver struct {
	Handle   *backend.Handle
	Registry *registry.Registry
	Caches   *symbols.Caches
	Resolver *resolver.Resolver
	Lowerer  Lowerer
}

// New constructs a Driver wired to a fresh registry and caches over
// the given handle and lowering callback.
func New(handle *backend.Handle, lowerer Lowerer) *Driver {
	reg := registry.New()
	caches := symbols.NewCaches()

	return &Driver{
		Handle:   handle,
		Registry: reg,
		Caches:   caches,
		Resolver: resolver.New(handle, reg, caches),
		Lowerer:  lowerer,
	}
}

// Run executes Pass 1 (create), Pass 2 (link) and Pass 3 (lower) over
// program, in that order, aborting at the first fatal error (§4.5,
// §7).
func (d *Driver) Run(program *ast.Program) error {
	if err := d.createPass(program); err != nil {
		return err
	}

	if err := d.linkPass(program); err != nil {
		return err
	}

	// Populate the symbol and struct caches - the precondition for
	// fast lookups during lowering (§4.5, between Pass 2 and Pass 3).
	d.warmCaches()

	return d.lowerPass(program)
}

// createPass is Pass 1 (§4.5): for each module AST node, create an
// MCU. Duplicate module names are fatal.
func (d *Driver) createPass(program *ast.Program) error {
	for _, mod := range program.Modules {
		if _, err := d.Registry.CreateMCU(mod.Name); err != nil {
			return fmt.Errorf("pass 1 (create): %w", err)
		}
	}

	return nil
}

// linkPass is Pass 2 (§4.5): for each module, for each `use`
// directive, import the referenced module's symbols. Unknown
// referenced modules are fatal; self-imports emit a warning and are
// skipped.
func (d *Driver) linkPass(program *ast.Program) error {
	for _, mod := range program.Modules {
		current, ok := d.Registry.FindMCU(mod.Name)
		if !ok {
			return fmt.Errorf("pass 2 (link): internal error: module %q missing after create pass", mod.Name)
		}

		d.Registry.SetCurrentMCU(current)

		for _, stmt := range mod.Body {
			use, ok := stmt.(*ast.Use)
			if !ok {
				continue
			}

			if use.Module == mod.Name {
				resolver.WarnSelfImport(mod.Name)
				continue
			}

			source, ok := d.Registry.FindMCU(use.Module)
			if !ok {
				return fmt.Errorf("pass 2 (link): module %q uses unknown module %q", mod.Name, use.Module)
			}

			if err := d.Resolver.ImportModuleSymbols(current, source, use.Alias); err != nil {
				return fmt.Errorf("pass 2 (link): %w", err)
			}
		}
	}

	return nil
}

// warmCaches populates the process-wide symbol and struct caches from
// every MCU's symbol table and every struct info registered with the
// handle so far (§4.5, §3).
func (d *Driver) warmCaches() {
	for _, mcu := range d.Registry.All() {
		for _, sym := range mcu.Symbols.All() {
			d.Caches.PutSymbol(mcu.Name, sym)
		}
	}

	for _, si := range d.Handle.Structs {
		d.Caches.PutStruct(si)
	}
}

// lowerPass is Pass 3 (§4.5): build dependency records, then for each
// module in program order invoke the Dependency Scheduler, which
// recursively ensures dependencies are lowered first. Lowering visits
// each non-`use` statement and dispatches it to the Lowerer.
func (d *Driver) lowerPass(program *ast.Program) error {
	records := scheduler.BuildRecords(program)
	sched := scheduler.New(records)

	byName := make(map[string]*ast.Module, len(program.Modules))
	for _, mod := range program.Modules {
		byName[mod.Name] = mod
	}

	return sched.Run(func(name string) error {
		mod, ok := byName[name]
		if !ok {
			return fmt.Errorf("pass 3 (lower): internal error: no AST for module %q", name)
		}

		mcu, ok := d.Registry.FindMCU(name)
		if !ok {
			return fmt.Errorf("pass 3 (lower): internal error: no MCU for module %q", name)
		}

		d.Registry.SetCurrentMCU(mcu)
		d.Handle.SetCurrentModule(mcu.Module)

		var errs []error

		for _, stmt := range mod.Body {
			decl, ok := stmt.(*ast.Decl)
			if !ok {
				// `use` directives were already handled in Pass 2.
				continue
			}

			if err := d.Lowerer.LowerDeclaration(mcu, decl); err != nil {
				errs = append(errs, fmt.Errorf("module %q: %w", name, err))
			}
		}

		if len(errs) > 0 {
			return errors.Join(errs...)
		}

		log.Debugf("lowered module %q (%d declarations)", name, len(mod.Body))

		return nil
	})
}
