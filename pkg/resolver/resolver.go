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

// Package resolver implements the Import/Resolver (§4.4): creating
// external declarations on demand, and resolving qualified (A::B,
// A::B::C) access across module boundaries.
package resolver

import (
	"fmt"

	"github.com/llir/llvm/ir/types"
	log "github.com/sirupsen/logrus"

	"github.com/Luma-Programming-Language/Luma/pkg/backend"
	"github.com/Luma-Programming-Language/Luma/pkg/registry"
	"github.com/Luma-Programming-Language/Luma/pkg/symbols"
)

// Resolver ties the Module Registry, the process-wide caches and the
// Backend Handle together to implement §4.4's two public operations.
type Resolver struct {
	handle   *backend.Handle
	registry *registry.Registry
	caches   *symbols.Caches
}

// New constructs a Resolver over the given handle, registry and
// process-wide caches.
func New(handle *backend.Handle, reg *registry.Registry, caches *symbols.Caches) *Resolver {
	return &Resolver{handle: handle, registry: reg, caches: caches}
}

// ResolutionError is a fatal, structural resolution failure (§4.4,
// "Errors from resolution are fatal to the current compilation") that
// names both the qualified and unqualified name, per §4.4's reporting
// requirement.
type ResolutionError struct {
	Qualified   string
	Unqualified string
	Reason      string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s (as %s): %s", e.Qualified, e.Unqualified, e.Reason)
}

// ImportModuleSymbols implements import_module_symbols(source, alias)
// (§4.4): for every symbol in source with external linkage, create a
// matching external declaration in the current MCU's backend module.
// The binding name is "alias.name" when alias is non-empty, else
// "name". Re-importing a name already bound in the current MCU is a
// no-op.
func (r *Resolver) ImportModuleSymbols(current *registry.MCU, source *registry.MCU, alias string) error {
	for _, sym := range source.Symbols.All() {
		if sym.Linkage != symbols.External {
			continue
		}

		bindingName := sym.Name
		if alias != "" {
			bindingName = alias + "." + sym.Name
		}

		if current.Symbols.Has(bindingName) {
			continue
		}

		imported, err := r.declareExternal(current, sym)
		if err != nil {
			return fmt.Errorf("importing %s from %s: %w", sym.Name, source.Name, err)
		}

		imported.Name = bindingName
		current.Symbols.Insert(imported)
		r.caches.PutSymbol(current.Name, imported)
	}

	return nil
}

// declareExternal creates, in current's backend module, an external
// declaration matching src's backend type, and returns a Symbol that
// wraps it, preserving src's calling convention and parameter
// alignments verbatim (§4.4).
func (r *Resolver) declareExternal(current *registry.MCU, src *symbols.Symbol) (*symbols.Symbol, error) {
	if src.IsFunction {
		ft, ok := src.Type.(*types.FuncType)
		if !ok {
			return nil, fmt.Errorf("symbol %q is marked as a function but carries type %T", src.Name, src.Type)
		}

		fn := backend.DeclareFunction(current.Module, src.Name, ft.RetType, ft.Params, src.CallConv, src.ParamAligns)
		imported := symbols.NewSymbol(src.Name, fn, src.Type, true, true)
		imported.CallConv = src.CallConv
		imported.ParamAligns = src.ParamAligns

		return imported, nil
	}

	g := backend.DeclareGlobal(current.Module, src.Name, src.Type)
	imported := symbols.NewSymbol(src.Name, g, src.Type, false, true)
	imported.Element = src.Element

	return imported, nil
}

// ResolveQualified implements the `A::B` member of §4.4's qualified
// resolution. It performs, in order:
//
//  1. If "A.B" is already bound in the current MCU, return it (this is
//     what makes resolving A::f twice idempotent, §8 property 8).
//  2. Otherwise, look module A up; if a function named B exists
//     there, create an external declaration in the current MCU
//     (preserving calling convention), record it under both "B" and
//     "A.B", and return it.
//  3. Otherwise, if a non-function symbol B is found in A, import it
//     as a variable (recorded the same way) and return it; the
//     caller is responsible for emitting the load.
//
// A missing module A, or a missing member B, is a ResolutionError.
func (r *Resolver) ResolveQualified(current *registry.MCU, moduleName, member string) (*symbols.Symbol, error) {
	qualifiedKey := moduleName + "." + member

	if sym, ok := current.Symbols.Find(qualifiedKey); ok {
		return sym, nil
	}

	source, ok := r.registry.FindMCU(moduleName)
	if !ok {
		return nil, &ResolutionError{
			Qualified:   moduleName + "::" + member,
			Unqualified: member,
			Reason:      fmt.Sprintf("unknown module %q", moduleName),
		}
	}

	src, ok := source.Symbols.Find(member)
	if !ok {
		return nil, &ResolutionError{
			Qualified:   moduleName + "::" + member,
			Unqualified: member,
			Reason:      fmt.Sprintf("no symbol %q in module %q", member, moduleName),
		}
	}

	if src.Linkage != symbols.External {
		return nil, &ResolutionError{
			Qualified:   moduleName + "::" + member,
			Unqualified: member,
			Reason:      fmt.Sprintf("symbol %q in module %q is not exported", member, moduleName),
		}
	}

	imported, err := r.declareExternal(current, src)
	if err != nil {
		return nil, &ResolutionError{
			Qualified:   moduleName + "::" + member,
			Unqualified: member,
			Reason:      err.Error(),
		}
	}

	// Record under both the unqualified and the module-qualified name,
	// so a second A::B resolution hits step 1 above instead of
	// creating a second external declaration (§8 property 8).
	plain := *imported
	plain.Name = member
	current.Symbols.Insert(&plain)
	r.caches.PutSymbol(current.Name, &plain)

	imported.Name = qualifiedKey
	current.Symbols.Insert(imported)
	r.caches.PutSymbol(current.Name, imported)

	return imported, nil
}

// ResolveEnumMember implements the `A::B::C` chain (§4.4): it looks
// up the type-qualified name "B.C" inside module A, falling back to a
// search across every module if A does not define it, and returns the
// initializer of the matching enum constant.
func (r *Resolver) ResolveEnumMember(moduleName, enumName, member string) (*symbols.Symbol, error) {
	typeQualified := enumName + "." + member
	qualified := fmt.Sprintf("%s::%s::%s", moduleName, enumName, member)

	if source, ok := r.registry.FindMCU(moduleName); ok {
		if sym, ok := source.Symbols.Find(typeQualified); ok {
			return sym, nil
		}
	}

	for _, mcu := range r.registry.All() {
		if sym, ok := mcu.Symbols.Find(typeQualified); ok {
			return sym, nil
		}
	}

	return nil, &ResolutionError{
		Qualified:   qualified,
		Unqualified: typeQualified,
		Reason:      fmt.Sprintf("no enum constant %q found in module %q or elsewhere", typeQualified, moduleName),
	}
}

// WarnSelfImport logs the non-fatal warning the Lowering Driver emits
// for a `use` of a module importing itself (§4.5 Pass 2, §7).
func WarnSelfImport(module string) {
	log.Warnf("module %q imports itself; skipping", module)
}
