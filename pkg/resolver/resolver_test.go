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
package resolver

import (
	"testing"

	"github.com/llir/llvm/ir/types"

	"github.com/Luma-Programming-Language/Luma/pkg/backend"
	"github.com/Luma-Programming-Language/Luma/pkg/registry"
	"github.com/Luma-Programming-Language/Luma/pkg/symbols"
)

func setup(t *testing.T) (*Resolver, *registry.Registry, *registry.MCU, *registry.MCU) {
	t.Helper()

	handle := backend.New()
	reg := registry.New()
	caches := symbols.NewCaches()

	util, err := reg.CreateMCU("util")
	if err != nil {
		t.Fatalf("creating util: %v", err)
	}

	main, err := reg.CreateMCU("main")
	if err != nil {
		t.Fatalf("creating main: %v", err)
	}

	reg.SetCurrentMCU(main)

	return New(handle, reg, caches), reg, util, main
}

func addFunc(mcu *registry.MCU, name string, cc symbols.CallConv, aligns []uint64, public bool) *symbols.Symbol {
	sig := types.NewFunc(types.I32, types.I32, types.I32)
	sym := symbols.NewSymbol(name, nil, sig, true, public)
	sym.CallConv = cc
	sym.ParamAligns = aligns
	mcu.Symbols.Insert(sym)

	return sym
}

func TestImportModuleSymbolsSkipsInternal(t *testing.T) {
	r, _, util, main := setup(t)

	addFunc(util, "add", symbols.CallConvC, nil, true)
	addFunc(util, "helper", symbols.CallConvC, nil, false)

	if err := r.ImportModuleSymbols(main, util, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := main.Symbols.Find("add"); !ok {
		t.Fatalf("expected public symbol add to be imported")
	}

	if _, ok := main.Symbols.Find("helper"); ok {
		t.Fatalf("expected internal symbol helper to not be imported")
	}
}

func TestImportModuleSymbolsUsesAlias(t *testing.T) {
	r, _, util, main := setup(t)

	addFunc(util, "add", symbols.CallConvC, nil, true)

	if err := r.ImportModuleSymbols(main, util, "u"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := main.Symbols.Find("u.add"); !ok {
		t.Fatalf("expected alias-qualified binding u.add")
	}

	if _, ok := main.Symbols.Find("add"); ok {
		t.Fatalf("did not expect unaliased binding when alias given")
	}
}

func TestImportModuleSymbolsDuplicateIsNoOp(t *testing.T) {
	r, _, util, main := setup(t)

	addFunc(util, "add", symbols.CallConvC, nil, true)

	existing := symbols.NewSymbol("add", "sentinel", types.I32, false, true)
	main.Symbols.Insert(existing)

	if err := r.ImportModuleSymbols(main, util, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := main.Symbols.Find("add")
	if got.Value != "sentinel" {
		t.Fatalf("expected duplicate import to be a no-op, got %v", got.Value)
	}
}

// TestCallingConventionPropagation verifies §8 property 7: the
// external declaration carries the same calling convention and
// parameter alignment as the source.
func TestCallingConventionPropagation(t *testing.T) {
	r, _, util, main := setup(t)

	addFunc(util, "makePoint", symbols.CallConvFast, []uint64{8, 16}, true)

	sym, err := r.ResolveQualified(main, "util", "makePoint")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sym.CallConv != symbols.CallConvFast {
		t.Fatalf("expected calling convention to propagate, got %v", sym.CallConv)
	}

	if len(sym.ParamAligns) != 2 || sym.ParamAligns[0] != 8 || sym.ParamAligns[1] != 16 {
		t.Fatalf("expected parameter alignments to propagate, got %v", sym.ParamAligns)
	}
}

// TestResolveQualifiedIdempotent verifies §8 property 8: resolving
// A::f twice yields the same backend value and does not create a
// second external declaration.
func TestResolveQualifiedIdempotent(t *testing.T) {
	r, _, util, main := setup(t)

	addFunc(util, "add", symbols.CallConvC, nil, true)

	first, err := r.ResolveQualified(main, "util", "add")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := len(main.Module.Funcs)

	second, err := r.ResolveQualified(main, "util", "add")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Value != second.Value {
		t.Fatalf("expected idempotent resolution to return the same backend value")
	}

	if len(main.Module.Funcs) != before {
		t.Fatalf("expected no new external declaration on second resolution")
	}
}

func TestResolveQualifiedUnknownModule(t *testing.T) {
	r, _, _, main := setup(t)

	if _, err := r.ResolveQualified(main, "ghost", "thing"); err == nil {
		t.Fatalf("expected error resolving qualified access to unknown module")
	}
}

func TestResolveQualifiedPrivateSymbolFails(t *testing.T) {
	r, _, util, main := setup(t)

	addFunc(util, "helper", symbols.CallConvC, nil, false)

	if _, err := r.ResolveQualified(main, "util", "helper"); err == nil {
		t.Fatalf("expected error resolving qualified access to a private symbol")
	}
}

func TestResolveEnumMember(t *testing.T) {
	_, reg, _, main := setup(t)

	color, err := reg.CreateMCU("color")
	if err != nil {
		t.Fatalf("creating color: %v", err)
	}

	green := symbols.NewSymbol("Shade.Green", nil, types.I32, false, true)
	color.Symbols.Insert(green)

	handle := backend.New()
	r := New(handle, reg, symbols.NewCaches())

	sym, err := r.ResolveEnumMember("color", "Shade", "Green")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sym != green {
		t.Fatalf("expected to resolve Shade.Green in module color")
	}

	_ = main
}
