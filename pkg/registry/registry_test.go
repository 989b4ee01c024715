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
package registry

import (
	"testing"

	"github.com/llir/llvm/ir/types"

	"github.com/Luma-Programming-Language/Luma/pkg/symbols"
)

func TestCreateMCUDuplicateFails(t *testing.T) {
	r := New()

	if _, err := r.CreateMCU("main"); err != nil {
		t.Fatalf("unexpected error creating MCU: %v", err)
	}

	if _, err := r.CreateMCU("main"); err == nil {
		t.Fatalf("expected duplicate module name to fail")
	}
}

func TestIsMainModuleFlag(t *testing.T) {
	r := New()

	main, _ := r.CreateMCU("main")
	util, _ := r.CreateMCU("util")

	if !main.IsMainModule {
		t.Errorf("expected module named main to have IsMainModule set")
	}

	if util.IsMainModule {
		t.Errorf("expected module named util to not have IsMainModule set")
	}
}

func TestFindSymbolGlobalPrefersCurrentModule(t *testing.T) {
	r := New()

	util, _ := r.CreateMCU("util")
	main, _ := r.CreateMCU("main")

	shared := symbols.NewSymbol("helper", nil, types.I32, true, true)
	util.Symbols.Insert(shared)

	localShared := symbols.NewSymbol("helper", nil, types.I32, true, true)
	main.Symbols.Insert(localShared)

	r.SetCurrentMCU(main)

	sym, mcu, ok := r.FindSymbolGlobal("helper", "")
	if !ok {
		t.Fatalf("expected to find helper")
	}

	if mcu.Name != "main" || sym != localShared {
		t.Fatalf("expected current-module binding to win, got module %q", mcu.Name)
	}
}

func TestFindSymbolGlobalSearchesOtherModules(t *testing.T) {
	r := New()

	util, _ := r.CreateMCU("util")
	main, _ := r.CreateMCU("main")

	sym := symbols.NewSymbol("add", nil, types.I32, true, true)
	util.Symbols.Insert(sym)

	r.SetCurrentMCU(main)

	got, mcu, ok := r.FindSymbolGlobal("add", "")
	if !ok || got != sym || mcu.Name != "util" {
		t.Fatalf("expected to find add in util, got %v/%v/%v", got, mcu, ok)
	}
}

func TestFindSymbolGlobalWithExplicitModule(t *testing.T) {
	r := New()

	util, _ := r.CreateMCU("util")
	sym := symbols.NewSymbol("add", nil, types.I32, true, true)
	util.Symbols.Insert(sym)

	got, _, ok := r.FindSymbolGlobal("add", "util")
	if !ok || got != sym {
		t.Fatalf("expected explicit-module lookup to find add")
	}

	if _, _, ok := r.FindSymbolGlobal("missing", "util"); ok {
		t.Fatalf("expected missing symbol lookup to fail")
	}
}
