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
package symbols

import (
	"fmt"
	"testing"

	"github.com/llir/llvm/ir/types"
)

// TestCacheMatchesLinearSearch verifies property 4 from §8: for every
// struct and every symbol, a post-warmup cache lookup returns the
// same referent as a linear search of the registry.
func TestCacheMatchesLinearSearch(t *testing.T) {
	caches := NewCaches()

	type moduleSyms struct {
		module string
		table  *Table
	}

	var modules []moduleSyms

	for m := 0; m < 5; m++ {
		module := fmt.Sprintf("mod%d", m)
		table := NewTable()

		for s := 0; s < 10; s++ {
			name := fmt.Sprintf("sym%d", s)
			sym := NewSymbol(name, nil, types.I32, false, true)
			table.Insert(sym)
			caches.PutSymbol(module, sym)
		}

		modules = append(modules, moduleSyms{module, table})
	}

	for _, m := range modules {
		for _, want := range m.table.All() {
			got, ok := caches.LookupSymbol(m.module, want.Name)
			if !ok || got != want {
				t.Fatalf("cache lookup for %s:%s diverged from linear search", m.module, want.Name)
			}
		}
	}
}

func TestFieldToStructFirstWins(t *testing.T) {
	caches := NewCaches()

	first := NewStructInfo("Point", nil)
	first.AddField("x", types.I32, true)

	second := NewStructInfo("Vector", nil)
	second.AddField("x", types.I32, true)

	caches.PutStruct(first)
	caches.PutStruct(second)

	got, ok := caches.LookupStructByField("x")
	if !ok || got.Name != "Point" {
		t.Fatalf("expected field->struct cache to retain first struct, got %v", got)
	}
}

func TestCacheClear(t *testing.T) {
	caches := NewCaches()
	caches.PutSymbol("main", NewSymbol("main", nil, types.I32, true, true))
	caches.Clear()

	if _, ok := caches.LookupSymbol("main", "main"); ok {
		t.Fatalf("expected cache to be empty after Clear")
	}
}
