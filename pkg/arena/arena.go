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

// Package arena provides a single bump-allocated region used to hold
// AST nodes and code-generation metadata for the lifetime of one
// compilation. Everything allocated through an Arena is torn down in
// one shot; nothing inside it is freed piecemeal.
package arena

import "sync"

// Arena is a bump allocator. Every method takes an internal mutex, so
// concurrent calls are safe; the driver only allocates from it during
// the single-threaded create/link/lower passes (see pkg/driver), never
// during the parallel emit phase.
type Arena struct {
	mu sync.Mutex
	// interned strings, keyed by value, so repeated module/symbol
	// names share one backing string.
	strings map[string]string
	// opaque objects kept alive for the arena's lifetime. Their
	// concrete types are tracked by the caller; the arena only owns
	// their lifetime.
	objects []any
	torn    bool
}

// New constructs an empty arena.
func New() *Arena {
	return &Arena{strings: make(map[string]string)}
}

// Intern returns a canonical copy of s. Repeated calls with equal
// strings return the identical backing string, so downstream byte
// equality comparisons (module/symbol names, per §4.1 and §4.2) are
// cheap and consistent for the life of the arena.
func (a *Arena) Intern(s string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.torn {
		panic("arena: intern after teardown")
	}

	if existing, ok := a.strings[s]; ok {
		return existing
	}

	a.strings[s] = s

	return s
}

// Keep records an arena-owned object (an MCU record, a struct info,
// an AST node) so it is reachable until teardown. The arena does not
// interpret the object; it exists purely to anchor lifetime.
func (a *Arena) Keep(obj any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.torn {
		panic("arena: keep after teardown")
	}

	a.objects = append(a.objects, obj)
}

// Teardown releases everything held by the arena. After Teardown, any
// further Intern or Keep call panics: a fresh compilation must
// construct a fresh Arena, matching the single-shot lifecycle in §3.
func (a *Arena) Teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.strings = nil
	a.objects = nil
	a.torn = true
}

// Len reports how many objects are currently anchored by the arena.
// Primarily useful for tests and diagnostics.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.objects)
}
