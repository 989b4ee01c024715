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

import "github.com/Luma-Programming-Language/Luma/pkg/symbols"

// FindSymbolGlobal implements find_symbol_global(name, optional_module)
// (§4.2, lookup step 2): if module is non-empty, delegate to an
// exact, single-module lookup; otherwise search the current MCU
// first, then every other MCU in registry insertion order. Search
// order is always deterministic by registry insertion order - the
// system never reorders modules for the purpose of name resolution
// (§4.2).
func (r *Registry) FindSymbolGlobal(name, module string) (*symbols.Symbol, *MCU, bool) {
	if module != "" {
		mcu, ok := r.FindMCU(module)
		if !ok {
			return nil, nil, false
		}

		sym, ok := mcu.Symbols.Find(name)

		return sym, mcu, ok
	}

	if r.current != nil {
		if sym, ok := r.current.Symbols.Find(name); ok {
			return sym, r.current, true
		}
	}

	for _, mcu := range r.order {
		if r.current != nil && mcu.Name == r.current.Name {
			continue
		}

		if sym, ok := mcu.Symbols.Find(name); ok {
			return sym, mcu, true
		}
	}

	return nil, nil, false
}
