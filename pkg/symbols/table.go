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

// Table is the ordered list of symbols owned by one MCU, in insertion
// order (§4.2). §9 ("Linked lists as primary collections") recommends
// an ordered dynamic array over the reference's intrusive linked
// list; this is that array, plus a name index for O(1) exact lookup.
type Table struct {
	order []*Symbol
	byName map[string]*Symbol
}

// NewTable constructs an empty symbol table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Symbol)}
}

// Insert adds sym to the table. Re-inserting a name already present
// overwrites the existing binding, matching the reference's "duplicate
// imports are no-ops" rule being enforced by the caller (§4.4) rather
// than by the table itself.
func (t *Table) Insert(sym *Symbol) {
	if old, exists := t.byName[sym.Name]; exists {
		for i, s := range t.order {
			if s == old {
				t.order[i] = sym
				break
			}
		}
	} else {
		t.order = append(t.order, sym)
	}

	t.byName[sym.Name] = sym
}

// Find performs find_symbol_in_module(name): an exact lookup within
// this table (§4.2, step 1).
func (t *Table) Find(name string) (*Symbol, bool) {
	sym, ok := t.byName[name]
	return sym, ok
}

// Has reports whether name is already bound in this table, used by
// the Import/Resolver's duplicate-import no-op rule (§4.4).
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// All returns the symbols in insertion order. Callers must not mutate
// the returned slice.
func (t *Table) All() []*Symbol {
	return t.order
}

// Len reports the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.order)
}
