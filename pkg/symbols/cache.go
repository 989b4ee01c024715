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

import "sync"

// bucketCount is the reference bucket count for the djb2-hashed
// process-wide caches (§4.2).
const bucketCount = 256

// djb2 is the reference hash function: hash = ((hash << 5) + hash) +
// c, reduced modulo the bucket count (§4.2).
func djb2(s string) uint32 {
	var h uint32 = 5381

	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) + uint32(s[i])
	}

	return h % bucketCount
}

// Caches are the process-wide symbol, struct and field->struct caches
// described in §3 ("Process-wide Caches") and §4.5 ("populate the
// symbol and struct caches"). They hold borrowed references into MCUs
// and struct infos; Clear must be called before any cached referent
// is disposed, matching the ownership rule in §3.
//
// The reference implementation uses chained open buckets (djb2 mod
// 256); this is that same layout, as fixed-size bucket arrays
// protected by a mutex so the caches can safely be read from the
// parallel emit phase (§4.6) after being written once, single-
// threaded, between Pass 2 and Pass 3 (§4.5).
type Caches struct {
	mu sync.RWMutex
	// symbols is keyed by "module:symbol" (§4.2, "Symbol cache").
	symbols [bucketCount][]symbolEntry
	// structs is keyed by struct name.
	structs [bucketCount][]structEntry
	// fieldToStruct is keyed by field name; only the first struct
	// known to contain that name is retained (a best-effort reverse
	// index, per §3).
	fieldToStruct [bucketCount][]structEntry
}

type symbolEntry struct {
	key string
	sym *Symbol
}

type structEntry struct {
	key string
	si  *StructInfo
}

// NewCaches constructs empty, process-wide caches.
func NewCaches() *Caches {
	return &Caches{}
}

// SymbolKey builds the "module:symbol" cache key used throughout §4.2.
func SymbolKey(module, symbol string) string {
	return module + ":" + symbol
}

// PutSymbol inserts or replaces a symbol-cache entry.
func (c *Caches) PutSymbol(module string, sym *Symbol) {
	key := SymbolKey(module, sym.Name)
	bucket := djb2(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.symbols[bucket] {
		if e.key == key {
			c.symbols[bucket][i].sym = sym
			return
		}
	}

	c.symbols[bucket] = append(c.symbols[bucket], symbolEntry{key, sym})
}

// LookupSymbol retrieves a symbol by "module:symbol" key.
func (c *Caches) LookupSymbol(module, symbol string) (*Symbol, bool) {
	key := SymbolKey(module, symbol)
	bucket := djb2(key)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.symbols[bucket] {
		if e.key == key {
			return e.sym, true
		}
	}

	return nil, false
}

// PutStruct inserts or replaces a struct-cache entry, keyed by struct
// name, and populates the field->struct reverse index for every field
// not already claimed by an earlier struct (§3: "first struct known to
// contain that name").
func (c *Caches) PutStruct(si *StructInfo) {
	bucket := djb2(si.Name)

	c.mu.Lock()
	defer c.mu.Unlock()

	replaced := false

	for i, e := range c.structs[bucket] {
		if e.key == si.Name {
			c.structs[bucket][i].si = si
			replaced = true

			break
		}
	}

	if !replaced {
		c.structs[bucket] = append(c.structs[bucket], structEntry{si.Name, si})
	}

	for _, f := range si.Fields {
		fbucket := djb2(f.Name)

		found := false

		for _, e := range c.fieldToStruct[fbucket] {
			if e.key == f.Name {
				found = true
				break
			}
		}

		if !found {
			c.fieldToStruct[fbucket] = append(c.fieldToStruct[fbucket], structEntry{f.Name, si})
		}
	}
}

// LookupStruct retrieves a struct by name.
func (c *Caches) LookupStruct(name string) (*StructInfo, bool) {
	bucket := djb2(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.structs[bucket] {
		if e.key == name {
			return e.si, true
		}
	}

	return nil, false
}

// LookupStructByField returns the first struct known to contain a
// field of the given name - the field->struct reverse-index fast
// path (§3).
func (c *Caches) LookupStructByField(field string) (*StructInfo, bool) {
	bucket := djb2(field)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.fieldToStruct[bucket] {
		if e.key == field {
			return e.si, true
		}
	}

	return nil, false
}

// Clear empties every cache. Must be called before a new compilation
// begins in the same process (§3 invariant) and before any cached
// referent (MCU, StructInfo) is disposed (§9, "Process-wide caches").
func (c *Caches) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.symbols = [bucketCount][]symbolEntry{}
	c.structs = [bucketCount][]structEntry{}
	c.fieldToStruct = [bucketCount][]structEntry{}
}
