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

// Package symbols holds the per-module symbol lists and the
// process-wide symbol/struct/field caches described in §3 and §4.2 of
// SPEC_FULL.md.
package symbols

import "github.com/llir/llvm/ir/types"

// Linkage distinguishes symbols visible to importers from those
// confined to their own module.
type Linkage uint8

const (
	// Internal linkage: only visible within the defining module.
	Internal Linkage = iota
	// External linkage: visible to `use` importers and to qualified
	// (A::B) access from any module.
	External
)

func (l Linkage) String() string {
	if l == External {
		return "external"
	}

	return "internal"
}

// PointerElement records, for a pointer-valued symbol, the backend
// type of what it points to. This is the tagged-variant encoding
// §9 ("Opaque-pointer element tracking") recommends in place of a
// nullable field on every symbol: a symbol either carries no pointee
// information (the zero value, Present == false) or it does.
type PointerElement struct {
	Present bool
	Type    types.Type
}

// ElementOf constructs a present PointerElement for t.
func ElementOf(t types.Type) PointerElement {
	return PointerElement{Present: true, Type: t}
}

// Symbol is a binding exported or defined by a module compilation
// unit (MCU). See §3 "Symbol".
type Symbol struct {
	// Name is the symbol's binding name within its owning MCU. The
	// special name "main" always carries External linkage (§3).
	Name string
	// Value is the backend value handle (an *ir.Func or *ir.Global,
	// modeled as an opaque interface so this package does not need to
	// import the full llir/llvm surface for every caller).
	Value any
	// Type is the backend type handle of this symbol.
	Type types.Type
	// IsFunction distinguishes function symbols from data symbols.
	IsFunction bool
	// Element is populated for pointer-valued symbols; see
	// PointerElement above.
	Element PointerElement
	// Linkage is inferred from the declaration's visibility and the
	// special-cased "main" name; see NewSymbol.
	Linkage Linkage
	// CallConv and ParamAligns are populated for function symbols and
	// must be preserved verbatim when an external declaration is
	// created for this symbol in an importing module (§4.4,
	// "Preserve calling convention; preserve per-parameter alignment
	// attributes").
	CallConv    CallConv
	ParamAligns []uint64
}

// CallConv names a backend calling convention. Modeled as our own
// small enum, rather than reaching into the backend library's
// calling-convention type on every read, so propagation (§8 property
// 7) is easy to assert in tests independent of backend wiring.
type CallConv string

// The calling conventions the core needs to distinguish; "C" is the
// default for both function declarations and external declarations
// unless a declaration explicitly requests another.
const (
	CallConvC    CallConv = "ccc"
	CallConvFast CallConv = "fastcc"
)

// NewSymbol constructs a Symbol, inferring linkage per §3: the name
// "main" is always external, otherwise linkage follows the
// declaration's own visibility.
func NewSymbol(name string, value any, typ types.Type, isFunction bool, public bool) *Symbol {
	linkage := Internal
	if public || name == "main" {
		linkage = External
	}

	sym := &Symbol{
		Name:       name,
		Value:      value,
		Type:       typ,
		IsFunction: isFunction,
		Linkage:    linkage,
	}

	if isFunction {
		sym.CallConv = CallConvC
	}

	return sym
}

// WithCallConv sets the symbol's calling convention and returns the
// receiver for chaining.
func (s *Symbol) WithCallConv(cc CallConv) *Symbol {
	s.CallConv = cc
	return s
}

// WithParamAligns sets the symbol's per-parameter alignment
// attributes and returns the receiver for chaining.
func (s *Symbol) WithParamAligns(aligns []uint64) *Symbol {
	s.ParamAligns = aligns
	return s
}

// WithElement attaches pointee information to a pointer-valued symbol
// and returns the receiver for chaining.
func (s *Symbol) WithElement(elem types.Type) *Symbol {
	s.Element = ElementOf(elem)
	return s
}
