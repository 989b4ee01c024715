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

// Package ast describes the input contract of the code-generation core:
// a fully parsed and type-checked forest of module trees. Lexing,
// parsing and type checking live upstream of this package (see §1 of
// SPEC_FULL.md); this package only fixes the shape the core consumes.
package ast

// Program is an ordered sequence of module nodes, in file/CLI order.
// Ordering matters: it is the tie-break used throughout the core
// (registry insertion order, dependency-scheduler visitation order).
type Program struct {
	Modules []*Module
}

// Module is one top-level `module` declaration. Name must be
// non-empty; Doc is an optional documentation string attached by the
// parser.
type Module struct {
	Name string
	Doc  string
	Body []Stmt
}

// Stmt is any top-level statement inside a module body: a `use`
// directive, or a declaration that the Lowering Driver will dispatch
// to the lowering callback.
type Stmt interface {
	stmt()
}

// Use is a `use <module>[ as <alias>]` import directive.
type Use struct {
	Module string
	Alias  string // empty when no alias was given
}

func (*Use) stmt() {}

// Decl is a non-use statement: a function, struct, enum or variable
// declaration. The core does not interpret the declaration's body; it
// only needs enough of the shape to drive dependency discovery and to
// hand the statement to the lowering callback in dependency order.
type Decl struct {
	// Kind distinguishes the declaration without requiring callers of
	// this package to import the full downstream AST. The lowering
	// callback (see lowering.go) is responsible for interpreting Node.
	Kind DeclKind
	// Name is the symbol this declaration introduces, when it
	// introduces exactly one (functions, structs, enums, top-level
	// variables). Unused for statements that introduce none.
	Name string
	// Public marks whether this declaration is visible to importers
	// (external linkage) or confined to its own module (internal
	// linkage). See Symbol.Linkage in pkg/symbols.
	Public bool
	// Node is the underlying, fully-typed declaration as produced by
	// the type checker; the lowering callback downcasts it. The core
	// never inspects its fields.
	Node any
}

func (*Decl) stmt() {}

// DeclKind enumerates the declaration forms the core needs to
// distinguish for symbol-table bookkeeping. Expression/statement-level
// detail (arithmetic, casts, syscalls, ...) is entirely the lowering
// callback's concern, per §1.
type DeclKind uint8

const (
	// DeclFunc introduces a function symbol.
	DeclFunc DeclKind = iota
	// DeclStruct introduces a struct type and its StructInfo.
	DeclStruct
	// DeclEnum introduces an enum type and one constant per member.
	DeclEnum
	// DeclVar introduces a module-scoped global variable.
	DeclVar
)

// String renders the declaration kind for diagnostics.
func (k DeclKind) String() string {
	switch k {
	case DeclFunc:
		return "function"
	case DeclStruct:
		return "struct"
	case DeclEnum:
		return "enum"
	case DeclVar:
		return "variable"
	default:
		return "declaration"
	}
}
