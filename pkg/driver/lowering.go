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

// Package driver implements the Lowering Driver (§4.5): the
// three-pass walk over a program's modules that creates MCUs, links
// `use` imports, and lowers statement bodies in dependency order.
package driver

import (
	"github.com/Luma-Programming-Language/Luma/pkg/ast"
	"github.com/Luma-Programming-Language/Luma/pkg/registry"
)

// Lowerer is the contract of the lowering callback (§1, §4.5): the
// routine that turns one non-`use` statement into backend IR within
// the current MCU. Its job is to define the symbol(s) a declaration
// introduces and lower the accompanying statement/expression trees;
// the semantics of any individual AST node (arithmetic, struct field
// access, casts, alloc/free, inline assembly for syscalls) are
// entirely its concern and are not re-specified here (§1).
//
// A Lowerer implementation is an external collaborator: this package
// only guarantees it is invoked once per declaration, in dependency
// order, with the current MCU already set in the registry and in the
// Backend Handle.
type Lowerer interface {
	// LowerDeclaration lowers one non-`use` statement belonging to
	// module, returning an error that aborts the current compilation
	// on failure (§7).
	LowerDeclaration(module *registry.MCU, decl *ast.Decl) error
}

// LowererFunc adapts a plain function to the Lowerer interface, the
// way http.HandlerFunc adapts a function to http.Handler - useful for
// tests and for simple embedders that do not need a stateful Lowerer.
type LowererFunc func(module *registry.MCU, decl *ast.Decl) error

// LowerDeclaration implements Lowerer.
func (f LowererFunc) LowerDeclaration(module *registry.MCU, decl *ast.Decl) error {
	return f(module, decl)
}
