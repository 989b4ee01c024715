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
package cmd

import (
	"fmt"

	"github.com/llir/llvm/ir/enum"

	"github.com/Luma-Programming-Language/Luma/pkg/ast"
	"github.com/Luma-Programming-Language/Luma/pkg/backend"
	"github.com/Luma-Programming-Language/Luma/pkg/registry"
	"github.com/Luma-Programming-Language/Luma/pkg/symbols"
)

// stubLowerer is the built-in lowering callback the `build` command
// wires in when no embedder-supplied one is available. The Lowering
// Driver's contract (pkg/driver.Lowerer) deliberately leaves
// declaration semantics to an external collaborator (§1); this one
// emits the simplest well-formed body for each declaration kind so a
// manifest can be carried all the way to a linked executable without
// a real front end - every function becomes a `ret i32 0`, every
// struct/enum registers its symbol with no storage, every global
// becomes a zero-initialised i32.
type stubLowerer struct {
	handle *backend.Handle
}

func (s *stubLowerer) LowerDeclaration(mcu *registry.MCU, decl *ast.Decl) error {
	switch decl.Kind {
	case ast.DeclFunc:
		return s.lowerFunc(mcu, decl)
	case ast.DeclVar:
		return s.lowerVar(mcu, decl)
	case ast.DeclStruct, ast.DeclEnum:
		return s.lowerType(mcu, decl)
	default:
		return fmt.Errorf("unsupported declaration kind %v for %q", decl.Kind, decl.Name)
	}
}

func (s *stubLowerer) lowerFunc(mcu *registry.MCU, decl *ast.Decl) error {
	common := s.handle.Common

	fn := backend.DeclareFunction(mcu.Module, decl.Name, common.I32, nil, symbols.CallConvC, nil)
	fn.Linkage = enum.LinkageExternal

	block := fn.NewBlock("entry")
	block.NewRet(common.Zero32)

	s.handle.EnterFunction(fn)
	defer s.handle.ExitFunction()

	if err := s.handle.FlushDeferred(); err != nil {
		return fmt.Errorf("function %q: %w", decl.Name, err)
	}

	mcu.Symbols.Insert(symbols.NewSymbol(decl.Name, fn, fn.Sig, true, decl.Public))

	return nil
}

func (s *stubLowerer) lowerVar(mcu *registry.MCU, decl *ast.Decl) error {
	common := s.handle.Common

	g := backend.DeclareGlobal(mcu.Module, decl.Name, common.I32)
	g.Init = common.Zero32

	mcu.Symbols.Insert(symbols.NewSymbol(decl.Name, g, common.I32, false, decl.Public))

	return nil
}

func (s *stubLowerer) lowerType(mcu *registry.MCU, decl *ast.Decl) error {
	mcu.Symbols.Insert(symbols.NewSymbol(decl.Name, nil, s.handle.Common.Void, false, decl.Public))

	return nil
}
