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
package compiler

import (
	"errors"
	"testing"

	"github.com/Luma-Programming-Language/Luma/pkg/ast"
	"github.com/Luma-Programming-Language/Luma/pkg/backend"
	"github.com/Luma-Programming-Language/Luma/pkg/driver"
	"github.com/Luma-Programming-Language/Luma/pkg/registry"
)

func noopFactory(fn driver.LowererFunc) LowererFactory {
	return func(*backend.Handle) driver.Lowerer { return fn }
}

func TestValidateConfigRejectsOutOfRangeOptLevel(t *testing.T) {
	cfg := DefaultConfig(t.TempDir(), "out")
	cfg.OptLevel = 9

	err := ValidateConfig(cfg)
	if err == nil {
		t.Fatalf("expected out-of-range optimisation level to be rejected")
	}

	var sysErr *SystemError
	if !errors.As(err, &sysErr) {
		t.Fatalf("expected a SystemError, got %T: %v", err, err)
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	cfg := DefaultConfig(t.TempDir(), "out")

	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("unexpected error validating default config: %v", err)
	}
}

func TestCompileSurfacesDiagnosticErrorOnDuplicateModule(t *testing.T) {
	program := &ast.Program{
		Modules: []*ast.Module{
			{Name: "main"},
			{Name: "main"},
		},
	}

	lowerer := noopFactory(func(*registry.MCU, *ast.Decl) error { return nil })
	cfg := DefaultConfig(t.TempDir(), "out")

	_, err := Compile(program, lowerer, cfg)
	if err == nil {
		t.Fatalf("expected duplicate module names to produce a diagnostic error")
	}

	var diagErr *DiagnosticError
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected a DiagnosticError, got %T: %v", err, err)
	}
}

func TestCompileSurfacesDiagnosticErrorOnUnknownImport(t *testing.T) {
	program := &ast.Program{
		Modules: []*ast.Module{
			{Name: "main", Body: []ast.Stmt{&ast.Use{Module: "ghost"}}},
		},
	}

	lowerer := noopFactory(func(*registry.MCU, *ast.Decl) error { return nil })
	cfg := DefaultConfig(t.TempDir(), "out")

	_, err := Compile(program, lowerer, cfg)
	if err == nil {
		t.Fatalf("expected use of an unknown module to produce a diagnostic error")
	}

	var diagErr *DiagnosticError
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected a DiagnosticError, got %T: %v", err, err)
	}
}

func TestCompileSurfacesDiagnosticErrorFromLoweringCallback(t *testing.T) {
	program := &ast.Program{
		Modules: []*ast.Module{
			{
				Name: "main",
				Body: []ast.Stmt{
					&ast.Decl{Kind: ast.DeclFunc, Name: "broken", Public: true},
				},
			},
		},
	}

	lowerer := noopFactory(func(*registry.MCU, *ast.Decl) error {
		return errors.New("deliberate lowering failure")
	})
	cfg := DefaultConfig(t.TempDir(), "out")

	_, err := Compile(program, lowerer, cfg)
	if err == nil {
		t.Fatalf("expected lowering failure to abort compilation with a diagnostic error")
	}

	var diagErr *DiagnosticError
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected a DiagnosticError, got %T: %v", err, err)
	}
}
