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
	"encoding/json"
	"fmt"
	"os"

	"github.com/Luma-Programming-Language/Luma/pkg/ast"
)

// manifest is the on-disk JSON shape the `build` command reads. Lexing
// and type checking live upstream of this core (§1 of SPEC_FULL.md);
// a manifest is the serialized, already-checked module forest a real
// front end would hand the core, playing the same role the teacher's
// binary package (`pkg/cmd/binfile.go`) plays for go-corset: a
// pre-compiled intermediate form read straight off disk.
type manifest struct {
	Modules []manifestModule `json:"modules"`
}

type manifestModule struct {
	Name  string         `json:"name"`
	Doc   string         `json:"doc,omitempty"`
	Uses  []manifestUse  `json:"uses,omitempty"`
	Decls []manifestDecl `json:"decls,omitempty"`
}

type manifestUse struct {
	Module string `json:"module"`
	Alias  string `json:"alias,omitempty"`
}

type manifestDecl struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// loadManifest reads and decodes a manifest file into an *ast.Program,
// exiting the process on any malformed input.
func loadManifest(path string) *ast.Program {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("reading manifest %q: %v\n", path, err)
		os.Exit(2)
	}

	program, err := decodeManifest(data)
	if err != nil {
		fmt.Printf("parsing manifest %q: %v\n", path, err)
		os.Exit(2)
	}

	return program
}

// decodeManifest turns raw manifest JSON into an *ast.Program,
// returning an error rather than exiting so it can be unit tested.
func decodeManifest(data []byte) (*ast.Program, error) {
	var m manifest

	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	program := &ast.Program{Modules: make([]*ast.Module, 0, len(m.Modules))}

	for _, mm := range m.Modules {
		mod := &ast.Module{Name: mm.Name, Doc: mm.Doc}

		for _, u := range mm.Uses {
			mod.Body = append(mod.Body, &ast.Use{Module: u.Module, Alias: u.Alias})
		}

		for _, d := range mm.Decls {
			kind, err := declKind(d.Kind)
			if err != nil {
				return nil, fmt.Errorf("module %q: %w", mm.Name, err)
			}

			mod.Body = append(mod.Body, &ast.Decl{Kind: kind, Name: d.Name, Public: d.Public})
		}

		program.Modules = append(program.Modules, mod)
	}

	return program, nil
}

func declKind(s string) (ast.DeclKind, error) {
	switch s {
	case "func":
		return ast.DeclFunc, nil
	case "struct":
		return ast.DeclStruct, nil
	case "enum":
		return ast.DeclEnum, nil
	case "var":
		return ast.DeclVar, nil
	default:
		return 0, fmt.Errorf("unknown declaration kind %q (want func, struct, enum or var)", s)
	}
}
