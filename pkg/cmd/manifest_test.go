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
	"testing"

	"github.com/Luma-Programming-Language/Luma/pkg/ast"
)

func TestDecodeManifestBuildsProgramInOrder(t *testing.T) {
	data := []byte(`{
		"modules": [
			{
				"name": "util",
				"decls": [{"kind": "func", "name": "add", "public": true}]
			},
			{
				"name": "main",
				"uses": [{"module": "util"}],
				"decls": [{"kind": "func", "name": "main", "public": true}]
			}
		]
	}`)

	program, err := decodeManifest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(program.Modules) != 2 || program.Modules[0].Name != "util" || program.Modules[1].Name != "main" {
		t.Fatalf("expected [util main] in manifest order, got %+v", program.Modules)
	}

	mainBody := program.Modules[1].Body
	if len(mainBody) != 2 {
		t.Fatalf("expected a use and a decl in main's body, got %d statements", len(mainBody))
	}

	use, ok := mainBody[0].(*ast.Use)
	if !ok || use.Module != "util" {
		t.Fatalf("expected first statement to be `use util`, got %#v", mainBody[0])
	}

	decl, ok := mainBody[1].(*ast.Decl)
	if !ok || decl.Name != "main" || decl.Kind != ast.DeclFunc || !decl.Public {
		t.Fatalf("expected a public func decl named main, got %#v", mainBody[1])
	}
}

func TestDecodeManifestRejectsUnknownDeclKind(t *testing.T) {
	data := []byte(`{"modules": [{"name": "m", "decls": [{"kind": "bogus", "name": "x"}]}]}`)

	if _, err := decodeManifest(data); err == nil {
		t.Fatalf("expected an unknown declaration kind to be rejected")
	}
}

func TestDecodeManifestRejectsMalformedJSON(t *testing.T) {
	if _, err := decodeManifest([]byte("{not json")); err == nil {
		t.Fatalf("expected malformed JSON to be rejected")
	}
}

func TestDeclKindMapsEveryManifestString(t *testing.T) {
	cases := map[string]ast.DeclKind{
		"func":   ast.DeclFunc,
		"struct": ast.DeclStruct,
		"enum":   ast.DeclEnum,
		"var":    ast.DeclVar,
	}

	for s, want := range cases {
		got, err := declKind(s)
		if err != nil {
			t.Fatalf("declKind(%q): unexpected error: %v", s, err)
		}

		if got != want {
			t.Fatalf("declKind(%q) = %v, want %v", s, got, want)
		}
	}
}
