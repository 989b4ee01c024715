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

import "github.com/llir/llvm/ir/types"

// Field describes one member of a user-defined record, in declaration
// order. Field index order matches the in-memory layout used when
// generating GEPs (§3, "Struct Info" invariant).
type Field struct {
	Name    string
	Type    types.Type
	Element PointerElement
	Public  bool
}

// StructInfo describes a user-defined record. See §3 "Struct Info".
type StructInfo struct {
	Name   string
	Type   *types.StructType
	Fields []Field
}

// NewStructInfo constructs a StructInfo with no fields; fields are
// appended in declaration order via AddField so index order always
// matches source order.
func NewStructInfo(name string, typ *types.StructType) *StructInfo {
	return &StructInfo{Name: name, Type: typ}
}

// AddField appends a field, preserving the invariant that field index
// order matches declaration order.
func (s *StructInfo) AddField(name string, typ types.Type, public bool) {
	s.Fields = append(s.Fields, Field{Name: name, Type: typ, Public: public})
}

// IndexOf returns the field index for name, and whether it was found.
// Used by the member-access lowerer (out of scope per §1) and by the
// private-field-access translation error (§7).
func (s *StructInfo) IndexOf(name string) (int, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}

	return 0, false
}
