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
package backend

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/Luma-Programming-Language/Luma/pkg/symbols"
)

// callConv maps our own small CallConv enum (kept in pkg/symbols so
// calling-convention propagation is testable without a backend
// dependency) onto the backend library's richer enum.CallConv.
func callConv(cc symbols.CallConv) enum.CallConv {
	if cc == symbols.CallConvFast {
		return enum.CallConvFastCC
	}

	return enum.CallConvC
}

// DeclareFunction creates, in module, an external function
// declaration matching sig: same return/parameter types, the same
// calling convention and the same per-parameter alignment as the
// source symbol (§4.4, "functions via an add-function call using the
// source's function type. Preserve calling convention; preserve
// per-parameter alignment attributes"). A declaration has no basic
// blocks, which is exactly what makes it print as `declare` rather
// than `define`.
func DeclareFunction(module *ir.Module, name string, ret types.Type, paramTypes []types.Type, cc symbols.CallConv, aligns []uint64) *ir.Func {
	params := make([]*ir.Param, len(paramTypes))
	for i, t := range paramTypes {
		p := ir.NewParam("", t)

		if i < len(aligns) && aligns[i] > 0 {
			p.Attrs = append(p.Attrs, ir.AlignAttr(aligns[i]))
		}

		params[i] = p
	}

	fn := module.NewFunc(name, ret, params...)
	fn.CallingConv = callConv(cc)
	fn.Linkage = enum.LinkageExternal

	return fn
}

// DeclareGlobal creates, in module, an external global declaration
// with the given type (§4.4, "globals via an add-global call using
// the source's type").
func DeclareGlobal(module *ir.Module, name string, typ types.Type) *ir.Global {
	g := module.NewGlobal(name, typ)
	g.Linkage = enum.LinkageExternal

	return g
}
