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

// Package backend wraps the native code-generation library (§6). It
// stands in for the LLVM C API named as the reference backend in
// spec.md §1 with github.com/llir/llvm, a pure-Go LLVM IR construction
// library - see SPEC_FULL.md's DOMAIN STACK section for why.
package backend

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// CommonTypes is the common-types cache named in §3: the primitive
// backend types and the handful of small integer constants every
// lowering pass needs, built once and shared for the life of a
// Handle.
type CommonTypes struct {
	I1     *types.IntType
	I8     *types.IntType
	I16    *types.IntType
	I32    *types.IntType
	I64    *types.IntType
	F32    *types.FloatType
	F64    *types.FloatType
	Void   *types.VoidType
	I8Ptr  *types.PointerType
	Zero32 *constant.Int
	One32  *constant.Int
	Zero64 *constant.Int
	One64  *constant.Int
}

// newCommonTypes builds the CommonTypes cache from llir/llvm's shared
// primitive type values.
func newCommonTypes() CommonTypes {
	return CommonTypes{
		I1:     types.I1,
		I8:     types.I8,
		I16:    types.I16,
		I32:    types.I32,
		I64:    types.I64,
		F32:    types.Float,
		F64:    types.Double,
		Void:   types.Void,
		I8Ptr:  types.I8Ptr,
		Zero32: constant.NewInt(types.I32, 0),
		One32:  constant.NewInt(types.I32, 1),
		Zero64: constant.NewInt(types.I64, 0),
		One64:  constant.NewInt(types.I64, 1),
	}
}
