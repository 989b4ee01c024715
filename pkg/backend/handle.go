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

	"github.com/Luma-Programming-Language/Luma/pkg/symbols"
)

// LoopTarget records the branch targets a `break`/`continue` inside a
// loop body should jump to; the Lowering Driver's statement lowerer
// pushes one of these per loop and pops it on exit (§3, "current
// function pointer (used by loop-break/continue targets)").
type LoopTarget struct {
	Break    *ir.Block
	Continue *ir.Block
}

// Deferred is one statement whose lowering was deferred until its
// owning function is finalised - e.g. a struct literal that forward-
// references a type not yet fully lowered. The deferred-statement
// list in §3 generalises to a small callback queue here.
type Deferred func() error

// Handle is the Backend Handle (§3, §4.8): the opaque wrapper every
// other component goes through to reach the native code generator.
// Unlike the LLVM C API, llir/llvm has no separate "context" object -
// each *ir.Module is free-standing - so Handle itself plays that role:
// one Handle is constructed per compilation and is thread-confined
// during the create/link/lower passes (§5).
type Handle struct {
	// Common is the shared primitive-type and small-constant cache.
	Common CommonTypes
	// CurrentModule is the backend module currently being populated.
	// Set by the driver before lowering each MCU's body.
	CurrentModule *ir.Module
	// CurrentFunction is the backend function currently being
	// lowered, used to resolve loop break/continue targets and to
	// flush deferred statements at function exit.
	CurrentFunction *ir.Func
	// loopStack is the nested loop-target stack for the function
	// currently being lowered.
	loopStack []LoopTarget
	// deferred holds statements to run once CurrentFunction is fully
	// lowered.
	deferred []Deferred
	// Structs is the struct-info list named in §3's Backend Handle
	// Fields - an ordered dynamic array here rather than the
	// reference's intrusive linked-list head (§9).
	Structs []*symbols.StructInfo
}

// AddStruct registers a struct info with the handle, making it
// visible to the struct cache warm-up between Pass 2 and Pass 3
// (§4.5).
func (h *Handle) AddStruct(si *symbols.StructInfo) {
	h.Structs = append(h.Structs, si)
}

// New constructs a Handle with its common-types cache initialised.
// This corresponds to "Initialise targets/asm parsers/printers/
// assembly emitters once at handle construction" in §4.8; llir/llvm
// needs no such global initialisation, so construction here is pure
// and cheap - the equivalent one-time cost is paid by the Parallel
// Emitter (§4.6) when it shells out to the external object emitter.
func New() *Handle {
	return &Handle{Common: newCommonTypes()}
}

// SetCurrentModule switches which backend module subsequent lowering
// targets, mirroring the Module Registry's set_current_mcu (§4.1)
// driving this field.
func (h *Handle) SetCurrentModule(m *ir.Module) {
	h.CurrentModule = m
}

// EnterFunction begins lowering fn, clearing any stale loop/deferred
// state left over from a previous function.
func (h *Handle) EnterFunction(fn *ir.Func) {
	h.CurrentFunction = fn
	h.loopStack = nil
	h.deferred = nil
}

// PushLoop records the break/continue targets for a loop body.
func (h *Handle) PushLoop(target LoopTarget) {
	h.loopStack = append(h.loopStack, target)
}

// PopLoop removes the innermost loop's break/continue targets.
func (h *Handle) PopLoop() {
	if len(h.loopStack) > 0 {
		h.loopStack = h.loopStack[:len(h.loopStack)-1]
	}
}

// LoopTarget returns the innermost loop's break/continue targets, and
// whether a loop is currently active (a `break` outside any loop is a
// translation error the lowering callback must report).
func (h *Handle) LoopTarget() (LoopTarget, bool) {
	if len(h.loopStack) == 0 {
		return LoopTarget{}, false
	}

	return h.loopStack[len(h.loopStack)-1], true
}

// Defer queues a statement to run once the current function is fully
// lowered.
func (h *Handle) Defer(d Deferred) {
	h.deferred = append(h.deferred, d)
}

// FlushDeferred runs and clears every queued deferred statement, in
// the order they were queued, stopping at the first error.
func (h *Handle) FlushDeferred() error {
	for _, d := range h.deferred {
		if err := d(); err != nil {
			return err
		}
	}

	h.deferred = nil

	return nil
}

// ExitFunction clears function-scoped state once lowering of the
// current function body completes.
func (h *Handle) ExitFunction() {
	h.CurrentFunction = nil
	h.loopStack = nil
	h.deferred = nil
}

// Shutdown tears down the handle. The reference implementation
// disposes every MCU's module, then the builder, then the context,
// then calls the backend's global shutdown (§4.8). llir/llvm modules
// are garbage collected and there is no global backend state to tear
// down, so this exists to give callers (and tests) one place to
// assert the handle is no longer usable, and to drop references so
// the modules it held can be collected.
func (h *Handle) Shutdown() {
	h.CurrentModule = nil
	h.CurrentFunction = nil
	h.loopStack = nil
	h.deferred = nil
}
