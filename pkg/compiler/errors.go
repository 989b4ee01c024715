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

import "fmt"

// The four error classes named in §7: diagnostic errors are reported
// against the offending module and abort compilation (Pass 1/2
// failures, translation errors from the lowering callback); backend
// errors originate from module verification or object emission;
// system errors come from the filesystem, the environment, or an
// external tool invocation (linker, llc) failing to run at all.

// DiagnosticError is a compile-time error attributable to one module:
// a duplicate module name, an unresolved `use`, a failed symbol
// resolution, or a lowering-callback failure.
type DiagnosticError struct {
	Module string
	Err    error
}

func (e *DiagnosticError) Error() string {
	if e.Module == "" {
		return e.Err.Error()
	}

	return fmt.Sprintf("module %q: %v", e.Module, e.Err)
}

func (e *DiagnosticError) Unwrap() error { return e.Err }

// BackendError wraps a failure from module verification or native
// object/assembly emission (§4.6, §7).
type BackendError struct {
	Module string
	Err    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend failure in module %q: %v", e.Module, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// LinkError wraps a failure from the Linker Invoker (§4.7).
type LinkError struct {
	Err error
}

func (e *LinkError) Error() string { return fmt.Sprintf("link failed: %v", e.Err) }
func (e *LinkError) Unwrap() error  { return e.Err }

// SystemError wraps a failure that has nothing to do with the input
// program: a missing output directory that cannot be created, a
// subprocess that could not even be started, an unreadable
// environment variable (§7).
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *SystemError) Unwrap() error { return e.Err }
