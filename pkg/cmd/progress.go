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
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/Luma-Programming-Language/Luma/pkg/emitter"
)

// ansiEscape is a trimmed-down version of the teacher's
// pkg/util/termio.AnsiEscape, keeping only the foreground-colour
// builder the build summary needs.
type ansiEscape struct {
	code string
}

const (
	ansiGreen = 2
	ansiRed   = 1
	ansiReset = "\033[0m"
)

func fgColour(col uint) ansiEscape {
	return ansiEscape{code: fmt.Sprintf("\033[%dm", 30+col)}
}

func (a ansiEscape) wrap(s string) string {
	return a.code + s + ansiReset
}

// terminalWidth reports the current terminal width, falling back to
// 80 columns when stdout is not a terminal (redirected to a file, a
// CI log, a pipe) - the same fallback shape §4.6's progress reporting
// needs since a build may run unattended.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}

	return width
}

// printProgressTable renders a one-line-per-module status table once
// a round of the Parallel Emitter's batches has joined (§4.6 step 6,
// SUPPLEMENTED FEATURES item 3). Module names are truncated to fit
// the detected terminal width so the table never wraps mid-row.
func printProgressTable(results []emitter.Result) {
	nameWidth := terminalWidth() - 28
	if nameWidth < 8 {
		nameWidth = 8
	}

	for _, r := range results {
		name := r.Module
		if len(name) > nameWidth {
			name = name[:nameWidth-1] + "…"
		}

		status := fgColour(ansiGreen).wrap("ok")
		if r.Err != nil {
			status = fgColour(ansiRed).wrap("fail")
		}

		fmt.Printf("%-6s %-*s %8s\n", status, nameWidth, name, r.Duration.Round(time.Millisecond))
	}
}

// summaryRule prints a horizontal rule sized to the terminal width,
// separating the progress table from the final link line.
func summaryRule() {
	fmt.Println(strings.Repeat("-", terminalWidth()))
}
