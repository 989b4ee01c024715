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
package ast

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DecodeStringLiteral expands the escape sequences recognised by the
// string-literal lowerer (§4.9): \n \r \t \\ \" \0 \xHH. An unknown
// escape is emitted verbatim — the backslash and the following byte
// are both copied through unchanged, and a warning is logged. This
// mirrors the reference compiler's behaviour exactly (§9,
// "Escape-sequence error policy"): source compatibility over
// strictness.
func DecodeStringLiteral(raw string) string {
	var out strings.Builder

	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			out.WriteByte(c)
			i++

			continue
		}
		// c == '\\' and there is at least one more byte.
		next := raw[i+1]

		switch next {
		case 'n':
			out.WriteByte('\n')
			i += 2
		case 'r':
			out.WriteByte('\r')
			i += 2
		case 't':
			out.WriteByte('\t')
			i += 2
		case '\\':
			out.WriteByte('\\')
			i += 2
		case '"':
			out.WriteByte('"')
			i += 2
		case '0':
			out.WriteByte(0)
			i += 2
		case 'x':
			if i+3 < len(raw) {
				if b, err := strconv.ParseUint(raw[i+2:i+4], 16, 8); err == nil {
					out.WriteByte(byte(b))
					i += 4

					continue
				}
			}
			// Malformed \x escape: fall through to verbatim copy.
			log.Warnf("malformed escape sequence %q, emitting verbatim", raw[i:min(i+4, len(raw))])
			out.WriteByte(c)
			out.WriteByte(next)
			i += 2
		default:
			log.Warnf("unknown escape sequence \\%c, emitting verbatim", next)
			out.WriteByte(c)
			out.WriteByte(next)
			i += 2
		}
	}

	return out.String()
}

// EncodeStringLiteral is the inverse of DecodeStringLiteral for the
// fixed escape set it supports, used by property-based round-trip
// tests (§8 property 5) and by diagnostic pretty-printing.
func EncodeStringLiteral(s string) string {
	var out strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch c {
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\t':
			out.WriteString(`\t`)
		case '\\':
			out.WriteString(`\\`)
		case '"':
			out.WriteString(`\"`)
		case 0:
			out.WriteString(`\0`)
		default:
			if c < 0x20 || c >= 0x7f {
				out.WriteString(fmt.Sprintf(`\x%02x`, c))
			} else {
				out.WriteByte(c)
			}
		}
	}

	return out.String()
}
