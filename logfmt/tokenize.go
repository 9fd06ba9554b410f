/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import "strings"

// directiveKind tags what a compiled format slot does; the tagged
// variant spec.md §9 asks for, parsed once from the format string
// instead of rescanning it per line.
type directiveKind int

const (
	kindLiteral directiveKind = iota
	kindSkipWS                // '~'
	kindField                 // '%X' or '%{set}X'
)

// Directive is one compiled slot of a format string.
type Directive struct {
	Kind    directiveKind
	Literal byte   // valid when Kind == kindLiteral
	Verb    byte   // valid when Kind == kindField
	Arg     string // '%{arg}X' sub-argument, e.g. the XFF reject set
	IsXFF   bool   // Verb == 'h' and Arg was present (braced form)

	Delim    byte // the literal format byte following this directive
	HasDelim bool // false means the token runs to end-of-line
}

// compileFormat parses format once into a slice of Directive, per
// spec.md §4.2's format language: '%X' / '%{set}X' field directives,
// '~' to skip leading input whitespace, and any other byte a literal.
func compileFormat(format string) ([]Directive, error) {
	var out []Directive
	i := 0
	for i < len(format) {
		c := format[i]
		switch c {
		case '%':
			i++
			if i >= len(format) {
				return nil, newParseError(MalformedDirective, 0, "dangling %% at end of format")
			}
			d := Directive{Kind: kindField}
			if format[i] == '{' {
				end := strings.IndexByte(format[i:], '}')
				if end < 0 {
					return nil, newParseError(MalformedDirective, 0, "unterminated %{ in format")
				}
				d.Arg = format[i+1 : i+end]
				i += end + 1
				if i >= len(format) {
					return nil, newParseError(MalformedDirective, 0, "missing verb after %{...}")
				}
			}
			d.Verb = format[i]
			d.IsXFF = d.Verb == 'h' && format[i-1] == '}'
			i++
			if i < len(format) {
				d.Delim = format[i]
				d.HasDelim = true
			}
			out = append(out, d)
		case '~':
			out = append(out, Directive{Kind: kindSkipWS})
			i++
		default:
			out = append(out, Directive{Kind: kindLiteral, Literal: c})
			i++
		}
	}
	return out, nil
}

// CompileFormat is the exported entry point to compileFormat, used by
// callers (cmd/accesscore) that compile a format string once at
// startup and reuse the resulting []Directive across every line.
func CompileFormat(format string) ([]Directive, error) {
	return compileFormat(format)
}

// scanToken extracts the token starting at cursor in line, per spec.md
// §4.2's token-extraction contract: if hasDelim is false the token
// runs to end of line; otherwise it ends at the cnt-th unescaped
// occurrence of delim (a backslash in the input escapes the following
// byte, so an escaped delimiter does not count). found is false when
// fewer than cnt occurrences exist, in which case the remainder of the
// line is returned as the token and the cursor is left at end-of-line.
func scanToken(line string, cursor int, delim byte, hasDelim bool, cnt int) (token string, newCursor int, found bool) {
	if !hasDelim {
		return line[cursor:], len(line), true
	}
	if cnt < 1 {
		cnt = 1
	}
	count := 0
	i := cursor
	for i < len(line) {
		if line[i] == '\\' && i+1 < len(line) {
			i += 2
			continue
		}
		if line[i] == delim {
			count++
			if count == cnt {
				return line[cursor:i], i, true
			}
		}
		i++
	}
	return line[cursor:], len(line), false
}
