/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package datefmt parses and formats timestamps against a configured
// strptime/strftime-style format string, per spec.md §4.1's "invoke an
// external strptime-like parser... re-emit via strftime."
//
// This is architecturally modeled on timegrinder.TimeGrinder's
// Config/New/Extract shape (github.com/gravwell/gravwell/v3/timegrinder)
// but does not share its behavior: timegrinder auto-sniffs across a
// fixed table of built-in layouts, while an access-log format string is
// always explicit, so this package compiles exactly the formats it is
// told to use and never guesses.
package datefmt

import "strings"

// specTable maps strptime/strftime conversion specifiers to the Go
// reference-time layout token that reproduces them. Unrecognized
// specifiers pass through literally (best-effort, rather than
// rejecting an otherwise-working format over one obscure flag).
var specTable = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'z': "-0700",
	'Z': "MST",
	'T': "15:04:05",
	'D': "01/02/06",
	'F': "2006-01-02",
	'n': "\n",
	't': "\t",
	'%': "%",
}

// toGoLayout translates a strptime/strftime-style format string into a
// Go reference-time layout. Bytes not following a '%' are copied
// through verbatim, so literal separators ("/", ":", " ", "[", "]")
// need no special handling.
func toGoLayout(format string) string {
	var b strings.Builder
	i := 0
	for i < len(format) {
		if format[i] == '%' && i+1 < len(format) {
			if tok, ok := specTable[format[i+1]]; ok {
				b.WriteString(tok)
				i += 2
				continue
			}
			// unrecognized specifier: keep both bytes literally
			b.WriteByte(format[i])
			b.WriteByte(format[i+1])
			i += 2
			continue
		}
		b.WriteByte(format[i])
		i++
	}
	return b.String()
}

// SpaceCount returns the number of literal space characters in a
// strptime-style format string, used by logfmt.Config.DateDelimCount
// to size the %d token's delimiter-occurrence count for syslog-style
// dates with a space-padded day ("Jan  2 15:04:05").
func SpaceCount(format string) int {
	n := 0
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			i++
			continue
		}
		if format[i] == ' ' {
			n++
		}
	}
	return n
}
