/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import "strings"

// MaxMimeOut bounds the normalized MIME output buffer, per spec.md
// §4.1.
const MaxMimeOut = 256

// normalizeMime splits tok on ';' and ',', trims and lowercases each
// piece, drops empties, rejoins with "; ", and truncates to
// MaxMimeOut.
func normalizeMime(tok string) string {
	parts := strings.FieldsFunc(tok, func(r rune) bool { return r == ';' || r == ',' })
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, lowerASCII(p))
	}
	out := strings.Join(kept, "; ")
	if len(out) > MaxMimeOut {
		out = out[:MaxMimeOut]
	}
	return out
}

func lowerASCII(s string) string {
	return lower.String(s)
}
