/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import (
	"net/netip"
	"strings"

	"github.com/loglens/accesscore/logitem"
)

// classifyIP returns the IPType of s (after stripping brackets around
// an IPv6 literal host, per spec.md §8's boundary behaviour).
func classifyIP(s string) (host string, kind logitem.IPType) {
	host = unbracket(s)
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return host, logitem.IPInvalid
	}
	if addr.Is4() || addr.Is4In6() {
		return host, logitem.IPv4
	}
	return host, logitem.IPv6
}

// unbracket strips a single pair of surrounding '[' ']' from s, as used
// by bracketed IPv6 host[:port] tokens ("[2001:db8::1]:443").
func unbracket(s string) string {
	if strings.HasPrefix(s, "[") {
		if idx := strings.IndexByte(s, ']'); idx > 0 {
			return s[1:idx]
		}
	}
	return s
}

// scanBracketedHost scans a %h token starting at a literal '[', per
// spec.md §4.1: a bracketed host uses ']' as its delimiter regardless of
// the configured format delimiter, so "[2001:db8::1]:443" scans as one
// token even when the format delimiter is ':'. newCursor lands just past
// the closing ']', ready for the next directive to consume the byte
// there exactly as scanToken's contract does.
func scanBracketedHost(input string, cursor int) (token string, newCursor int) {
	idx := strings.IndexByte(input[cursor:], ']')
	if idx < 0 {
		return input[cursor:], len(input)
	}
	end := cursor + idx + 1
	return input[cursor:end], end
}

// extractXFF implements the %{reject}h special form from spec.md
// §4.2/§4.4: reject is the set of characters used to split candidate
// addresses out of tok. The first valid IP found becomes the result;
// once found, a subsequent non-IP token breaks the scan (so the scan
// never looks past the first match regardless).
func extractXFF(tok string, reject string) (host string, kind logitem.IPType, ok bool) {
	if reject == "" {
		reject = ","
	}
	for _, part := range splitAny(tok, reject) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, k := classifyIP(part)
		if k == logitem.IPInvalid {
			continue
		}
		return h, k, true
	}
	return "", logitem.IPInvalid, false
}

// splitAny splits s on any byte present in cutset, dropping empty
// fields between consecutive separators.
func splitAny(s, cutset string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(cutset, r)
	})
}
