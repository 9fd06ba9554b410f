/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// methods is the fixed table of recognized HTTP methods. Order doesn't
// matter; lookups are by canonical uppercase form.
var methods = []string{
	"GET", "POST", "HEAD", "PUT", "DELETE", "CONNECT", "OPTIONS",
	"TRACE", "PATCH", "PROPFIND", "PROPPATCH", "MKCOL", "COPY", "MOVE",
	"LOCK", "UNLOCK", "VERSION-CONTROL", "REPORT", "CHECKOUT",
	"CHECKIN", "UNCHECKOUT", "MKWORKSPACE", "UPDATE", "LABEL", "MERGE",
	"BASELINE-CONTROL", "MKACTIVITY", "ORDERPATCH", "ACL", "SEARCH",
}

// protocols is the fixed table of recognized HTTP protocol tokens.
var protocols = []string{"HTTP/1.0", "HTTP/1.1", "HTTP/2", "HTTP/3"}

// matchTable case-insensitively prefix-matches tok against table and
// returns the canonical (uppercase) spelling and true on success.
func matchTable(tok string, table []string) (string, bool) {
	u := upper.String(tok)
	for _, m := range table {
		if strings.HasPrefix(u, m) {
			return m, true
		}
	}
	return "", false
}

// extractMethod returns the canonical method spelling for tok, or
// ("", false) if tok does not match the method table.
func extractMethod(tok string) (string, bool) {
	return matchTable(tok, methods)
}

// extractProtocol returns the canonical protocol spelling for tok, or
// ("", false) if tok does not match the protocol table.
func extractProtocol(tok string) (string, bool) {
	return matchTable(tok, protocols)
}
