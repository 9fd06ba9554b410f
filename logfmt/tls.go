/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import (
	"crypto/tls"
	"strconv"
	"strings"
)

var cipherNameByID map[uint16]string

func init() {
	cipherNameByID = make(map[uint16]string, 64)
	for _, c := range tls.CipherSuites() {
		cipherNameByID[c.ID] = c.Name
	}
	for _, c := range tls.InsecureCipherSuites() {
		cipherNameByID[c.ID] = c.Name
	}
}

// resolveCipher implements spec.md §4.1's %k rule: if tok is all
// digits, treat it as a decimal IANA cipher-suite code and look up its
// standard name; otherwise the token is kept as-is.
func resolveCipher(tok string) (name string, fromCode bool) {
	if tok == "" || !isAllDigits(tok) {
		return tok, false
	}
	n, err := strconv.ParseUint(tok, 10, 16)
	if err != nil {
		return tok, false
	}
	if name, ok := cipherNameByID[uint16(n)]; ok {
		return name, true
	}
	return tok, false
}

func isAllDigits(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}
