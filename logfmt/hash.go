/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import "fmt"

// DJB2Hash computes the classic Bernstein hash over s, truncated to 32
// bits by the type itself. Used for LogItem.AgentHash (spec.md §3/§8
// invariant 2); exported so package classify can recompute it if an
// enrichment step rewrites Agent after parsing.
func DJB2Hash(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// AgentHex renders hash the way printf("%x") would: lowercase, no
// leading zeros.
func AgentHex(hash uint32) string {
	return fmt.Sprintf("%x", hash)
}
