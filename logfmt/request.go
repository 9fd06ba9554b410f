/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import "strings"

// parsedRequest is the result of splitting a %r token into its parts.
type parsedRequest struct {
	Method   string
	Request  string
	Protocol string
}

// parseRequestLine implements the %r extraction rule from spec.md
// §4.1: locate a method prefix, find the *last* space in the token and
// check that what follows is a valid protocol token; the substring
// between method and protocol is the request. If no method prefix is
// present, the whole line is the request. If the trailing token is not
// a valid protocol (or the middle would be empty), the request is the
// literal string "-" -- this is preserved as a quirk (spec.md §9 Open
// Question) and is NOT treated as a parse failure.
func parseRequestLine(line string, doubleDecode bool) parsedRequest {
	var pr parsedRequest
	m, ok := extractMethodPrefix(line)
	if !ok {
		// No method prefix: the whole line is the request.
		pr.Request = decodeURL(line, doubleDecode)
		if pr.Request == "" {
			pr.Request = "-"
		}
		return pr
	}
	pr.Method = m
	rest := strings.TrimLeft(line[len(m):], " ")

	idx := strings.LastIndexByte(rest, ' ')
	if idx < 0 {
		// No trailing protocol token at all.
		pr.Request = "-"
		return pr
	}

	reqPart := rest[:idx]
	protoPart := strings.TrimSpace(rest[idx+1:])
	proto, ok := extractProtocol(protoPart)
	reqPart = strings.TrimSpace(reqPart)
	if !ok || reqPart == "" {
		pr.Request = "-"
		return pr
	}
	pr.Protocol = proto
	pr.Request = decodeURL(reqPart, doubleDecode)
	if pr.Request == "" {
		pr.Request = "-"
	}
	return pr
}

// extractMethodPrefix finds a method token at the start of line,
// matching matchTable's case-insensitive prefix rule but requiring the
// match to be followed by a space or end of string.
func extractMethodPrefix(line string) (string, bool) {
	sp := strings.IndexByte(line, ' ')
	var head string
	if sp < 0 {
		head = line
	} else {
		head = line[:sp]
	}
	m, ok := extractMethod(head)
	if !ok || len(m) != len(head) {
		return "", false
	}
	return m, true
}
