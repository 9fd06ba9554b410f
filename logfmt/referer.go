/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import "strings"

// RefSiteLen bounds the length of an extracted referer site, matching
// spec.md §4.1's REF_SITE_LEN.
const RefSiteLen = 128

var googleHosts = []string{
	"www.google.",
	"webcache.googleusercontent.com",
	"translate.googleusercontent.com",
}

// isGoogleReferer reports whether host (scheme-stripped) is one of the
// recognized Google hosts eligible for keyphrase extraction.
func isGoogleReferer(host string) bool {
	for _, h := range googleHosts {
		if strings.HasPrefix(host, h) || strings.Contains(host, h) {
			return true
		}
	}
	return false
}

var keyphraseMarkers = []string{"&q=", "?q=", "%26q%3D", "%3Fq%3D"}

// extractKeyphrase implements spec.md §4.1's Google-referer keyphrase
// rule: only for www.google.*/webcache/translate hosts, locate one of
// the recognized query markers (or "q=cache:<x>+" / "/+"), terminate at
// the next & (or %26 if the marker itself was query-encoded),
// URL-decode, replace '+' with space, and trim. Returns "" if no
// keyphrase could be extracted.
func extractKeyphrase(ref string, doubleDecode bool) string {
	host := refererHost(ref)
	if host == "" || !isGoogleReferer(host) {
		return ""
	}

	var start int
	var encodedTerm bool
	found := false
	for _, marker := range keyphraseMarkers {
		if idx := strings.Index(ref, marker); idx >= 0 {
			start = idx + len(marker)
			encodedTerm = marker == "%26q%3D" || marker == "%3Fq%3D"
			found = true
			break
		}
	}
	if !found {
		if idx := strings.Index(ref, "q=cache:"); idx >= 0 {
			rest := ref[idx+len("q=cache:"):]
			if plus := strings.IndexByte(rest, '+'); plus >= 0 {
				start = idx + len("q=cache:") + plus + 1
				found = true
			}
		}
	}
	if !found {
		if idx := strings.Index(ref, "/+"); idx >= 0 {
			start = idx + 2
			found = true
		}
	}
	if !found || start > len(ref) {
		return ""
	}

	rest := ref[start:]
	terminator := "&"
	if encodedTerm {
		terminator = "%26"
	}
	if end := strings.Index(rest, terminator); end >= 0 {
		rest = rest[:end]
	}

	decoded := decodeURL(rest, doubleDecode)
	decoded = strings.ReplaceAll(decoded, "+", " ")
	return strings.TrimSpace(decoded)
}

// refererSite strips the scheme from ref (via the first "//"), takes up
// to the next '/' or '?', and truncates to RefSiteLen, matching
// spec.md §4.1's "referer site" rule.
func refererSite(ref string) string {
	site := refererHost(ref)
	if len(site) > RefSiteLen {
		site = site[:RefSiteLen]
	}
	return site
}

// refererHost strips scheme and path/query, leaving just the host
// portion of ref (no length truncation).
func refererHost(ref string) string {
	rest := ref
	if idx := strings.Index(ref, "//"); idx >= 0 {
		rest = ref[idx+2:]
	}
	end := len(rest)
	if idx := strings.IndexAny(rest, "/?"); idx >= 0 {
		end = idx
	}
	return rest[:end]
}
