/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package classify

import (
	"strings"

	"github.com/loglens/accesscore/downstream"
	"github.com/loglens/accesscore/logfmt"
	"github.com/loglens/accesscore/logitem"
)

// Apply runs the ignore policy and enrichment pass over li, exactly as
// spec.md §4.4 orders it: excluded IP, crawler policy, ignored
// referer, ignored status, static-asset match, qstr stripping,
// is_404/is_static, uniq_key. cls may be nil (no enrichment pass,
// e.g. a downstream.NopClassifier caller that skips it entirely).
func Apply(li *logitem.LogItem, p *Policy, cls downstream.Classifier) {
	if cls != nil {
		cls.SetBrowserOS(li)
	}

	switch {
	case p.excludedIP(li.Host) || (cls != nil && cls.ExcludedIP(li)):
		li.IgnoreLevel = logitem.IgnorePanel
	case p.crawlerVerdict(li.Agent, cls):
		li.IgnoreLevel = logitem.IgnorePanel
	case p.refererVerdict(li, cls):
		li.IgnoreLevel = logitem.IgnorePanel
	case p.statusIgnored(li.Status):
		li.IgnoreLevel = logitem.IgnorePanel
	default:
		if lvl, hit := p.staticVerdict(li.Req); hit {
			li.IgnoreLevel = lvl
		}
	}

	if p.ignoreQstr {
		li.Req = stripQstr(li.Req)
	}

	li.Is404 = li.Status == 404 || (p.code444As404 && li.Status == 444)
	if !li.Is404 {
		_, li.IsStatic = p.staticVerdict(li.Req)
	}

	li.UniqKey = li.Date + "|" + li.Host + "|" + li.AgentHex
}

func (p *Policy) excludedIP(host string) bool {
	return matchAny(p.excludedIPs, host)
}

func (p *Policy) statusIgnored(status int) bool {
	_, ok := p.ignoredStatus[status]
	return ok
}

func (p *Policy) crawlerVerdict(agent string, cls downstream.Classifier) bool {
	isCrawler := matchAny(p.crawlerAgents, agent) || (cls != nil && cls.IsCrawler(agent))
	if p.ignoreCrawlers && isCrawler {
		return true
	}
	if p.crawlersOnly && !isCrawler {
		return true
	}
	return false
}

func (p *Policy) refererVerdict(li *logitem.LogItem, cls downstream.Classifier) bool {
	if li.Ref == nil {
		return false
	}
	if matchAny(p.ignoredRefs, *li.Ref) {
		return true
	}
	if li.Site != nil && matchAny(p.ignoredRefs, *li.Site) {
		return true
	}
	if cls != nil && cls.IgnoreReferer(*li.Ref) {
		return true
	}
	return false
}

// staticVerdict matches req (or its portion before '?') against the
// configured static-asset globs.
func (p *Policy) staticVerdict(req string) (logitem.IgnoreLevel, bool) {
	target := req
	if idx := strings.IndexByte(target, '?'); idx >= 0 {
		target = target[:idx]
	}
	if !matchAny(p.staticAssets, target) {
		return logitem.Keep, false
	}
	if p.staticIgnore == StaticIgnorePanel {
		return logitem.IgnorePanel, true
	}
	return logitem.IgnoreReq, true
}

func stripQstr(req string) string {
	if idx := strings.IndexByte(req, '?'); idx >= 0 {
		return req[:idx]
	}
	return req
}

// RehashAgent recomputes AgentHash/AgentHex after an enrichment step
// rewrites li.Agent, reusing the directive engine's hash so the two
// never drift apart.
func RehashAgent(li *logitem.LogItem) {
	li.AgentHash = logfmt.DJB2Hash(li.Agent)
	li.AgentHex = logfmt.AgentHex(li.AgentHash)
}
