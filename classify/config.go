/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package classify implements the ignore-policy and enrichment pass
// spec.md §4.4 runs over a successfully parsed LogItem: crawler,
// static-asset, status, referer and IP exclusion rules, plus is_404,
// is_static and uniq_key.
package classify

import "github.com/gobwas/glob"

// Policy is the compiled, immutable ignore policy. Compiled once from
// Config so the hot parse path never recompiles a glob per line —
// grounded on filewatch.NewIgnorer's prefix/glob precompilation
// (filewatch/handler.go) and FilterManager's glob.Compile-at-load-time
// pattern (filters.go).
type Policy struct {
	ignoreCrawlers bool
	crawlersOnly   bool
	ignoreQstr     bool
	code444As404   bool
	staticIgnore   IgnoreLevel

	crawlerAgents []glob.Glob
	excludedIPs   []glob.Glob
	ignoredRefs   []glob.Glob
	staticAssets  []glob.Glob
	ignoredStatus map[int]struct{}
}

// IgnoreLevel mirrors logitem.IgnoreLevel's two "drop" outcomes, used
// to configure how a static-asset match is treated.
type IgnoreLevel int

const (
	StaticIgnoreReq IgnoreLevel = iota
	StaticIgnorePanel
)

// Config is the unCompiled policy description; Compile turns the glob
// pattern lists into a Policy.
type Config struct {
	IgnoreCrawlers bool
	CrawlersOnly   bool
	IgnoreQstr     bool
	Code444As404   bool
	StaticIgnore   IgnoreLevel

	// CrawlerAgents is a list of glob patterns matched against the
	// User-Agent string ("*bot*", "*Googlebot*", ...).
	CrawlerAgents []string
	// ExcludedIPs is a list of glob patterns matched against Host.
	ExcludedIPs []string
	// IgnoredReferers is a list of glob patterns matched against Ref/Site.
	IgnoredReferers []string
	// StaticAssets is a list of glob patterns matched against Req (or
	// the portion of Req before '?').
	StaticAssets []string
	// IgnoredStatus is a set of HTTP status codes to treat as IgnorePanel.
	IgnoredStatus []int
}

// Compile validates and precompiles cfg into a Policy.
func Compile(cfg Config) (*Policy, error) {
	p := &Policy{
		ignoreCrawlers: cfg.IgnoreCrawlers,
		crawlersOnly:   cfg.CrawlersOnly,
		ignoreQstr:     cfg.IgnoreQstr,
		code444As404:   cfg.Code444As404,
		staticIgnore:   cfg.StaticIgnore,
		ignoredStatus:  make(map[int]struct{}, len(cfg.IgnoredStatus)),
	}
	var err error
	if p.crawlerAgents, err = compileGlobs(cfg.CrawlerAgents); err != nil {
		return nil, err
	}
	if p.excludedIPs, err = compileGlobs(cfg.ExcludedIPs); err != nil {
		return nil, err
	}
	if p.ignoredRefs, err = compileGlobs(cfg.IgnoredReferers); err != nil {
		return nil, err
	}
	if p.staticAssets, err = compileGlobs(cfg.StaticAssets); err != nil {
		return nil, err
	}
	for _, code := range cfg.IgnoredStatus {
		p.ignoredStatus[code] = struct{}{}
	}
	return p, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pat := range patterns {
		g, err := glob.Compile(pat)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}
