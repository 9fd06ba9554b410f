/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package downstream declares the interfaces this module treats as
// external collaborators: the storage/aggregation engine that consumes
// parsed LogItems, the resume cursor store, and the browser/OS/crawler
// classification tables. The only implementations in this module are
// NopClassifier below, the disk-backed resume.Store in package resume,
// and the CLI's own JSON-lines inserter; production callers wire their
// own.
package downstream

import "github.com/loglens/accesscore/logitem"

// Inserter consumes a validated LogItem. The callee takes no ownership
// of item; the caller is free to reuse or discard it immediately after
// the call returns. Corresponds to process_log(item) in spec.md §6.
type Inserter interface {
	Process(item *logitem.LogItem) error
}

// LastParseStore is the resume cursor store, keyed by inode (0 for
// pipes). Corresponds to ht_get_last_parse / ht_insert_last_parse.
type LastParseStore interface {
	GetLastParse(inode uint64) (logitem.LastParse, bool)
	PutLastParse(inode uint64, lp logitem.LastParse) error
}

// Classifier supplies the browser/OS/crawler/GeoIP enrichment and
// ignore-policy lookups that spec.md §1 explicitly keeps out of scope.
// Corresponds to set_browser_os / is_crawler / hide_referer /
// ignore_referer / excluded_ip / is_valid_http_status.
type Classifier interface {
	SetBrowserOS(item *logitem.LogItem)
	IsCrawler(agent string) bool
	HideReferer(site string) bool
	IgnoreReferer(ref string) bool
	ExcludedIP(item *logitem.LogItem) bool
	IsValidHTTPStatus(code int) bool
}

// NopClassifier is a Classifier that performs no enrichment and ignores
// nothing; useful for tests and for callers that have not yet wired a
// real classification table.
type NopClassifier struct{}

func (NopClassifier) SetBrowserOS(*logitem.LogItem)   {}
func (NopClassifier) IsCrawler(string) bool            { return false }
func (NopClassifier) HideReferer(string) bool          { return false }
func (NopClassifier) IgnoreReferer(string) bool        { return false }
func (NopClassifier) ExcludedIP(*logitem.LogItem) bool { return false }
func (NopClassifier) IsValidHTTPStatus(code int) bool  { return code >= 100 && code <= 599 }
