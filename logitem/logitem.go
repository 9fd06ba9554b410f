/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package logitem defines the canonical parsed record produced by the
// log-format directive engine, and the per-source bookkeeping that
// tracks it across a run.
package logitem

import "time"

// IPType classifies the Host field.
type IPType int

const (
	IPUnset IPType = iota
	IPv4
	IPv6
	IPInvalid
)

// IgnoreLevel is the outcome of the line-classifier's ignore policy.
type IgnoreLevel int

const (
	// Keep means the line is counted and shown in panels.
	Keep IgnoreLevel = iota
	// IgnoreReq means the line is counted but hidden from panels.
	IgnoreReq
	// IgnorePanel means the line is not counted at all.
	IgnorePanel
)

// LogItem is the canonical parsed record. All string attributes are
// individually optional; a nil pointer means the field was never
// populated by the directive engine.
type LogItem struct {
	Date    string // YYYYMMDD, per the configured date-num format
	NumDate uint32 // numeric form of Date, used as a sort key
	Time    string // HH:MM:SS

	// Dt is the broken-down calendar time for the entry. It starts as
	// the log's start time and is overwritten by any %d/%t/%x directive.
	Dt time.Time

	Host    string
	TypeIP  IPType
	VHost   *string
	UserID  *string
	// CacheStatus is retained only when the token is one of MISS,
	// BYPASS, EXPIRED, STALE, UPDATING, REVALIDATED, HIT (case-insensitive).
	CacheStatus *string

	Method   *string
	Protocol *string

	Req  string // URL-decoded request target; required
	Qstr *string

	Ref       *string
	Site      *string
	Keyphrase *string

	Agent     string // "-" substituted when absent
	AgentHash uint32
	AgentHex  string

	Browser     *string
	BrowserType *string
	OS          *string
	OSType      *string
	Continent   *string
	Country     *string
	ASN         *string

	Status   int // -1 means unset
	RespSize uint64

	// ServeTime is always stored in microseconds, regardless of which
	// directive (%L, %T, %D, %n) supplied it.
	ServeTime uint64

	TLSType       *string
	TLSCypher     *string
	TLSTypeCypher *string
	MimeType      *string

	IgnoreLevel IgnoreLevel
	Is404       bool
	IsStatic    bool

	// UniqKey is "{Date}|{Host}|{AgentHex}", computed after all other
	// fields have been set.
	UniqKey string

	// Errstr holds a diagnostic if the parse failed. A LogItem handed
	// downstream always has Errstr == "".
	Errstr string
}

// NewLogItem returns a LogItem seeded with the log's start time and an
// unset HTTP status, matching the C implementation's per-line init.
func NewLogItem(start time.Time) *LogItem {
	return &LogItem{
		Dt:     start,
		Status: -1,
	}
}

// Valid reports whether item satisfies the invariants required before
// handing it to a downstream inserter: non-empty Host/Date/Req and no
// recorded error.
func (li *LogItem) Valid() bool {
	return li != nil && li.Errstr == "" && li.Host != "" && li.Date != "" && li.Req != "" && li.Status >= -1
}
