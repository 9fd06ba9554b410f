/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/loglens/accesscore/downstream"
	"github.com/loglens/accesscore/logitem"
)

// DateTimeConfig is the date/time extractor the directive engine calls
// into for %d/%t/%x. It is implemented by package datefmt's Format; the
// interface lives here (rather than logfmt importing datefmt directly)
// so datefmt stays a leaf package with no knowledge of the directive
// engine that drives it. Each method's returned time.Time carries only
// the component it parsed (date-only calls leave the clock fields at
// their zero value and vice versa); applyDirective folds that
// component into the item's running Dt via combineDate/combineTime.
type DateTimeConfig interface {
	ParseDate(tok string) (date string, numDate uint32, t time.Time, ok bool)
	ParseTime(tok string) (timeStr string, t time.Time, ok bool)
	ParseCombined(tok string) (date string, numDate uint32, timeStr string, t time.Time, ok bool)
}

// Config bundles the parse-time knobs and shared run state the
// directive engine needs. BandwidthSeen/ServeTimeSeen are the
// process-wide "seen at least once" flags from spec.md §4.2's numeric
// semantics, owned by the caller (internal/accessconf.RuntimeState) and
// flipped here via atomic CAS so concurrent workers never race on them.
type Config struct {
	DoubleDecode   bool
	StrictStatus   bool
	DateDelimCount int // space count of the configured date format (datefmt.SpaceCount); see dateDelimCount

	DateTime DateTimeConfig

	// Classifier, when set, is consulted by the 's' directive for
	// status-code validity instead of the built-in 100-599 range
	// check, letting a caller's own policy override it.
	Classifier downstream.Classifier

	BandwidthSeen *atomic.Bool
	ServeTimeSeen *atomic.Bool
}

// ParseLine is parse_format's entry point: it walks directives over
// line, populating a fresh LogItem seeded from start. It returns at
// the first directive error, per spec.md §4.2, with the item's Errstr
// set to match (the two are kept in sync rather than forcing callers
// to do it).
func ParseLine(directives []Directive, line string, start time.Time, cfg *Config) (*logitem.LogItem, error) {
	li := logitem.NewLogItem(start)
	if err := runDirectives(li, directives, line, cfg); err != nil {
		li.Errstr = err.Error()
		return li, err
	}
	finalizeLogItem(li)
	return li, nil
}

// runDirectives walks directives over input, mutating li in place.
// Shared by ParseLine and the JSON engine's per-key merge so the
// duplicate-directive policy and cursor contract stay identical
// whether the input is a raw log line or one JSON field's value.
func runDirectives(li *logitem.LogItem, directives []Directive, input string, cfg *Config) error {
	cursor := 0
	for _, d := range directives {
		switch d.Kind {
		case kindLiteral:
			if cursor < len(input) {
				cursor++
			}
		case kindSkipWS:
			for cursor < len(input) && (input[cursor] == ' ' || input[cursor] == '\t') {
				cursor++
			}
		case kindField:
			var token string
			var newCursor int
			if d.Verb == 'h' && cursor < len(input) && input[cursor] == '[' {
				token, newCursor = scanBracketedHost(input, cursor)
			} else {
				cnt := 1
				if d.Verb == 'd' {
					cnt = dateDelimCount(input, cursor, cfg.DateDelimCount)
				}
				token, newCursor, _ = scanToken(input, cursor, d.Delim, d.HasDelim, cnt)
			}
			cursor = newCursor
			if alreadyPopulated(li, d.Verb) {
				continue
			}
			if err := applyDirective(d, token, li, cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// dateDelimCount sizes the %d token: it spans one delimiter more than
// the larger of fmtSpaces (the date format's space count) and the
// number of spaces in the input's first fmtSpaces+1 space-separated
// fields, so a space-padded day ("Nov  2") stays one token.
func dateDelimCount(input string, cursor, fmtSpaces int) int {
	inSpaces, gaps := 0, 0
	for i := cursor; i < len(input) && fmtSpaces > 0; i++ {
		if input[i] != ' ' {
			continue
		}
		if i > cursor && input[i-1] != ' ' {
			gaps++
			if gaps > fmtSpaces {
				break
			}
		}
		inSpaces++
	}
	return max(fmtSpaces, inSpaces) + 1
}

// finalizeLogItem runs the cross-field computations that only make
// sense once every directive has had a chance to populate the item.
func finalizeLogItem(li *logitem.LogItem) {
	if li.TLSType != nil || li.TLSCypher != nil {
		joined := joinTLSTypeCypher(li.TLSType, li.TLSCypher)
		li.TLSTypeCypher = &joined
	}
}

func alreadyPopulated(li *logitem.LogItem, verb byte) bool {
	switch verb {
	case 'd':
		return li.Date != ""
	case 't':
		return li.Time != ""
	case 'x':
		return li.Date != ""
	case 'v':
		return li.VHost != nil
	case 'e':
		return li.UserID != nil
	case 'C':
		return li.CacheStatus != nil
	case 'h':
		return li.Host != ""
	case 'm':
		return li.Method != nil
	case 'U':
		return li.Req != ""
	case 'q':
		return li.Qstr != nil
	case 'H':
		return li.Protocol != nil
	case 'r':
		return li.Req != ""
	case 's':
		return li.Status != -1
	case 'b':
		return li.RespSize != 0
	case 'R':
		return li.Ref != nil
	case 'u':
		return li.Agent != ""
	case 'L', 'T', 'D', 'n':
		return li.ServeTime != 0
	case 'k':
		return li.TLSCypher != nil
	case 'K':
		return li.TLSType != nil
	case 'M':
		return li.MimeType != nil
	default:
		return false
	}
}

func applyDirective(d Directive, tok string, li *logitem.LogItem, cfg *Config) error {
	switch d.Verb {
	case 'd':
		if tok == "" {
			return newParseError(TokenMissing, d.Verb, "date token missing")
		}
		date, numDate, t, ok := cfg.DateTime.ParseDate(tok)
		if !ok {
			return newParseError(TokenInvalid, d.Verb, "unparseable date: "+tok)
		}
		li.Date = date
		li.NumDate = numDate
		li.Dt = combineDate(li.Dt, t)
	case 't':
		if tok == "" {
			return nil
		}
		ts, t, ok := cfg.DateTime.ParseTime(tok)
		if !ok {
			return newParseError(TokenInvalid, d.Verb, "unparseable time: "+tok)
		}
		li.Time = ts
		li.Dt = combineTime(li.Dt, t)
	case 'x':
		if tok == "" {
			return nil
		}
		date, numDate, ts, t, ok := cfg.DateTime.ParseCombined(tok)
		if !ok {
			return newParseError(TokenInvalid, d.Verb, "unparseable combined timestamp: "+tok)
		}
		li.Date = date
		li.NumDate = numDate
		li.Time = ts
		li.Dt = t
	case 'v':
		if tok != "" {
			li.VHost = &tok
		}
	case 'e':
		if tok != "" {
			li.UserID = &tok
		}
	case 'C':
		if tok != "" {
			if cs, ok := validCacheStatus(tok); ok {
				li.CacheStatus = &cs
			}
		}
	case 'h':
		if tok == "" {
			return newParseError(TokenMissing, d.Verb, "host token missing")
		}
		var host string
		var kind logitem.IPType
		if d.IsXFF {
			h, k, ok := extractXFF(tok, d.Arg)
			if !ok {
				return newParseError(TokenInvalid, d.Verb, "no valid address in: "+tok)
			}
			host, kind = h, k
		} else {
			h, k := classifyIP(tok)
			if k == logitem.IPInvalid {
				return newParseError(TokenInvalid, d.Verb, "invalid address: "+tok)
			}
			host, kind = h, k
		}
		li.Host = host
		li.TypeIP = kind
	case 'm':
		if tok != "" {
			m, ok := extractMethod(tok)
			if !ok {
				return newParseError(TokenInvalid, d.Verb, "unknown method: "+tok)
			}
			li.Method = &m
		}
	case 'U':
		if tok == "" {
			li.Req = "-"
			return newParseError(TokenMissing, d.Verb, "request-URI token missing")
		}
		req := decodeURL(tok, cfg.DoubleDecode)
		li.Req = req
	case 'q':
		if tok != "" {
			q := decodeURL(tok, cfg.DoubleDecode)
			li.Qstr = &q
		}
	case 'H':
		if tok != "" {
			p, ok := extractProtocol(tok)
			if !ok {
				return newParseError(TokenInvalid, d.Verb, "unknown protocol: "+tok)
			}
			li.Protocol = &p
		}
	case 'r':
		if tok == "" {
			li.Req = "-"
			return newParseError(TokenMissing, d.Verb, "request line missing")
		}
		pr := parseRequestLine(tok, cfg.DoubleDecode)
		li.Req = pr.Request
		if pr.Method != "" && li.Method == nil {
			li.Method = &pr.Method
		}
		if pr.Protocol != "" && li.Protocol == nil {
			li.Protocol = &pr.Protocol
		}
	case 's':
		if tok == "" {
			return newParseError(TokenMissing, d.Verb, "status token missing")
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return newParseError(TokenInvalid, d.Verb, "non-numeric status: "+tok)
		}
		if cfg.StrictStatus {
			valid := validHTTPStatus(n)
			if cfg.Classifier != nil {
				valid = cfg.Classifier.IsValidHTTPStatus(n)
			}
			if !valid {
				return newParseError(TokenInvalid, d.Verb, "out-of-range status: "+tok)
			}
		}
		li.Status = n
	case 'b':
		n, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			n = 0
		}
		li.RespSize = n
		markSeen(cfg.BandwidthSeen)
	case 'R':
		if tok != "" {
			ref := decodeURL(tok, cfg.DoubleDecode)
			li.Ref = &ref
			site := refererSite(ref)
			li.Site = &site
			if kp := extractKeyphrase(ref, cfg.DoubleDecode); kp != "" {
				li.Keyphrase = &kp
			}
		}
	case 'u':
		agent := decodeURL(tok, cfg.DoubleDecode)
		if agent == "" {
			agent = "-"
		}
		li.Agent = agent
		li.AgentHash = DJB2Hash(agent)
		li.AgentHex = AgentHex(li.AgentHash)
	case 'L':
		ms, _ := strconv.ParseUint(tok, 10, 64)
		setServeTime(li, ms*1000, cfg.ServeTimeSeen)
	case 'T':
		var us uint64
		if strings.Contains(tok, ".") {
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				f = 0
			}
			us = uint64(f * 1e6)
		} else {
			s, _ := strconv.ParseUint(tok, 10, 64)
			us = s * 1e6
		}
		setServeTime(li, us, cfg.ServeTimeSeen)
	case 'D':
		us, _ := strconv.ParseUint(tok, 10, 64)
		setServeTime(li, us, cfg.ServeTimeSeen)
	case 'n':
		ns, _ := strconv.ParseUint(tok, 10, 64)
		setServeTime(li, ns/1000, cfg.ServeTimeSeen)
	case 'k':
		if tok != "" {
			name, _ := resolveCipher(tok)
			li.TLSCypher = &name
		}
	case 'K':
		if tok != "" {
			li.TLSType = &tok
		}
	case 'M':
		if tok != "" {
			if norm := normalizeMime(tok); norm != "" {
				li.MimeType = &norm
			}
		}
	}
	return nil
}

// combineDate folds a date-only component (year/month/day, in datePortion's
// location) into existing, keeping existing's clock fields.
func combineDate(existing, datePortion time.Time) time.Time {
	y, m, d := datePortion.Date()
	h, mi, s := existing.Clock()
	return time.Date(y, m, d, h, mi, s, existing.Nanosecond(), datePortion.Location())
}

// combineTime folds a time-only component (hour/minute/second/nanosecond)
// into existing, keeping existing's date fields.
func combineTime(existing, timePortion time.Time) time.Time {
	y, m, d := existing.Date()
	h, mi, s := timePortion.Clock()
	return time.Date(y, m, d, h, mi, s, timePortion.Nanosecond(), timePortion.Location())
}

func setServeTime(li *logitem.LogItem, us uint64, seen *atomic.Bool) {
	if li.ServeTime == 0 && us != 0 {
		li.ServeTime = us
	}
	markSeen(seen)
}

func markSeen(flag *atomic.Bool) {
	if flag == nil {
		return
	}
	flag.CompareAndSwap(false, true)
}

func validHTTPStatus(code int) bool {
	return code >= 100 && code <= 599
}

var cacheStatuses = []string{"MISS", "BYPASS", "EXPIRED", "STALE", "UPDATING", "REVALIDATED", "HIT"}

func validCacheStatus(tok string) (string, bool) {
	u := upper.String(tok)
	for _, c := range cacheStatuses {
		if u == c {
			return c, true
		}
	}
	return "", false
}

func joinTLSTypeCypher(t, c *string) string {
	var tv, cv string
	if t != nil {
		tv = *t
	}
	if c != nil {
		cv = *c
	}
	if tv == "" {
		return cv
	}
	if cv == "" {
		return tv
	}
	return tv + "/" + cv
}
