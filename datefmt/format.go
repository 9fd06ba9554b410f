/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package datefmt

import (
	"fmt"
	"strconv"
	"time"
)

// Config selects the format strings a Format compiles against. All
// fields use strptime/strftime-style specifiers. CombinedFormat backs
// the %x directive (a single token carrying both date and time); if
// left empty it defaults to DateFormat + " " + TimeFormat.
type Config struct {
	DateFormat     string
	TimeFormat     string
	CombinedFormat string
	// DateNumFormat is a strftime-style format producing the numeric
	// Date string stored on LogItem (e.g. "%Y%m%d").
	DateNumFormat string
	Location      *time.Location
}

// Format is the compiled, immutable counterpart of Config. A Format is
// safe for concurrent use by multiple parser goroutines, since it only
// ever reads its own layout strings.
type Format struct {
	dateLayout     string
	timeLayout     string
	combinedLayout string
	numLayout      string
	loc            *time.Location
}

// New compiles cfg once, matching timegrinder.New's shape but over an
// explicit, caller-supplied format rather than a built-in table.
func New(cfg Config) (*Format, error) {
	if cfg.DateFormat == "" {
		return nil, fmt.Errorf("datefmt: DateFormat is required")
	}
	if cfg.DateNumFormat == "" {
		return nil, fmt.Errorf("datefmt: DateNumFormat is required")
	}
	combined := cfg.CombinedFormat
	if combined == "" && cfg.TimeFormat != "" {
		combined = cfg.DateFormat + " " + cfg.TimeFormat
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Format{
		dateLayout:     toGoLayout(cfg.DateFormat),
		timeLayout:     toGoLayout(cfg.TimeFormat),
		combinedLayout: toGoLayout(combined),
		numLayout:      toGoLayout(cfg.DateNumFormat),
		loc:            loc,
	}, nil
}

// ParseDate implements logfmt.DateTimeConfig. t carries the parsed
// year/month/day at midnight in the configured location; its
// hour/minute/second are meaningless and must not be read by callers.
func (f *Format) ParseDate(tok string) (date string, numDate uint32, t time.Time, ok bool) {
	t, err := time.ParseInLocation(f.dateLayout, tok, f.loc)
	if err != nil {
		return "", 0, time.Time{}, false
	}
	date, numDate, ok = f.render(t)
	return date, numDate, t, ok
}

// ParseTime implements logfmt.DateTimeConfig. t carries the parsed
// hour/minute/second/nanosecond; its year/month/day are whatever
// time.Parse defaults a date-less layout to (0000-01-01) and must not
// be read by callers.
func (f *Format) ParseTime(tok string) (timeStr string, t time.Time, ok bool) {
	if f.timeLayout == "" {
		return "", time.Time{}, false
	}
	t, err := time.ParseInLocation(f.timeLayout, tok, f.loc)
	if err != nil {
		return "", time.Time{}, false
	}
	return t.Format("15:04:05"), t, true
}

// ParseCombined implements logfmt.DateTimeConfig. t carries the full
// parsed calendar time.
func (f *Format) ParseCombined(tok string) (date string, numDate uint32, timeStr string, t time.Time, ok bool) {
	if f.combinedLayout == "" {
		return "", 0, "", time.Time{}, false
	}
	t, err := time.ParseInLocation(f.combinedLayout, tok, f.loc)
	if err != nil {
		return "", 0, "", time.Time{}, false
	}
	date, numDate, ok = f.render(t)
	if !ok {
		return "", 0, "", time.Time{}, false
	}
	return date, numDate, t.Format("15:04:05"), t, true
}

func (f *Format) render(t time.Time) (date string, numDate uint32, ok bool) {
	date = t.Format(f.numLayout)
	n, err := strconv.ParseUint(date, 10, 32)
	if err != nil {
		return "", 0, false
	}
	return date, uint32(n), true
}
