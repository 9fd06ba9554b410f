/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package datefmt

import "testing"

func TestNewRequiresDateFormat(t *testing.T) {
	if _, err := New(Config{DateNumFormat: "%Y%m%d"}); err == nil {
		t.Fatal("New: want error with no DateFormat, got nil")
	}
}

func TestParseDateCommonLogFormat(t *testing.T) {
	f, err := New(Config{DateFormat: "%d/%b/%Y", DateNumFormat: "%Y%m%d"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	date, numDate, t0, ok := f.ParseDate("10/Oct/2000")
	if !ok {
		t.Fatal("ParseDate: want ok")
	}
	if y, m, d := t0.Date(); y != 2000 || m.String() != "October" || d != 10 {
		t.Errorf("parsed time = %v, want 2000-10-10", t0)
	}
	if date != "20001010" {
		t.Errorf("date = %q, want 20001010", date)
	}
	if numDate != 20001010 {
		t.Errorf("numDate = %d, want 20001010", numDate)
	}
}

func TestParseTimeHMS(t *testing.T) {
	f, err := New(Config{DateFormat: "%Y-%m-%d", TimeFormat: "%H:%M:%S", DateNumFormat: "%Y%m%d"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, t0, ok := f.ParseTime("13:55:36")
	if !ok || s != "13:55:36" {
		t.Errorf("ParseTime = (%q, %v), want (13:55:36, true)", s, ok)
	}
	if h, mi, se := t0.Clock(); h != 13 || mi != 55 || se != 36 {
		t.Errorf("parsed time = %v, want clock 13:55:36", t0)
	}
}

func TestParseCombinedDefaultsToDateSpaceTime(t *testing.T) {
	f, err := New(Config{DateFormat: "%Y-%m-%d", TimeFormat: "%H:%M:%S", DateNumFormat: "%Y%m%d"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	date, numDate, timeStr, _, ok := f.ParseCombined("2000-10-10 13:55:36")
	if !ok {
		t.Fatal("ParseCombined: want ok")
	}
	if date != "20001010" || numDate != 20001010 || timeStr != "13:55:36" {
		t.Errorf("got (%q, %d, %q)", date, numDate, timeStr)
	}
}

// TestSyslogPaddedDay covers the spec's boundary behaviour: a
// space-padded day ("Nov  2") parses when the configured format
// contains matching literal spaces and the directive engine sizes its
// delimiter count from SpaceCount(format).
func TestSyslogPaddedDay(t *testing.T) {
	f, err := New(Config{DateFormat: "%b %e", DateNumFormat: "%Y%m%d", TimeFormat: "%H:%M:%S"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _, _, ok := f.ParseDate("Nov  2")
	if !ok {
		t.Fatal("ParseDate(\"Nov  2\"): want ok")
	}
	if SpaceCount("%b %e") != 1 {
		t.Errorf("SpaceCount = %d, want 1", SpaceCount("%b %e"))
	}
}

func TestToGoLayoutPassesThroughUnknownSpecifiers(t *testing.T) {
	got := toGoLayout("%Y-%m-%dT%Q")
	want := "2006-01-02T%Q"
	if got != want {
		t.Errorf("toGoLayout = %q, want %q", got, want)
	}
}
