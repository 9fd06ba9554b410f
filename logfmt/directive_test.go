/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import (
	"sync/atomic"
	"testing"
	"time"
)

// fakeDateTime is a minimal DateTimeConfig stand-in, so directive tests
// don't need a real datefmt.Format: ParseDate knows two fixed tokens,
// ParseTime echoes any HH:MM:SS token back, and ParseCombined always
// fails.
type fakeDateTime struct{}

func (fakeDateTime) ParseDate(tok string) (string, uint32, time.Time, bool) {
	switch tok {
	case "10/Oct/2000":
		return "20001010", 20001010, time.Date(2000, time.October, 10, 0, 0, 0, 0, time.UTC), true
	case "Nov  2":
		return "20231102", 20231102, time.Date(2023, time.November, 2, 0, 0, 0, 0, time.UTC), true
	}
	return "", 0, time.Time{}, false
}

func (fakeDateTime) ParseTime(tok string) (string, time.Time, bool) {
	if tok == "" {
		return "", time.Time{}, false
	}
	parsed, err := time.Parse("15:04:05", tok)
	if err != nil {
		return "", time.Time{}, false
	}
	return tok, parsed, true
}

func (fakeDateTime) ParseCombined(tok string) (string, uint32, string, time.Time, bool) {
	return "", 0, "", time.Time{}, false
}

func newTestConfig() *Config {
	return &Config{
		StrictStatus:  true,
		DateTime:      fakeDateTime{},
		BandwidthSeen: new(atomic.Bool),
		ServeTimeSeen: new(atomic.Bool),
	}
}

// TestCommonLogFormat covers spec scenario 1.
func TestCommonLogFormat(t *testing.T) {
	directives, err := CompileFormat(`%h %^ %^ [%d:%t %^] "%r" %s %b`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	line := `127.0.0.1 - frank [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326`
	item, err := ParseLine(directives, line, time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.Host != "127.0.0.1" {
		t.Errorf("host = %q, want 127.0.0.1", item.Host)
	}
	if item.Date != "20001010" {
		t.Errorf("date = %q, want 20001010", item.Date)
	}
	if item.Time != "13:55:36" {
		t.Errorf("time = %q, want 13:55:36", item.Time)
	}
	if item.Method == nil || *item.Method != "GET" {
		t.Errorf("method = %v, want GET", item.Method)
	}
	if item.Req != "/apache_pb.gif" {
		t.Errorf("req = %q, want /apache_pb.gif", item.Req)
	}
	if item.Protocol == nil || *item.Protocol != "HTTP/1.0" {
		t.Errorf("protocol = %v, want HTTP/1.0", item.Protocol)
	}
	if item.Status != 200 {
		t.Errorf("status = %d, want 200", item.Status)
	}
	if item.RespSize != 2326 {
		t.Errorf("resp_size = %d, want 2326", item.RespSize)
	}
}

// TestServeTimeD covers spec scenario 2: %D is already microseconds.
func TestServeTimeD(t *testing.T) {
	directives, err := CompileFormat(`%s %b %D`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "200 512 1234", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.ServeTime != 1234 {
		t.Errorf("serve_time = %d, want 1234", item.ServeTime)
	}
}

// TestServeTimeTFractional covers spec scenario 3.
func TestServeTimeTFractional(t *testing.T) {
	directives, err := CompileFormat(`%T`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "0.250", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.ServeTime != 250000 {
		t.Errorf("serve_time = %d, want 250000", item.ServeTime)
	}
}

// TestServeTimeFirstNonZeroWins checks invariant 3: whichever of
// %L/%T/%D/%n supplies a value first, later directives must not
// clobber it.
func TestServeTimeFirstNonZeroWins(t *testing.T) {
	directives, err := CompileFormat(`%D %L`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "1234 9", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.ServeTime != 1234 {
		t.Errorf("serve_time = %d, want 1234 (first directive wins)", item.ServeTime)
	}
}

// TestXFFFirstValidIP covers spec scenario 4.
func TestXFFFirstValidIP(t *testing.T) {
	directives, err := CompileFormat(`%{,}h`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "  10.0.0.5, 203.0.113.77  ", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.Host != "10.0.0.5" {
		t.Errorf("host = %q, want 10.0.0.5", item.Host)
	}
}

// TestGoogleRefererKeyphrase covers spec scenario 5.
func TestGoogleRefererKeyphrase(t *testing.T) {
	directives, err := CompileFormat(`%R`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "https://www.google.com/search?q=load+balancer&hl=en", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.Site == nil || *item.Site != "www.google.com" {
		t.Errorf("site = %v, want www.google.com", item.Site)
	}
	if item.Keyphrase == nil || *item.Keyphrase != "load balancer" {
		t.Errorf("keyphrase = %v, want %q", item.Keyphrase, "load balancer")
	}
}

// TestBracketedIPv6Host covers the spec's boundary behaviour.
func TestBracketedIPv6Host(t *testing.T) {
	directives, err := CompileFormat(`%h`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "[2001:db8::1]:443", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.Host != "2001:db8::1" {
		t.Errorf("host = %q, want 2001:db8::1", item.Host)
	}
}

// TestBracketedIPv6HostOverridesDelimiter covers the scanning-level half
// of the spec's bracketed-host rule: with a trailing directive, the
// scan must stop at the bracket's ']' rather than the format's own
// delimiter, even when that delimiter appears inside the brackets.
func TestBracketedIPv6HostOverridesDelimiter(t *testing.T) {
	directives, err := CompileFormat(`%h:%^`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "[2001:db8::1]:443", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.Host != "2001:db8::1" {
		t.Errorf("host = %q, want 2001:db8::1", item.Host)
	}
}

// TestEmptyRequestIsDash covers the spec's "empty request token ⇒
// req = '-', line classified invalid" boundary behaviour: the item
// still gets req="-" even though ParseLine reports an error (so a
// caller logging the failure has something to show).
func TestEmptyRequestIsDash(t *testing.T) {
	directives, err := CompileFormat(`"%r"`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, `""`, time.Now(), newTestConfig())
	if err == nil {
		t.Fatalf("ParseLine: want error for empty request token, got nil")
	}
	if item.Req != "-" {
		t.Errorf("req = %q, want -", item.Req)
	}
	if item.Errstr == "" {
		t.Errorf("errstr not set on invalid item")
	}
}

// TestDuplicateDirectiveSkipsButAdvances checks that a repeated
// directive for an already-populated field is not re-parsed, but the
// cursor still advances past its delimiter.
func TestDuplicateDirectiveSkipsButAdvances(t *testing.T) {
	directives, err := CompileFormat(`%s %s %s`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "200 500 200", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if item.Status != 200 {
		t.Errorf("status = %d, want 200 (first wins)", item.Status)
	}
}

// TestBandwidthParseFailureYieldsZero checks spec.md §4.2: %b silently
// yields 0 on parse failure rather than an error, but still flips the
// bandwidth-seen flag.
func TestBandwidthParseFailureYieldsZero(t *testing.T) {
	directives, err := CompileFormat(`%b`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	cfg := newTestConfig()
	item, err := ParseLine(directives, "not-a-number", time.Now(), cfg)
	if err != nil {
		t.Fatalf("ParseLine returned error, want nil: %v", err)
	}
	if item.RespSize != 0 {
		t.Errorf("resp_size = %d, want 0", item.RespSize)
	}
	if !cfg.BandwidthSeen.Load() {
		t.Errorf("BandwidthSeen not flipped")
	}
}

// TestAgentHexMatchesDJB2 checks invariant 2.
func TestAgentHexMatchesDJB2(t *testing.T) {
	directives, err := CompileFormat(`%u`)
	if err != nil {
		t.Fatalf("CompileFormat: %v", err)
	}
	item, err := ParseLine(directives, "Mozilla/5.0", time.Now(), newTestConfig())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	want := AgentHex(DJB2Hash("Mozilla/5.0"))
	if item.AgentHex != want {
		t.Errorf("agent_hex = %q, want %q", item.AgentHex, want)
	}
}
