/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/loglens/accesscore/logitem"
)

func TestSniffAcceptsWhenSomeSampleLinesParse(t *testing.T) {
	src := openLines(t, 10)
	defer src.Close()

	sample, err := Sniff(src, 4, func(line string) (*logitem.LogItem, error) {
		return fakeParse(line)
	})
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if len(sample.Lines) != 4 {
		t.Fatalf("sampled %d lines, want 4", len(sample.Lines))
	}
}

func TestSniffFatalsWhenNoSampleLineParses(t *testing.T) {
	src := openLines(t, 10)
	defer src.Close()

	_, err := Sniff(src, 4, func(line string) (*logitem.LogItem, error) {
		return nil, fmt.Errorf("never matches")
	})
	if err == nil {
		t.Fatal("Sniff: want error when no sampled line parses")
	}
}

// TestSniffSampleIsStillProcessedByRun confirms the sniffed lines are
// not discarded: Run must fold cfg.Prefix in ahead of further reads,
// so every input line still reaches the inserter exactly once.
func TestSniffSampleIsStillProcessedByRun(t *testing.T) {
	src := openLines(t, 10)
	defer src.Close()

	sample, err := Sniff(src, 4, func(line string) (*logitem.LogItem, error) {
		return fakeParse(line)
	})
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}

	log := &logitem.Log{}
	ins := &recordingInserter{}
	cfg := Config{
		Jobs:      1,
		ChunkSize: 3,
		Parse:     fakeParse,
		Inserter:  ins,
		Prefix:    &sample,
	}
	if err := Run(context.Background(), src, log, cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ins.seen) != 10 {
		t.Fatalf("got %d items, want 10 (sample + remainder)", len(ins.seen))
	}
	for i, got := range ins.seen {
		want := fmt.Sprintf("%d", i)
		if got != want {
			t.Fatalf("item %d = %q, want %q (order not preserved)", i, got, want)
		}
	}
}
