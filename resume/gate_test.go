/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package resume

import (
	"sync/atomic"
	"testing"

	"github.com/loglens/accesscore/logitem"
)

func TestShouldRestoreFromDiskNoRestoreRequested(t *testing.T) {
	d := ShouldRestoreFromDisk(false, logitem.LastParse{}, true, true, logitem.LastParse{})
	if d != Process {
		t.Errorf("Decision = %v, want Process", d)
	}
}

func TestShouldRestoreFromDiskNoSavedTS(t *testing.T) {
	d := ShouldRestoreFromDisk(true, logitem.LastParse{}, false, true, logitem.LastParse{})
	if d != Process {
		t.Errorf("Decision = %v, want Process (first run, nothing saved)", d)
	}
}

func TestShouldRestoreFromDiskSameSnippetGrownFile(t *testing.T) {
	snip := []byte("same-snippet-bytes")
	saved := logitem.LastParse{Size: 100, Line: 10, Snippet: snip, SnippetLen: len(snip)}
	current := logitem.LastParse{Size: 200, Line: 10, Snippet: snip, SnippetLen: len(snip)}
	d := ShouldRestoreFromDisk(true, saved, true, true, current)
	if d != Process {
		t.Errorf("Decision = %v, want Process (same snippet, file grew)", d)
	}
}

func TestShouldRestoreFromDiskSameSnippetShrunkFile(t *testing.T) {
	snip := []byte("same-snippet-bytes")
	saved := logitem.LastParse{Size: 200, Line: 10, Snippet: snip, SnippetLen: len(snip)}
	current := logitem.LastParse{Size: 100, Line: 10, Snippet: snip, SnippetLen: len(snip)}
	d := ShouldRestoreFromDisk(true, saved, true, true, current)
	if d != Drop {
		t.Errorf("Decision = %v, want Drop (same snippet, file did not grow)", d)
	}
}

func TestShouldRestoreFromDiskDifferentSnippetNewerTS(t *testing.T) {
	saved := logitem.LastParse{TS: 1000, Snippet: []byte("old"), SnippetLen: 3}
	current := logitem.LastParse{TS: 2000, Snippet: []byte("new"), SnippetLen: 3}
	d := ShouldRestoreFromDisk(true, saved, true, true, current)
	if d != Process {
		t.Errorf("Decision = %v, want Process (rotated file, newer timestamp)", d)
	}
}

func TestShouldRestoreFromDiskDifferentSnippetNoInodeOlderTS(t *testing.T) {
	saved := logitem.LastParse{TS: 2000, Snippet: []byte("old"), SnippetLen: 3}
	current := logitem.LastParse{TS: 1000, Snippet: []byte("new"), SnippetLen: 3}
	d := ShouldRestoreFromDisk(true, saved, true, false, current)
	if d != Drop {
		t.Errorf("Decision = %v, want Drop (pipe/stdin, no inode, stale timestamp)", d)
	}
}

func TestShouldRestoreFromDiskDifferentSnippetSameTSSmallerSize(t *testing.T) {
	saved := logitem.LastParse{TS: 1000, Size: 500, Snippet: []byte("old"), SnippetLen: 3}
	current := logitem.LastParse{TS: 1000, Size: 100, Snippet: []byte("new"), SnippetLen: 3}
	d := ShouldRestoreFromDisk(true, saved, true, true, current)
	if d != Process {
		t.Errorf("Decision = %v, want Process (same ts, smaller size looks like a fresh rotation)", d)
	}
}

func TestShouldRestoreFromDiskDifferentSnippetSameTSSameSize(t *testing.T) {
	saved := logitem.LastParse{TS: 1000, Size: 500, Snippet: []byte("old"), SnippetLen: 3}
	current := logitem.LastParse{TS: 1000, Size: 500, Snippet: []byte("new"), SnippetLen: 3}
	d := ShouldRestoreFromDisk(true, saved, true, true, current)
	if d != Drop {
		t.Errorf("Decision = %v, want Drop", d)
	}
}

func TestFetchMaxTSOnlyAdvancesOnGreater(t *testing.T) {
	var ts atomic.Int64
	ts.Store(100)

	FetchMaxTS(&ts, 50)
	if ts.Load() != 100 {
		t.Errorf("ts = %d, want unchanged 100 (candidate smaller)", ts.Load())
	}

	FetchMaxTS(&ts, 200)
	if ts.Load() != 200 {
		t.Errorf("ts = %d, want 200", ts.Load())
	}
}
