/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package resume

import (
	"bytes"
	"sync/atomic"

	"github.com/loglens/accesscore/logitem"
)

// Decision is the should_restore_from_disk verdict for a parsed line.
type Decision int

const (
	Process Decision = iota
	Drop
)

// ShouldRestoreFromDisk implements spec.md §4.5's decision table
// exactly: given whether a restore was requested, the saved LastParse
// (if any), and the current log's observed {ts, line, size, snippet},
// decide whether to drop the line as already-ingested.
//
// hasInode is false for pipes/stdin, per spec.md §3's "LastParse is
// keyed by inode (or 0 for pipes)" and §4.5's inode-less branch.
func ShouldRestoreFromDisk(restoreRequested bool, saved logitem.LastParse, hasSavedTS bool, hasInode bool, current logitem.LastParse) Decision {
	if !restoreRequested || !hasSavedTS {
		return Process
	}

	sameSnippet := bytes.Equal(saved.Snippet[:saved.SnippetLen], current.Snippet[:current.SnippetLen])
	if sameSnippet {
		if current.Size > saved.Size && current.Line >= saved.Line {
			return Process
		}
		return Drop
	}

	if !hasInode && current.TS <= saved.TS {
		return Drop
	}
	if current.TS > saved.TS {
		return Process
	}
	if current.Size < saved.Size && current.TS == saved.TS {
		return Process
	}
	return Drop
}

// FetchMaxTS performs the atomic fetch-max CAS loop spec.md §9 calls
// out to preserve: it updates *ts to candidate
// only if candidate is greater, retrying under concurrent writers
// instead of taking a lock.
func FetchMaxTS(ts *atomic.Int64, candidate int64) {
	for {
		cur := ts.Load()
		if candidate <= cur {
			return
		}
		if ts.CompareAndSwap(cur, candidate) {
			return
		}
	}
}
