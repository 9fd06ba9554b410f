/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package resume

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loglens/accesscore/logitem"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.gob")
	s, err := Open(path, 0o600)
	require.NoError(t, err)
	_, ok := s.GetLastParse(42)
	require.False(t, ok)
}

func TestOpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir(), 0o600)
	require.Error(t, err)
}

func TestPutFlushOpenRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.gob")
	s, err := Open(path, 0o600)
	require.NoError(t, err)

	lp := logitem.LastParse{TS: 12345, Line: 1000, Size: 4096, Snippet: []byte("abcd"), SnippetLen: 4}
	require.NoError(t, s.PutLastParse(7, lp))
	require.NoError(t, s.Flush())

	reopened, err := Open(path, 0o600)
	require.NoError(t, err)
	got, ok := reopened.GetLastParse(7)
	require.True(t, ok)
	require.Equal(t, lp, got)
}

// TestResumeIdempotence covers spec scenario 6: re-running restore=true
// against an unchanged file (same snippet, same size, same line count)
// must drop every line rather than re-ingesting it.
func TestResumeIdempotence(t *testing.T) {
	snippet := make([]byte, logitem.ReadBytes)
	for i := range snippet {
		snippet[i] = byte('a' + i%26)
	}
	saved := logitem.LastParse{TS: 500, Line: 1000, Size: 65536, Snippet: snippet, SnippetLen: len(snippet)}

	for line := uint64(1); line <= 1000; line++ {
		current := logitem.LastParse{TS: 500, Line: line, Size: 65536, Snippet: snippet, SnippetLen: len(snippet)}
		d := ShouldRestoreFromDisk(true, saved, true, true, current)
		require.Equal(t, Drop, d, "line %d: want Drop on unchanged re-run", line)
	}
}
