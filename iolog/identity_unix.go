//go:build !windows

/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iolog

import (
	"os"
	"syscall"
)

// fileIdentity returns the platform inode number. On the Windows build
// (identity_windows.go) there is no inode, so the source is treated as
// inode-less and falls into the resume gate's pipe branch instead —
// the same generalization the teacher's own FileId{Major,Minor}
// abstraction makes (filewatch/followers.go) for platforms lacking
// inode semantics.
func fileIdentity(fi os.FileInfo) (uint64, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Ino), true
}
