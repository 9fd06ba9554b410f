//go:build windows

/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iolog

import "os"

// fileIdentity has no inode on Windows; pipes and regular files alike
// fall back to treating the source as inode-less, matching spec.md
// §4.5's "no inode (pipe)" branch of the resume decision table.
func fileIdentity(fi os.FileInfo) (uint64, bool) {
	return 0, false
}
