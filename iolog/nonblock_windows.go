//go:build windows

/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iolog

// isEAGAIN is always false on Windows: there is no non-blocking pipe
// read path to retry here.
func isEAGAIN(err error) bool {
	return false
}
