/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pipeline

import (
	"fmt"

	"github.com/loglens/accesscore/iolog"
)

// Sniff samples up to n lines from src and parses each with parse, per
// spec.md §4.6's format-sniffing phase: a configured format that
// matches none of a small sample is almost certainly wrong, and the
// caller should abort rather than silently misparse (or silently
// invalidate) the rest of the file. The returned PrefixChunk carries
// the sampled lines so the caller can hand it to Run as cfg.Prefix
// instead of discarding them: the sample must still be parsed and
// inserted like any other line once the format is confirmed usable.
func Sniff(src *iolog.Source, n int, parse LineParser) (sample PrefixChunk, err error) {
	lines, nBytes, eof, rerr := readChunk(src, n)
	sample = PrefixChunk{Lines: lines, NBytes: nBytes, EOF: eof}
	if rerr != nil {
		return sample, rerr
	}
	if len(lines) == 0 {
		return sample, nil
	}
	for _, line := range lines {
		if _, perr := parse(line); perr == nil {
			return sample, nil
		}
	}
	return sample, fmt.Errorf("pipeline: none of the first %d sampled line(s) matched the configured log format", len(lines))
}
