/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pipeline

import (
	"errors"
	"io"

	"github.com/loglens/accesscore/iolog"
	"github.com/loglens/accesscore/logitem"
)

// readChunk pulls up to n lines from src. eof reports whether src was
// exhausted while filling this chunk; a short, non-empty final chunk
// with eof set is still delivered for parsing.
func readChunk(src *iolog.Source, n int) (lines []string, nBytes uint64, eof bool, err error) {
	lines = make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, read, rerr := src.ReadLine()
		if read > 0 {
			nBytes += uint64(read)
		}
		if line != "" || read > 0 {
			lines = append(lines, line)
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return lines, nBytes, true, nil
			}
			return lines, nBytes, true, rerr
		}
	}
	return lines, nBytes, false, nil
}

// parseChunk parses and classifies each line in lines independently;
// a worker's only job is to populate a LogItem, never to insert it.
// startLine is the 0-based input line number of lines[0], used for
// error reporting and for the line recorded in Log.LastParse.
func parseChunk(lines []string, startLine uint64, cfg Config) []workItem {
	items := make([]workItem, len(lines))
	for i, line := range lines {
		lineNo := startLine + uint64(i)
		item, err := cfg.Parse(line)
		if err != nil {
			items[i] = workItem{lineNo: lineNo, item: item, err: err}
			continue
		}
		if cfg.Classify != nil {
			cfg.Classify(item)
		}
		items[i] = workItem{lineNo: lineNo, item: item}
	}
	return items
}

// drain hands a chunk's items to the inserter in order, applying the
// resume gate and tallying processed/invalid counts on log. This is
// the only function in the package that calls cfg.Inserter.Process,
// realizing the "single inserter goroutine" ownership-transfer
// invariant: by construction, runInline's caller goroutine and
// runPooled's reorder loop are each the sole caller of drain.
func drain(items []workItem, log *logitem.Log, cfg Config) {
	for _, wi := range items {
		if wi.err != nil {
			if !timestampExtractable(wi.item) {
				continue
			}
			if cfg.Resume != nil && cfg.Resume(wi.item) {
				continue
			}
			log.CountInvalid(wi.lineNo, wi.err.Error())
			continue
		}
		if cfg.Resume != nil && cfg.Resume(wi.item) {
			continue
		}
		if err := cfg.Inserter.Process(wi.item); err != nil {
			log.CountInvalid(wi.lineNo, err.Error())
			continue
		}
		log.CountProcessed()
		log.AdvanceLastParse(wi.item.Dt.Unix(), wi.lineNo+1)
	}
}

// timestampExtractable reports whether item carries a usable date, the
// same gate the resume subsystem keys on. A parse error can still leave
// a partially populated item (directives run in order and an later one
// failed); if no date was ever extracted, the invalid-line count is
// suppressed rather than risk double-counting the same unresumable line
// across runs.
func timestampExtractable(item *logitem.LogItem) bool {
	return item != nil && item.Date != ""
}
