/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package main

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/loglens/accesscore/logitem"
)

// jsonlInserter is the default downstream.Inserter for the standalone
// CLI: it writes one line of JSON per surviving LogItem to w. Kept
// outside package downstream deliberately, since that package only
// declares the interfaces a real storage/aggregation engine wires up
// (see downstream/downstream.go); this is accesscore's own stand-in.
type jsonlInserter struct {
	mu sync.Mutex
	w  io.Writer
}

func (j *jsonlInserter) Process(item *logitem.LogItem) error {
	if !item.Valid() {
		return nil
	}
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	_, err = j.w.Write([]byte("\n"))
	return err
}
