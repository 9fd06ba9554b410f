/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logfmt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/loglens/accesscore/logitem"
)

// JSONDirectives maps a JSON object key to the compiled sub-format
// driving that key's value, per spec.md §4.3.
type JSONDirectives map[string][]Directive

// ParseJSONLine walks a single-level JSON object and, for each
// (key, value) pair with a configured sub-format, feeds value through
// the directive engine as if it were its own log line. Unknown keys
// are ignored; empty values are skipped. Grounded on the
// parseJSONString/parseValue recursion shape of the reference goaccess
// format port, adapted to a flat (non-nested) contract.
func ParseJSONLine(line string, directives JSONDirectives, start time.Time, cfg *Config) (*logitem.LogItem, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return nil, newParseError(MalformedDirective, 0, "not a JSON object: "+err.Error())
	}

	li := logitem.NewLogItem(start)
	for key, sub := range directives {
		raw, present := obj[key]
		if !present {
			continue
		}
		val, err := jsonScalar(raw)
		if err != nil {
			return nil, newParseError(MalformedDirective, 0, fmt.Sprintf("key %q: %s", key, err))
		}
		if val == "" {
			continue
		}
		if err := runDirectives(li, sub, val, cfg); err != nil {
			li.Errstr = err.Error()
			return li, err
		}
	}
	finalizeLogItem(li)
	return li, nil
}

// jsonScalar renders a JSON value (string or number; anything else is
// rejected, matching the "not nested" contract) as plain text for the
// directive engine to consume.
func jsonScalar(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("value is not a scalar")
}
