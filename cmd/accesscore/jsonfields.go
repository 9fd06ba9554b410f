/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package main

import (
	"fmt"
	"strings"

	"github.com/loglens/accesscore/logfmt"
)

// compileJSONFields turns a list of "key=subformat" specs (accessconf's
// --json-field) into a logfmt.JSONDirectives, compiling each sub-format
// once at startup just like the plain log-format string.
func compileJSONFields(specs []string) (logfmt.JSONDirectives, error) {
	out := make(logfmt.JSONDirectives, len(specs))
	for _, spec := range specs {
		key, sub, ok := strings.Cut(spec, "=")
		if !ok || key == "" || sub == "" {
			return nil, fmt.Errorf("malformed --json-field %q, want key=subformat", spec)
		}
		directives, err := logfmt.CompileFormat(sub)
		if err != nil {
			return nil, fmt.Errorf("--json-field %q: %w", spec, err)
		}
		out[key] = directives
	}
	return out, nil
}
