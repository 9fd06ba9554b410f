/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package accessconf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func baseConfig() *Config {
	return &Config{
		Files:         []string{"access.log"},
		Format:        `%h %^ %^ [%d:%t %^] "%r" %s %b`,
		DateFormat:    "%d/%b/%Y",
		DateNumFormat: "%Y%m%d",
	}
}

func TestValidateRequiresAtLeastOneFile(t *testing.T) {
	c := baseConfig()
	c.Files = nil
	require.Error(t, c.Validate())
}

func TestValidateRequiresFormatUnlessJSON(t *testing.T) {
	c := baseConfig()
	c.Format = ""
	require.Error(t, c.Validate())

	c.JSONFormat = true
	c.JSONFields = []string{"req=%r"}
	require.NoError(t, c.Validate())
}

func TestValidateRequiresJSONFieldsWhenJSON(t *testing.T) {
	c := baseConfig()
	c.Format = ""
	c.JSONFormat = true
	require.Error(t, c.Validate())
}

func TestValidateRequiresDateFormats(t *testing.T) {
	c := baseConfig()
	c.DateFormat = ""
	require.Error(t, c.Validate())

	c = baseConfig()
	c.DateNumFormat = ""
	require.Error(t, c.Validate())
}

func TestValidateFillsDefaults(t *testing.T) {
	c := baseConfig()
	c.Jobs = 0
	c.ChunkSize = 0
	c.NumTests = 0
	require.NoError(t, c.Validate())
	require.Equal(t, 1, c.Jobs)
	require.Equal(t, 512, c.ChunkSize)
	require.Equal(t, 4, c.NumTests)
}

func TestRuntimeStateStopRequested(t *testing.T) {
	var rs RuntimeState
	require.False(t, rs.StopRequested())
	rs.RequestStop()
	require.True(t, rs.StopRequested())
}

func TestBuildFlagsRegistersAllOptions(t *testing.T) {
	cmd := NewCommand(func(cfg *Config) error { return nil })
	fs := cmd.Flags()
	for _, name := range []string{
		"file", "log-format", "json", "json-field", "date-format", "time-format",
		"date-num-format", "jobs", "chunk-size", "num-tests", "double-decode",
		"strict-status", "ignore-crawlers", "crawlers-only", "ignore-qstr",
		"code-444-as-404", "crawler-agent", "exclude-ip", "ignore-referer",
		"static-file", "ignore-status", "restore", "state-file", "log-level",
	} {
		require.NotNilf(t, fs.Lookup(name), "flag %q not registered", name)
	}
}
