/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package accessconf

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// BuildFlags registers accesscore's recognized options (spec.md §6)
// onto fs and returns a Config whose fields are populated once fs has
// been parsed (fs.Parse, or cobra's own Execute for a *cobra.Command's
// embedded flag set).
func BuildFlags(fs *pflag.FlagSet) *Config {
	c := &Config{}
	fs.StringArrayVarP(&c.Files, "file", "i", nil, "input log file (repeatable); use \"-\" for stdin")
	fs.StringVar(&c.Format, "log-format", "", "log-format directive string")
	fs.BoolVar(&c.JSONFormat, "json", false, "treat input as one JSON object per line")
	fs.StringArrayVar(&c.JSONFields, "json-field", nil, `"key=subformat" mapping a JSON object key to its sub-format (repeatable); only used with --json`)
	fs.StringVar(&c.DateFormat, "date-format", "", "strptime-style date format matching %d tokens")
	fs.StringVar(&c.TimeFormat, "time-format", "", "strptime-style time format matching %t tokens")
	fs.StringVar(&c.DateNumFormat, "date-num-format", "%Y%m%d", "strftime-style numeric date format")

	fs.IntVar(&c.Jobs, "jobs", 1, "number of parser workers")
	fs.IntVar(&c.ChunkSize, "chunk-size", 512, "lines per chunk handed to a worker")
	fs.IntVar(&c.NumTests, "num-tests", 4, "lines sampled when sniffing the format")

	fs.BoolVar(&c.DoubleDecode, "double-decode", false, "percent-decode URL fields twice")
	fs.BoolVar(&c.StrictStatus, "strict-status", true, "reject status codes outside 100-599")

	fs.BoolVar(&c.IgnoreCrawlers, "ignore-crawlers", false, "classify known crawler agents as IgnorePanel")
	fs.BoolVar(&c.CrawlersOnly, "crawlers-only", false, "keep only known crawler agents")
	fs.BoolVar(&c.IgnoreQstr, "ignore-qstr", false, "strip query strings from the request field")
	fs.BoolVar(&c.Code444As404, "code-444-as-404", false, "treat status 444 as 404 for is_404")

	fs.StringArrayVar(&c.CrawlerAgents, "crawler-agent", nil, "glob pattern matched against User-Agent (repeatable)")
	fs.StringArrayVar(&c.ExcludedIPs, "exclude-ip", nil, "glob pattern matched against the host field (repeatable)")
	fs.StringArrayVar(&c.IgnoredReferers, "ignore-referer", nil, "glob pattern matched against the referer (repeatable)")
	fs.StringArrayVar(&c.StaticAssets, "static-file", nil, "glob pattern matched against the request path (repeatable)")
	fs.IntSliceVar(&c.IgnoredStatus, "ignore-status", nil, "HTTP status code to treat as IgnorePanel (repeatable)")

	fs.BoolVar(&c.Restore, "restore", false, "resume from the persisted dedup state")
	fs.StringVar(&c.StateFile, "state-file", "", "path to the dedup/resume state file")

	fs.StringVar(&c.LogLevel, "log-level", "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR, CRITICAL)")
	return c
}

// NewCommand wraps BuildFlags in a *cobra.Command, so accesscore gets
// cobra's usage/help rendering and flag parsing for free; run is
// invoked once args are parsed and cfg validated.
func NewCommand(run func(cfg *Config) error) *cobra.Command {
	var cfg *Config
	cmd := &cobra.Command{
		Use:   "accesscore",
		Short: "Parse and classify web access logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cfg = BuildFlags(cmd.Flags())
	return cmd
}
