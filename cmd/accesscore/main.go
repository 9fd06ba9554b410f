/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command accesscore parses web-access logs per a configured
// log-format directive string (or one JSON object per line), applies
// the ignore/enrichment policy, and writes each surviving record as a
// line of JSON to stdout. Its main() shape is grounded on
// ingesters/regexFile/main.go and ingesters/multiFile/main.go: parse
// flags, open the input(s), run the ingest loop, report a summary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/loglens/accesscore/classify"
	"github.com/loglens/accesscore/datefmt"
	"github.com/loglens/accesscore/downstream"
	"github.com/loglens/accesscore/internal/accessconf"
	"github.com/loglens/accesscore/internal/logging"
	"github.com/loglens/accesscore/iolog"
	"github.com/loglens/accesscore/logfmt"
	"github.com/loglens/accesscore/logitem"
	"github.com/loglens/accesscore/pipeline"
	"github.com/loglens/accesscore/resume"
)

func main() {
	cmd := accessconf.NewCommand(run)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *accessconf.Config) error {
	lvl := parseLevel(cfg.LogLevel)
	logger := logging.New(os.Stderr, "accesscore", lvl)

	dateFmt, err := datefmt.New(datefmt.Config{
		DateFormat:    cfg.DateFormat,
		TimeFormat:    cfg.TimeFormat,
		DateNumFormat: cfg.DateNumFormat,
	})
	if err != nil {
		return fmt.Errorf("compiling date/time format: %w", err)
	}

	var directives []logfmt.Directive
	var jsonDirectives logfmt.JSONDirectives
	if cfg.JSONFormat {
		if jsonDirectives, err = compileJSONFields(cfg.JSONFields); err != nil {
			return fmt.Errorf("compiling --json-field: %w", err)
		}
	} else if directives, err = logfmt.CompileFormat(cfg.Format); err != nil {
		return fmt.Errorf("compiling log-format: %w", err)
	}

	policy, err := classify.Compile(classify.Config{
		IgnoreCrawlers:  cfg.IgnoreCrawlers,
		CrawlersOnly:    cfg.CrawlersOnly,
		IgnoreQstr:      cfg.IgnoreQstr,
		Code444As404:    cfg.Code444As404,
		CrawlerAgents:   cfg.CrawlerAgents,
		ExcludedIPs:     cfg.ExcludedIPs,
		IgnoredReferers: cfg.IgnoredReferers,
		StaticAssets:    cfg.StaticAssets,
		IgnoredStatus:   cfg.IgnoredStatus,
	})
	if err != nil {
		return fmt.Errorf("compiling classification policy: %w", err)
	}

	var store *resume.Store
	if cfg.Restore || cfg.StateFile != "" {
		if cfg.StateFile == "" {
			return fmt.Errorf("--state-file is required when --restore is set")
		}
		if store, err = resume.Open(cfg.StateFile, 0o600); err != nil {
			return fmt.Errorf("opening resume state %s: %w", cfg.StateFile, err)
		}
	}

	state := &accessconf.RuntimeState{}
	classifier := downstream.Classifier(downstream.NopClassifier{})
	parseCfg := &logfmt.Config{
		DoubleDecode:   cfg.DoubleDecode,
		StrictStatus:   cfg.StrictStatus,
		DateDelimCount: datefmt.SpaceCount(cfg.DateFormat),
		DateTime:       dateFmt,
		Classifier:     classifier,
		BandwidthSeen:  &state.BandwidthSeen,
		ServeTimeSeen:  &state.ServeUsecsSeen,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		state.RequestStop()
		cancel()
	}()

	ins := &jsonlInserter{w: os.Stdout}
	logs := logitem.NewLogs(cfg.Files)

	var processed, invalid uint64
	for i, name := range cfg.Files {
		logs.SetCurrent(i)
		n, v, err := ingestOne(ctx, name, logs.All()[i], directives, jsonDirectives, parseCfg, policy, classifier, ins, store, cfg, state, logger)
		atomic.AddUint64(&processed, n)
		atomic.AddUint64(&invalid, v)
		if err != nil {
			logger.Errorf("ingesting %s: %v", name, err)
		}
		if state.StopRequested() {
			break
		}
	}

	if store != nil {
		if err := store.Flush(); err != nil {
			logger.Errorf("flushing resume state: %v", err)
		}
	}
	logger.Infof("processed=%d invalid=%d", processed, invalid)
	return nil
}

func ingestOne(ctx context.Context, name string, log *logitem.Log, directives []logfmt.Directive, jsonDirectives logfmt.JSONDirectives, parseCfg *logfmt.Config, policy *classify.Policy, cls downstream.Classifier, ins downstream.Inserter, store *resume.Store, cfg *accessconf.Config, state *accessconf.RuntimeState, logger *logging.Logger) (processed, invalid uint64, err error) {
	src, err := iolog.Open(name)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	log.IsPipe = src.IsPipe
	log.Inode = src.Inode
	log.Size = src.Size
	log.StartTime = time.Now()
	log.Snippet = src.Snippet().Snippet

	if store != nil {
		if saved, ok := store.GetLastParse(src.Inode); ok {
			log.RestorePoint = saved
		}
	}

	start := time.Now()
	parse := func(line string) (*logitem.LogItem, error) {
		if cfg.JSONFormat {
			return logfmt.ParseJSONLine(line, jsonDirectives, start, parseCfg)
		}
		return logfmt.ParseLine(directives, line, start, parseCfg)
	}
	classifyFn := func(li *logitem.LogItem) {
		classify.Apply(li, policy, cls)
	}

	var resumeGate pipeline.ResumeGate
	if store != nil {
		hasSavedTS := log.RestorePoint.TS != 0 || log.RestorePoint.SnippetLen != 0
		resumeGate = func(li *logitem.LogItem) bool {
			current := logitem.LastParse{
				TS:         li.Dt.Unix(),
				Line:       log.Processed + log.Invalid,
				Size:       log.Size,
				Snippet:    log.Snippet,
				SnippetLen: len(log.Snippet),
			}
			d := resume.ShouldRestoreFromDisk(cfg.Restore, log.RestorePoint, hasSavedTS, src.HasInode, current)
			return d == resume.Drop
		}
	}

	sample, err := pipeline.Sniff(src, cfg.NumTests, parse)
	if err != nil {
		return 0, 0, fmt.Errorf("sniffing log format for %s: %w", name, err)
	}

	pcfg := pipeline.Config{
		Jobs:          cfg.Jobs,
		ChunkSize:     cfg.ChunkSize,
		Parse:         parse,
		Classify:      classifyFn,
		Resume:        resumeGate,
		Inserter:      ins,
		StopRequested: state.StopRequested,
		Prefix:        &sample,
	}
	if err := pipeline.Run(ctx, src, log, pcfg); err != nil {
		return log.Processed, log.Invalid, err
	}

	if store != nil {
		if err := store.PutLastParse(src.Inode, log.LastParse); err != nil {
			logger.Warnf("saving resume state for %s: %v", name, err)
		}
	}
	return log.Processed, log.Invalid, nil
}

func parseLevel(s string) logging.Level {
	switch s {
	case "DEBUG":
		return logging.DEBUG
	case "WARN":
		return logging.WARN
	case "ERROR":
		return logging.ERROR
	case "CRITICAL":
		return logging.CRITICAL
	case "OFF":
		return logging.OFF
	default:
		return logging.INFO
	}
}
