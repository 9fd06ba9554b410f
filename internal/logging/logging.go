/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package logging is a leveled, RFC5424-shaped logger adapted from
// github.com/gravwell/gravwell/v3's ingest/log (logging.go): same
// level set, same rfc5424.Message envelope via
// github.com/crewjam/rfc5424, simplified to a single io.Writer since a
// CLI tool has no relay/multi-writer fan-out to manage.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

// Level mirrors ingest/log's level set.
type Level int

const (
	OFF Level = iota
	DEBUG
	INFO
	WARN
	ERROR
	CRITICAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "OFF"
	}
}

func (l Level) priority() rfc5424.Priority {
	switch l {
	case DEBUG:
		return rfc5424.User | rfc5424.Debug
	case INFO:
		return rfc5424.User | rfc5424.Info
	case WARN:
		return rfc5424.User | rfc5424.Warning
	case ERROR:
		return rfc5424.User | rfc5424.Error
	case CRITICAL:
		return rfc5424.User | rfc5424.Crit
	default:
		return rfc5424.User | rfc5424.Info
	}
}

// Logger writes leveled RFC5424 lines to a single io.Writer.
type Logger struct {
	mu       sync.Mutex
	w        io.Writer
	lvl      Level
	hostname string
	appname  string
}

// New returns a Logger writing to w at the given minimum level.
// Appname identifies the process in the RFC5424 envelope; the hostname
// is always resolved via os.Hostname.
func New(w io.Writer, appname string, lvl Level) *Logger {
	host, _ := os.Hostname()
	if w == nil {
		w = os.Stderr
	}
	return &Logger{w: w, lvl: lvl, hostname: host, appname: trim(appname, 48)}
}

func trim(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func (l *Logger) output(lvl Level, msgid string, f string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lvl == OFF || lvl < l.lvl {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(f, args...), "\n\t\r")
	m := rfc5424.Message{
		Priority:  lvl.priority(),
		Timestamp: time.Now(),
		Hostname:  trim(l.hostname, 255),
		AppName:   l.appname,
		MessageID: trim(msgid, 32),
		Message:   []byte(msg),
	}
	b, err := m.MarshalBinary()
	if err != nil {
		return
	}
	io.WriteString(l.w, string(b))
	io.WriteString(l.w, "\n")
}

func (l *Logger) Debugf(f string, args ...interface{})    { l.output(DEBUG, "debug", f, args...) }
func (l *Logger) Infof(f string, args ...interface{})     { l.output(INFO, "info", f, args...) }
func (l *Logger) Warnf(f string, args ...interface{})     { l.output(WARN, "warn", f, args...) }
func (l *Logger) Errorf(f string, args ...interface{})    { l.output(ERROR, "error", f, args...) }
func (l *Logger) Criticalf(f string, args ...interface{}) { l.output(CRITICAL, "crit", f, args...) }
