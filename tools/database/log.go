// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"log"
	"time"
)

// Log prints messages prefixed by the time elapsed since the tool started
// and, for messages about a single column, the name of that column. Logs
// derived by ForColumn share the clock and the output of their parent.
type Log struct {
	start  time.Time
	logger *log.Logger
	column string
}

func NewLog() *Log {
	return &Log{start: time.Now(), logger: log.Default()}
}

// ForColumn returns a log whose messages are attributed to the given column.
func (l *Log) ForColumn(column fmt.Stringer) *Log {
	return &Log{start: l.start, logger: l.logger, column: column.String()}
}

func (l *Log) Print(msg string) {
	t := uint64(time.Since(l.start).Seconds())
	if l.column == "" {
		l.logger.Printf("[t=%4d:%02d] - %s\n", t/60, t%60, msg)
		return
	}
	l.logger.Printf("[t=%4d:%02d] - %s: %s\n", t/60, t%60, l.column, msg)
}

func (l *Log) Printf(format string, v ...any) {
	l.Print(fmt.Sprintf(format, v...))
}

// copyProgress reports the progress of copying the entries of a column. A
// line is logged whenever another window of entries has been copied, giving
// the totals so far and the throughput since the previous line. It is not
// safe for concurrent use; parallel copies use one tracker each.
type copyProgress struct {
	log     *Log
	window  int
	entries int
	bytes   int

	lastTime    time.Time
	lastEntries int
	lastBytes   int
}

func newCopyProgress(log *Log, window int) *copyProgress {
	return &copyProgress{log: log, window: window, lastTime: time.Now()}
}

// Copied records an entry of the given key and value size.
func (p *copyProgress) Copied(size int) {
	p.entries++
	p.bytes += size
	if p.entries-p.lastEntries < p.window {
		return
	}
	now := time.Now()
	seconds := max(now.Sub(p.lastTime).Seconds(), 1e-9)
	p.log.Printf("copied %d entries, %s, %.0f entries/s, %s/s",
		p.entries, formatBytes(float64(p.bytes)),
		float64(p.entries-p.lastEntries)/seconds,
		formatBytes(float64(p.bytes-p.lastBytes)/seconds))
	p.lastTime = now
	p.lastEntries = p.entries
	p.lastBytes = p.bytes
}

// Done logs the totals of the finished copy.
func (p *copyProgress) Done() {
	p.log.Printf("finished, %d entries, %s copied", p.entries, formatBytes(float64(p.bytes)))
}

func (p *copyProgress) Entries() int {
	return p.entries
}

func formatBytes(bytes float64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%.0f B", bytes)
	}
	exp := 0
	for bytes >= unit*unit && exp < 3 {
		bytes /= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", bytes/unit, "KMGT"[exp])
}
