/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics in the binaries into a logged stack, a crash
// report file and exit code 2.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "mininotion/internal/log"
	"mininotion/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Workspace is the part of the editor state a crash report describes.
// Page content is never written to a report.
type Workspace interface {
	Titles() []string
	ActiveTitle() (string, bool)
	UndoDepth() int
}

// Recover captures a panic, logs an error with stacktrace, writes a crash
// report and exits with code 2. ws may be nil.
//
// Usage: defer crash.Recover(sess)
func Recover(ws Workspace) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		msg := "A fatal error occurred."
		if path, err := writeReport(ws, r, stack); err != nil {
			l.Error("crash report not written", slog.Any("err", err))
		} else {
			msg += " A crash report was saved to: " + path
		}
		_, _ = fmt.Fprintf(os.Stderr, "%s\nVersion: %s\nOS/Arch: %s/%s\n", msg, version.String(), runtime.GOOS, runtime.GOARCH)
		exitFn(2)
	}
}

func reportDir() string {
	return filepath.Join(os.TempDir(), "mininotion")
}

func writeReport(ws Workspace, panicVal any, stack []byte) (string, error) {
	dir := reportDir()
	path := filepath.Join(dir, "crash-"+time.Now().Format("20060102-150405")+".log")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, fmt.Errorf("crash report dir: %w", err)
	}
	if err := os.WriteFile(path, renderReport(ws, panicVal, stack), 0o644); err != nil {
		return path, fmt.Errorf("write crash report: %w", err)
	}
	return path, nil
}

// renderReport formats the report. Of the workspace it records only counts
// and the active title.
func renderReport(ws Workspace, panicVal any, stack []byte) []byte {
	var b bytes.Buffer
	b.WriteString("Mini Notion Crash Report\n")
	fmt.Fprintf(&b, "Timestamp: %s\nVersion: %s\nOS/Arch: %s/%s\n",
		time.Now().Format(time.RFC3339), version.String(), runtime.GOOS, runtime.GOARCH)
	if ws != nil {
		active := "none"
		if title, ok := ws.ActiveTitle(); ok {
			active = fmt.Sprintf("%q", title)
		}
		fmt.Fprintf(&b, "Pages: %d\nActive: %s\nUndoDepth: %d\n", len(ws.Titles()), active, ws.UndoDepth())
	}
	fmt.Fprintf(&b, "\nPanic: %v\n\nStack:\n%s\n", panicVal, stack)
	return b.Bytes()
}
