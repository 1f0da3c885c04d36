/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures the application's slog logger: a console handler
// (human-readable or JSON), an optional rotating JSON file, and helpers that
// attach component, operation and page attributes.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"mininotion/internal/version"
)

// Options controls logger initialization.
//
// The zero value logs INFO and above in console format to stderr. Console
// output never goes to stdout, which belongs to REPL and replay output.
type Options struct {
	Level     string // debug | info | warn | error
	Format    string // console | json
	AddSource bool
	// File enables an additional JSON log with size-based rotation.
	File string
	// Console receives console output; os.Stderr when nil.
	Console io.Writer
}

// Environment variables read by FromEnv.
const (
	EnvLevel  = "MN_LOG_LEVEL"
	EnvFormat = "MN_LOG_FORMAT"
	EnvSource = "MN_LOG_SOURCE"
	EnvFile   = "MN_LOG_FILE"
)

var (
	current atomic.Pointer[slog.Logger]
	level   = new(slog.LevelVar)
)

// L returns the application logger, initializing it from the environment on first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return current.Load()
}

// Init replaces the application logger and slog's default logger.
func Init(opts Options) {
	level.Set(ParseLevel(opts.Level))
	hopts := &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var sinks fanout
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		sinks = append(sinks, slog.NewJSONHandler(console, hopts))
	} else {
		sinks = append(sinks, newConsoleHandler(console, hopts))
	}
	if path := strings.TrimSpace(opts.File); path != "" {
		rot := &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		sinks = append(sinks, slog.NewJSONHandler(rot, hopts))
	}

	var h slog.Handler = sinks
	if len(sinks) == 1 {
		h = sinks[0]
	}
	l := slog.New(pageHandler{h}).With(
		slog.String("app", "mininotion"),
		slog.String("ver", version.Version),
	)
	current.Store(l)
	slog.SetDefault(l)
}

// FromEnv builds Options from the MN_LOG_* environment variables.
func FromEnv() Options {
	src := strings.ToLower(strings.TrimSpace(os.Getenv(EnvSource)))
	return Options{
		Level:     os.Getenv(EnvLevel),
		Format:    os.Getenv(EnvFormat),
		AddSource: src == "1" || src == "true" || src == "on" || src == "yes",
		File:      os.Getenv(EnvFile),
	}
}

// ParseLevel maps a level name to a slog level. Unknown names mean INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithComponent returns the application logger tagged with a component name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation tags l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type pageKey struct{}

// ContextWithPage returns a context whose log records carry a "page" attribute.
func ContextWithPage(ctx context.Context, title string) context.Context {
	return context.WithValue(ctx, pageKey{}, title)
}

func pageFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	title, _ := ctx.Value(pageKey{}).(string)
	return title
}
