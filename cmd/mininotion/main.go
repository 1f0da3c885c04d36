/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"mininotion/internal/config"
	"mininotion/internal/crash"
	"mininotion/internal/export"
	applog "mininotion/internal/log"
	"mininotion/internal/replay"
	"mininotion/internal/session"
	"mininotion/internal/ui"
	"mininotion/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Mini Notion — a small page workspace")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mininotion version|-v|--version           Show version")
	fmt.Fprintln(w, "  mininotion repl [options]                 Interactive command session on stdin")
	fmt.Fprintln(w, "  mininotion replay [options] <script.json> [out.pdf]")
	fmt.Fprintln(w, "                                            Run a replay script, optionally export the result")
	fmt.Fprintln(w, "  mininotion ui                             Launch desktop UI (build with -tags fyne)")
	fmt.Fprintln(w, "  mininotion config [init]                  Show effective configuration or write defaults")
	fmt.Fprintln(w, "  mininotion help                           Show this help and the command list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options for repl and replay:")
	fmt.Fprintln(w, "  --policy=replace|guard|allow-empty        What deleting the last page does")
	fmt.Fprintln(w, "  --title-prefix=<text>                     Prefix of generated page titles")
	fmt.Fprintln(w, "  --page-size=A4|Letter|Legal               PDF page size for export")
	fmt.Fprintln(w, "  --font-size=<pt>                          PDF body font size")
	fmt.Fprintln(w, "  --no-page-numbers                         Omit PDF page numbers")
	fmt.Fprintln(w, "  --pdf-title=<text>                        PDF document title")
	fmt.Fprintln(w, "  --pdf-page=<n>                            Export only page n (repeatable)")
}

// sessionOptions are the command line options of repl and replay, for go-flags to parse into.
type sessionOptions struct {
	Policy        string  `long:"policy" description:"last-page policy" choice:"replace" choice:"guard" choice:"allow-empty"`
	TitlePrefix   string  `long:"title-prefix" description:"prefix of generated page titles" value-name:"<text>"`
	PageSize      string  `long:"page-size" description:"PDF page size" choice:"A4" choice:"Letter" choice:"Legal" default:"A4"`
	FontSize      float64 `long:"font-size" description:"PDF body font size in points" default:"11"`
	NoPageNumbers bool    `long:"no-page-numbers" description:"omit PDF page numbers"`
	PDFTitle      string  `long:"pdf-title" description:"PDF document title" value-name:"<text>"`
	PDFPages      []int   `long:"pdf-page" description:"export only this page, 1-based (repeatable)" value-name:"<n>"`
}

// parseSessionOptions parses args, applies overrides to cfg and returns the positional arguments.
func parseSessionOptions(cfg *config.AppConfig, args []string) (sessionOptions, []string, error) {
	var opts sessionOptions
	rest, err := flags.NewParser(&opts, flags.PassDoubleDash).ParseArgs(args)
	if err != nil {
		return opts, nil, err
	}
	if opts.Policy != "" {
		cfg.Workspace.LastPagePolicy = opts.Policy
	}
	if opts.TitlePrefix != "" {
		cfg.Workspace.TitlePrefix = opts.TitlePrefix
	}
	return opts, rest, nil
}

func (o sessionOptions) pdf() export.PDFOptions {
	opt := export.PDFOptions{Title: o.PDFTitle, PageSize: o.PageSize, FontSize: o.FontSize, PageNumbers: !o.NoPageNumbers}
	for _, n := range o.PDFPages {
		opt.Pages = append(opt.Pages, n-1)
	}
	return opt
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	applog.Init(cfg.Logging.LogOptions())
	if err := cfg.Validate(); err != nil {
		applog.WithComponent("cli").Warn("invalid configuration, using defaults where needed", slog.Any("err", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	os.Exit(code)
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, cfg config.AppConfig, args []string, in io.Reader, out io.Writer) int {
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(out)
		return 0
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(out, version.String())
		return 0
	case "help", "-h", "--help":
		usage(out)
		fmt.Fprintln(out)
		fmt.Fprint(out, replay.HelpText())
		return 0
	case "repl":
		opts, _, err := parseSessionOptions(&cfg, args[1:])
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			return 2
		}
		sess := session.New(cfg.SessionOptions())
		defer crash.Recover(sess)
		r := replay.NewRunner(sess, out)
		r.SetPDFOptions(opts.pdf())
		defer func() { _ = r.Close() }()
		sess.Bootstrap()
		if err := r.RunREPL(ctx, in); err != nil && ctx.Err() == nil {
			l.Error("repl failed", slog.Any("err", err))
			fmt.Fprintln(out, "Error:", err)
			return 1
		}
		return 0
	case "replay":
		opts, rest, err := parseSessionOptions(&cfg, args[1:])
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			return 2
		}
		if len(rest) < 1 {
			fmt.Fprintln(out, "replay requires <script.json>")
			usage(out)
			return 2
		}
		return replayScript(ctx, cfg, opts, rest[0], optionalArg(rest, 1), out)
	case "ui":
		if err := ui.Run(cfg); err != nil {
			fmt.Fprintln(out, "Error:", err)
			return 1
		}
		return 0
	case "config":
		return showConfig(cfg, optionalArg(args, 1), out)
	}
	fmt.Fprintf(out, "unknown command %q\n\n", args[0])
	usage(out)
	return 2
}

func replayScript(ctx context.Context, cfg config.AppConfig, opts sessionOptions, scriptPath, pdfPath string, out io.Writer) int {
	l := applog.WithOperation(applog.WithComponent("cli"), "replay")
	script, err := replay.LoadScript(scriptPath)
	if err != nil {
		l.Error("load script failed", slog.String("path", scriptPath), slog.Any("err", err))
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	sess := session.New(cfg.SessionOptions())
	defer crash.Recover(sess)
	r := replay.NewRunner(sess, out)
	r.SetPDFOptions(opts.pdf())
	defer func() { _ = r.Close() }()
	if err := r.Run(ctx, script); err != nil {
		l.Error("replay failed", slog.Any("err", err))
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	if pdfPath != "" {
		if _, err := r.Exec(ctx, replay.Command{Op: replay.OpExport, Arg: pdfPath}); err != nil {
			fmt.Fprintln(out, "Error:", err)
			return 1
		}
	}
	l.Info("replay finished", slog.Int("steps", len(script.Steps)), slog.Int("pages", len(sess.Titles())))
	return 0
}

func showConfig(cfg config.AppConfig, sub string, out io.Writer) int {
	path, err := config.ConfigPath()
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	if sub == "init" {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintln(out, "Config already exists at", path)
			return 1
		}
		if err := config.Save(config.Defaults()); err != nil {
			fmt.Fprintln(out, "Error:", err)
			return 1
		}
		fmt.Fprintln(out, "Wrote default config to", path)
		return 0
	}
	fmt.Fprintln(out, "Config file:", path)
	rows := []struct{ key, val string }{
		{"general.theme", cfg.General.Theme},
		{"workspace.title_prefix", cfg.Workspace.TitlePrefix},
		{"workspace.last_page_policy", string(cfg.Workspace.Policy())},
		{"workspace.recent_limit", fmt.Sprint(cfg.Workspace.RecentLimit)},
		{"undo.max_depth", fmt.Sprint(cfg.Undo.MaxDepth)},
		{"undo.max_bytes", fmt.Sprint(cfg.Undo.MaxBytes)},
		{"logging.level", cfg.Logging.Level},
		{"logging.format", cfg.Logging.Format},
		{"logging.file", cfg.Logging.File},
	}
	for _, r := range rows {
		line := fmt.Sprintf("  %-28s %s", r.key, r.val)
		if env, ok := config.EnvOverrideFor(r.key); ok {
			line += " (from " + env + ")"
		}
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	return 0
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
