/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"

	"mininotion/internal/export"
	applog "mininotion/internal/log"
	"mininotion/internal/search"
	"mininotion/internal/session"
)

// Runner executes commands against a session and prints results to an output writer.
// Status messages published by the session are printed as "» message".
// A Runner is not safe for concurrent use.
type Runner struct {
	sess  *session.Session
	out   io.Writer
	index *search.Index
	pdf   export.PDFOptions
	log   *slog.Logger
}

// NewRunner wires a runner to sess, installing itself as the session's status sink.
func NewRunner(sess *session.Session, out io.Writer) *Runner {
	r := &Runner{
		sess: sess,
		out:  out,
		pdf:  export.PDFOptions{PageNumbers: true},
		log:  applog.WithComponent("replay"),
	}
	sess.SetStatusSink(session.StatusFunc(func(msg string) {
		fmt.Fprintf(r.out, "» %s\n", msg)
	}))
	return r
}

// SetPDFOptions changes the options used by the export command.
func (r *Runner) SetPDFOptions(opt export.PDFOptions) { r.pdf = opt }

// Close releases the search index if one was opened.
func (r *Runner) Close() error {
	if r.index == nil {
		return nil
	}
	err := r.index.Close()
	r.index = nil
	return err
}

// Exec runs one command. quit reports whether the command asked to end the session.
// Refusals by the session (unknown page, blank title, ...) are reported through
// status messages, not errors; errors are reserved for malformed commands and
// failing search or export.
func (r *Runner) Exec(ctx context.Context, cmd Command) (quit bool, err error) {
	if err := cmd.Validate(); err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			if s, ok := suggest(string(cmd.Op), opNames()); ok {
				return false, fmt.Errorf("%w (did you mean %q?)", err, s)
			}
		}
		return false, err
	}
	r.log.DebugContext(ctx, "exec", slog.String("op", string(cmd.Op)), slog.Int("line", cmd.LineNo))

	switch cmd.Op {
	case OpNew:
		r.sess.CreateNew()
	case OpOpen:
		title := strings.TrimSpace(cmd.Arg)
		if err := r.sess.Select(title); err != nil {
			if s, ok := suggest(title, r.sess.Titles()); ok {
				fmt.Fprintf(r.out, "did you mean %q?\n", s)
			}
		}
	case OpEdit:
		r.sess.Edit(cmd.Arg)
	case OpAppend:
		cur := r.sess.Surface().Content
		if cur != "" && !strings.HasSuffix(cur, "\n") {
			cur += "\n"
		}
		r.sess.Edit(cur + cmd.Arg)
	case OpRename:
		_ = r.sess.Rename(cmd.Arg)
	case OpDelete:
		_ = r.sess.DeleteActive()
	case OpUndo:
		r.sess.Undo()
	case OpList:
		r.printList()
	case OpShow:
		r.printActive()
	case OpRecent:
		for i, t := range r.sess.Recent() {
			fmt.Fprintf(r.out, "%2d. %s\n", i+1, t)
		}
	case OpSearch:
		return false, r.search(ctx, cmd.Arg)
	case OpExport:
		path := strings.TrimSpace(cmd.Arg)
		pages := r.sess.Pages()
		if err := export.ExportPDF(path, pages, r.pdf); err != nil {
			return false, fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(r.out, "exported %d page(s) to %s\n", len(pages), path)
	case OpHelp:
		fmt.Fprint(r.out, HelpText())
	case OpQuit:
		return true, nil
	}
	return false, nil
}

func (r *Runner) printList() {
	active, ok := r.sess.ActiveTitle()
	titles := r.sess.Titles()
	if len(titles) == 0 {
		fmt.Fprintln(r.out, "(no pages)")
		return
	}
	for i, t := range titles {
		mark := " "
		if ok && t == active {
			mark = "*"
		}
		fmt.Fprintf(r.out, "%s %2d. %s\n", mark, i+1, t)
	}
}

func (r *Runner) printActive() {
	if _, ok := r.sess.ActiveTitle(); !ok {
		fmt.Fprintln(r.out, "(no page selected)")
		return
	}
	st := r.sess.Surface()
	fmt.Fprintf(r.out, "# %s\n", st.Title)
	if st.Content != "" {
		fmt.Fprintln(r.out, st.Content)
	}
}

// search rebuilds the index from the current workspace before querying, so
// results always reflect unsaved edits.
func (r *Runner) search(ctx context.Context, text string) error {
	if r.index == nil {
		ix, err := search.Open(ctx)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		r.index = ix
	}
	if err := r.index.Rebuild(ctx, r.sess.Pages()); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	res, err := r.index.Search(ctx, search.Query{Text: text})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(res) == 0 {
		fmt.Fprintln(r.out, "no matches")
		return nil
	}
	for _, hit := range res {
		if hit.Snippet == "" {
			fmt.Fprintf(r.out, "%2d. %s\n", hit.Position+1, hit.Title)
			continue
		}
		fmt.Fprintf(r.out, "%2d. %s: %s\n", hit.Position+1, hit.Title, strings.ReplaceAll(hit.Snippet, "\n", " "))
	}
	return nil
}

// suggest returns the candidate closest to target when it is near enough to be
// a plausible typo. Comparison ignores case.
func suggest(target string, candidates []string) (string, bool) {
	lt := strings.ToLower(strings.TrimSpace(target))
	if lt == "" {
		return "", false
	}
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(lt, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := max(2, len([]rune(lt))/3)
	if bestDist < 0 || bestDist > limit {
		return "", false
	}
	return best, true
}

func opNames() []string {
	out := make([]string, 0, len(opOrder))
	for _, op := range opOrder {
		out = append(out, string(op))
	}
	return out
}
