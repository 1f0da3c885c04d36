/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"mininotion/internal/domain"
	"mininotion/internal/pagestore"
	"mininotion/internal/undo"
)

func newTestSession(t *testing.T, policy domain.LastPagePolicy) (*Session, *Recorder) {
	t.Helper()
	s := New(Options{Store: pagestore.Options{Policy: policy}, Undo: undo.DefaultConfig()})
	rec := &Recorder{}
	s.SetStatusSink(rec)
	return s, rec
}

// echoSurface behaves like a text widget whose change callback fires on
// programmatic writes too.
type echoSurface struct {
	s       *Session
	title   string
	content string
}

func (e *echoSurface) SetTitle(title string) { e.title = title }

func (e *echoSurface) SetContent(content string) {
	e.content = content
	e.s.Edit(content)
}

// crlfSurface is a text widget that normalizes line endings and reports the
// normalized text back, so its echo differs from what the session wrote.
type crlfSurface struct {
	s       *Session
	title   string
	content string
}

func (c *crlfSurface) SetTitle(title string) { c.title = title }

func (c *crlfSurface) SetContent(content string) {
	c.content = strings.ReplaceAll(content, "\n", "\r\n")
	c.s.Edit(c.content)
}

func TestScenario(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)

	if got := s.CreateNew(); got != "Untitled 1" {
		t.Fatalf("first page title = %q", got)
	}
	if rec.Last() != "Created: Untitled 1" {
		t.Fatalf("status = %q", rec.Last())
	}
	s.Edit("hello")
	if s.UndoDepth() != 1 || s.ContentOf("Untitled 1") != "hello" {
		t.Fatalf("edit not applied: depth=%d content=%q", s.UndoDepth(), s.ContentOf("Untitled 1"))
	}
	if rec.Last() != "Editing: Untitled 1" {
		t.Fatalf("status = %q", rec.Last())
	}
	if !s.Undo() || s.ContentOf("Untitled 1") != "" || s.Surface().Content != "" {
		t.Fatalf("undo did not restore empty content")
	}
	if rec.Last() != "Undo successful" {
		t.Fatalf("status = %q", rec.Last())
	}

	s.CreateNew()
	if got := s.Titles(); !reflect.DeepEqual(got, []string{"Untitled 1", "Untitled 2"}) {
		t.Fatalf("Titles() = %v", got)
	}
	if a, _ := s.ActiveTitle(); a != "Untitled 2" {
		t.Fatalf("active = %q", a)
	}
	if err := s.DeleteActive(); err != nil {
		t.Fatalf("DeleteActive error: %v", err)
	}
	if a, _ := s.ActiveTitle(); a != "Untitled 1" || len(s.Titles()) != 1 {
		t.Fatalf("after delete active=%q titles=%v", a, s.Titles())
	}
	if rec.Last() != "Deleted: Untitled 2" {
		t.Fatalf("status = %q", rec.Last())
	}
}

func TestEditUndoRoundTrip(t *testing.T) {
	s, _ := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	s.Edit("one")
	s.Edit("one two")
	before := s.ContentOf("Untitled 1")
	s.Edit("one two three")
	s.Undo()
	if got := s.ContentOf("Untitled 1"); got != before {
		t.Fatalf("round trip: got %q want %q", got, before)
	}
	if a, ok := s.ActiveTitle(); !ok || a != "Untitled 1" {
		t.Fatalf("undo changed the active page")
	}
	s.Undo()
	s.Undo()
	if s.ContentOf("Untitled 1") != "" {
		t.Fatalf("expected full unwind to empty content")
	}
}

func TestNothingToUndo(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	if s.Undo() || rec.Last() != "Nothing to undo" {
		t.Fatalf("undo on empty workspace: %q", rec.Last())
	}
	s.CreateNew()
	if s.Undo() || rec.Last() != "Nothing to undo" {
		t.Fatalf("undo without edits: %q", rec.Last())
	}
}

func TestNoUndoAcrossSwitch(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	s.Edit("alpha")
	s.Edit("alpha beta")
	s.CreateNew()
	if err := s.Select("Untitled 2"); err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if s.UndoDepth() != 0 {
		t.Fatalf("history leaked across switch: depth=%d", s.UndoDepth())
	}
	if s.Undo() || rec.Last() != "Nothing to undo" {
		t.Fatalf("undo reached across a switch")
	}
	if s.ContentOf("Untitled 1") != "alpha beta" || s.ContentOf("Untitled 2") != "" {
		t.Fatalf("contents changed: %q / %q", s.ContentOf("Untitled 1"), s.ContentOf("Untitled 2"))
	}
	// edits on B undo only within B
	s.Edit("b")
	s.Undo()
	if s.ContentOf("Untitled 2") != "" || s.ContentOf("Untitled 1") != "alpha beta" {
		t.Fatalf("undo touched the wrong page")
	}
}

func TestSelectNeverRecords(t *testing.T) {
	s, _ := newTestSession(t, domain.PolicyReplace)
	view := &echoSurface{s: s}
	s.SetSurface(view)

	s.CreateNew()
	s.Edit("first page text")
	s.CreateNew()
	if err := s.Select("Untitled 1"); err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if s.UndoDepth() != 0 {
		t.Fatalf("programmatic load was recorded: depth=%d", s.UndoDepth())
	}
	if view.title != "Untitled 1" || view.content != "first page text" {
		t.Fatalf("surface not loaded: %+v", view)
	}
	// a real keystroke after the load is recorded once
	s.Edit("first page text!")
	if s.UndoDepth() != 1 {
		t.Fatalf("user edit not recorded: depth=%d", s.UndoDepth())
	}
	s.Undo()
	if s.UndoDepth() != 0 || view.content != "first page text" {
		t.Fatalf("undo write was recorded or not shown: depth=%d content=%q", s.UndoDepth(), view.content)
	}
}

func TestLoadingGuardSuppressesChangedEcho(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	view := &crlfSurface{s: s}
	s.SetSurface(view)

	s.CreateNew()
	s.Edit("a\nb")
	s.CreateNew()
	rec.Reset()
	if err := s.Select("Untitled 1"); err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if s.UndoDepth() != 0 {
		t.Fatalf("echo of a load was recorded: depth=%d", s.UndoDepth())
	}
	if got := s.ContentOf("Untitled 1"); got != "a\nb" {
		t.Fatalf("echo of a load reached the store: %q", got)
	}
	if len(rec.Messages) != 1 || rec.Last() != "Editing: Untitled 1" {
		t.Fatalf("echo published extra statuses: %v", rec.Messages)
	}

	s.Edit("a\nb\nc")
	s.Undo()
	if s.UndoDepth() != 0 || s.ContentOf("Untitled 1") != "a\nb" {
		t.Fatalf("echo of an undo was recorded: depth=%d content=%q", s.UndoDepth(), s.ContentOf("Untitled 1"))
	}
}

func TestSelectFlushesDraft(t *testing.T) {
	s, _ := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	s.CreateNew()
	s.Edit("draft")
	// simulate a stale store entry; the surface draft is authoritative on switch
	s.store.SetContent("Untitled 2", "stale")
	if err := s.Select("Untitled 1"); err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if got := s.ContentOf("Untitled 2"); got != "draft" {
		t.Fatalf("draft not flushed, got %q", got)
	}
}

func TestSelectUnknown(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	if err := s.Select("Nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if a, _ := s.ActiveTitle(); a != "Untitled 1" || rec.Last() != "Page not found: Nope" {
		t.Fatalf("unexpected state after bad select: active=%q status=%q", a, rec.Last())
	}
}

func TestEmptyTitleGuard(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	view := &echoSurface{s: s}
	s.SetSurface(view)
	s.CreateNew()
	s.Edit("body")
	for _, in := range []string{"", "   "} {
		view.title = in // user cleared the field
		if err := s.Rename(in); !errors.Is(err, domain.ErrInvalidTitle) {
			t.Fatalf("Rename(%q) err = %v", in, err)
		}
		if view.title != "Untitled 1" || s.Surface().Title != "Untitled 1" {
			t.Fatalf("title field not reverted: %q", view.title)
		}
		if rec.Last() != "Page title cannot be empty" {
			t.Fatalf("status = %q", rec.Last())
		}
	}
	if got := s.Titles(); !reflect.DeepEqual(got, []string{"Untitled 1"}) || s.ContentOf("Untitled 1") != "body" {
		t.Fatalf("store changed: %v", got)
	}
	if s.UndoDepth() != 1 {
		t.Fatalf("rename touched undo history: depth=%d", s.UndoDepth())
	}
}

func TestRename(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	s.Edit("list")
	if err := s.Rename("  Groceries "); err != nil {
		t.Fatalf("Rename error: %v", err)
	}
	if a, _ := s.ActiveTitle(); a != "Groceries" || rec.Last() != "Renamed to: Groceries" {
		t.Fatalf("active=%q status=%q", a, rec.Last())
	}
	if s.ContentOf("Groceries") != "list" || s.UndoDepth() != 1 {
		t.Fatalf("rename lost content or history")
	}
	if !reflect.DeepEqual(s.Recent(), []string{"Groceries"}) {
		t.Fatalf("recent not updated: %v", s.Recent())
	}
	if err := s.Rename("Groceries"); err != nil || rec.Last() != "Editing: Groceries" {
		t.Fatalf("same-title rename: err=%v status=%q", err, rec.Last())
	}
}

func TestRenameShowsTrimmedTitle(t *testing.T) {
	s, _ := newTestSession(t, domain.PolicyReplace)
	view := &echoSurface{s: s}
	s.SetSurface(view)
	s.CreateNew()
	view.title = "  Foo  " // typed by the user
	if err := s.Rename(view.title); err != nil {
		t.Fatalf("Rename error: %v", err)
	}
	if view.title != "Foo" || s.Surface().Title != "Foo" {
		t.Fatalf("title field shows %q, surface state %q", view.title, s.Surface().Title)
	}
}

func TestRenameCollisionRejected(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	s.Edit("one")
	s.CreateNew()
	s.Edit("two")
	if err := s.Rename("Untitled 1"); !errors.Is(err, domain.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
	if rec.Last() != `A page named "Untitled 1" already exists` {
		t.Fatalf("status = %q", rec.Last())
	}
	if s.ContentOf("Untitled 1") != "one" || s.ContentOf("Untitled 2") != "two" {
		t.Fatalf("collision overwrote a page")
	}
}

func TestDeletionReselection(t *testing.T) {
	s, _ := newTestSession(t, domain.PolicyReplace)
	for i := 0; i < 3; i++ {
		s.CreateNew()
	}
	for i, title := range []string{"P1", "P2", "P3"} {
		_ = s.Select(s.Titles()[i])
		if err := s.Rename(title); err != nil {
			t.Fatalf("Rename error: %v", err)
		}
	}
	_ = s.Select("P2")
	if err := s.DeleteActive(); err != nil {
		t.Fatalf("DeleteActive error: %v", err)
	}
	if a, _ := s.ActiveTitle(); a != "P3" {
		t.Fatalf("deleting P2 selected %q, want P3", a)
	}
	if err := s.DeleteActive(); err != nil {
		t.Fatalf("DeleteActive error: %v", err)
	}
	if a, _ := s.ActiveTitle(); a != "P1" {
		t.Fatalf("deleting last page selected %q, want P1", a)
	}

	s2, _ := newTestSession(t, domain.PolicyReplace)
	s2.CreateNew()
	s2.CreateNew()
	s2.CreateNew()
	_ = s2.Select("Untitled 3")
	_ = s2.DeleteActive()
	if a, _ := s2.ActiveTitle(); a != "Untitled 2" {
		t.Fatalf("deleting the last entry selected %q, want Untitled 2", a)
	}
}

func TestDeleteClearsHistoryAndRecent(t *testing.T) {
	s, _ := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	s.CreateNew()
	s.Edit("x")
	_ = s.DeleteActive()
	if s.UndoDepth() != 0 {
		t.Fatalf("history survived delete")
	}
	if !reflect.DeepEqual(s.Recent(), []string{"Untitled 1"}) {
		t.Fatalf("recent = %v", s.Recent())
	}
}

func TestDeleteLastPageReplace(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	s.Edit("gone soon")
	if err := s.DeleteActive(); err != nil {
		t.Fatalf("DeleteActive error: %v", err)
	}
	a, ok := s.ActiveTitle()
	if !ok || a != "Untitled 1" || s.ContentOf(a) != "" || len(s.Titles()) != 1 {
		t.Fatalf("expected fresh replacement page, got active=%q titles=%v", a, s.Titles())
	}
	if rec.Last() != "Deleted: Untitled 1" {
		t.Fatalf("status = %q", rec.Last())
	}
}

func TestDeleteLastPageGuard(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyGuard)
	s.CreateNew()
	s.Edit("keep me")
	if err := s.DeleteActive(); !errors.Is(err, domain.ErrLastPageGuard) {
		t.Fatalf("expected ErrLastPageGuard, got %v", err)
	}
	if rec.Last() != "Cannot delete the last page" || s.ContentOf("Untitled 1") != "keep me" || s.UndoDepth() != 1 {
		t.Fatalf("guard changed state: status=%q", rec.Last())
	}
}

func TestDeleteLastPageAllowEmpty(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyAllowEmpty)
	s.CreateNew()
	if err := s.DeleteActive(); err != nil {
		t.Fatalf("DeleteActive error: %v", err)
	}
	if _, ok := s.ActiveTitle(); ok || len(s.Titles()) != 0 {
		t.Fatalf("expected No-Page state")
	}
	if rec.Last() != "No pages. Click + to add one." || s.Surface() != (SurfaceState{}) {
		t.Fatalf("status=%q surface=%+v", rec.Last(), s.Surface())
	}
	if err := s.DeleteActive(); !errors.Is(err, domain.ErrNoActivePage) || rec.Last() != "No page selected" {
		t.Fatalf("delete in No-Page: err=%v status=%q", err, rec.Last())
	}
	s.Edit("ignored")
	if rec.Last() != "No page selected" {
		t.Fatalf("edit in No-Page: status=%q", rec.Last())
	}
	s.Bootstrap()
	if a, ok := s.ActiveTitle(); !ok || a != "Untitled 1" {
		t.Fatalf("bootstrap did not create a page: %q", a)
	}
}

func TestEditIgnoresUnchangedContent(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	s.CreateNew()
	s.Edit("same")
	n := len(rec.Messages)
	s.Edit("same")
	if s.UndoDepth() != 1 || len(rec.Messages) != n {
		t.Fatalf("identical edit recorded: depth=%d", s.UndoDepth())
	}
}

func TestOneStatusPerCommand(t *testing.T) {
	s, rec := newTestSession(t, domain.PolicyReplace)
	steps := []func(){
		func() { s.CreateNew() },
		func() { s.Edit("a") },
		func() { _ = s.Rename("A") },
		func() { s.CreateNew() },
		func() { _ = s.Select("A") },
		func() { s.Undo() },
		func() { _ = s.DeleteActive() },
	}
	for i, step := range steps {
		rec.Reset()
		step()
		if len(rec.Messages) != 1 {
			t.Fatalf("step %d published %d statuses: %v", i, len(rec.Messages), rec.Messages)
		}
	}
	if s.Status() != rec.Last() {
		t.Fatalf("Status() = %q, want %q", s.Status(), rec.Last())
	}
}

func TestRecentPages(t *testing.T) {
	s := New(Options{RecentLimit: 2})
	s.CreateNew()
	s.CreateNew()
	s.CreateNew()
	_ = s.Select("Untitled 1")
	if got := s.Recent(); !reflect.DeepEqual(got, []string{"Untitled 1", "Untitled 3"}) {
		t.Fatalf("Recent() = %v", got)
	}
}

func TestStatusFuncSink(t *testing.T) {
	s := New(Options{})
	var got []string
	s.SetStatusSink(StatusFunc(func(m string) { got = append(got, m) }))
	s.Bootstrap()
	s.SetStatusSink(nil)
	s.Edit("quiet")
	if !reflect.DeepEqual(got, []string{"Created: Untitled 1"}) {
		t.Fatalf("sink got %v", got)
	}
}
