//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// These tests drive the Fyne adapter with the in-memory test driver. They are
// gated behind the "fyne" build tag so CI (which is headless) does not need Fyne.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"mininotion/internal/config"
	"mininotion/internal/session"
)

func newTestView(t *testing.T) (*view, *session.Session) {
	t.Helper()
	a := test.NewTempApp(t)
	w := a.NewWindow("test")
	sess := session.New(config.Defaults().SessionOptions())
	v := newView(sess, w)
	sess.SetStatusSink(session.StatusFunc(v.statusChanged))
	sess.SetSurface(v)
	sess.Bootstrap()
	v.refresh()
	w.SetContent(v.layout())
	return v, sess
}

func TestView_BootstrapShowsFirstPage(t *testing.T) {
	v, _ := newTestView(t)
	if v.title.Text != "Untitled 1" {
		t.Fatalf("title entry = %q", v.title.Text)
	}
	if len(v.titles) != 1 {
		t.Fatalf("expected one listed page, got %v", v.titles)
	}
	if v.status.Text != "Created: Untitled 1" {
		t.Fatalf("status = %q", v.status.Text)
	}
}

func TestView_TypingAndUndo(t *testing.T) {
	v, sess := newTestView(t)
	test.Type(v.content, "hi")
	if got := sess.ContentOf("Untitled 1"); got != "hi" {
		t.Fatalf("content = %q", got)
	}
	if sess.UndoDepth() != 2 {
		t.Fatalf("expected one undo step per keystroke, got %d", sess.UndoDepth())
	}
	v.undo()
	if v.content.Text != "h" || sess.ContentOf("Untitled 1") != "h" {
		t.Fatalf("undo not mirrored: entry=%q store=%q", v.content.Text, sess.ContentOf("Untitled 1"))
	}
	if sess.UndoDepth() != 1 {
		t.Fatalf("undo write was recorded as an edit")
	}
}

func TestView_SwitchPagesThroughList(t *testing.T) {
	v, sess := newTestView(t)
	test.Type(v.content, "first")
	v.create()
	if v.title.Text != "Untitled 2" || v.content.Text != "" {
		t.Fatalf("new page not loaded: %q / %q", v.title.Text, v.content.Text)
	}
	v.list.Select(0)
	if active, _ := sess.ActiveTitle(); active != "Untitled 1" {
		t.Fatalf("active = %q", active)
	}
	if v.content.Text != "first" || sess.UndoDepth() != 0 {
		t.Fatalf("switch should load content without history: %q depth=%d", v.content.Text, sess.UndoDepth())
	}
}

func TestView_RenameRevertsOnBlank(t *testing.T) {
	v, sess := newTestView(t)
	v.title.SetText("   ")
	v.title.OnSubmitted(v.title.Text)
	if v.title.Text != "Untitled 1" {
		t.Fatalf("title not reverted: %q", v.title.Text)
	}
	if v.status.Text != "Page title cannot be empty" {
		t.Fatalf("status = %q", v.status.Text)
	}
	v.title.SetText("Groceries")
	v.title.OnSubmitted(v.title.Text)
	if active, _ := sess.ActiveTitle(); active != "Groceries" || v.titles[0] != "Groceries" {
		t.Fatalf("rename not applied: %q %v", active, v.titles)
	}
}

func TestView_UnsubmittedTitleCommitsOnNewPage(t *testing.T) {
	v, sess := newTestView(t)
	v.title.SetText("Plan")
	v.create()
	if got := sess.Titles(); len(got) != 2 || got[0] != "Plan" {
		t.Fatalf("typed title lost on page switch: %v", got)
	}
	if active, _ := sess.ActiveTitle(); active != "Untitled 2" {
		t.Fatalf("active = %q", active)
	}
}

func TestView_UnsubmittedTitleCommitsOnFocusLoss(t *testing.T) {
	v, sess := newTestView(t)
	v.w.Canvas().Focus(v.title)
	v.title.SetText("Reading list")
	v.w.Canvas().Unfocus()
	if active, _ := sess.ActiveTitle(); active != "Reading list" {
		t.Fatalf("rename not committed on focus loss: %q", active)
	}
	if v.status.Text != "Renamed to: Reading list" {
		t.Fatalf("status = %q", v.status.Text)
	}
}

func TestView_UnsubmittedTitleCommitsOnListSelect(t *testing.T) {
	v, sess := newTestView(t)
	v.create()
	v.title.SetText("Second")
	v.list.Select(0)
	if got := sess.Titles(); got[1] != "Second" {
		t.Fatalf("typed title lost on list select: %v", got)
	}
	if active, _ := sess.ActiveTitle(); active != "Untitled 1" {
		t.Fatalf("active = %q", active)
	}
}

func TestView_DeleteKey(t *testing.T) {
	v, sess := newTestView(t)
	asked := 0
	v.confirm = func(_, _ string, answer func(bool)) {
		asked++
		answer(true)
	}
	v.create()

	v.w.Canvas().Focus(v.content)
	v.typedKey(&fyne.KeyEvent{Name: fyne.KeyDelete})
	if asked != 0 || len(sess.Titles()) != 2 {
		t.Fatalf("Del inside an entry must not delete the page")
	}

	v.w.Canvas().Unfocus()
	v.typedKey(&fyne.KeyEvent{Name: fyne.KeyDelete})
	if asked != 1 {
		t.Fatalf("expected one confirmation, got %d", asked)
	}
	if got := sess.Titles(); len(got) != 1 || got[0] != "Untitled 1" {
		t.Fatalf("titles after delete = %v", got)
	}
	if v.status.Text != "Deleted: Untitled 2" {
		t.Fatalf("status = %q", v.status.Text)
	}
}

func TestView_DeleteKeyDeclined(t *testing.T) {
	v, sess := newTestView(t)
	v.confirm = func(_, _ string, answer func(bool)) { answer(false) }
	v.create()
	v.w.Canvas().Unfocus()
	v.typedKey(&fyne.KeyEvent{Name: fyne.KeyDelete})
	if len(sess.Titles()) != 2 {
		t.Fatalf("declined delete removed a page: %v", sess.Titles())
	}
}

func TestView_PDFOptions(t *testing.T) {
	v, _ := newTestView(t)
	v.create()
	all, name := v.pdfOptions(false)
	if all.Pages != nil || name != "workspace.pdf" || !all.PageNumbers {
		t.Fatalf("workspace export = %+v %q", all, name)
	}
	one, name := v.pdfOptions(true)
	if len(one.Pages) != 1 || one.Pages[0] != 1 {
		t.Fatalf("current page export pages = %v", one.Pages)
	}
	if one.Title != "Untitled 2" || name != "Untitled 2.pdf" {
		t.Fatalf("current page export = %q %q", one.Title, name)
	}
}

func TestThemeVariant(t *testing.T) {
	if _, ok := themeVariant("system"); ok {
		t.Fatalf("system should follow the OS")
	}
	if _, ok := themeVariant("dark"); !ok {
		t.Fatalf("dark should pin a variant")
	}
}
