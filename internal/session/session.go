/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session mediates between the page store and the undo history.
// It holds the active-page cursor and the editing surface, and is the only
// API presentation layers use: commands mutate state and publish exactly one
// status message, queries never mutate.
//
// A Session is not safe for concurrent use. Drive it from one goroutine (the
// UI thread); a concurrent host must wrap the whole session in one lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mininotion/internal/domain"
	applog "mininotion/internal/log"
	"mininotion/internal/pagestore"
	"mininotion/internal/undo"
)

const defaultRecentLimit = 10

// Options configures a Session.
type Options struct {
	Store       pagestore.Options
	Undo        undo.Config
	RecentLimit int
}

// Session is the editor state machine: No-Page while active is unset,
// Editing(active) otherwise.
type Session struct {
	store   *pagestore.Store
	history *undo.History

	active    string
	hasActive bool

	surface SurfaceState
	view    Surface
	// loading is set only while the session itself writes to the surface,
	// so edit callbacks fired by those writes are not recorded as user edits.
	loading bool

	sink   StatusSink
	status string
	recent recentList
	log    *slog.Logger
}

// New returns a session over an empty workspace.
func New(opts Options) *Session {
	limit := opts.RecentLimit
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return &Session{
		store:   pagestore.New(opts.Store),
		history: undo.NewHistory(opts.Undo),
		recent:  recentList{limit: limit},
		log:     applog.WithComponent("session"),
	}
}

// SetStatusSink installs the single status observer, replacing any previous one.
func (s *Session) SetStatusSink(sink StatusSink) { s.sink = sink }

// SetSurface attaches the presentation's editing area and shows the current state on it.
func (s *Session) SetSurface(v Surface) {
	s.view = v
	s.writeSurface(s.surface.Title, s.surface.Content)
}

// Bootstrap makes sure a page is active: it creates the first page of an empty
// workspace or selects the first page when nothing is selected.
func (s *Session) Bootstrap() {
	switch {
	case s.store.Len() == 0:
		s.CreateNew()
	case !s.hasActive:
		p, _ := s.store.At(0)
		_ = s.Select(p.Title)
	}
}

// ── Commands ───────────────────────────────────────────────

// Select makes title the active page. The draft of the previously active page
// is committed first and the undo history starts over.
func (s *Session) Select(title string) error {
	if !s.store.Has(title) {
		s.warn(msgNotFound(title))
		return fmt.Errorf("select %q: %w", title, domain.ErrNotFound)
	}
	s.switchTo(title)
	s.publish(msgEditing(title))
	return nil
}

// Edit records a user change of the active page's content.
// Calls made while the session loads the surface are ignored, as are calls
// that do not change the content.
func (s *Session) Edit(content string) {
	if s.loading {
		return
	}
	if !s.hasActive {
		s.publish(msgNoPage)
		return
	}
	prev := s.surface.Content
	if content == prev {
		return
	}
	s.history.Record(prev)
	s.surface.Content = content
	s.store.SetContent(s.active, content)
	s.publish(msgEditing(s.active))
}

// Rename gives the active page a new title. Blank and already-used titles are
// refused: the surface title reverts and a warning status is published.
// Undo history is never touched.
func (s *Session) Rename(title string) error {
	if !s.hasActive {
		s.publish(msgNoPage)
		return domain.ErrNoActivePage
	}
	old := s.active
	p, err := s.store.Rename(old, title)
	if err != nil {
		s.revertTitle()
		switch {
		case errors.Is(err, domain.ErrInvalidTitle):
			s.warn(msgEmptyTitle)
		case errors.Is(err, domain.ErrDuplicateTitle):
			s.warn(msgDuplicate(domain.NormalizeTitle(title)))
		default:
			s.warn(msgNotFound(old))
		}
		return err
	}
	if p.Title == old {
		s.revertTitle()
		s.publish(msgEditing(old))
		return nil
	}
	s.active = p.Title
	s.showTitle(p.Title)
	s.recent.rename(old, p.Title)
	s.publish(msgRenamed(p.Title))
	return nil
}

// DeleteActive removes the active page and selects its successor: the page
// that moved into its position, or the new last page.
func (s *Session) DeleteActive() error {
	if !s.hasActive {
		s.publish(msgNoPage)
		return domain.ErrNoActivePage
	}
	title := s.active
	d, err := s.store.Delete(title)
	if err != nil {
		if errors.Is(err, domain.ErrLastPageGuard) {
			s.warn(msgLastPage)
		} else {
			s.warn(msgNotFound(title))
		}
		return err
	}
	s.recent.remove(title)
	// the deleted page has nothing left to flush
	s.active, s.hasActive = "", false
	s.history.Clear()

	next := ""
	if d.Replacement != nil {
		next = d.Replacement.Title
	} else if n := s.store.Len(); n > 0 {
		p, _ := s.store.At(min(d.Index, n-1))
		next = p.Title
	}
	if next == "" {
		s.writeSurface("", "")
		s.publish(msgEmptyWorkspace)
		return nil
	}
	s.switchTo(next)
	s.publish(msgDeleted(title))
	return nil
}

// CreateNew appends a page with a generated title, selects it and returns its title.
func (s *Session) CreateNew() string {
	p := s.store.Create()
	s.switchTo(p.Title)
	s.publish(msgCreated(p.Title))
	return p.Title
}

// Undo restores the content from before the latest edit of the active page.
// It reports whether anything was undone.
func (s *Session) Undo() bool {
	if !s.hasActive || s.history.Len() == 0 {
		s.publish(msgNothingToUndo)
		return false
	}
	prev, _ := s.history.Pop()
	s.writeSurface(s.active, prev)
	s.store.SetContent(s.active, prev)
	s.publish(msgUndone)
	return true
}

// ── Queries ────────────────────────────────────────────────

// Titles returns page titles in display order.
func (s *Session) Titles() []string { return s.store.Titles() }

// Pages returns copies of all pages in display order.
func (s *Session) Pages() []domain.Page { return s.store.Pages() }

// ActiveTitle returns the active page, if any.
func (s *Session) ActiveTitle() (string, bool) { return s.active, s.hasActive }

// ContentOf returns the content of title, or "" when absent.
func (s *Session) ContentOf(title string) string { return s.store.Content(title) }

// Surface returns what the editing area currently shows.
func (s *Session) Surface() SurfaceState { return s.surface }

// Status returns the last published status message.
func (s *Session) Status() string { return s.status }

// UndoDepth returns the number of undoable edits on the active page.
func (s *Session) UndoDepth() int { return s.history.Len() }

// Recent returns recently opened titles, most recent first.
func (s *Session) Recent() []string { return s.recent.list() }

// Policy returns the last-page policy in effect.
func (s *Session) Policy() domain.LastPagePolicy { return s.store.Policy() }

// ── internals ──────────────────────────────────────────────

// switchTo commits the draft of the current page, resets history and loads title.
func (s *Session) switchTo(title string) {
	if s.hasActive {
		s.store.SetContent(s.active, s.surface.Content)
	}
	s.history.Clear()
	s.active, s.hasActive = title, true
	s.writeSurface(title, s.store.Content(title))
	s.recent.touch(title)
}

// writeSurface is the only place the session writes to the editing area.
func (s *Session) writeSurface(title, content string) {
	s.loading = true
	defer func() { s.loading = false }()
	s.surface = SurfaceState{Title: title, Content: content}
	if s.view != nil {
		s.view.SetTitle(title)
		s.view.SetContent(content)
	}
}

func (s *Session) revertTitle() { s.showTitle(s.active) }

// showTitle writes only the title field, under the loading guard.
func (s *Session) showTitle(title string) {
	s.surface.Title = title
	if s.view != nil {
		s.loading = true
		defer func() { s.loading = false }()
		s.view.SetTitle(title)
	}
}

func (s *Session) publish(msg string) {
	s.status = msg
	s.log.DebugContext(s.logContext(), "status", slog.String("status", msg))
	if s.sink != nil {
		s.sink.StatusChanged(msg)
	}
}

func (s *Session) warn(msg string) {
	s.log.WarnContext(s.logContext(), msg)
	s.status = msg
	if s.sink != nil {
		s.sink.StatusChanged(msg)
	}
}

func (s *Session) logContext() context.Context {
	return applog.ContextWithPage(context.Background(), s.active)
}
