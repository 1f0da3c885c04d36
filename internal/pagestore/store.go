/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pagestore owns the pages of a workspace and their content.
// It is pure in-memory CRUD: ordering, title uniqueness and the last-page
// policy live here, while the notion of an active page belongs to the session.
package pagestore

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"mininotion/internal/domain"
	applog "mininotion/internal/log"
)

// DefaultTitlePrefix is used for generated titles such as "Untitled 3".
const DefaultTitlePrefix = "Untitled"

// Options configures a Store.
type Options struct {
	// TitlePrefix precedes the counter in generated titles.
	TitlePrefix string
	// Policy governs deletion of the only remaining page.
	Policy domain.LastPagePolicy
	// NewID generates page IDs; uuid.NewString when nil.
	NewID func() string
}

// Deletion describes the outcome of a successful Delete.
type Deletion struct {
	Page  domain.Page
	Index int
	// Replacement is the page auto-created under PolicyReplace, nil otherwise.
	Replacement *domain.Page
}

// Store keeps pages in insertion order.
// order, pages and titles are always in bijection; every method either
// applies its whole mutation or none of it. Store is not safe for
// concurrent use; the session serializes access.
type Store struct {
	opts   Options
	order  []string                // page IDs in display order
	pages  map[string]*domain.Page // by ID
	titles map[string]string       // title -> ID
	log    *slog.Logger
}

// New returns an empty store.
func New(opts Options) *Store {
	if strings.TrimSpace(opts.TitlePrefix) == "" {
		opts.TitlePrefix = DefaultTitlePrefix
	}
	if opts.Policy == "" {
		opts.Policy = domain.PolicyReplace
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Store{
		opts:   opts,
		pages:  make(map[string]*domain.Page),
		titles: make(map[string]string),
		log:    applog.WithComponent("pagestore"),
	}
}

// Policy returns the configured last-page policy.
func (s *Store) Policy() domain.LastPagePolicy { return s.opts.Policy }

// Create appends a new empty page and returns it.
// The counter starts at the current page count + 1 and is bumped past any
// title already in use, so the result is always unique.
func (s *Store) Create() domain.Page {
	n := len(s.order) + 1
	title := s.generatedTitle(n)
	for {
		if _, taken := s.titles[title]; !taken {
			break
		}
		n++
		title = s.generatedTitle(n)
	}
	p := &domain.Page{ID: s.opts.NewID(), Title: title}
	s.order = append(s.order, p.ID)
	s.pages[p.ID] = p
	s.titles[title] = p.ID
	s.log.Debug("page created", slog.String("id", p.ID), slog.String("title", title))
	return *p
}

func (s *Store) generatedTitle(n int) string {
	return fmt.Sprintf("%s %d", s.opts.TitlePrefix, n)
}

// Rename changes the title of oldTitle to the trimmed newTitle, keeping its
// position and content. Renaming to the current title is a successful no-op.
func (s *Store) Rename(oldTitle, newTitle string) (domain.Page, error) {
	title := domain.NormalizeTitle(newTitle)
	if title == "" {
		return domain.Page{}, domain.ErrInvalidTitle
	}
	id, ok := s.titles[oldTitle]
	if !ok {
		return domain.Page{}, fmt.Errorf("rename %q: %w", oldTitle, domain.ErrNotFound)
	}
	p := s.pages[id]
	if title == oldTitle {
		return *p, nil
	}
	if other, taken := s.titles[title]; taken && other != id {
		return *p, fmt.Errorf("rename %q to %q: %w", oldTitle, title, domain.ErrDuplicateTitle)
	}
	delete(s.titles, oldTitle)
	s.titles[title] = id
	p.Title = title
	s.log.Debug("page renamed", slog.String("id", id), slog.String("from", oldTitle), slog.String("to", title))
	return *p, nil
}

// Delete removes title from the workspace according to the last-page policy.
func (s *Store) Delete(title string) (Deletion, error) {
	id, ok := s.titles[title]
	if !ok {
		return Deletion{}, fmt.Errorf("delete %q: %w", title, domain.ErrNotFound)
	}
	if len(s.order) == 1 && s.opts.Policy == domain.PolicyGuard {
		return Deletion{}, fmt.Errorf("delete %q: %w", title, domain.ErrLastPageGuard)
	}
	idx := s.indexOfID(id)
	d := Deletion{Page: *s.pages[id], Index: idx}

	s.order = append(s.order[:idx], s.order[idx+1:]...)
	delete(s.pages, id)
	delete(s.titles, title)
	s.log.Debug("page deleted", slog.String("id", id), slog.String("title", title), slog.Int("index", idx))

	if len(s.order) == 0 && s.opts.Policy == domain.PolicyReplace {
		r := s.Create()
		d.Replacement = &r
	}
	return d, nil
}

// Content returns the content of title, or "" when absent.
func (s *Store) Content(title string) string {
	if id, ok := s.titles[title]; ok {
		return s.pages[id].Content
	}
	return ""
}

// SetContent overwrites the content of title. Absent titles are ignored.
func (s *Store) SetContent(title, content string) {
	if id, ok := s.titles[title]; ok {
		s.pages[id].Content = content
	}
}

// Get returns a copy of the page named title.
func (s *Store) Get(title string) (domain.Page, bool) {
	id, ok := s.titles[title]
	if !ok {
		return domain.Page{}, false
	}
	return *s.pages[id], true
}

// Has reports whether title exists.
func (s *Store) Has(title string) bool {
	_, ok := s.titles[title]
	return ok
}

// Len returns the number of pages.
func (s *Store) Len() int { return len(s.order) }

// At returns the page at position i in display order.
func (s *Store) At(i int) (domain.Page, bool) {
	if i < 0 || i >= len(s.order) {
		return domain.Page{}, false
	}
	return *s.pages[s.order[i]], true
}

// IndexOf returns the display position of title, or -1.
func (s *Store) IndexOf(title string) int {
	id, ok := s.titles[title]
	if !ok {
		return -1
	}
	return s.indexOfID(id)
}

// Titles returns page titles in display order.
func (s *Store) Titles() []string {
	out := make([]string, len(s.order))
	for i, id := range s.order {
		out[i] = s.pages[id].Title
	}
	return out
}

// Pages returns copies of all pages in display order.
func (s *Store) Pages() []domain.Page {
	out := make([]domain.Page, len(s.order))
	for i, id := range s.order {
		out[i] = *s.pages[id]
	}
	return out
}

func (s *Store) indexOfID(id string) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}
