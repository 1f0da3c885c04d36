/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package search maintains a full-text index over workspace pages.
// The index is an in-memory SQLite database (FTS5) rebuilt from a snapshot of
// the pages; it lives only as long as the process, like the workspace itself.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"mininotion/internal/domain"
	applog "mininotion/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Index is a searchable copy of the workspace pages.
type Index struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates an empty in-memory index.
func Open(ctx context.Context) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("search"), "index_open")
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to :memory: is a separate database, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	return &Index{db: db, log: applog.WithComponent("search")}, nil
}

// Close releases the database.
func (ix *Index) Close() error { return ix.db.Close() }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id   INTEGER PRIMARY KEY,
			page_id  TEXT    NOT NULL UNIQUE,
			position INTEGER NOT NULL,
			title    TEXT    NOT NULL,
			content  TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_position ON documents(position);`,
		// External-content FTS fed from documents via triggers; keeps snippet() usable.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			title,
			content,
			content='documents',
			content_rowid='doc_id',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, title, content) VALUES (new.doc_id, new.title, new.content);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, title, content) VALUES ('delete', old.doc_id, old.title, old.content);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, title, content) VALUES ('delete', old.doc_id, old.title, old.content);
			INSERT INTO fts_documents(rowid, title, content) VALUES (new.doc_id, new.title, new.content);
		END;`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return nil
}

// Rebuild replaces the indexed documents with pages, in display order.
func (ix *Index) Rebuild(ctx context.Context, pages []domain.Page) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear documents: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO documents(page_id, position, title, content) VALUES(?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for i, p := range pages {
		if _, err := ins.ExecContext(ctx, p.ID, i, p.Title, p.Content); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert document: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	ix.log.Debug("index rebuilt", slog.Int("pages", len(pages)))
	return nil
}
