/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Query describes a search request.
// Text is split into terms that must all match, each as a prefix; set Raw to
// pass Text through as FTS5 syntax (phrases, AND/OR/NOT).
// An empty Text lists every page in display order.
type Query struct {
	Text   string
	Raw    bool
	Limit  int
	Offset int
}

// Result is a single matching page.
// Snippet marks matches with [ ] and is empty when listing without text.
type Result struct {
	PageID   string
	Title    string
	Position int
	Snippet  string
}

// Search runs q against the index.
func (ix *Index) Search(ctx context.Context, q Query) ([]Result, error) {
	var args []any
	var sb strings.Builder
	match := strings.TrimSpace(q.Text)
	if match != "" && !q.Raw {
		match = prefixTerms(match)
	}
	if match != "" {
		sb.WriteString("SELECT d.page_id, d.title, d.position, snippet(fts_documents, -1, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		sb.WriteString("ORDER BY rank, d.position\n")
		args = append(args, match)
	} else {
		sb.WriteString("SELECT d.page_id, d.title, d.position, ''\n")
		sb.WriteString("FROM documents d\n")
		sb.WriteString("ORDER BY d.position\n")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := ix.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		var r Result
		var sn sql.NullString
		if err := rows.Scan(&r.PageID, &r.Title, &r.Position, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// prefixTerms quotes each whitespace-separated term and makes it a prefix
// query, so user input never trips FTS5 syntax.
func prefixTerms(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"*`
	}
	return strings.Join(fields, " ")
}
