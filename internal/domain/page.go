/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model of the note workspace.

import (
	"fmt"
	"strings"
)

// Page is a titled unit of freeform text.
// ID is assigned once at creation and never changes; Title is the mutable,
// user-visible name and is unique within a workspace.
type Page struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LastPagePolicy decides what happens when the only remaining page is deleted.
type LastPagePolicy string

const (
	// PolicyReplace permits the delete and creates a fresh page so the workspace is never empty.
	PolicyReplace LastPagePolicy = "replace"
	// PolicyGuard refuses to delete the only remaining page.
	PolicyGuard LastPagePolicy = "guard"
	// PolicyAllowEmpty permits the delete and leaves the workspace empty.
	PolicyAllowEmpty LastPagePolicy = "allow-empty"
)

// ParseLastPagePolicy converts a config string into a policy. Empty means PolicyReplace.
func ParseLastPagePolicy(s string) (LastPagePolicy, error) {
	switch p := LastPagePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyReplace, nil
	case PolicyReplace, PolicyGuard, PolicyAllowEmpty:
		return p, nil
	default:
		return "", fmt.Errorf("unknown last page policy %q", s)
	}
}

// NormalizeTitle trims surrounding whitespace from a user-entered title.
func NormalizeTitle(s string) string { return strings.TrimSpace(s) }
