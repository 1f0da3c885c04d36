/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "errors"

// Failures of workspace operations. None of them is fatal: the session turns
// each into a status message and leaves the workspace untouched.
var (
	// ErrInvalidTitle is returned when a title is empty after trimming.
	ErrInvalidTitle = errors.New("page title cannot be empty")
	// ErrDuplicateTitle is returned when a rename targets a title used by another page.
	ErrDuplicateTitle = errors.New("page title already in use")
	// ErrNotFound is returned when an operation references an absent title.
	ErrNotFound = errors.New("page not found")
	// ErrLastPageGuard is returned when deleting the only page under PolicyGuard.
	ErrLastPageGuard = errors.New("cannot delete the last page")
)

// ErrNoActivePage is returned by session commands that need a selected page.
var ErrNoActivePage = errors.New("no page selected")
