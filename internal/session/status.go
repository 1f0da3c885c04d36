/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

// StatusSink receives a human-readable message after every session command.
// There is no severity: presentation layers render the text as is.
type StatusSink interface {
	StatusChanged(message string)
}

// StatusFunc adapts a plain function to StatusSink.
type StatusFunc func(message string)

func (f StatusFunc) StatusChanged(message string) { f(message) }

// Recorder is a StatusSink that keeps every message, for tests and replays.
type Recorder struct {
	Messages []string
}

func (r *Recorder) StatusChanged(message string) {
	r.Messages = append(r.Messages, message)
}

// Last returns the most recent message or "".
func (r *Recorder) Last() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1]
}

// Reset forgets recorded messages.
func (r *Recorder) Reset() { r.Messages = nil }

// Status messages published by the session.
const (
	msgNoPage         = "No page selected"
	msgNothingToUndo  = "Nothing to undo"
	msgUndone         = "Undo successful"
	msgEmptyTitle     = "Page title cannot be empty"
	msgLastPage       = "Cannot delete the last page"
	msgEmptyWorkspace = "No pages. Click + to add one."
)

func msgEditing(title string) string { return "Editing: " + title }

func msgCreated(title string) string { return "Created: " + title }

func msgRenamed(title string) string { return "Renamed to: " + title }

func msgDeleted(title string) string { return "Deleted: " + title }

func msgNotFound(title string) string { return "Page not found: " + title }

func msgDuplicate(title string) string { return "A page named \"" + title + "\" already exists" }
