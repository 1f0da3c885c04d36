/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

// Surface is the presentation's editing area: a title field and a content text.
// Implementations may call Session.Edit from their change callbacks; calls that
// arrive while the session is writing to the surface are ignored.
type Surface interface {
	SetTitle(title string)
	SetContent(content string)
}

// SurfaceState is the session's copy of what the editing area shows.
type SurfaceState struct {
	Title   string
	Content string
}

// recentList is a most-recently-used list of page titles.
type recentList struct {
	limit  int
	titles []string
}

func (r *recentList) touch(title string) {
	r.remove(title)
	r.titles = append([]string{title}, r.titles...)
	if len(r.titles) > r.limit {
		r.titles = r.titles[:r.limit]
	}
}

func (r *recentList) rename(oldTitle, newTitle string) {
	for i, t := range r.titles {
		if t == oldTitle {
			r.titles[i] = newTitle
		}
	}
}

func (r *recentList) remove(title string) {
	out := r.titles[:0]
	for _, t := range r.titles {
		if t != title {
			out = append(out, t)
		}
	}
	r.titles = out
}

func (r *recentList) list() []string {
	return append([]string(nil), r.titles...)
}
