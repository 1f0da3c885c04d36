/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

// Config controls depth and memory caps.
type Config struct {
	// MaxDepth limits the number of snapshots kept (0 means unlimited).
	MaxDepth int
	// MaxBytes is a soft cap; the oldest snapshots are pruned when exceeded.
	MaxBytes int
}

// DefaultConfig returns the caps used when none are configured.
func DefaultConfig() Config {
	return Config{MaxDepth: 100, MaxBytes: 4 * 1024 * 1024}
}

// History is a LIFO stack of content snapshots for the page currently being
// edited. It is not keyed by page: the owner must Clear it whenever the
// active page changes. History is not safe for concurrent use.
type History struct {
	cfg   Config
	stack []string
	// accounting
	totalBytes int
}

// NewHistory returns an empty history. A negative MaxBytes disables the memory cap.
func NewHistory(cfg Config) *History {
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultConfig().MaxBytes
	}
	return &History{cfg: cfg}
}

// Record pushes the content as it was before an edit.
func (h *History) Record(previous string) {
	h.stack = append(h.stack, previous)
	h.totalBytes += len(previous)
	h.enforceCaps()
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (string, bool) {
	n := len(h.stack)
	if n == 0 {
		return "", false
	}
	s := h.stack[n-1]
	h.stack[n-1] = ""
	h.stack = h.stack[:n-1]
	h.totalBytes -= len(s)
	return s, true
}

// Clear drops every snapshot.
func (h *History) Clear() {
	h.stack = nil
	h.totalBytes = 0
}

// Len returns the number of snapshots held.
func (h *History) Len() int { return len(h.stack) }

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (totalBytes int, snapshots int) {
	return h.totalBytes, len(h.stack)
}

func (h *History) enforceCaps() {
	drop := 0
	if h.cfg.MaxDepth > 0 && len(h.stack) > h.cfg.MaxDepth {
		drop = len(h.stack) - h.cfg.MaxDepth
	}
	for i := 0; i < drop; i++ {
		h.totalBytes -= len(h.stack[i])
	}
	// Memory cap: prune oldest but always keep the newest snapshot
	for h.cfg.MaxBytes > 0 && h.totalBytes > h.cfg.MaxBytes && len(h.stack)-drop > 1 {
		h.totalBytes -= len(h.stack[drop])
		drop++
	}
	if drop > 0 {
		h.stack = append([]string(nil), h.stack[drop:]...)
	}
}
