/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package replay

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed script.schema.json
var scriptSchema []byte

// ErrInvalidScript is returned when a script does not conform to the script schema.
var ErrInvalidScript = errors.New("invalid replay script")

// Script is a recorded sequence of commands.
type Script struct {
	Version int    `json:"version"`
	Name    string `json:"name,omitempty"`
	Steps   []Step `json:"steps"`
}

// Step is one command of a Script. Arg is taken literally, without escape expansion.
type Step struct {
	Op  Op     `json:"op"`
	Arg string `json:"arg,omitempty"`
}

// ParseScript validates data against the script schema and decodes it.
func ParseScript(data []byte) (Script, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(scriptSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Script{}, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Script{}, fmt.Errorf("%w: %s", ErrInvalidScript, strings.Join(msgs, "; "))
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("decode script: %w", err)
	}
	return s, nil
}

// LoadScript reads and parses a script file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// Run executes every step of s in order and stops at the first failing step.
func (r *Runner) Run(ctx context.Context, s Script) error {
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd := Command{Op: st.Op, Arg: st.Arg, LineNo: i + 1}
		fmt.Fprintf(r.out, "> %s\n", formatCommand(cmd))
		if _, err := r.Exec(ctx, cmd); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
	}
	return nil
}

// RunREPL reads commands from in until EOF or quit. Malformed commands and
// failing searches or exports are printed and the loop continues.
func (r *Runner) RunREPL(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	r.prompt()
	for sc.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd, ok, err := ParseLine(sc.Text(), lineNo)
		if !ok {
			r.prompt()
			continue
		}
		if err == nil {
			var quit bool
			quit, err = r.Exec(ctx, cmd)
			if quit {
				return nil
			}
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		r.prompt()
	}
	return sc.Err()
}

func (r *Runner) prompt() {
	if title, ok := r.sess.ActiveTitle(); ok {
		fmt.Fprintf(r.out, "[%s] > ", title)
		return
	}
	fmt.Fprint(r.out, "> ")
}

func formatCommand(c Command) string {
	if c.Arg == "" {
		return string(c.Op)
	}
	return string(c.Op) + " " + strings.ReplaceAll(c.Arg, "\n", `\n`)
}
