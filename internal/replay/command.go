/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package replay

import (
	"errors"
	"fmt"
	"strings"
)

// Op names a workspace command.
type Op string

const (
	OpNew    Op = "new"
	OpOpen   Op = "open"
	OpEdit   Op = "edit"
	OpAppend Op = "append"
	OpRename Op = "rename"
	OpDelete Op = "delete"
	OpUndo   Op = "undo"
	OpList   Op = "list"
	OpShow   Op = "show"
	OpRecent Op = "recent"
	OpSearch Op = "search"
	OpExport Op = "export"
	OpHelp   Op = "help"
	OpQuit   Op = "quit"
)

// Command is a single parsed command. Arg holds everything after the verb.
type Command struct {
	Op  Op
	Arg string
	// LineNo is the 1-based source line or script step, 0 when unknown.
	LineNo int
}

var (
	// ErrUnknownCommand is returned for verbs that are not in the command table.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMissingArgument is returned when a command that needs an argument has none.
	ErrMissingArgument = errors.New("missing argument")
)

type opInfo struct {
	needsArg bool
	usage    string
	summary  string
}

var ops = map[Op]opInfo{
	OpNew:    {false, "new", "create a page and open it"},
	OpOpen:   {true, "open <title>", "open the page with this title"},
	OpEdit:   {false, "edit <text>", `replace the page content (\n starts a new line)`},
	OpAppend: {true, "append <text>", "add a line to the page content"},
	OpRename: {false, "rename <title>", "rename the open page"},
	OpDelete: {false, "delete", "delete the open page"},
	OpUndo:   {false, "undo", "revert the last edit of the open page"},
	OpList:   {false, "list", "list pages in order, * marks the open one"},
	OpShow:   {false, "show", "print the open page"},
	OpRecent: {false, "recent", "list recently opened pages"},
	OpSearch: {false, "search <words>", "full-text search over titles and content"},
	OpExport: {true, "export <file.pdf>", "write all pages to a PDF"},
	OpHelp:   {false, "help", "show this help"},
	OpQuit:   {false, "quit", "leave the session"},
}

// order in which commands are listed in help output
var opOrder = []Op{OpNew, OpOpen, OpEdit, OpAppend, OpRename, OpDelete, OpUndo, OpList, OpShow, OpRecent, OpSearch, OpExport, OpHelp, OpQuit}

// ParseLine parses one REPL line. Blank lines and lines starting with '#'
// yield ok == false. Escape sequences in the argument are expanded.
func ParseLine(line string, lineNo int) (cmd Command, ok bool, err error) {
	trim := strings.TrimSpace(line)
	if trim == "" || strings.HasPrefix(trim, "#") {
		return Command{}, false, nil
	}
	verb, arg, _ := strings.Cut(trim, " ")
	op := Op(strings.ToLower(verb))
	if op == "exit" {
		op = OpQuit
	}
	cmd = Command{Op: op, Arg: Unescape(strings.TrimLeft(arg, " \t")), LineNo: lineNo}
	if err := cmd.Validate(); err != nil {
		return cmd, true, err
	}
	return cmd, true, nil
}

// Validate checks the verb and argument presence.
func (c Command) Validate() error {
	info, known := ops[c.Op]
	if !known {
		return fmt.Errorf("%w %q", ErrUnknownCommand, string(c.Op))
	}
	if info.needsArg && strings.TrimSpace(c.Arg) == "" {
		return fmt.Errorf("%s: %w (usage: %s)", c.Op, ErrMissingArgument, info.usage)
	}
	return nil
}

// Unescape expands \n, \t and \\ in s. Unknown escapes are kept verbatim.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte(c)
			continue
		}
		i++
	}
	return sb.String()
}

// HelpText lists the commands accepted by the REPL and replay scripts.
func HelpText() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, op := range opOrder {
		info := ops[op]
		fmt.Fprintf(&sb, "  %-18s %s\n", info.usage, info.summary)
	}
	sb.WriteString("\nIn the desktop app: Ctrl+N new page, Ctrl+Z undo, Del deletes the current page,\n")
	sb.WriteString("Enter in the title field or leaving it renames.\n")
	return sb.String()
}
