package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnterminatedQuote is returned when a quoted argument is never closed.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command, with quotes removed.
	Args []string
	// RawArgs is the raw text after the command (preserving spacing for notes).
	RawArgs string
}

// Parse splits a text line into a command and arguments.
// Double or single quotes group words, so `player "Aria Storm" 30 2 120`
// yields four arguments.
//
// Precondition: none.
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
// An unclosed quote returns ErrUnterminatedQuote with the command still set.
func Parse(line string) (ParseResult, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}, nil
	}

	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{Command: strings.ToLower(line)}, nil
	}

	res := ParseResult{
		Command: strings.ToLower(line[:spaceIdx]),
		RawArgs: strings.TrimSpace(line[spaceIdx+1:]),
	}
	if res.RawArgs == "" {
		return res, nil
	}
	args, err := splitArgs(res.RawArgs)
	if err != nil {
		return res, err
	}
	res.Args = args
	return res, nil
}

func splitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: %c", ErrUnterminatedQuote, quote)
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}

// Arg returns the i-th argument, or "" if there are fewer arguments.
func (p ParseResult) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}

// Float parses the i-th argument as a number.
func (p ParseResult) Float(i int) (float64, error) {
	s := p.Arg(i)
	if s == "" {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %d: %q is not a number", i+1, s)
	}
	return v, nil
}

// Int parses the i-th argument as an integer.
func (p ParseResult) Int(i int) (int, error) {
	s := p.Arg(i)
	if s == "" {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("argument %d: %q is not an integer", i+1, s)
	}
	return v, nil
}

// OnOff parses the i-th argument as a switch. present is false when the
// argument is absent, which callers treat as a toggle.
func (p ParseResult) OnOff(i int) (on, present bool, err error) {
	s := strings.ToLower(p.Arg(i))
	switch s {
	case "":
		return false, false, nil
	case "on", "true", "yes", "1":
		return true, true, nil
	case "off", "false", "no", "0":
		return false, true, nil
	}
	return false, true, fmt.Errorf("argument %d: %q must be on or off", i+1, s)
}
