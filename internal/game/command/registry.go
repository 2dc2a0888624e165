package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// maxSuggestions bounds the names Suggest returns.
const maxSuggestions = 3

// Registry resolves command words (names and aliases, case-insensitive) to
// their Command.
type Registry struct {
	byWord map[string]*Command
	sorted []*Command
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: Every command has a name and a handler; no word names two
// commands.
// Postcondition: Returns a Registry, or an error describing the first
// incomplete command or word collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command, 2*len(cmds))}
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Name == "" {
			return nil, errors.New("command without a name")
		}
		if cmd.Handler == "" {
			return nil, fmt.Errorf("command %q has no handler", cmd.Name)
		}
		if prev, ok := r.byWord[strings.ToLower(cmd.Name)]; ok {
			if prev.Name == cmd.Name {
				return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
			}
			return nil, fmt.Errorf("command name %q conflicts with an alias of %q", cmd.Name, prev.Name)
		}
		r.byWord[strings.ToLower(cmd.Name)] = cmd

		for _, alias := range cmd.Aliases {
			key := strings.ToLower(alias)
			if prev, ok := r.byWord[key]; ok {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, prev.Name, cmd.Name)
			}
			r.byWord[key] = cmd
		}
		r.sorted = append(r.sorted, cmd)
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].Name < r.sorted[j].Name })
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
//
// Postcondition: Returns a Registry with all built-in commands registered.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias, ignoring case.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.byWord[strings.ToLower(word)]
	return cmd, ok
}

// Suggest returns up to three command names the mistyped word may have
// meant: names or aliases it is a prefix of, or one edit away from.
func (r *Registry) Suggest(word string) []string {
	word = strings.ToLower(word)
	if word == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, cmd := range r.sorted {
		for _, w := range append([]string{cmd.Name}, cmd.Aliases...) {
			w = strings.ToLower(w)
			if seen[cmd.Name] || !(strings.HasPrefix(w, word) || oneEdit(word, w)) {
				continue
			}
			seen[cmd.Name] = true
			out = append(out, cmd.Name)
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// oneEdit reports whether a and b differ by exactly one insertion, deletion,
// substitution or adjacent swap.
func oneEdit(a, b string) bool {
	if a == b {
		return false
	}
	la, lb := len(a), len(b)
	if la > lb {
		a, b, la, lb = b, a, lb, la
	}
	if lb-la > 1 {
		return false
	}
	i := 0
	for i < la && a[i] == b[i] {
		i++
	}
	if la == lb {
		if a[i+1:] == b[i+1:] {
			return true
		}
		return i+1 < la && a[i] == b[i+1] && a[i+1] == b[i] && a[i+2:] == b[i+2:]
	}
	return a[i:] == b[i+1:]
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.sorted...)
}

// CommandsByCategory returns commands grouped by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}
