// Package tokens keeps named integer counters such as status stacks or
// resource tokens.
package tokens

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrEmptyName is returned when adding a token without a name.
	ErrEmptyName = errors.New("token name must not be empty")
	// ErrTokenNotFound is returned when updating or removing an unknown token.
	ErrTokenNotFound = errors.New("token not found")
)

// Token is one named counter.
type Token struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Store holds tokens in insertion order.
//
// All methods are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	order  []string
	values map[string]int

	// Injected after construction. nil = no-op.
	OnChange func([]Token)
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]int)}
}

// Add creates name with value 0. Adding an existing token resets it to 0.
func (s *Store) Add(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	s.mutate(func() error {
		if _, ok := s.values[name]; !ok {
			s.order = append(s.order, name)
		}
		s.values[name] = 0
		return nil
	})
	return nil
}

// Update sets the value of an existing token.
func (s *Store) Update(name string, value int) error {
	return s.mutate(func() error {
		if _, ok := s.values[name]; !ok {
			return fmt.Errorf("token %q: %w", name, ErrTokenNotFound)
		}
		s.values[name] = value
		return nil
	})
}

// Remove deletes a token.
func (s *Store) Remove(name string) error {
	return s.mutate(func() error {
		if _, ok := s.values[name]; !ok {
			return fmt.Errorf("token %q: %w", name, ErrTokenNotFound)
		}
		delete(s.values, name)
		for i, n := range s.order {
			if n == name {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
		return nil
	})
}

// Get returns the value of name.
func (s *Store) Get(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// List returns every token in insertion order.
func (s *Store) List() []Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Restore replaces the store contents with list. Empty names are skipped and
// a repeated name keeps its first position and its last value.
func (s *Store) Restore(list []Token) {
	s.mutate(func() error {
		s.order = nil
		s.values = make(map[string]int, len(list))
		for _, t := range list {
			if t.Name == "" {
				continue
			}
			if _, ok := s.values[t.Name]; !ok {
				s.order = append(s.order, t.Name)
			}
			s.values[t.Name] = t.Value
		}
		return nil
	})
}

func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.listLocked()
	s.mu.Unlock()
	if s.OnChange != nil {
		s.OnChange(snap)
	}
	return nil
}

func (s *Store) listLocked() []Token {
	out := make([]Token, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, Token{Name: n, Value: s.values[n]})
	}
	return out
}
