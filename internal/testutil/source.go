// Package testutil provides test helpers including deterministic randomness
// and container management for storage tests.
package testutil

import "sync"

// SequenceSource is a dice.Source that replays fixed values in order,
// cycling when a sequence is exhausted. Empty sequences yield zero.
//
// Intn returns the next value modulo n so any sequence satisfies [0, n).
type SequenceSource struct {
	Ints   []int
	Floats []float64

	mu sync.Mutex
	ii int
	fi int
}

// Intn returns the next scripted int reduced into [0, n).
//
// Precondition: n > 0.
func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic("testutil: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[s.ii%len(s.Ints)]
	s.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 returns the next scripted float.
func (s *SequenceSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}
