package surface

import (
	"sync"

	"github.com/viant/runcell/model"
)

// Store is an in-memory Marker implementation tracking the state painted
// over each range. Applying a state to a range replaces whatever state the
// range carried before.
type Store struct {
	mu     sync.RWMutex
	states map[model.Range]State
}

// NewStore returns an empty marker store.
func NewStore() *Store {
	return &Store{states: map[model.Range]State{}}
}

// Apply paints state over r, replacing any previous state on the same range.
func (s *Store) Apply(r model.Range, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[r] = state
}

// Clear removes every marker carrying one of the supplied states. With no
// arguments it clears all markers.
func (s *Store) Clear(states ...State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(states) == 0 {
		s.states = map[model.Range]State{}
		return
	}
	for r, state := range s.states {
		for _, candidate := range states {
			if state == candidate {
				delete(s.states, r)
				break
			}
		}
	}
}

// State returns the marker painted over r, if any.
func (s *Store) State(r model.Range) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[r]
	return state, ok
}

// Ranges lists every range currently carrying the supplied state.
func (s *Store) Ranges(state State) []model.Range {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Range
	for r, candidate := range s.states {
		if candidate == state {
			result = append(result, r)
		}
	}
	return result
}

// Len returns the number of marked ranges.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
