package dashboard

import (
	"log"
	"sync"
)

// Sequencer orders responses of one view. Every load takes a token before
// calling the backend; only a response whose token is newer than the last
// applied one may replace the view state, so a slow stale reply can no
// longer overwrite fresher data.
type Sequencer struct {
	name    string
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// NewSequencer creates a sequencer; name is used in logs
func NewSequencer(name string) *Sequencer {
	return &Sequencer{name: name}
}

// Begin issues the token for a new request
func (s *Sequencer) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Accept reports whether the response for token may be applied and, if so,
// marks it as the latest applied
func (s *Sequencer) Accept(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token <= s.applied {
		log.Printf("[Dashboard] Dropped stale %s response (token %d, applied %d)", s.name, token, s.applied)
		return false
	}
	s.applied = token
	return true
}
