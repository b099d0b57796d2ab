package dashboard

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the view state of one browser
type Session struct {
	ID          string
	QueueErrors *QueueErrors
	Tags        *Tags
	Report      *Report
	Toasts      *Toasts

	mu       sync.Mutex
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:          id,
		QueueErrors: NewQueueErrors(),
		Tags:        NewTags(),
		Report:      NewReport(),
		Toasts:      &Toasts{},
		lastSeen:    now,
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns the time of the last request of this session
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps sessions in memory and evicts idle ones
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store; sessions idle longer than ttl are evicted by Sweep
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for id, creating a new one (with a fresh id) when
// id is unknown or malformed. The second value reports whether it was created.
func (st *SessionStore) Get(id string) (*Session, bool) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, err := uuid.Parse(id); err == nil {
		if s, ok := st.sessions[id]; ok {
			s.touch(now)
			return s, false
		}
	}

	s := newSession(uuid.NewString(), now)
	st.sessions[s.ID] = s
	return s, true
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were removed
func (st *SessionStore) Sweep() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[Sessions] Evicted %d idle sessions, %d remaining", removed, len(st.sessions))
	}
	return removed
}
