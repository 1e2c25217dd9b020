package workflow

import (
	"sync"
	"time"
)

// SessionManager hands out one Store per session key and forgets sessions
// that have been idle past the TTL. Keys are user identities, so one signed-in
// user resumes the same wizard across requests.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

type session struct {
	store    *Store
	lastSeen time.Time
}

// NewSessionManager creates a manager whose sessions expire after ttl of
// inactivity. A non-positive ttl disables expiry.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the store for key, creating it on first use. Expired sessions
// are pruned opportunistically on each lookup.
func (m *SessionManager) Get(key string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.ttl > 0 {
		for k, s := range m.sessions {
			if now.Sub(s.lastSeen) > m.ttl {
				delete(m.sessions, k)
			}
		}
	}

	s, ok := m.sessions[key]
	if !ok {
		s = &session{store: NewStore()}
		m.sessions[key] = s
	}
	s.lastSeen = now
	return s.store
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
