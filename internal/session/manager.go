package session

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultManagerSize bounds the number of live sessions.
const DefaultManagerSize = 1024

// ErrSessionNotFound is returned when a session id is unknown or evicted.
var ErrSessionNotFound = errors.New("session not found")

// Manager tracks live sessions in a bounded LRU registry. The least
// recently used session is closed and evicted when the bound is reached,
// so abandoned sessions cannot accumulate.
type Manager struct {
	cache          *lru.Cache[string, *Session]
	sessionOptions []Option
}

// NewManager creates a manager that builds sessions with the given
// options. size <= 0 uses DefaultManagerSize.
func NewManager(size int, sessionOptions ...Option) (*Manager, error) {
	if size <= 0 {
		size = DefaultManagerSize
	}
	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, s *Session) {
		slog.Info("session evicted", "sessionID", id)
		s.Close()
	})
	if err != nil {
		return nil, err
	}
	return &Manager{cache: cache, sessionOptions: sessionOptions}, nil
}

// Create starts a new session and registers it.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.sessionOptions...)
	m.cache.Add(s.ID(), s)
	slog.Info("session created", "sessionID", s.ID())
	return s
}

// Get returns the session with the given id, marking it recently used.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and removes the session with the given id.
func (m *Manager) Delete(id string) error {
	if !m.cache.Remove(id) {
		return ErrSessionNotFound
	}
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int { return m.cache.Len() }

// Close closes every live session.
func (m *Manager) Close() {
	m.cache.Purge()
}
