package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dygy/scorebot/internal/asset"
	"github.com/dygy/scorebot/internal/router"
)

// Manager creates and looks up sessions. Each conversation gets its own
// asset cache; there is no shared mutable state between sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	oracle   Oracle
	router   *router.Router
	capacity int
	log      *slog.Logger
}

// NewManager creates a session manager. capacity bounds each session's
// asset cache.
func NewManager(or Oracle, rt *router.Router, capacity int, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		oracle:   or,
		router:   rt,
		capacity: capacity,
		log:      log,
	}
}

// Get returns the session for id, creating it if unknown. An empty id
// allocates a fresh session.
func (m *Manager) Get(id string) *Session {
	if id != "" {
		m.mu.RLock()
		s, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return s
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	} else if s, ok := m.sessions[id]; ok {
		return s
	}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		assets:    asset.NewCache(m.capacity),
		oracle:    m.oracle,
		router:    m.router,
		log:       m.log,
	}
	m.sessions[id] = s
	m.log.Info("session created", "session", id)
	return s
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
