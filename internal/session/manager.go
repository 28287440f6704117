package session

import (
	"context"
	"sync"
	"time"

	"github.com/BerylCAtieno/documind/internal/utils"
)

// Manager owns the live sessions of the process.
type Manager struct {
	deps        *Dependencies
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(deps *Dependencies, idleTimeout time.Duration) *Manager {
	return &Manager{
		deps:        deps,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*Session),
	}
}

func (m *Manager) Create() *Session {
	s := New(utils.GenerateID(), m.deps)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.deps.Logger.Info("Session created", "session_id", s.ID)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	if !utils.IsValidID(id) {
		return nil, utils.NewNotFoundError("Session not found")
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, utils.NewNotFoundError("Session not found")
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return utils.NewNotFoundError("Session not found")
	}
	s.DismissNotices()
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout. Busy
// sessions are kept until their request finishes.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.Busy() || now.Sub(s.LastActive()) < m.idleTimeout {
			continue
		}
		s.DismissNotices()
		delete(m.sessions, id)
		removed++
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				m.deps.Logger.Info("Expired idle sessions", "count", n)
			}
		}
	}
}
