package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/vacancybot/core/logger"
)

// MemoryManager keeps sessions in process memory. Sessions are lost on restart.
type MemoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	now      func() time.Time
}

// NewMemoryManager constructs an in-memory Manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		sessions: make(map[int64]Session),
		now:      time.Now,
	}
}

// Get returns the session for a user if it exists, otherwise an idle session.
func (m *MemoryManager) Get(_ context.Context, userID int64) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.sessions[userID]; ok {
		return session.clone(), nil
	}
	return idleSession(), nil
}

// Save stores s for the user. Saving an idle session removes it.
func (m *MemoryManager) Save(_ context.Context, userID int64, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Idle() {
		delete(m.sessions, userID)
		return nil
	}
	s = s.clone()
	s.UpdatedAt = m.now()
	m.sessions[userID] = s
	return nil
}

// Clear removes the entire session for a user.
func (m *MemoryManager) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

// InProgress reports whether the user has an active, non-idle session.
func (m *MemoryManager) InProgress(_ context.Context, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return ok && !s.Idle(), nil
}

// Len returns the number of stored sessions.
func (m *MemoryManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions untouched for longer than maxIdle and returns how many were removed.
func (m *MemoryManager) Sweep(ctx context.Context, maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	logger.LogEvent(ctx, logger.SVCSessions, slog.LevelDebug, "sessions.sweep",
		slog.String("status", "ok"),
		slog.Int("swept", removed),
		slog.Int("sessions", remaining),
	)
	return removed
}
