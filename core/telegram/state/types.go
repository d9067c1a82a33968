package state

import (
	"context"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and its data for a user.
type Session struct {
	State     State             `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Idle reports whether the session carries no active conversation.
func (s Session) Idle() bool {
	return s.State == "" || s.State == StateIdle
}

func (s Session) clone() Session {
	out := s
	if s.Data != nil {
		out.Data = make(map[string]string, len(s.Data))
		for k, v := range s.Data {
			out.Data[k] = v
		}
	}
	return out
}

// Manager persists user sessions. A missing session reads as idle.
type Manager interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Save(ctx context.Context, userID int64, s Session) error
	Clear(ctx context.Context, userID int64) error
	InProgress(ctx context.Context, userID int64) (bool, error)
}

func idleSession() Session {
	return Session{State: StateIdle}
}
