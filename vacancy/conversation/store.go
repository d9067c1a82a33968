package conversation

import (
	"context"
	"fmt"

	"github.com/m3rciful/vacancybot/core/telegram/state"
)

const (
	keyLanguage   = "language"
	keySalaryBand = "salary_band"
	keyRegion     = "region"
)

// Store maps dialog sessions onto a generic state.Manager.
type Store struct {
	mgr state.Manager
}

// NewStore wraps mgr.
func NewStore(mgr state.Manager) *Store {
	return &Store{mgr: mgr}
}

// Load returns the user's session; users without one are idle.
func (s *Store) Load(ctx context.Context, userID int64) (Session, error) {
	raw, err := s.mgr.Get(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("conversation: load %d: %w", userID, err)
	}
	if raw.Idle() {
		return Session{Step: StepIdle}, nil
	}
	return Session{
		Step: raw.State,
		Selection: Selection{
			Language:   raw.Data[keyLanguage],
			SalaryBand: raw.Data[keySalaryBand],
			Region:     raw.Data[keyRegion],
		},
	}, nil
}

// Save persists sess. Idle sessions are cleared rather than stored.
func (s *Store) Save(ctx context.Context, userID int64, sess Session) error {
	if sess.Idle() {
		return s.Clear(ctx, userID)
	}
	data := make(map[string]string, 3)
	put := func(k, v string) {
		if v != "" {
			data[k] = v
		}
	}
	put(keyLanguage, sess.Selection.Language)
	put(keySalaryBand, sess.Selection.SalaryBand)
	put(keyRegion, sess.Selection.Region)

	if err := s.mgr.Save(ctx, userID, state.Session{State: sess.Step, Data: data}); err != nil {
		return fmt.Errorf("conversation: save %d: %w", userID, err)
	}
	return nil
}

// Clear drops the user's session.
func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.mgr.Clear(ctx, userID); err != nil {
		return fmt.Errorf("conversation: clear %d: %w", userID, err)
	}
	return nil
}
