// Package store persists one session record to a durable local slot so the
// authority can survive a process restart.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/tabletop-royale/stormengine/internal/game"
)

// SessionKey is the fixed slot every save lands in.
const SessionKey = "stormengine.session"

// Session is the full persisted record: the replicated game state plus the
// kill simulator's private bookkeeping.
type Session struct {
	State          game.State `json:"state"`
	KillsTriggered int        `json:"kills_triggered"`
	Eliminated     []string   `json:"eliminated"`
	SavedAt        time.Time  `json:"saved_at"`
}

// Store is the capability the engine needs from durable storage. Load
// returns ok=false when nothing has been saved; a decode failure is an error
// the caller treats as absence.
type Store interface {
	Save(ctx context.Context, sess Session) error
	Load(ctx context.Context) (Session, bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// Memory is an in-process Store for tests.
type Memory struct {
	mu   sync.Mutex
	sess *Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(ctx context.Context, sess Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := sess
	cp.State = *cloneState(&sess.State)
	m.sess = &cp
	return nil
}

func (m *Memory) Load(ctx context.Context) (Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return Session{}, false, nil
	}
	cp := *m.sess
	cp.State = *cloneState(&m.sess.State)
	return cp, true, nil
}

func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

func (m *Memory) Close() error { return nil }

func cloneState(s *game.State) *game.State {
	cp := s.Clone()
	return &cp
}
