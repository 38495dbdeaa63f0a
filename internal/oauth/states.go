package oauth

import (
	"sync"
	"time"
)

// StateTTL is how long a consent redirect may take before its state is
// rejected.
const StateTTL = 10 * time.Minute

// StateStore remembers the state values handed out with consent URLs so the
// callback can prove it answers one of them. Each state is redeemable once.
type StateStore struct {
	states sync.Map
	ttl    time.Duration
}

func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{ttl: ttl}
}

// New generates and stores a fresh state.
func (s *StateStore) New() (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", err
	}
	s.states.Store(state, time.Now().Add(s.ttl))
	return state, nil
}

// Redeem consumes the state. It reports false for unknown, reused or expired
// states.
func (s *StateStore) Redeem(state string) bool {
	v, ok := s.states.LoadAndDelete(state)
	if !ok {
		return false
	}
	expiresAt, ok := v.(time.Time)
	return ok && time.Now().Before(expiresAt)
}

// Purge removes states that expired before now and returns how many it
// removed.
func (s *StateStore) Purge(now time.Time) int {
	removed := 0
	s.states.Range(func(key, value any) bool {
		if expiresAt, ok := value.(time.Time); !ok || now.After(expiresAt) {
			s.states.Delete(key)
			removed++
		}
		return true
	})
	return removed
}
