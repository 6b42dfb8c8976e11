package memory

import (
	"time"

	"ai-survey-be/internal/constant"
	"ai-survey-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionStateRepository keeps the locally cached session state. Entries
// expire with the session timeout, so a stale session simply disappears.
type SessionStateRepository struct {
	cache *cache.Cache
}

func NewSessionStateRepository() *SessionStateRepository {
	c := cache.New(constant.SessionTimeout, 10*time.Minute)
	return &SessionStateRepository{
		cache: c,
	}
}

func (r *SessionStateRepository) Save(state *store.SessionState) {
	r.cache.Set(state.SessionID, state, cache.DefaultExpiration)
}

func (r *SessionStateRepository) Get(sessionID string) (*store.SessionState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.SessionState), true
	}
	return nil, false
}

func (r *SessionStateRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
