package memory

import (
	"time"

	"ai-research-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Conversation state expires after an hour of silence, purged every 10m.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(state *store.ConversationState) {
	r.cache.Set(state.ID, state, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(conversationID string) (*store.ConversationState, bool) {
	if x, found := r.cache.Get(conversationID); found {
		return x.(*store.ConversationState), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(conversationID string) {
	r.cache.Delete(conversationID)
}
