package memory

import (
	"time"

	"spaced-learning-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DistractorCache keeps recently read distractor sets in memory so hot cards
// in an active session skip the table lookup. Entries are invalidated when a
// generation job rewrites the card's set.
type DistractorCache struct {
	cache *cache.Cache
}

func NewDistractorCache() *DistractorCache {
	c := cache.New(15*time.Minute, 5*time.Minute)
	return &DistractorCache{
		cache: c,
	}
}

func (r *DistractorCache) Save(cardId uuid.UUID, distractors []*entity.Distractor) {
	r.cache.Set(cardId.String(), distractors, cache.DefaultExpiration)
}

func (r *DistractorCache) Get(cardId uuid.UUID) ([]*entity.Distractor, bool) {
	if x, found := r.cache.Get(cardId.String()); found {
		return x.([]*entity.Distractor), true
	}
	return nil, false
}

func (r *DistractorCache) Invalidate(cardId uuid.UUID) {
	r.cache.Delete(cardId.String())
}
