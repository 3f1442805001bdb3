package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"cicd-analytics-be/pkg/store"
)

// HistoryRepository keeps per-session conversation history in memory.
// Sessions idle longer than the TTL are evicted by the cache's periodic
// purge, which keeps the map bounded without an explicit turn cap. The
// mutex serializes read-modify-write so concurrent appends on the same
// session never lose a turn; order reflects append (completion) order.
type HistoryRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewHistoryRepository(ttl time.Duration) *HistoryRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &HistoryRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Append adds a completed turn to the session, creating it when unseen.
// Each append refreshes the session's TTL.
func (r *HistoryRepository) Append(sessionID string, turn store.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := &store.SessionHistory{ID: sessionID}
	if x, found := r.cache.Get(sessionID); found {
		history = x.(*store.SessionHistory)
	}
	history.Turns = append(history.Turns, turn)
	r.cache.Set(sessionID, history, cache.DefaultExpiration)
}

// History returns a copy of the session's turns, empty for unseen ids.
func (r *HistoryRepository) History(sessionID string) []store.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(sessionID)
	if !found {
		return []store.Turn{}
	}
	history := x.(*store.SessionHistory)
	turns := make([]store.Turn, len(history.Turns))
	copy(turns, history.Turns)
	return turns
}
