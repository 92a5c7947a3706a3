package quadtree

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// defaultMemoCapacity bounds the simplification memo. The reference
// implementation leaves this cache unbounded; we give it a generous but
// finite capacity instead (Open Question: memoization cache bound),
// since an unbounded map defeats the purpose of capping memory on a
// long-lived viewport-panning session.
const defaultMemoCapacity = 4096

// simplificationKey identifies one memoized simplification result: a
// specific route's specific track/segment, at a specific tolerance
// level, optionally scoped to one node's chunk (chunkID is 0 for a chunk
// that covers its whole segment without an index mapping).
type simplificationKey struct {
	routeID      int64
	trackIndex   int
	segmentIndex int
	level        int
	chunkID      uint64
}

func (k simplificationKey) String() string {
	return fmt.Sprintf("r%d/t%d/s%d/l%d/c%d", k.routeID, k.trackIndex, k.segmentIndex, k.level, k.chunkID)
}

// Memo caches Visvalingam-Whyatt simplification results keyed by
// (route, track, segment, level, chunk). Lookups take the read lock;
// the (possibly expensive) simplification runs outside any lock, and
// only the subsequent insert takes the write lock, so a query that gets
// cancelled mid-simplification never holds the lock and never leaves
// another goroutine looking at a torn cache entry.
type Memo struct {
	mu    sync.RWMutex
	cache *lru.Cache

	hits   uint64
	misses uint64
}

// NewMemo builds a Memo with the given capacity. A non-positive
// capacity falls back to defaultMemoCapacity.
func NewMemo(capacity int) *Memo {
	if capacity <= 0 {
		capacity = defaultMemoCapacity
	}
	c, err := lru.New(capacity)
	if err != nil {
		// Only possible if capacity <= 0, already excluded above.
		panic(err)
	}
	return &Memo{cache: c}
}

func (m *Memo) get(key simplificationKey) ([]int, bool) {
	m.mu.RLock()
	v, ok := m.cache.Get(key)
	m.mu.RUnlock()

	if !ok {
		m.addMiss()
		return nil, false
	}
	m.addHit()
	return v.([]int), true
}

func (m *Memo) put(key simplificationKey, indices []int) {
	m.mu.Lock()
	m.cache.Add(key, indices)
	m.mu.Unlock()
}

func (m *Memo) addHit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *Memo) addMiss() {
	m.mu.Lock()
	m.misses++
	m.mu.Unlock()
}

// Stats reports cumulative hit/miss counters for the memo.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// HitRate returns hits / (hits + misses), or 0 if the memo has never
// been queried.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns a snapshot of the memo's cumulative hit/miss counters.
func (m *Memo) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Hits: m.hits, Misses: m.misses}
}

// Purge discards every cached entry without resetting hit/miss counters.
func (m *Memo) Purge() {
	m.mu.Lock()
	m.cache.Purge()
	m.mu.Unlock()
}
