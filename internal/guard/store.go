package guard

import (
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// AttemptRecord tracks failed logins for one identity. A zero LockedUntil
// means no lockout is armed.
type AttemptRecord struct {
	Count          int
	LockedUntil    time.Time
	FirstAttemptAt time.Time
}

// AttemptStore is the injectable state backing the guard. Mutate runs fn
// under the key's lock: fn receives the current record (nil when absent) and
// returns the replacement (nil deletes). All state transitions go through
// Mutate so two concurrent failures for the same identity cannot race past
// the lockout threshold. The in-memory implementation is single-process;
// a multi-process deployment needs a shared store behind this interface.
type AttemptStore interface {
	Mutate(id string, fn func(rec *AttemptRecord) *AttemptRecord) *AttemptRecord
	Get(id string) (AttemptRecord, bool)
	Delete(id string)
	Range(fn func(id string, rec AttemptRecord) bool)
	Len() int
}

const shardCount = 32

type shard struct {
	mu   sync.Mutex
	recs map[string]AttemptRecord
}

// MemoryStore keeps attempt records in murmur3-striped shards so unrelated
// identities never contend on one lock.
type MemoryStore struct {
	shards [shardCount]*shard
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &shard{recs: make(map[string]AttemptRecord)}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	return s.shards[murmur3.Sum32([]byte(id))%shardCount]
}

func (s *MemoryStore) Mutate(id string, fn func(rec *AttemptRecord) *AttemptRecord) *AttemptRecord {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	var cur *AttemptRecord
	if rec, ok := sh.recs[id]; ok {
		copied := rec
		cur = &copied
	}

	next := fn(cur)
	if next == nil {
		delete(sh.recs, id)
		return nil
	}
	sh.recs[id] = *next
	copied := *next
	return &copied
}

func (s *MemoryStore) Get(id string) (AttemptRecord, bool) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.recs[id]
	return rec, ok
}

func (s *MemoryStore) Delete(id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.recs, id)
}

// Range visits every record. Each shard is locked only while its own
// entries are visited; fn returning false stops the walk.
func (s *MemoryStore) Range(fn func(id string, rec AttemptRecord) bool) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, rec := range sh.recs {
			if !fn(id, rec) {
				sh.mu.Unlock()
				return
			}
		}
		sh.mu.Unlock()
	}
}

func (s *MemoryStore) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.recs)
		sh.mu.Unlock()
	}
	return total
}
