// Package sync provides concurrency primitives shared across services.
package sync

import (
	"sync"
)

// ShardedMutex serializes work per string key without a global lock. Keys
// hash onto a fixed set of shards, so two keys contend only when they land
// on the same shard. The login lockout service uses it to keep
// read-modify-write sequences on one account/IP pair atomic while unrelated
// logins proceed in parallel.
type ShardedMutex struct {
	shards [32]sync.Mutex
}

// NewShardedMutex creates a ShardedMutex with 32 shards.
func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// Lock acquires the shard owning the given key.
// Empty keys fall into shard 0.
func (m *ShardedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the shard owning the given key.
// Empty keys fall into shard 0.
func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

func (m *ShardedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % uint32(len(m.shards)))
}

// hashString spreads keys across shards. Multiplicative hashing is enough
// here; shard balance matters, cryptographic strength does not.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
