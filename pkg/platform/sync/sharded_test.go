package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutexLockUnlock(t *testing.T) {
	m := NewShardedMutex()

	m.Lock("auth:asha@example.com:203.0.113.7")
	m.Unlock("auth:asha@example.com:203.0.113.7")

	// Empty key lands on shard 0.
	m.Lock("")
	m.Unlock("")
}

func TestShardedMutexDifferentKeysProceed(t *testing.T) {
	m := NewShardedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			m.Lock(key)
			defer m.Unlock(key)
		}("auth:donor" + string(rune('a'+i%26)) + "@example.com:198.51.100.4")
	}
	wg.Wait()
}

func TestShardedMutexSameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0
	var wg sync.WaitGroup

	for n := 0; n < 100; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("auth:asha@example.com:203.0.113.7")
			defer m.Unlock("auth:asha@example.com:203.0.113.7")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestShardedMutexDistribution(t *testing.T) {
	m := NewShardedMutex()

	shards := make(map[int]bool)
	keys := []string{
		"auth:asha@example.com:203.0.113.7",
		"auth:binod@example.com:203.0.113.7",
		"auth:chitra@example.com:198.51.100.4",
		"auth:deepa@example.com:198.51.100.4",
		"auth:esha@example.com:192.0.2.10",
		"auth:farah@example.com:192.0.2.11",
	}
	for _, key := range keys {
		shards[m.shardFor(key)] = true
	}

	// Six distinct keys over 32 shards should not all collapse onto one.
	assert.GreaterOrEqual(t, len(shards), 3, "keys collapsed onto too few shards")
}

func TestHashString(t *testing.T) {
	assert.Equal(t, hashString("asha@example.com"), hashString("asha@example.com"))
	assert.NotEqual(t, hashString("asha@example.com"), hashString("binod@example.com"))
	assert.Equal(t, uint32(0), hashString(""))
}
