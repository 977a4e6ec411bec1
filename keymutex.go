package pagestore

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyLocks serializes operations per key with a fixed set of striped
// RWMutexes. Mutations take the write lock, reads the read lock. Two keys
// may share a stripe; that only costs contention, never correctness.
type keyLocks struct {
	stripes [lockStripes]sync.RWMutex
}

func (l *keyLocks) stripe(key string) *sync.RWMutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.stripes[h.Sum32()%lockStripes]
}

func (l *keyLocks) lock(key string)    { l.stripe(key).Lock() }
func (l *keyLocks) unlock(key string)  { l.stripe(key).Unlock() }
func (l *keyLocks) rlock(key string)   { l.stripe(key).RLock() }
func (l *keyLocks) runlock(key string) { l.stripe(key).RUnlock() }
