package trade

import (
	"fmt"
	"sync"
)

// keyLock serializes writers per (token, recommender, simulation) tuple.
// The store is the consistency arbiter for concurrent writers; this guard
// only enforces the single in-flight close the lifecycle assumes.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*entry)}
}

func tupleKey(tokenAddress, recommenderID string, simulation bool) string {
	return fmt.Sprintf("%s|%s|%t", tokenAddress, recommenderID, simulation)
}

// acquire locks the tuple and returns its release function.
func (k *keyLock) acquire(key string) func() {
	k.mu.Lock()
	e, exists := k.locks[key]
	if !exists {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
