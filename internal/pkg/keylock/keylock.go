// Package keylock serializes work per string key using a fixed set of mutex stripes.
package keylock

import (
	"hash/maphash"
	"sync"
)

// DefaultStripes is used when New is given a non-positive count.
const DefaultStripes = 256

// Striped maps each key onto one of a fixed number of mutexes. Two callers
// holding the same key always contend; different keys rarely do.
type Striped struct {
	seed  maphash.Seed
	locks []sync.Mutex
}

func New(stripes int) *Striped {
	if stripes <= 0 {
		stripes = DefaultStripes
	}
	return &Striped{seed: maphash.MakeSeed(), locks: make([]sync.Mutex, stripes)}
}

// Lock blocks until key's stripe is held and returns the matching unlock.
func (s *Striped) Lock(key string) (unlock func()) {
	m := &s.locks[maphash.String(s.seed, key)%uint64(len(s.locks))]
	m.Lock()
	return m.Unlock
}
