package pool

import (
	"context"
	"sync"

	"lagoon/core"
)

type contextKey int

const heldPoolsKey contextKey = iota

// poolLocker serializes state transitions per pool. Pools are isolated, so
// operations on different pools run in parallel.
type poolLocker struct {
	mux   sync.Mutex
	locks map[uint64]*sync.Mutex
}

func newPoolLocker() *poolLocker {
	return &poolLocker{locks: make(map[uint64]*sync.Mutex)}
}

func (l *poolLocker) get(poolID uint64) *sync.Mutex {
	l.mux.Lock()
	defer l.mux.Unlock()

	lock, ok := l.locks[poolID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[poolID] = lock
	}

	return lock
}

// acquire takes the pool's exclusive lock and marks it held on the returned
// context. A call that arrives with the pool already held on its context is
// reentering mid transition and is rejected before it can deadlock or read a
// half-accrued snapshot.
func (l *poolLocker) acquire(ctx context.Context, poolID uint64) (context.Context, func(), error) {
	held, _ := ctx.Value(heldPoolsKey).(map[uint64]bool)
	if held[poolID] {
		return nil, nil, core.ErrReentrant
	}

	next := make(map[uint64]bool, len(held)+1)
	for id := range held {
		next[id] = true
	}
	next[poolID] = true

	lock := l.get(poolID)
	lock.Lock()

	return context.WithValue(ctx, heldPoolsKey, next), lock.Unlock, nil
}
