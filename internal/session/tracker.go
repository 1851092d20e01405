package session

import (
	"context"
	"sync"
)

// Tracker stores one State per identity. Unknown identities are Idle.
type Tracker interface {
	Get(ctx context.Context, id int64) (State, error)
	// Set replaces the whole state; setting Idle clears it.
	Set(ctx context.Context, id int64, state State) error
	Clear(ctx context.Context, id int64) error
	// Lock serializes read-modify-write of one identity's state until unlock is called.
	Lock(ctx context.Context, id int64) (unlock func(), err error)
}

// MemoryTracker keeps sessions for the lifetime of the process.
type MemoryTracker struct {
	mu     sync.Mutex
	states map[int64]State
	locks  map[int64]*idLock
}

// idLock is dropped from the map once no holder or waiter references it.
type idLock struct {
	sem  chan struct{}
	refs int
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		states: make(map[int64]State),
		locks:  make(map[int64]*idLock),
	}
}

func (t *MemoryTracker) Get(_ context.Context, id int64) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.states[id]; ok {
		return s, nil
	}
	return Idle{}, nil
}

func (t *MemoryTracker) Set(_ context.Context, id int64, state State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if IsIdle(state) {
		delete(t.states, id)
		return nil
	}
	t.states[id] = state
	return nil
}

func (t *MemoryTracker) Clear(ctx context.Context, id int64) error {
	return t.Set(ctx, id, Idle{})
}

func (t *MemoryTracker) Lock(ctx context.Context, id int64) (func(), error) {
	t.mu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &idLock{sem: make(chan struct{}, 1)}
		t.locks[id] = l
	}
	l.refs++
	t.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		t.release(id, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			t.release(id, l)
		})
	}, nil
}

func (t *MemoryTracker) release(id int64, l *idLock) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(t.locks, id)
	}
}

func (t *MemoryTracker) lockCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
