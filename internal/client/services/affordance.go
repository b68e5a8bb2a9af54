package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/dktlearn/internal/common"
	"golang.org/x/sync/semaphore"
)

// Affordances serializes repeated invocations of the same action. While an
// action named key is in flight, a second Do for key fails fast with
// common.ErrBusy; different keys run concurrently. A key only holds a slot
// while its action runs.
type Affordances struct {
	mu    sync.Mutex
	slots map[string]*semaphore.Weighted
}

func NewAffordances() *Affordances {
	return &Affordances{slots: map[string]*semaphore.Weighted{}}
}

func (a *Affordances) acquire(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.slots[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		a.slots[key] = s
	}
	return s.TryAcquire(1)
}

func (a *Affordances) release(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slots[key].Release(1)
	delete(a.slots, key)
}

// Busy reports whether the action named key is in flight.
func (a *Affordances) Busy(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.slots[key]
	return ok
}

// Do runs fn unless key is already in flight.
func (a *Affordances) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if !a.acquire(key) {
		return common.ErrBusy
	}
	defer a.release(key)
	return fn(ctx)
}
