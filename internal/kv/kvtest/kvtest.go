// Package kvtest provides kv.Store doubles for exercising storage failure
// paths in tests.
package kvtest

import (
	"context"
	"errors"
	"sync"

	"github.com/sadopc/lunafocus/internal/kv"
)

// ErrInjected is returned by Flaky for keys configured to fail.
var ErrInjected = errors.New("kvtest: injected failure")

// Flaky wraps a kv.Store and fails reads or writes for selected keys.
type Flaky struct {
	kv.Store

	mu        sync.Mutex
	failGet   map[string]bool
	failSet   map[string]bool
	failAll   bool
	setCounts map[string]int
}

// NewFlaky wraps inner. With no failures configured it behaves like inner.
func NewFlaky(inner kv.Store) *Flaky {
	return &Flaky{
		Store:     inner,
		failGet:   map[string]bool{},
		failSet:   map[string]bool{},
		setCounts: map[string]int{},
	}
}

// FailGet makes Get on key return ErrInjected.
func (f *Flaky) FailGet(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet[key] = true
}

// FailSet makes Set on key return ErrInjected.
func (f *Flaky) FailSet(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet[key] = true
}

// FailAllWrites makes every Set and Remove fail.
func (f *Flaky) FailAllWrites(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = on
}

// Heal clears all configured failures.
func (f *Flaky) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = map[string]bool{}
	f.failSet = map[string]bool{}
	f.failAll = false
}

// SetCount reports how many successful writes key has received.
func (f *Flaky) SetCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCounts[key]
}

func (f *Flaky) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failGet[key]
	f.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return f.Store.Get(ctx, key)
}

func (f *Flaky) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.failAll || f.failSet[key]
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	if err := f.Store.Set(ctx, key, value); err != nil {
		return err
	}
	f.mu.Lock()
	f.setCounts[key]++
	f.mu.Unlock()
	return nil
}

func (f *Flaky) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failAll
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Store.Remove(ctx, key)
}
