package commands

import (
	"slices"
	"sync"

	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
)

// AccountLocks serializes in-process instructions that touch the same
// accounts or reuse the same idempotency key. Cross-process races are still
// caught by the store's version check.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Acquire locks every distinct account key and returns the release func.
func (l *AccountLocks) Acquire(keys []entities.Pubkey) func() {
	return l.AcquireWithIdempotencyKey("", keys)
}

// AcquireWithIdempotencyKey locks idempotencyKey (when set) together with
// every distinct account key. All names are taken in one sorted order so
// overlapping callers cannot deadlock.
func (l *AccountLocks) AcquireWithIdempotencyKey(idempotencyKey string, keys []entities.Pubkey) func() {
	names := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		names = append(names, "account/"+string(key[:]))
	}
	if idempotencyKey != "" {
		names = append(names, "idempotency/"+idempotencyKey)
	}
	slices.Sort(names)
	names = slices.Compact(names)

	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*lockEntry)
	}
	entries := make([]*lockEntry, 0, len(names))
	for _, name := range names {
		entry, ok := l.locks[name]
		if !ok {
			entry = &lockEntry{}
			l.locks[name] = entry
		}
		entry.refs++
		entries = append(entries, entry)
	}
	l.mu.Unlock()

	for _, entry := range entries {
		entry.mu.Lock()
	}
	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}
		l.mu.Lock()
		for i, name := range names {
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(l.locks, name)
			}
		}
		l.mu.Unlock()
	}
}
