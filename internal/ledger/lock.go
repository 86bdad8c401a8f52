package ledger

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// accountLocks serializes balance updates per account. Two concurrent
// Record or Void calls touching the same account would otherwise race
// on the read-modify-write of the balance.
var accountLocks sync.Map // uuid.UUID -> *sync.Mutex

// lockAccounts acquires the mutex for every distinct account ID and
// returns a function releasing them again.
//
// Locks are always taken in sorted ID order so that two transfers
// between the same pair of accounts cannot deadlock each other.
func lockAccounts(ids ...uuid.UUID) func() {
	sorted := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !contains(sorted, id) {
			sorted = append(sorted, id)
		}
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	locked := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		mu, _ := accountLocks.LoadOrStore(id, &sync.Mutex{})
		m := mu.(*sync.Mutex)
		m.Lock()
		locked = append(locked, m)
	}

	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
