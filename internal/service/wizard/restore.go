package wizard

import (
	"sync"

	"uhe-console/internal/domain"
)

// Restorer applies server-side blueprint bindings into a session store.
// Restoration can be re-triggered by the recomputes it causes itself, so an
// idempotency guard is required: an update is skipped when the same
// blueprint is already being restored, or when the last-applied tuple for
// that blueprint equals the incoming one. Without the guard a programmatic
// write that triggers a recompute would re-trigger the same write forever.
type Restorer struct {
	mu          sync.Mutex
	inFlight    map[domain.BlueprintKey]bool
	lastApplied map[domain.BlueprintKey]domain.DatabaseBinding
}

// NewRestorer creates an empty Restorer.
func NewRestorer() *Restorer {
	return &Restorer{
		inFlight:    make(map[domain.BlueprintKey]bool),
		lastApplied: make(map[domain.BlueprintKey]domain.DatabaseBinding),
	}
}

// Restore populates the store's database binding for bp from the values the
// backend persisted. It returns true when the binding was applied, false
// when the guard suppressed it. Applied values never raise dirty flags.
func (r *Restorer) Restore(store *Store, bp *domain.Blueprint) bool {
	key := bp.Key()
	tuple := domain.DatabaseBinding{
		DB:     bp.BindingDB,
		Schema: bp.BindingSchema,
		Table:  bp.BindingObject,
	}
	if tuple.IsEmpty() {
		return false
	}

	r.mu.Lock()
	if r.inFlight[key] || r.lastApplied[key] == tuple {
		r.mu.Unlock()
		return false
	}
	r.inFlight[key] = true
	r.mu.Unlock()

	store.SetDatabaseBinding(key, tuple.DB, tuple.Schema, tuple.Table, false)

	r.mu.Lock()
	r.lastApplied[key] = tuple
	delete(r.inFlight, key)
	r.mu.Unlock()
	return true
}

// Forget drops the memoized tuple for a blueprint, so the next Restore for
// it applies again (used after the user clears a binding).
func (r *Restorer) Forget(key domain.BlueprintKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lastApplied, key)
}
