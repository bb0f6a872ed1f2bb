package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"uhe-console/internal/domain"
)

func restoreBlueprint() *domain.Blueprint {
	return &domain.Blueprint{
		ID:            "customer",
		Source:        "sap",
		BindingDB:     "RAW",
		BindingSchema: "SAP",
		BindingObject: "KNA1",
	}
}

func TestRestorer_AppliesWithoutDirty(t *testing.T) {
	store := NewStore()
	store.SettleInitialLoad() // restoration may run after settle too
	r := NewRestorer()
	bp := restoreBlueprint()

	assert.True(t, r.Restore(store, bp))

	got := store.DatabaseBinding(bp.Key())
	assert.Equal(t, domain.DatabaseBinding{DB: "RAW", Schema: "SAP", Table: "KNA1"}, got)
	assert.False(t, store.GetDirtyState(bp.Key()))
}

func TestRestorer_SuppressesRepeatedTuple(t *testing.T) {
	store := NewStore()
	r := NewRestorer()
	bp := restoreBlueprint()

	assert.True(t, r.Restore(store, bp))
	assert.False(t, r.Restore(store, bp), "identical tuple must be suppressed")

	// A different tuple applies again.
	bp.BindingObject = "KNB1"
	assert.True(t, r.Restore(store, bp))
}

func TestRestorer_EmptyTupleIsIgnored(t *testing.T) {
	store := NewStore()
	r := NewRestorer()
	bp := &domain.Blueprint{ID: "customer", Source: "sap"}

	assert.False(t, r.Restore(store, bp))
	assert.True(t, store.DatabaseBinding(bp.Key()).IsEmpty())
}

func TestRestorer_ForgetAllowsReapply(t *testing.T) {
	store := NewStore()
	r := NewRestorer()
	bp := restoreBlueprint()

	assert.True(t, r.Restore(store, bp))
	r.Forget(bp.Key())
	assert.True(t, r.Restore(store, bp))
}
