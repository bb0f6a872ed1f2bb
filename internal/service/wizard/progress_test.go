package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhe-console/internal/backend"
	"uhe-console/internal/domain"
)

func testSummary() *domain.DeploymentSummary {
	return &domain.DeploymentSummary{
		Models: []domain.ModelSummary{
			{
				ModelID:   "dim_customer",
				ModelName: "Customer",
				ModelType: "dimension",
				Steps: []domain.SummaryStep{
					{
						Step:  "stage_tables",
						Label: "Stage tables",
						Items: []domain.SummaryItem{
							{Name: "STG_KNA1", BlueprintID: "customer"},
							{Name: "STG_KNB1", BlueprintID: "company"},
						},
					},
					{
						Step:  "views",
						Label: "Views",
						Items: []domain.SummaryItem{
							{Name: "DIM_CUSTOMER_V"},
						},
					},
				},
			},
			{
				ModelID:   "fct_orders",
				ModelType: "fact",
				Steps: []domain.SummaryStep{
					{
						Step:  "stage_tables",
						Items: []domain.SummaryItem{{Name: "STG_VBAK"}},
					},
				},
			},
		},
	}
}

func logEvent(t *testing.T, log domain.LogEvent) backend.Event {
	t.Helper()
	data, err := json.Marshal(log)
	require.NoError(t, err)
	return backend.Event{Type: backend.EventLog, Data: data}
}

func TestReconciler_SeedsEveryItemPending(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	assert.Equal(t, 4, r.total)
	for _, k := range r.sortedItemKeys() {
		assert.Equal(t, domain.ItemPending, r.ItemStatus(k.model, k.step, k.item))
	}
	assert.Zero(t, r.Progress())
}

func TestReconciler_TransitionsAndProgress(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelInfo, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNA1", Status: "starting", Message: "creating STG_KNA1",
	}))
	assert.Equal(t, domain.ItemInProgress, r.ItemStatus("dim_customer", "stage_tables", "STG_KNA1"))
	assert.Zero(t, r.Progress())

	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNA1", Status: "completed", Message: "STG_KNA1 created",
	}))
	assert.Equal(t, domain.ItemCompleted, r.ItemStatus("dim_customer", "stage_tables", "STG_KNA1"))
	assert.InDelta(t, 25.0, r.Progress(), 0.001)
	assert.InDelta(t, 25.0, store.DeploymentProgress(), 0.001)
}

func TestReconciler_DuplicatesAndBackwardTransitionsAreNoops(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	complete := domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNA1", Status: "completed", Message: "done",
	}
	r.Apply(logEvent(t, complete))
	r.Apply(logEvent(t, complete)) // duplicate
	r.Apply(logEvent(t, domain.LogEvent{ // late start after completion
		Level: domain.LevelInfo, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNA1", Status: "starting", Message: "late",
	}))

	assert.Equal(t, domain.ItemCompleted, r.ItemStatus("dim_customer", "stage_tables", "STG_KNA1"))
	assert.InDelta(t, 25.0, r.Progress(), 0.001)
}

func TestReconciler_ErrorIsTerminalForItemNotRun(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelError, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNA1", Message: "permission denied",
	}))
	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNA1", Status: "completed", Message: "should not apply",
	}))
	assert.Equal(t, domain.ItemError, r.ItemStatus("dim_customer", "stage_tables", "STG_KNA1"))

	// Other items keep going after a failure.
	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNB1", Status: "completed", Message: "done",
	}))
	assert.Equal(t, domain.ItemCompleted, r.ItemStatus("dim_customer", "stage_tables", "STG_KNB1"))
}

func TestReconciler_ResolvesItemByBlueprintID(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		BlueprintID: "company", Status: "completed", Message: "done",
	}))
	assert.Equal(t, domain.ItemCompleted, r.ItemStatus("dim_customer", "stage_tables", "STG_KNB1"))
}

func TestReconciler_UnresolvableEventsAreDropped(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "NOT_IN_MANIFEST", Status: "completed", Message: "done",
	}))
	r.Apply(backend.Event{Type: backend.EventLog, Data: json.RawMessage(`{broken`)})

	assert.Zero(t, r.Progress())
	// The log line is still recorded even when no matrix item matches.
	assert.NotEmpty(t, store.Logs())
}

func TestReconciler_ErrorGroupsDeduplicateByMessage(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	for _, obj := range []string{"STG_KNA1", "STG_KNB1"} {
		r.Apply(logEvent(t, domain.LogEvent{
			Level: domain.LevelError, Step: "stage_tables", ModelID: "dim_customer",
			ObjectName: obj, Message: "permission denied",
		}))
	}
	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelError, Step: "stage_tables", ModelID: "fct_orders",
		ObjectName: "STG_VBAK", Message: "timeout",
	}))

	groups := r.ErrorGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "permission denied", groups[0].Message)
	assert.Len(t, groups[0].Occurrences, 2)
	assert.Equal(t, "timeout", groups[1].Message)
	assert.Len(t, groups[1].Occurrences, 1)
}

func TestReconciler_CompleteEventIsKept(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	data, err := json.Marshal(domain.CompleteEvent{
		Message:    "Deployment complete",
		Total:      2,
		Successful: []domain.DeployOutcome{{Type: "dimension", ID: "dim_customer"}},
		Failed:     []domain.DeployOutcome{{Type: "fact", ID: "fct_orders", Error: "boom"}},
	})
	require.NoError(t, err)
	r.Apply(backend.Event{Type: backend.EventComplete, Data: data})

	outcome := r.Finish()
	require.NotNil(t, outcome)
	assert.Equal(t, "Deployment complete", outcome.Message)
	assert.Len(t, outcome.Successful, 1)
	assert.Len(t, outcome.Failed, 1)
}

func TestReconciler_FinishSynthesizesMissingComplete(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNA1", Status: "completed", Message: "done",
	}))
	progressBefore := r.Progress()

	outcome := r.Finish()
	require.NotNil(t, outcome)
	assert.Equal(t, "Deployment ended before summary event", outcome.Message)
	assert.Empty(t, outcome.Successful)
	assert.Empty(t, outcome.Failed)
	// The percentage freezes rather than snapping to 100.
	assert.Equal(t, progressBefore, r.Progress())
}

func TestReconciler_SnapshotRollsUpSteps(t *testing.T) {
	store := NewStore()
	r := NewReconciler(testSummary(), store, nil)

	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNA1", Status: "completed", Message: "done",
	}))

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	require.Len(t, snap[0].Steps, 2)
	assert.Equal(t, domain.ItemInProgress, snap[0].Steps[0].Status)
	assert.Equal(t, domain.ItemPending, snap[0].Steps[1].Status)

	r.Apply(logEvent(t, domain.LogEvent{
		Level: domain.LevelSuccess, Step: "stage_tables", ModelID: "dim_customer",
		ObjectName: "STG_KNB1", Status: "completed", Message: "done",
	}))
	snap = r.Snapshot()
	assert.Equal(t, domain.ItemCompleted, snap[0].Steps[0].Status)
}
