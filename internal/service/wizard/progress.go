package wizard

import (
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"uhe-console/internal/backend"
	"uhe-console/internal/domain"
)

type itemKey struct {
	model string
	step  string
	item  string
}

// Reconciler turns the deploy stream's unordered, possibly-duplicated events
// into monotonic per-item state plus one aggregate percentage. Failure of one
// item never halts the stream. It is wired to a Store so progress stays
// visible outside the deploy view.
type Reconciler struct {
	store   *Store
	logger  *slog.Logger
	summary *domain.DeploymentSummary

	items    map[itemKey]domain.ItemStatus
	total    int
	errors   []domain.DeploymentError
	complete *domain.CompleteEvent
}

// NewReconciler seeds the progress matrix from the pre-fetched deployment
// summary: every enumerated item starts pending.
func NewReconciler(summary *domain.DeploymentSummary, store *Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{
		store:   store,
		logger:  logger.With("component", "deploy-progress"),
		summary: summary,
		items:   make(map[itemKey]domain.ItemStatus),
	}
	for _, m := range summary.Models {
		for _, st := range m.Steps {
			for _, it := range st.Items {
				r.items[itemKey{m.ModelID, st.Step, it.Name}] = domain.ItemPending
			}
		}
	}
	r.total = len(r.items)
	store.ClearLogs()
	store.SetDeploymentProgress(0)
	return r
}

// Apply processes one stream event. Events are applied strictly in arrival
// order; the reconciler is not safe for concurrent Apply calls.
func (r *Reconciler) Apply(ev backend.Event) {
	switch ev.Type {
	case backend.EventLog:
		var log domain.LogEvent
		if err := json.Unmarshal(ev.Data, &log); err != nil {
			r.logger.Warn("dropping malformed log event", "error", err)
			return
		}
		r.applyLog(log)

	case backend.EventModelStart:
		var start domain.ModelStartEvent
		if err := json.Unmarshal(ev.Data, &start); err != nil {
			r.logger.Warn("dropping malformed model_start event", "error", err)
			return
		}
		r.store.AppendLog("Deploying model '"+start.ModelID+"'", domain.LevelInfo, "", start.ModelID, parseEventTime(start.Timestamp))

	case backend.EventModelComplete:
		var done domain.ModelCompleteEvent
		if err := json.Unmarshal(ev.Data, &done); err != nil {
			r.logger.Warn("dropping malformed model_complete event", "error", err)
			return
		}
		level := domain.LevelSuccess
		msg := "Model '" + done.ModelID + "' deployed"
		if done.Status != "success" {
			level = domain.LevelError
			msg = "Model '" + done.ModelID + "' failed"
			if done.Error != "" {
				msg += ": " + done.Error
			}
		}
		r.store.AppendLog(msg, level, "", done.ModelID, parseEventTime(done.Timestamp))

	case backend.EventComplete:
		var complete domain.CompleteEvent
		if err := json.Unmarshal(ev.Data, &complete); err != nil {
			r.logger.Warn("dropping malformed complete event", "error", err)
			return
		}
		r.complete = &complete
		r.store.AppendLog(complete.Message, domain.LevelInfo, "", "", parseEventTime(complete.Timestamp))

	case backend.EventError:
		var log domain.LogEvent
		if err := json.Unmarshal(ev.Data, &log); err != nil {
			r.logger.Warn("dropping malformed error event", "error", err)
			return
		}
		r.store.AppendLog(log.Message, domain.LevelError, log.Step, log.ObjectName, parseEventTime(log.Timestamp))

	case backend.EventClose:
		// Informational only; Finish handles stream end.

	default:
		r.logger.Warn("ignoring unknown event", "event", ev.Type)
	}
}

// applyLog records the entry and advances the matching item, if any.
func (r *Reconciler) applyLog(log domain.LogEvent) {
	r.store.AppendLog(log.Message, log.Level, log.Step, log.ObjectName, parseEventTime(log.Timestamp))

	if log.Step == "" || log.Step == "complete" {
		return
	}

	key, ok := r.resolveItem(log)
	if !ok {
		r.logger.Warn("dropping event with unresolvable item",
			"model", log.ModelID, "step", log.Step, "object", log.ObjectName, "blueprint", log.BlueprintID)
		return
	}

	if log.Level == domain.LevelError {
		r.transition(key, domain.ItemError)
		r.errors = append(r.errors, domain.DeploymentError{
			Model:   key.model,
			Step:    key.step,
			Item:    key.item,
			Message: log.Message,
		})
		return
	}

	switch log.Status {
	case "starting", "in_progress":
		r.transition(key, domain.ItemInProgress)
	case "complete", "completed":
		r.transition(key, domain.ItemCompleted)
	}
}

// resolveItem finds the matrix entry for an event: by explicit object name
// first, else by the blueprint id carried in the event within that model's
// manifest for that step.
func (r *Reconciler) resolveItem(log domain.LogEvent) (itemKey, bool) {
	if log.ObjectName != "" {
		key := itemKey{log.ModelID, log.Step, log.ObjectName}
		if _, ok := r.items[key]; ok {
			return key, true
		}
	}
	if log.BlueprintID == "" {
		return itemKey{}, false
	}
	for _, m := range r.summary.Models {
		if m.ModelID != log.ModelID {
			continue
		}
		for _, st := range m.Steps {
			if st.Step != log.Step {
				continue
			}
			for _, it := range st.Items {
				if it.BlueprintID == log.BlueprintID {
					return itemKey{m.ModelID, st.Step, it.Name}, true
				}
			}
		}
	}
	return itemKey{}, false
}

// transition advances an item's status, never backward. A duplicate start
// after completion is a no-op; errors are terminal for the item.
func (r *Reconciler) transition(key itemKey, next domain.ItemStatus) {
	current := r.items[key]
	switch current {
	case domain.ItemCompleted, domain.ItemError:
		return
	case domain.ItemInProgress:
		if next == domain.ItemInProgress {
			return
		}
	}
	r.items[key] = next
	r.pushProgress()
}

// pushProgress recomputes the aggregate percentage across all models and
// steps and stores it for consumption independent of the deploy view.
func (r *Reconciler) pushProgress() {
	r.store.SetDeploymentProgress(r.Progress())
}

// Progress returns 100 * completed / total, or 0 when nothing is tracked.
func (r *Reconciler) Progress() float64 {
	if r.total == 0 {
		return 0
	}
	completed := 0
	for _, st := range r.items {
		if st == domain.ItemCompleted {
			completed++
		}
	}
	return 100 * float64(completed) / float64(r.total)
}

// ItemStatus returns the current status of one item (pending for unknown).
func (r *Reconciler) ItemStatus(model, step, item string) domain.ItemStatus {
	if st, ok := r.items[itemKey{model, step, item}]; ok {
		return st
	}
	return domain.ItemPending
}

// Errors returns the running per-item error list in arrival order.
func (r *Reconciler) Errors() []domain.DeploymentError {
	out := make([]domain.DeploymentError, len(r.errors))
	copy(out, r.errors)
	return out
}

// ErrorGroups deduplicates the error list for display: one group per exact
// message text, each carrying the (model, step, item) triples that produced
// it, ordered by first occurrence.
func (r *Reconciler) ErrorGroups() []domain.ErrorGroup {
	index := make(map[string]int)
	var groups []domain.ErrorGroup
	for _, e := range r.errors {
		i, ok := index[e.Message]
		if !ok {
			i = len(groups)
			index[e.Message] = i
			groups = append(groups, domain.ErrorGroup{Message: e.Message})
		}
		groups[i].Occurrences = append(groups[i].Occurrences, e)
	}
	return groups
}

// Finish marks the end of the stream. A stream that ended without a terminal
// complete event synthesizes an empty completion — the progress percentage
// stays frozen at its last computed value.
func (r *Reconciler) Finish() *domain.CompleteEvent {
	if r.complete == nil {
		r.complete = &domain.CompleteEvent{
			Message:    "Deployment ended before summary event",
			Total:      len(r.summary.Models),
			Successful: []domain.DeployOutcome{},
			Failed:     []domain.DeployOutcome{},
		}
	}
	return r.complete
}

// StepSnapshot is the live view of one step of one model's checklist.
type StepSnapshot struct {
	Step   string            `json:"step"`
	Label  string            `json:"label"`
	Items  []ItemSnapshot    `json:"items"`
	Status domain.ItemStatus `json:"status"`
}

// ItemSnapshot is the live status of one checklist item.
type ItemSnapshot struct {
	Name   string            `json:"name"`
	Status domain.ItemStatus `json:"status"`
}

// ModelSnapshot is the live view of one model's nested checklist.
type ModelSnapshot struct {
	ModelID   string         `json:"model_id"`
	ModelName string         `json:"model_name"`
	ModelType string         `json:"model_type"`
	Steps     []StepSnapshot `json:"steps"`
}

// Snapshot renders the whole matrix in manifest order for the UI.
func (r *Reconciler) Snapshot() []ModelSnapshot {
	out := make([]ModelSnapshot, 0, len(r.summary.Models))
	for _, m := range r.summary.Models {
		ms := ModelSnapshot{ModelID: m.ModelID, ModelName: m.ModelName, ModelType: m.ModelType}
		for _, st := range m.Steps {
			ss := StepSnapshot{Step: st.Step, Label: st.Label}
			for _, it := range st.Items {
				ss.Items = append(ss.Items, ItemSnapshot{
					Name:   it.Name,
					Status: r.items[itemKey{m.ModelID, st.Step, it.Name}],
				})
			}
			ss.Status = rollupStep(ss.Items)
			ms.Steps = append(ms.Steps, ss)
		}
		out = append(out, ms)
	}
	return out
}

// rollupStep summarises a step row: error beats in_progress beats pending;
// completed only when every item completed.
func rollupStep(items []ItemSnapshot) domain.ItemStatus {
	if len(items) == 0 {
		return domain.ItemCompleted
	}
	completed := 0
	anyError := false
	anyActive := false
	for _, it := range items {
		switch it.Status {
		case domain.ItemCompleted:
			completed++
		case domain.ItemError:
			anyError = true
		case domain.ItemInProgress:
			anyActive = true
		}
	}
	switch {
	case anyError:
		return domain.ItemError
	case completed == len(items):
		return domain.ItemCompleted
	case anyActive || completed > 0:
		return domain.ItemInProgress
	default:
		return domain.ItemPending
	}
}

// sortedItemKeys is used by tests to walk the matrix deterministically.
func (r *Reconciler) sortedItemKeys() []itemKey {
	keys := make([]itemKey, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].model != keys[j].model {
			return keys[i].model < keys[j].model
		}
		if keys[i].step != keys[j].step {
			return keys[i].step < keys[j].step
		}
		return keys[i].item < keys[j].item
	})
	return keys
}

func parseEventTime(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
