package domain

import "time"

// ItemStatus is the state of one deployment item in the progress matrix.
// Transitions are one-directional: pending -> in_progress -> completed, or
// pending|in_progress -> error.
type ItemStatus string

const (
	ItemPending    ItemStatus = "pending"
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
	ItemError      ItemStatus = "error"
)

// SummaryItem is one deployable object enumerated by the deployment summary.
type SummaryItem struct {
	Name        string `json:"name"`
	BlueprintID string `json:"blueprint_id,omitempty"`
	Source      string `json:"source,omitempty"`
	Type        string `json:"type,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// SummaryStep groups the items of one deployment stage for one model.
type SummaryStep struct {
	Step  string        `json:"step"`
	Label string        `json:"label"`
	Items []SummaryItem `json:"items"`
}

// ModelSummary is the dry-run manifest for one model: every step and item a
// staged deployment will touch, in deployment order.
type ModelSummary struct {
	ModelID   string        `json:"model_id"`
	ModelType string        `json:"model_type"`
	ModelName string        `json:"model_name"`
	Steps     []SummaryStep `json:"steps"`
}

// DeploymentSummary is the manifest for one deploy request across all
// selected models. It pre-seeds the wizard's progress matrix.
type DeploymentSummary struct {
	Message string         `json:"message"`
	Models  []ModelSummary `json:"models"`
}

// TotalItems counts every item across all models and steps.
func (s DeploymentSummary) TotalItems() int {
	n := 0
	for _, m := range s.Models {
		for _, st := range m.Steps {
			n += len(st.Items)
		}
	}
	return n
}

// DeployRequest is the payload for POST /dimensional-models/deploy-staged.
type DeployRequest struct {
	ModelIDs       []string `json:"model_ids"`
	ReplaceObjects bool     `json:"replace_objects"`
	RunFullRefresh bool     `json:"run_full_refresh"`
	ModelDatabase  string   `json:"model_database,omitempty"`
	ModelSchema    string   `json:"model_schema,omitempty"`
}

// LogLevel values carried by stream log events.
const (
	LevelInfo    = "INFO"
	LevelSuccess = "SUCCESS"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// LogEvent is the payload of a "log" stream event.
type LogEvent struct {
	Timestamp   string `json:"timestamp"`
	Level       string `json:"level"`
	Step        string `json:"step,omitempty"`
	ModelID     string `json:"model_id,omitempty"`
	BlueprintID string `json:"blueprint_id,omitempty"`
	ObjectName  string `json:"object_name,omitempty"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message"`
}

// ModelStartEvent is the payload of a "model_start" stream event.
type ModelStartEvent struct {
	Timestamp string `json:"timestamp"`
	ModelID   string `json:"model_id"`
	ModelType string `json:"model_type,omitempty"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
}

// ModelCompleteEvent is the payload of a "model_complete" stream event.
type ModelCompleteEvent struct {
	Timestamp string `json:"timestamp"`
	ModelID   string `json:"model_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// DeployOutcome identifies one succeeded or failed top-level entity in the
// terminal summary.
type DeployOutcome struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// CompleteEvent is the payload of the terminal "complete" stream event. Its
// Successful/Failed lists are authoritative for optimistic UI transitions;
// the item-level tally is advisory only.
type CompleteEvent struct {
	Timestamp  string          `json:"timestamp"`
	Message    string          `json:"message"`
	Total      int             `json:"total"`
	Successful []DeployOutcome `json:"successful"`
	Failed     []DeployOutcome `json:"failed"`
}

// LogEntry is one line of the wizard's append-only deployment log.
type LogEntry struct {
	Message    string    `json:"message"`
	Level      string    `json:"level"`
	Step       string    `json:"step,omitempty"`
	ObjectName string    `json:"object_name,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// DeploymentError records one per-item failure observed during a run.
type DeploymentError struct {
	Model   string `json:"model"`
	Step    string `json:"step"`
	Item    string `json:"item"`
	Message string `json:"message"`
}

// ErrorGroup is a deduplicated view over the running error list: one group
// per exact message text, carrying every (model, step, item) that produced it.
type ErrorGroup struct {
	Message     string            `json:"message"`
	Occurrences []DeploymentError `json:"occurrences"`
}
