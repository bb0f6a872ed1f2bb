package wizard

import (
	"context"
	"encoding/json"
	"io"

	"uhe-console/internal/backend"
	"uhe-console/internal/domain"
)

// Deploy starts a staged deployment for the session's selected models. It
// fetches the deployment summary to seed the progress matrix, opens the
// backend event stream, and consumes it in a background goroutine so the run
// survives the user navigating away (minimize semantics). Closing the deploy
// view never cancels the backend job.
func (s *Service) Deploy(ctx context.Context, sessionID string, replaceObjects, runFullRefresh bool) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	store := sess.store
	if store.IsDeploying() {
		return domain.ErrConflict("a deployment is already in progress")
	}

	models := store.SelectedModels()
	if len(models) == 0 {
		return domain.ErrValidation("no models selected")
	}
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	summary, err := s.client.DeploymentSummary(ctx, ids)
	if err != nil {
		return err
	}

	rec := NewReconciler(summary, store, s.logger)

	// The stream outlives the triggering request on purpose.
	stream, err := s.client.DeployStaged(context.WithoutCancel(ctx), domain.DeployRequest{
		ModelIDs:       ids,
		ReplaceObjects: replaceObjects,
		RunFullRefresh: runFullRefresh,
	})
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.reconciler = rec
	sess.outcome = nil
	sess.mu.Unlock()

	store.SetStep("deploy")
	store.SetDeploying(true)

	go s.consumeStream(sess, stream)
	return nil
}

// consumeStream reads the deploy stream to its end, applying every event in
// arrival order and fanning it out to relay subscribers.
func (s *Service) consumeStream(sess *session, stream *backend.Stream) {
	defer stream.Close()

	sawComplete := false
	for {
		ev, err := stream.Next()
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("deploy stream read failed", "error", err)
			}
			break
		}
		if ev.Type == backend.EventComplete {
			sawComplete = true
		}

		sess.mu.Lock()
		sess.reconciler.Apply(ev)
		s.broadcastLocked(sess, ev)
		sess.mu.Unlock()
	}

	sess.mu.Lock()
	outcome := sess.reconciler.Finish()
	sess.outcome = outcome
	if !sawComplete {
		// Stream ended without a terminal event: tell subscribers about the
		// synthesized empty completion.
		s.broadcastLocked(sess, backend.Event{Type: backend.EventComplete, Data: mustJSON(outcome)})
	}
	// The deploying flag must flip inside the same critical section that
	// drains subscribers: a Subscribe landing after the drain has to observe
	// deploying=false, or its channel would never be closed.
	sess.store.SetDeploying(false)
	for ch := range sess.subs {
		close(ch)
		delete(sess.subs, ch)
	}
	sess.mu.Unlock()

	if s.onComplete != nil {
		s.onComplete(outcome)
	}
	s.logger.Info("deployment finished",
		"successful", len(outcome.Successful), "failed", len(outcome.Failed))
}

// broadcastLocked delivers ev to every subscriber; slow subscribers lose
// events rather than stalling the read loop.
func (s *Service) broadcastLocked(sess *session, ev backend.Event) {
	for ch := range sess.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("dropping event for slow deploy-stream subscriber")
		}
	}
}

// Subscribe registers a relay subscriber for the session's deploy events.
// The channel is closed when the run ends. The cancel func must be called if
// the subscriber stops early.
func (s *Service) Subscribe(sessionID string) (<-chan backend.Event, func(), error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan backend.Event, 64)

	sess.mu.Lock()
	deploying := sess.store.IsDeploying()
	if deploying {
		sess.subs[ch] = struct{}{}
	}
	sess.mu.Unlock()

	if !deploying {
		close(ch)
		return ch, func() {}, nil
	}

	cancel := func() {
		sess.mu.Lock()
		if _, ok := sess.subs[ch]; ok {
			delete(sess.subs, ch)
			close(ch)
		}
		sess.mu.Unlock()
	}
	return ch, cancel, nil
}

// ProgressView is the full live state of a deployment run for the UI.
type ProgressView struct {
	Deploying       bool                  `json:"deploying"`
	CancelRequested bool                  `json:"cancel_requested"`
	Progress        float64               `json:"progress"`
	Models          []ModelSnapshot       `json:"models"`
	Errors          []domain.ErrorGroup   `json:"errors"`
	Logs            []domain.LogEntry     `json:"logs"`
	Outcome         *domain.CompleteEvent `json:"outcome,omitempty"`
}

// Progress returns the current deployment view for a session. Before any
// run it returns an empty view with zero progress.
func (s *Service) Progress(sessionID string) (*ProgressView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	view := &ProgressView{
		Deploying:       sess.store.IsDeploying(),
		CancelRequested: sess.store.CancelRequested(),
		Progress:        sess.store.DeploymentProgress(),
		Logs:            sess.store.Logs(),
	}

	sess.mu.Lock()
	if sess.reconciler != nil {
		view.Models = sess.reconciler.Snapshot()
		view.Errors = sess.reconciler.ErrorGroups()
	}
	view.Outcome = sess.outcome
	sess.mu.Unlock()

	return view, nil
}

// RequestCancel flips the session's local cancel flag. The backend job is
// not aborted; the UI shows a notice that backend work may continue.
func (s *Service) RequestCancel(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.store.RequestCancel()
	return nil
}

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
