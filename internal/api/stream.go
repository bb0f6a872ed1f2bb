package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// deployStream relays the session's deployment events to the client as
// server-sent events, in arrival order. The relay ends when the run finishes
// or the client disconnects; reconnecting clients catch up via the progress
// snapshot endpoint.
func (h *Handler) deployStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	events, cancel, err := h.wizard.Subscribe(sessionID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, h.logger, fmt.Errorf("streaming unsupported by connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
			flusher.Flush()
		}
	}
}
