package api

import (
	"net/http"

	"uhe-console/internal/domain"
)

func snapshotKey(r *http.Request) (db, schema, table string) {
	return urlParam(r, "db"), urlParam(r, "schema"), urlParam(r, "table")
}

func (h *Handler) listSnapshotStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.openflow.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"snapshot_states": states})
}

func (h *Handler) getSnapshotState(w http.ResponseWriter, r *http.Request) {
	db, schema, table := snapshotKey(r)
	state, err := h.openflow.Get(r.Context(), db, schema, table)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) createSnapshotState(w http.ResponseWriter, r *http.Request) {
	var state domain.SnapshotState
	if err := decodeBody(r, &state); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.openflow.Create(r.Context(), state); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) updateSnapshotState(w http.ResponseWriter, r *http.Request) {
	db, schema, table := snapshotKey(r)
	var req domain.UpdateSnapshotStateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.openflow.Update(r.Context(), db, schema, table, req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteSnapshotState(w http.ResponseWriter, r *http.Request) {
	db, schema, table := snapshotKey(r)
	if err := h.openflow.Delete(r.Context(), db, schema, table); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requestSnapshot(w http.ResponseWriter, r *http.Request) {
	db, schema, table := snapshotKey(r)
	if err := h.openflow.RequestSnapshot(r.Context(), db, schema, table); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
