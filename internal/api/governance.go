package api

import (
	"net/http"

	"uhe-console/internal/domain"
)

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.governance.ListContacts(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contacts": contacts})
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	contact, err := h.governance.CreateContact(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (h *Handler) listGovernedObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := h.governance.ListObjects(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"objects": objects})
}

func (h *Handler) assignContacts(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignContactsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.governance.AssignContacts(r.Context(), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGovernedModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.governance.ListModels(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}

func (h *Handler) assignModelContacts(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignModelContactsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.governance.AssignModelContacts(r.Context(), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
