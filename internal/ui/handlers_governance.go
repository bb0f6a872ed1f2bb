package ui

import (
	"net/http"

	"uhe-console/internal/domain"
)

func (h *Handler) GovernancePage(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Governance.ListContacts(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	models, err := h.Governance.ListModels(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, governancePage(r, contacts, models))
}

func (h *Handler) CreateContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, r, domain.ErrValidation("invalid form submission"))
		return
	}
	req := domain.CreateContactRequest{
		Name:   formString(r.Form, "name"),
		Method: formString(r.Form, "method"),
		Value:  formString(r.Form, "value"),
	}
	if _, err := h.Governance.CreateContact(r.Context(), req); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/governance", http.StatusSeeOther)
}

func (h *Handler) AssignModelContactsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, r, domain.ErrValidation("invalid form submission"))
		return
	}
	req := domain.AssignModelContactsRequest{
		ModelID:   formString(r.Form, "model_id"),
		ModelType: formString(r.Form, "model_type"),
		Assignments: []domain.ContactAssignment{
			{Purpose: "STEWARD", ContactName: formString(r.Form, "steward")},
		},
	}
	if err := h.Governance.AssignModelContacts(r.Context(), req); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/governance", http.StatusSeeOther)
}
