// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/novara/casebook/internal/domain/model"
)

// PartnerDependencies defines the interface for partner operations.
type PartnerDependencies interface {
	UpsertPartner(ctx context.Context, p model.Partner) (bool, error)
	Partners(ctx context.Context) ([]model.Partner, error)
}

// PartnersHandler handles partner writes and reads.
type PartnersHandler struct {
	deps PartnerDependencies
}

// NewPartnersHandler creates a new partners handler.
func NewPartnersHandler(deps PartnerDependencies) *PartnersHandler {
	return &PartnersHandler{deps: deps}
}

// HandlePartners handles POST /partners and GET /partners.
func (h *PartnersHandler) HandlePartners(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.post(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *PartnersHandler) post(w http.ResponseWriter, r *http.Request) {
	var p model.Partner
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing name"))
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	created, err := h.deps.UpsertPartner(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, ackResponse{Status: "stored", ID: p.ID})
}

func (h *PartnersHandler) list(w http.ResponseWriter, r *http.Request) {
	partners, err := h.deps.Partners(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, partners)
}
