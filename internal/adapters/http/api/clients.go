// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	app "github.com/novara/casebook/internal/app"
	"github.com/novara/casebook/internal/domain/model"
)

// ClientDependencies defines the interface for client operations.
type ClientDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	EnqueueClient(ctx context.Context, c model.Client) bool
	Client(ctx context.Context, id string) (ClientView, error)
	Clients(ctx context.Context, limit int) ([]ClientView, error)
	DeleteClient(ctx context.Context, id string) error
}

// ClientsHandler handles client intake and reads.
type ClientsHandler struct {
	deps     ClientDependencies
	maxLimit int
}

// NewClientsHandler creates a new clients handler.
func NewClientsHandler(deps ClientDependencies, maxLimit int) *ClientsHandler {
	return &ClientsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleClients handles POST /clients and GET /clients?limit=N.
func (h *ClientsHandler) HandleClients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.post(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ClientsHandler) post(w http.ResponseWriter, r *http.Request) {
	var c model.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(c.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing name"))
		return
	}
	// Idempotency check - the fingerprint must be derived before an id is
	// generated, or anonymous records would never collide.
	fp := app.Fingerprint(c)
	if h.deps.SeenAndRecord(r.Context(), fp) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: c.ID, Duplicate: true})
		return
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if ok := h.deps.EnqueueClient(r.Context(), c); !ok {
		// Roll back the seen mark so the record can be retried.
		h.deps.Unrecord(r.Context(), fp)
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: c.ID})
}

func (h *ClientsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		limit = n
	}
	views, err := h.deps.Clients(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleClientByID handles GET and DELETE on /clients/{id}.
func (h *ClientsHandler) HandleClientByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/clients/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		view, err := h.deps.Client(r.Context(), id)
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	case http.MethodDelete:
		if err := h.deps.DeleteClient(r.Context(), id); err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, ackResponse{Status: "deleted", ID: id})
	default:
		http.NotFound(w, r)
	}
}
