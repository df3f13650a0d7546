// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/novara/casebook/internal/adapters/ingest"
	app "github.com/novara/casebook/internal/app"
	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/pkg/metrics"
)

// ImportDependencies defines the interface for bulk intake.
type ImportDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	EnqueueClient(ctx context.Context, c model.Client) bool
}

// ImportsHandler handles CSV bulk imports.
type ImportsHandler struct {
	deps ImportDependencies
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(deps ImportDependencies) *ImportsHandler {
	return &ImportsHandler{deps: deps}
}

// importResponse summarizes one CSV batch.
type importResponse struct {
	Accepted   int               `json:"accepted"`
	Duplicates int               `json:"duplicates"`
	Rejected   int               `json:"rejected"`
	Errors     []ingest.RowError `json:"errors,omitempty"`
}

// HandleImportCSV handles POST /imports/csv. The request body is headered
// CSV; each decoded row is deduplicated and enqueued individually, so one
// bad row never aborts the batch.
func (h *ImportsHandler) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	clients, rowErrs, err := ingest.DecodeClients(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	resp := importResponse{Rejected: len(rowErrs), Errors: rowErrs}
	for range rowErrs {
		metrics.RecordImportRow("rejected")
	}

	for _, c := range clients {
		fp := app.Fingerprint(c)
		if h.deps.SeenAndRecord(r.Context(), fp) {
			resp.Duplicates++
			metrics.RecordImportRow("duplicate")
			continue
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if !h.deps.EnqueueClient(r.Context(), c) {
			h.deps.Unrecord(r.Context(), fp)
			resp.Rejected++
			metrics.RecordImportRow("rejected")
			continue
		}
		resp.Accepted++
		metrics.RecordImportRow("accepted")
	}

	writeJSON(w, http.StatusOK, resp)
}
