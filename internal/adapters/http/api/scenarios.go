// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	app "github.com/novara/casebook/internal/app"
	"github.com/novara/casebook/internal/domain/redistribution"
)

// ScenarioDependencies defines the interface for scenario evaluation.
type ScenarioDependencies interface {
	EvaluateScenarios(ctx context.Context, req app.ScenarioRequest) ([]ScenarioResult, error)
}

// ScenariosHandler handles succession planning requests.
type ScenariosHandler struct {
	deps ScenarioDependencies
}

// NewScenariosHandler creates a new scenarios handler.
func NewScenariosHandler(deps ScenarioDependencies) *ScenariosHandler {
	return &ScenariosHandler{deps: deps}
}

// scenarioRequest mirrors the POST /scenarios/evaluate body.
type scenarioRequest struct {
	DepartingPartnerIDs []string          `json:"departing_partner_ids"`
	Policies            []string          `json:"policies"`
	CustomAssignments   map[string]string `json:"custom_assignments"`
}

// scenarioResponse wraps the ranked results. Dropped custom-map entries are
// surfaced here so a silently-filtered plan is still visible to the
// operator.
type scenarioResponse struct {
	Scenarios     []ScenarioResult `json:"scenarios"`
	Recommended   string           `json:"recommended,omitempty"`
	CustomDropped int              `json:"custom_dropped"`
}

// HandleEvaluate handles POST /scenarios/evaluate.
func (h *ScenariosHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	policies := make([]redistribution.Policy, 0, len(req.Policies))
	for _, raw := range req.Policies {
		p, err := redistribution.ParsePolicy(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		policies = append(policies, p)
	}

	results, err := h.deps.EvaluateScenarios(r.Context(), app.ScenarioRequest{
		DepartingPartnerIDs: req.DepartingPartnerIDs,
		Policies:            policies,
		CustomAssignments:   req.CustomAssignments,
	})
	if err != nil {
		if errors.Is(err, redistribution.ErrUnknownPolicy) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	resp := scenarioResponse{Scenarios: results}
	for _, res := range results {
		if res.Recommended {
			resp.Recommended = string(res.Policy)
		}
		if res.Policy == redistribution.PolicyCustom {
			resp.CustomDropped = res.Assignment.Dropped
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
