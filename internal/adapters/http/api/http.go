// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	app "github.com/novara/casebook/internal/app"
	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/internal/domain/scenario"
)

// ClientView mirrors the read shape returned by client queries.
type ClientView = app.ClientView

// ScenarioResult mirrors one evaluated redistribution outcome.
type ScenarioResult = scenario.Result

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Intake.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	EnqueueClient(ctx context.Context, c model.Client) bool

	// Portfolio reads and writes.
	Client(ctx context.Context, id string) (ClientView, error)
	Clients(ctx context.Context, limit int) ([]ClientView, error)
	DeleteClient(ctx context.Context, id string) error
	UpsertPartner(ctx context.Context, p model.Partner) (bool, error)
	Partners(ctx context.Context) ([]model.Partner, error)

	// Scenario planning.
	EvaluateScenarios(ctx context.Context, req app.ScenarioRequest) ([]ScenarioResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	clientsHandler   *ClientsHandler
	partnersHandler  *PartnersHandler
	importsHandler   *ImportsHandler
	scenariosHandler *ScenariosHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxListLimit caps
// list reads.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		clientsHandler:   NewClientsHandler(deps, maxListLimit),
		partnersHandler:  NewPartnersHandler(deps),
		importsHandler:   NewImportsHandler(deps),
		scenariosHandler: NewScenariosHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/clients", MetricsMiddleware(s.clientsHandler.HandleClients, "clients"))
	mux.HandleFunc("/clients/", MetricsMiddleware(s.clientsHandler.HandleClientByID, "client"))
	mux.HandleFunc("/partners", MetricsMiddleware(s.partnersHandler.HandlePartners, "partners"))
	mux.HandleFunc("/imports/csv", MetricsMiddleware(s.importsHandler.HandleImportCSV, "imports"))
	mux.HandleFunc("/scenarios/evaluate", MetricsMiddleware(s.scenariosHandler.HandleEvaluate, "scenarios"))
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404 without coupling
// to a specific store implementation.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
