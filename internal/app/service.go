// Package service provides the core business service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	intakequeue "github.com/novara/casebook/internal/adapters/mq/queue"
	workerpool "github.com/novara/casebook/internal/adapters/mq/worker"
	"github.com/novara/casebook/internal/adapters/repository"
	"github.com/novara/casebook/internal/domain/contract"
	"github.com/novara/casebook/internal/domain/dedupe"
	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/internal/domain/redistribution"
	"github.com/novara/casebook/internal/domain/scenario"
	"github.com/novara/casebook/internal/domain/scoring"
	"github.com/novara/casebook/internal/domain/succession"
	"github.com/novara/casebook/pkg/logger"
	"github.com/novara/casebook/pkg/metrics"
)

// ClientView is a client plus its derived fields, recomputed on demand from
// base attributes. The derivations are pure, so two reads of an unchanged
// client always agree.
type ClientView struct {
	model.Client
	StrategicValue       float64                     `json:"strategic_value"`
	RelationshipType     succession.RelationshipType `json:"relationship_type"`
	TransitionComplexity float64                     `json:"transition_complexity"`
	SuccessionRisk       float64                     `json:"succession_risk"`
	ContractStatus       contract.Status             `json:"contract_status"`
}

// ScenarioRequest names the departing partners and what to run for them.
type ScenarioRequest struct {
	// DepartingPartnerIDs marks partners as departing for this run,
	// overlaying the stored IsDeparting flags. Empty means "use the
	// stored flags".
	DepartingPartnerIDs []string

	// Policies restricts which policies run; empty means all four, in
	// stable order.
	Policies []redistribution.Policy

	// CustomAssignments feeds the custom policy.
	CustomAssignments map[string]string
}

// Service implements the API dependencies for the portfolio system.
type Service struct {
	mu sync.RWMutex

	portfolio repository.Store
	deduper   dedupe.Deduper
	intake    intakequeue.Queue
	workers   *workerpool.Pool

	workerCount int
	queueSize   int
	dedupeSize  int

	started bool

	logger logger.Logger
	now    func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of intake workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the intake queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the import fingerprint cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock injects the time source used for contract-status derivation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: 4,
		queueSize:   10_000,
		dedupeSize:  50_000,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting portfolio service...")

	s.portfolio = repository.NewPortfolioStore(ctx)
	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
	s.intake = intakequeue.NewMemoryQueue(intakequeue.WithCapacity(s.queueSize))
	s.workers = workerpool.NewPool(s.workerCount, s.intake, s.portfolio)
	s.workers.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "portfolio service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping portfolio service...")

	if s.intake != nil {
		_ = s.intake.Close()
	}
	if s.workers != nil {
		s.workers.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "portfolio service stopped")
}

// Fingerprint derives the dedupe key for a client record. Records carrying
// an id are keyed by it; anonymous import rows fall back to the
// name/primary-lobbyist pair.
func Fingerprint(c model.Client) string {
	if c.ID != "" {
		return c.ID
	}
	return strings.ToLower(strings.TrimSpace(c.Name)) + "|" + strings.ToLower(strings.TrimSpace(c.PrimaryLobbyist))
}

// SeenAndRecord atomically checks whether a record fingerprint was seen and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordIntakeDuplicate()
	}
	return seen
}

// Unrecord forgets a fingerprint so the record can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// EnqueueClient submits a client record for asynchronous intake. Returns
// false on backpressure.
func (s *Service) EnqueueClient(ctx context.Context, c model.Client) bool {
	return s.intake.Enqueue(ctx, c)
}

// Client returns one client with derived fields recomputed.
func (s *Service) Client(ctx context.Context, id string) (ClientView, error) {
	c, err := s.portfolio.Client(ctx, id)
	if err != nil {
		return ClientView{}, fmt.Errorf("load client: %w", err)
	}
	return s.view(c), nil
}

// Clients returns up to limit clients with derived fields recomputed, in
// insertion order.
func (s *Service) Clients(ctx context.Context, limit int) ([]ClientView, error) {
	clients, err := s.portfolio.Clients(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	views := make([]ClientView, len(clients))
	for i, c := range clients {
		views[i] = s.view(c)
	}
	return views, nil
}

// DeleteClient removes a client from the portfolio.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	return s.portfolio.DeleteClient(ctx, id)
}

// UpsertPartner inserts or replaces a partner.
func (s *Service) UpsertPartner(ctx context.Context, p model.Partner) (bool, error) {
	return s.portfolio.UpsertPartner(ctx, p)
}

// Partners returns all partners in insertion order, with the derived view
// fields (capacity used, team memberships) recomputed against the current
// client portfolio.
func (s *Service) Partners(ctx context.Context) ([]model.Partner, error) {
	partners, err := s.portfolio.Partners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	clients, err := s.portfolio.Clients(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	for i := range partners {
		partners[i] = partnerView(partners[i], clients)
	}
	return partners, nil
}

// partnerView recomputes the derived fields for one partner: CapacityUsed as
// the primary book against the fixed benchmark, and TeamClientIDs as the
// clients the partner serves on without being their primary.
func partnerView(p model.Partner, clients []model.Client) model.Partner {
	p.CapacityUsed = float64(len(p.ClientIDs)) / redistribution.CapacityBenchmark * 100

	primary := make(map[string]struct{}, len(p.ClientIDs))
	for _, id := range p.ClientIDs {
		primary[id] = struct{}{}
	}
	p.TeamClientIDs = nil
	for _, c := range clients {
		if _, owns := primary[c.ID]; owns {
			continue
		}
		if c.OnTeam(p.Name) {
			p.TeamClientIDs = append(p.TeamClientIDs, c.ID)
		}
	}
	return p
}

// EvaluateScenarios runs the requested policies over the named departing
// partners and returns the evaluated scenarios ranked by composite risk,
// lowest (recommended) first.
func (s *Service) EvaluateScenarios(ctx context.Context, req ScenarioRequest) ([]scenario.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordScenarioLatency(float64(time.Since(start).Milliseconds()))
	}()

	partners, err := s.portfolio.Partners(ctx)
	if err != nil {
		return nil, fmt.Errorf("load partners: %w", err)
	}
	clients, err := s.portfolio.Clients(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	departing, remaining := splitPartners(partners, req.DepartingPartnerIDs)

	policies := req.Policies
	if len(policies) == 0 {
		policies = redistribution.Policies()
	}

	assignments := make([]redistribution.Result, 0, len(policies))
	for _, p := range policies {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %q", redistribution.ErrUnknownPolicy, p)
		}
		assignments = append(assignments, redistribution.Assign(departing, remaining, clients, p, req.CustomAssignments))
		metrics.RecordScenarioEvaluation(string(p))
	}

	ranked := scenario.Rank(assignments, departing, remaining, clients)

	s.logger.Info(ctx, "scenarios evaluated",
		logger.Int("departing", len(departing)),
		logger.Int("remaining", len(remaining)),
		logger.Int("policies", len(policies)),
	)
	return ranked, nil
}

// splitPartners partitions partners into departing and remaining. A
// non-empty overlay list wins over the stored IsDeparting flags; list order
// is preserved either way because the engine's tie-breaks depend on it.
func splitPartners(partners []model.Partner, departingIDs []string) (departing, remaining []model.Partner) {
	overlay := map[string]struct{}{}
	for _, id := range departingIDs {
		overlay[id] = struct{}{}
	}
	for _, p := range partners {
		leaves := p.IsDeparting
		if len(overlay) > 0 {
			_, leaves = overlay[p.ID]
		}
		if leaves {
			p.IsDeparting = true
			departing = append(departing, p)
		} else {
			p.IsDeparting = false
			remaining = append(remaining, p)
		}
	}
	return departing, remaining
}

// view recomputes the derived fields for one client.
func (s *Service) view(c model.Client) ClientView {
	class := succession.Classify(c)
	return ClientView{
		Client:               c,
		StrategicValue:       scoring.StrategicValue(c),
		RelationshipType:     class.RelationshipType,
		TransitionComplexity: class.TransitionComplexity,
		SuccessionRisk:       class.SuccessionRisk,
		ContractStatus:       contract.Derive(c.ContractPeriod, s.now()),
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		ctx := context.Background()
		clients, partners := s.portfolio.Counts(ctx)
		stats["queueLength"] = s.intake.Len(ctx)
		stats["totalClients"] = clients
		stats["totalPartners"] = partners
		metrics.UpdateClientCount(clients)
		metrics.UpdatePartnerCount(partners)
	}
	return stats
}

// Size returns the number of remembered import fingerprints.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
