// Package model contains domain models passed between layers.
package model

// ConflictRisk categorizes a client's conflict-of-interest exposure.
type ConflictRisk string

// Conflict risk levels.
const (
	ConflictLow    ConflictRisk = "low"
	ConflictMedium ConflictRisk = "medium"
	ConflictHigh   ConflictRisk = "high"
)

// ContactFrequency describes how often the primary lobbyist is in touch
// with the client.
type ContactFrequency string

// Contact frequencies, from most to least intense.
const (
	ContactDaily     ContactFrequency = "daily"
	ContactWeekly    ContactFrequency = "weekly"
	ContactMonthly   ContactFrequency = "monthly"
	ContactQuarterly ContactFrequency = "quarterly"
	ContactAsNeeded  ContactFrequency = "as-needed"
)

// Revenue is one year's billing for a client.
type Revenue struct {
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

// Client is a portfolio client record. Numeric attribute zero values mean
// "not provided"; Normalize fills in the documented neutral defaults so that
// downstream scoring never re-implements default logic. RenewalProbability
// is the one attribute whose valid range includes zero, so it is a pointer:
// nil means absent, an explicit 0 means "will not renew" and is kept.
type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	PracticeAreas []string `json:"practice_areas"`

	RelationshipStrength  float64      `json:"relationship_strength"`  // 1-10, default 5
	RelationshipIntensity float64      `json:"relationship_intensity"` // 1-10, default 5
	ConflictRisk          ConflictRisk `json:"conflict_risk"`          // default medium
	ConflictScore         float64      `json:"conflict_score"`         // 0-10, default 0
	RenewalProbability    *float64     `json:"renewal_probability"`    // 0-1, default 0.5 when nil
	StrategicFitScore     float64      `json:"strategic_fit_score"`    // 1-10, default 5

	ContactFrequency ContactFrequency `json:"contact_frequency"`

	// PrimaryLobbyist empty means the client is orphaned.
	PrimaryLobbyist  string   `json:"primary_lobbyist"`
	ClientOriginator string   `json:"client_originator"`
	LobbyistTeam     []string `json:"lobbyist_team"`

	ContractPeriod string    `json:"contract_period"`
	Revenues       []Revenue `json:"revenues"`
}

// Partner is a lobbyist who owns a book of clients.
type Partner struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// ClientIDs lists the partner's primary clients in portfolio order.
	ClientIDs []string `json:"client_ids"`
	// TeamClientIDs lists clients the partner serves on as a team member
	// without being their primary. Derived on partner reads, never stored.
	TeamClientIDs []string `json:"team_client_ids"`

	IsDeparting   bool     `json:"is_departing"`
	PracticeAreas []string `json:"practice_areas"`

	// CapacityUsed is the primary book as a percentage of the fixed
	// 30-client benchmark. Derived on partner reads, never stored.
	CapacityUsed float64 `json:"capacity_used"`
	// TotalRevenue is the partner's baseline annual book revenue.
	TotalRevenue float64 `json:"total_revenue"`
}

// Default attribute values applied by Normalize.
const (
	DefaultRelationshipStrength  = 5.0
	DefaultRelationshipIntensity = 5.0
	DefaultRenewalProbability    = 0.5
	DefaultStrategicFitScore     = 5.0
)

// Normalize returns a copy of the client with every absent attribute
// replaced by its documented neutral default. It is the single defaulting
// step: scoring and classification assume an already-normalized client and
// never fall back on their own.
func (c Client) Normalize() Client {
	out := c
	if out.RelationshipStrength <= 0 {
		out.RelationshipStrength = DefaultRelationshipStrength
	}
	if out.RelationshipIntensity <= 0 {
		out.RelationshipIntensity = DefaultRelationshipIntensity
	}
	switch out.ConflictRisk {
	case ConflictLow, ConflictMedium, ConflictHigh:
	default:
		out.ConflictRisk = ConflictMedium
	}
	if out.RenewalProbability == nil {
		p := DefaultRenewalProbability
		out.RenewalProbability = &p
	}
	if out.StrategicFitScore <= 0 {
		out.StrategicFitScore = DefaultStrategicFitScore
	}
	return out
}

// LatestRevenue returns the amount from the most recent revenue year, or 0
// when the client has no revenue history. When several entries share the
// maximum year the first one listed wins, keeping the scan deterministic.
func (c Client) LatestRevenue() float64 {
	amount := 0.0
	bestYear := 0
	for _, r := range c.Revenues {
		if r.Year > bestYear {
			bestYear = r.Year
			amount = r.Amount
		}
	}
	return amount
}

// TeamSize returns the effective lobbyist-team size, never below 1: a client
// with a primary lobbyist always has at least that one person on the team.
func (c Client) TeamSize() int {
	if len(c.LobbyistTeam) < 2 {
		return 1
	}
	return len(c.LobbyistTeam)
}

// OnTeam reports whether the named partner appears on the lobbyist team.
func (c Client) OnTeam(name string) bool {
	for _, member := range c.LobbyistTeam {
		if member == name {
			return true
		}
	}
	return false
}
