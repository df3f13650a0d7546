// Package scenario scores redistribution outcomes and ranks them so a human
// can pick the least disruptive policy. Evaluation is pure: it reads the
// same partner/client universe the engine saw and produces overlay results.
package scenario

import (
	"math"

	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/internal/domain/redistribution"
	"github.com/novara/casebook/internal/domain/scoring"
)

// Risk-score tiers. Each factor contributes a fixed step amount once its
// threshold is crossed; the sum is capped at 100.
const (
	maxRiskScore = 100.0

	capacitySevere   = 95.0
	capacityHigh     = 85.0
	capacityElevated = 75.0

	varianceSevere   = 30.0
	varianceHigh     = 20.0
	varianceElevated = 10.0

	movementSevere   = 0.3
	movementHigh     = 0.15
	movementElevated = 0.05

	highValueMany = 5
	highValueSome = 2

	highValueThreshold = 7.0
)

// Composite ranking weights.
const (
	riskWeight            = 2.0
	movedWeight           = 0.1
	capacityPenaltySevere = 50.0
	capacityPenaltyHigh   = 20.0
)

// Result is one policy's evaluated outcome.
type Result struct {
	Policy redistribution.Policy `json:"policy"`

	Assignment redistribution.Result `json:"assignment"`

	// RevenueVariance is the post-assignment revenue spread across
	// remaining partners, as a percent of the mean.
	RevenueVariance float64 `json:"revenue_variance"`

	// MaxCapacity is the highest resulting capacity percent among the
	// remaining partners.
	MaxCapacity float64 `json:"max_capacity"`

	// ClientsMoved counts clients pulled off a departing partner's book.
	ClientsMoved int `json:"clients_moved"`

	// HighValueMoves counts moved clients with strategic value above 7.
	HighValueMoves int `json:"high_value_moves"`

	// MovementRatio is ClientsMoved over the total client count.
	MovementRatio float64 `json:"movement_ratio"`

	// RiskScore is the tiered composite, 0-100.
	RiskScore float64 `json:"risk_score"`

	// Composite is the ranking key; lower ranks earlier.
	Composite float64 `json:"composite"`

	// Recommended marks the lowest-composite scenario after ranking.
	Recommended bool `json:"recommended"`
}

// Evaluate scores one assignment over the partner/client universe it was
// produced from. Moves only count for clients whose original primary
// partner is in the departing list.
func Evaluate(assignment redistribution.Result, departing, remaining []model.Partner, clients []model.Client) Result {
	res := Result{
		Policy:     assignment.Policy,
		Assignment: assignment,
	}

	res.RevenueVariance = revenueVariance(assignment, remaining)
	res.MaxCapacity = maxCapacity(assignment.Loads)
	res.ClientsMoved, res.HighValueMoves = countMoves(assignment, partnersByName(departing), clients)
	if len(clients) > 0 {
		res.MovementRatio = float64(res.ClientsMoved) / float64(len(clients))
	}
	res.RiskScore = riskScore(res.MaxCapacity, res.RevenueVariance, res.MovementRatio, res.HighValueMoves)
	res.Composite = composite(res)
	return res
}

// Rank evaluates one assignment per policy, in the order given, and returns
// the results sorted by composite ascending. Order must follow the stable
// policy order (Balanced, Expertise, Relationship, Custom): ties keep the
// earlier policy, and the first result is marked recommended.
func Rank(assignments []redistribution.Result, departing, remaining []model.Partner, clients []model.Client) []Result {
	results := make([]Result, 0, len(assignments))
	for _, a := range assignments {
		results = append(results, Evaluate(a, departing, remaining, clients))
	}

	// Insertion sort keeps the input order on equal composites.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Composite < results[j-1].Composite; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}

	if len(results) > 0 {
		results[0].Recommended = true
	}
	return results
}

// revenueVariance is popStdDev(post-assignment revenues)/mean*100, or 0
// when there are fewer than two partners or the mean is not positive.
func revenueVariance(assignment redistribution.Result, remaining []model.Partner) float64 {
	incremental := make(map[string]float64, len(assignment.Loads))
	for _, l := range assignment.Loads {
		incremental[l.PartnerID] = l.IncrementalRevenue
	}

	revenues := make([]float64, 0, len(remaining))
	for _, p := range remaining {
		revenues = append(revenues, p.TotalRevenue+incremental[p.ID])
	}
	if len(revenues) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range revenues {
		mean += r
	}
	mean /= float64(len(revenues))
	if mean <= 0 {
		return 0
	}

	variance := 0.0
	for _, r := range revenues {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(revenues))

	return math.Sqrt(variance) / mean * 100
}

func maxCapacity(loads []redistribution.PartnerLoad) float64 {
	max := 0.0
	for _, l := range loads {
		if l.Capacity > max {
			max = l.Capacity
		}
	}
	return max
}

// countMoves tallies clients whose new target differs from their original
// partner, counted only when the original partner is departing. Lateral
// remaining-to-remaining moves do not count.
func countMoves(assignment redistribution.Result, departingByName map[string]model.Partner, clients []model.Client) (moved, highValue int) {
	for _, c := range clients {
		target, ok := assignment.Assignments[c.ID]
		if !ok {
			continue
		}
		origin, ok := departingByName[c.PrimaryLobbyist]
		if !ok {
			continue
		}
		if origin.ID == target {
			continue
		}
		moved++
		if scoring.StrategicValue(c) > highValueThreshold {
			highValue++
		}
	}
	return moved, highValue
}

func partnersByName(partners []model.Partner) map[string]model.Partner {
	byName := make(map[string]model.Partner, len(partners))
	for _, p := range partners {
		byName[p.Name] = p
	}
	return byName
}

func riskScore(maxCap, variance, movementRatio float64, highValueMoves int) float64 {
	score := 0.0

	switch {
	case maxCap > capacitySevere:
		score += 40
	case maxCap > capacityHigh:
		score += 25
	case maxCap > capacityElevated:
		score += 10
	}

	switch {
	case variance > varianceSevere:
		score += 30
	case variance > varianceHigh:
		score += 20
	case variance > varianceElevated:
		score += 10
	}

	switch {
	case movementRatio > movementSevere:
		score += 20
	case movementRatio > movementHigh:
		score += 12
	case movementRatio > movementElevated:
		score += 5
	}

	switch {
	case highValueMoves > highValueMany:
		score += 10
	case highValueMoves > highValueSome:
		score += 5
	}

	return math.Min(maxRiskScore, score)
}

func composite(r Result) float64 {
	c := r.RiskScore*riskWeight + r.RevenueVariance + float64(r.ClientsMoved)*movedWeight
	switch {
	case r.MaxCapacity > 90:
		c += capacityPenaltySevere
	case r.MaxCapacity > 85:
		c += capacityPenaltyHigh
	}
	return c
}
