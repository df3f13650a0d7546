// Package scoring computes a client's strategic value: a 0-10 composite of
// recent revenue, relationship strength, renewal probability, and a
// conflict-risk penalty. Pure and deterministic; it never fails.
package scoring

import (
	"math"

	"github.com/novara/casebook/internal/domain/model"
)

// Scoring weights and bounds. These are fixed by the scoring model, not
// configuration: two runs over the same portfolio must always agree.
const (
	revenueWeight  = 0.50
	strengthWeight = 0.35
	renewalWeight  = 0.15

	// revenueDivisor maps annual revenue onto the 0-10 scale; $500k or
	// more saturates the revenue component.
	revenueDivisor = 50_000

	maxValue = 10.0
)

// Conflict-risk penalties subtracted from the composite.
const (
	penaltyHigh    = 3.0
	penaltyMedium  = 1.0
	penaltyLow     = 0.0
	penaltyUnknown = 1.0
)

// StrategicValue scores one client. Normalize is applied on entry so the
// function stays total on raw records; a second call on the same input
// always yields the identical score.
func StrategicValue(c model.Client) float64 {
	c = c.Normalize()

	revenueScore := math.Min(maxValue, c.LatestRevenue()/revenueDivisor)

	value := revenueScore*revenueWeight +
		c.RelationshipStrength*strengthWeight +
		*c.RenewalProbability*maxValue*renewalWeight -
		conflictPenalty(c.ConflictRisk)

	value = math.Max(0, math.Min(maxValue, value))
	return math.Round(value*100) / 100
}

func conflictPenalty(risk model.ConflictRisk) float64 {
	switch risk {
	case model.ConflictHigh:
		return penaltyHigh
	case model.ConflictMedium:
		return penaltyMedium
	case model.ConflictLow:
		return penaltyLow
	default:
		return penaltyUnknown
	}
}
