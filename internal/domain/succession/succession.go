// Package succession derives how exposed a client is to a partner
// transition. Three ordered, pure derivations: relationship type, then
// transition complexity, then the 1-10 succession risk score.
package succession

import (
	"math"
	"strings"

	"github.com/novara/casebook/internal/domain/model"
)

// RelationshipType classifies how entrenched a client's primary-lobbyist
// relationship is.
type RelationshipType string

// Relationship types.
const (
	Orphaned  RelationshipType = "orphaned"
	Shared    RelationshipType = "shared"
	Primary   RelationshipType = "primary"
	Secondary RelationshipType = "secondary"
)

// Base succession risk per relationship type. Every base is at least 1 and
// both adjustments below are non-negative, so the final score never drops
// below 1 without an explicit floor.
var baseRisk = map[RelationshipType]float64{
	Primary:   3,
	Secondary: 2,
	Shared:    1,
	Orphaned:  5,
}

// Transition complexity inputs.
const (
	intensityWeight = 0.3

	regulatedAreaBonus = 1.5
	strategicFitBonus  = 1.0
	conflictBonus      = 1.0

	strategicFitThreshold = 8.0
	conflictThreshold     = 7.0

	maxComplexity = 10.0
)

// frequencyWeight maps contact frequency onto the complexity scale; an
// unknown or absent frequency contributes nothing.
var frequencyWeight = map[model.ContactFrequency]float64{
	model.ContactDaily:     3,
	model.ContactWeekly:    2,
	model.ContactMonthly:   1,
	model.ContactQuarterly: 0.5,
	model.ContactAsNeeded:  0,
}

// regulatedAreas are practice areas whose regulatory entanglement makes a
// handover harder.
var regulatedAreas = map[string]struct{}{
	"healthcare":         {},
	"energy":             {},
	"financial services": {},
}

// Succession risk inputs.
const (
	strengthNeutral  = 6.0
	complexityWeight = 0.3
	maxRisk          = 10.0
)

// Classification bundles the three derived fields for one client.
type Classification struct {
	RelationshipType     RelationshipType `json:"relationship_type"`
	TransitionComplexity float64          `json:"transition_complexity"`
	SuccessionRisk       float64          `json:"succession_risk"`
}

// Classify runs all three derivations over one client.
func Classify(c model.Client) Classification {
	c = c.Normalize()
	rel := Relationship(c)
	complexity := TransitionComplexity(c)
	return Classification{
		RelationshipType:     rel,
		TransitionComplexity: complexity,
		SuccessionRisk:       Risk(rel, c.RelationshipStrength, complexity),
	}
}

// Relationship classifies the client's primary-lobbyist relationship.
func Relationship(c model.Client) RelationshipType {
	c = c.Normalize()
	if strings.TrimSpace(c.PrimaryLobbyist) == "" {
		return Orphaned
	}
	teamSize := c.TeamSize()
	switch {
	case teamSize >= 2 && c.RelationshipStrength >= 7:
		return Shared
	case c.PrimaryLobbyist == c.ClientOriginator && teamSize <= 1:
		return Primary
	default:
		return Secondary
	}
}

// TransitionComplexity estimates how hard the client is to hand over.
// Rounded and capped at 10. There is deliberately no floor: a minimal
// client can score 0.
func TransitionComplexity(c model.Client) float64 {
	c = c.Normalize()

	complexity := c.RelationshipIntensity * intensityWeight
	complexity += frequencyWeight[c.ContactFrequency]
	if touchesRegulatedArea(c.PracticeAreas) {
		complexity += regulatedAreaBonus
	}
	if c.StrategicFitScore >= strategicFitThreshold {
		complexity += strategicFitBonus
	}
	if c.ConflictScore >= conflictThreshold {
		complexity += conflictBonus
	}

	return math.Min(maxComplexity, math.Round(complexity))
}

// Risk combines relationship type, relationship strength, and transition
// complexity into the 1-10 succession risk score.
func Risk(rel RelationshipType, strength, complexity float64) float64 {
	risk := baseRisk[rel]
	if strength < strengthNeutral {
		risk += strengthNeutral - strength
	}
	risk += complexity * complexityWeight
	return math.Min(maxRisk, math.Round(risk))
}

func touchesRegulatedArea(areas []string) bool {
	for _, a := range areas {
		if _, ok := regulatedAreas[strings.ToLower(strings.TrimSpace(a))]; ok {
			return true
		}
	}
	return false
}
