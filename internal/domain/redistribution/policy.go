// Package redistribution reassigns a departing partner's clients to the
// remaining partners under one of four policies. Assignment is a pure
// function of its inputs; iteration follows original list order because
// every tie-break depends on it.
package redistribution

import "fmt"

// Policy selects the assignment rule.
type Policy string

// Redistribution policies, in stable evaluation order.
const (
	PolicyBalanced     Policy = "balanced"
	PolicyExpertise    Policy = "expertise"
	PolicyRelationship Policy = "relationship"
	PolicyCustom       Policy = "custom"
)

// Policies lists all policies in stable evaluation order. Scenario ranking
// breaks ties by this order.
func Policies() []Policy {
	return []Policy{PolicyBalanced, PolicyExpertise, PolicyRelationship, PolicyCustom}
}

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
	switch p {
	case PolicyBalanced, PolicyExpertise, PolicyRelationship, PolicyCustom:
		return true
	default:
		return false
	}
}

// ParsePolicy converts a string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
	return p, nil
}
