package redistribution

import (
	"math"

	"github.com/novara/casebook/internal/domain/model"
)

// CapacityBenchmark is the fixed workload benchmark: 30 primary clients is
// 100% capacity. Never configurable per run.
const CapacityBenchmark = 30

// PartnerLoad aggregates one remaining partner's share of a reassignment.
type PartnerLoad struct {
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name"`

	// AssignedClientIDs lists newly assigned clients in assignment order.
	AssignedClientIDs []string `json:"assigned_client_ids"`

	// IncrementalRevenue sums each assigned client's most-recent-year
	// revenue.
	IncrementalRevenue float64 `json:"incremental_revenue"`

	// Capacity is the resulting capacity percent (existing primary
	// clients plus newly assigned, against the 30-client benchmark).
	// May exceed 100; not clamped for display.
	Capacity float64 `json:"capacity"`
}

// Result is one policy run's client-to-partner assignment overlay. It is
// produced fresh on every run and never persisted.
type Result struct {
	Policy Policy `json:"policy"`

	// Assignments maps clientID to the target partnerID; one entry per
	// reassigned client. Clients no rule could place are absent.
	Assignments map[string]string `json:"assignments"`

	// Loads carries per-partner aggregates in remaining-partner order.
	// Partners that received nothing still appear with a zero delta.
	Loads []PartnerLoad `json:"loads"`

	// Unassigned lists departing clients no rule could place, in
	// iteration order.
	Unassigned []string `json:"unassigned"`

	// Dropped counts custom-map entries discarded during validation.
	Dropped int `json:"dropped"`
}

// Assign reassigns the departing partners' clients to the remaining
// partners under the given policy. Both partner lists must be non-empty;
// otherwise the result is empty, not an error. The inputs are never
// mutated. customMap is only consulted by PolicyCustom.
func Assign(departing, remaining []model.Partner, clients []model.Client, policy Policy, customMap map[string]string) Result {
	res := Result{
		Policy:      policy,
		Assignments: map[string]string{},
	}
	if len(departing) == 0 || len(remaining) == 0 {
		return res
	}

	byID := clientIndex(clients)
	pool := departingClients(departing, byID)

	var assign func() map[string]string
	switch policy {
	case PolicyBalanced:
		assign = func() map[string]string { return assignBalanced(pool, remaining) }
	case PolicyExpertise:
		assign = func() map[string]string { return assignExpertise(pool, remaining) }
	case PolicyRelationship:
		assign = func() map[string]string { return assignRelationship(pool, remaining) }
	case PolicyCustom:
		assign = func() map[string]string {
			m, dropped := validateCustom(pool, remaining, customMap)
			res.Dropped = dropped
			return m
		}
	default:
		return res
	}
	res.Assignments = assign()

	res.Loads = buildLoads(remaining, pool, res.Assignments)
	for _, c := range pool {
		if _, ok := res.Assignments[c.ID]; !ok {
			res.Unassigned = append(res.Unassigned, c.ID)
		}
	}
	return res
}

func clientIndex(clients []model.Client) map[string]model.Client {
	byID := make(map[string]model.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	return byID
}

// departingClients flattens the departing partners' books into one ordered
// list: partner order first, then each partner's client order. IDs with no
// matching client record are skipped.
func departingClients(departing []model.Partner, byID map[string]model.Client) []model.Client {
	var out []model.Client
	seen := map[string]struct{}{}
	for _, p := range departing {
		for _, id := range p.ClientIDs {
			c, ok := byID[id]
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// assignBalanced splits the pool into ceil(N/R)-sized contiguous chunks and
// hands chunk i to remaining partner i. The last chunk may be shorter.
func assignBalanced(pool []model.Client, remaining []model.Partner) map[string]string {
	out := make(map[string]string, len(pool))
	chunk := int(math.Ceil(float64(len(pool)) / float64(len(remaining))))
	if chunk == 0 {
		return out
	}
	for i, c := range pool {
		target := i / chunk
		if target >= len(remaining) {
			target = len(remaining) - 1
		}
		out[c.ID] = remaining[target].ID
	}
	return out
}

// assignExpertise places each client with the partner whose practice areas
// overlap the client's the most. Ties keep the earlier partner; a client
// that matches nobody stays unassigned.
func assignExpertise(pool []model.Client, remaining []model.Partner) map[string]string {
	out := make(map[string]string, len(pool))
	for _, c := range pool {
		bestID := ""
		bestMatch := 0.0
		for _, p := range remaining {
			m := expertiseMatch(c.PracticeAreas, p.PracticeAreas)
			if m > bestMatch {
				bestMatch = m
				bestID = p.ID
			}
		}
		if bestID != "" {
			out[c.ID] = bestID
		}
	}
	return out
}

// expertiseMatch is the share of the client's practice areas the partner
// covers. A client with no areas matches nobody.
func expertiseMatch(clientAreas, partnerAreas []string) float64 {
	if len(clientAreas) == 0 {
		return 0
	}
	covered := map[string]struct{}{}
	for _, a := range partnerAreas {
		covered[a] = struct{}{}
	}
	overlap := 0
	for _, a := range clientAreas {
		if _, ok := covered[a]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(clientAreas))
}

// assignRelationship places each client with the first remaining partner
// already on its lobbyist team.
func assignRelationship(pool []model.Client, remaining []model.Partner) map[string]string {
	out := make(map[string]string, len(pool))
	for _, c := range pool {
		for _, p := range remaining {
			if c.OnTeam(p.Name) {
				out[c.ID] = p.ID
				break
			}
		}
	}
	return out
}

// validateCustom filters an operator-supplied clientID->partnerID map.
// Entries pointing at anyone but a remaining partner, or naming a client
// outside the departing pool, are dropped silently; the drop count is
// reported so callers can surface it.
func validateCustom(pool []model.Client, remaining []model.Partner, customMap map[string]string) (map[string]string, int) {
	valid := map[string]struct{}{}
	for _, p := range remaining {
		valid[p.ID] = struct{}{}
	}
	out := make(map[string]string, len(customMap))
	for _, c := range pool {
		target, ok := customMap[c.ID]
		if !ok {
			continue
		}
		if _, ok := valid[target]; !ok {
			continue
		}
		out[c.ID] = target
	}
	// Everything not kept was dropped: bad targets (including departing
	// partners) and clients outside the departing pool alike.
	return out, len(customMap) - len(out)
}

// buildLoads computes per-partner aggregates in remaining-partner order.
func buildLoads(remaining []model.Partner, pool []model.Client, assignments map[string]string) []PartnerLoad {
	loads := make([]PartnerLoad, len(remaining))
	index := make(map[string]int, len(remaining))
	for i, p := range remaining {
		loads[i] = PartnerLoad{PartnerID: p.ID, PartnerName: p.Name}
		index[p.ID] = i
	}
	for _, c := range pool {
		target, ok := assignments[c.ID]
		if !ok {
			continue
		}
		i, ok := index[target]
		if !ok {
			continue
		}
		loads[i].AssignedClientIDs = append(loads[i].AssignedClientIDs, c.ID)
		loads[i].IncrementalRevenue += c.LatestRevenue()
	}
	for i, p := range remaining {
		total := len(p.ClientIDs) + len(loads[i].AssignedClientIDs)
		loads[i].Capacity = float64(total) / CapacityBenchmark * 100
	}
	return loads
}
