package repository

import (
	"context"
	"sync"

	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/pkg/metrics"
)

// PortfolioStore is the in-memory Store implementation.
//
// Records live in insertion-ordered slices with a map index by id. A sorted
// structure would be wrong here: every redistribution tie-break is defined
// in terms of original list order, so reads must replay insertion order
// exactly.
type PortfolioStore struct {
	mu sync.RWMutex

	clients     []string // client ids in insertion order
	clientByID  map[string]model.Client
	partners    []string // partner ids in insertion order
	partnerByID map[string]model.Partner

	linkBooks bool
}

// NewPortfolioStore creates an empty portfolio store.
func NewPortfolioStore(_ context.Context, opts ...Option) *PortfolioStore {
	s := &PortfolioStore{
		clientByID:  make(map[string]model.Client),
		partnerByID: make(map[string]model.Partner),
		linkBooks:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertClient inserts or replaces a client by id and, when book linking is
// on, appends the client to its primary partner's book.
func (s *PortfolioStore) UpsertClient(_ context.Context, c model.Client) (bool, error) {
	if c.ID == "" {
		return false, ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.clientByID[c.ID]
	if !exists {
		s.clients = append(s.clients, c.ID)
	}
	s.clientByID[c.ID] = c

	if s.linkBooks {
		s.relinkLocked(c)
	}

	metrics.UpdateClientCount(len(s.clients))
	return !exists, nil
}

// relinkLocked keeps partner books consistent with the client's primary
// lobbyist: the client id is appended to the named partner's book and
// removed from every other partner's. Caller holds the write lock.
func (s *PortfolioStore) relinkLocked(c model.Client) {
	for _, pid := range s.partners {
		p := s.partnerByID[pid]
		owns := p.Name == c.PrimaryLobbyist
		idx := indexOf(p.ClientIDs, c.ID)
		switch {
		case owns && idx < 0:
			p.ClientIDs = append(p.ClientIDs, c.ID)
		case !owns && idx >= 0:
			p.ClientIDs = append(p.ClientIDs[:idx], p.ClientIDs[idx+1:]...)
		default:
			continue
		}
		s.partnerByID[pid] = p
	}
}

// Client returns one client by id.
func (s *PortfolioStore) Client(_ context.Context, id string) (model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clientByID[id]
	if !ok {
		return model.Client{}, ErrClientNotFound
	}
	return c, nil
}

// Clients returns up to limit clients in insertion order.
func (s *PortfolioStore) Clients(_ context.Context, limit int) ([]model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.clients)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Client, 0, n)
	for _, id := range s.clients[:n] {
		out = append(out, s.clientByID[id])
	}
	return out, nil
}

// DeleteClient removes a client and unlinks it from partner books.
func (s *PortfolioStore) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clientByID[id]; !ok {
		return ErrClientNotFound
	}
	delete(s.clientByID, id)
	if idx := indexOf(s.clients, id); idx >= 0 {
		s.clients = append(s.clients[:idx], s.clients[idx+1:]...)
	}
	for _, pid := range s.partners {
		p := s.partnerByID[pid]
		if idx := indexOf(p.ClientIDs, id); idx >= 0 {
			p.ClientIDs = append(p.ClientIDs[:idx], p.ClientIDs[idx+1:]...)
			s.partnerByID[pid] = p
		}
	}

	metrics.UpdateClientCount(len(s.clients))
	return nil
}

// UpsertPartner inserts or replaces a partner by id.
func (s *PortfolioStore) UpsertPartner(_ context.Context, p model.Partner) (bool, error) {
	if p.ID == "" {
		return false, ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.partnerByID[p.ID]
	if !exists {
		s.partners = append(s.partners, p.ID)
	}

	if s.linkBooks && len(p.ClientIDs) == 0 {
		// A fresh partner adopts any already-stored clients naming it.
		for _, cid := range s.clients {
			if s.clientByID[cid].PrimaryLobbyist == p.Name {
				p.ClientIDs = append(p.ClientIDs, cid)
			}
		}
	}
	s.partnerByID[p.ID] = p

	metrics.UpdatePartnerCount(len(s.partners))
	return !exists, nil
}

// Partner returns one partner by id.
func (s *PortfolioStore) Partner(_ context.Context, id string) (model.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partnerByID[id]
	if !ok {
		return model.Partner{}, ErrPartnerNotFound
	}
	return p, nil
}

// Partners returns all partners in insertion order.
func (s *PortfolioStore) Partners(_ context.Context) ([]model.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Partner, 0, len(s.partners))
	for _, id := range s.partners {
		out = append(out, s.partnerByID[id])
	}
	return out, nil
}

// Counts returns the number of clients and partners tracked.
func (s *PortfolioStore) Counts(_ context.Context) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients), len(s.partners)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
