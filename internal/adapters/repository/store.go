// Package repository defines the portfolio store interface and errors.
package repository

import (
	"context"

	"github.com/novara/casebook/internal/domain/model"
)

// Store provides read/write access to the in-memory portfolio. List reads
// return records in insertion order: the redistribution engine's tie-breaks
// depend on that order being stable.
type Store interface {
	// UpsertClient inserts or replaces a client by id. Returns true when
	// the client was newly created.
	UpsertClient(ctx context.Context, c model.Client) (bool, error)

	// Client returns one client by id, or ErrClientNotFound.
	Client(ctx context.Context, id string) (model.Client, error)

	// Clients returns up to limit clients in insertion order; a
	// non-positive limit returns everything.
	Clients(ctx context.Context, limit int) ([]model.Client, error)

	// DeleteClient removes a client, or returns ErrClientNotFound.
	DeleteClient(ctx context.Context, id string) error

	// UpsertPartner inserts or replaces a partner by id. Returns true
	// when the partner was newly created.
	UpsertPartner(ctx context.Context, p model.Partner) (bool, error)

	// Partner returns one partner by id, or ErrPartnerNotFound.
	Partner(ctx context.Context, id string) (model.Partner, error)

	// Partners returns all partners in insertion order.
	Partners(ctx context.Context) ([]model.Partner, error)

	// Counts returns the number of clients and partners tracked.
	Counts(ctx context.Context) (clients, partners int)
}
