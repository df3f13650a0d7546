// Package repository defines the portfolio store interface and errors.
package repository

// Option applies a configuration option to the PortfolioStore.
type Option func(*PortfolioStore)

// WithBookLinking controls whether the store keeps partner books in sync
// with each client's primary lobbyist. On by default; tests that manage
// books by hand can turn it off.
func WithBookLinking(enabled bool) Option {
	return func(s *PortfolioStore) {
		s.linkBooks = enabled
	}
}
