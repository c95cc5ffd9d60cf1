// Package database defines the backend-agnostic contract shared by the
// relational and graph adapters, and the operation layer that drives one
// adapter at a time.
package database

import (
	"context"

	"socialbench/internal/socialgraph"
)

// Product is a catalog entry. The catalog is seeded once by the driver and
// never touched by Reset, Load, or the queries.
type Product struct {
	ID   int64
	Name string
}

// ProductCount is one row of the follower-purchase ranking.
type ProductCount struct {
	Product string
	Count   int
}

// Store is the per-backend realization of bulk loading and the two
// transitive aggregation queries. Both adapters implement identical
// semantics; only load atomicity differs (see Load).
type Store interface {
	// Backend names the store for logs and error context ("relational",
	// "graph").
	Backend() string

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Migrate creates the schema (tables or indexes) if missing.
	Migrate(ctx context.Context) error

	// SeedCatalog inserts the product catalog, skipping products that
	// already exist.
	SeedCatalog(ctx context.Context, names []string) error

	// Products returns the seeded catalog.
	Products(ctx context.Context) ([]Product, error)

	// CountUsers returns the current user population size.
	CountUsers(ctx context.Context) (int, error)

	// Reset deletes all users and their edges. Products survive. Resetting
	// an already-empty store is not an error.
	Reset(ctx context.Context) error

	// Load persists a generated dataset with batched writes, users before
	// edges. The relational adapter wraps the whole call in one
	// transaction; the graph adapter commits batch by batch and reports a
	// mid-load failure as a PartialWriteError.
	Load(ctx context.Context, ds *socialgraph.Dataset) error

	// RankProductsByFollowerPurchases aggregates BOUGHT edges over the
	// users that follow anchor transitively within 1..depth hops, anchor
	// excluded. Counts are per edge, ordered by count descending then
	// product name. depth 0 or an unknown anchor yields an empty result.
	// productFilter, when non-empty, restricts the result to that product.
	RankProductsByFollowerPurchases(ctx context.Context, anchor string, depth int, productFilter string) ([]ProductCount, error)

	// CountUsersAtDepthWhoBoughtProduct counts the distinct users reachable
	// by exactly depth forward FOLLOWS hops from the product's direct
	// buyers that also bought the product. depth 0 returns the direct
	// buyer count; an unknown product yields 0.
	CountUsersAtDepthWhoBoughtProduct(ctx context.Context, product string, depth int) (int, error)

	// Close releases the underlying driver resources.
	Close(ctx context.Context) error
}
