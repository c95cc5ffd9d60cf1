package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"socialbench/internal/socialgraph"
)

// GenerateResult summarizes one Generate call.
type GenerateResult struct {
	UsersCreated int
	Follows      int
	Purchases    int
	Elapsed      time.Duration
}

// Service exposes the three core operations (reset, generate, query) over a
// single store. Each operation is one blocking unit of work: validation
// first, then exactly one pass against the backend. Callers must not invoke
// two mutating operations concurrently on the same Service.
type Service struct {
	store Store
	log   *zap.Logger
}

// NewService wires a service around a store.
func NewService(store Store, log *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   log.With(zap.String("backend", store.Backend())),
	}, nil
}

// Name returns the backend name of the underlying store.
func (s *Service) Name() string { return s.store.Backend() }

// Reset deletes all users and edges. Idempotent.
func (s *Service) Reset(ctx context.Context) error {
	start := time.Now()
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset %s: %w", s.store.Backend(), err)
	}
	s.log.Info("store reset", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Generate creates userCount new users with random FOLLOWS and BOUGHT edges
// and bulk-loads them. The new users are appended after the existing
// population, so repeated calls grow the graph.
func (s *Service) Generate(ctx context.Context, userCount int) (*GenerateResult, error) {
	if userCount <= 0 {
		return nil, &ValidationError{Field: "userCount", Reason: fmt.Sprintf("must be positive, got %d", userCount)}
	}

	start := time.Now()

	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate: read catalog from %s: %w", s.store.Backend(), err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("generate: %s product catalog is empty, seed it first", s.store.Backend())
	}
	productIDs := make([]int64, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}

	existing, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate: count users in %s: %w", s.store.Backend(), err)
	}

	ds, err := socialgraph.Generate(existing, userCount, productIDs)
	if err != nil {
		return nil, fmt.Errorf("generate dataset: %w", err)
	}

	if err := s.store.Load(ctx, ds); err != nil {
		return nil, fmt.Errorf("load into %s: %w", s.store.Backend(), err)
	}

	res := &GenerateResult{
		UsersCreated: len(ds.Users),
		Follows:      len(ds.Follows),
		Purchases:    len(ds.Purchases),
		Elapsed:      time.Since(start),
	}
	s.log.Info("graph generated",
		zap.Int("users", res.UsersCreated),
		zap.Int("follows", res.Follows),
		zap.Int("purchases", res.Purchases),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// RankProductsByFollowerPurchases validates the query inputs and delegates
// to the store. An unknown anchor yields an empty slice, not an error.
func (s *Service) RankProductsByFollowerPurchases(ctx context.Context, anchor string, depth int, productFilter string) ([]ProductCount, error) {
	if anchor == "" {
		return nil, &ValidationError{Field: "anchor", Reason: "must not be empty"}
	}
	if depth < 0 {
		return nil, &ValidationError{Field: "depth", Reason: fmt.Sprintf("must not be negative, got %d", depth)}
	}

	start := time.Now()
	rows, err := s.store.RankProductsByFollowerPurchases(ctx, anchor, depth, productFilter)
	if err != nil {
		return nil, fmt.Errorf("rank products on %s: %w", s.store.Backend(), err)
	}
	s.log.Info("ranked products by follower purchases",
		zap.String("anchor", anchor),
		zap.Int("depth", depth),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rows, nil
}

// CountUsersAtDepthWhoBoughtProduct validates the query inputs and delegates
// to the store. An unknown product yields 0, not an error.
func (s *Service) CountUsersAtDepthWhoBoughtProduct(ctx context.Context, product string, depth int) (int, error) {
	if product == "" {
		return 0, &ValidationError{Field: "product", Reason: "must not be empty"}
	}
	if depth < 0 {
		return 0, &ValidationError{Field: "depth", Reason: fmt.Sprintf("must not be negative, got %d", depth)}
	}

	start := time.Now()
	n, err := s.store.CountUsersAtDepthWhoBoughtProduct(ctx, product, depth)
	if err != nil {
		return 0, fmt.Errorf("count buyers at depth on %s: %w", s.store.Backend(), err)
	}
	s.log.Info("counted buyers at depth",
		zap.String("product", product),
		zap.Int("depth", depth),
		zap.Int("count", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n, nil
}

// BatchSize picks the write batch size for a load: a tenth of the volume,
// at least 1, at most 1000. A tuning knob, not a correctness contract.
func BatchSize(total int) int {
	size := total / 10
	if size < 1 {
		size = 1
	}
	if size > 1000 {
		size = 1000
	}
	return size
}
