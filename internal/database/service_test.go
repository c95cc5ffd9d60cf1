package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbench/internal/database"
	"socialbench/internal/socialgraph"
)

// fakeStore is an in-memory Store double. Queries return canned values; the
// load path records what the service handed over.
type fakeStore struct {
	products  []database.Product
	userCount int
	loaded    []*socialgraph.Dataset
	resets    int
	rankRows  []database.ProductCount
	buyerHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: []database.Product{{ID: 1, Name: "Laptop"}, {ID: 2, Name: "Phone"}},
	}
}

func (f *fakeStore) Backend() string { return "fake" }

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) Migrate(context.Context) error { return nil }

func (f *fakeStore) SeedCatalog(context.Context, []string) error { return nil }

func (f *fakeStore) Close(context.Context) error { return nil }

func (f *fakeStore) Products(context.Context) ([]database.Product, error) {
	return f.products, nil
}

func (f *fakeStore) CountUsers(context.Context) (int, error) {
	return f.userCount, nil
}

func (f *fakeStore) Reset(context.Context) error {
	f.resets++
	f.userCount = 0
	return nil
}

func (f *fakeStore) Load(_ context.Context, ds *socialgraph.Dataset) error {
	f.loaded = append(f.loaded, ds)
	f.userCount += len(ds.Users)
	return nil
}

func (f *fakeStore) RankProductsByFollowerPurchases(context.Context, string, int, string) ([]database.ProductCount, error) {
	return f.rankRows, nil
}

func (f *fakeStore) CountUsersAtDepthWhoBoughtProduct(context.Context, string, int) (int, error) {
	return f.buyerHits, nil
}

func TestServiceValidation(t *testing.T) {
	svc, err := database.NewService(newFakeStore(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Generate(ctx, 0)
	assert.True(t, database.IsValidation(err), "got %v", err)

	_, err = svc.Generate(ctx, -10)
	assert.True(t, database.IsValidation(err), "got %v", err)

	_, err = svc.RankProductsByFollowerPurchases(ctx, "Alice", -1, "")
	assert.True(t, database.IsValidation(err), "got %v", err)

	_, err = svc.RankProductsByFollowerPurchases(ctx, "", 2, "")
	assert.True(t, database.IsValidation(err), "got %v", err)

	_, err = svc.CountUsersAtDepthWhoBoughtProduct(ctx, "Laptop", -3)
	assert.True(t, database.IsValidation(err), "got %v", err)

	_, err = svc.CountUsersAtDepthWhoBoughtProduct(ctx, "", 1)
	assert.True(t, database.IsValidation(err), "got %v", err)
}

func TestServiceGenerateGrowsPopulation(t *testing.T) {
	store := newFakeStore()
	svc, err := database.NewService(store, nil)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := svc.Generate(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, res.UsersCreated)

	res, err = svc.Generate(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, res.UsersCreated)

	require.Len(t, store.loaded, 2)
	// Second batch starts where the first one stopped.
	assert.Equal(t, "User101", store.loaded[1].Users[0].Name)

	// Purchases only reference catalog products.
	for _, ds := range store.loaded {
		for _, p := range ds.Purchases {
			assert.Contains(t, []int64{1, 2}, p.ProductID)
		}
	}
}

func TestServiceGenerateRequiresCatalog(t *testing.T) {
	store := newFakeStore()
	store.products = nil
	svc, err := database.NewService(store, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), 10)
	assert.ErrorContains(t, err, "catalog")
}

func TestServiceResetDelegates(t *testing.T) {
	store := newFakeStore()
	store.userCount = 50
	svc, err := database.NewService(store, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(context.Background()))
	require.NoError(t, svc.Reset(context.Background()))
	assert.Equal(t, 2, store.resets)
	assert.Zero(t, store.userCount)
}

func TestBatchSize(t *testing.T) {
	assert.Equal(t, 1, database.BatchSize(0))
	assert.Equal(t, 1, database.BatchSize(5))
	assert.Equal(t, 10, database.BatchSize(100))
	assert.Equal(t, 1000, database.BatchSize(10000))
	assert.Equal(t, 1000, database.BatchSize(500000))
}
