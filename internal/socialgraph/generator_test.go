package socialgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbench/internal/socialgraph"
)

var catalog = []int64{1, 2, 3, 4, 5}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := socialgraph.Generate(0, 0, catalog)
	assert.Error(t, err)

	_, err = socialgraph.Generate(0, -5, catalog)
	assert.Error(t, err)

	_, err = socialgraph.Generate(-1, 10, catalog)
	assert.Error(t, err)

	_, err = socialgraph.Generate(0, 10, nil)
	assert.Error(t, err)
}

func TestGenerateScale(t *testing.T) {
	ds, err := socialgraph.Generate(0, 1000, catalog)
	require.NoError(t, err)

	assert.Len(t, ds.Users, 1000)
	assert.LessOrEqual(t, len(ds.Follows), 1000*socialgraph.MaxFollowsPerUser)
	assert.LessOrEqual(t, len(ds.Purchases), 1000*socialgraph.MaxPurchasesPerUser)
}

func TestGenerateNamesUsersByPosition(t *testing.T) {
	ds, err := socialgraph.Generate(50, 10, catalog)
	require.NoError(t, err)

	require.Len(t, ds.Users, 10)
	assert.Equal(t, int64(51), ds.Users[0].ID)
	assert.Equal(t, "User51", ds.Users[0].Name)
	assert.Equal(t, int64(60), ds.Users[9].ID)
	assert.Equal(t, "User60", ds.Users[9].Name)
}

func TestGenerateReferentialIntegrity(t *testing.T) {
	const existing, count = 20, 300
	ds, err := socialgraph.Generate(existing, count, catalog)
	require.NoError(t, err)

	products := make(map[int64]bool, len(catalog))
	for _, id := range catalog {
		products[id] = true
	}

	// Follow endpoints must lie in the full population (old users included)
	// and never form self-loops.
	for _, f := range ds.Follows {
		assert.NotEqual(t, f.FollowerID, f.FollowedID, "self-loop generated")
		assert.GreaterOrEqual(t, f.FollowerID, int64(existing+1))
		assert.LessOrEqual(t, f.FollowerID, int64(existing+count))
		assert.GreaterOrEqual(t, f.FollowedID, int64(1))
		assert.LessOrEqual(t, f.FollowedID, int64(existing+count))
	}

	for _, p := range ds.Purchases {
		assert.True(t, products[p.ProductID], "purchase references unknown product %d", p.ProductID)
		assert.GreaterOrEqual(t, p.UserID, int64(existing+1))
		assert.LessOrEqual(t, p.UserID, int64(existing+count))
	}
}

func TestGenerateFollowsUniquePerUser(t *testing.T) {
	ds, err := socialgraph.Generate(0, 500, catalog)
	require.NoError(t, err)

	seen := make(map[socialgraph.Follow]bool, len(ds.Follows))
	for _, f := range ds.Follows {
		assert.False(t, seen[f], "duplicate follow %v within one run", f)
		seen[f] = true
	}
}

func TestGenerateEdgeBudgetPerUser(t *testing.T) {
	ds, err := socialgraph.Generate(0, 200, catalog)
	require.NoError(t, err)

	follows := make(map[int64]int)
	for _, f := range ds.Follows {
		follows[f.FollowerID]++
	}
	for id, n := range follows {
		assert.LessOrEqual(t, n, socialgraph.MaxFollowsPerUser, "user %d has too many follows", id)
	}

	purchases := make(map[int64]int)
	for _, p := range ds.Purchases {
		purchases[p.UserID]++
	}
	for id, n := range purchases {
		assert.LessOrEqual(t, n, socialgraph.MaxPurchasesPerUser, "user %d has too many purchases", id)
	}
}
