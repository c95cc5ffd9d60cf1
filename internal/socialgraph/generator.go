// Package socialgraph generates synthetic social-network datasets: users,
// FOLLOWS edges between users, and BOUGHT edges from users to a fixed
// product catalog. Generation is pure; persistence belongs to the backend
// adapters.
package socialgraph

import (
	"fmt"
	"math/rand/v2"
)

// Shape parameters of the synthetic graph. Per-user edge counts are drawn
// uniformly from [0, max] inclusive.
const (
	MaxFollowsPerUser   = 20
	MaxPurchasesPerUser = 5
)

// User is a generated account. ID is the 1-based position in the overall
// population and doubles as the stable reference used by the loaders; Name
// is derived from it.
type User struct {
	ID   int64
	Name string
}

// Follow is a directed follower->followed edge between two users.
type Follow struct {
	FollowerID int64
	FollowedID int64
}

// Purchase is a directed user->product edge. Duplicates are allowed: buying
// the same product twice yields two edges.
type Purchase struct {
	UserID    int64
	ProductID int64
}

// Dataset is one generation run, ready for bulk loading. Users must be
// persisted before either edge slice.
type Dataset struct {
	Users     []User
	Follows   []Follow
	Purchases []Purchase
}

// UserName returns the canonical name for a user id.
func UserName(id int64) string {
	return fmt.Sprintf("User%d", id)
}

// Generate produces a dataset of count new users appended after existing
// already-persisted ones. New users are named by position (User<existing+1>
// .. User<existing+count>) so repeated calls grow the population without
// renaming anyone.
//
// Follow targets are drawn uniformly over the full population, new and old
// alike. Self-loops and repeats of a pair already drawn for the same user
// are skipped, not resampled, so the drawn follower count is an upper
// bound. Purchases are drawn uniformly from productIDs with duplicates
// kept.
//
// Randomness is not seeded; two calls with the same arguments produce
// different graphs.
func Generate(existing, count int, productIDs []int64) (*Dataset, error) {
	if count <= 0 {
		return nil, fmt.Errorf("user count must be positive, got %d", count)
	}
	if existing < 0 {
		return nil, fmt.Errorf("existing user count must not be negative, got %d", existing)
	}
	if len(productIDs) == 0 {
		return nil, fmt.Errorf("product catalog is empty")
	}

	total := int64(existing + count)
	ds := &Dataset{
		Users: make([]User, 0, count),
	}

	for i := 0; i < count; i++ {
		id := int64(existing + i + 1)
		ds.Users = append(ds.Users, User{ID: id, Name: UserName(id)})
	}

	seen := make(map[int64]bool, MaxFollowsPerUser)
	for _, u := range ds.Users {
		clear(seen)
		followCount := rand.IntN(MaxFollowsPerUser + 1)
		for k := 0; k < followCount; k++ {
			target := rand.Int64N(total) + 1
			if target == u.ID || seen[target] {
				continue
			}
			seen[target] = true
			ds.Follows = append(ds.Follows, Follow{FollowerID: u.ID, FollowedID: target})
		}

		purchaseCount := rand.IntN(MaxPurchasesPerUser + 1)
		for k := 0; k < purchaseCount; k++ {
			product := productIDs[rand.IntN(len(productIDs))]
			ds.Purchases = append(ds.Purchases, Purchase{UserID: u.ID, ProductID: product})
		}
	}

	return ds, nil
}
