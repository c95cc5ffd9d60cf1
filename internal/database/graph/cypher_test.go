package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankProductsCypherDepthBounds(t *testing.T) {
	q := rankProductsCypher(3, false)
	assert.Contains(t, q, "[:FOLLOWS*1..3]")
	assert.Contains(t, q, "WHERE f <> u")
	assert.Contains(t, q, "WITH DISTINCT f")
	assert.Contains(t, q, "ORDER BY purchases DESC, product ASC")
	assert.NotContains(t, q, "$product")

	q = rankProductsCypher(1, true)
	assert.Contains(t, q, "[:FOLLOWS*1..1]")
	assert.Contains(t, q, "{name: $product}")
}

func TestBuyersAtDepthCypherExactBounds(t *testing.T) {
	q := buyersAtDepthCypher(2)
	assert.Contains(t, q, "[:FOLLOWS*2..2]")
	assert.Contains(t, q, "count(DISTINCT f)")

	q = buyersAtDepthCypher(7)
	assert.Contains(t, q, "[:FOLLOWS*7..7]")
}

func TestLoadCypherResolvesByID(t *testing.T) {
	assert.Contains(t, createFollowsCypher, "MATCH (a:User {id: row.from}), (b:User {id: row.to})")
	assert.Contains(t, createPurchasesCypher, "(p:Product {id: row.product})")
	assert.Contains(t, createUsersCypher, "CREATE (:User {id: row.id, name: row.name})")
}
