package graph

import "fmt"

// Static statements. Load statements resolve endpoints by the surrogate id
// stamped on each node at creation time.
const (
	resetCypher = `MATCH (u:User) DETACH DELETE u`

	seedProductCypher = `MERGE (p:Product {name: $name}) ON CREATE SET p.id = $id`

	listProductsCypher = `MATCH (p:Product) RETURN p.id AS id, p.name AS name ORDER BY id`

	countUsersCypher = `MATCH (u:User) RETURN count(u) AS users`

	createUsersCypher = `
		UNWIND $rows AS row
		CREATE (:User {id: row.id, name: row.name})`

	createFollowsCypher = `
		UNWIND $rows AS row
		MATCH (a:User {id: row.from}), (b:User {id: row.to})
		CREATE (a)-[:FOLLOWS]->(b)`

	createPurchasesCypher = `
		UNWIND $rows AS row
		MATCH (a:User {id: row.from}), (p:Product {id: row.product})
		CREATE (a)-[:BOUGHT]->(p)`

	directBuyersCypher = `
		MATCH (b:User)-[:BOUGHT]->(:Product {name: $product})
		RETURN count(DISTINCT b) AS buyers`
)

// indexCypher is run at migration time; the original schema lives entirely
// in these indexes since Neo4j needs no table DDL.
var indexCypher = []string{
	`CREATE INDEX user_id_idx IF NOT EXISTS FOR (u:User) ON (u.id)`,
	`CREATE INDEX user_name_idx IF NOT EXISTS FOR (u:User) ON (u.name)`,
	`CREATE INDEX product_id_idx IF NOT EXISTS FOR (p:Product) ON (p.id)`,
	`CREATE INDEX product_name_idx IF NOT EXISTS FOR (p:Product) ON (p.name)`,
}

// rankProductsCypher builds the follower-purchase ranking query for a given
// depth (>= 1). Cypher cannot
// parameterize variable-length bounds, so the depth is spliced into the
// pattern. The traversal walks FOLLOWS against its direction (the anchor's
// followers, transitively), dedupes the reachable set, excludes the anchor,
// and counts BOUGHT edges per product.
func rankProductsCypher(depth int, filtered bool) string {
	productMatch := `MATCH (f)-[b:BOUGHT]->(p:Product)`
	if filtered {
		productMatch = `MATCH (f)-[b:BOUGHT]->(p:Product {name: $product})`
	}
	return fmt.Sprintf(`
		MATCH (u:User {name: $anchor})<-[:FOLLOWS*1..%d]-(f:User)
		WHERE f <> u
		WITH DISTINCT f
		%s
		RETURN p.name AS product, count(b) AS purchases
		ORDER BY purchases DESC, product ASC`, depth, productMatch)
}

// buyersAtDepthCypher builds the buyers-at-exact-depth count for depth >= 1:
// users reachable by
// exactly depth forward FOLLOWS hops from a direct buyer, restricted to
// those who also bought the product. Depth 0 is served by
// directBuyersCypher instead.
func buyersAtDepthCypher(depth int) string {
	return fmt.Sprintf(`
		MATCH (s:User)-[:BOUGHT]->(p:Product {name: $product})
		WITH DISTINCT s, p
		MATCH (s)-[:FOLLOWS*%d..%d]->(f:User)
		WHERE (f)-[:BOUGHT]->(p)
		RETURN count(DISTINCT f) AS buyers`, depth, depth)
}
