package relational

// SchemaSQL holds the social-network schema. follows and purchases reference
// users/products by surrogate id; purchases is deliberately unconstrained on
// duplicates (a purchase is an edge in a multiset).
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
  user_id    BIGINT PRIMARY KEY,
  user_name  VARCHAR NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS products (
  product_id   BIGINT PRIMARY KEY,
  product_name VARCHAR NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS follows (
  follower_id BIGINT NOT NULL,
  followed_id BIGINT NOT NULL,
  CHECK (follower_id <> followed_id)
);

CREATE TABLE IF NOT EXISTS purchases (
  user_id    BIGINT NOT NULL,
  product_id BIGINT NOT NULL
);
`

// Follower-purchase ranking: users reachable by walking FOLLOWS backward
// from the anchor, levels
// 1..depth, then BOUGHT edges counted per product over that set. The UNION
// (not UNION ALL) dedupes the frontier per (user, level) so cyclic graphs
// stay bounded. The anchor is excluded even when a cycle reaches it. The
// %s slot takes the optional product filter clause.
const rankProductsSQL = `
WITH RECURSIVE follower_tree(user_id, level) AS (
    SELECT u.user_id, 0
    FROM users u
    WHERE u.user_name = ?
  UNION
    SELECT f.follower_id, ft.level + 1
    FROM follows f
    JOIN follower_tree ft ON f.followed_id = ft.user_id
    WHERE ft.level < ?
)
SELECT p.product_name, COUNT(*) AS purchase_count
FROM purchases pu
JOIN products p ON p.product_id = pu.product_id
WHERE pu.user_id IN (
        SELECT ft.user_id
        FROM follower_tree ft
        WHERE ft.level > 0
          AND ft.user_id <> (SELECT user_id FROM users WHERE user_name = ?)
      )%s
GROUP BY p.product_name
ORDER BY purchase_count DESC, p.product_name;
`

// productFilterClause slots into rankProductsSQL when a filter is given.
const productFilterClause = `
  AND p.product_name = ?`

// Buyers-at-exact-depth count: walk FOLLOWS forward from the product's
// direct buyers, keep users
// whose level is exactly the requested depth, and count the distinct ones
// that also bought the product. Level 0 is the buyer set itself.
const countBuyersAtDepthSQL = `
WITH RECURSIVE reach(user_id, level) AS (
    SELECT DISTINCT pu.user_id, 0
    FROM purchases pu
    JOIN products p ON p.product_id = pu.product_id
    WHERE p.product_name = ?
  UNION
    SELECT f.followed_id, r.level + 1
    FROM follows f
    JOIN reach r ON f.follower_id = r.user_id
    WHERE r.level < ?
)
SELECT COUNT(DISTINCT r.user_id)
FROM reach r
WHERE r.level = ?
  AND r.user_id IN (
        SELECT pu.user_id
        FROM purchases pu
        JOIN products p ON p.product_id = pu.product_id
        WHERE p.product_name = ?
      );
`
