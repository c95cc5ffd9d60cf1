// Package graph implements the graph backend adapter on Neo4j. Each call
// opens one session and closes it on every exit path. Loads commit batch by
// batch: there is no global rollback, and a mid-load failure is surfaced as
// a database.PartialWriteError (see that type for the recovery contract).
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"socialbench/internal/database"
	"socialbench/internal/socialgraph"
)

// Client implements database.Store for Neo4j.
type Client struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewClient creates a Neo4j client and verifies connectivity.
func NewClient(uri, username, password, dbName string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, &database.BackendUnavailableError{Backend: "graph", Err: err}
	}

	return &Client{driver: driver, dbName: dbName}, nil
}

func (c *Client) Backend() string { return "graph" }

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return &database.BackendUnavailableError{Backend: "graph", Err: err}
	}
	return nil
}

func (c *Client) session(ctx context.Context) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
}

// Migrate creates the id/name indexes if missing.
func (c *Client) Migrate(ctx context.Context) error {
	session := c.session(ctx)
	defer session.Close(ctx)

	for _, stmt := range indexCypher {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, stmt, nil)
		})
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// SeedCatalog merges products by name, assigning ids by position.
func (c *Client) SeedCatalog(ctx context.Context, names []string) error {
	session := c.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for i, name := range names {
			params := map[string]any{"id": int64(i + 1), "name": name}
			if _, err := tx.Run(ctx, seedProductCypher, params); err != nil {
				return nil, fmt.Errorf("seed product %q: %w", name, err)
			}
		}
		return nil, nil
	})
	return err
}

func (c *Client) Products(ctx context.Context) ([]database.Product, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, listProductsCypher, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var products []database.Product
	for _, record := range records.([]*neo4j.Record) {
		p, err := productFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

// productFromRecord scans one catalog row. Product nodes created outside
// SeedCatalog may lack the id property (MERGE only sets it on create), so
// both fields are checked rather than asserted.
func productFromRecord(record *neo4j.Record) (database.Product, error) {
	idVal, found := record.Get("id")
	id, ok := idVal.(int64)
	if !found || !ok {
		return database.Product{}, fmt.Errorf("product record has no integer id: %v", idVal)
	}

	nameVal, found := record.Get("name")
	name, ok := nameVal.(string)
	if !found || !ok {
		return database.Product{}, fmt.Errorf("product %d has no string name: %v", id, nameVal)
	}

	return database.Product{ID: id, Name: name}, nil
}

func (c *Client) CountUsers(ctx context.Context) (int, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	n, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, countUsersCypher, nil)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return record.Values[0], nil
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n.(int64)), nil
}

// Reset deletes all users and their relationships. Product nodes stay.
func (c *Client) Reset(ctx context.Context) error {
	session := c.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, resetCypher, nil)
	})
	return err
}

// Load persists the dataset as UNWIND batches: all user batches, then
// follows, then purchases. Every batch is its own write transaction, so
// batches committed before a failure stay committed.
func (c *Client) Load(ctx context.Context, ds *socialgraph.Dataset) error {
	if ds == nil || len(ds.Users) == 0 {
		return fmt.Errorf("dataset has no users")
	}
	batchSize := database.BatchSize(len(ds.Users))

	session := c.session(ctx)
	defer session.Close(ctx)

	committed := 0

	userRows := make([]map[string]any, len(ds.Users))
	for i, u := range ds.Users {
		userRows[i] = map[string]any{"id": u.ID, "name": u.Name}
	}
	if err := c.runBatches(ctx, session, createUsersCypher, userRows, batchSize, &committed); err != nil {
		return &database.PartialWriteError{Backend: c.Backend(), CommittedBatches: committed, Err: fmt.Errorf("create users: %w", err)}
	}

	followRows := make([]map[string]any, len(ds.Follows))
	for i, f := range ds.Follows {
		followRows[i] = map[string]any{"from": f.FollowerID, "to": f.FollowedID}
	}
	if err := c.runBatches(ctx, session, createFollowsCypher, followRows, batchSize, &committed); err != nil {
		return &database.PartialWriteError{Backend: c.Backend(), CommittedBatches: committed, Err: fmt.Errorf("create follows: %w", err)}
	}

	purchaseRows := make([]map[string]any, len(ds.Purchases))
	for i, p := range ds.Purchases {
		purchaseRows[i] = map[string]any{"from": p.UserID, "product": p.ProductID}
	}
	if err := c.runBatches(ctx, session, createPurchasesCypher, purchaseRows, batchSize, &committed); err != nil {
		return &database.PartialWriteError{Backend: c.Backend(), CommittedBatches: committed, Err: fmt.Errorf("create purchases: %w", err)}
	}

	return nil
}

func (c *Client) runBatches(ctx context.Context, session neo4j.SessionWithContext, query string, rows []map[string]any, batchSize int, committed *int) error {
	for start := 0; start < len(rows); start += batchSize {
		batch := rows[start:min(start+batchSize, len(rows))]
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"rows": batch})
		})
		if err != nil {
			return fmt.Errorf("batch at %d: %w", start, err)
		}
		*committed++
	}
	return nil
}

// RankProductsByFollowerPurchases ranks the catalog by purchases among the
// anchor's transitive followers, using a variable-length
// reverse FOLLOWS traversal. Depth 0 never reaches anyone, so it skips the
// round trip entirely.
func (c *Client) RankProductsByFollowerPurchases(ctx context.Context, anchor string, depth int, productFilter string) ([]database.ProductCount, error) {
	if depth == 0 {
		return nil, nil
	}

	session := c.session(ctx)
	defer session.Close(ctx)

	params := map[string]any{"anchor": anchor}
	if productFilter != "" {
		params["product"] = productFilter
	}

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, rankProductsCypher(depth, productFilter != ""), params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("rank products query: %w", err)
	}

	var result []database.ProductCount
	for _, record := range records.([]*neo4j.Record) {
		product, _ := record.Get("product")
		purchases, _ := record.Get("purchases")
		result = append(result, database.ProductCount{
			Product: product.(string),
			Count:   int(purchases.(int64)),
		})
	}
	return result, nil
}

// CountUsersAtDepthWhoBoughtProduct counts users exactly depth FOLLOWS hops
// from a product's direct buyers who bought it themselves. Depth 0
// degenerates to counting the direct buyer set.
func (c *Client) CountUsersAtDepthWhoBoughtProduct(ctx context.Context, product string, depth int) (int, error) {
	query := directBuyersCypher
	if depth > 0 {
		query = buyersAtDepthCypher(depth)
	}

	session := c.session(ctx)
	defer session.Close(ctx)

	n, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"product": product})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return record.Values[0], nil
	})
	if err != nil {
		return 0, fmt.Errorf("count buyers at depth query: %w", err)
	}
	return int(n.(int64)), nil
}

var _ database.Store = (*Client)(nil)
