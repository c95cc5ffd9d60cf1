// Package relational implements the relational backend adapter on embedded
// DuckDB through database/sql. Loads run inside a single transaction; the
// traversal queries are ANSI recursive CTEs.
package relational

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
)

// DuckDBClient manages the physical connection to a DuckDB database.
type DuckDBClient struct {
	db      *sql.DB
	timeout time.Duration
	threads int
}

// DuckDBOption configures the DuckDB client.
type DuckDBOption func(*DuckDBClient)

// WithThreads sets the number of DuckDB threads.
func WithThreads(n int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.threads = n
	}
}

// WithTimeout bounds the initial connectivity check.
func WithTimeout(d time.Duration) DuckDBOption {
	return func(c *DuckDBClient) {
		c.timeout = d
	}
}

// NewDuckDBClient opens a DuckDB database. An empty dsn (or ":memory:")
// creates an in-memory database; anything else is treated as a file path.
func NewDuckDBClient(dsn string, opts ...DuckDBOption) (*DuckDBClient, error) {
	client := &DuckDBClient{}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	ctx := context.Background()
	if client.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// DuckDB is embedded; serial access is often safer/faster for writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if client.threads > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA threads=%d", client.threads)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting threads: %w", err)
		}
	}

	client.db = db
	return client, nil
}

// NewInMemoryDB creates a new in-memory DuckDB database.
func NewInMemoryDB(opts ...DuckDBOption) (*DuckDBClient, error) {
	return NewDuckDBClient(":memory:", opts...)
}

// DB returns the underlying sql.DB instance.
func (c *DuckDBClient) DB() *sql.DB {
	return c.db
}

// Close releases database resources.
func (c *DuckDBClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies database connectivity.
func (c *DuckDBClient) Ping(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.db.PingContext(ctx)
}
