package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"socialbench/internal/database"
	"socialbench/internal/socialgraph"
)

// Repo implements database.Store on DuckDB.
type Repo struct {
	db *sql.DB
}

// NewRepo wraps an open database handle.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Backend() string { return "relational" }

func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &database.BackendUnavailableError{Backend: r.Backend(), Err: err}
	}
	return nil
}

func (r *Repo) Close(context.Context) error {
	return r.db.Close()
}

// Migrate creates the schema if missing.
func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, SchemaSQL)
	return err
}

// SeedCatalog inserts products by position (1-based ids), skipping names
// that already exist.
func (r *Repo) SeedCatalog(ctx context.Context, names []string) error {
	stmt, err := r.db.PrepareContext(ctx,
		`INSERT INTO products(product_id, product_name) VALUES (?, ?) ON CONFLICT DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	for i, name := range names {
		if _, err := stmt.ExecContext(ctx, int64(i+1), name); err != nil {
			return fmt.Errorf("seed product %q: %w", name, err)
		}
	}
	return nil
}

func (r *Repo) Products(ctx context.Context) ([]database.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, product_name FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []database.Product
	for rows.Next() {
		var p database.Product
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repo) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Reset deletes all edges and users. Products and schema stay.
func (r *Repo) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"follows", "purchases", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Load persists the dataset inside one transaction: users first, then
// follows, then purchases, each in multi-row insert batches. Any failure
// rolls back the whole call.
func (r *Repo) Load(ctx context.Context, ds *socialgraph.Dataset) error {
	if ds == nil || len(ds.Users) == 0 {
		return errors.New("dataset has no users")
	}
	batchSize := database.BatchSize(len(ds.Users))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(ds.Users); start += batchSize {
		batch := ds.Users[start:min(start+batchSize, len(ds.Users))]
		args := make([]any, 0, len(batch)*2)
		for _, u := range batch {
			args = append(args, u.ID, u.Name)
		}
		query := `INSERT INTO users(user_id, user_name) VALUES ` + placeholderRows(len(batch), 2)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert users batch at %d: %w", start, err)
		}
	}

	for start := 0; start < len(ds.Follows); start += batchSize {
		batch := ds.Follows[start:min(start+batchSize, len(ds.Follows))]
		args := make([]any, 0, len(batch)*2)
		for _, f := range batch {
			args = append(args, f.FollowerID, f.FollowedID)
		}
		query := `INSERT INTO follows(follower_id, followed_id) VALUES ` + placeholderRows(len(batch), 2)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert follows batch at %d: %w", start, err)
		}
	}

	for start := 0; start < len(ds.Purchases); start += batchSize {
		batch := ds.Purchases[start:min(start+batchSize, len(ds.Purchases))]
		args := make([]any, 0, len(batch)*2)
		for _, p := range batch {
			args = append(args, p.UserID, p.ProductID)
		}
		query := `INSERT INTO purchases(user_id, product_id) VALUES ` + placeholderRows(len(batch), 2)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert purchases batch at %d: %w", start, err)
		}
	}

	return tx.Commit()
}

// placeholderRows builds "(?,?),(?,?),..." for n rows of width columns.
func placeholderRows(n, width int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", width), ",") + ")"
	var b strings.Builder
	b.Grow(n * (len(row) + 1))
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(row)
	}
	return b.String()
}

// RankProductsByFollowerPurchases ranks the catalog by purchases among the
// anchor's transitive followers, via a recursive CTE over the reversed
// FOLLOWS relation.
func (r *Repo) RankProductsByFollowerPurchases(ctx context.Context, anchor string, depth int, productFilter string) ([]database.ProductCount, error) {
	query := fmt.Sprintf(rankProductsSQL, "")
	args := []any{anchor, depth, anchor}
	if productFilter != "" {
		query = fmt.Sprintf(rankProductsSQL, productFilterClause)
		args = append(args, productFilter)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("rank products query: %w", err)
	}
	defer rows.Close()

	var result []database.ProductCount
	for rows.Next() {
		var pc database.ProductCount
		if err := rows.Scan(&pc.Product, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan product count: %w", err)
		}
		result = append(result, pc)
	}
	return result, rows.Err()
}

// CountUsersAtDepthWhoBoughtProduct counts users exactly depth FOLLOWS hops
// from a product's direct buyers who bought it themselves, via a forward
// level-tracking recursive CTE.
func (r *Repo) CountUsersAtDepthWhoBoughtProduct(ctx context.Context, product string, depth int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countBuyersAtDepthSQL,
		product, depth, depth, product).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count buyers at depth query: %w", err)
	}
	return n, nil
}

var _ database.Store = (*Repo)(nil)
