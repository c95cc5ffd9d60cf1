// Package bench runs the same operations against both backend adapters and
// reports elapsed time and results side by side. It is the headless
// replacement for the original application's stopwatch-per-button UI.
package bench

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialbench/internal/database"
)

// Backend is the slice of database.Service the runner drives. Defined here
// so tests can stub it.
type Backend interface {
	Name() string
	Reset(ctx context.Context) error
	Generate(ctx context.Context, userCount int) (*database.GenerateResult, error)
	RankProductsByFollowerPurchases(ctx context.Context, anchor string, depth int, productFilter string) ([]database.ProductCount, error)
	CountUsersAtDepthWhoBoughtProduct(ctx context.Context, product string, depth int) (int, error)
}

// Measurement is one timed operation on one backend. A failed operation
// keeps its error here instead of aborting the run; the other backend's
// measurement still happens.
type Measurement struct {
	Backend   string
	Operation string
	Elapsed   time.Duration
	Detail    string
	Err       error
}

// Report collects the measurements of one benchmark run.
type Report struct {
	RunID        string
	Started      time.Time
	Measurements []Measurement
}

// String renders the report as a side-by-side table.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "benchmark run %s (started %s)\n", r.RunID, r.Started.Format(time.RFC3339))
	fmt.Fprintf(&b, "%-34s %-12s %12s  %s\n", "OPERATION", "BACKEND", "ELAPSED", "RESULT")
	for _, m := range r.Measurements {
		result := m.Detail
		if m.Err != nil {
			result = "ERROR: " + m.Err.Error()
		}
		fmt.Fprintf(&b, "%-34s %-12s %12s  %s\n", m.Operation, m.Backend, m.Elapsed.Round(time.Microsecond), result)
	}
	return b.String()
}

// Scenario is the scripted workload: wipe both stores, generate the same
// population size on each, then run the two aggregate queries.
type Scenario struct {
	Users   int
	Depth   int
	Anchor  string
	Product string
}

// Runner drives the backends sequentially; it never issues two mutating
// operations concurrently against the same backend.
type Runner struct {
	backends []Backend
	log      *zap.Logger
}

// NewRunner creates a runner over the given backends.
func NewRunner(log *zap.Logger, backends ...Backend) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{backends: backends, log: log}
}

func (r *Runner) measure(operation string, backend Backend, fn func() (string, error)) Measurement {
	start := time.Now()
	detail, err := fn()
	m := Measurement{
		Backend:   backend.Name(),
		Operation: operation,
		Elapsed:   time.Since(start),
		Detail:    detail,
		Err:       err,
	}
	if err != nil {
		r.log.Warn("benchmark operation failed",
			zap.String("operation", operation),
			zap.String("backend", backend.Name()),
			zap.Error(err),
		)
	}
	return m
}

// Reset wipes every backend.
func (r *Runner) Reset(ctx context.Context) []Measurement {
	var ms []Measurement
	for _, be := range r.backends {
		ms = append(ms, r.measure("Reset", be, func() (string, error) {
			return "ok", be.Reset(ctx)
		}))
	}
	return ms
}

// Generate creates users new users on every backend. Each backend draws its
// own random graph; the populations match in size, not in shape.
func (r *Runner) Generate(ctx context.Context, users int) []Measurement {
	var ms []Measurement
	for _, be := range r.backends {
		ms = append(ms, r.measure("Generate", be, func() (string, error) {
			res, err := be.Generate(ctx, users)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d users, %d follows, %d purchases",
				res.UsersCreated, res.Follows, res.Purchases), nil
		}))
	}
	return ms
}

// RankProducts times the follower-purchase ranking on every backend.
func (r *Runner) RankProducts(ctx context.Context, anchor string, depth int, productFilter string) []Measurement {
	var ms []Measurement
	for _, be := range r.backends {
		ms = append(ms, r.measure("RankProductsByFollowerPurchases", be, func() (string, error) {
			rows, err := be.RankProductsByFollowerPurchases(ctx, anchor, depth, productFilter)
			if err != nil {
				return "", err
			}
			return formatRanking(rows), nil
		}))
	}
	return ms
}

// CountBuyers times the buyers-at-exact-depth count on every backend.
func (r *Runner) CountBuyers(ctx context.Context, product string, depth int) []Measurement {
	var ms []Measurement
	for _, be := range r.backends {
		ms = append(ms, r.measure("CountUsersAtDepthWhoBoughtProduct", be, func() (string, error) {
			n, err := be.CountUsersAtDepthWhoBoughtProduct(ctx, product, depth)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d users", n), nil
		}))
	}
	return ms
}

// RunScenario executes the full scripted workload and returns the report.
func (r *Runner) RunScenario(ctx context.Context, sc Scenario) *Report {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	r.log.Info("starting benchmark scenario",
		zap.String("run_id", report.RunID),
		zap.Int("users", sc.Users),
		zap.Int("depth", sc.Depth),
	)

	report.Measurements = append(report.Measurements, r.Reset(ctx)...)
	report.Measurements = append(report.Measurements, r.Generate(ctx, sc.Users)...)
	report.Measurements = append(report.Measurements, r.RankProducts(ctx, sc.Anchor, sc.Depth, "")...)
	report.Measurements = append(report.Measurements, r.CountBuyers(ctx, sc.Product, sc.Depth)...)
	return report
}

func formatRanking(rows []database.ProductCount) string {
	if len(rows) == 0 {
		return "no products"
	}
	parts := make([]string, len(rows))
	for i, pc := range rows {
		parts[i] = fmt.Sprintf("%s=%d", pc.Product, pc.Count)
	}
	return strings.Join(parts, " ")
}
