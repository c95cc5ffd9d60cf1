package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"socialbench/internal/bench"
	"socialbench/internal/config"
	"socialbench/internal/database"
	"socialbench/internal/database/graph"
	"socialbench/internal/database/relational"
)

const usage = `socialbench <command> [flags]

Commands:
  bench      reset, generate, and query both backends, reporting timings
  reset      delete all users and edges
  generate   create random users with follows/purchases
  rank       rank products by transitive-follower purchases
  count      count users at an exact follower distance who bought a product

Common flags:
  -config PATH       YAML configuration file
  -backend NAME      relational, graph, or both (default both)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(os.Args[1], os.Args[2:], log); err != nil {
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func run(command string, args []string, log *zap.Logger) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	backendName := fs.String("backend", "both", "relational, graph, or both")
	users := fs.Int("users", 0, "user count for generate (0 = config value)")
	anchor := fs.String("anchor", "", "anchor user for rank (empty = config value)")
	product := fs.String("product", "", "product name (empty = config value)")
	filter := fs.String("filter", "", "optional product filter for rank")
	depth := fs.Int("depth", -1, "traversal depth (-1 = config value)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *users <= 0 {
		*users = cfg.Bench.Users
	}
	if *anchor == "" {
		*anchor = cfg.Bench.Anchor
	}
	if *product == "" {
		*product = cfg.Bench.Product
	}
	if *depth < 0 {
		*depth = cfg.Bench.Depth
	}

	ctx := context.Background()
	services, cleanup, err := buildServices(ctx, cfg, *backendName, log)
	if err != nil {
		return err
	}
	defer cleanup()

	switch command {
	case "bench":
		backends := make([]bench.Backend, len(services))
		for i, svc := range services {
			backends[i] = svc
		}
		runner := bench.NewRunner(log, backends...)
		report := runner.RunScenario(ctx, bench.Scenario{
			Users:   *users,
			Depth:   *depth,
			Anchor:  *anchor,
			Product: *product,
		})
		fmt.Print(report.String())
		return nil

	case "reset":
		for _, svc := range services {
			if err := svc.Reset(ctx); err != nil {
				return err
			}
		}
		return nil

	case "generate":
		for _, svc := range services {
			res, err := svc.Generate(ctx, *users)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d users, %d follows, %d purchases in %s\n",
				svc.Name(), res.UsersCreated, res.Follows, res.Purchases, res.Elapsed)
		}
		return nil

	case "rank":
		for _, svc := range services {
			rows, err := svc.RankProductsByFollowerPurchases(ctx, *anchor, *depth, *filter)
			if err != nil {
				return err
			}
			fmt.Printf("%s:\n", svc.Name())
			for _, pc := range rows {
				fmt.Printf("  %-20s %d\n", pc.Product, pc.Count)
			}
		}
		return nil

	case "count":
		for _, svc := range services {
			n, err := svc.CountUsersAtDepthWhoBoughtProduct(ctx, *product, *depth)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d users\n", svc.Name(), n)
		}
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// buildServices opens the selected backends, runs schema migration and
// catalog seeding on each, and returns them behind the shared op layer.
func buildServices(ctx context.Context, cfg *config.Config, backendName string, log *zap.Logger) ([]*database.Service, func(), error) {
	var (
		services []*database.Service
		closers  []func()
	)
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	wantRelational := backendName == "both" || backendName == "relational"
	wantGraph := backendName == "both" || backendName == "graph"
	if !wantRelational && !wantGraph {
		return nil, cleanup, fmt.Errorf("unknown backend %q, want relational, graph, or both", backendName)
	}

	if wantRelational {
		client, err := relational.NewDuckDBClient(cfg.Relational.DSN)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = client.Close() })

		repo := relational.NewRepo(client.DB())
		if err := prepare(ctx, repo, cfg.Catalog); err != nil {
			return nil, cleanup, err
		}
		svc, err := database.NewService(repo, log)
		if err != nil {
			return nil, cleanup, err
		}
		services = append(services, svc)
	}

	if wantGraph {
		client, err := graph.NewClient(cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = client.Close(context.Background()) })

		if err := prepare(ctx, client, cfg.Catalog); err != nil {
			return nil, cleanup, err
		}
		svc, err := database.NewService(client, log)
		if err != nil {
			return nil, cleanup, err
		}
		services = append(services, svc)
	}

	return services, cleanup, nil
}

func prepare(ctx context.Context, store database.Store, catalog []string) error {
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", store.Backend(), err)
	}
	if err := store.SeedCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("seed %s catalog (%s): %w", store.Backend(), strings.Join(catalog, ", "), err)
	}
	return nil
}
