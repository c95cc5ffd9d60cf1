// Package config loads the application configuration from an optional YAML
// file with environment-variable overrides for connection settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RelationalConfig configures the DuckDB backend. An empty DSN means an
// in-memory database.
type RelationalConfig struct {
	DSN string `yaml:"dsn"`
}

// GraphConfig configures the Neo4j backend.
type GraphConfig struct {
	URI      string `yaml:"uri" validate:"required"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// BenchConfig parameterizes the scripted benchmark scenario.
type BenchConfig struct {
	Users   int    `yaml:"users" validate:"gt=0"`
	Depth   int    `yaml:"depth" validate:"gte=0"`
	Anchor  string `yaml:"anchor" validate:"required"`
	Product string `yaml:"product" validate:"required"`
}

// Config is the full application configuration.
type Config struct {
	Relational RelationalConfig `yaml:"relational"`
	Graph      GraphConfig      `yaml:"graph"`
	Catalog    []string         `yaml:"catalog" validate:"min=1,unique"`
	Bench      BenchConfig      `yaml:"bench"`
}

// Default returns the built-in configuration: an in-memory relational store,
// a local Neo4j, and the fixed five-product catalog.
func Default() *Config {
	return &Config{
		Relational: RelationalConfig{DSN: ""},
		Graph: GraphConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Password: "",
			Database: "neo4j",
		},
		Catalog: []string{"Laptop", "Phone", "Headphones", "Monitor", "Keyboard"},
		Bench: BenchConfig{
			Users:   1000,
			Depth:   3,
			Anchor:  "User1",
			Product: "Laptop",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Relational.DSN = getEnv("SOCIALBENCH_DUCKDB_DSN", c.Relational.DSN)
	c.Graph.URI = getEnv("SOCIALBENCH_NEO4J_URI", c.Graph.URI)
	c.Graph.Username = getEnv("SOCIALBENCH_NEO4J_USER", c.Graph.Username)
	c.Graph.Password = getEnv("SOCIALBENCH_NEO4J_PASSWORD", c.Graph.Password)
	c.Graph.Database = getEnv("SOCIALBENCH_NEO4J_DATABASE", c.Graph.Database)
	c.Bench.Users = getEnvInt("SOCIALBENCH_USERS", c.Bench.Users)
	c.Bench.Depth = getEnvInt("SOCIALBENCH_DEPTH", c.Bench.Depth)
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
