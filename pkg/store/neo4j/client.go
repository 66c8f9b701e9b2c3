package neo4j

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/graphlift/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// Runner executes one parameterized statement and returns all records.
type Runner interface {
	Run(ctx context.Context, mode neo4j.AccessMode, query string, params map[string]any) ([]*db.Record, error)
}

// Client wraps a Neo4j driver. Every call opens its own session and closes
// it before returning, on error paths too.
//
// Statements run as auto-commit transactions. The driver's managed
// transactions would retry transient failures; failures here surface once.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewClientParams configures the connection.
type NewClientParams struct {
	URI      string
	Username string
	Password string
	Database string
}

// NewClient connects to Neo4j and verifies connectivity.
func NewClient(ctx context.Context, params NewClientParams) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(params.URI, neo4j.BasicAuth(params.Username, params.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	database := params.Database
	if database == "" {
		database = "neo4j"
	}
	return &Client{driver: driver, database: database}, nil
}

func (c *Client) Run(ctx context.Context, mode neo4j.AccessMode, query string, params map[string]any) ([]*db.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, classify(err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return records, nil
}

// RunSingle returns the first record, or nil when the statement yields none.
func (c *Client) RunSingle(ctx context.Context, mode neo4j.AccessMode, query string, params map[string]any) (*db.Record, error) {
	return runSingle(ctx, c, mode, query, params)
}

func (c *Client) VerifyConnectivity(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func runSingle(ctx context.Context, r Runner, mode neo4j.AccessMode, query string, params map[string]any) (*db.Record, error) {
	records, err := r.Run(ctx, mode, query, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// DeclareConstraint creates a uniqueness constraint on label.property.
// An existing equivalent constraint counts as success.
func DeclareConstraint(ctx context.Context, r Runner, name, label, property string) error {
	query := fmt.Sprintf(
		"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		name, label, property,
	)
	return declare(ctx, r, query)
}

// DeclareIndex creates a range index on a node property, or on a
// relationship property when relationship is true.
func DeclareIndex(ctx context.Context, r Runner, name, label, property string, relationship bool) error {
	pattern := fmt.Sprintf("(n:%s)", label)
	if relationship {
		pattern = fmt.Sprintf("()-[n:%s]-()", label)
	}
	query := fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR %s ON (n.%s)", name, pattern, property)
	return declare(ctx, r, query)
}

func declare(ctx context.Context, r Runner, query string) error {
	_, err := r.Run(ctx, neo4j.AccessModeWrite, query, nil)
	if err != nil && !isAlreadyExists(err) {
		return err
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) {
		return strings.Contains(nerr.Code, "AlreadyExists")
	}
	return false
}

// classify marks connectivity failures so pipelines can tell them apart from
// statement errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}
