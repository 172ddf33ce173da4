package arangodb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
)

// Client is the search+lifecycle subset of ArangoDB operations the code
// lattice reader depends on. The full graph-traversal/ingest surface this
// driver supports belongs to a code-graph indexer this service doesn't run.
type Client interface {
	EnsureDatabase(ctx context.Context) error
	SearchSymbols(ctx context.Context, opts SearchOptions) ([]SearchResult, int, error) // returns results, total count, error
	Close() error
}

type Config struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("arangodb username is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

type client struct {
	conn         connection.Connection
	arangoClient arangodb.Client
	db           arangodb.Database
	cfg          Config
}

func New(ctx context.Context, cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL}) // round robins from the urls. we just have one for now
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))

	auth := connection.NewBasicAuth(cfg.Username, cfg.Password)
	if err := conn.SetAuthentication(auth); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	arangoClient := arangodb.NewClient(conn)

	c := &client{
		conn:         conn,
		arangoClient: arangoClient,
		cfg:          cfg,
	}

	return c, nil
}

func (c *client) Close() error {
	return nil
}

func (c *client) EnsureDatabase(ctx context.Context) error {
	start := time.Now()

	exists, err := c.arangoClient.DatabaseExists(ctx, c.cfg.Database)
	if err != nil {
		return fmt.Errorf("check database exists: %w", err)
	}

	if !exists {
		_, err = c.arangoClient.CreateDatabase(ctx, c.cfg.Database, nil)
		if err != nil {
			return fmt.Errorf("create database: %w", err)
		}
		slog.InfoContext(ctx, "arangodb database created",
			"database", c.cfg.Database,
			"duration_ms", time.Since(start).Milliseconds())
	}

	db, err := c.arangoClient.GetDatabase(ctx, c.cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	c.db = db

	return nil
}

// SearchSymbols finds symbols by name pattern with optional filters.
// Returns matching symbols, total count, and error.
func (c *client) SearchSymbols(ctx context.Context, opts SearchOptions) ([]SearchResult, int, error) {
	if c.db == nil {
		return nil, 0, fmt.Errorf("database not initialized")
	}

	start := time.Now()

	// Convert glob pattern to AQL LIKE pattern: * -> %
	pattern := globToLike(opts.Name)

	// Build dynamic filter clauses
	var filters []string
	bindVars := map[string]any{
		"pattern": pattern,
	}

	// Always filter by name pattern
	filters = append(filters, "LIKE(doc.name, @pattern, true)")

	// Handle kind filter - "method" is stored as kind="function" with is_method=true
	if opts.Kind != "" {
		switch opts.Kind {
		case "method":
			filters = append(filters, "(doc.kind == 'function' AND doc.is_method == true)")
		case "function":
			filters = append(filters, "(doc.kind == 'function' AND (doc.is_method == null OR doc.is_method == false))")
		default:
			filters = append(filters, "doc.kind == @kind")
			bindVars["kind"] = opts.Kind
		}
	}
	if opts.File != "" {
		// Use suffix matching to handle relative vs absolute paths
		if strings.HasPrefix(opts.File, "/") {
			// Absolute path - exact match
			filters = append(filters, "doc.filepath == @file")
			bindVars["file"] = opts.File
		} else {
			// Relative path - match suffix
			filters = append(filters, "(doc.filepath == @file OR doc.filepath LIKE @filePattern)")
			bindVars["file"] = opts.File
			bindVars["filePattern"] = "%" + opts.File
		}
	}
	if opts.Namespace != "" {
		filters = append(filters, "doc.namespace == @namespace")
		bindVars["namespace"] = opts.Namespace
	}

	filterClause := strings.Join(filters, " AND ")

	// Query with limit, but also get total count
	// Note: is_method=true means it's a method, so we return "method" as kind for display
	query := fmt.Sprintf(`
		LET all_results = (
			FOR doc IN UNION(
				(FOR f IN functions RETURN f),
				(FOR t IN types RETURN t),
				(FOR m IN members RETURN m)
			)
			FILTER %s
			RETURN doc
		)
		LET total = LENGTH(all_results)
		LET limited = (
			FOR doc IN all_results
			SORT doc.filepath, doc.pos
			LIMIT 30
			RETURN {
				qname: doc.qname,
				name: doc.name,
				kind: doc.is_method ? "method" : doc.kind,
				signature: doc.signature,
				filepath: doc.filepath,
				pos: doc.pos
			}
		)
		RETURN { results: limited, total: total }
	`, filterClause)

	cursor, err := c.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("execute query: %w", err)
	}
	defer cursor.Close()

	var response struct {
		Results []struct {
			QName     string `json:"qname"`
			Name      string `json:"name"`
			Kind      string `json:"kind"`
			Signature string `json:"signature"`
			Filepath  string `json:"filepath"`
			Pos       int    `json:"pos"`
		} `json:"results"`
		Total int `json:"total"`
	}

	if cursor.HasMore() {
		_, err := cursor.ReadDocument(ctx, &response)
		if err != nil {
			return nil, 0, fmt.Errorf("read document: %w", err)
		}
	}

	results := make([]SearchResult, len(response.Results))
	for i, doc := range response.Results {
		results[i] = SearchResult{
			QName:     doc.QName,
			Name:      doc.Name,
			Kind:      doc.Kind,
			Signature: doc.Signature,
			Filepath:  doc.Filepath,
			Pos:       doc.Pos,
		}
	}

	slog.DebugContext(ctx, "arangodb symbol search completed",
		"pattern", opts.Name,
		"kind", opts.Kind,
		"results", len(results),
		"total", response.Total,
		"duration_ms", time.Since(start).Milliseconds())

	return results, response.Total, nil
}

// globToLike converts glob patterns to SQL LIKE patterns.
// * -> % (match any characters)
func globToLike(pattern string) string {
	return strings.ReplaceAll(pattern, "*", "%")
}
