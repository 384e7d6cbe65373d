// Package neo4j loads modelviz graphs into a Neo4j database.
//
// Vertices become :ModelvizNode nodes keyed by (graph, id); edges become
// :LINKS_TO relationships. Loading a graph ID that already exists replaces
// it. Statements are sent in UNWIND batches of [Options.BatchSize] rows.
package neo4j

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matzehuels/modelviz/pkg/digraph"
	"github.com/matzehuels/modelviz/pkg/errors"
)

// DefaultBatchSize is the number of rows per UNWIND statement.
const DefaultBatchSize = 500

// Options configures an Exporter.
type Options struct {
	URI       string
	User      string
	Password  string
	Database  string // empty for the server default
	BatchSize int
	Logger    *log.Logger
}

// statement is a single Cypher query with parameters.
type statement struct {
	cypher string
	params map[string]any
}

// runner executes statements. The driver-backed implementation is the only
// production runner; tests substitute a recorder.
type runner interface {
	run(ctx context.Context, st statement) error
}

type driverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

func (r driverRunner) run(ctx context.Context, st statement) error {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if r.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(r.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, r.driver, st.cypher, st.params, neo4j.EagerResultTransformer, opts...)
	return err
}

// Exporter writes graphs to Neo4j.
type Exporter struct {
	driver    neo4j.DriverWithContext
	runner    runner
	batchSize int
	logger    *log.Logger
}

// Connect opens a driver and verifies connectivity.
func Connect(ctx context.Context, opts Options) (*Exporter, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "neo4j uri is required")
	}
	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.User, opts.Password, ""))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "create neo4j driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to neo4j at %s", opts.URI)
	}
	e := newExporter(driverRunner{driver: driver, database: opts.Database}, opts)
	e.driver = driver
	return e, nil
}

func newExporter(r runner, opts Options) *Exporter {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Exporter{runner: r, batchSize: batch, logger: logger}
}

// Close releases the driver.
func (e *Exporter) Close(ctx context.Context) error {
	if e.driver == nil {
		return nil
	}
	return e.driver.Close(ctx)
}

// Export replaces the stored graph named graphID with g.
func (e *Exporter) Export(ctx context.Context, g *digraph.Graph, graphID string) error {
	if graphID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "graph id is required")
	}
	stmts := append(indexStatements(), cleanStatement(graphID))
	stmts = append(stmts, nodeStatements(g, graphID, e.batchSize)...)
	stmts = append(stmts, edgeStatements(g, graphID, e.batchSize)...)

	for i, st := range stmts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runner.run(ctx, st); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "neo4j statement %d of %d", i+1, len(stmts))
		}
	}
	e.logger.Info("exported graph to neo4j", "graph", graphID, "nodes", g.VertexCount(), "edges", g.EdgeCount(), "statements", len(stmts))
	return nil
}

// Clean removes the stored graph named graphID.
func (e *Exporter) Clean(ctx context.Context, graphID string) error {
	return e.runner.run(ctx, cleanStatement(graphID))
}

func indexStatements() []statement {
	return []statement{
		{cypher: "CREATE INDEX modelviz_node_id IF NOT EXISTS FOR (n:ModelvizNode) ON (n.graph, n.id)"},
		{cypher: "CREATE INDEX modelviz_node_kind IF NOT EXISTS FOR (n:ModelvizNode) ON (n.kind)"},
	}
}

func cleanStatement(graphID string) statement {
	return statement{
		cypher: "MATCH (n:ModelvizNode {graph: $graph}) DETACH DELETE n",
		params: map[string]any{"graph": graphID},
	}
}

func nodeStatements(g *digraph.Graph, graphID string, size int) []statement {
	const cypher = `UNWIND $batch AS row
MERGE (n:ModelvizNode {graph: $graph, id: row.id})
SET n.kind = row.kind, n += row.props`

	var rows []map[string]any
	for _, v := range g.Vertices() {
		rows = append(rows, map[string]any{
			"id":    v.ID,
			"kind":  v.Kind.String(),
			"props": props(v.Meta),
		})
	}
	return batches(cypher, graphID, rows, size)
}

func edgeStatements(g *digraph.Graph, graphID string, size int) []statement {
	const cypher = `UNWIND $batch AS row
MATCH (a:ModelvizNode {graph: $graph, id: row.from})
MATCH (b:ModelvizNode {graph: $graph, id: row.to})
CREATE (a)-[r:LINKS_TO]->(b)
SET r += row.props`

	var rows []map[string]any
	for _, e := range g.Edges() {
		rows = append(rows, map[string]any{
			"from":  e.From,
			"to":    e.To,
			"props": props(e.Meta),
		})
	}
	return batches(cypher, graphID, rows, size)
}

func batches(cypher, graphID string, rows []map[string]any, size int) []statement {
	var out []statement
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, statement{
			cypher: cypher,
			params: map[string]any{"graph": graphID, "batch": rows[start:end]},
		})
	}
	return out
}

// props converts metadata into Neo4j property values. Neo4j properties
// must be primitives or homogeneous lists, so other values are stringified.
func props(meta digraph.Metadata) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		switch v := v.(type) {
		case string, bool, int, int64, float64, []string:
			out[k] = v
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
