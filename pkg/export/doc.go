// Package export writes modelviz results into external stores.
//
//   - [sqlite] persists a projected DataSet: one SQLite table per entity,
//     plus a modelviz_columns catalog describing every column.
//   - [neo4j] loads any graph into Neo4j as :ModelvizNode vertices joined by
//     :LINKS_TO relationships, using batched UNWIND statements.
//
// [sqlite]: github.com/matzehuels/modelviz/pkg/export/sqlite
// [neo4j]: github.com/matzehuels/modelviz/pkg/export/neo4j
package export
