// Package pkg provides the libraries behind modelviz.
//
// # Overview
//
// modelviz reads the type metadata of a compiled module, keeps the types that
// make up its entity model, projects them into tables and graphs, and renders
// the graphs through Graphviz. The pkg directory is organized by stage:
//
//  1. [metadata] - module, type and method interfaces plus readers
//     (metadata dumps and compiled Go packages)
//  2. [entity] - entity filtering, extraction and type-name normalization
//  3. [schema] - tabular projection with column kinds
//  4. [digraph], [depgraph] - the directed graph and the entity and call
//     graph builders
//  5. [render] - DOT serialization and the renderers
//  6. [pipeline] - orchestration with caching and run history
//
// Supporting packages: [cache], [config], [errors], [observability], [io],
// [history], [export] and [buildinfo].
//
// # Architecture
//
//	compiled module / metadata dump
//	         ↓
//	    [metadata] reader
//	         ↓
//	    [entity] filter → extract → normalize
//	         ↓                       ↓
//	    [schema] tables         [depgraph] graphs
//	                                 ↓
//	                        [render/dot] → [render] → png/svg/jpg/pdf
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//
//	res, err := runner.Entities(ctx, pipeline.Options{Module: "shop.yaml"})
//	if err != nil {
//	    return err
//	}
//	_, err = runner.Render(ctx, res.Graph, pipeline.Options{Output: "entities.png"})
//
// [metadata]: github.com/matzehuels/modelviz/pkg/metadata
// [entity]: github.com/matzehuels/modelviz/pkg/entity
// [schema]: github.com/matzehuels/modelviz/pkg/schema
// [digraph]: github.com/matzehuels/modelviz/pkg/digraph
// [depgraph]: github.com/matzehuels/modelviz/pkg/depgraph
// [render]: github.com/matzehuels/modelviz/pkg/render
// [pipeline]: github.com/matzehuels/modelviz/pkg/pipeline
// [cache]: github.com/matzehuels/modelviz/pkg/cache
// [config]: github.com/matzehuels/modelviz/pkg/config
// [errors]: github.com/matzehuels/modelviz/pkg/errors
// [observability]: github.com/matzehuels/modelviz/pkg/observability
// [io]: github.com/matzehuels/modelviz/pkg/io
// [history]: github.com/matzehuels/modelviz/pkg/history
// [export]: github.com/matzehuels/modelviz/pkg/export
// [buildinfo]: github.com/matzehuels/modelviz/pkg/buildinfo
package pkg
