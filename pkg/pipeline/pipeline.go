// Package pipeline runs the modelviz analysis end to end.
//
// This package implements the load → analyze → render pipeline shared by the
// CLI and the HTTP server. By centralizing it here, both entry points apply
// the same defaults, caching and instrumentation.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: open a compiled module through a [metadata.Reader]
//  2. Analyze: either extract entities (entity map, tabular projection and
//     entity graph) or walk the call graph from an entry method
//  3. Render: serialize a graph to DOT and hand it to a renderer
//
// Each stage can be run on its own. Analysis results and rendered images are
// cached by content hash of the module, so re-running on an unchanged module
// skips loading entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Entities(ctx, pipeline.Options{Module: "./app.json"})
//	if err != nil {
//	    return err
//	}
//	out, err := runner.Render(ctx, res.Graph, pipeline.Options{Output: "models.png"})
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelviz/pkg/cache"
	"github.com/matzehuels/modelviz/pkg/config"
	"github.com/matzehuels/modelviz/pkg/depgraph"
	"github.com/matzehuels/modelviz/pkg/digraph"
	"github.com/matzehuels/modelviz/pkg/entity"
	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	"github.com/matzehuels/modelviz/pkg/metadata"
	"github.com/matzehuels/modelviz/pkg/metadata/readers"
	"github.com/matzehuels/modelviz/pkg/render"
	"github.com/matzehuels/modelviz/pkg/schema"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is the image format when neither a format nor an output
	// extension names one.
	DefaultFormat = render.FormatPNG

	// DefaultRenderer runs the external Graphviz binary.
	DefaultRenderer = config.RendererExec

	// DefaultRankDir lays graphs out left to right.
	DefaultRankDir = "LR"

	// DefaultTTL is how long analysis results and images stay cached.
	DefaultTTL = 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Module string `json:"module"`
	Reader string `json:"reader,omitempty"` // force a reader type ("dump", "go")

	// Entity options
	Include string   `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`

	// Call-graph options
	Entry    string `json:"entry,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
	MaxNodes int    `json:"max_nodes,omitempty"`

	// Render options
	Output       string `json:"output,omitempty"`
	Format       string `json:"format,omitempty"`
	Renderer     string `json:"renderer,omitempty"`
	Binary       string `json:"binary,omitempty"`
	ArtifactDir  string `json:"artifact_dir,omitempty"`
	ArtifactPath string `json:"artifact_path,omitempty"`
	KeepArtifact bool   `json:"keep_artifact,omitempty"`
	RankDir      string `json:"rankdir,omitempty"`
	Detailed     bool   `json:"detailed,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger         `json:"-"`
	Readers []metadata.Reader   `json:"-"`
	OnCall  func(depgraph.Call) `json:"-"`
}

// FromConfig builds Options from a loaded configuration.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Include:     cfg.Filter.Include,
		Exclude:     slices.Clone(cfg.Filter.Exclude),
		MaxDepth:    cfg.Calls.MaxDepth,
		MaxNodes:    cfg.Calls.MaxNodes,
		Format:      cfg.Render.Format,
		Renderer:    cfg.Render.Renderer,
		Binary:      cfg.Render.Binary,
		ArtifactDir: cfg.Render.ArtifactDir,
		RankDir:     cfg.Render.RankDir,
		Detailed:    cfg.Render.Detailed,
	}
}

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Include == "" && o.Exclude == nil {
		f := entity.DefaultFilter()
		o.Include, o.Exclude = f.Include, f.Exclude
	}
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.Binary == "" {
		o.Binary = render.DefaultBinary
	}
	if o.RankDir == "" {
		o.RankDir = DefaultRankDir
	}
	if o.Format == "" && o.Output == "" {
		o.Format = DefaultFormat
	}
	if len(o.Readers) == 0 {
		o.Readers = readers.All
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLoad checks the fields every stage that opens a module needs.
func (o *Options) ValidateForLoad() error {
	o.SetDefaults()
	if o.Module == "" {
		return mverrors.New(mverrors.ErrCodeInvalidInput, "module path is required")
	}
	if o.Reader != "" {
		if _, ok := readers.Find(o.Reader); !ok {
			return mverrors.New(mverrors.ErrCodeInvalidInput, "unknown reader %q", o.Reader)
		}
	}
	return nil
}

// ValidateForCalls also checks the call-graph fields.
func (o *Options) ValidateForCalls() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if o.MaxDepth < 0 || o.MaxNodes < 0 {
		return mverrors.New(mverrors.ErrCodeInvalidInput, "max depth and max nodes must not be negative")
	}
	if o.Entry != "" {
		return mverrors.ValidateMethodName(o.Entry)
	}
	return nil
}

// ValidateForRender checks the render fields.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	if err := render.ValidateFormat(o.ImageFormat()); err != nil {
		return err
	}
	if !slices.Contains([]string{config.RendererExec, config.RendererGraphviz}, o.Renderer) {
		return mverrors.New(mverrors.ErrCodeInvalidInput, "unknown renderer %q (want exec or graphviz)", o.Renderer)
	}
	return nil
}

// Filter returns the entity filter.
func (o *Options) Filter() entity.Filter {
	return entity.Filter{Include: o.Include, Exclude: o.Exclude}
}

// ImageFormat resolves the output format from Format and Output.
func (o *Options) ImageFormat() string {
	return render.FormatFor(o.Format, o.Output)
}

// EntitiesKeyOpts returns cache key options for entity extraction.
func (o *Options) EntitiesKeyOpts() cache.EntitiesKeyOpts {
	return cache.EntitiesKeyOpts{Reader: o.Reader, Include: o.Include, Exclude: o.Exclude}
}

// CallsKeyOpts returns cache key options for call-graph walks.
func (o *Options) CallsKeyOpts() cache.CallsKeyOpts {
	return cache.CallsKeyOpts{Reader: o.Reader, Entry: o.Entry, MaxDepth: o.MaxDepth, MaxNodes: o.MaxNodes}
}

// ArtifactKeyOpts returns cache key options for rendered images.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   o.ImageFormat(),
		Renderer: o.Renderer,
		Detailed: o.Detailed,
		RankDir:  o.RankDir,
	}
}

// =============================================================================
// Results
// =============================================================================

// EntitiesResult is the output of [Runner.Entities].
type EntitiesResult struct {
	Module     string
	Entities   *entity.Map
	Collisions []entity.Collision
	DataSet    *schema.DataSet
	Graph      *digraph.Graph
	Stats      Stats
	CacheHit   bool
}

// CallsResult is the output of [Runner.Calls].
type CallsResult struct {
	Module   string
	Entry    string
	Graph    *digraph.Graph
	Walk     depgraph.Stats
	Stats    Stats
	CacheHit bool
}

// RenderResult is the output of [Runner.Render].
type RenderResult struct {
	render.Result
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Types      int
	Entities   int
	Members    int
	Opaque     int
	Collisions int
	Vertices   int
	Edges      int
	LoadTime   time.Duration
	BuildTime  time.Duration
}
