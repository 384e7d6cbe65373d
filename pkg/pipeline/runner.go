package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelviz/pkg/cache"
	"github.com/matzehuels/modelviz/pkg/config"
	"github.com/matzehuels/modelviz/pkg/depgraph"
	"github.com/matzehuels/modelviz/pkg/digraph"
	"github.com/matzehuels/modelviz/pkg/entity"
	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	"github.com/matzehuels/modelviz/pkg/history"
	pkgio "github.com/matzehuels/modelviz/pkg/io"
	"github.com/matzehuels/modelviz/pkg/metadata"
	"github.com/matzehuels/modelviz/pkg/metadata/readers"
	"github.com/matzehuels/modelviz/pkg/observability"
	"github.com/matzehuels/modelviz/pkg/render"
	"github.com/matzehuels/modelviz/pkg/render/dot"
	"github.com/matzehuels/modelviz/pkg/schema"
)

// Runner encapsulates pipeline execution with caching and run history.
// Both CLI and server use it to avoid duplicating that logic.
//
// The Runner is stateless apart from its cache, history store and logger.
// Multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	History history.Store
	Logger  *log.Logger
	TTL     time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		History: history.NullStore{},
		Logger:  logger,
		TTL:     DefaultTTL,
	}
}

// Load opens the module named by opts.Module.
func (r *Runner) Load(ctx context.Context, opts Options) (metadata.Module, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	rs := opts.Readers
	if opts.Reader != "" {
		forced, _ := readers.Find(opts.Reader)
		rs = []metadata.Reader{forced}
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Module)
	start := time.Now()
	m, err := metadata.Open(ctx, opts.Module, rs...)
	typeCount := 0
	if err == nil {
		typeCount = len(m.Types())
	}
	hooks.OnLoadComplete(ctx, opts.Module, typeCount, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("loaded module", "name", m.Name(), "types", typeCount)
	return m, nil
}

// =============================================================================
// Entities
// =============================================================================

// cachedEntities is the cache payload of an entity extraction.
type cachedEntities struct {
	Types      int                `json:"types"`
	Entities   []cachedEntity     `json:"entities"`
	Collisions []entity.Collision `json:"collisions,omitempty"`
}

type cachedEntity struct {
	Name    string          `json:"name"`
	Members []entity.Member `json:"members"`
}

// Entities extracts entity types, projects them to tables and builds the
// entity graph.
func (r *Runner) Entities(ctx context.Context, opts Options) (res *EntitiesResult, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	run := history.NewRun(history.KindEntities, opts.Module)
	defer func() { r.record(ctx, run, res, err) }()

	key := r.moduleKey(opts, func(hash string) string {
		return r.Keyer.EntitiesKey(hash, opts.EntitiesKeyOpts())
	})

	var payload cachedEntities
	res = &EntitiesResult{Module: opts.Module}
	if key != "" && !opts.Refresh && r.get(ctx, "entities", key, &payload) {
		res.CacheHit = true
	} else {
		start := time.Now()
		m, err := r.Load(ctx, opts)
		if err != nil {
			return nil, err
		}
		defer m.Close()

		em := entity.Extract(m.Types(), opts.Filter())
		res.Stats.LoadTime = time.Since(start)
		payload = toPayload(len(m.Types()), em)
		if key != "" {
			r.set(ctx, "entities", key, payload)
		}
	}

	start := time.Now()
	em := fromPayload(payload)
	res.Entities = em
	res.Collisions = payload.Collisions
	res.DataSet = schema.Project(em)
	g, err := depgraph.Entities(em)
	if err != nil {
		return nil, err
	}
	res.Graph = g
	res.Stats = Stats{
		Types:      payload.Types,
		Entities:   em.Len(),
		Members:    em.MemberCount(),
		Opaque:     res.DataSet.OpaqueCount(),
		Collisions: len(payload.Collisions),
		Vertices:   g.VertexCount(),
		Edges:      g.EdgeCount(),
		LoadTime:   res.Stats.LoadTime,
		BuildTime:  time.Since(start),
	}
	observability.Pipeline().OnExtractComplete(ctx, res.Stats.Entities, res.Stats.Members)

	for _, c := range res.Collisions {
		opts.Logger.Warn("entity name collision", "name", c.Name, "replaced", c.Replaced, "by", c.By)
	}
	opts.Logger.Info("extracted entities",
		"entities", res.Stats.Entities,
		"members", res.Stats.Members,
		"opaque", res.Stats.Opaque,
		"cached", res.CacheHit)
	return res, nil
}

func toPayload(types int, em *entity.Map) cachedEntities {
	p := cachedEntities{Types: types, Collisions: em.Collisions()}
	for _, name := range em.Names() {
		members, _ := em.Members(name)
		p.Entities = append(p.Entities, cachedEntity{Name: name, Members: members})
	}
	return p
}

func fromPayload(p cachedEntities) *entity.Map {
	em := entity.NewMap()
	for _, e := range p.Entities {
		em.Set(e.Name, e.Members)
	}
	return em
}

// =============================================================================
// Calls
// =============================================================================

type cachedCalls struct {
	Entry string         `json:"entry"`
	Graph []byte         `json:"graph"`
	Walk  depgraph.Stats `json:"walk"`
}

// Calls walks the call graph from opts.Entry, or from the module's declared
// entry point when Entry is empty. A cancelled walk returns ctx's error and
// no result.
func (r *Runner) Calls(ctx context.Context, opts Options) (res *CallsResult, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCalls(); err != nil {
		return nil, err
	}

	run := history.NewRun(history.KindCalls, opts.Module)
	run.Entry = opts.Entry
	defer func() { r.record(ctx, run, res, err) }()

	key := r.moduleKey(opts, func(hash string) string {
		return r.Keyer.CallsKey(hash, opts.CallsKeyOpts())
	})

	// OnCall needs every call replayed, so it bypasses the cache.
	useCache := key != "" && opts.OnCall == nil
	var payload cachedCalls
	if useCache && !opts.Refresh && r.get(ctx, "calls", key, &payload) {
		g, err := pkgio.UnmarshalJSON(payload.Graph)
		if err == nil {
			res = &CallsResult{Module: opts.Module, Entry: payload.Entry, Graph: g, Walk: payload.Walk, CacheHit: true}
			res.Stats = Stats{Vertices: g.VertexCount(), Edges: g.EdgeCount()}
			opts.Logger.Info("walked call graph", "entry", res.Entry, "methods", res.Walk.Methods, "calls", res.Walk.Calls, "cached", true)
			return res, nil
		}
	}

	m, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	entry, err := depgraph.EntryPoint(m, opts.Entry)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnWalkStart(ctx, entry.FullName)
	start := time.Now()
	g, walk, err := depgraph.Calls(ctx, m, entry, depgraph.Options{
		MaxDepth: opts.MaxDepth,
		MaxNodes: opts.MaxNodes,
		OnCall:   opts.OnCall,
		Logger:   opts.Logger,
	})
	hooks.OnWalkComplete(ctx, entry.FullName, walk.Methods, walk.Calls, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	res = &CallsResult{
		Module: opts.Module,
		Entry:  entry.FullName,
		Graph:  g,
		Walk:   walk,
		Stats: Stats{
			Types:     len(m.Types()),
			Vertices:  g.VertexCount(),
			Edges:     g.EdgeCount(),
			BuildTime: time.Since(start),
		},
	}
	if walk.Truncated > 0 {
		opts.Logger.Warn("call graph truncated", "skipped", walk.Truncated, "max_depth", opts.MaxDepth, "max_nodes", opts.MaxNodes)
	}
	if useCache {
		if data, err := pkgio.MarshalJSON(g); err == nil {
			r.set(ctx, "calls", key, cachedCalls{Entry: entry.FullName, Graph: data, Walk: walk})
		}
	}
	opts.Logger.Info("walked call graph",
		"entry", res.Entry,
		"methods", walk.Methods,
		"calls", walk.Calls,
		"unresolved", walk.Unresolved)
	return res, nil
}

// =============================================================================
// Render
// =============================================================================

// Render serializes g and renders it to opts.Output.
func (r *Runner) Render(ctx context.Context, g *digraph.Graph, opts Options) (*RenderResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	doc := dot.FromGraph(g, dot.Options{Detailed: opts.Detailed, RankDir: opts.RankDir})
	return r.RenderDocument(ctx, doc, opts)
}

// RenderDocument renders a prepared document to opts.Output. Rendered images
// are cached by document hash; a hit writes the cached bytes without
// invoking the renderer.
func (r *Runner) RenderDocument(ctx context.Context, doc dot.Document, opts Options) (res *RenderResult, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if doc.Empty() {
		return nil, mverrors.New(mverrors.ErrCodeInvalidInput, "empty graph document")
	}
	format := opts.ImageFormat()
	output := opts.Output
	if output == "" {
		output = "graph." + format
	}

	run := history.NewRun(history.KindRender, opts.Module)
	run.Format, run.Output = format, output
	defer func() { r.record(ctx, run, res, err) }()

	key := r.Keyer.ArtifactKey(cache.Hash(doc.Bytes()), opts.ArtifactKeyOpts())
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return nil, mverrors.Wrap(mverrors.ErrCodeInvalidPath, err, "write %s", output)
			}
			if err := writeArtifact(opts.ArtifactPath, doc); err != nil {
				return nil, err
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			return &RenderResult{
				Result:   render.Result{Output: output, Artifact: opts.ArtifactPath, Format: format, Renderer: "cache"},
				CacheHit: true,
			}, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rd := r.renderer(opts, format)
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, rd.Name(), format)
	out, err := rd.Render(ctx, doc, output)
	hooks.OnRenderComplete(ctx, rd.Name(), format, out.Duration, err)
	if err != nil {
		return nil, err
	}
	if out.Artifact == "" && opts.ArtifactPath != "" {
		if err := writeArtifact(opts.ArtifactPath, doc); err != nil {
			return nil, err
		}
		out.Artifact = opts.ArtifactPath
	}

	if data, err := os.ReadFile(out.Output); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	opts.Logger.Info("rendered graph", "output", out.Output, "format", out.Format, "renderer", out.Renderer, "duration", out.Duration)
	return &RenderResult{Result: out}, nil
}

// writeArtifact writes doc to a caller-supplied artifact path. It covers
// cache hits and renderers that never write one.
func writeArtifact(path string, doc dot.Document) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return mverrors.Wrap(mverrors.ErrCodeInvalidPath, err, "create artifact directory")
	}
	if err := os.WriteFile(path, doc.Bytes(), 0o644); err != nil {
		return mverrors.Wrap(mverrors.ErrCodeInvalidPath, err, "write artifact %s", path)
	}
	return nil
}

// renderer builds the renderer selected by opts.
func (r *Runner) renderer(opts Options, format string) render.Renderer {
	if opts.Renderer == config.RendererGraphviz {
		return &render.GraphvizRenderer{Format: format}
	}
	return &render.ExecRenderer{
		Binary:       opts.Binary,
		Format:       format,
		ArtifactDir:  opts.ArtifactDir,
		ArtifactPath: opts.ArtifactPath,
		KeepArtifact: opts.KeepArtifact,
		Logger:       opts.Logger,
	}
}

// =============================================================================
// Helpers
// =============================================================================

// moduleKey hashes the module content and builds a cache key from it. It
// returns "" when the module cannot be hashed; Load reports the real error.
func (r *Runner) moduleKey(opts Options, build func(hash string) string) string {
	hash, err := cache.HashPath(opts.Module)
	if err != nil {
		return ""
	}
	return build(hash)
}

func (r *Runner) get(ctx context.Context, keyType, key string, v any) bool {
	if err := cache.GetJSON(ctx, r.Cache, key, v); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) set(ctx context.Context, keyType, key string, v any) {
	if err := cache.SetJSON(ctx, r.Cache, key, v, r.TTL); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, 0)
}

// record finishes run from the stage result and saves it. History failures
// are logged, never returned.
func (r *Runner) record(ctx context.Context, run *history.Run, res any, err error) {
	if r.History == nil {
		return
	}
	switch v := res.(type) {
	case *EntitiesResult:
		if v != nil {
			run.Entities, run.Members, run.CacheHit = v.Stats.Entities, v.Stats.Members, v.CacheHit
		}
	case *CallsResult:
		if v != nil {
			run.Entry, run.Methods, run.Calls, run.CacheHit = v.Entry, v.Walk.Methods, v.Walk.Calls, v.CacheHit
		}
	case *RenderResult:
		if v != nil {
			run.Output, run.CacheHit = v.Output, v.CacheHit
		}
	}
	run.Finish(err)
	if err := r.History.Save(context.WithoutCancel(ctx), run); err != nil {
		r.Logger.Warn("could not record run", "error", err)
	}
}

// Close releases the cache and history store.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.History != nil {
		errs = append(errs, r.History.Close())
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
