package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelviz/pkg/buildinfo"
	"github.com/matzehuels/modelviz/pkg/cache"
	"github.com/matzehuels/modelviz/pkg/config"
	"github.com/matzehuels/modelviz/pkg/history"
	"github.com/matzehuels/modelviz/pkg/observability"
	"github.com/matzehuels/modelviz/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "modelviz"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	loadedFrom string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "modelviz maps the data model and call graph of compiled modules",
		Long:         `modelviz reads a compiled module's type metadata, extracts its entity model as tables and a graph, walks the cross-module call graph from an entry method, and renders the results through Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.FileName+")")

	root.AddCommand(c.entitiesCommand())
	root.AddCommand(c.callsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file and registers the log hooks.
func (c *CLI) loadConfig() error {
	cfg, path, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config, c.loadedFrom = cfg, path
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	observability.SetPipelineHooks(observability.NewLogPipelineHooks(c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewDefaultKeyer()
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, c.Config.Cache.Prefix)
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	if c.Config.Cache.TTL > 0 {
		r.TTL = c.Config.Cache.TTL
	}
	r.History = c.newHistory(ctx)
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: c.Config.Cache.RedisURL, Prefix: appName + ":"})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// newHistory opens the MongoDB history when configured and the local file
// history otherwise. History is best effort; failures disable it.
func (c *CLI) newHistory(ctx context.Context) history.Store {
	if uri := c.Config.History.URI; uri != "" {
		s, err := history.NewMongoStore(ctx, uri, c.Config.History.Database)
		if err == nil {
			return s
		}
		c.Logger.Warn("mongo history unavailable, using local history", "error", err)
	}
	s, err := history.NewFileStore("")
	if err != nil {
		c.Logger.Debug("run history disabled", "error", err)
		return history.NullStore{}
	}
	return s
}

// =============================================================================
// Paths & Options
// =============================================================================

// cacheDir returns the configured cache directory or the user cache default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// baseOptions returns pipeline options from the loaded configuration.
func (c *CLI) baseOptions() pipeline.Options {
	opts := pipeline.FromConfig(c.Config)
	opts.Logger = c.Logger
	return opts
}
