// Package config loads modelviz.toml.
//
// Lookup order, first match wins:
//
//  1. the path given with --config (must exist)
//  2. ./modelviz.toml
//  3. $XDG_CONFIG_HOME/modelviz/config.toml (or the OS equivalent)
//
// A missing file is not an error: [Default] applies. Values present in the
// file replace the defaults field by field; command-line flags override both.
//
//	[filter]
//	include = "Models"
//	exclude = ["Models.Repositories.Interfaces", "Context"]
//
//	[render]
//	binary = "dot"
//	format = "svg"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	mverrors "github.com/matzehuels/modelviz/pkg/errors"
)

// FileName is the project-local config file name.
const FileName = "modelviz.toml"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Renderers.
const (
	RendererExec     = "exec"
	RendererGraphviz = "graphviz"
)

// Config is the full modelviz configuration.
type Config struct {
	Filter  FilterConfig  `toml:"filter"`
	Calls   CallsConfig   `toml:"calls"`
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
	Neo4j   Neo4jConfig   `toml:"neo4j"`
	Server  ServerConfig  `toml:"server"`
}

// FilterConfig selects entity types.
type FilterConfig struct {
	Include string   `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// CallsConfig bounds call-graph walks. Zero means unbounded.
type CallsConfig struct {
	MaxDepth int `toml:"max_depth"`
	MaxNodes int `toml:"max_nodes"`
}

// RenderConfig configures image rendering.
type RenderConfig struct {
	Renderer    string `toml:"renderer"`
	Binary      string `toml:"binary"`
	Format      string `toml:"format"`
	ArtifactDir string `toml:"artifact_dir"`
	RankDir     string `toml:"rankdir"`
	Detailed    bool   `toml:"detailed"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	TTL      time.Duration `toml:"ttl"`
	RedisURL string        `toml:"redis_url"`
	Prefix   string        `toml:"prefix"`
}

// HistoryConfig points at the MongoDB run history. An empty URI disables it.
type HistoryConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Neo4jConfig is the target of --neo4j exports.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// ServerConfig configures `modelviz serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Filter: FilterConfig{
			Include: "Models",
			Exclude: []string{
				"Models.Repositories.Interfaces",
				"Models.Repositories.Implementations",
				"Context",
			},
		},
		Render: RenderConfig{
			Renderer: RendererExec,
			Binary:   "dot",
			Format:   "png",
			RankDir:  "LR",
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     24 * time.Hour,
		},
		History: HistoryConfig{Database: "modelviz"},
		Neo4j:   Neo4jConfig{URI: "neo4j://localhost:7687", User: "neo4j", Database: "neo4j"},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// Paths returns the candidate config locations in lookup order.
func Paths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "modelviz", "config.toml"))
	}
	return paths
}

// Load reads the configuration. With an explicit path the file must exist;
// otherwise Paths are tried and defaults apply when none exists. It returns
// the path actually read, or "" when running on defaults.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	candidates := Paths()
	if path != "" {
		candidates = []string{path}
	}

	for _, p := range candidates {
		var fileCfg Config
		_, err := toml.DecodeFile(p, &fileCfg)
		if errors.Is(err, fs.ErrNotExist) && path == "" {
			continue
		}
		if err != nil {
			return nil, "", mverrors.Wrap(mverrors.ErrCodeInvalidConfig, err, "read %s", p)
		}
		cfg.Merge(&fileCfg)
		if err := cfg.Validate(); err != nil {
			return nil, "", err
		}
		return cfg, p, nil
	}
	return cfg, "", nil
}

// Merge copies every non-zero field of other into c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	mergeString(&c.Filter.Include, other.Filter.Include)
	if len(other.Filter.Exclude) > 0 {
		c.Filter.Exclude = other.Filter.Exclude
	}

	mergeInt(&c.Calls.MaxDepth, other.Calls.MaxDepth)
	mergeInt(&c.Calls.MaxNodes, other.Calls.MaxNodes)

	mergeString(&c.Render.Renderer, other.Render.Renderer)
	mergeString(&c.Render.Binary, other.Render.Binary)
	mergeString(&c.Render.Format, other.Render.Format)
	mergeString(&c.Render.ArtifactDir, other.Render.ArtifactDir)
	mergeString(&c.Render.RankDir, other.Render.RankDir)
	c.Render.Detailed = c.Render.Detailed || other.Render.Detailed

	mergeString(&c.Cache.Backend, other.Cache.Backend)
	mergeString(&c.Cache.Dir, other.Cache.Dir)
	mergeString(&c.Cache.RedisURL, other.Cache.RedisURL)
	mergeString(&c.Cache.Prefix, other.Cache.Prefix)
	if other.Cache.TTL != 0 {
		c.Cache.TTL = other.Cache.TTL
	}

	mergeString(&c.History.URI, other.History.URI)
	mergeString(&c.History.Database, other.History.Database)

	mergeString(&c.Neo4j.URI, other.Neo4j.URI)
	mergeString(&c.Neo4j.User, other.Neo4j.User)
	mergeString(&c.Neo4j.Password, other.Neo4j.Password)
	mergeString(&c.Neo4j.Database, other.Neo4j.Database)

	mergeString(&c.Server.Addr, other.Server.Addr)
}

// Validate checks enumerated values and bounds.
func (c *Config) Validate() error {
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return mverrors.New(mverrors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		return mverrors.New(mverrors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
	}
	if !slices.Contains([]string{RendererExec, RendererGraphviz}, c.Render.Renderer) {
		return mverrors.New(mverrors.ErrCodeInvalidConfig, "render.renderer must be exec or graphviz, got %q", c.Render.Renderer)
	}
	if c.Calls.MaxDepth < 0 || c.Calls.MaxNodes < 0 {
		return mverrors.New(mverrors.ErrCodeInvalidConfig, "calls bounds must not be negative")
	}
	if c.Cache.TTL < 0 {
		return mverrors.New(mverrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(data)
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
