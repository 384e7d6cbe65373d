package cache

// EntitiesKeyOpts are the options that influence an entity extraction.
type EntitiesKeyOpts struct {
	Reader  string   `json:"reader"`
	Include string   `json:"include"`
	Exclude []string `json:"exclude"`
}

// CallsKeyOpts are the options that influence a call-graph walk.
type CallsKeyOpts struct {
	Reader   string `json:"reader"`
	Entry    string `json:"entry"`
	MaxDepth int    `json:"max_depth"`
	MaxNodes int    `json:"max_nodes"`
}

// ArtifactKeyOpts are the options that influence a rendered image.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Renderer string `json:"renderer"`
	Detailed bool   `json:"detailed"`
	RankDir  string `json:"rankdir"`
}

// Keyer derives cache keys.
type Keyer interface {
	// EntitiesKey keys the entity map of a module.
	EntitiesKey(moduleHash string, opts EntitiesKeyOpts) string
	// CallsKey keys the call graph of a module.
	CallsKey(moduleHash string, opts CallsKeyOpts) string
	// ArtifactKey keys a rendered image of a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// EntitiesKey returns "entities:<hash>".
func (DefaultKeyer) EntitiesKey(moduleHash string, opts EntitiesKeyOpts) string {
	return hashKey("entities", moduleHash, opts)
}

// CallsKey returns "calls:<hash>".
func (DefaultKeyer) CallsKey(moduleHash string, opts CallsKeyOpts) string {
	return hashKey("calls", moduleHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis instance:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// EntitiesKey returns the prefixed inner key.
func (k *ScopedKeyer) EntitiesKey(moduleHash string, opts EntitiesKeyOpts) string {
	return k.prefix + k.inner.EntitiesKey(moduleHash, opts)
}

// CallsKey returns the prefixed inner key.
func (k *ScopedKeyer) CallsKey(moduleHash string, opts CallsKeyOpts) string {
	return k.prefix + k.inner.CallsKey(moduleHash, opts)
}

// ArtifactKey returns the prefixed inner key.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
