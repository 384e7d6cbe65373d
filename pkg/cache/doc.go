// Package cache stores pipeline results keyed by the content they were
// derived from.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: never stores anything, used when caching is disabled
//
// Keys come from a [Keyer]. The default keyer hashes the module content
// together with every option that influences the result, so a changed module
// or a changed filter never returns a stale graph:
//
//	k := cache.NewDefaultKeyer()
//	key := k.EntitiesKey(cache.Hash(moduleBytes), cache.EntitiesKeyOpts{Include: "Models"})
//
// [GetJSON] and [SetJSON] wrap the byte-level interface for typed values.
package cache
