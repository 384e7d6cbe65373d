// Package metadata defines the read-only model of a compiled module that the
// rest of modelviz consumes.
//
// # Overview
//
// modelviz never parses executable formats itself. A [Reader] turns a file on
// disk into a [Module]: its declared [Type]s (with [Field]s and [Method]s),
// each method's instruction stream, and a way to resolve a [MethodRef] found
// in a call instruction back to a method body.
//
// Two readers ship with modelviz:
//
//   - [github.com/matzehuels/modelviz/pkg/metadata/dump] loads a metadata
//     dump (JSON, YAML or TOML) written by an external dumper.
//   - [github.com/matzehuels/modelviz/pkg/metadata/gossa] loads a Go module
//     through golang.org/x/tools and exposes its SSA form.
//
// The [readers] package lists both; [Open] picks the first reader whose
// [Reader.Supports] accepts the path.
//
// # Errors
//
// Any failure to open or parse a module is reported as an
// ErrCodeMetadataUnavailable error from pkg/errors. Method references that
// cannot be resolved are not errors: [Module.Resolve] returns false and
// callers treat the target as a leaf.
//
// [readers]: github.com/matzehuels/modelviz/pkg/metadata/readers
package metadata
