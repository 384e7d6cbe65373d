// Package schema projects an entity map into typed tables.
//
// Every entity becomes a [Table] and every member a [Column]. A member's type
// name is looked up with [Resolve] in a closed table of primitive and
// framework types; CLR names ("System.Int32"), C# keywords ("int") and Go
// builtins ("int32") are all understood. A type that does not resolve, which
// usually means it is another entity or a framework type outside the table,
// still gets a column: its kind is [KindOpaque] and its label carries the
// simple name of the type, e.g. "Customer (Customer)".
package schema
