// Package dump reads metadata dumps: a serialized description of a compiled
// module written by an external dumper (for example a Mono.Cecil or
// System.Reflection.Metadata based tool for .NET assemblies).
//
// # Format
//
// The same document shape is accepted as JSON (.json), YAML (.yaml, .yml) or
// TOML (.toml):
//
//	name: Shop.Api
//	entry: Shop.Api.Program::Main
//	types:
//	  - name: Shop.Api.Models.Invoice
//	    fields:
//	      - {name: Amount, type: System.Decimal}
//	      - {name: Lines, type: "System.Collections.Generic.List<Shop.Api.Models.Line>"}
//	    methods:
//	      - name: Main
//	        full_name: Shop.Api.Program::Main
//	        body: true
//	        instructions:
//	          - {op: call, method: Shop.Data.Store::Save, module: Shop.Data}
//	references:
//	  - name: Shop.Data
//	    types: [...]
//
// References are other modules whose method bodies are available; calls into
// them resolve and can be traversed. Calls into modules that are not listed
// stay unresolved leaves.
//
// A method's full name defaults to "<type>::<name>". A method has a body when
// body is true or when it lists instructions.
package dump
