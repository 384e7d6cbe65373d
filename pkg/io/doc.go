// Package io provides JSON import and export for modelviz graphs.
//
// # JSON Format
//
//	{
//	  "meta":  {"graph": "calls", "module": "Shop.Api", "entry": "Shop.Api.Program::Main"},
//	  "nodes": [
//	    {"id": "Shop.Api.Program::Main", "kind": "method", "meta": {"module": "Shop.Api"}},
//	    {"id": "System.Console::WriteLine", "kind": "external"}
//	  ],
//	  "edges": [
//	    {"from": "Shop.Api.Program::Main", "to": "System.Console::WriteLine", "meta": {"op": "call"}}
//	  ]
//	}
//
// Node kinds are "entity", "member", "method" and "external"; a missing kind
// means "entity". Node order and edge order are preserved, and so are
// parallel edges, so an exported graph serializes to the same DOT after
// re-import.
//
// Use [ExportJSON] / [WriteJSON] to write and [ImportJSON] / [ReadJSON] to
// read. Import rejects duplicate node IDs and edges that reference unknown
// nodes.
package io
