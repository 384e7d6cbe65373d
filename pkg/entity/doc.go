// Package entity selects the "model" types of a module and flattens them into
// an [Map] of entity name to members.
//
// # Filtering
//
// A [Filter] keeps a type when its fully-qualified name contains the include
// marker and none of the exclude markers. [DefaultFilter] includes "Models"
// and leaves out repository interfaces, repository implementations and
// anything named like a persistence context:
//
//	f := entity.DefaultFilter()
//	f.Matches("Shop.Models.Invoice")                         // true
//	f.Matches("Shop.Models.Repositories.Interfaces.IStore")   // false
//	f.Matches("Shop.Models.ShopContext")                      // false
//
// # Members
//
// Only fields are enumerated. Each field becomes a [Member] whose type and name
// are passed through [Normalize], so a collection field of type
// "List<Shop.Models.Line>" is recorded with type "Shop.Models.Line".
//
// Entities are keyed by the simple name of their type. When two types share a
// simple name the later one replaces the earlier one; the replacement is
// recorded in [Map.Collisions] so callers can report it.
package entity
