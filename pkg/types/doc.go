// Package types provides the value and result types shared by the taskdown
// data-access boundary.
//
// # Untyped Values
//
// Parameters arrive from the presentation layer as loosely typed JSON. Each
// one is classified into exactly one Value variant before binding:
//
//	types.FromAny(nil)                // Null{}
//	types.FromAny(true)               // Bool(true)
//	types.FromAny(json.Number("42"))  // Integer(42)
//	types.FromAny(1.5)                // Float(1.5)
//	types.FromAny("hello")            // Text("hello")
//	types.FromAny([]any{1, 2})        // Other("[1,2]")
//
// Classification is total. Anything that is not null, bool, number or string
// falls back to its textual form and is bound as text.
//
// # Result Documents
//
// Query rows are returned as Documents: ordered column -> Value mappings that
// serialize to JSON objects in column order. A Result wraps the output of one
// execution and serializes per mode:
//
//	run -> {"changes": 1}
//	get -> {"id": 1, "title": "Buy milk"}
//	all -> [{"id": 1, ...}, {"id": 2, ...}]
//
// # Errors
//
// Error kinds are sentinel errors (ErrNotInitialized, ErrSQL, ErrNoRowFound,
// ...) matched with errors.Is.
package types
