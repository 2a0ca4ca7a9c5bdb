// Package bridge runs SQL text supplied by the presentation layer.
//
// Three modes shape the output:
//
//	run  executes the statement and returns {"changes": n}
//	get  returns the first row as an ordered document, or ErrNoRowFound
//	all  returns every row, [] when nothing matches
//
// Parameters are classified with types.FromAny, so any caller value can be
// bound: structured values are bound as their JSON text. Cells come back by
// storage class; blob cells are returned as null.
//
// Statements are never retried and carry no timeout beyond the context and
// the connection's busy timeout.
package bridge
