package types

import "errors"

// Boundary error kinds. Callers match them with errors.Is; wrapped errors keep
// the underlying engine or OS message after the kind prefix.
var (
	// Connection registry errors
	ErrNotInitialized = errors.New("database not initialized")
	ErrConnection     = errors.New("connection error")

	// SQL bridge errors
	ErrSQL         = errors.New("sql error")
	ErrNoRowFound  = errors.New("no row found")
	ErrInvalidMode = errors.New("unknown method")

	// Asset writer errors
	ErrInvalidFilename = errors.New("invalid filename")
	ErrIO              = errors.New("io error")
	ErrPathTraversal   = errors.New("path traversal detected")
)
