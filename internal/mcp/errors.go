package mcp

import (
	"errors"
	"fmt"

	"github.com/KeMezz/taskdown/internal/assets"
	"github.com/KeMezz/taskdown/internal/vault"
	"github.com/KeMezz/taskdown/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error

	ErrorCodeNotInitialized    = -32010 // No database connection yet
	ErrorCodeConnection        = -32011 // Database could not be opened
	ErrorCodeSQL               = -32012 // Statement failed
	ErrorCodeNoRowFound        = -32013 // get matched no row
	ErrorCodeInvalidMode       = -32014 // Unknown run_sql method
	ErrorCodeInvalidFilename   = -32015 // No usable base name
	ErrorCodeIO                = -32016 // Filesystem failure
	ErrorCodePathTraversal     = -32017 // Asset path escapes the vault
	ErrorCodeImageTooLarge     = -32018 // Upload over the size limit
	ErrorCodeUnsupportedFormat = -32019 // Upload with a rejected extension
	ErrorCodeOpenInProgress    = -32020 // Another open_vault is running
)

// errorCodes maps boundary errors to MCP codes, checked in order.
var errorCodes = []struct {
	err  error
	code int
}{
	{types.ErrNotInitialized, ErrorCodeNotInitialized},
	{types.ErrConnection, ErrorCodeConnection},
	{types.ErrNoRowFound, ErrorCodeNoRowFound},
	{types.ErrInvalidMode, ErrorCodeInvalidMode},
	{types.ErrSQL, ErrorCodeSQL},
	{types.ErrInvalidFilename, ErrorCodeInvalidFilename},
	{types.ErrPathTraversal, ErrorCodePathTraversal},
	{types.ErrIO, ErrorCodeIO},
	{assets.ErrImageTooLarge, ErrorCodeImageTooLarge},
	{assets.ErrUnsupportedFormat, ErrorCodeUnsupportedFormat},
	{vault.ErrOpenInProgress, ErrorCodeOpenInProgress},
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// toMCPError converts a boundary error into an MCPError carrying the
// matching code and the full error text.
func toMCPError(err error) error {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return newMCPError(ec.code, err.Error(), map[string]interface{}{
				"kind": ec.err.Error(),
			})
		}
	}
	return newMCPError(ErrorCodeInternalError, err.Error(), nil)
}

// invalidParam reports a missing or malformed argument.
func invalidParam(param, reason string) error {
	return newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("invalid %s: %s", param, reason), map[string]interface{}{
		"param":  param,
		"reason": reason,
	})
}
