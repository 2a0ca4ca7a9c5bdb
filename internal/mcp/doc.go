// Package mcp implements the Model Context Protocol (MCP) server for taskdown.
//
// The server is the transport between the presentation layer and the local
// data-access boundary. It exposes six tools:
//   - init_database: open a SQLite file as the current connection
//   - run_sql: execute a statement in run, get or all mode
//   - save_asset: write a file into a vault's assets directory
//   - open_vault: create/open a vault and migrate its database
//   - upload_image: validated image upload under a generated name
//   - migration_status: applied and pending schema migrations
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Start the server with:
//
//	taskdown serve
//
// # Tool: run_sql
//
//	Request:
//	{
//	  "name": "run_sql",
//	  "arguments": {
//	    "sql": "SELECT id, title FROM tasks WHERE status = ?",
//	    "params": ["next"],
//	    "method": "all"
//	  }
//	}
//
//	Response:
//	[
//	  {"id": "t1", "title": "Write report"}
//	]
//
// Columns keep their statement order. A get that matches nothing fails with
// code -32013 rather than returning an empty result.
//
// # Tool: save_asset
//
//	Request:
//	{
//	  "name": "save_asset",
//	  "arguments": {
//	    "filename": "diagram.png",
//	    "bytes": "iVBORw0KGgo=",
//	    "vault_path": "/Users/me/Notes"
//	  }
//	}
//
//	Response:
//	{"url": "asset://localhost/diagram.png"}
//
// # Error Handling
//
// Errors are returned as MCPError values:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error
//   - -32010: Database not initialized
//   - -32011: Connection error
//   - -32012: SQL error (engine message included)
//   - -32013: No row found
//   - -32014: Unknown method
//   - -32015: Invalid filename
//   - -32016: I/O error
//   - -32017: Path traversal detected
//   - -32018: Image too large
//   - -32019: Unsupported image format
//   - -32020: Another open_vault is in progress
//
// # Logging
//
// The MCP server logs to stderr; stdout is reserved for the protocol.
package mcp
