package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// bytesSchema describes binary content as base64 text or a byte array.
var bytesSchema = map[string]interface{}{
	"description": "File content: a base64 string or an array of integers 0-255",
	"oneOf": []interface{}{
		map[string]interface{}{"type": "string", "contentEncoding": "base64"},
		map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
		},
	},
}

// initDatabaseTool returns the tool definition for init_database
func initDatabaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "init_database",
		Description: "Open the SQLite database at path, replacing any open connection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Database file path; missing parent directories are created",
				},
			},
			Required: []string{"path"},
		},
	}
}

// runSQLTool returns the tool definition for run_sql
func runSQLTool() mcp.Tool {
	return mcp.Tool{
		Name:        "run_sql",
		Description: "Execute one SQL statement against the open database",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sql": map[string]interface{}{
					"type":        "string",
					"description": "SQL text with ? placeholders",
				},
				"params": map[string]interface{}{
					"type":        "array",
					"description": "Positional parameters; objects and arrays are bound as JSON text",
					"default":     []interface{}{},
				},
				"method": map[string]interface{}{
					"type":        "string",
					"description": "run returns {changes}, get returns one row, all returns every row",
					"enum":        []string{"run", "get", "all"},
				},
			},
			Required: []string{"sql", "method"},
		},
	}
}

// saveAssetTool returns the tool definition for save_asset
func saveAssetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "save_asset",
		Description: "Write a file into <vault_path>/.taskdown/assets and return its asset:// URL",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"filename": map[string]interface{}{
					"type":        "string",
					"description": "File name; directory components are ignored",
				},
				"bytes": bytesSchema,
				"vault_path": map[string]interface{}{
					"type":        "string",
					"description": "Vault root directory",
				},
			},
			Required: []string{"filename", "bytes", "vault_path"},
		},
	}
}

// openVaultTool returns the tool definition for open_vault
func openVaultTool() mcp.Tool {
	return mcp.Tool{
		Name:        "open_vault",
		Description: "Create or open a vault, connect its database and apply pending migrations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Vault root directory",
				},
			},
			Required: []string{"path"},
		},
	}
}

// uploadImageTool returns the tool definition for upload_image
func uploadImageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "upload_image",
		Description: "Validate an image (size, jpg/jpeg/png/gif/webp) and save it under a generated name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"filename": map[string]interface{}{
					"type":        "string",
					"description": "Original file name, used for its extension",
				},
				"bytes": bytesSchema,
				"vault_path": map[string]interface{}{
					"type":        "string",
					"description": "Vault root directory",
				},
			},
			Required: []string{"filename", "bytes", "vault_path"},
		},
	}
}

// migrationStatusTool returns the tool definition for migration_status
func migrationStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "migration_status",
		Description: "Report applied and pending schema migrations of the open database",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
