package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleInitDatabase handles the init_database tool invocation
func (s *Server) handleInitDatabase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path := getStringDefault(args, "path", "")
	if path == "" {
		return nil, invalidParam("path", "missing or empty")
	}

	if err := s.registry.Initialize(ctx, path); err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"initialized": true,
		"path":        path,
	})), nil
}

// handleRunSQL handles the run_sql tool invocation
func (s *Server) handleRunSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["sql"].(string)
	if !ok {
		return nil, invalidParam("sql", "missing or not a string")
	}

	params, err := decodeParams(args["params"])
	if err != nil {
		return nil, invalidParam("params", err.Error())
	}

	method, ok := args["method"].(string)
	if !ok {
		return nil, invalidParam("method", "missing or not a string")
	}

	result, err := s.bridge.Execute(ctx, query, params, method)
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleSaveAsset handles the save_asset tool invocation
func (s *Server) handleSaveAsset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filename, ok := args["filename"].(string)
	if !ok {
		return nil, invalidParam("filename", "missing or not a string")
	}
	vaultPath := getStringDefault(args, "vault_path", "")
	if vaultPath == "" {
		return nil, invalidParam("vault_path", "missing or empty")
	}
	data, err := decodeBytes(args["bytes"])
	if err != nil {
		return nil, invalidParam("bytes", err.Error())
	}

	url, err := s.writer.Save(filename, data, vaultPath)
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"url": url})), nil
}

// handleOpenVault handles the open_vault tool invocation
func (s *Server) handleOpenVault(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path := getStringDefault(args, "path", "")
	if path == "" {
		return nil, invalidParam("path", "missing or empty")
	}

	res, err := s.openVault(ctx, path)
	if err != nil {
		return nil, toMCPError(err)
	}

	response := map[string]interface{}{
		"path":               res.Path,
		"read_only":          res.ReadOnly,
		"applied_migrations": res.Applied,
		"config":             res.Config,
	}
	if res.Err != nil {
		response["error"] = res.Err.Error()
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUploadImage handles the upload_image tool invocation
func (s *Server) handleUploadImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filename := getStringDefault(args, "filename", "")
	if filename == "" {
		return nil, invalidParam("filename", "missing or empty")
	}
	vaultPath := getStringDefault(args, "vault_path", "")
	if vaultPath == "" {
		return nil, invalidParam("vault_path", "missing or empty")
	}
	data, err := decodeBytes(args["bytes"])
	if err != nil {
		return nil, invalidParam("bytes", err.Error())
	}

	url, err := s.uploader.UploadImage(vaultPath, filename, data)
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"url": url})), nil
}

// handleMigrationStatus handles the migration_status tool invocation
func (s *Server) handleMigrationStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.vaults.Status(ctx)
	if err != nil {
		return nil, toMCPError(err)
	}
	return mcp.NewToolResultText(formatJSON(status)), nil
}

// Helper functions

// decodeParams re-decodes the params argument with json.Number so integral
// values bind as integers.
func decodeParams(raw interface{}) ([]interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var params []interface{}
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("must be an array")
	}
	return params, nil
}

// decodeBytes accepts either a base64 string or an array of byte values.
func decodeBytes(raw interface{}) ([]byte, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("missing")
	case string:
		data, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
		return data, nil
	case []interface{}:
		data := make([]byte, len(v))
		for i, elem := range v {
			n, ok := toFloat(elem)
			if !ok || n < 0 || n > 255 || n != math.Trunc(n) {
				return nil, fmt.Errorf("element %d is not a byte", i)
			}
			data[i] = byte(n)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("must be a base64 string or an array of bytes")
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(out)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
