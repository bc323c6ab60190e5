package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

// Default result caps when a caller does not pass limit.
const (
	defaultSearchLimit = 20
	defaultListLimit   = 50
)

// ToolDefinitions returns the Brain MCP tool definitions.
func ToolDefinitions() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        "save_to_brain",
			Description: "Save a thought to Brain with full metadata. Use this when you have specific type/domain information or want to provide a custom title. The thought will be auto-classified by the Brain service. Returns a confirmation message with entry ID and status.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "The thought content to capture",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Optional custom title (auto-generated if not provided)",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Optional thought type (idea, task, question, observation, reflection, reference, problem)",
					},
					"domain": map[string]any{
						"type":        "string",
						"description": "Optional domain (aviation, aircraft-build, dev, homelab, personal, business)",
					},
					"source": map[string]any{
						"type":        "string",
						"description": "Optional source identifier (defaults to 'mcp-client')",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "quick_capture",
			Description: "Quickly capture a thought with minimal input. Just provide the text - Brain will auto-classify type, domain, and generate a title. Returns a confirmation message with entry ID.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "The thought to capture",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "search_brain",
			Description: "Search for thoughts in Brain by text query. Searches both raw_text and title fields. Returns up to 20 matching entries by default, formatted as a list.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search query text",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum results to return (default: 20)",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "list_recent",
			Description: "List recent Brain entries with optional filters. Returns entries ordered by creation date (newest first), formatted as a list.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum entries to return (default: 50)",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "Filter by status (inbox, triaged, developing, graduated, archived)",
					},
					"domain": map[string]any{
						"type":        "string",
						"description": "Filter by domain",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Filter by type",
					},
				},
			},
		},
		{
			Name:        "get_entry",
			Description: "Fetch a specific Brain entry by ID. Returns full entry details including raw_text, metadata, and classification results.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entry_id": map[string]any{
						"type":        "string",
						"description": "UUID of the entry to fetch",
					},
				},
				"required": []string{"entry_id"},
			},
		},
		{
			Name:        "update_entry",
			Description: "Update fields of an existing Brain entry. Pass only the fields to change; everything else keeps its current value. Useful for triaging (changing status), retitling, or correcting classification.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entry_id": map[string]any{
						"type":        "string",
						"description": "UUID of the entry to update",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "New title",
					},
					"text": map[string]any{
						"type":        "string",
						"description": "New thought content",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "New status (inbox, triaged, developing, graduated, archived)",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "New thought type",
					},
					"domain": map[string]any{
						"type":        "string",
						"description": "New domain",
					},
				},
				"required": []string{"entry_id"},
			},
		},
		{
			Name:        "delete_entry",
			Description: "Permanently delete a Brain entry by ID. This cannot be undone.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entry_id": map[string]any{
						"type":        "string",
						"description": "UUID of the entry to delete",
					},
				},
				"required": []string{"entry_id"},
			},
		},
	}
}
