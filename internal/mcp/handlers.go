package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/greghughespdx/brain-mcp-server/internal/brain"
	"github.com/greghughespdx/brain-mcp-server/internal/errs"
)

// Handler routes MCP tool calls to the Brain API client.
type Handler struct {
	brain *brain.Client
}

// NewHandler creates a handler backed by the given Brain client.
func NewHandler(client *brain.Client) *Handler {
	return &Handler{brain: client}
}

// createToolHandler returns a tool handler function for the given tool name.
func (h *Handler) createToolHandler(name string) func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		result, err := h.HandleToolCall(ctx, name, args)
		return result, nil, err
	}
}

// HandleToolCall routes tool calls to appropriate handlers.
func (h *Handler) HandleToolCall(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	switch name {
	case "save_to_brain":
		return h.handleSaveToBrain(ctx, arguments)
	case "quick_capture":
		return h.handleQuickCapture(ctx, arguments)
	case "search_brain":
		return h.handleSearchBrain(ctx, arguments)
	case "list_recent":
		return h.handleListRecent(ctx, arguments)
	case "get_entry":
		return h.handleGetEntry(ctx, arguments)
	case "update_entry":
		return h.handleUpdateEntry(ctx, arguments)
	case "delete_entry":
		return h.handleDeleteEntry(ctx, arguments)
	default:
		return newToolResultError(fmt.Sprintf("unknown tool: %s", name)), nil
	}
}

func (h *Handler) handleSaveToBrain(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	text, ok := stringArg(args, "text")
	if !ok || text == "" {
		return newToolResultError("text must be a non-empty string"), nil
	}

	entry := brain.NewEntry(brain.NewEntryParams{
		Text:   text,
		Title:  optionalStringArg(args, "title"),
		Type:   optionalStringArg(args, "type"),
		Domain: optionalStringArg(args, "domain"),
		Source: optionalStringArg(args, "source"),
	})

	created, err := h.brain.CreateEntry(ctx, entry)
	if err != nil {
		return toolResultFromError("failed to save thought", err), nil
	}

	return newToolResultText(fmt.Sprintf(
		"Thought saved to Brain.\nID: %s\nStatus: %s\n\nAuto-classification in progress...",
		created.ID, created.StatusOrDefault(),
	)), nil
}

func (h *Handler) handleQuickCapture(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	text, ok := stringArg(args, "text")
	if !ok || text == "" {
		return newToolResultError("text must be a non-empty string"), nil
	}

	created, err := h.brain.CreateEntry(ctx, brain.NewEntry(brain.NewEntryParams{Text: text}))
	if err != nil {
		return toolResultFromError("failed to capture thought", err), nil
	}

	return newToolResultText(fmt.Sprintf(
		"Thought captured.\nID: %s\n\nAuto-classification in progress...",
		created.ID,
	)), nil
}

func (h *Handler) handleSearchBrain(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	query, ok := stringArg(args, "query")
	if !ok || query == "" {
		return newToolResultError("query must be a non-empty string"), nil
	}
	limit := intArg(args, "limit", defaultSearchLimit)

	results, err := h.brain.Search(ctx, query)
	if err != nil {
		return toolResultFromError("search failed", err), nil
	}
	if len(results) == 0 {
		return newToolResultText("No results found."), nil
	}

	lines := []string{fmt.Sprintf("Found %d result(s):\n", len(results))}
	for i, entry := range results {
		if i >= limit {
			break
		}
		lines = append(lines,
			fmt.Sprintf("• %s", entry.TitleOrDefault()),
			fmt.Sprintf("  ID: %s", entry.ID),
			fmt.Sprintf("  Type: %s | Domain: %s", entry.TypeOrDefault(), entry.DomainOrDefault()),
			fmt.Sprintf("  Created: %s", entry.CreatedOrDefault()),
			"",
		)
	}

	return newToolResultText(strings.Join(lines, "\n")), nil
}

func (h *Handler) handleListRecent(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	opts := brain.ListOptions{
		Limit:  intArg(args, "limit", defaultListLimit),
		Status: optionalStringArg(args, "status"),
		Domain: optionalStringArg(args, "domain"),
		Type:   optionalStringArg(args, "type"),
	}

	results, err := h.brain.ListEntries(ctx, opts)
	if err != nil {
		return toolResultFromError("failed to list entries", err), nil
	}
	if len(results) == 0 {
		return newToolResultText("No entries found."), nil
	}

	lines := []string{fmt.Sprintf("Recent entries (%d):\n", len(results))}
	for _, entry := range results {
		lines = append(lines,
			fmt.Sprintf("• %s", entry.TitleOrDefault()),
			fmt.Sprintf("  ID: %s", entry.ID),
			fmt.Sprintf("  Type: %s | Domain: %s | Status: %s", entry.TypeOrDefault(), entry.DomainOrDefault(), entry.StatusOrDefault()),
			fmt.Sprintf("  Created: %s", entry.CreatedOrDefault()),
			"",
		)
	}

	return newToolResultText(strings.Join(lines, "\n")), nil
}

func (h *Handler) handleGetEntry(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	id, ok := stringArg(args, "entry_id")
	if !ok || id == "" {
		return newToolResultError("entry_id must be a non-empty string"), nil
	}

	entry, err := h.brain.GetEntry(ctx, id)
	if err != nil {
		if errs.CodeOf(err) == errs.NotFound {
			return newToolResultText(fmt.Sprintf("Entry %s not found.", id)), nil
		}
		return toolResultFromError("failed to fetch entry", err), nil
	}

	content := entry.RawText
	if content == "" {
		content = "(empty)"
	}
	source := entry.Source
	if source == "" {
		source = "unknown"
	}
	updated := entry.Updated
	if updated == "" {
		updated = "unknown"
	}

	lines := []string{
		fmt.Sprintf("Title: %s", entry.TitleOrDefault()),
		fmt.Sprintf("ID: %s", entry.ID),
		fmt.Sprintf("Type: %s", entry.TypeOrDefault()),
		fmt.Sprintf("Domain: %s", entry.DomainOrDefault()),
		fmt.Sprintf("Status: %s", entry.StatusOrDefault()),
		fmt.Sprintf("Source: %s", source),
		fmt.Sprintf("Created: %s", entry.CreatedOrDefault()),
		fmt.Sprintf("Updated: %s", updated),
		fmt.Sprintf("Confidence: %v", entry.Confidence),
		"",
		"Content:",
		content,
	}

	return newToolResultText(strings.Join(lines, "\n")), nil
}

func (h *Handler) handleUpdateEntry(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	id, ok := stringArg(args, "entry_id")
	if !ok || id == "" {
		return newToolResultError("entry_id must be a non-empty string"), nil
	}

	params := brain.UpdateParams{}
	changed := false
	if v, ok := stringArg(args, "title"); ok {
		params.Title = &v
		changed = true
	}
	if v, ok := stringArg(args, "text"); ok {
		params.RawText = &v
		changed = true
	}
	if v, ok := stringArg(args, "status"); ok {
		params.Status = &v
		changed = true
	}
	if v, ok := stringArg(args, "type"); ok {
		params.Type = &v
		changed = true
	}
	if v, ok := stringArg(args, "domain"); ok {
		params.Domain = &v
		changed = true
	}
	if !changed {
		return newToolResultError("pass at least one field to update (title, text, status, type, domain)"), nil
	}

	updated, err := h.brain.UpdateEntry(ctx, id, params)
	if err != nil {
		if errs.CodeOf(err) == errs.NotFound {
			return newToolResultText(fmt.Sprintf("Entry %s not found.", id)), nil
		}
		return toolResultFromError("failed to update entry", err), nil
	}

	return newToolResultText(fmt.Sprintf(
		"Entry updated.\nID: %s\nTitle: %s\nStatus: %s\nUpdated: %s",
		updated.ID, updated.TitleOrDefault(), updated.StatusOrDefault(), updated.Updated,
	)), nil
}

func (h *Handler) handleDeleteEntry(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	id, ok := stringArg(args, "entry_id")
	if !ok || id == "" {
		return newToolResultError("entry_id must be a non-empty string"), nil
	}

	if err := h.brain.DeleteEntry(ctx, id); err != nil {
		if errs.CodeOf(err) == errs.NotFound {
			return newToolResultText(fmt.Sprintf("Entry %s not found.", id)), nil
		}
		return toolResultFromError("failed to delete entry", err), nil
	}

	return newToolResultText(fmt.Sprintf("Entry %s deleted.", id)), nil
}

// newToolResultText creates a successful tool result with text content.
func newToolResultText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// newToolResultError creates a tool result indicating an error.
func newToolResultError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// toolResultFromError surfaces coded error messages to the client while
// keeping untyped internals generic.
func toolResultFromError(prefix string, err error) *mcp.CallToolResult {
	return newToolResultError(fmt.Sprintf("%s: %s", prefix, errs.MessageOf(err)))
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func optionalStringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// intArg tolerates JSON numbers arriving as float64 or int.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	}
	return fallback
}
