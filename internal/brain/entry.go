// Package brain is a client for the Brain knowledge-store REST API.
// The adapter forwards MCP tool calls to this API without caching or retries.
package brain

import (
	"time"

	"github.com/google/uuid"
)

// Defaults applied when a capture omits optional metadata.
const (
	DefaultSource = "mcp-client"
	DefaultTitle  = "Untitled"
	DefaultStatus = "inbox"
)

// Entry is the wire shape of a Brain entry. Type and Domain are pointers
// because the API distinguishes "uncategorized" (null) from an empty string.
type Entry struct {
	ID         string  `json:"id"`
	Created    string  `json:"created"`
	Updated    string  `json:"updated"`
	Source     string  `json:"source"`
	RawText    string  `json:"raw_text"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Type       *string `json:"type"`
	Domain     *string `json:"domain"`
	Confidence float64 `json:"confidence,omitempty"`
}

// NewEntryParams describes a thought to capture.
type NewEntryParams struct {
	Text   string
	Title  string
	Type   string
	Domain string
	Source string
}

// NewEntry builds a fresh entry payload: generated UUID, UTC timestamps,
// and Brain's capture defaults. Classification (type/domain confidence) is
// performed downstream by the Brain service.
func NewEntry(params NewEntryParams) *Entry {
	now := time.Now().UTC().Format(time.RFC3339)

	entry := &Entry{
		ID:      uuid.New().String(),
		Created: now,
		Updated: now,
		Source:  params.Source,
		RawText: params.Text,
		Title:   params.Title,
		Status:  DefaultStatus,
	}
	if entry.Source == "" {
		entry.Source = DefaultSource
	}
	if entry.Title == "" {
		entry.Title = DefaultTitle
	}
	if params.Type != "" {
		entry.Type = &params.Type
	}
	if params.Domain != "" {
		entry.Domain = &params.Domain
	}
	return entry
}

// TypeOrDefault returns the classification type, or "unknown".
func (e *Entry) TypeOrDefault() string {
	if e.Type == nil || *e.Type == "" {
		return "unknown"
	}
	return *e.Type
}

// DomainOrDefault returns the domain, or "uncategorized".
func (e *Entry) DomainOrDefault() string {
	if e.Domain == nil || *e.Domain == "" {
		return "uncategorized"
	}
	return *e.Domain
}

// TitleOrDefault returns the title, or "Untitled".
func (e *Entry) TitleOrDefault() string {
	if e.Title == "" {
		return DefaultTitle
	}
	return e.Title
}

// StatusOrDefault returns the triage status, or "unknown".
func (e *Entry) StatusOrDefault() string {
	if e.Status == "" {
		return "unknown"
	}
	return e.Status
}

// CreatedOrDefault returns the creation timestamp, or "unknown".
func (e *Entry) CreatedOrDefault() string {
	if e.Created == "" {
		return "unknown"
	}
	return e.Created
}
