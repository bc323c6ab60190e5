// Package logutil keeps request/response logging safe: bearer tokens,
// client secrets, and authorization codes from the OAuth stub must never
// land in server logs verbatim.
package logutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

var sensitiveKeyFragments = []string{
	"token",
	"secret",
	"password",
	"apikey",
	"cookie",
	"auth",
	"code",
}

// IsSensitiveLogField reports whether a field or header name likely carries
// credential material.
func IsSensitiveLogField(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(normalized, fragment) {
			return true
		}
	}
	return false
}

// FormatHeadersForLog returns stable, redacted header text for logs.
func FormatHeadersForLog(headers http.Header) string {
	if len(headers) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		values := headers.Values(k)
		if IsSensitiveLogField(k) {
			parts = append(parts, fmt.Sprintf("%s=%s", strings.ToLower(k), redactedPlaceholder))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%q", strings.ToLower(k), strings.Join(values, ", ")))
	}
	return strings.Join(parts, "; ")
}

// RedactJSONBody redacts sensitive fields from JSON payloads; payloads that
// are not valid JSON come back unchanged.
func RedactJSONBody(body []byte) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}

	var redact func(v any)
	redact = func(v any) {
		switch typed := v.(type) {
		case map[string]any:
			for k, child := range typed {
				if IsSensitiveLogField(k) {
					typed[k] = redactedPlaceholder
					continue
				}
				redact(child)
			}
		case []any:
			for _, child := range typed {
				redact(child)
			}
		}
	}

	redact(payload)
	safeJSON, err := json.Marshal(payload)
	if err != nil {
		return string(body)
	}
	return string(safeJSON)
}

// FormatBodyForLog truncates, and for JSON content types redacts, body text.
func FormatBodyForLog(contentType string, body []byte, maxBytes int) string {
	if len(body) == 0 {
		return ""
	}
	truncated := false
	if maxBytes > 0 && len(body) > maxBytes {
		body = body[:maxBytes]
		truncated = true
	}
	text := string(body)
	if strings.Contains(strings.ToLower(contentType), "json") {
		text = RedactJSONBody(body)
	}
	if truncated {
		return text + " [truncated]"
	}
	return text
}

// TruncateForLog returns a single-line truncated preview for unstructured values.
func TruncateForLog(value string, maxChars int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	normalized := strings.ReplaceAll(trimmed, "\n", "\\n")
	if maxChars <= 0 || len(normalized) <= maxChars {
		return normalized
	}
	return normalized[:maxChars] + "... [truncated]"
}
