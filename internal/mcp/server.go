// Package mcp exposes Brain operations as MCP tools over stdio and
// streamable HTTP transports.
package mcp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/greghughespdx/brain-mcp-server/internal/brain"
	"github.com/greghughespdx/brain-mcp-server/internal/logutil"
	"github.com/greghughespdx/brain-mcp-server/internal/obs"
)

const (
	serverName    = "brain-mcp-server"
	serverVersion = "1.0.0"

	debugBodyLogLimitBytes = 8 * 1024
)

// Server wraps the MCP server with Brain tool handling.
type Server struct {
	mcpServer   *mcp.Server
	handler     *Handler
	httpHandler http.Handler
}

// NewServer creates an MCP server exposing the Brain toolset.
func NewServer(client *brain.Client) *Server {
	handler := NewHandler(client)

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		nil,
	)

	for _, tool := range ToolDefinitions() {
		toolCopy := tool // avoid closure issues
		mcp.AddTool(mcpServer, toolCopy, handler.createToolHandler(toolCopy.Name))
	}

	// Streamable HTTP (MCP spec 2025-03-26): one endpoint for POST client
	// messages and GET server streams. Stateless because no per-session
	// state exists; JSONResponse keeps things simple for non-SSE clients.
	httpHandler := mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			JSONResponse: true,
			Stateless:    true,
		},
	)

	return &Server{
		mcpServer:   mcpServer,
		handler:     handler,
		httpHandler: httpHandler,
	}
}

// RunStdio serves MCP over stdin/stdout until ctx is canceled or the client
// disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func debugEnabled() bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv("DEBUG"))) {
	case "1", "true", "yes", "on", "debug":
		return true
	default:
		return false
	}
}

// responseCapture buffers up to debugBodyLogLimitBytes of the response body
// so failed or debug-logged requests can include it.
type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       []byte
	truncated  bool
}

func newResponseCapture(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		body:           make([]byte, 0, debugBodyLogLimitBytes),
	}
}

func (w *responseCapture) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseCapture) Write(p []byte) (int, error) {
	remaining := debugBodyLogLimitBytes - len(w.body)
	switch {
	case remaining <= 0:
		w.truncated = true
	case len(p) <= remaining:
		w.body = append(w.body, p...)
	default:
		w.body = append(w.body, p[:remaining]...)
		w.truncated = true
	}
	return w.ResponseWriter.Write(p)
}

func (w *responseCapture) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCapture) bodyForLog() string {
	text := logutil.FormatBodyForLog(w.Header().Get("Content-Type"), w.body, debugBodyLogLimitBytes)
	if w.truncated && text != "" && !strings.HasSuffix(text, "[truncated]") {
		return text + " [truncated]"
	}
	return text
}

// ServeHTTP implements http.Handler for the streamable HTTP transport.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Mcp-Session-Id, Last-Event-ID, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logger := obs.From(r.Context()).With("pkg", "mcp")
	debug := debugEnabled()

	if debug && r.Body != nil && r.Method == http.MethodPost {
		reqBody, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("mcp_request_body_read_failed", "method", r.Method, "error", err.Error())
		} else {
			r.Body = io.NopCloser(bytes.NewReader(reqBody))
			logger.Debug("mcp_request",
				"method", r.Method,
				"headers", logutil.FormatHeadersForLog(r.Header),
				"body", logutil.FormatBodyForLog(r.Header.Get("Content-Type"), reqBody, debugBodyLogLimitBytes),
			)
		}
	}

	capture := newResponseCapture(w)
	s.httpHandler.ServeHTTP(capture, r)

	if debug {
		logger.Debug("mcp_response",
			"status", capture.statusCode,
			"content_type", capture.Header().Get("Content-Type"),
			"body", capture.bodyForLog(),
		)
	}

	if capture.statusCode >= http.StatusBadRequest {
		logger.Warn("mcp_request_failed",
			"method", r.Method,
			"status", capture.statusCode,
			"remote", r.RemoteAddr,
			"body", capture.bodyForLog(),
		)
	}
}
