package oauthstub

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/greghughespdx/brain-mcp-server/internal/obs"
	"github.com/greghughespdx/brain-mcp-server/internal/urlutil"
)

const (
	clientIDPrefix      = "brain-mcp-"
	tokenLifetimeSecs   = 3600
	opaqueIDEntropySize = 16
)

// Server serves the OAuth stub endpoints for one public base URL.
type Server struct {
	baseURL string
	logger  *slog.Logger
}

// NewServer creates the stub for the given public base URL.
func NewServer(baseURL string) *Server {
	return &Server{
		baseURL: urlutil.Normalize(baseURL),
		logger:  obs.Pkg("oauthstub"),
	}
}

// RegisterRoutes attaches every stub endpoint to mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /.well-known/oauth-protected-resource", s.handleProtectedResourceMetadata)
	mux.HandleFunc("GET /.well-known/oauth-authorization-server", s.handleAuthServerMetadata)
	mux.HandleFunc("GET /.well-known/openid-configuration", s.handleAuthServerMetadata)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /authorize", s.handleAuthorize)
	mux.HandleFunc("POST /token", s.handleToken)
}

// RegistrationRequest is the RFC 7591 client metadata we care about. Unknown
// fields are accepted and ignored.
type RegistrationRequest struct {
	RedirectURIs []string `json:"redirect_uris"`
	ClientName   string   `json:"client_name"`
}

// RegistrationResponse is the issued client record. There is no registry
// behind it; the client_id is never looked up again.
type RegistrationResponse struct {
	ClientID                string   `json:"client_id"`
	ClientIDIssuedAt        int64    `json:"client_id_issued_at"`
	RedirectURIs            []string `json:"redirect_uris,omitempty"`
	ClientName              string   `json:"client_name,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
}

// TokenResponse is the successful /token payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// ErrorResponse is the OAuth error body shared by /register, /authorize,
// and /token failures.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON object")
		return
	}

	resp := RegistrationResponse{
		ClientID:                clientIDPrefix + newOpaqueID(),
		ClientIDIssuedAt:        time.Now().Unix(),
		RedirectURIs:            req.RedirectURIs,
		ClientName:              req.ClientName,
		TokenEndpointAuthMethod: "none",
		GrantTypes:              []string{"authorization_code"},
		ResponseTypes:           []string{"code"},
	}

	s.logger.InfoContext(r.Context(), "oauth_client_registered",
		"client_id", resp.ClientID,
		"client_name", req.ClientName,
		"redirect_uris", len(req.RedirectURIs),
	)

	writeFlowJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("client_id") == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "client_id is required")
		return
	}
	if rt := query.Get("response_type"); rt != "code" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "response_type must be code")
		return
	}
	redirectURI := query.Get("redirect_uri")
	if redirectURI == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "redirect_uri is required")
		return
	}
	target, err := url.Parse(redirectURI)
	if err != nil || !target.IsAbs() {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "redirect_uri must be an absolute URL")
		return
	}

	// Every authorization request is approved without showing a consent
	// page. The code is fresh entropy, unconnected to the client or token.
	params := target.Query()
	params.Set("code", newOpaqueID())
	if state := query.Get("state"); state != "" {
		params.Set("state", state)
	}
	target.RawQuery = params.Encode()

	s.logger.InfoContext(r.Context(), "oauth_authorize_approved",
		"client_id", query.Get("client_id"),
		"redirect_host", target.Host,
	)

	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "request body must be form-encoded")
		return
	}

	grantType := r.PostFormValue("grant_type")
	if grantType == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "grant_type is required")
		return
	}
	if grantType != "authorization_code" {
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "")
		return
	}

	if r.PostFormValue("code") == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	// The code is not checked against anything issued by /authorize; any
	// non-empty value exchanges for a token.
	resp := TokenResponse{
		AccessToken: newOpaqueID(),
		TokenType:   "Bearer",
		ExpiresIn:   tokenLifetimeSecs,
		Scope:       strings.Join([]string{ScopeRead, ScopeWrite}, " "),
	}

	s.logger.InfoContext(r.Context(), "oauth_token_issued",
		"client_id", r.PostFormValue("client_id"),
	)

	writeFlowJSON(w, http.StatusOK, resp)
}

func writeFlowJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	writeFlowJSON(w, status, ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

func newOpaqueID() string {
	var b [opaqueIDEntropySize]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
