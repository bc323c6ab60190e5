// Package oauthstub implements the auto-approval OAuth 2.0 surface that MCP
// clients expect before connecting over HTTP: discovery metadata, dynamic
// client registration, and an authorization-code flow that approves every
// request. Tokens are opaque random strings; nothing is persisted and no
// value is ever validated against a prior step. It is a compatibility
// handshake, not an authentication system, and must only front deployments
// that are protected by other means.
package oauthstub

import (
	"encoding/json"
	"net/http"

	"github.com/greghughespdx/brain-mcp-server/internal/obs"
	"github.com/greghughespdx/brain-mcp-server/internal/urlutil"
)

// Scopes advertised in discovery metadata and echoed on issued tokens.
const (
	ScopeRead  = "brain:read"
	ScopeWrite = "brain:write"
)

const metadataCacheControl = "public, max-age=3600"

// AuthorizationServerRef points resource-server metadata at an issuer.
type AuthorizationServerRef struct {
	Issuer string `json:"issuer"`
}

// ProtectedResourceMetadata is the RFC 9728 document served at
// /.well-known/oauth-protected-resource.
type ProtectedResourceMetadata struct {
	Resource               string                   `json:"resource"`
	AuthorizationServers   []AuthorizationServerRef `json:"authorization_servers"`
	ScopesSupported        []string                 `json:"scopes_supported"`
	BearerMethodsSupported []string                 `json:"bearer_methods_supported"`
}

// AuthServerMetadata is the RFC 8414 document served at
// /.well-known/oauth-authorization-server and, for clients that probe OIDC
// first, /.well-known/openid-configuration.
type AuthServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RegistrationEndpoint              string   `json:"registration_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
}

func (s *Server) protectedResourceMetadata() ProtectedResourceMetadata {
	return ProtectedResourceMetadata{
		Resource:               s.baseURL,
		AuthorizationServers:   []AuthorizationServerRef{{Issuer: s.baseURL}},
		ScopesSupported:        []string{ScopeRead, ScopeWrite},
		BearerMethodsSupported: []string{"header"},
	}
}

func (s *Server) authServerMetadata() AuthServerMetadata {
	return AuthServerMetadata{
		Issuer:                s.baseURL,
		AuthorizationEndpoint: urlutil.BuildAbsolute(s.baseURL, "/authorize"),
		TokenEndpoint:         urlutil.BuildAbsolute(s.baseURL, "/token"),
		RegistrationEndpoint:  urlutil.BuildAbsolute(s.baseURL, "/register"),
		ResponseTypesSupported: []string{
			"code",
		},
		GrantTypesSupported: []string{
			"authorization_code",
		},
		// S256 is advertised for client compatibility; the flow never checks
		// the verifier because every exchange is approved anyway.
		CodeChallengeMethodsSupported: []string{
			"S256",
		},
		TokenEndpointAuthMethodsSupported: []string{
			"none",
		},
	}
}

func (s *Server) handleProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	s.writeMetadata(w, r, s.protectedResourceMetadata())
}

func (s *Server) handleAuthServerMetadata(w http.ResponseWriter, r *http.Request) {
	s.writeMetadata(w, r, s.authServerMetadata())
}

func (s *Server) writeMetadata(w http.ResponseWriter, r *http.Request, doc any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", metadataCacheControl)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		obs.From(r.Context()).Error("oauth_metadata_encode_failed", "error", err.Error())
	}
}
