package oauthstub

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getMetadata(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec
}

func TestProtectedResourceMetadata(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	rec := getMetadata(t, mux, "/.well-known/oauth-protected-resource")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	var doc ProtectedResourceMetadata
	decodeJSONBody(t, rec, &doc)
	assert.Equal(t, testBaseURL, doc.Resource)
	require.Len(t, doc.AuthorizationServers, 1)
	assert.Equal(t, testBaseURL, doc.AuthorizationServers[0].Issuer)
	assert.Equal(t, []string{"brain:read", "brain:write"}, doc.ScopesSupported)
	assert.Equal(t, []string{"header"}, doc.BearerMethodsSupported)
}

func TestAuthServerMetadata(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	var doc AuthServerMetadata
	decodeJSONBody(t, getMetadata(t, mux, "/.well-known/oauth-authorization-server"), &doc)

	assert.Equal(t, testBaseURL, doc.Issuer)
	assert.Equal(t, testBaseURL+"/authorize", doc.AuthorizationEndpoint)
	assert.Equal(t, testBaseURL+"/token", doc.TokenEndpoint)
	assert.Equal(t, testBaseURL+"/register", doc.RegistrationEndpoint)
	assert.Equal(t, []string{"code"}, doc.ResponseTypesSupported)
	assert.Equal(t, []string{"authorization_code"}, doc.GrantTypesSupported)
	assert.Equal(t, []string{"S256"}, doc.CodeChallengeMethodsSupported)
	assert.Equal(t, []string{"none"}, doc.TokenEndpointAuthMethodsSupported)
}

func TestOpenIDConfigurationAliasesAuthServerMetadata(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	canonical := getMetadata(t, mux, "/.well-known/oauth-authorization-server")
	alias := getMetadata(t, mux, "/.well-known/openid-configuration")
	assert.Equal(t, canonical.Body.String(), alias.Body.String())
}

func TestMetadataIsByteStableAcrossRequests(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	for _, path := range []string{
		"/.well-known/oauth-protected-resource",
		"/.well-known/oauth-authorization-server",
		"/.well-known/openid-configuration",
	} {
		first := getMetadata(t, mux, path)
		second := getMetadata(t, mux, path)
		assert.Equal(t, first.Body.String(), second.Body.String(), "document at %s changed between requests", path)
	}
}

func TestMetadataWithTrailingSlashBaseURL(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	NewServer("https://brain.example.com/").RegisterRoutes(mux)

	var doc AuthServerMetadata
	decodeJSONBody(t, getMetadata(t, mux, "/.well-known/oauth-authorization-server"), &doc)
	assert.Equal(t, "https://brain.example.com", doc.Issuer)
	assert.Equal(t, "https://brain.example.com/token", doc.TokenEndpoint)
}
