package oauthstub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const testBaseURL = "http://127.0.0.1:8084"

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewServer(testBaseURL).RegisterRoutes(mux)
	return mux
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestRegister_IssuesClientID(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	body := `{"client_name":"Claude","redirect_uris":["http://localhost:33418/callback"]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))

	var resp RegistrationResponse
	decodeJSONBody(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.ClientID, "brain-mcp-"), "client_id %q should carry the issuer prefix", resp.ClientID)
	assert.NotZero(t, resp.ClientIDIssuedAt)
	assert.Equal(t, []string{"http://localhost:33418/callback"}, resp.RedirectURIs)
	assert.Equal(t, "Claude", resp.ClientName)
	assert.Equal(t, "none", resp.TokenEndpointAuthMethod)
	assert.Equal(t, []string{"authorization_code"}, resp.GrantTypes)
	assert.Equal(t, []string{"code"}, resp.ResponseTypes)
}

func TestRegister_MalformedBodyRejected(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("not json")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	decodeJSONBody(t, rec, &resp)
	assert.Equal(t, "invalid_request", resp.Error)
	assert.NotEmpty(t, resp.ErrorDescription)
}

func TestRegister_ClientIDsAreDistinct(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	issue := func() string {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`)))
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp RegistrationResponse
		decodeJSONBody(t, rec, &resp)
		return resp.ClientID
	}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := issue()
		require.False(t, seen[id], "duplicate client_id %q", id)
		seen[id] = true
	}
}

func TestAuthorize_RedirectsWithCodeAndState(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	rapid.Check(t, func(t *rapid.T) {
		state := rapid.StringMatching(`[A-Za-z0-9._~-]{1,64}`).Draw(t, "state")

		query := url.Values{}
		query.Set("client_id", "brain-mcp-abc")
		query.Set("redirect_uri", "http://localhost:33418/callback")
		query.Set("response_type", "code")
		query.Set("state", state)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorize?"+query.Encode(), nil))

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		location, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("unparseable Location header: %v", err)
		}
		if location.Host != "localhost:33418" || location.Path != "/callback" {
			t.Fatalf("redirect went to %q", location.String())
		}
		if location.Query().Get("code") == "" {
			t.Fatalf("redirect is missing an authorization code")
		}
		if got := location.Query().Get("state"); got != state {
			t.Fatalf("state not echoed verbatim: sent %q, got %q", state, got)
		}
	})
}

func TestAuthorize_StateOmittedWhenNotSent(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	query := url.Values{
		"client_id":     {"brain-mcp-abc"},
		"response_type": {"code"},
		"redirect_uri":  {"http://localhost:9/cb"},
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorize?"+query.Encode(), nil))

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.False(t, location.Query().Has("state"))
}

func TestAuthorize_InvalidRequestsRejected(t *testing.T) {
	t.Parallel()

	valid := url.Values{
		"client_id":     {"brain-mcp-abc"},
		"response_type": {"code"},
		"redirect_uri":  {"http://localhost:9/cb"},
	}

	cases := map[string]func(url.Values){
		"missing client_id":     func(q url.Values) { q.Del("client_id") },
		"missing response_type": func(q url.Values) { q.Del("response_type") },
		"token response_type":   func(q url.Values) { q.Set("response_type", "token") },
		"missing redirect_uri":  func(q url.Values) { q.Del("redirect_uri") },
		"relative redirect_uri": func(q url.Values) { q.Set("redirect_uri", "/callback") },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			mux := newTestMux(t)

			query := url.Values{}
			for k, v := range valid {
				query[k] = append([]string(nil), v...)
			}
			mutate(query)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorize?"+query.Encode(), nil))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			decodeJSONBody(t, rec, &resp)
			assert.Equal(t, "invalid_request", resp.Error)
		})
	}
}

func postToken(mux *http.ServeMux, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	mux.ServeHTTP(rec, req)
	return rec
}

func TestToken_AnyCodeExchangesForToken(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	rapid.Check(t, func(t *rapid.T) {
		code := rapid.StringMatching(`[A-Za-z0-9._~-]{1,128}`).Draw(t, "code")

		rec := postToken(mux, url.Values{
			"grant_type": {"authorization_code"},
			"code":       {code},
			"client_id":  {"brain-mcp-abc"},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for code %q, got %d: %s", code, rec.Code, rec.Body.String())
		}
		var resp TokenResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unparseable token response: %v", err)
		}
		if resp.AccessToken == "" {
			t.Fatalf("empty access_token")
		}
		if resp.TokenType != "Bearer" || resp.ExpiresIn != 3600 {
			t.Fatalf("unexpected token shape: %+v", resp)
		}
		if resp.Scope != "brain:read brain:write" {
			t.Fatalf("unexpected scope %q", resp.Scope)
		}
	})
}

func TestToken_TokensAreDistinct(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	form := url.Values{"grant_type": {"authorization_code"}, "code": {"same-code"}}

	first := postToken(mux, form)
	second := postToken(mux, form)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b TokenResponse
	decodeJSONBody(t, first, &a)
	decodeJSONBody(t, second, &b)
	assert.NotEqual(t, a.AccessToken, b.AccessToken)
}

func TestToken_ErrorCases(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		form      url.Values
		wantError string
	}{
		"missing grant_type": {
			form:      url.Values{"code": {"abc"}},
			wantError: "invalid_request",
		},
		"client_credentials grant": {
			form:      url.Values{"grant_type": {"client_credentials"}},
			wantError: "unsupported_grant_type",
		},
		"refresh_token grant": {
			form:      url.Values{"grant_type": {"refresh_token"}, "refresh_token": {"abc"}},
			wantError: "unsupported_grant_type",
		},
		"missing code": {
			form:      url.Values{"grant_type": {"authorization_code"}},
			wantError: "invalid_request",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			mux := newTestMux(t)

			rec := postToken(mux, tc.form)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			decodeJSONBody(t, rec, &resp)
			assert.Equal(t, tc.wantError, resp.Error)
			if tc.wantError == "unsupported_grant_type" {
				assert.Empty(t, resp.ErrorDescription)
			}
		})
	}
}

func TestToken_NoStoreHeaders(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	rec := postToken(mux, url.Values{"grant_type": {"authorization_code"}, "code": {"abc"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
}
