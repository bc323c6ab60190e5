package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "http://a.example", Normalize("http://a.example/"))
	assert.Equal(t, "http://a.example", Normalize("  http://a.example  "))
	assert.Equal(t, "", Normalize("   "))
}

func TestBuildAbsolute(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "http://a.example/token", BuildAbsolute("http://a.example/", "/token"))
	assert.Equal(t, "http://a.example/token", BuildAbsolute("http://a.example", "token"))
	assert.Equal(t, "http://a.example", BuildAbsolute("http://a.example", ""))
	assert.Equal(t, "https://other.example/cb", BuildAbsolute("http://a.example", "https://other.example/cb"))
}

func TestHostPortOrigin(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "http://127.0.0.1:8084", HostPortOrigin("127.0.0.1", 8084))
	assert.Equal(t, "http://[::1]:8084", HostPortOrigin("::1", 8084))
}
