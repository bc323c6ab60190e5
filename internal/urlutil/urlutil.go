package urlutil

import (
	"net"
	"strconv"
	"strings"
)

// Normalize trims whitespace and any trailing slash from a base URL.
func Normalize(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/")
}

// BuildAbsolute builds an absolute URL from a base origin and a path.
// Absolute paths are passed through untouched.
func BuildAbsolute(base, path string) string {
	base = Normalize(base)
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

// HostPortOrigin composes an http origin from a host and port, the fallback
// used when no explicit base URL is configured.
func HostPortOrigin(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}
