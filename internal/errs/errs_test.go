package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"pgregory.net/rapid"
)

func testCodeOf_RoundtripForTypedErrors(t *rapid.T) {
	code := rapid.SampledFrom([]Code{
		InvalidArgument,
		NotFound,
		PermissionDenied,
		Unavailable,
		Internal,
	}).Draw(t, "code")
	message := rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "message")

	err := New(code, message)
	if got := CodeOf(err); got != code {
		t.Fatalf("CodeOf(New) mismatch: got=%q want=%q", got, code)
	}
	if got := MessageOf(err); got != message {
		t.Fatalf("MessageOf(New) mismatch: got=%q want=%q", got, message)
	}
}

func TestCodeOf_RoundtripForTypedErrors(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testCodeOf_RoundtripForTypedErrors)
}

func testCodeOf_WrappedTypedError(t *rapid.T) {
	code := rapid.SampledFrom([]Code{
		InvalidArgument,
		NotFound,
		PermissionDenied,
		Unavailable,
		Internal,
	}).Draw(t, "code")
	message := rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "message")
	cause := errors.New(rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "cause"))

	err := Wrap(code, message, cause)
	wrapped := fmt.Errorf("outer: %w", err)

	if got := CodeOf(wrapped); got != code {
		t.Fatalf("CodeOf(wrapped) mismatch: got=%q want=%q", got, code)
	}
	if got := MessageOf(wrapped); got != message {
		t.Fatalf("MessageOf(wrapped) mismatch: got=%q want=%q", got, message)
	}
	if !errors.Is(wrapped, err) {
		t.Fatal("wrapped error should match the typed error")
	}
}

func TestCodeOf_WrappedTypedError(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testCodeOf_WrappedTypedError)
}

func TestMessageOf_UntypedErrorDoesNotLeak(t *testing.T) {
	t.Parallel()
	err := errors.New("dial tcp 192.168.15.6:8083: connection refused")
	if got := MessageOf(err); got != "internal error" {
		t.Fatalf("MessageOf(untyped) mismatch: got=%q", got)
	}
	if got := CodeOf(err); got != Internal {
		t.Fatalf("CodeOf(untyped) mismatch: got=%q", got)
	}
}

func TestFromHTTPStatus_Mapping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		want   Code
	}{
		{http.StatusBadRequest, InvalidArgument},
		{http.StatusUnauthorized, PermissionDenied},
		{http.StatusForbidden, PermissionDenied},
		{http.StatusNotFound, NotFound},
		{http.StatusConflict, Internal},
		{http.StatusInternalServerError, Unavailable},
		{http.StatusBadGateway, Unavailable},
	}
	for _, tc := range cases {
		if got := FromHTTPStatus(tc.status); got != tc.want {
			t.Fatalf("FromHTTPStatus(%d) mismatch: got=%q want=%q", tc.status, got, tc.want)
		}
	}
}

func TestHTTPStatus_RoundTripsFromHTTPStatus(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		code := rapid.SampledFrom([]Code{
			InvalidArgument,
			NotFound,
			PermissionDenied,
			Unavailable,
		}).Draw(rt, "code")
		status := HTTPStatus(code)
		if got := FromHTTPStatus(status); got != code {
			rt.Fatalf("round trip mismatch: code=%q status=%d got=%q", code, status, got)
		}
	})
}
