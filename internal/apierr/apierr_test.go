package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Parse:       http.StatusBadRequest,
		NotFound:    http.StatusNotFound,
		Server:      http.StatusInternalServerError,
		OOM:         http.StatusServiceUnavailable,
		StreamAbort: http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Errorf("%v.HTTPStatus() = %d, want %d", kind, got, want)
		}
	}
}

func TestNewError(t *testing.T) {
	err := New(Parse, "bad input")
	if err.Error() != "bad input" {
		t.Errorf("Error() = %q, want %q", err.Error(), "bad input")
	}
	if err.Unwrap() != nil {
		t.Error("expected New to produce no cause")
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Server, cause)
	if err.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", err.Error(), "boom")
	}
	if !errors.Is(err, cause) {
		t.Error("expected Wrap's error to unwrap to cause")
	}
}

func TestErrorsAsRoundTrip(t *testing.T) {
	var target error = Wrap(NotFound, errors.New("missing"))
	var apiErr *Error
	if !errors.As(target, &apiErr) {
		t.Fatal("expected errors.As to recover the *Error")
	}
	if apiErr.Kind != NotFound {
		t.Errorf("Kind = %v, want %v", apiErr.Kind, NotFound)
	}
}
