// Package apierr shapes uniform error responses: every Kind maps to
// exactly one HTTP status, and every failure response is text/plain with
// a trailing newline.
package apierr

import "net/http"

// Kind classifies a request failure for the purpose of choosing an HTTP
// status code.
type Kind int

const (
	// Parse covers bad Range/query syntax, a missing cursor under
	// discrete mode, or a failed seek during parsing.
	Parse Kind = iota
	// NotFound covers unknown URLs and missing static assets.
	NotFound
	// Server covers journal-open, ID-lookup, and stat failures.
	Server
	// OOM covers allocation failure anywhere in the request path.
	OOM
	// StreamAbort covers adapter failures discovered mid-stream, after
	// headers have already been committed; there is no body left to
	// shape, only a closed connection.
	StreamAbort
)

// HTTPStatus returns the status code assigned to k.
func (k Kind) HTTPStatus() int {
	switch k {
	case Parse:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Server:
		return http.StatusInternalServerError
	case OOM:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a Kind-tagged error carrying the message shown to the client and
// optionally the lower-level cause logged server-side.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind around cause, using cause's own
// message as the client-visible text.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: cause.Error(), Cause: cause}
}

// OutOfMemory is the fixed body written for every OOM response.
const OutOfMemory = "Out of memory.\n"
