// Package journal isolates the journal-gatewayd HTTP stream machine from the
// opaque journal store it serves. Adapter is the only contact point between
// the two: everything the HTTP layer needs from journald is expressed here
// so that the stream generators (see package httpapi) can be exercised
// against an in-memory fake instead of a real journal.
package journal

import (
	"errors"
	"io"
	"time"
)

// Status is the outcome of a cursor-moving or data-reading Adapter call.
// It mirrors the sd_journal_* convention: positive means "moved/found",
// zero means "no more data", and negative means "failure".
type Status int

const (
	// StatusEndOfData is returned when a step operation finds nothing
	// further to return. It is never an error.
	StatusEndOfData Status = 0
)

// WaitResult is the outcome of a call to Adapter.Wait.
type WaitResult int

const (
	// WaitTimeout means the deadline elapsed with no journal change.
	WaitTimeout WaitResult = iota
	// WaitAppend means new entries are available.
	WaitAppend
	// WaitInvalidate means the journal's file set changed (rotation,
	// vacuum); the caller should treat this the same as WaitAppend and
	// re-check for data.
	WaitInvalidate
)

// ErrCursorMismatch is returned by TestCursor when the journal's current
// position does not correspond to the supplied cursor.
var ErrCursorMismatch = errors.New("journal: cursor mismatch")

// ErrUnique is returned by EnumerateUnique to signal no further unique
// values are available; it is handled the same way as io.EOF by callers.
var ErrUnique = io.EOF

// Match is a single field-equality constraint (KEY=VALUE) added to a journal
// handle with AddMatch. A cleared match set imposes no restriction.
type Match struct {
	Field string
	Value string
}

// String renders the match in the wire form the journal store expects.
func (m Match) String() string {
	return m.Field + "=" + m.Value
}

// Adapter is a thin, mockable abstraction over an opened journal cursor.
// Every operation returns a Status or explicit error; a negative/failure
// Status is always surfaced as a non-nil error instead, since Go favors
// explicit error returns over sentinel return codes.
type Adapter interface {
	// AddMatch adds a field-equality constraint to the current match
	// group. Within a group, matches on the same field are ORed and
	// matches on different fields are ANDed, as with sd_journal_add_match.
	AddMatch(m Match) error

	// AddDisjunction inserts an OR boundary between previously added
	// matches and any added afterwards.
	AddDisjunction() error

	// SeekHead positions the cursor before the first entry.
	SeekHead() error

	// SeekTail positions the cursor after the last entry.
	SeekTail() error

	// SeekCursor positions the cursor at the entry identified by c.
	SeekCursor(c string) error

	// TestCursor reports whether the entry at the current position has
	// cursor c. Returns ErrCursorMismatch if not.
	TestCursor(c string) error

	// Next advances one entry forward. Returns StatusEndOfData if there
	// is no next entry.
	Next() (Status, error)

	// Previous steps one entry backward. Returns StatusEndOfData if
	// there is no previous entry.
	Previous() (Status, error)

	// NextSkip advances n entries forward in one call.
	NextSkip(n uint64) (Status, error)

	// PreviousSkip steps n entries backward in one call.
	PreviousSkip(n uint64) (Status, error)

	// Wait blocks until new data arrives, the journal is invalidated, or
	// timeout elapses, whichever is first.
	Wait(timeout time.Duration) (WaitResult, error)

	// QueryUnique prepares enumeration of the distinct values of field.
	QueryUnique(field string) error

	// EnumerateUnique returns the next "field=value" pair prepared by
	// QueryUnique, or ErrUnique once exhausted.
	EnumerateUnique() ([]byte, error)

	// GetUsage returns the on-disk byte size of the journal.
	GetUsage() (uint64, error)

	// GetCutoffRealtime returns the earliest and latest entry
	// timestamps (microseconds since epoch) the journal currently
	// retains.
	GetCutoffRealtime() (from, to uint64, err error)

	// SerializeCurrent writes the entry at the current position to w in
	// the given mode's wire format.
	SerializeCurrent(w io.Writer, mode OutputMode) error

	// CurrentCursor returns the opaque cursor of the entry at the
	// current position.
	CurrentCursor() (string, error)

	// Close releases the underlying journal handle. Safe to call once.
	Close() error
}

// OutputMode is the wire representation requested for a stream of entries.
type OutputMode int

const (
	// ModeShort is the default, human-readable single-line form.
	ModeShort OutputMode = iota
	// ModeJSON is the structured JSON form, one object per line.
	ModeJSON
	// ModeJSONSSE is ModeJSON wrapped as a Server-Sent Event.
	ModeJSONSSE
	// ModeExport is the journal's native binary export form.
	ModeExport
)

// String implements fmt.Stringer for log messages.
func (m OutputMode) String() string {
	switch m {
	case ModeJSON:
		return "json"
	case ModeJSONSSE:
		return "json-sse"
	case ModeExport:
		return "export"
	default:
		return "short"
	}
}

// ContentType returns the MIME type associated with the mode.
func (m OutputMode) ContentType() string {
	switch m {
	case ModeJSON:
		return "application/json"
	case ModeJSONSSE:
		return "text/event-stream"
	case ModeExport:
		return "application/vnd.fdo.journal"
	default:
		return "text/plain"
	}
}

// ModeFromAccept maps an Accept header value to an OutputMode, defaulting
// to ModeShort for anything unrecognized. An unrecognized Accept is never
// an error.
func ModeFromAccept(accept string) OutputMode {
	switch accept {
	case "application/json":
		return ModeJSON
	case "text/event-stream":
		return ModeJSONSSE
	case "application/vnd.fdo.journal":
		return ModeExport
	default:
		return ModeShort
	}
}
