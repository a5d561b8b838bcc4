// Package httpapi implements the HTTP gateway: the request context, the
// header/query parser, the entry and field stream generators, the router,
// the machine metadata handler, and the error responder.
package httpapi

import (
	"github.com/vanvugt/journal-gatewayd/internal/journal"
)

// RequestContext is the per-connection record built while parsing a
// request. A handler goroutine owns one RequestContext value on its stack
// for the lifetime of the request and releases its journal with a
// deferred Close.
type RequestContext struct {
	Mode journal.OutputMode

	// Cursor is the entry self-identifier the request was anchored on,
	// if any.
	Cursor string

	// NSkip is signed: negative walks backward from the seek point,
	// positive walks forward past it, zero emits forward from exactly
	// the seek point.
	NSkip int64

	// NEntries is the remaining entry budget; NEntriesSet distinguishes
	// "0 left" from "unbounded".
	NEntries    uint64
	NEntriesSet bool

	Follow   bool
	Discrete bool

	// Matches accumulates field-equality constraints applied to the
	// journal before the first seek.
	Matches []journal.Match

	// ParseErr is the deferred error set by the query-argument iterator;
	// preserved so only one error is ever reported, in iteration order.
	ParseErr error
}

// Validate checks the invariants the parser alone cannot guarantee:
// discrete mode requires a cursor, and a set entry count must be
// positive. Called once parsing is complete, before a journal is opened.
func (c *RequestContext) Validate() error {
	if c.Discrete && c.Cursor == "" {
		return errDiscreteNeedsCursor
	}
	if c.NEntriesSet && c.NEntries == 0 {
		return errZeroCount
	}
	return nil
}
