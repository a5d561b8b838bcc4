package httpapi

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/vanvugt/journal-gatewayd/internal/journal"
)

// followPollInterval bounds each Wait() call in follow mode. An unbounded
// wait would have no way to unblock on connection close, so this instead
// polls in short bounded waits and re-checks the request's context between
// them (see DESIGN.md).
const followPollInterval = 250 * time.Millisecond

// EntryStream is the entry stream generator: the central state machine
// that serializes successive journal entries into a scratch buffer and
// answers reads of arbitrary size at the caller's pace. It implements
// io.Reader: net/http (and io.Copy, bufio.Scanner, etc.) only ever request
// the next unread bytes in increasing order, so an absolute read offset is
// realized as the reader's implicit stream position rather than an
// explicit argument.
type EntryStream struct {
	adapter journal.Adapter
	mode    journal.OutputMode
	ctx     context.Context

	requestedCursor string
	discrete        bool
	follow          bool

	nSkip       int64
	nEntries    uint64
	nEntriesSet bool

	// scratch holds the bytes of the entry currently being drained.
	// rel is the number of scratch's bytes already copied out to callers.
	// Once rel reaches len(scratch), the entry is exhausted and the loop
	// serializes the next one into scratch.
	scratch bytes.Buffer
	rel     int

	done bool
	err  error
}

// EntryStreamOption configures an EntryStream at construction.
type EntryStreamOption func(*EntryStream)

// WithContext attaches a context whose cancellation interrupts a blocked
// follow wait between polls.
func WithContext(ctx context.Context) EntryStreamOption {
	return func(s *EntryStream) { s.ctx = ctx }
}

// NewEntryStream performs the initial seek, once, before returning a
// ready-to-read EntryStream. Matches in rc must already have been added to
// adapter by the caller.
func NewEntryStream(adapter journal.Adapter, rc *RequestContext, opts ...EntryStreamOption) (*EntryStream, error) {
	switch {
	case rc.Cursor != "":
		if err := adapter.SeekCursor(rc.Cursor); err != nil {
			return nil, err
		}
	case rc.NSkip >= 0:
		if err := adapter.SeekHead(); err != nil {
			return nil, err
		}
	default:
		if err := adapter.SeekTail(); err != nil {
			return nil, err
		}
	}

	s := &EntryStream{
		adapter:         adapter,
		mode:            rc.Mode,
		ctx:             context.Background(),
		requestedCursor: rc.Cursor,
		discrete:        rc.Discrete,
		follow:          rc.Follow,
		nSkip:           rc.NSkip,
		nEntries:        rc.NEntries,
		nEntriesSet:     rc.NEntriesSet,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Read implements io.Reader, advancing and serializing one entry at a
// time as the scratch buffer drains.
func (s *EntryStream) Read(p []byte) (int, error) {
	for s.rel >= s.scratch.Len() {
		if s.err != nil {
			return 0, s.err
		}
		if s.done {
			return 0, io.EOF
		}

		// 1. Termination by count.
		if s.nEntriesSet && s.nEntries == 0 {
			s.done = true
			return 0, io.EOF
		}

		// 2. Advance cursor.
		status, err := s.step()
		if err != nil {
			s.done, s.err = true, err
			return 0, err
		}

		// 3. Step result.
		if status == journal.StatusEndOfData {
			if !s.follow {
				s.done = true
				return 0, io.EOF
			}
			if waitErr := s.followWait(); waitErr != nil {
				s.done, s.err = true, waitErr
				return 0, waitErr
			}
			if s.ctx.Err() != nil {
				s.done = true
				return 0, io.EOF
			}
			continue
		}

		// 4. Discrete guard.
		if s.discrete {
			cur, err := s.adapter.CurrentCursor()
			if err != nil {
				s.done, s.err = true, err
				return 0, err
			}
			if cur != s.requestedCursor {
				s.done = true
				return 0, io.EOF
			}
		}

		// 5. Advance offset bookkeeping: skip applies only to the
		// first advance.
		s.nSkip = 0

		// 6. Serialize.
		s.scratch.Reset()
		if err := s.adapter.SerializeCurrent(&s.scratch, s.mode); err != nil {
			s.done, s.err = true, err
			return 0, err
		}
		s.rel = 0

		if s.nEntriesSet {
			s.nEntries--
		}
	}

	n := copy(p, s.scratch.Bytes()[s.rel:])
	s.rel += n
	return n, nil
}

// step performs the signed-skip-collapsing advance: the "+1" folds the
// first step after seek into the skip distance.
func (s *EntryStream) step() (journal.Status, error) {
	switch {
	case s.nSkip < 0:
		return s.adapter.PreviousSkip(uint64(-s.nSkip) + 1)
	case s.nSkip > 0:
		return s.adapter.NextSkip(uint64(s.nSkip) + 1)
	default:
		return s.adapter.Next()
	}
}

func (s *EntryStream) followWait() error {
	for {
		result, err := s.adapter.Wait(followPollInterval)
		if err != nil {
			return err
		}
		if s.ctx.Err() != nil {
			return nil
		}
		if result != journal.WaitTimeout {
			return nil
		}
	}
}

// Close releases the underlying journal handle. The handler owns this
// call via deferred cleanup.
func (s *EntryStream) Close() error {
	return s.adapter.Close()
}
