package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vanvugt/journal-gatewayd/internal/journal"
)

// FieldStream is a reduced variant of EntryStream that enumerates the
// distinct values of a single field. It omits follow/discrete but shares
// the same "scratch + rel" offset bookkeeping.
type FieldStream struct {
	adapter journal.Adapter
	mode    journal.OutputMode

	scratch bytes.Buffer
	rel     int

	done bool
	err  error
}

// NewFieldStream calls QueryUnique(field) on adapter and returns a
// FieldStream ready to enumerate its results.
func NewFieldStream(adapter journal.Adapter, field string, mode journal.OutputMode) (*FieldStream, error) {
	if err := adapter.QueryUnique(field); err != nil {
		return nil, err
	}
	return &FieldStream{adapter: adapter, mode: mode}, nil
}

// Read implements io.Reader.
func (s *FieldStream) Read(p []byte) (int, error) {
	for s.rel >= s.scratch.Len() {
		if s.err != nil {
			return 0, s.err
		}
		if s.done {
			return 0, io.EOF
		}

		kv, err := s.adapter.EnumerateUnique()
		if err == journal.ErrUnique {
			s.done = true
			return 0, io.EOF
		}
		if err != nil {
			s.done, s.err = true, err
			return 0, err
		}

		idx := bytes.IndexByte(kv, '=')
		if idx < 0 {
			s.done = true
			s.err = fmt.Errorf("fieldstream: malformed unique value %q, expected key=value", kv)
			return 0, s.err
		}
		key, value := string(kv[:idx]), string(kv[idx+1:])

		s.scratch.Reset()
		if s.mode == journal.ModeJSON {
			b, jerr := json.Marshal(value)
			if jerr != nil {
				s.done, s.err = true, jerr
				return 0, jerr
			}
			fmt.Fprintf(&s.scratch, "{ %q : %s }\n", key, b)
		} else {
			// Every non-JSON mode, including JsonSse and Export,
			// collapses to the same plain-value line here — preserved
			// intentionally, not a bug.
			s.scratch.WriteString(value)
			s.scratch.WriteByte('\n')
		}
		s.rel = 0
	}

	n := copy(p, s.scratch.Bytes()[s.rel:])
	s.rel += n
	return n, nil
}

// Close releases the underlying journal handle.
func (s *FieldStream) Close() error {
	return s.adapter.Close()
}

// fieldMIME selects the Content-Type for a field stream: only an exact
// JSON mode gets application/json, every other mode (including JsonSse
// and Export) collapses to text/plain.
func fieldMIME(mode journal.OutputMode) string {
	if mode == journal.ModeJSON {
		return journal.ModeJSON.ContentType()
	}
	return journal.ModeShort.ContentType()
}
