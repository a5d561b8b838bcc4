// Package journaltest provides an in-memory fake of journal.Adapter so the
// HTTP stream generators (package httpapi) can be unit tested without a
// real systemd journal.
package journaltest

import (
	"io"
	"sync"
	"time"

	"github.com/vanvugt/journal-gatewayd/internal/journal"
)

// andGroup is a set of field=value constraints. Matches on the same field
// are ORed together; matches on different fields are ANDed, mirroring
// sd_journal_add_match's own same-field-OR behavior within one conjunction.
type andGroup []journal.Match

func (g andGroup) matches(e journal.Entry) bool {
	byField := make(map[string][]string, len(g))
	for _, m := range g {
		byField[m.Field] = append(byField[m.Field], m.Value)
	}
	for field, values := range byField {
		fieldMatched := false
		for _, v := range values {
			if e.Fields[field] == v {
				fieldMatched = true
				break
			}
		}
		if !fieldMatched {
			return false
		}
	}
	return true
}

// Fake is an in-memory journal.Adapter. The zero value is not usable; build
// one with New.
type Fake struct {
	mu sync.Mutex

	entries []journal.Entry
	pos     int // -1 = before head, len(entries) = after tail

	groups     []andGroup
	closed     bool
	usageBytes uint64
	cutoffFrom uint64
	cutoffTo   uint64

	uniqueField  string
	uniqueValues []string
	uniqueIdx    int

	appended chan struct{}
}

// New returns a Fake seeded with entries, positioned before the head (as a
// freshly opened journal handle is).
func New(entries []journal.Entry) *Fake {
	return &Fake{
		entries:  append([]journal.Entry(nil), entries...),
		pos:      -1,
		groups:   []andGroup{{}},
		appended: make(chan struct{}, 1),
	}
}

// Append adds an entry to the tail, as if a new log line had just arrived.
// It wakes any goroutine blocked in Wait.
func (f *Fake) Append(e journal.Entry) {
	f.mu.Lock()
	f.entries = append(f.entries, e)
	f.mu.Unlock()

	select {
	case f.appended <- struct{}{}:
	default:
	}
}

// SetUsage configures the value returned by GetUsage.
func (f *Fake) SetUsage(n uint64) { f.usageBytes = n }

// SetCutoff configures the values returned by GetCutoffRealtime.
func (f *Fake) SetCutoff(from, to uint64) { f.cutoffFrom, f.cutoffTo = from, to }

func (f *Fake) currentGroup() *andGroup {
	return &f.groups[len(f.groups)-1]
}

func (f *Fake) AddMatch(m journal.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.currentGroup()
	*g = append(*g, m)
	return nil
}

func (f *Fake) AddDisjunction() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, andGroup{})
	return nil
}

func (f *Fake) matches(e journal.Entry) bool {
	for _, g := range f.groups {
		if len(g) == 0 {
			continue
		}
		if g.matches(e) {
			return true
		}
	}
	// no non-empty group at all means no constraint was ever added.
	for _, g := range f.groups {
		if len(g) > 0 {
			return false
		}
	}
	return true
}

func (f *Fake) SeekHead() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = -1
	return nil
}

func (f *Fake) SeekTail() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = len(f.entries)
	return nil
}

func (f *Fake) SeekCursor(c string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.Cursor == c {
			f.pos = i - 1
			return nil
		}
	}
	return journal.ErrCursorMismatch
}

func (f *Fake) TestCursor(c string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pos < 0 || f.pos >= len(f.entries) {
		return journal.ErrCursorMismatch
	}
	if f.entries[f.pos].Cursor != c {
		return journal.ErrCursorMismatch
	}
	return nil
}

func (f *Fake) Next() (journal.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for p := f.pos + 1; p < len(f.entries); p++ {
		if f.matches(f.entries[p]) {
			f.pos = p
			return 1, nil
		}
	}
	// As with sd_journal_next, end of data leaves the position unchanged,
	// so an entry appended later is found by the next call.
	return journal.StatusEndOfData, nil
}

func (f *Fake) Previous() (journal.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for p := f.pos - 1; p >= 0; p-- {
		if f.matches(f.entries[p]) {
			f.pos = p
			return 1, nil
		}
	}
	f.pos = -1
	return journal.StatusEndOfData, nil
}

func (f *Fake) NextSkip(n uint64) (journal.Status, error) {
	var moved uint64
	for ; moved < n; moved++ {
		s, err := f.Next()
		if err != nil {
			return 0, err
		}
		if s == journal.StatusEndOfData {
			break
		}
	}
	return journal.Status(moved), nil
}

func (f *Fake) PreviousSkip(n uint64) (journal.Status, error) {
	var moved uint64
	for ; moved < n; moved++ {
		s, err := f.Previous()
		if err != nil {
			return 0, err
		}
		if s == journal.StatusEndOfData {
			break
		}
	}
	return journal.Status(moved), nil
}

// Wait blocks until Append is called or timeout elapses. A zero or negative
// timeout waits forever.
func (f *Fake) Wait(timeout time.Duration) (journal.WaitResult, error) {
	if timeout <= 0 {
		<-f.appended
		return journal.WaitAppend, nil
	}

	select {
	case <-f.appended:
		return journal.WaitAppend, nil
	case <-time.After(timeout):
		return journal.WaitTimeout, nil
	}
}

func (f *Fake) QueryUnique(field string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := map[string]bool{}
	var values []string
	for _, e := range f.entries {
		v, ok := e.Fields[field]
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	f.uniqueField = field
	f.uniqueValues = values
	f.uniqueIdx = 0
	return nil
}

// EnumerateUnique returns "field=value" pairs, matching the wire shape of
// sd_journal_enumerate_unique.
func (f *Fake) EnumerateUnique() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uniqueIdx >= len(f.uniqueValues) {
		return nil, journal.ErrUnique
	}
	v := f.uniqueValues[f.uniqueIdx]
	f.uniqueIdx++
	return []byte(f.uniqueField + "=" + v), nil
}

func (f *Fake) GetUsage() (uint64, error) {
	return f.usageBytes, nil
}

func (f *Fake) GetCutoffRealtime() (from, to uint64, err error) {
	return f.cutoffFrom, f.cutoffTo, nil
}

func (f *Fake) SerializeCurrent(w io.Writer, mode journal.OutputMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pos < 0 || f.pos >= len(f.entries) {
		return io.EOF
	}
	return journal.WriteEntry(w, f.entries[f.pos], mode)
}

func (f *Fake) CurrentCursor() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pos < 0 || f.pos >= len(f.entries) {
		return "", io.EOF
	}
	return f.entries[f.pos].Cursor, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close has been called, for test assertions.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
