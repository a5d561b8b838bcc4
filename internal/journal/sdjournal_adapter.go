package journal

import (
	"fmt"
	"io"
	"time"

	"github.com/coreos/go-systemd/sdjournal"
)

// sdjournalAdapter implements Adapter against a real, local systemd
// journal via github.com/coreos/go-systemd/sdjournal. It is the production
// counterpart to journaltest.Fake.
type sdjournalAdapter struct {
	j *sdjournal.Journal

	uniqueField  string
	uniqueValues []string
	uniqueIdx    int
}

// Open opens the local, system-only journal: no user journals, no remote
// journals.
func Open() (Adapter, error) {
	j, err := sdjournal.NewJournal()
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	return &sdjournalAdapter{j: j}, nil
}

func (a *sdjournalAdapter) AddMatch(m Match) error {
	return a.j.AddMatch(m.String())
}

func (a *sdjournalAdapter) AddDisjunction() error {
	return a.j.AddDisjunction()
}

func (a *sdjournalAdapter) SeekHead() error {
	return a.j.SeekHead()
}

func (a *sdjournalAdapter) SeekTail() error {
	return a.j.SeekTail()
}

func (a *sdjournalAdapter) SeekCursor(c string) error {
	return a.j.SeekCursor(c)
}

func (a *sdjournalAdapter) TestCursor(c string) error {
	if err := a.j.TestCursor(c); err != nil {
		return fmt.Errorf("%w: %s", ErrCursorMismatch, err)
	}
	return nil
}

func (a *sdjournalAdapter) Next() (Status, error) {
	n, err := a.j.Next()
	if err != nil {
		return 0, err
	}
	return Status(n), nil
}

func (a *sdjournalAdapter) Previous() (Status, error) {
	n, err := a.j.Previous()
	if err != nil {
		return 0, err
	}
	return Status(n), nil
}

func (a *sdjournalAdapter) NextSkip(n uint64) (Status, error) {
	c, err := a.j.NextSkip(n)
	if err != nil {
		return 0, err
	}
	return Status(c), nil
}

func (a *sdjournalAdapter) PreviousSkip(n uint64) (Status, error) {
	c, err := a.j.PreviousSkip(n)
	if err != nil {
		return 0, err
	}
	return Status(c), nil
}

func (a *sdjournalAdapter) Wait(timeout time.Duration) (WaitResult, error) {
	switch a.j.Wait(timeout) {
	case sdjournal.SD_JOURNAL_APPEND:
		return WaitAppend, nil
	case sdjournal.SD_JOURNAL_INVALIDATE:
		return WaitInvalidate, nil
	default:
		return WaitTimeout, nil
	}
}

func (a *sdjournalAdapter) QueryUnique(field string) error {
	values, err := a.j.GetUniqueValues(field)
	if err != nil {
		return fmt.Errorf("journal: query unique %s: %w", field, err)
	}
	a.uniqueField = field
	a.uniqueValues = values
	a.uniqueIdx = 0
	return nil
}

// EnumerateUnique returns "field=value" pairs. The sdjournal binding
// already strips the "FIELD=" prefix off each raw libsystemd value, so it
// is reattached here to match the wire shape sd_journal_enumerate_unique
// itself produces.
func (a *sdjournalAdapter) EnumerateUnique() ([]byte, error) {
	if a.uniqueIdx >= len(a.uniqueValues) {
		return nil, ErrUnique
	}
	v := a.uniqueValues[a.uniqueIdx]
	a.uniqueIdx++
	return []byte(a.uniqueField + "=" + v), nil
}

func (a *sdjournalAdapter) GetUsage() (uint64, error) {
	return a.j.GetUsage()
}

func (a *sdjournalAdapter) GetCutoffRealtime() (from, to uint64, err error) {
	// sd_journal_get_cutoff_realtime_usec is not exposed by the
	// sdjournal binding, so cutoffs are derived from the oldest/newest
	// entries using a throwaway handle, leaving this adapter's own
	// cursor position untouched.
	probe, err := sdjournal.NewJournal()
	if err != nil {
		return 0, 0, fmt.Errorf("journal: cutoff: open: %w", err)
	}
	defer probe.Close()

	if err := probe.SeekHead(); err != nil {
		return 0, 0, fmt.Errorf("journal: cutoff: seek head: %w", err)
	}
	if n, err := probe.Next(); err != nil {
		return 0, 0, fmt.Errorf("journal: cutoff: next: %w", err)
	} else if n > 0 {
		entry, err := probe.GetEntry()
		if err != nil {
			return 0, 0, fmt.Errorf("journal: cutoff: head entry: %w", err)
		}
		from = entry.RealtimeTimestamp
	}

	if err := probe.SeekTail(); err != nil {
		return 0, 0, fmt.Errorf("journal: cutoff: seek tail: %w", err)
	}
	if n, err := probe.Previous(); err != nil {
		return 0, 0, fmt.Errorf("journal: cutoff: previous: %w", err)
	} else if n > 0 {
		entry, err := probe.GetEntry()
		if err != nil {
			return 0, 0, fmt.Errorf("journal: cutoff: tail entry: %w", err)
		}
		to = entry.RealtimeTimestamp
	}

	return from, to, nil
}

func (a *sdjournalAdapter) SerializeCurrent(w io.Writer, mode OutputMode) error {
	entry, err := a.j.GetEntry()
	if err != nil {
		return fmt.Errorf("journal: serialize: %w", err)
	}

	return WriteEntry(w, Entry{
		Fields:             entry.Fields,
		Cursor:             entry.Cursor,
		MonotonicTimestamp: entry.MonotonicTimestamp,
		RealtimeTimestamp:  entry.RealtimeTimestamp,
	}, mode)
}

func (a *sdjournalAdapter) CurrentCursor() (string, error) {
	return a.j.GetCursor()
}

func (a *sdjournalAdapter) Close() error {
	return a.j.Close()
}
