package httpapi

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/vanvugt/journal-gatewayd/internal/journal"
	"github.com/vanvugt/journal-gatewayd/internal/journal/journaltest"
)

func entry(cursor, message string, realtime uint64) journal.Entry {
	return journal.Entry{
		Fields:            map[string]string{"MESSAGE": message, "_HOSTNAME": "host", "_SYSTEMD_UNIT": "unit.service"},
		Cursor:            cursor,
		RealtimeTimestamp: realtime,
	}
}

func drain(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected read error: %s", err)
	}
	return string(b)
}

func TestEntryStreamForwardAll(t *testing.T) {
	fake := journaltest.New([]journal.Entry{
		entry("c1", "one", 1_000_000),
		entry("c2", "two", 2_000_000),
		entry("c3", "three", 3_000_000),
	})

	rc := &RequestContext{Mode: journal.ModeShort}
	stream, err := NewEntryStream(fake, rc)
	if err != nil {
		t.Fatal(err)
	}

	got := drain(t, stream)
	for _, want := range []string{"one", "two", "three"} {
		if !contains(got, want) {
			t.Fatalf("expected output to contain %q, got %q", want, got)
		}
	}
}

func TestEntryStreamTailOne(t *testing.T) {
	fake := journaltest.New([]journal.Entry{
		entry("c1", "one", 1_000_000),
		entry("c2", "two", 2_000_000),
		entry("c3", "three", 3_000_000),
	})

	rc := &RequestContext{Mode: journal.ModeShort}
	if err := ParseRangeValue("entries=:-1:1", rc); err != nil {
		t.Fatal(err)
	}

	stream, err := NewEntryStream(fake, rc)
	if err != nil {
		t.Fatal(err)
	}

	got := drain(t, stream)
	if !contains(got, "three") || contains(got, "two") || contains(got, "one") {
		t.Fatalf("expected only the tail entry, got %q", got)
	}
}

func TestEntryStreamDiscreteMatch(t *testing.T) {
	fake := journaltest.New([]journal.Entry{
		entry("c1", "one", 1_000_000),
		entry("c2", "two", 2_000_000),
	})

	rc := &RequestContext{Mode: journal.ModeShort, Cursor: "c2", Discrete: true}
	stream, err := NewEntryStream(fake, rc)
	if err != nil {
		t.Fatal(err)
	}

	got := drain(t, stream)
	if !contains(got, "two") || contains(got, "one") {
		t.Fatalf("expected exactly the c2 entry, got %q", got)
	}
}

func TestEntryStreamDiscreteMismatchIsEmpty(t *testing.T) {
	fake := journaltest.New([]journal.Entry{
		entry("c1", "one", 1_000_000),
		entry("c2", "two", 2_000_000),
	})

	// Skip past c1 to c2 while asking for exactly c1: a probe that must
	// terminate empty since the cursor after skipping no longer matches
	// the requested one.
	rc := &RequestContext{Mode: journal.ModeShort, Cursor: "c1", Discrete: true, NSkip: 1}
	stream, err := NewEntryStream(fake, rc)
	if err != nil {
		t.Fatal(err)
	}

	got := drain(t, stream)
	if got != "" {
		t.Fatalf("expected empty body on cursor mismatch, got %q", got)
	}
}

func TestEntryStreamFollowBlocksThenYieldsAppendedEntry(t *testing.T) {
	fake := journaltest.New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc := &RequestContext{Mode: journal.ModeShort, Follow: true}
	stream, err := NewEntryStream(fake, rc, WithContext(ctx))
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan string, 1)
	go func() {
		buf := make([]byte, 4096)
		n, _ := stream.Read(buf)
		done <- string(buf[:n])
	}()

	select {
	case <-done:
		t.Fatal("follow stream should have blocked with no entries appended")
	case <-time.After(300 * time.Millisecond):
	}

	fake.Append(entry("c1", "hello", 1_000_000))

	select {
	case got := <-done:
		if !contains(got, "hello") {
			t.Fatalf("expected the appended entry, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("follow stream never unblocked after Append")
	}
}

func TestEntryStreamTerminatesOnCountReachingZero(t *testing.T) {
	fake := journaltest.New([]journal.Entry{
		entry("c1", "one", 1_000_000),
		entry("c2", "two", 2_000_000),
		entry("c3", "three", 3_000_000),
	})

	rc := &RequestContext{Mode: journal.ModeShort, NEntries: 2, NEntriesSet: true}
	stream, err := NewEntryStream(fake, rc)
	if err != nil {
		t.Fatal(err)
	}

	got := drain(t, stream)
	if contains(got, "three") {
		t.Fatalf("expected at most 2 entries, got %q", got)
	}
	if !contains(got, "one") || !contains(got, "two") {
		t.Fatalf("expected the first 2 entries, got %q", got)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
