package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Entry is the store-agnostic view of a single journal record. Both the
// sdjournal-backed adapter and the in-memory fake (package journaltest)
// serialize through these helpers so the four wire formats have exactly one
// implementation each.
type Entry struct {
	Fields             map[string]string
	Cursor             string
	MonotonicTimestamp uint64
	RealtimeTimestamp  uint64
}

// WriteEntry serializes e to w in the given mode's wire format.
func WriteEntry(w io.Writer, e Entry, mode OutputMode) error {
	switch mode {
	case ModeJSON, ModeJSONSSE:
		return writeJSONEntry(w, e, mode == ModeJSONSSE)
	case ModeExport:
		return writeExportEntry(w, e)
	default:
		return writeShortEntry(w, e)
	}
}

func writeShortEntry(w io.Writer, e Entry) error {
	t := time.Unix(int64(e.RealtimeTimestamp)/1e6, 0)
	hostname := e.Fields["_HOSTNAME"]
	unit := e.Fields["_SYSTEMD_UNIT"]
	if unit == "" {
		unit = e.Fields["SYSLOG_IDENTIFIER"]
	}
	pid := e.Fields["_PID"]
	message := e.Fields["MESSAGE"]

	var line string
	if pid != "" {
		line = fmt.Sprintf("%s %s %s[%s]: %s\n", t.Format(time.Stamp), hostname, unit, pid, message)
	} else {
		line = fmt.Sprintf("%s %s %s: %s\n", t.Format(time.Stamp), hostname, unit, message)
	}
	_, err := io.WriteString(w, line)
	return err
}

type wireEntry struct {
	Fields             map[string]string `json:"fields"`
	Cursor             string            `json:"cursor"`
	MonotonicTimestamp uint64            `json:"monotonic_timestamp"`
	RealtimeTimestamp  uint64            `json:"realtime_timestamp"`
}

func writeJSONEntry(w io.Writer, e Entry, sse bool) error {
	b, err := json.Marshal(wireEntry{
		Fields:             e.Fields,
		Cursor:             e.Cursor,
		MonotonicTimestamp: e.MonotonicTimestamp,
		RealtimeTimestamp:  e.RealtimeTimestamp,
	})
	if err != nil {
		return err
	}

	if sse {
		if _, err := fmt.Fprintf(w, "id: %s\n", e.Cursor); err != nil {
			return err
		}
		if _, err := w.Write([]byte("data: ")); err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
		_, err = w.Write([]byte("\n\n"))
		return err
	}

	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

// writeExportEntry renders the journal's native export format: a header
// line per field, with a length-prefixed form for binary-safe values that
// contain a newline. See systemd's "Journal Export Format".
func writeExportEntry(w io.Writer, e Entry) error {
	if _, err := fmt.Fprintf(w, "__CURSOR=%s\n", e.Cursor); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "__REALTIME_TIMESTAMP=%d\n", e.RealtimeTimestamp); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "__MONOTONIC_TIMESTAMP=%d\n", e.MonotonicTimestamp); err != nil {
		return err
	}

	for k, v := range e.Fields {
		if strings.ContainsRune(v, '\n') {
			if _, err := fmt.Fprintf(w, "%s\n", k); err != nil {
				return err
			}
			var lenBuf [8]byte
			for i := range lenBuf {
				lenBuf[i] = byte(len(v) >> (8 * uint(i)))
			}
			if _, err := w.Write(lenBuf[:]); err != nil {
				return err
			}
			if _, err := io.WriteString(w, v); err != nil {
				return err
			}
			if _, err := w.Write([]byte{'\n'}); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, v); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
