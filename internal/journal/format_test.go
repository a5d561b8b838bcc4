package journal

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func sampleEntry() Entry {
	return Entry{
		Fields: map[string]string{
			"MESSAGE":       "hello world",
			"_HOSTNAME":     "box",
			"_SYSTEMD_UNIT": "demo.service",
			"_PID":          "123",
		},
		Cursor:             "s=abc;i=1",
		MonotonicTimestamp: 42,
		RealtimeTimestamp:  1_600_000_000_000_000,
	}
}

func TestWriteEntryShort(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEntry(&buf, sampleEntry(), ModeShort); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{"box", "demo.service[123]", "hello world"} {
		if !strings.Contains(got, want) {
			t.Errorf("short entry %q missing %q", got, want)
		}
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("short entry should end in a newline, got %q", got)
	}
}

func TestWriteEntryShortWithoutPID(t *testing.T) {
	e := sampleEntry()
	delete(e.Fields, "_PID")

	var buf bytes.Buffer
	if err := WriteEntry(&buf, e, ModeShort); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "[") {
		t.Errorf("entry without a PID should omit brackets, got %q", buf.String())
	}
}

func TestWriteEntryJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEntry(&buf, sampleEntry(), ModeJSON); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if strings.HasPrefix(got, "id:") || strings.HasPrefix(got, "data:") {
		t.Fatalf("plain JSON mode should not be SSE-framed, got %q", got)
	}
	for _, want := range []string{`"cursor":"s=abc;i=1"`, `"MESSAGE":"hello world"`} {
		if !strings.Contains(got, want) {
			t.Errorf("json entry %q missing %q", got, want)
		}
	}
}

func TestWriteEntryJSONSSE(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEntry(&buf, sampleEntry(), ModeJSONSSE); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "id: s=abc;i=1\n") {
		t.Fatalf("sse entry should start with an id: line, got %q", got)
	}
	if !strings.Contains(got, "data: ") {
		t.Fatalf("sse entry should contain a data: line, got %q", got)
	}
	if !strings.HasSuffix(got, "\n\n") {
		t.Fatalf("sse entry should end with a blank line, got %q", got)
	}
}

func TestWriteEntryExport(t *testing.T) {
	e := sampleEntry()
	e.Fields["MULTILINE"] = "line one\nline two"

	var buf bytes.Buffer
	if err := WriteEntry(&buf, e, ModeExport); err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	if !strings.Contains(got, "__CURSOR=s=abc;i=1\n") {
		t.Fatalf("export entry missing __CURSOR line, got %q", got)
	}
	if !strings.Contains(got, "__REALTIME_TIMESTAMP=1600000000000000\n") {
		t.Fatalf("export entry missing realtime timestamp, got %q", got)
	}
	if !strings.Contains(got, "MESSAGE=hello world\n") {
		t.Fatalf("export entry missing a plain field, got %q", got)
	}

	idx := strings.Index(got, "MULTILINE\n")
	if idx < 0 {
		t.Fatalf("export entry missing a binary-safe field header, got %q", got)
	}
	lenStart := idx + len("MULTILINE\n")
	n := binary.LittleEndian.Uint64([]byte(got[lenStart : lenStart+8]))
	if int(n) != len("line one\nline two") {
		t.Fatalf("length-prefixed field length = %d, want %d", n, len("line one\nline two"))
	}
	value := got[lenStart+8 : lenStart+8+int(n)]
	if value != "line one\nline two" {
		t.Fatalf("length-prefixed field value = %q", value)
	}

	if !strings.HasSuffix(got, "\n\n") {
		t.Fatalf("export entry should end with a blank line, got %q", got)
	}
}
