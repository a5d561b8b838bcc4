package journal

import "testing"

func TestModeFromAccept(t *testing.T) {
	cases := map[string]OutputMode{
		"application/json":            ModeJSON,
		"text/event-stream":           ModeJSONSSE,
		"application/vnd.fdo.journal": ModeExport,
		"":                            ModeShort,
		"text/html":                   ModeShort,
	}
	for accept, want := range cases {
		if got := ModeFromAccept(accept); got != want {
			t.Errorf("ModeFromAccept(%q) = %v, want %v", accept, got, want)
		}
	}
}

func TestOutputModeContentType(t *testing.T) {
	cases := map[OutputMode]string{
		ModeShort:   "text/plain",
		ModeJSON:    "application/json",
		ModeJSONSSE: "text/event-stream",
		ModeExport:  "application/vnd.fdo.journal",
	}
	for mode, want := range cases {
		if got := mode.ContentType(); got != want {
			t.Errorf("%v.ContentType() = %q, want %q", mode, got, want)
		}
	}
}

func TestMatchString(t *testing.T) {
	m := Match{Field: "_SYSTEMD_UNIT", Value: "demo.service"}
	if got, want := m.String(), "_SYSTEMD_UNIT=demo.service"; got != want {
		t.Errorf("Match.String() = %q, want %q", got, want)
	}
}
