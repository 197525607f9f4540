package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q): got %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestNew_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", Format: "json", Output: &buf}).WithComponent("catalogs").WithCategory("item")
	l.Debug().Msg("hidden")
	l.Info().Int("entries", 3).Msg("processed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("lines: got %d want 1 (%s)", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(lines[0], &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["component"] != "catalogs" || rec["category"] != "item" || rec["message"] != "processed" {
		t.Fatalf("record: got %v", rec)
	}
	if rec["entries"] != float64(3) {
		t.Fatalf("entries: got %v", rec["entries"])
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "error", Output: &buf, Verbose: true})
	l.Debug().Msg("shown")
	if buf.Len() == 0 {
		t.Fatalf("verbose logger dropped debug message")
	}
}
