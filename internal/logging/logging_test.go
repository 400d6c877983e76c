package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		name      string
		verbosity int
		wantInfo  bool
		wantDebug bool
	}{
		{name: "quiet", verbosity: 0, wantInfo: false, wantDebug: false},
		{name: "verbose", verbosity: 1, wantInfo: true, wantDebug: false},
		{name: "debug", verbosity: 2, wantInfo: true, wantDebug: true},
		{name: "very verbose", verbosity: 5, wantInfo: true, wantDebug: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tc.verbosity)

			logger.Info().Msg("info line")
			logger.Debug().Msg("debug line")
			logger.Warn().Msg("warn line")

			out := buf.String()
			if got := strings.Contains(out, "info line"); got != tc.wantInfo {
				t.Errorf("info logged = %v, want %v (output %q)", got, tc.wantInfo, out)
			}
			if got := strings.Contains(out, "debug line"); got != tc.wantDebug {
				t.Errorf("debug logged = %v, want %v (output %q)", got, tc.wantDebug, out)
			}
			if !strings.Contains(out, "warn line") {
				t.Errorf("warn line missing from output %q", out)
			}
		})
	}
}
