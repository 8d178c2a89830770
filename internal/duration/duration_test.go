package duration

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"60s", 60 * time.Second},
		{"10m", 10 * time.Minute},
		{"10h", 10 * time.Hour},
		{"10d", 10 * Day},
		{"10d2h", 10*Day + 2*time.Hour},
		{"1y", Year},
		{"1M", Month},
		{"2w", 2 * Week},
		{"1d 2h", Day + 2*time.Hour},
		{"  3 days 4 hours ", 3*Day + 4*time.Hour},
		{"1year 1month", Year + Month},
		{"250ms", 250 * time.Millisecond},
		{"0s", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"", "empty"},
		{"   ", "empty"},
		{"10", "time unit needed"},
		{"d", "expected number"},
		{"10x", "unknown time unit"},
		{"10D", "unknown time unit"},
		{"5d 3", "time unit needed"},
		{"99999999999999999999s", "too large"},
		{"400y", "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.input)
			}

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if !strings.Contains(perr.Reason, tt.reason) {
				t.Errorf("Reason = %q, want to contain %q", perr.Reason, tt.reason)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{90 * time.Second, "1m 30s"},
		{10*Day + 2*time.Hour, "10days 2h"},
		{Day, "1day"},
		{Year + Month + 3*Day, "1year 1month 3days"},
		{1500 * time.Millisecond, "1s 500ms"},
		{-time.Hour, "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Format(tt.d); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{time.Second, 36 * time.Hour, 400 * Day, 2*Year + 5*time.Minute} {
		got, err := Parse(Format(d))
		if err != nil {
			t.Fatalf("Parse(Format(%v)) error: %v", d, err)
		}
		if got != d {
			t.Errorf("round trip of %v gave %v", d, got)
		}
	}
}
