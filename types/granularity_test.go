package types

import (
	"testing"
	"time"
)

func TestParseGranularity(t *testing.T) {
	cases := map[string]Granularity{
		"1min":    Granularity1Min,
		"5min":    Granularity5Min,
		"15min":   Granularity15Min,
		"30min":   Granularity30Min,
		"60min":   Granularity60Min,
		"":        Granularity60Min,
		"hourly":  Granularity60Min,
		"2 weeks": Granularity60Min,
	}
	for input, want := range cases {
		if got := ParseGranularity(input); got != want {
			t.Errorf("ParseGranularity(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestResolutionMinutes(t *testing.T) {
	cases := map[Granularity]int{
		Granularity1Min:  15,
		Granularity5Min:  15,
		Granularity15Min: 15,
		Granularity30Min: 30,
		Granularity60Min: 60,
	}
	for g, want := range cases {
		if got := g.ResolutionMinutes(); got != want {
			t.Errorf("%q.ResolutionMinutes() = %d, want %d", g, got, want)
		}
	}
}

func TestGranularityDuration(t *testing.T) {
	if d := Granularity5Min.Duration(); d != 5*time.Minute {
		t.Errorf("Duration() = %v, want 5m", d)
	}
	if d := Granularity60Min.Duration(); d != time.Hour {
		t.Errorf("Duration() = %v, want 1h", d)
	}
}
