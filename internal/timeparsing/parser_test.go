package timeparsing

import (
	"testing"
	"time"
)

// wednesday is Wednesday 6 March 2024, 10:00.
var wednesday = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

func TestParseCompactDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"+6h", wednesday.Add(6 * time.Hour)},
		{"-1d", wednesday.AddDate(0, 0, -1)},
		{"2w", wednesday.AddDate(0, 0, 14)},
		{"+1m", wednesday.AddDate(0, 1, 0)},
		{"1y", wednesday.AddDate(1, 0, 0)},
	}
	for _, tt := range tests {
		got, err := ParseCompactDuration(tt.input, wednesday)
		if err != nil {
			t.Fatalf("ParseCompactDuration(%q): %v", tt.input, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseCompactDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	for _, bad := range []string{"", "6", "+6x", "six days", "+-1d"} {
		if _, err := ParseCompactDuration(bad, wednesday); err == nil {
			t.Errorf("ParseCompactDuration(%q) expected error", bad)
		}
	}
}

func TestParseRelativeTimeLayers(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantDate  string
		wantClock string // empty means don't check
	}{
		{"compact", "+2d", "2024-03-08", "10:00"},
		{"date only", "2024-03-12", "2024-03-12", "00:00"},
		{"date and clock", "2024-03-12 14:30", "2024-03-12", "14:30"},
		{"rfc3339", "2024-03-12T09:15:00Z", "2024-03-12", "09:15"},
		{"tomorrow", "tomorrow", "2024-03-07", ""},
		{"next monday", "next monday", "2024-03-11", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, wednesday)
			if err != nil {
				t.Fatalf("ParseRelativeTime(%q): %v", tt.input, err)
			}
			date, clock := Slot(got)
			if date != tt.wantDate {
				t.Errorf("date = %s, want %s", date, tt.wantDate)
			}
			if tt.wantClock != "" && clock != tt.wantClock {
				t.Errorf("clock = %s, want %s", clock, tt.wantClock)
			}
		})
	}

	if _, err := ParseRelativeTime("not-a-date", wednesday); err == nil {
		t.Errorf("expected error for nonsense input")
	}
	if _, err := ParseRelativeTime("  ", wednesday); err == nil {
		t.Errorf("expected error for blank input")
	}
}

func TestHasClock(t *testing.T) {
	tests := map[string]bool{
		"2024-03-12":       false,
		"2024-03-12 14:30": true,
		"+2d":              false,
		"+3h":              true,
		"tomorrow":         false,
		"next friday 3pm":  true,
		"monday at 09:30":  true,
	}
	for input, want := range tests {
		if got := HasClock(input); got != want {
			t.Errorf("HasClock(%q) = %v, want %v", input, got, want)
		}
	}
}
