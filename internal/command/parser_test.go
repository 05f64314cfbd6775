package command

import (
	"testing"
	"time"

	"github.com/hammamikhairi/brewguide/internal/logger"
)

func TestParse(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(log, 5*time.Second)

	tests := []struct {
		input     string
		wantKind  Kind
		wantDelta time.Duration
		wantAt    time.Duration
	}{
		// Clock hold
		{"pause", Pause, 0, 0},
		{"HOLD", Pause, 0, 0},
		{"resume", Resume, 0, 0},
		{"go", Resume, 0, 0},
		{"p", Toggle, 0, 0},

		// Nudges
		{"back", Nudge, -5 * time.Second, 0},
		{"back 10", Nudge, -10 * time.Second, 0},
		{"-15", Nudge, -15 * time.Second, 0},
		{"fwd", Nudge, 5 * time.Second, 0},
		{"forward 1:00", Nudge, time.Minute, 0},
		{"+2.5", Nudge, 2500 * time.Millisecond, 0},

		// Seek
		{"seek 1:30", Seek, 0, 90 * time.Second},
		{"at 45", Seek, 0, 45 * time.Second},
		{"goto 2m", Seek, 0, 2 * time.Minute},

		// Session
		{"restart", Restart, 0, 0},
		{"status", Status, 0, 0},
		{"?", Help, 0, 0},
		{"q", Quit, 0, 0},

		// Unknown
		{"", Unknown, 0, 0},
		{"foo", Unknown, 0, 0},
		{"make it stronger", Unknown, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := parser.Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Kind != tt.wantKind {
				t.Fatalf("input %q: expected %s, got %s", tt.input, tt.wantKind, cmd.Kind)
			}
			if cmd.Delta != tt.wantDelta {
				t.Errorf("input %q: expected delta %s, got %s", tt.input, tt.wantDelta, cmd.Delta)
			}
			if cmd.At != tt.wantAt {
				t.Errorf("input %q: expected at %s, got %s", tt.input, tt.wantAt, cmd.At)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(log, 5*time.Second)

	for _, input := range []string{"seek soon", "seek 1:75", "back 3x"} {
		cmd, err := parser.Parse(input)
		if err == nil {
			t.Errorf("input %q: expected error, got %+v", input, cmd)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"45", 45 * time.Second, false},
		{"0:05", 5 * time.Second, false},
		{"2:30", 150 * time.Second, false},
		{"90s", 90 * time.Second, false},
		{"-1", 0, true},
		{"1:xx", 0, true},
		{"later", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
