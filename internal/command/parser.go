// Package command parses the typed controls accepted while a brew is
// guided without the interactive view.
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/brewguide/internal/logger"
)

// Kind identifies what a typed command asks for.
type Kind int

const (
	Unknown Kind = iota
	Pause
	Resume
	Toggle
	Restart
	Nudge
	Seek
	Status
	Help
	Quit
)

var kindNames = map[Kind]string{
	Unknown: "unknown",
	Pause:   "pause",
	Resume:  "resume",
	Toggle:  "toggle",
	Restart: "restart",
	Nudge:   "nudge",
	Seek:    "seek",
	Status:  "status",
	Help:    "help",
	Quit:    "quit",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Command is one parsed line of input.
type Command struct {
	Kind Kind
	// Delta is the clock adjustment for Nudge. Negative moves back.
	Delta time.Duration
	// At is the target clock for Seek.
	At time.Duration
	// Input is the trimmed line the command was parsed from.
	Input string
}

// Parser matches typed input to commands using keywords and simple
// patterns.
type Parser struct {
	log      *logger.Logger
	step     time.Duration
	patterns []patternRule
}

type patternRule struct {
	regex *regexp.Regexp
	kind  Kind
}

var (
	nudgePattern = regexp.MustCompile(`(?i)^(back|b|-|forward|fwd|f|\+)\s*(\d\S*)?$`)
	seekPattern  = regexp.MustCompile(`(?i)^(seek|go to|goto|at)\s+(\S+)$`)
)

// NewParser creates a parser. step is how far a bare "back" or
// "forward" moves the clock.
func NewParser(log *logger.Logger, step time.Duration) *Parser {
	p := &Parser{log: log, step: step}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(pause|hold|wait|brb)$`), Pause},
		{regexp.MustCompile(`(?i)^(resume|continue|unpause|go)$`), Resume},
		{regexp.MustCompile(`(?i)^(p|space|toggle)$`), Toggle},
		{regexp.MustCompile(`(?i)^(restart|reset|r|again)$`), Restart},
		{regexp.MustCompile(`(?i)^(status|where|s|info)$`), Status},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), Help},
		{regexp.MustCompile(`(?i)^(quit|exit|stop|q|abandon)$`), Quit},
	}
	return p
}

// Parse converts a line of input into a command. Unrecognised input
// yields an Unknown command; an error is returned only for a recognised
// command with a malformed argument.
func (p *Parser) Parse(input string) (Command, error) {
	trimmed := strings.TrimSpace(input)
	cmd := Command{Kind: Unknown, Input: trimmed}
	if trimmed == "" {
		return cmd, nil
	}

	p.log.Debug("parsing command: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			cmd.Kind = rule.kind
			return cmd, nil
		}
	}

	if m := nudgePattern.FindStringSubmatch(trimmed); m != nil {
		d := p.step
		if m[2] != "" {
			var err error
			if d, err = ParseClock(m[2]); err != nil {
				return cmd, err
			}
		}
		switch strings.ToLower(m[1]) {
		case "back", "b", "-":
			d = -d
		}
		cmd.Kind = Nudge
		cmd.Delta = d
		return cmd, nil
	}

	if m := seekPattern.FindStringSubmatch(trimmed); m != nil {
		at, err := ParseClock(m[2])
		if err != nil {
			return cmd, err
		}
		cmd.Kind = Seek
		cmd.At = at
		return cmd, nil
	}

	p.log.Debug("no match, returning unknown command")
	return cmd, nil
}

// ParseClock reads a clock value written as seconds ("45", "12.5"),
// m:ss ("1:30") or a Go duration ("1m30s").
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative clock value %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	if m, sec, ok := strings.Cut(s, ":"); ok {
		mins, err1 := strconv.Atoi(m)
		secs, err2 := strconv.Atoi(sec)
		if err1 != nil || err2 != nil || mins < 0 || secs < 0 || secs >= 60 {
			return 0, fmt.Errorf("invalid clock value %q", s)
		}
		return time.Duration(mins)*time.Minute + time.Duration(secs)*time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative clock value %q", s)
	}
	return d, nil
}

// HelpText lists the accepted commands.
func HelpText() string {
	return strings.Join([]string{
		"Commands:",
		"  pause / resume / p    hold or release the clock",
		"  back [N] / fwd [N]    move the clock by N seconds",
		"  seek M:SS             jump to a point on the clock",
		"  restart               back to the first step",
		"  status                where the brew is",
		"  quit                  stop guiding",
	}, "\n")
}
