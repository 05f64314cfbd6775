package domain

import "time"

// Session is one run of the guide over a recipe. It stores a clock, not
// a step cursor: the active step is always resolved from Elapsed.
type Session struct {
	ID         string
	RecipeID   string
	RecipeName string
	Status     SessionStatus

	// Offset is the elapsed brew time accumulated before ResumedAt.
	Offset time.Duration
	// ResumedAt is the wall-clock instant the clock last started running.
	ResumedAt time.Time
	// PausedAt is the wall-clock instant the clock was last put on hold.
	PausedAt time.Time

	// Announcement bookkeeping for the supervisor. These record what the
	// user has been told and are never read back to pick a step.
	AnnouncedStep  int // -1 before the first announcement
	WarnedStep     int // step that received its "almost done" warning, -1 if none
	LastRemindedAt time.Time

	StartedAt time.Time
	UpdatedAt time.Time
}

// Elapsed returns the brew time on the session clock at now.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.Status != SessionActive {
		return s.Offset
	}
	d := s.Offset + now.Sub(s.ResumedAt)
	if d < 0 {
		return 0
	}
	return d
}

// SessionStatus tracks the lifecycle of a guide session.
type SessionStatus int

const (
	SessionActive SessionStatus = iota
	SessionPaused
	SessionCompleted
	SessionAbandoned
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionPaused:
		return "paused"
	case SessionCompleted:
		return "completed"
	case SessionAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}
