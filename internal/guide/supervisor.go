package guide

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/logger"
	"github.com/hammamikhairi/brewguide/internal/notify"
)

// SupervisorOption configures the supervisor.
type SupervisorOption func(*Supervisor)

// WithTickInterval sets how often the supervisor resolves sessions.
func WithTickInterval(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithAlmostDoneThreshold sets how close to the end of a step the
// "almost done" warning fires. Steps no longer than twice the threshold
// get no warning.
func WithAlmostDoneThreshold(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.almostDoneThreshold = d
	}
}

// WithPauseReminder sets how often a paused session is reminded that its
// clock is on hold. Zero disables reminders.
func WithPauseReminder(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.pauseReminder = d
	}
}

// Supervisor runs in the background and turns the session clock into
// announcements: a line when a step begins, a warning shortly before it
// ends, and an urgent line when the brew is done.
type Supervisor struct {
	engine              *Engine
	notifier            domain.Notifier
	log                 *logger.Logger
	tickInterval        time.Duration
	almostDoneThreshold time.Duration
	pauseReminder       time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSupervisor creates a supervisor for the engine's sessions.
func NewSupervisor(engine *Engine, notifier domain.Notifier, log *logger.Logger, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		engine:              engine,
		notifier:            notifier,
		log:                 log,
		tickInterval:        250 * time.Millisecond,
		almostDoneThreshold: 5 * time.Second,
		pauseReminder:       time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("guide supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(childCtx, s.done)

	s.log.Info("guide supervisor started (tick=%s, almost-done=%s)", s.tickInterval, s.almostDoneThreshold)
}

// Stop shuts the loop down and waits for the current tick to finish.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	s.log.Info("guide supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle over every active or paused session.
func (s *Supervisor) tick(ctx context.Context) {
	sessions, err := s.engine.store.ListActive(ctx)
	if err != nil {
		s.log.Error("supervisor: listing active sessions: %v", err)
		return
	}

	for _, session := range sessions {
		s.processSession(ctx, session.ID)
	}
}

type announcement struct {
	text   string
	urgent bool
}

// processSession resolves one session and delivers whatever it has not
// been told yet. Notifications are sent after the session is saved so a
// slow notifier never holds the engine lock.
func (s *Supervisor) processSession(ctx context.Context, sessionID string) {
	var out []announcement

	err := s.engine.track(ctx, sessionID, func(snap *Snapshot, now time.Time) bool {
		var changed bool
		out, changed = s.inspect(snap, now)
		return changed
	})
	if err != nil {
		s.log.Error("supervisor: session %s: %v", shortID(sessionID), err)
		return
	}

	for _, a := range out {
		var err error
		if a.urgent {
			err = s.notifier.NotifyUrgent(ctx, a.text)
		} else {
			err = s.notifier.Notify(ctx, a.text)
		}
		if err != nil {
			s.log.Error("supervisor: notify: %v", err)
		}
	}
}

// inspect decides what to announce for a snapshot and records it in the
// session. It reports whether the session changed.
func (s *Supervisor) inspect(snap *Snapshot, now time.Time) ([]announcement, bool) {
	sess := snap.Session
	pos := snap.Position

	switch sess.Status {
	case domain.SessionPaused:
		if s.pauseReminder <= 0 || now.Sub(sess.LastRemindedAt) < s.pauseReminder {
			return nil, false
		}
		sess.LastRemindedAt = now
		return []announcement{{text: notify.LinePausedReminder(now.Sub(sess.PausedAt))}}, true

	case domain.SessionActive:
	default:
		return nil, false
	}

	if pos.Complete {
		sess.Status = domain.SessionCompleted
		sess.Offset = pos.Total
		sess.AnnouncedStep = pos.Index
		s.log.Info("session %s completed", shortID(sess.ID))
		return []announcement{{text: notify.LineComplete(snap.Recipe.Name), urgent: true}}, true
	}

	if pos.Index != sess.AnnouncedStep {
		sess.AnnouncedStep = pos.Index
		step := snap.Step
		s.log.Debug("session %s: step %d/%d at %s", shortID(sess.ID), pos.Index+1, snap.StepCount(), pos.Elapsed)
		return []announcement{{
			text: notify.LineStep(pos.Index+1, snap.StepCount(), step.ShortInstruction, step.Narration, step.Duration),
		}}, true
	}

	th := s.almostDoneThreshold
	if th > 0 && sess.WarnedStep != pos.Index && snap.Step.Duration > 2*th && pos.StepRemaining <= th {
		sess.WarnedStep = pos.Index
		msgs := []announcement{{text: notify.LineAlmostDone(snap.Step.ShortInstruction, pos.StepRemaining)}}
		if snap.Next != nil {
			msgs = append(msgs, announcement{text: notify.LineNextPreview(snap.Next.Order, previewText(*snap.Next))})
		}
		return msgs, true
	}

	return nil, false
}

func previewText(step domain.Step) string {
	if step.ShortInstruction != "" {
		return step.ShortInstruction
	}
	return step.Instruction
}
