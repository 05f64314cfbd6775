// Package guide drives a brew session: it keeps the session clock and
// resolves the active step from it on demand.
package guide

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/logger"
	"github.com/hammamikhairi/brewguide/internal/timeline"
)

// Option configures the engine.
type Option func(*Engine)

// WithClock replaces the wall clock. Tests use it to drive time by hand.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Snapshot is the state of a session at one instant.
type Snapshot struct {
	Session  *domain.Session
	Recipe   *domain.Recipe
	Position timeline.Position
	Step     domain.Step
	Next     *domain.Step // nil on the last step
}

// StepCount returns the number of steps in the recipe.
func (s *Snapshot) StepCount() int { return len(s.Recipe.Steps) }

// Engine manages guide sessions. It depends only on interfaces and is
// fully testable with mocks.
type Engine struct {
	recipes domain.RecipeSource
	store   domain.SessionStore
	log     *logger.Logger
	now     func() time.Time

	// mu serialises load-modify-save cycles on sessions.
	mu sync.Mutex

	seqMu sync.Mutex
	seqs  map[string]cachedSequence
}

type cachedSequence struct {
	recipe  *domain.Recipe
	version int
	seq     *domain.Sequence
}

// New creates a guide engine with the given dependencies and options.
func New(recipes domain.RecipeSource, store domain.SessionStore, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		recipes: recipes,
		store:   store,
		log:     log,
		now:     time.Now,
		seqs:    make(map[string]cachedSequence),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListRecipes returns all available recipes.
func (e *Engine) ListRecipes(ctx context.Context) ([]domain.RecipeSummary, error) {
	return e.recipes.List(ctx)
}

// GetRecipe returns a full recipe by ID.
func (e *Engine) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	return e.recipes.Get(ctx, id)
}

// Start begins a new session for the given recipe with the clock at zero
// and running.
func (e *Engine) Start(ctx context.Context, recipeID string) (*domain.Session, error) {
	recipe, err := e.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}
	if _, err := e.sequence(recipe); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", recipe.ID, err)
	}

	now := e.now()
	session := &domain.Session{
		ID:            generateID(),
		RecipeID:      recipe.ID,
		RecipeName:    recipe.Name,
		Status:        domain.SessionActive,
		ResumedAt:     now,
		AnnouncedStep: -1,
		WarnedStep:    -1,
		StartedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("started session %s for recipe %q (%d steps, %s)",
		shortID(session.ID), recipe.Name, len(recipe.Steps), recipe.ComputedTotal())
	return session, nil
}

// Snapshot resolves the session's position at the current instant.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return e.snapshot(ctx, session, e.now())
}

func (e *Engine) snapshot(ctx context.Context, session *domain.Session, now time.Time) (*Snapshot, error) {
	recipe, err := e.recipes.Get(ctx, session.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}
	seq, err := e.sequence(recipe)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", recipe.ID, err)
	}

	pos, err := timeline.Resolve(seq, session.Elapsed(now))
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Session:  session,
		Recipe:   recipe,
		Position: pos,
		Step:     seq.Step(pos.Index),
	}
	if pos.Index+1 < seq.Len() {
		next := seq.Step(pos.Index + 1)
		snap.Next = &next
	}
	return snap, nil
}

// Pause stops the session clock.
func (e *Engine) Pause(ctx context.Context, sessionID string) error {
	return e.update(ctx, sessionID, func(s *domain.Session, now time.Time) error {
		switch s.Status {
		case domain.SessionActive:
		case domain.SessionPaused:
			return domain.ErrSessionPaused
		default:
			return domain.ErrSessionNotActive
		}
		s.Offset = s.Elapsed(now)
		s.Status = domain.SessionPaused
		s.PausedAt = now
		s.LastRemindedAt = now
		e.log.Info("session %s paused at %s", shortID(s.ID), s.Offset)
		return nil
	})
}

// Resume restarts a paused session clock from where it stopped.
func (e *Engine) Resume(ctx context.Context, sessionID string) error {
	return e.update(ctx, sessionID, func(s *domain.Session, now time.Time) error {
		if s.Status != domain.SessionPaused {
			return fmt.Errorf("resume: %w", domain.ErrSessionNotActive)
		}
		s.Status = domain.SessionActive
		s.ResumedAt = now
		e.log.Info("session %s resumed at %s", shortID(s.ID), s.Offset)
		return nil
	})
}

// Toggle pauses an active session or resumes a paused one.
func (e *Engine) Toggle(ctx context.Context, sessionID string) (domain.SessionStatus, error) {
	sess, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("loading session: %w", err)
	}
	switch sess.Status {
	case domain.SessionActive:
		return domain.SessionPaused, e.Pause(ctx, sessionID)
	case domain.SessionPaused:
		return domain.SessionActive, e.Resume(ctx, sessionID)
	default:
		return sess.Status, domain.ErrSessionNotActive
	}
}

// Seek moves the session clock to elapsed. The value is clamped to the
// recipe total. A completed session that is moved back before the end
// starts running again.
func (e *Engine) Seek(ctx context.Context, sessionID string, elapsed time.Duration) error {
	if elapsed < 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidElapsed, elapsed)
	}
	return e.update(ctx, sessionID, func(s *domain.Session, now time.Time) error {
		return e.seek(ctx, s, elapsed, now)
	})
}

// Nudge moves the session clock by delta, clamping at zero and at the
// recipe total.
func (e *Engine) Nudge(ctx context.Context, sessionID string, delta time.Duration) error {
	return e.update(ctx, sessionID, func(s *domain.Session, now time.Time) error {
		target := s.Elapsed(now) + delta
		if target < 0 {
			target = 0
		}
		return e.seek(ctx, s, target, now)
	})
}

// Restart puts the session clock back to zero and starts it running.
func (e *Engine) Restart(ctx context.Context, sessionID string) error {
	return e.update(ctx, sessionID, func(s *domain.Session, now time.Time) error {
		if s.Status == domain.SessionAbandoned {
			return domain.ErrSessionNotActive
		}
		s.Status = domain.SessionActive
		s.Offset = 0
		s.ResumedAt = now
		s.AnnouncedStep = -1
		s.WarnedStep = -1
		e.log.Info("session %s restarted", shortID(s.ID))
		return nil
	})
}

// Abandon marks a session as abandoned.
func (e *Engine) Abandon(ctx context.Context, sessionID string) error {
	return e.update(ctx, sessionID, func(s *domain.Session, now time.Time) error {
		s.Offset = s.Elapsed(now)
		s.Status = domain.SessionAbandoned
		e.log.Info("session %s abandoned", shortID(s.ID))
		return nil
	})
}

// Status returns the stored session state.
func (e *Engine) Status(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.store.Load(ctx, sessionID)
}

func (e *Engine) seek(ctx context.Context, s *domain.Session, target time.Duration, now time.Time) error {
	if s.Status == domain.SessionAbandoned {
		return domain.ErrSessionNotActive
	}

	recipe, err := e.recipes.Get(ctx, s.RecipeID)
	if err != nil {
		return fmt.Errorf("getting recipe: %w", err)
	}
	seq, err := e.sequence(recipe)
	if err != nil {
		return err
	}
	if total := seq.Total(); target > total {
		target = total
	}

	if s.Status == domain.SessionCompleted && target < seq.Total() {
		s.Status = domain.SessionActive
	}
	s.Offset = target
	s.ResumedAt = now
	s.WarnedStep = -1
	e.log.Debug("session %s seek to %s", shortID(s.ID), target)
	return nil
}

// update loads a session, applies fn and saves the result. fn runs with
// the engine lock held.
func (e *Engine) update(ctx context.Context, sessionID string, fn func(*domain.Session, time.Time) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	now := e.now()
	if err := fn(session, now); err != nil {
		return err
	}
	session.UpdatedAt = now

	if err := e.store.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// track resolves a session and lets fn record announcement bookkeeping
// against the fresh snapshot. The session is saved only when fn reports a
// change.
func (e *Engine) track(ctx context.Context, sessionID string, fn func(*Snapshot, time.Time) bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	now := e.now()
	snap, err := e.snapshot(ctx, session, now)
	if err != nil {
		return err
	}
	if !fn(snap, now) {
		return nil
	}

	session.UpdatedAt = now
	if err := e.store.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// sequence returns the memoised Sequence for a recipe, rebuilding it when
// the recipe is replaced or its version changes.
func (e *Engine) sequence(r *domain.Recipe) (*domain.Sequence, error) {
	e.seqMu.Lock()
	defer e.seqMu.Unlock()

	if c, ok := e.seqs[r.ID]; ok && c.recipe == r && c.version == r.Version {
		return c.seq, nil
	}

	seq, err := domain.NewSequence(r.Steps)
	if err != nil {
		return nil, err
	}
	e.seqs[r.ID] = cachedSequence{recipe: r, version: r.Version, seq: seq}
	e.log.Debug("built sequence for %s v%d (%d steps, %s)", r.ID, r.Version, seq.Len(), seq.Total())
	return seq, nil
}
