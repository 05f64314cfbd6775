package guide

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/logger"
	"github.com/hammamikhairi/brewguide/internal/recipe"
	"github.com/hammamikhairi/brewguide/internal/storage"
)

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func (m *mockNotifier) normal() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *mockNotifier) urgentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.urgent)
}

func setupSupervisor(t *testing.T, opts ...SupervisorOption) (*Supervisor, *Engine, *fakeClock, *mockNotifier) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	clock := newFakeClock()
	eng := New(recipe.NewMemorySource(log), storage.NewMemoryStore(log), log, WithClock(clock.Now))
	notifier := &mockNotifier{}
	return NewSupervisor(eng, notifier, log, opts...), eng, clock, notifier
}

func TestSupervisorAnnouncesSteps(t *testing.T) {
	sup, eng, clock, notifier := setupSupervisor(t, WithAlmostDoneThreshold(5*time.Second))
	ctx := context.Background()
	session, _ := eng.Start(ctx, "classic-v60")

	sup.tick(ctx)
	msgs := notifier.normal()
	if len(msgs) != 1 || !strings.HasPrefix(msgs[0], "Step 1 of 6: Bloom: 60g") {
		t.Fatalf("expected step 1 announcement, got %q", msgs)
	}

	// Nothing new to say on the same step.
	clock.Advance(2 * time.Second)
	sup.tick(ctx)
	if n := len(notifier.normal()); n != 1 {
		t.Fatalf("expected no repeat announcement, got %d messages", n)
	}

	// 5s left on the 15s bloom: warning plus a preview of step 2.
	clock.Advance(8 * time.Second)
	sup.tick(ctx)
	msgs = notifier.normal()
	if len(msgs) != 3 {
		t.Fatalf("expected almost-done and preview, got %q", msgs)
	}
	if !strings.Contains(msgs[1], "5 seconds left") || !strings.Contains(msgs[2], "step 2") {
		t.Fatalf("unexpected warning lines: %q", msgs[1:])
	}

	// The warning fires once per step.
	clock.Advance(time.Second)
	sup.tick(ctx)
	if n := len(notifier.normal()); n != 3 {
		t.Fatalf("expected warning only once, got %d messages", n)
	}

	clock.Advance(5 * time.Second)
	sup.tick(ctx)
	msgs = notifier.normal()
	if !strings.HasPrefix(msgs[len(msgs)-1], "Step 2 of 6") {
		t.Fatalf("expected step 2 announcement, got %q", msgs[len(msgs)-1])
	}

	clock.Advance(3 * time.Minute)
	sup.tick(ctx)
	if notifier.urgentCount() != 1 {
		t.Fatalf("expected 1 completion notice, got %d", notifier.urgentCount())
	}
	sess, _ := eng.Status(ctx, session.ID)
	if sess.Status != domain.SessionCompleted || sess.Offset != 160*time.Second {
		t.Fatalf("expected completed at 160s, got %s at %s", sess.Status, sess.Offset)
	}

	// Completed sessions are left alone.
	sup.tick(ctx)
	if notifier.urgentCount() != 1 {
		t.Fatalf("completion announced twice")
	}
}

func TestSupervisorSkipsShortSteps(t *testing.T) {
	sup, eng, clock, notifier := setupSupervisor(t, WithAlmostDoneThreshold(5*time.Second))
	ctx := context.Background()
	session, _ := eng.Start(ctx, "classic-v60")

	// Step 5 lasts 10s, which is not longer than twice the threshold.
	_ = eng.Seek(ctx, session.ID, 105*time.Second)
	sup.tick(ctx)
	clock.Advance(6 * time.Second)
	sup.tick(ctx)

	for _, m := range notifier.normal() {
		if strings.Contains(m, "left") {
			t.Fatalf("unexpected almost-done warning on a short step: %q", m)
		}
	}
}

func TestSupervisorNeverAnnouncesZeroDurationStep(t *testing.T) {
	sup, eng, _, notifier := setupSupervisor(t)
	ctx := context.Background()
	session, _ := eng.Start(ctx, "inverted-aeropress")

	sup.tick(ctx)
	_ = eng.Seek(ctx, session.ID, 115*time.Second)
	sup.tick(ctx)

	msgs := notifier.normal()
	last := msgs[len(msgs)-1]
	if !strings.HasPrefix(last, "Step 6 of 6") {
		t.Fatalf("expected jump to step 6, got %q", last)
	}
	for _, m := range msgs {
		if strings.HasPrefix(m, "Step 5 of 6") {
			t.Fatalf("zero-duration step was announced: %q", m)
		}
	}
}

func TestSupervisorPausedReminder(t *testing.T) {
	sup, eng, clock, notifier := setupSupervisor(t, WithPauseReminder(time.Minute))
	ctx := context.Background()
	session, _ := eng.Start(ctx, "classic-v60")

	sup.tick(ctx)
	_ = eng.Pause(ctx, session.ID)

	clock.Advance(30 * time.Second)
	sup.tick(ctx)
	if n := len(notifier.normal()); n != 1 {
		t.Fatalf("reminder sent too early: %d messages", n)
	}

	clock.Advance(31 * time.Second)
	sup.tick(ctx)
	msgs := notifier.normal()
	if len(msgs) != 2 || !strings.Contains(msgs[1], "Still paused (1 minute 1 second)") {
		t.Fatalf("expected paused reminder, got %q", msgs)
	}

	// Reminders repeat on the configured cadence only.
	clock.Advance(10 * time.Second)
	sup.tick(ctx)
	if n := len(notifier.normal()); n != 2 {
		t.Fatalf("reminder repeated too soon: %d messages", n)
	}
}

func TestSupervisorStartStop(t *testing.T) {
	sup, eng, _, notifier := setupSupervisor(t, WithTickInterval(10*time.Millisecond))
	ctx := context.Background()
	if _, err := eng.Start(ctx, "classic-v60"); err != nil {
		t.Fatalf("start session: %v", err)
	}

	sup.Start(ctx)
	sup.Start(ctx) // second start is a no-op

	deadline := time.Now().Add(2 * time.Second)
	for len(notifier.normal()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("supervisor never announced the first step")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sup.Stop()
	sup.Stop()
}
