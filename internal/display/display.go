// Package display provides the brew guide terminal UI using Bubble Tea.
//
// The [UI] renders the live state of one session: the active step, its
// countdown, progress bars for the step and the whole brew, and a preview
// of what comes next. Announcements are printed above the rendered area
// via Program.Println, so concurrent writes never garble the
// display.
package display

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/guide"
	"github.com/hammamikhairi/brewguide/internal/notify"
	"github.com/hammamikhairi/brewguide/internal/timeline"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle is muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4e7")).
			Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	countdownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Italic(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#52525b")).
			Padding(0, 2)

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5")).
				Bold(true)
)

// Controller is the part of the guide engine the UI drives.
type Controller interface {
	Snapshot(ctx context.Context, sessionID string) (*guide.Snapshot, error)
	Toggle(ctx context.Context, sessionID string) (domain.SessionStatus, error)
	Nudge(ctx context.Context, sessionID string, delta time.Duration) error
	Restart(ctx context.Context, sessionID string) error
}

// Compile-time interface checks.
var (
	_ Controller      = (*guide.Engine)(nil)
	_ domain.Notifier = (*UI)(nil)
)

// Option configures the UI.
type Option func(*UI)

// WithSeekStep sets how far the arrow keys move the clock.
func WithSeekStep(d time.Duration) Option {
	return func(u *UI) {
		u.seekStep = d
	}
}

// WithRefreshInterval sets how often the view re-resolves the session.
func WithRefreshInterval(d time.Duration) Option {
	return func(u *UI) {
		u.refresh = d
	}
}

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely
// call [UI.Println] and the notifier methods once [UI.Ready] is closed.
type UI struct {
	program   *tea.Program
	ctrl      Controller
	sessionID string
	seekStep  time.Duration
	refresh   time.Duration
	readyCh   chan struct{}
	quitCh    chan struct{}
	done      atomic.Bool
}

// NewUI creates the display for one session. Call Run() to start.
func NewUI(ctrl Controller, sessionID string, opts ...Option) *UI {
	u := &UI{
		ctrl:      ctrl,
		sessionID: sessionID,
		seekStep:  5 * time.Second,
		refresh:   200 * time.Millisecond,
		readyCh:   make(chan struct{}),
		quitCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Println prints a line above the view. Thread-safe. If the program
// hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// PrintChat prints an announcement line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintUrgent prints an urgent line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// Notify prints an announcement above the view.
func (u *UI) Notify(ctx context.Context, message string) error {
	u.PrintChat(message)
	return nil
}

// NotifyUrgent prints an urgent announcement above the view.
func (u *UI) NotifyUrgent(ctx context.Context, message string) error {
	u.PrintUrgent(message)
	return nil
}

// Ready is closed once the Bubble Tea event loop is running.
func (u *UI) Ready() <-chan struct{} { return u.readyCh }

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until the user quits or
// ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	m := newModel(ctx, u.ctrl, u.sessionID, u.seekStep, u.refresh)
	m.readyCh = u.readyCh

	u.program = tea.NewProgram(m, tea.WithContext(ctx))
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// ── Key bindings ─────────────────────────────────────────────────

type keyMap struct {
	Toggle  key.Binding
	Back    key.Binding
	Forward key.Binding
	Restart key.Binding
	Quit    key.Binding
}

func newKeyMap(seek time.Duration) keyMap {
	s := notify.FormatDuration(seek)
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause/resume")),
		Back:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "back "+s)),
		Forward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "forward "+s)),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Back, k.Forward, k.Restart, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	ctx       context.Context
	ctrl      Controller
	sessionID string
	seekStep  time.Duration
	refresh   time.Duration
	readyCh   chan struct{}

	keys     keyMap
	help     help.Model
	stepBar  progress.Model
	totalBar progress.Model

	snap  *guide.Snapshot
	err   error
	width int
}

// Messages.
type tickMsg time.Time

func newModel(ctx context.Context, ctrl Controller, sessionID string, seek, refresh time.Duration) model {
	m := model{
		ctx:       ctx,
		ctrl:      ctrl,
		sessionID: sessionID,
		seekStep:  seek,
		refresh:   refresh,
		keys:      newKeyMap(seek),
		help:      help.New(),
		stepBar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		totalBar:  progress.New(progress.WithSolidFill("#94a3b8"), progress.WithWidth(40)),
	}
	m.load()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if ch != nil {
			close(ch)
		}
		return nil
	}
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			_, m.err = m.ctrl.Toggle(m.ctx, m.sessionID)
		case key.Matches(msg, m.keys.Back):
			m.err = m.ctrl.Nudge(m.ctx, m.sessionID, -m.seekStep)
		case key.Matches(msg, m.keys.Forward):
			m.err = m.ctrl.Nudge(m.ctx, m.sessionID, m.seekStep)
		case key.Matches(msg, m.keys.Restart):
			m.err = m.ctrl.Restart(m.ctx, m.sessionID)
		default:
			return m, nil
		}
		if errors.Is(m.err, domain.ErrSessionNotActive) {
			// Pausing a finished brew is not worth an error line.
			m.err = nil
		}
		m.load()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 4
		if w > 60 {
			w = 60
		}
		if w < 10 {
			w = 10
		}
		m.stepBar.Width = w
		m.totalBar.Width = w
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.load()
		return m, tea.Batch(m.tickCmd(), tea.SetWindowTitle(m.titleStr()))
	}

	return m, nil
}

// load refreshes the snapshot from the controller.
func (m *model) load() {
	snap, err := m.ctrl.Snapshot(m.ctx, m.sessionID)
	if err != nil {
		m.err = err
		return
	}
	m.snap = snap
}

func (m model) titleStr() string {
	if m.snap == nil {
		return "brewguide"
	}
	p := m.snap.Position
	if p.Complete {
		return "brewguide: done"
	}
	return fmt.Sprintf("brewguide: step %d/%d %s", p.Index+1, m.snap.StepCount(), notify.FormatClock(p.StepRemaining))
}

func (m model) View() string {
	var b strings.Builder

	if m.snap == nil {
		if m.err != nil {
			b.WriteString(pausedStyle.Render("  " + m.err.Error()))
			b.WriteByte('\n')
		}
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	snap := m.snap
	p := snap.Position
	r := snap.Recipe

	header := r.Name
	if r.Method != "" {
		header += " · " + r.Method
	}
	b.WriteString("  " + titleStyle.Render(header))
	if snap.Session.Status == domain.SessionPaused {
		b.WriteString("  " + pausedStyle.Render("[paused]"))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s", stepStyle.Render(fmt.Sprintf("Step %d/%d", p.Index+1, snap.StepCount())))
	if snap.Step.ShortInstruction != "" {
		b.WriteString("  " + stepStyle.Render(snap.Step.ShortInstruction))
	}
	b.WriteByte('\n')
	if snap.Step.Instruction != "" {
		b.WriteString("  " + primaryStyle.Render(snap.Step.Instruction))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if p.Complete {
		b.WriteString(doneStyle.Render(notify.LineComplete(r.Name)))
		b.WriteString("\n\n")
	} else {
		fmt.Fprintf(&b, "  %s %s\n",
			countdownStyle.Render(notify.FormatClock(p.StepRemaining)),
			secondaryStyle.Render("left on this step"))
		b.WriteString("  " + m.stepBar.ViewAs(p.StepFraction()))
		b.WriteByte('\n')
	}

	b.WriteString("  " + m.totalBar.ViewAs(p.TotalFraction()))
	fmt.Fprintf(&b, " %s\n", secondaryStyle.Render(
		notify.FormatClock(clampElapsed(p))+" / "+notify.FormatClock(p.Total)))

	if !p.Complete && snap.Next != nil {
		next := snap.Next.ShortInstruction
		if next == "" {
			next = snap.Next.Instruction
		}
		fmt.Fprintf(&b, "\n  %s\n", secondaryStyle.Render(fmt.Sprintf("Next: step %d, %s", snap.Next.Order, next)))
	}

	if m.err != nil {
		b.WriteString("\n  " + pausedStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteByte('\n')
	b.WriteString("  " + m.help.View(m.keys))
	return b.String()
}

func clampElapsed(p timeline.Position) time.Duration {
	if p.Elapsed > p.Total {
		return p.Total
	}
	return p.Elapsed
}
