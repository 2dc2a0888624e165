// Package dashboard is the interactive terminal front end. It reads command
// lines, hands them to the dispatcher and renders every engine after each
// update, animating rolls and random reveals.
package dashboard

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/assistant"
	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/frontend/ansi"
	"github.com/cory-johannsen/rotz-assistant/internal/frontend/handlers"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
)

// ScrollbackLimit is the number of output lines the dashboard keeps.
const ScrollbackLimit = 200

// spinTickMsg advances the roll animation started with the same seq.
type spinTickMsg struct{ seq int }

// revealMsg ends the random reveal started with the same seq.
type revealMsg struct{ seq int }

// animation is the reveal in flight. A zero animation means none.
type animation struct {
	kind    handlers.RevealKind
	seq     int
	frame   int
	result  damage.Result
	display []float64
	text    string
}

func (a animation) active() bool { return a.kind != 0 }

// saveStatus holds the last autosave failure. It is written from the App's
// save callback and read by View.
type saveStatus struct {
	mu  sync.Mutex
	err error
}

func (s *saveStatus) set(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *saveStatus) get() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	app    *assistant.App
	disp   *handlers.Dispatcher
	cfg    config.DashboardConfig
	logger *zap.Logger

	input   textinput.Model
	spinner spinner.Model
	bar     progress.Model
	// frames only feeds the spin animation. Results never read from it.
	frames dice.Source

	log    []string
	anim   animation
	seq    int
	status *saveStatus

	width, height int
	quitting      bool
}

// New creates a dashboard Model over app.
//
// Precondition: app, disp and frames must be non-nil.
// Postcondition: app.OnSaveError reports into the dashboard status line.
func New(app *assistant.App, disp *handlers.Dispatcher, cfg config.DashboardConfig, frames dice.Source) Model {
	ti := textinput.New()
	ti.Prompt = ansi.Colorize(ansi.BrightCyan, "> ")
	ti.Placeholder = "type a command, or help"
	ti.CharLimit = 512
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 30

	status := &saveStatus{}
	app.OnSaveError = status.set

	return Model{
		app:     app,
		disp:    disp,
		cfg:     cfg,
		logger:  app.Logger,
		input:   ti,
		spinner: s,
		bar:     bar,
		frames:  frames,
		status:  status,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bar.Width = max(10, min(40, msg.Width-30))
		m.input.Width = max(10, msg.Width-4)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			return m.submit(line)
		}

	case spinTickMsg:
		if msg.seq != m.anim.seq || m.anim.kind != handlers.RevealRoll {
			return m, nil
		}
		return m.spin()

	case revealMsg:
		if msg.seq != m.anim.seq || m.anim.kind != handlers.RevealRandom {
			return m, nil
		}
		m.finish()
		return m, nil

	case spinner.TickMsg:
		if m.anim.kind != handlers.RevealRandom {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one command line and starts its reveal, if any.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	out := m.disp.Execute(line)
	if line != "" {
		m.println(ansi.Colorize(ansi.Dim, "> "+line))
	}
	if out.Text != "" {
		m.println(out.Text)
	}
	if out.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	if out.Reveal == nil {
		return m, nil
	}
	return m.startReveal(*out.Reveal)
}

// startReveal supersedes any animation in flight. The superseded reveal's
// text is printed at once and its pending ticks are dropped by seq.
func (m Model) startReveal(r handlers.Reveal) (tea.Model, tea.Cmd) {
	if m.anim.active() {
		m.println(m.anim.text)
	}
	m.seq++
	m.anim = animation{kind: r.Kind, seq: m.seq, result: r.Result, text: r.Text}
	seq := m.seq
	m.logger.Debug("reveal started", zap.Int("seq", seq), zap.Int("kind", int(r.Kind)))

	switch r.Kind {
	case handlers.RevealRoll:
		if m.cfg.SpinFrames <= 0 {
			m.finish()
			return m, nil
		}
		m.anim.display = make([]float64, len(r.Result.Rolls))
		m.shuffle()
		return m, m.tick(seq)
	case handlers.RevealRandom:
		return m, tea.Batch(m.spinner.Tick, tea.Tick(m.cfg.RandomDelay, func(time.Time) tea.Msg {
			return revealMsg{seq: seq}
		}))
	}
	m.finish()
	return m, nil
}

func (m Model) tick(seq int) tea.Cmd {
	return tea.Tick(m.cfg.SpinInterval, func(time.Time) tea.Msg {
		return spinTickMsg{seq: seq}
	})
}

// spin advances the roll animation by one frame and settles on the final
// rolls after SpinFrames frames.
func (m Model) spin() (tea.Model, tea.Cmd) {
	m.anim.frame++
	if m.anim.frame >= m.cfg.SpinFrames {
		m.finish()
		return m, nil
	}
	m.shuffle()
	return m, m.tick(m.anim.seq)
}

// shuffle fills the display with random faces of the die being animated.
func (m *Model) shuffle() {
	sides := m.anim.result.DiceSides
	display := make([]float64, len(m.anim.display))
	for i := range display {
		display[i] = math.Round(m.frames.Float64() * sides)
	}
	m.anim.display = display
}

// finish prints the held-back text and clears the animation.
func (m *Model) finish() {
	m.println(m.anim.text)
	m.anim = animation{seq: m.anim.seq}
}

func (m *Model) println(text string) {
	if text == "" {
		return
	}
	log := append(append([]string(nil), m.log...), splitLines(text)...)
	if over := len(log) - ScrollbackLimit; over > 0 {
		log = log[over:]
	}
	m.log = log
}
