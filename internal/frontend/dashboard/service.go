package dashboard

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cory-johannsen/rotz-assistant/internal/assistant"
	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/frontend/handlers"
	"github.com/cory-johannsen/rotz-assistant/internal/game/command"
	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
)

// Service runs the dashboard program under a lifecycle.
type Service struct {
	program *tea.Program
	once    sync.Once
}

// NewService builds the dashboard for app. Extra program options are appended
// after the alternate screen option.
//
// Precondition: app must be non-nil.
func NewService(app *assistant.App, cfg config.DashboardConfig, opts ...tea.ProgramOption) *Service {
	m := New(app, handlers.NewDispatcher(app, command.DefaultRegistry()), cfg, dice.NewCryptoSource())
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &Service{program: tea.NewProgram(m, opts...)}
}

// Start runs the program and blocks until the user quits or Stop is called.
func (s *Service) Start() error {
	if _, err := s.program.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// Stop asks the program to quit. Safe to call more than once.
func (s *Service) Stop() {
	s.once.Do(s.program.Quit)
}
