package dashboard

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rotz-assistant/internal/lifecycle"
)

var _ lifecycle.Service = (*Service)(nil)

func TestService_StopEndsStart(t *testing.T) {
	_, app, _ := newModel(t, 1)
	svc := NewService(app, app.Config.Dashboard,
		tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())

	done := make(chan error, 1)
	go func() { done <- svc.Start() }()
	svc.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard did not stop")
	}
	assert.NotPanics(t, svc.Stop)
}
