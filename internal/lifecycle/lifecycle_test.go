package lifecycle

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	// Block until stopped
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
}

func waitStarted(t *testing.T, svcs ...*mockService) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond, "services did not start in time")
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1 := &mockService{}
	svc2 := &mockService{}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	waitStarted(t, svc1, svc2)

	cancel()
	assert.NoError(t, wait(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleEndsWhenAServiceFinishes(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	background := &mockService{}
	dashboard := &mockService{startFn: func() error { return nil }}
	lc.Add("autosave", background)
	lc.Add("dashboard", dashboard)

	assert.NoError(t, wait(t, runAsync(lc, context.Background())))
	assert.True(t, background.stopped.Load())
	assert.True(t, dashboard.stopped.Load())
}

func TestLifecycleReturnsServiceError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("terminal unavailable")
	lc.Add("dashboard", &mockService{startFn: func() error { return boom }})

	err := wait(t, runAsync(lc, context.Background()))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service dashboard")
}

func TestLifecycleStopsOnSignal(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Signals = []os.Signal{syscall.SIGUSR1}
	svc := &mockService{}
	lc.Add("svc", svc)

	done := runAsync(lc, context.Background())
	waitStarted(t, svc)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	assert.NoError(t, wait(t, done))
	assert.True(t, svc.stopped.Load())
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start()
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}
