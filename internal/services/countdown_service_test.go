package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/countdown-cli/internal/adapters/storage"
	"github.com/xvierd/countdown-cli/internal/domain"
	"github.com/xvierd/countdown-cli/internal/ports"
)

func setupTestStorage(t *testing.T) (ports.Storage, func()) {
	store, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}
	return store, func() { _ = store.Close() }
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (f *fakeNotifier) NotifyExpired(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, d)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// harness runs a controller on a mock clock until the test ends.
type harness struct {
	svc      *CountdownService
	clock    *clock.Mock
	store    ports.Storage
	notifier *fakeNotifier
	cancel   context.CancelFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, cleanup := setupTestStorage(t)

	h := &harness{
		clock:    clock.NewMock(),
		store:    store,
		notifier: &fakeNotifier{},
	}
	h.svc = NewCountdownService(
		WithClock(h.clock),
		WithHistory(store.History()),
		WithNotifier(h.notifier),
	)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { _ = h.svc.Run(ctx) }()

	t.Cleanup(func() {
		h.stop(t)
		cleanup()
	})
	return h
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.cancel()
	select {
	case <-h.svc.Done():
	case <-time.After(time.Second):
		t.Fatal("event loop did not stop")
	}
}

func (h *harness) dispatch(t *testing.T, ev domain.Event) domain.Timer {
	t.Helper()
	timer, err := h.svc.Dispatch(context.Background(), ev)
	require.NoError(t, err)
	return timer
}

// tick advances the mock clock one interval and waits for the loop to apply it.
func (h *harness) tick(t *testing.T, wantLeft int) {
	t.Helper()
	h.clock.Add(TickInterval)
	require.Eventually(t, func() bool {
		return h.svc.Snapshot().TimeLeft == wantLeft
	}, time.Second, time.Millisecond, "TimeLeft never reached %d", wantLeft)
}

func (h *harness) runs(t *testing.T) []*domain.Run {
	t.Helper()
	runs, err := h.store.History().FindRecent(context.Background(), 0)
	require.NoError(t, err)
	return runs
}

func TestCountdownService_InitialState(t *testing.T) {
	svc := NewCountdownService()
	assert.Equal(t, domain.Timer{}, svc.Snapshot())
	assert.Equal(t, domain.StateIdle, svc.Snapshot().State())
}

func TestCountdownService_SetDuration(t *testing.T) {
	h := newHarness(t)

	timer := h.dispatch(t, domain.SetDuration(65))
	assert.Equal(t, "01:05", timer.Display())
	assert.Equal(t, domain.StateReady, timer.State())

	for _, ev := range []domain.Event{domain.SetDuration(0), domain.SetDuration(-5), domain.SetDurationInput("abc")} {
		timer = h.dispatch(t, ev)
		assert.Equal(t, 65, timer.TimeLeft)
	}
}

func TestCountdownService_RunsToExpiry(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, domain.SetDuration(5))
	h.dispatch(t, domain.Start())

	for left := 4; left >= 0; left-- {
		h.tick(t, left)
	}

	timer := h.svc.Snapshot()
	assert.Equal(t, domain.StateExpired, timer.State())
	assert.Equal(t, "00:00", timer.Display())
	assert.False(t, timer.IsActive)

	// Ticking has stopped: advancing the clock changes nothing.
	h.clock.Add(3 * TickInterval)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, timer, h.svc.Snapshot())

	require.Eventually(t, func() bool { return h.notifier.count() == 1 }, time.Second, time.Millisecond)

	runs := h.runs(t)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunOutcomeCompleted, runs[0].Outcome)
	assert.Equal(t, 5*time.Second, runs[0].Duration)
	assert.Equal(t, 5*time.Second, runs[0].Elapsed)
}

func TestCountdownService_StartNoopWhenEmpty(t *testing.T) {
	h := newHarness(t)

	timer := h.dispatch(t, domain.Start())
	assert.Equal(t, domain.Timer{}, timer)

	h.clock.Add(2 * TickInterval)
	assert.Equal(t, domain.Timer{}, h.svc.Snapshot())
}

func TestCountdownService_PauseAndResume(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, domain.SetDuration(10))

	// Pause before starting is ignored.
	timer := h.dispatch(t, domain.Pause())
	assert.Equal(t, domain.StateReady, timer.State())

	h.dispatch(t, domain.Start())
	h.tick(t, 9)
	h.tick(t, 8)

	timer = h.dispatch(t, domain.Pause())
	assert.Equal(t, domain.StatePaused, timer.State())
	assert.Equal(t, 8, timer.TimeLeft)

	// No ticks while paused.
	h.clock.Add(5 * TickInterval)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 8, h.svc.Snapshot().TimeLeft)

	timer = h.dispatch(t, domain.Start())
	assert.Equal(t, domain.StateRunning, timer.State())
	assert.Equal(t, 8, timer.TimeLeft)

	h.tick(t, 7)
}

func TestCountdownService_ResetAbandonsRun(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, domain.SetDuration(30))
	h.dispatch(t, domain.Start())
	h.tick(t, 29)
	h.tick(t, 28)

	timer := h.dispatch(t, domain.Reset())
	assert.False(t, timer.IsActive)
	assert.False(t, timer.IsPaused)
	assert.Equal(t, 30, timer.TimeLeft)

	h.clock.Add(2 * TickInterval)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 30, h.svc.Snapshot().TimeLeft)

	runs := h.runs(t)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunOutcomeAbandoned, runs[0].Outcome)
	assert.Equal(t, 2*time.Second, runs[0].Elapsed)
	assert.Zero(t, h.notifier.count())
}

func TestCountdownService_ResetWithoutStartRecordsNothing(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, domain.SetDuration(30))
	h.dispatch(t, domain.Reset())
	h.dispatch(t, domain.SetDuration(10))

	assert.Empty(t, h.runs(t))
}

func TestCountdownService_SetDurationCancelsTick(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, domain.SetDuration(30))
	h.dispatch(t, domain.Start())
	h.tick(t, 29)

	timer := h.dispatch(t, domain.SetDuration(10))
	assert.Equal(t, domain.StateReady, timer.State())

	h.clock.Add(2 * TickInterval)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 10, h.svc.Snapshot().TimeLeft)
}

func TestCountdownService_OnChange(t *testing.T) {
	store, cleanup := setupTestStorage(t)
	defer cleanup()

	mock := clock.NewMock()
	svc := NewCountdownService(WithClock(mock), WithHistory(store.History()))

	var mu sync.Mutex
	var seen []domain.State
	svc.OnChange(func(t domain.Timer) {
		mu.Lock()
		seen = append(seen, t.State())
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()

	_, err := svc.Dispatch(ctx, domain.SetDuration(1))
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, domain.Pause()) // ignored, no notification
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, domain.Start())
	require.NoError(t, err)
	mock.Add(TickInterval)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.State{domain.StateReady, domain.StateRunning, domain.StateExpired}, seen)
}

func TestCountdownService_TeardownStopsTicking(t *testing.T) {
	h := newHarness(t)

	h.dispatch(t, domain.SetDuration(60))
	h.dispatch(t, domain.Start())
	h.tick(t, 59)

	h.stop(t)

	timer := h.svc.Snapshot()
	assert.False(t, timer.IsActive)
	assert.Equal(t, domain.StatePaused, timer.State())
	assert.Equal(t, 59, timer.TimeLeft)

	_, err := h.svc.Dispatch(context.Background(), domain.Start())
	assert.ErrorIs(t, err, domain.ErrControllerStopped)

	runs := h.runs(t)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunOutcomeAbandoned, runs[0].Outcome)
}

func TestCountdownService_NotifierErrorIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("no display")

	h.dispatch(t, domain.SetDuration(1))
	h.dispatch(t, domain.Start())
	h.tick(t, 0)

	assert.Equal(t, domain.StateExpired, h.svc.Snapshot().State())

	// The loop is still serving commands.
	timer := h.dispatch(t, domain.Reset())
	assert.Equal(t, 1, timer.TimeLeft)
}

func TestCountdownService_DispatchHonoursContext(t *testing.T) {
	svc := NewCountdownService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Dispatch(ctx, domain.SetDuration(5))
	assert.ErrorIs(t, err, context.Canceled)
}
