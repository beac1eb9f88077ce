package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/tec-office/internal/adapters/storage"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/logging"
	"github.com/xvierd/tec-office/internal/persona"
)

type fakeNotifier struct {
	mu         sync.Mutex
	phases     []domain.Phase
	countdowns []string
}

func (f *fakeNotifier) NotifyPhaseComplete(completed, _ domain.Phase, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phases = append(f.phases, completed)
	return nil
}

func (f *fakeNotifier) NotifyCountdownComplete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countdowns = append(f.countdowns, name)
	return nil
}

func newTestService(t *testing.T, opts ...Option) *TimerService {
	t.Helper()
	opts = append([]Option{
		WithLogger(logging.Discard()),
		WithPersona(persona.Default().WithPicker(func(int) int { return 0 })),
	}, opts...)
	svc, err := NewTimerService(domain.DefaultPomodoroConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestTimerService_LazyTimers(t *testing.T) {
	svc := newTestService(t)

	existing := svc.existing("alice")
	assert.Nil(t, existing.pomodoro)
	assert.Nil(t, existing.countdown)

	p, err := svc.Pomodoro(context.Background(), "alice")
	require.NoError(t, err)
	again, _ := svc.Pomodoro(context.Background(), "alice")
	assert.Same(t, p, again)
	assert.Same(t, svc.Countdown("alice"), svc.Countdown("alice"))
}

func TestTimerService_SetTimer(t *testing.T) {
	ctx := context.Background()

	t.Run("countdown", func(t *testing.T) {
		svc := newTestService(t)
		result := svc.SetTimer(ctx, "alice", 5, "countdown", "Test Timer")

		assert.True(t, result.Success)
		assert.Equal(t, domain.TimerTypeCountdown, result.TimerType)
		assert.Contains(t, result.Message, "Test Timer")
		assert.True(t, svc.Countdown("alice").Status().Active)
	})

	t.Run("pomodoro", func(t *testing.T) {
		svc := newTestService(t)
		result := svc.SetTimer(ctx, "alice", 25, "pomodoro", "")

		assert.True(t, result.Success)
		assert.Equal(t, domain.TimerTypePomodoro, result.TimerType)
		assert.Contains(t, result.Message, "work session")
		p, _ := svc.Pomodoro(ctx, "alice")
		assert.True(t, p.Status().Active)
	})

	t.Run("default type is countdown", func(t *testing.T) {
		svc := newTestService(t)
		result := svc.SetTimer(ctx, "alice", 1, "", "")
		assert.True(t, result.Success)
		assert.Contains(t, result.Message, "Timer for 1 minutes")
	})

	t.Run("invalid", func(t *testing.T) {
		svc := newTestService(t)
		assert.False(t, svc.SetTimer(ctx, "alice", 0, "countdown", "").Success)
		assert.False(t, svc.SetTimer(ctx, "alice", 5, "egg", "").Success)
		assert.False(t, svc.SetTimer(ctx, "alice", 5, "all", "").Success)
	})

	t.Run("pomodoro already running", func(t *testing.T) {
		svc := newTestService(t)
		require.True(t, svc.SetTimer(ctx, "alice", 25, "pomodoro", "").Success)
		result := svc.SetTimer(ctx, "alice", 25, "pomodoro", "")
		assert.False(t, result.Success)
		assert.Equal(t, domain.ErrAlreadyActive.Error(), result.Message)
	})
}

func TestTimerService_TimerStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	result := svc.TimerStatus(ctx, "alice")
	assert.True(t, result.Success)
	assert.Empty(t, result.ActiveTimers)
	assert.Equal(t, "No active timers.", result.Message)

	svc.SetTimer(ctx, "alice", 10, "countdown", "Tea")
	svc.SetTimer(ctx, "alice", 25, "pomodoro", "")

	result = svc.TimerStatus(ctx, "alice")
	assert.True(t, result.Success)
	require.Len(t, result.ActiveTimers, 2)
	assert.Equal(t, domain.TimerTypeCountdown, result.ActiveTimers[0].TimerType)
	assert.Equal(t, domain.TimerTypePomodoro, result.ActiveTimers[1].TimerType)

	other := svc.TimerStatus(ctx, "bob")
	assert.Empty(t, other.ActiveTimers, "users must not share timers")
}

func TestTimerService_CancelTimer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	svc.SetTimer(ctx, "alice", 10, "countdown", "Tea")
	result := svc.CancelTimer(ctx, "alice", "countdown")

	assert.True(t, result.Success)
	require.Len(t, result.CancelledTimers, 1)
	assert.Equal(t, domain.TimerTypeCountdown, result.CancelledTimers[0].TimerType)
	assert.False(t, svc.Countdown("alice").Status().Active)

	again := svc.CancelTimer(ctx, "alice", "countdown")
	assert.False(t, again.Success)

	svc.SetTimer(ctx, "alice", 10, "countdown", "Tea")
	svc.SetTimer(ctx, "alice", 25, "pomodoro", "")
	all := svc.CancelTimer(ctx, "alice", "all")
	assert.True(t, all.Success)
	assert.Len(t, all.CancelledTimers, 2)

	assert.False(t, svc.CancelTimer(ctx, "alice", "kettle").Success)
}

func TestTimerService_ControlPomodoro(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	svc.SetTimer(ctx, "alice", 25, "pomodoro", "")
	p, _ := svc.Pomodoro(ctx, "alice")

	result := svc.ControlPomodoro(ctx, "alice", "pause")
	assert.True(t, result.Success)
	assert.False(t, p.Status().Active)

	result = svc.ControlPomodoro(ctx, "alice", "resume")
	assert.True(t, result.Success)
	assert.True(t, p.Status().Active)

	result = svc.ControlPomodoro(ctx, "alice", "skip")
	assert.True(t, result.Success)
	assert.Equal(t, domain.PhaseShortBreak, p.Status().Phase)
	assert.Equal(t, "Skipped Work. Next up: Short Break.", result.Message)

	result = svc.ControlPomodoro(ctx, "alice", "status")
	assert.True(t, result.Success)
	assert.Equal(t, "Short Break is up next. 1 pomodoros completed.", result.Message)

	result = svc.ControlPomodoro(ctx, "alice", "pause")
	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrNotActive.Error(), result.Message)
}

func TestTimerService_StartPhase(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	result := svc.StartPhase(ctx, "alice", "long_break")
	require.True(t, result.Success, result.Message)
	assert.Equal(t, domain.PhaseLongBreak, result.Pomodoro.Phase)
	assert.True(t, strings.HasPrefix(result.Message, "Long Break phase started"))

	again := svc.StartPhase(ctx, "alice", "work")
	assert.False(t, again.Success)

	other := newTestService(t)
	bad := other.StartPhase(ctx, "alice", "nap")
	assert.False(t, bad.Success)
	assert.Contains(t, bad.Message, "nap")
}

func TestTimerService_ControlPomodoro_UnknownAction(t *testing.T) {
	svc := newTestService(t)

	result := svc.ControlPomodoro(context.Background(), "alice", "paus")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, `"paus"`)
	assert.Equal(t, "pause", result.Suggestion)

	assert.Empty(t, svc.existing("alice").pomodoro, "unknown action must not touch timers")
}

func TestTimerService_ProcessCommand(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	result := svc.ProcessCommand(ctx, "alice", "set a timer for 10 minutes")
	assert.True(t, result.Success)
	assert.True(t, svc.Countdown("alice").Status().Active)

	result = svc.ProcessCommand(ctx, "alice", "set a timer for 5 minutes called Meeting Timer")
	assert.True(t, result.Success)
	assert.Equal(t, "Meeting Timer", svc.Countdown("alice").Status().Name)

	result = svc.ProcessCommand(ctx, "alice", "start a pomodoro")
	assert.True(t, result.Success)
	p, _ := svc.Pomodoro(ctx, "alice")
	assert.True(t, p.Status().Active)

	result = svc.ProcessCommand(ctx, "alice", "what's the status of my timer?")
	assert.True(t, result.Success)
	assert.Len(t, result.ActiveTimers, 2)

	result = svc.ProcessCommand(ctx, "alice", "pause pomodoro")
	assert.True(t, result.Success)
	assert.False(t, p.Status().Active)

	result = svc.ProcessCommand(ctx, "alice", "resume pomodoro")
	assert.True(t, result.Success)
	assert.True(t, p.Status().Active)

	result = svc.ProcessCommand(ctx, "alice", "cancel pomodoro timer")
	assert.True(t, result.Success)
	assert.False(t, p.Status().Active)
	assert.True(t, svc.Countdown("alice").Status().Active, "pomodoro cancel must leave the countdown running")
}

func TestTimerService_ProcessCommand_CustomPomodoro(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	result := svc.ProcessCommand(ctx, "alice", "start a 50 minute pomodoro")
	require.True(t, result.Success, result.Message)
	require.NotNil(t, result.Pomodoro)
	assert.Greater(t, *result.Pomodoro.TimeRemainingSeconds, 49.0*60)
}

func TestTimerService_Respond(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	result := svc.Respond(ctx, "alice", "set a timer for 10 minutes")
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.AirthResponse)

	result = svc.Respond(ctx, "alice", "start a pomodoro timer")
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.AirthResponse)

	result = svc.Respond(ctx, "alice", "do something with my timer")
	assert.False(t, result.Success)
	assert.Equal(t, "unrecognized", result.Action)
	assert.True(t, strings.HasPrefix(result.AirthResponse, "*raises an eyebrow*"))
}

func TestTimerService_CompletionNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(t, WithNotifier(notifier))

	done := make(chan Completion, 1)
	svc.OnCompletion(func(c Completion) { done <- c })

	result := svc.SetTimer(context.Background(), "alice", 0.0005, "countdown", "Quick")
	require.True(t, result.Success)

	select {
	case c := <-done:
		assert.Equal(t, "alice", c.UserID)
		assert.Equal(t, domain.TimerTypeCountdown, c.TimerType)
		assert.Equal(t, "Quick", c.Name)
		assert.NotEmpty(t, c.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, []string{"Quick"}, notifier.countdowns)
}

func TestTimerService_WaitForCountdown(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.False(t, svc.WaitForCountdown(ctx, "alice"), "nothing running")

	require.True(t, svc.SetTimer(ctx, "alice", 0.005, "countdown", "").Success)
	assert.True(t, svc.WaitForCountdown(ctx, "alice"))
}

func TestTimerService_WaitForCountdownAgain(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.True(t, svc.SetTimer(ctx, "alice", 0.005, "countdown", "").Success)
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	for i := 0; i < 5; i++ {
		assert.False(t, svc.WaitForCountdown(cancelled, "alice"), "context already done")
	}
	assert.True(t, svc.WaitForCountdown(ctx, "alice"))

	require.True(t, svc.SetTimer(ctx, "alice", 10, "countdown", "").Success)
	go func() {
		time.Sleep(20 * time.Millisecond)
		svc.CancelTimer(ctx, "alice", "countdown")
	}()
	assert.False(t, svc.WaitForCountdown(ctx, "alice"), "cancelled countdown")
}

func TestTimerService_RestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewMemory()
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	first := newTestService(t, WithStore(store))
	require.True(t, first.SetTimer(ctx, "alice", 25, "pomodoro", "").Success)
	first.Close()

	second := newTestService(t, WithStore(store))
	result := second.TimerStatus(ctx, "alice")
	require.Len(t, result.ActiveTimers, 1)
	assert.Equal(t, domain.PhaseWork, result.ActiveTimers[0].Phase)
}
