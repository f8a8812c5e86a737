package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/workpilot/internal/config"
	"github.com/mmynk/workpilot/internal/reminder"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeDispatcher) DispatchToAllGroups(ctx context.Context, now time.Time) (reminder.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return reminder.BatchResult{RunID: "run"}, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRejectsInvalidSlot(t *testing.T) {
	_, err := New([]config.Slot{{Name: "bad", Cron: "61 * * * *"}}, time.UTC, &fakeDispatcher{}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestSlotsUseConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	s, err := New(config.Default().Reminder.Slots, loc, &fakeDispatcher{}, testLogger())
	require.NoError(t, err)

	next, ok := s.Next("friday-warning")
	require.True(t, ok)
	local := next.In(loc)
	assert.Equal(t, time.Friday, local.Weekday())
	assert.Equal(t, 17, local.Hour())
	assert.Equal(t, 0, local.Minute())

	next, ok = s.Next("monday-deadline")
	require.True(t, ok)
	local = next.In(loc)
	assert.Equal(t, time.Monday, local.Weekday())
	assert.Equal(t, 9, local.Hour())

	_, ok = s.Next("missing")
	assert.False(t, ok)
}

func TestSlotFiresDispatcher(t *testing.T) {
	d := &fakeDispatcher{}
	s, err := New([]config.Slot{{Name: "weekly", Cron: "0 17 * * 5"}}, time.UTC, d, testLogger())
	require.NoError(t, err)

	s.cron.Entry(s.entries["weekly"]).Job.Run()

	d.err = errors.New("store unavailable")
	s.cron.Entry(s.entries["weekly"]).Job.Run()

	assert.Equal(t, 2, d.calls)
}

func TestRunStopsWithContext(t *testing.T) {
	s, err := New(nil, time.UTC, &fakeDispatcher{}, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.ErrorIs(t, s.ctx.Err(), context.Canceled)
}

func TestEachSlotRunsUnderItsOwnName(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	d := &fakeDispatcher{}
	s, err := New(config.Default().Reminder.Slots, time.UTC, d, logger)
	require.NoError(t, err)

	s.cron.Entry(s.entries["friday-warning"]).Job.Run()
	s.cron.Entry(s.entries["monday-deadline"]).Job.Run()

	out := buf.String()
	assert.Equal(t, 2, d.calls)
	assert.Contains(t, out, `msg="Reminder slot scheduled" slot=friday-warning`)
	assert.Contains(t, out, `msg="Scheduled reminder finished" slot=friday-warning`)
	assert.Contains(t, out, `msg="Scheduled reminder finished" slot=monday-deadline`)
}
