package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"foodcrimes/internal/models"
	"foodcrimes/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) Run(context.Context) (*service.DailyImageResult, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &service.DailyImageResult{Image: &models.DailyImage{GenerationDate: "2024-05-01"}, Created: true}, nil
}

func TestParseRunAt(t *testing.T) {
	t.Parallel()
	h, m, err := ParseRunAt("06:30")
	require.NoError(t, err)
	assert.Equal(t, 6, h)
	assert.Equal(t, 30, m)

	for _, bad := range []string{"", "6", "25:00", "06:61", "noon"} {
		_, _, err := ParseRunAt(bad)
		assert.Error(t, err, bad)
	}
}

func TestNextRun(t *testing.T) {
	t.Parallel()
	s, err := New(&countingRunner{}, "06:00", time.UTC)
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before slot", time.Date(2024, 5, 1, 5, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)},
		{"at slot", time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC), time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC)},
		{"after slot", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC), time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC)},
		{"month end", time.Date(2024, 5, 31, 7, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(s.NextRun(tt.now)), "got %v", s.NextRun(tt.now))
		})
	}
}

func TestNextRun_Timezone(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	s, err := New(&countingRunner{}, "06:00", loc)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) // 05:00 in New York
	assert.True(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Equal(s.NextRun(now)))
}

func TestWait_RetriesAfterFailure(t *testing.T) {
	t.Parallel()
	s, err := New(&countingRunner{}, "06:00", time.UTC)
	require.NoError(t, err)
	s.RetryDelay = 10 * time.Minute

	now := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, 23*time.Hour, s.wait(now, true))
	assert.Equal(t, 10*time.Minute, s.wait(now, false))

	late := time.Date(2024, 5, 2, 5, 55, 0, 0, time.UTC)
	assert.Equal(t, 5*time.Minute, s.wait(late, false))
}

func TestStart_CatchesUpAndStops(t *testing.T) {
	t.Parallel()
	runner := &countingRunner{}
	s, err := New(runner, "00:00", time.UTC)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	s.Start(ctx)

	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.EqualValues(t, 1, runner.calls.Load())
}

func TestRunOnce(t *testing.T) {
	t.Parallel()
	s, err := New(&countingRunner{err: errors.New("boom")}, "06:00", time.UTC)
	require.NoError(t, err)
	assert.False(t, s.runOnce(context.Background()))

	s, err = New(&countingRunner{}, "06:00", time.UTC)
	require.NoError(t, err)
	assert.True(t, s.runOnce(context.Background()))
}
