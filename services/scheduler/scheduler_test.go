package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/photoproos/platform/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_RegisterAndRunNow(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := New(zap.NewNop(), time.Second, reg)
	require.NoError(t, err)

	calls := 0
	require.NoError(t, s.Register("overdue", "15 * * * *", func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}))
	require.NoError(t, s.Register("payouts", "", func(ctx context.Context) error {
		return errors.New("boom")
	}))

	require.NoError(t, s.RunNow("overdue"))
	assert.Equal(t, 1, calls)
	assert.Error(t, s.RunNow("payouts"))
	assert.Error(t, s.RunNow("missing"))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.runs.WithLabelValues("overdue", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.runs.WithLabelValues("payouts", "error")))
}

func TestScheduler_RunNowWhileRunning(t *testing.T) {
	s, err := New(zap.NewNop(), 5*time.Second, prometheus.NewRegistry())
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32
	require.NoError(t, s.Register("social_publish", "* * * * *", func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
		return nil
	}))

	first := make(chan error, 1)
	go func() { first <- s.RunNow("social_publish") }()
	<-started

	err = s.RunNow("social_publish")
	assert.ErrorIs(t, err, services.ErrJobRunning)
	assert.True(t, services.IsConflictError(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.runs.WithLabelValues("social_publish", "skipped")))

	close(release)
	require.NoError(t, <-first)
	assert.EqualValues(t, 1, runs.Load())

	require.NoError(t, s.RunNow("social_publish"))
	assert.EqualValues(t, 2, runs.Load())
}

func TestScheduler_RegisterErrors(t *testing.T) {
	s, err := New(zap.NewNop(), time.Second, nil)
	require.NoError(t, err)

	assert.Error(t, s.Register("bad", "not a cron", func(context.Context) error { return nil }))

	require.NoError(t, s.Register("a", "@every 1m", func(context.Context) error { return nil }))
	assert.Error(t, s.Register("a", "@every 1m", func(context.Context) error { return nil }))
}

func TestScheduler_Jobs(t *testing.T) {
	s, err := New(zap.NewNop(), time.Second, nil)
	require.NoError(t, err)
	require.NoError(t, s.Register("social", "* * * * *", func(context.Context) error { return nil }))
	require.NoError(t, s.Register("payouts", "", func(context.Context) error { return nil }))

	s.Start()
	defer func() { require.NoError(t, s.Stop(context.Background())) }()

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "payouts", jobs[0].Name)
	assert.False(t, jobs[0].Enabled)
	assert.Equal(t, "social", jobs[1].Name)
	assert.True(t, jobs[1].Enabled)
	assert.False(t, jobs[1].Next.IsZero())
}

func TestScheduler_DuplicateMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(zap.NewNop(), time.Second, reg)
	require.NoError(t, err)
	_, err = New(zap.NewNop(), time.Second, reg)
	assert.Error(t, err)
}
