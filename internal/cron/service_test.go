package cron

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/metrics"
)

type fakeLock struct {
	acquired   bool
	releases   int
	releaseErr error
	// ctxErr captures the context state seen by Release.
	ctxErr error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.acquired = false
	f.releases++
	f.ctxErr = ctx.Err()
	return f.releaseErr
}

type testJob struct {
	name  string
	err   error
	runs  int
	onRun func()
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	if t.onRun != nil {
		t.onRun()
	}
	return t.err
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: &bytes.Buffer{}})
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	mock := clock.NewMock(time.Date(2025, 11, 28, 10, 0, 0, 0, time.UTC))
	ok := &testJob{name: "success", onRun: func() { mock.Advance(2 * time.Second) }}
	bad := &testJob{name: "fail", err: errors.New("boom")}
	reg := prometheus.NewRegistry()
	lock := &fakeLock{}

	service, err := NewService(ServiceParams{
		Logger:   newTestLogger(),
		Registry: NewRegistry(ok, bad),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Clock:    mock,
	})
	require.NoError(t, err)

	report, err := service.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, []string{"success", "fail"}, report.Ran)
	assert.Equal(t, []string{"fail"}, report.Failed)
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, bad.runs)
	assert.Equal(t, 1, lock.releases)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "catalog_cron_job_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetLabel()[0].GetValue() == "success" {
				assert.Equal(t, 2.0, m.GetHistogram().GetSampleSum())
			}
		}
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "skipped"}
	service, err := NewService(ServiceParams{
		Logger:   newTestLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{acquired: true},
	})
	require.NoError(t, err)

	report, err := service.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Zero(t, job.runs)
}

func TestRunOnceReleasesLockAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &testJob{name: "first", onRun: cancel}
	second := &testJob{name: "second"}
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   newTestLogger(),
		Registry: NewRegistry(first, second),
		Lock:     lock,
	})
	require.NoError(t, err)

	report, err := service.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, report.Ran)
	assert.Zero(t, second.runs)
	assert.Equal(t, 1, lock.releases)
	assert.NoError(t, lock.ctxErr)
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "first"}
	service, err := NewService(ServiceParams{
		Logger:   newTestLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, service.Run(ctx), context.Canceled)
	// the immediate cycle sees a canceled context and runs nothing
	assert.Zero(t, job.runs)
}

func TestNewServiceRequiresLoggerAndLock(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: &fakeLock{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: newTestLogger()})
	require.Error(t, err)
}
