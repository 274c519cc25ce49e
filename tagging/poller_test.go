package tagging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_EndedImmediately(t *testing.T) {
	svc := mock.NewMockBatchService()
	rec := &recordingSleep{}
	poller, err := NewPoller(svc, 5, 5*time.Second, 120*time.Second, rec.sleep)
	require.NoError(t, err)

	job := &BatchJob{Handle: "batch_001", MemberIDs: []string{"a", "b"}, Status: JobSubmitted}
	require.NoError(t, poller.WaitUntilTerminal(context.Background(), job))

	assert.Equal(t, JobEnded, job.Status)
	assert.Equal(t, 1, svc.StatusCallsFor("batch_001"), "terminal status must short-circuit")
	assert.Empty(t, rec.delays, "no backoff when the first check is terminal")
}

func TestPoller_BacksOffUntilEnded(t *testing.T) {
	svc := mock.NewMockBatchService()
	svc.StatusSequence = []ai.BatchStatus{
		ai.BatchStatusInProgress,
		ai.BatchStatusInProgress,
		ai.BatchStatusEnded,
	}

	rec := &recordingSleep{}
	poller, err := NewPoller(svc, 5, 5*time.Second, 120*time.Second, rec.sleep)
	require.NoError(t, err)

	job := &BatchJob{Handle: "batch_001", Status: JobSubmitted}
	require.NoError(t, poller.WaitUntilTerminal(context.Background(), job))

	assert.Equal(t, JobEnded, job.Status)
	assert.Equal(t, 3, svc.StatusCallsFor("batch_001"))
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, rec.delays,
		"delay doubles between checks")
}

func TestPoller_TimesOutAfterRetryBudget(t *testing.T) {
	svc := mock.NewMockBatchService()
	svc.BatchStatusFunc = func(ctx context.Context, handle string) (ai.BatchStatus, error) {
		return ai.BatchStatusInProgress, nil
	}

	rec := &recordingSleep{}
	poller, err := NewPoller(svc, 5, 5*time.Second, 120*time.Second, rec.sleep)
	require.NoError(t, err)

	job := &BatchJob{Handle: "batch_001", Status: JobSubmitted}
	err = poller.WaitUntilTerminal(context.Background(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchTimeout)
	assert.Equal(t, JobFailed, job.Status)
	assert.Equal(t, 5, svc.StatusCount(), "exactly maxAttempts checks, no sixth")
	assert.Len(t, rec.delays, 4, "no sleep after the final check")
}

func TestPoller_StatusErrorsGetSameBackoff(t *testing.T) {
	svc := mock.NewMockBatchService()
	calls := 0
	svc.BatchStatusFunc = func(ctx context.Context, handle string) (ai.BatchStatus, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("rate limited")
		}
		return ai.BatchStatusEnded, nil
	}

	rec := &recordingSleep{}
	poller, err := NewPoller(svc, 5, time.Second, 0, rec.sleep)
	require.NoError(t, err)

	job := &BatchJob{Handle: "batch_001", Status: JobSubmitted}
	require.NoError(t, poller.WaitUntilTerminal(context.Background(), job))
	assert.Equal(t, JobEnded, job.Status)
	assert.Equal(t, 3, calls)
}

func TestPoller_ContextCancellationPropagates(t *testing.T) {
	svc := mock.NewMockBatchService()
	ctx, cancel := context.WithCancel(context.Background())
	svc.BatchStatusFunc = func(ctx context.Context, handle string) (ai.BatchStatus, error) {
		cancel()
		return ai.BatchStatusInProgress, nil
	}

	poller, err := NewPoller(svc, 5, time.Millisecond, 0, nil)
	require.NoError(t, err)

	job := &BatchJob{Handle: "batch_001", Status: JobSubmitted}
	err = poller.WaitUntilTerminal(ctx, job)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrBatchTimeout, "cancellation is not a timeout")
}

func TestPoller_RequiresService(t *testing.T) {
	_, err := NewPoller(nil, 5, time.Second, 0, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchServiceRequired)
}
