package tagging

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/ai/mock"
	"github.com/poiesic/mailtag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// endedJob fabricates a terminal job whose results the mock will stream.
func endedJob(t *testing.T, svc *mock.MockBatchService, ids ...string) *BatchJob {
	t.Helper()
	items := make([]ai.BatchItem, len(ids))
	for i, id := range ids {
		items[i] = ai.BatchItem{ID: id, Data: "payload", MediaType: "image/png"}
	}
	handle, err := svc.SubmitBatch(context.Background(), items)
	require.NoError(t, err)
	return &BatchJob{Handle: handle, MemberIDs: ids, Status: JobEnded}
}

func TestReconciler_WritesOneFilePerItem(t *testing.T) {
	tagsDir := t.TempDir()
	svc := mock.NewMockBatchService()
	job := endedJob(t, svc, "first", "second", "third")

	reconciler, err := NewReconciler(svc, tagsDir, nil)
	require.NoError(t, err)

	report, err := reconciler.Reconcile(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Succeeded)
	assert.Empty(t, report.Failures)
	assert.Zero(t, report.Failed())

	for _, id := range []string{"first", "second", "third"} {
		data, err := os.ReadFile(filepath.Join(tagsDir, id+".json"))
		require.NoError(t, err, "tag file for %s", id)

		var ts core.TagSet
		require.NoError(t, json.Unmarshal(data, &ts))
		assert.Equal(t, core.StringValue("mock subject"), ts["subject"])
		assert.Equal(t, core.ListValue("first", "second"), ts["topics"])
	}
}

func TestReconciler_FilesAreIndented(t *testing.T) {
	tagsDir := t.TempDir()
	svc := mock.NewMockBatchService()
	job := endedJob(t, svc, "item")

	reconciler, err := NewReconciler(svc, tagsDir, nil)
	require.NoError(t, err)
	_, err = reconciler.Reconcile(context.Background(), job)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(tagsDir, "item.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"", "tag files are human-readable")
}

func TestReconciler_StripsIgnoredTags(t *testing.T) {
	tagsDir := t.TempDir()
	svc := mock.NewMockBatchService()
	svc.ResultPayload = func(item ai.BatchItem) string {
		return `{"subject": "Welcome", "footer": "unsubscribe boilerplate", "topics": ["a"]}`
	}
	job := endedJob(t, svc, "item")

	reconciler, err := NewReconciler(svc, tagsDir, []string{"footer"})
	require.NoError(t, err)
	_, err = reconciler.Reconcile(context.Background(), job)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(tagsDir, "item.json"))
	require.NoError(t, err)

	var ts core.TagSet
	require.NoError(t, json.Unmarshal(data, &ts))
	assert.NotContains(t, ts, "footer")
	assert.Contains(t, ts, "subject")
	assert.Contains(t, ts, "topics")
}

func TestReconciler_MalformedPayloadIsolated(t *testing.T) {
	tagsDir := t.TempDir()
	svc := mock.NewMockBatchService()
	svc.ResultPayload = func(item ai.BatchItem) string {
		if item.ID == "broken" {
			return "the model rambled instead of emitting JSON"
		}
		return `{"subject": "fine"}`
	}
	job := endedJob(t, svc, "good_one", "broken", "good_two")

	reconciler, err := NewReconciler(svc, tagsDir, nil)
	require.NoError(t, err)

	report, err := reconciler.Reconcile(context.Background(), job)
	require.NoError(t, err, "one bad payload must not abort the job")
	assert.Equal(t, 2, report.Succeeded)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "broken", report.Failures[0].ID)
	assert.Equal(t, FailureParse, report.Failures[0].Kind)
	assert.ErrorIs(t, report.Failures[0].Err, core.ErrMalformedPayload)

	assert.NoFileExists(t, filepath.Join(tagsDir, "broken.json"))
	assert.FileExists(t, filepath.Join(tagsDir, "good_one.json"))
	assert.FileExists(t, filepath.Join(tagsDir, "good_two.json"))
}

func TestReconciler_ErroredItemRecorded(t *testing.T) {
	tagsDir := t.TempDir()
	svc := mock.NewMockBatchService()
	svc.BatchResultsFunc = func(ctx context.Context, handle string, fn func(ai.BatchResultItem) error) error {
		if err := fn(ai.BatchResultItem{ID: "ok", Payload: `{"subject": "fine"}`}); err != nil {
			return err
		}
		return fn(ai.BatchResultItem{ID: "errored", Err: errors.New("model refused")})
	}
	job := &BatchJob{Handle: "batch_001", MemberIDs: []string{"ok", "errored"}, Status: JobEnded}

	reconciler, err := NewReconciler(svc, tagsDir, nil)
	require.NoError(t, err)

	report, err := reconciler.Reconcile(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, FailureResult, report.Failures[0].Kind)
}

func TestReconciler_RejectsNonTerminalJob(t *testing.T) {
	svc := mock.NewMockBatchService()
	reconciler, err := NewReconciler(svc, t.TempDir(), nil)
	require.NoError(t, err)

	for _, status := range []JobStatus{JobSubmitted, JobPolling, JobFailed} {
		job := &BatchJob{Handle: "batch_001", Status: status}
		_, err := reconciler.Reconcile(context.Background(), job)
		require.Error(t, err, "status %s", status)
		assert.ErrorIs(t, err, ErrBatchNotTerminal)
	}
}

func TestReconciler_StreamFailureReturnsPartialReport(t *testing.T) {
	tagsDir := t.TempDir()
	svc := mock.NewMockBatchService()
	svc.BatchResultsFunc = func(ctx context.Context, handle string, fn func(ai.BatchResultItem) error) error {
		if err := fn(ai.BatchResultItem{ID: "reached", Payload: `{"subject": "fine"}`}); err != nil {
			return err
		}
		return errors.New("connection reset")
	}
	job := &BatchJob{Handle: "batch_001", MemberIDs: []string{"reached", "unreached"}, Status: JobEnded}

	reconciler, err := NewReconciler(svc, tagsDir, nil)
	require.NoError(t, err)

	report, err := reconciler.Reconcile(context.Background(), job)
	require.Error(t, err)
	require.NotNil(t, report, "partial progress must be reported")
	assert.Equal(t, 1, report.Succeeded)
	assert.FileExists(t, filepath.Join(tagsDir, "reached.json"))
}

func TestReconciler_WriteFailureRecorded(t *testing.T) {
	tagsDir := filepath.Join(t.TempDir(), "does", "not", "exist")
	svc := mock.NewMockBatchService()
	job := endedJob(t, svc, "item")

	reconciler, err := NewReconciler(svc, tagsDir, nil)
	require.NoError(t, err)

	report, err := reconciler.Reconcile(context.Background(), job)
	require.NoError(t, err)
	assert.Zero(t, report.Succeeded)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, FailureWrite, report.Failures[0].Kind)
}
