package api

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/tracker"
)

func TestWatcher_RunOnceRecordsAndLogsFlip(t *testing.T) {
	ctx := context.Background()

	// GIVEN: A watcher over an empty database
	h, _ := setupTestHandler(t)
	logger, hook := test.NewNullLogger()
	h.Log = logger
	watcher := NewEligibilityWatcher(h)

	// WHEN: Running with no profile
	run, err := watcher.RunOnce(ctx)

	// THEN: A not-eligible run is recorded
	require.NoError(t, err)
	assert.False(t, run.Eligible)
	assert.Equal(t, []eligibility.Code{eligibility.CodeNoProfile}, run.BlockerCodes)
	assert.Equal(t, "first eligibility evaluation recorded", hook.LastEntry().Message)

	// WHEN: A qualifying profile is saved and the watcher runs again
	_, err = h.Service.UpdateProfile(ctx, tracker.ProfileInput{
		DateOfBirth:         "2000-01-01",
		LPRDate:             "2020-01-01",
		State:               "CA",
		StateResidenceSince: "2020-06-01",
	})
	require.NoError(t, err)
	run, err = watcher.RunOnce(ctx)
	require.NoError(t, err)

	// THEN: The flip is logged as a warning
	assert.True(t, run.Eligible)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "eligibility verdict changed", entry.Message)
	assert.Equal(t, "2025-06-01", entry.Data["as_of"])

	runs, err := h.Store.ListEvaluationRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].Eligible)
}

func TestWatcher_StartEvaluatesImmediately(t *testing.T) {
	h, _ := setupTestHandler(t)
	watcher := NewEligibilityWatcher(h)
	watcher.CheckInterval = time.Hour

	watcher.Start()
	defer watcher.Stop()

	require.Eventually(t, func() bool {
		runs, err := h.Store.ListEvaluationRuns(context.Background(), 0)
		return err == nil && len(runs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DisabledDoesNotStart(t *testing.T) {
	h, _ := setupTestHandler(t)
	watcher := NewEligibilityWatcher(h)
	watcher.Enabled = false

	watcher.Start()
	watcher.Stop()

	runs, err := h.Store.ListEvaluationRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
