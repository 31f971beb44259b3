package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) calendar.Date { return calendar.MustParseDate(s) }

func TestProfile_EmptySlotThenUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p, "no profile configured yet")

	profile := eligibility.Profile{
		DateOfBirth:         d("2000-01-01"),
		LPRDate:             d("2020-01-01"),
		Path:                eligibility.PathGeneral,
		State:               "CA",
		StateResidenceSince: d("2020-06-01"),
	}
	require.NoError(t, store.SaveProfile(ctx, profile))

	profile.State = "WA"
	profile.Path = eligibility.PathSpouse
	require.NoError(t, store.SaveProfile(ctx, profile))

	loaded, err := store.LoadProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, profile, *loaded)
}

func TestTrips_SaveReplacesListAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	trips, err := store.LoadTrips(ctx)
	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)

	first := []eligibility.Trip{
		{ID: "b", Start: d("2023-01-01"), End: d("2023-01-10"), Destination: "Peru", CountsAsAbsence: true},
		{ID: "a", Start: d("2022-01-01"), End: d("2022-01-10"), CountsAsAbsence: false},
	}
	require.NoError(t, store.SaveTrips(ctx, first))

	loaded, err := store.LoadTrips(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, loaded)

	require.NoError(t, store.SaveTrips(ctx, first[1:]))
	loaded, err = store.LoadTrips(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].ID)
	assert.False(t, loaded[0].CountsAsAbsence)
}

func TestEvaluationRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	latest, err := store.LatestEvaluationRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	blocked := eligibility.Result{
		Blockers:           []eligibility.Finding{{Code: eligibility.CodeTenureShort}, {Code: eligibility.CodePresenceShort}},
		EarliestFilingDate: d("2026-01-01").Ptr(),
	}
	require.NoError(t, store.SaveEvaluationRun(ctx, sqlite.NewEvaluationRun(d("2025-06-01"), blocked)))
	require.NoError(t, store.SaveEvaluationRun(ctx, sqlite.NewEvaluationRun(d("2026-01-01"), eligibility.Result{Eligible: true})))

	runs, err := store.ListEvaluationRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.True(t, runs[0].Eligible)
	assert.Empty(t, runs[0].BlockerCodes)
	assert.Nil(t, runs[0].EarliestFilingDate)

	assert.False(t, runs[1].Eligible)
	assert.Equal(t, d("2025-06-01"), runs[1].AsOf)
	assert.Equal(t, []eligibility.Code{eligibility.CodeTenureShort, eligibility.CodePresenceShort}, runs[1].BlockerCodes)
	require.NotNil(t, runs[1].EarliestFilingDate)
	assert.Equal(t, d("2026-01-01"), *runs[1].EarliestFilingDate)
}

func TestWipe(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveProfile(ctx, eligibility.Profile{
		DateOfBirth: d("2000-01-01"), LPRDate: d("2020-01-01"), StateResidenceSince: d("2020-01-01"),
	}))
	require.NoError(t, store.SaveTrips(ctx, []eligibility.Trip{{ID: "x", Start: d("2023-01-01"), End: d("2023-01-02")}}))
	require.NoError(t, store.SaveEvaluationRun(ctx, sqlite.NewEvaluationRun(d("2025-01-01"), eligibility.Result{})))

	require.NoError(t, store.Wipe(ctx))

	p, err := store.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
	trips, err := store.LoadTrips(ctx)
	require.NoError(t, err)
	assert.Empty(t, trips)
	runs, err := store.ListEvaluationRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReplace_FailureLeavesPriorRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// GIVEN: A California profile, one trip and one recorded run
	ca := eligibility.Profile{
		DateOfBirth: d("2000-01-01"), LPRDate: d("2020-01-01"), Path: eligibility.PathGeneral,
		State: "CA", StateResidenceSince: d("2020-06-01"),
	}
	require.NoError(t, store.SaveProfile(ctx, ca))
	require.NoError(t, store.SaveTrips(ctx, []eligibility.Trip{{ID: "a", Start: d("2022-01-01"), End: d("2022-01-10"), CountsAsAbsence: true}}))
	require.NoError(t, store.SaveEvaluationRun(ctx, sqlite.NewEvaluationRun(d("2025-01-01"), eligibility.Result{Eligible: true})))

	// WHEN: Replacing with a new profile and trips that collide on ID
	ny := ca
	ny.State = "NY"
	err := store.Replace(ctx, &ny, []eligibility.Trip{
		{ID: "x", Start: d("2023-01-01"), End: d("2023-01-05")},
		{ID: "x", Start: d("2023-02-01"), End: d("2023-02-05")},
	})

	// THEN: The transaction rolls back
	require.Error(t, err)
	p, err := store.LoadProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "CA", p.State)
	trips, err := store.LoadTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "a", trips[0].ID)

	// WHEN: Replacing with no profile and a valid list
	require.NoError(t, store.Replace(ctx, nil, []eligibility.Trip{{ID: "b", Start: d("2023-03-01"), End: d("2023-03-02")}}))

	// THEN: Profile cleared, trips swapped, history kept
	p, err = store.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
	trips, err = store.LoadTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "b", trips[0].ID)
	runs, err := store.ListEvaluationRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
