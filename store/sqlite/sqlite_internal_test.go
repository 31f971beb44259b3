package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEvaluationRuns_ReportsCorruptRows(t *testing.T) {
	ctx := context.Background()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tests := []struct {
		name      string
		asOf      string
		earliest  any
		createdAt string
		wantField string
	}{
		{"bad as_of", "06/01/2025", nil, "2025-06-01T00:00:00Z", "as_of"},
		{"bad created_at", "2025-06-01", nil, "yesterday", "created_at"},
		{"bad filing date", "2025-06-01", "soon", "2025-06-01T00:00:00Z", "earliest_filing_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN: A run row written outside the store
			_, err := store.db.ExecContext(ctx, "DELETE FROM evaluation_runs")
			require.NoError(t, err)
			_, err = store.db.ExecContext(ctx, `
				INSERT INTO evaluation_runs (as_of, eligible, blocker_codes, earliest_filing_date, created_at)
				VALUES (?, 0, '', ?, ?)
			`, tt.asOf, tt.earliest, tt.createdAt)
			require.NoError(t, err)

			// WHEN: Listing
			_, err = store.ListEvaluationRuns(ctx, 0)

			// THEN: The bad column is reported
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}
