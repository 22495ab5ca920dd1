package metrics

import (
	"testing"

	"github.com/mauv0809/league-engine/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) MetricsStore {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return New(db)
}

func TestIncrementAndGetAll(t *testing.T) {
	store := setupTestStore(t)

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	store.Increment("weekly_runs")
	store.Increment("weekly_runs")
	store.Increment("scores_finalized")

	all, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"weekly_runs":      2,
		"scores_finalized": 1,
	}, all)
}

func TestServiceMirrorsDurableCounters(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(prometheus.NewRegistry()).WithStore(store)

	svc.IncWeeklyRuns()
	svc.IncScoresFinalized()
	svc.IncScoresFinalized()
	svc.IncProposalResponses() // process-health only, not persisted

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"weekly_runs":      1,
		"scores_finalized": 2,
	}, all)
}
