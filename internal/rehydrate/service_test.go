package rehydrate_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/league-engine/internal/database"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/prompt"
	"github.com/mauv0809/league-engine/internal/proposal"
	"github.com/mauv0809/league-engine/internal/rehydrate"
	"github.com/mauv0809/league-engine/internal/scoring"
	"github.com/mauv0809/league-engine/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) league.Store {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	store, err := league.New(tabular.New(db))
	require.NoError(t, err)
	return store
}

func liveRef(n string) league.PromptRef {
	return league.PromptRef{ChannelID: "C1", MessageID: n}
}

func TestRun(t *testing.T) {
	t.Run("rearms a handle per live proposal", func(t *testing.T) {
		store := newTestStore(t)
		for i, id := range []string{"Week3-M001", "Week3-M002", "Week3-M003"} {
			require.NoError(t, store.SaveProposal(league.MatchProposal{
				MatchID: id, TeamA: "A", TeamB: "B", ProposerID: "U1",
				ProposedTime: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
				Prompt:       liveRef(string(rune('a' + i))),
			}))
		}
		require.NoError(t, store.SaveScoreProposal(league.ScoreProposal{
			MatchID: "Week3-M004", TeamA: "A", TeamB: "B", ProposerID: "U1",
			Maps:   []league.MapResult{{Gamemode: "Control", ScoreA: 2, ScoreB: 1}},
			Prompt: liveRef("d"),
		}))

		proposals := proposal.NewMock()
		scores := scoring.NewMock()
		svc := rehydrate.New(store, prompt.NewMock(), proposals, scores)

		report, err := svc.Run()
		require.NoError(t, err)
		assert.Equal(t, 3, report.MatchProposals)
		assert.Equal(t, 1, report.ScoreProposals)
		assert.Zero(t, report.Orphans)
		assert.ElementsMatch(t, []string{"Week3-M001", "Week3-M002", "Week3-M003"}, proposals.RearmCalls)
		assert.Equal(t, []string{"Week3-M004"}, scores.RearmCalls)
	})

	t.Run("row with a missing prompt is deleted not rehydrated", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.SaveProposal(league.MatchProposal{
			MatchID: "Week3-M001", TeamA: "A", TeamB: "B", ProposerID: "U1",
			Prompt: liveRef("gone"),
		}))
		require.NoError(t, store.SaveProposal(league.MatchProposal{
			MatchID: "Week3-M002", TeamA: "C", TeamB: "D", ProposerID: "U2",
			Prompt: liveRef("alive"),
		}))

		prompter := prompt.NewMock()
		prompter.ExistsFunc = func(ref league.PromptRef) (bool, error) {
			return ref.MessageID == "alive", nil
		}
		proposals := proposal.NewMock()
		svc := rehydrate.New(store, prompter, proposals, scoring.NewMock())

		report, err := svc.Run()
		require.NoError(t, err)
		assert.Equal(t, 1, report.MatchProposals)
		assert.Equal(t, 1, report.Orphans)
		assert.Equal(t, []string{"Week3-M002"}, proposals.RearmCalls)

		_, err = store.FindProposal("Week3-M001")
		assert.ErrorIs(t, err, league.ErrNotFound)
	})

	t.Run("row that never got a prompt is orphaned", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.SaveScoreProposal(league.ScoreProposal{
			MatchID: "Week3-M001", TeamA: "A", TeamB: "B", ProposerID: "U1",
		}))

		svc := rehydrate.New(store, prompt.NewMock(), proposal.NewMock(), scoring.NewMock())
		report, err := svc.Run()
		require.NoError(t, err)
		assert.Equal(t, 1, report.Orphans)
		assert.Zero(t, report.ScoreProposals)
	})

	t.Run("prompt lookup failure keeps the row", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.SaveProposal(league.MatchProposal{
			MatchID: "Week3-M001", TeamA: "A", TeamB: "B", ProposerID: "U1",
			Prompt: liveRef("a"),
		}))

		prompter := prompt.NewMock()
		prompter.ExistsFunc = func(ref league.PromptRef) (bool, error) {
			return false, errors.New("slack API is down")
		}
		proposals := proposal.NewMock()
		svc := rehydrate.New(store, prompter, proposals, scoring.NewMock())

		report, err := svc.Run()
		require.NoError(t, err)
		assert.Equal(t, 1, report.MatchProposals)
		assert.Zero(t, report.Orphans)
	})
}
