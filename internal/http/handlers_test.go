package http_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/config"
	"github.com/mauv0809/league-engine/internal/database"
	server "github.com/mauv0809/league-engine/internal/http"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/matchmaking"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/proposal"
	"github.com/mauv0809/league-engine/internal/pubsub"
	"github.com/mauv0809/league-engine/internal/ratings"
	"github.com/mauv0809/league-engine/internal/scoring"
	"github.com/mauv0809/league-engine/internal/tabular"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type fixture struct {
	srv       *server.Server
	roles     *league.MockRoleChecker
	store     league.Store
	ledger    ratings.Ledger
	proposals *proposal.Mock
	scores    *scoring.Mock
	engine    *matchmaking.MockEngine
	notifier  *notifier.Mock
	events    *pubsub.MockPubSubClient
	clock     *clockwork.FakeClock
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	adapter := tabular.New(db)
	store, err := league.New(adapter)
	require.NoError(t, err)
	ledger, err := ratings.New(adapter, ratings.Options{
		WinDelta: 25, LossDelta: -25, DefaultTeamRating: 800, DefaultPlayerRating: 800,
	})
	require.NoError(t, err)

	cfg := config.Config{
		Slack: config.SlackConfig{AdminRoleID: "S-ADMINS"},
		League: config.LeagueConfig{
			TeamMinPlayers: 3,
			EloWinPoints:   25,
			EloLossPoints:  -25,
		},
	}

	f := &fixture{
		roles:     &league.MockRoleChecker{Roles: map[string][]string{"U-ADMIN": {"S-ADMINS"}}},
		store:     store,
		ledger:    ledger,
		proposals: proposal.NewMock(),
		scores:    scoring.NewMock(),
		engine:    matchmaking.NewMock(),
		notifier:  notifier.NewMock(),
		events:    pubsub.NewMock("test-project"),
		clock:     clockwork.NewFakeClockAt(testNow),
	}
	f.srv = server.NewServer(store, ledger, metrics.NewMock(), metrics.NewMetricsHandler(), metrics.New(db), cfg, f.notifier, f.roles, f.proposals, f.scores, f.engine, f.events, f.clock)
	return f
}

func postForm(srv *server.Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	rr := httptest.NewRecorder()
	f.srv.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestLifetimeMetrics(t *testing.T) {
	f := newFixture(t)
	f.srv.MetricsStore.Increment("weekly_runs")
	f.srv.MetricsStore.Increment("weekly_runs")

	rr := httptest.NewRecorder()
	f.srv.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics/lifetime", nil))
	assert.Equal(t, 200, rr.Code)

	var counters map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counters))
	assert.Equal(t, 2, counters["weekly_runs"])
}

func TestInteractivity(t *testing.T) {
	payload := func(actionID, matchID, userID string) url.Values {
		cb := slackapi.InteractionCallback{
			Type: slackapi.InteractionTypeBlockActions,
			User: slackapi.User{ID: userID},
		}
		cb.ActionCallback.BlockActions = []*slackapi.BlockAction{
			{ActionID: actionID, Value: matchID},
		}
		raw, _ := json.Marshal(cb)
		return url.Values{"payload": {string(raw)}}
	}

	t.Run("match time accept routes to the proposal coordinator", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/interactivity", payload("match_time_accept", "Week3-M001", "U5"))
		assert.Equal(t, 200, rr.Code)
		require.Len(t, f.proposals.RespondCalls, 1)
		call := f.proposals.RespondCalls[0]
		assert.Equal(t, "Week3-M001", call.MatchID)
		assert.Equal(t, proposal.Accept, call.Decision)
		assert.Equal(t, "U5", call.ActorID)
		assert.Empty(t, f.scores.RespondCalls)
	})

	t.Run("score decline routes to the score coordinator", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/interactivity", payload("score_decline", "Week3-M002", "U1"))
		assert.Equal(t, 200, rr.Code)
		require.Len(t, f.scores.RespondCalls, 1)
		assert.Equal(t, scoring.Decline, f.scores.RespondCalls[0].Decision)
	})

	t.Run("rejected response still returns 200 with an ephemeral message", func(t *testing.T) {
		f := newFixture(t)
		f.proposals.RespondFunc = func(matchID string, decision proposal.Decision, actorID string) error {
			return league.ErrUnauthorized
		}
		rr := postForm(f.srv, "/slack/interactivity", payload("match_time_accept", "Week3-M001", "U9"))
		assert.Equal(t, 200, rr.Code)
		assert.Contains(t, rr.Body.String(), "ephemeral")
	})
}

func TestProposeCommand(t *testing.T) {
	seedTeams := func(t *testing.T, f *fixture) {
		require.NoError(t, f.store.CreateTeam("Alpha", league.RosterSlot{Name: "Alice", UserID: "U1"}))
		require.NoError(t, f.store.CreateTeam("Beta", league.RosterSlot{Name: "Bob", UserID: "U5"}))
	}

	t.Run("assigned pair proposes the weekly match", func(t *testing.T) {
		f := newFixture(t)
		seedTeams(t, f)
		require.NoError(t, f.store.SetCurrentWeek(3))
		require.NoError(t, f.store.AppendWeeklyAssignment(league.WeeklyAssignment{
			Week: 3, TeamA: "Alpha", TeamB: "Beta", MatchID: "Week3-M001", ScheduledDate: "TBD",
		}))

		rr := postForm(f.srv, "/slack/command/propose", url.Values{
			"user_id": {"U1"},
			"text":    {"Beta 2025-06-05 18:00"},
		})
		assert.Equal(t, 200, rr.Code)
		require.Len(t, f.proposals.ProposeCalls, 1)
		call := f.proposals.ProposeCalls[0]
		assert.Equal(t, "Alpha", call.TeamA)
		assert.Equal(t, "Beta", call.TeamB)
		assert.Equal(t, league.MatchAssigned, call.MatchType)
		assert.Equal(t, time.Date(2025, 6, 5, 18, 0, 0, 0, time.UTC), call.ProposedTime)
	})

	t.Run("unassigned pair proposes a challenge", func(t *testing.T) {
		f := newFixture(t)
		seedTeams(t, f)
		rr := postForm(f.srv, "/slack/command/propose", url.Values{
			"user_id": {"U1"},
			"text":    {"Beta 2025-06-05 18:00"},
		})
		assert.Equal(t, 200, rr.Code)
		require.Len(t, f.proposals.ProposeCalls, 1)
		assert.Equal(t, league.MatchChallenge, f.proposals.ProposeCalls[0].MatchType)
	})

	t.Run("teamless proposer gets an ephemeral error", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/command/propose", url.Values{
			"user_id": {"U9"},
			"text":    {"Beta 2025-06-05 18:00"},
		})
		assert.Equal(t, 200, rr.Code)
		assert.Contains(t, rr.Body.String(), "not on a team")
		assert.Empty(t, f.proposals.ProposeCalls)
	})

	t.Run("bad time format is rejected before any lookup", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/command/propose", url.Values{
			"user_id": {"U1"},
			"text":    {"Beta tomorrow evening"},
		})
		assert.Equal(t, 200, rr.Code)
		assert.Empty(t, f.proposals.ProposeCalls)
	})
}

func TestScoreCommand(t *testing.T) {
	t.Run("maps and substitutes are parsed", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/command/score", url.Values{
			"user_id": {"U1"},
			"text":    {"Week3-M001 Control 2-1 Escort 0-3 Push 2-1 subB=Sid|U42"},
		})
		assert.Equal(t, 200, rr.Code)
		require.Len(t, f.scores.ProposeScoreCalls, 1)
		call := f.scores.ProposeScoreCalls[0]
		assert.Equal(t, "Week3-M001", call.MatchID)
		assert.Equal(t, "U1", call.ProposerID)
		require.Len(t, call.Maps, 3)
		assert.Equal(t, league.MapResult{Gamemode: "Escort", ScoreA: 0, ScoreB: 3}, call.Maps[1])
		require.NotNil(t, call.SubB)
		assert.Equal(t, "U42", call.SubB.UserID)
		assert.Nil(t, call.SubA)
	})

	t.Run("malformed score text is rejected", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/command/score", url.Values{
			"user_id": {"U1"},
			"text":    {"Week3-M001 Control two-one"},
		})
		assert.Equal(t, 200, rr.Code)
		assert.Empty(t, f.scores.ProposeScoreCalls)
	})
}

func TestSignupCommand(t *testing.T) {
	t.Run("signs the player up", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/command/signup", url.Values{
			"user_id": {"U1"}, "user_name": {"Alice"}, "text": {"sub Europe/Copenhagen"},
		})
		assert.Equal(t, 200, rr.Code)

		p, err := f.store.FindPlayer("U1")
		require.NoError(t, err)
		assert.Equal(t, league.RoleLeagueSub, p.Role)
		assert.Equal(t, "Europe/Copenhagen", p.Timezone)
	})

	t.Run("banned player cannot sign up", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.SignupPlayer(league.Player{UserID: "U2", Name: "Mallory"}))
		require.NoError(t, f.store.BanPlayer("U2", "smurfing", "admin", "2025-05-01"))

		rr := postForm(f.srv, "/slack/command/signup", url.Values{
			"user_id": {"U2"}, "user_name": {"Mallory"},
		})
		assert.Equal(t, 200, rr.Code)
		assert.Contains(t, rr.Body.String(), "not allowed")
		_, err := f.store.FindPlayer("U2")
		assert.ErrorIs(t, err, league.ErrNotFound)
	})
}

func TestTeamCommand(t *testing.T) {
	t.Run("create makes the actor captain", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/command/team", url.Values{
			"user_id": {"U1"}, "user_name": {"Alice"}, "text": {"create Alpha"},
		})
		assert.Equal(t, 200, rr.Code)

		team, err := f.store.FindTeamByName("Alpha")
		require.NoError(t, err)
		require.Len(t, team.Roster, 1)
		assert.Equal(t, "U1", team.Roster[0].UserID)
	})

	t.Run("only the captain may kick", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.CreateTeam("Alpha", league.RosterSlot{Name: "Alice", UserID: "U1"}))
		require.NoError(t, f.store.AddPlayerToTeam("Alpha", league.RosterSlot{Name: "Amy", UserID: "U2"}))

		rr := postForm(f.srv, "/slack/command/team", url.Values{
			"user_id": {"U2"}, "user_name": {"Amy"}, "text": {"kick U1"},
		})
		assert.Equal(t, 200, rr.Code)
		assert.Contains(t, rr.Body.String(), "not allowed")

		team, err := f.store.FindTeamByName("Alpha")
		require.NoError(t, err)
		assert.Len(t, team.Roster, 2)
	})

	t.Run("mutations are refused after the roster lock", func(t *testing.T) {
		f := newFixture(t)
		f.srv.Cfg.League.RosterLockTimestamp = testNow.Add(-time.Hour)

		rr := postForm(f.srv, "/slack/command/team", url.Values{
			"user_id": {"U1"}, "user_name": {"Alice"}, "text": {"create Alpha"},
		})
		assert.Equal(t, 200, rr.Code)
		assert.Contains(t, rr.Body.String(), "locked")
		_, err := f.store.FindTeamByName("Alpha")
		assert.ErrorIs(t, err, league.ErrNotFound)
	})

	t.Run("captain renames the team", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.CreateTeam("Alpha", league.RosterSlot{Name: "Alice", UserID: "U1"}))

		rr := postForm(f.srv, "/slack/command/team", url.Values{
			"user_id": {"U1"}, "user_name": {"Alice"}, "text": {"rename Alpha Prime"},
		})
		assert.Equal(t, 200, rr.Code)

		team, err := f.store.FindTeamByName("Alpha Prime")
		require.NoError(t, err)
		assert.Equal(t, "Alpha Prime", team.Name)
	})

	t.Run("status toggle works during the roster lock", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.CreateTeam("Alpha", league.RosterSlot{Name: "Alice", UserID: "U1"}))
		f.srv.Cfg.League.RosterLockTimestamp = testNow.Add(-time.Hour)

		rr := postForm(f.srv, "/slack/command/team", url.Values{
			"user_id": {"U1"}, "user_name": {"Alice"}, "text": {"status inactive"},
		})
		assert.Equal(t, 200, rr.Code)

		team, err := f.store.FindTeamByName("Alpha")
		require.NoError(t, err)
		assert.Equal(t, league.TeamInactive, team.Status)
	})
}

func TestUnsignupCommand(t *testing.T) {
	t.Run("removes an unrostered player", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.SignupPlayer(league.Player{UserID: "U1", Name: "Alice"}))

		rr := postForm(f.srv, "/slack/command/unsignup", url.Values{"user_id": {"U1"}})
		assert.Equal(t, 200, rr.Code)

		_, err := f.store.FindPlayer("U1")
		assert.ErrorIs(t, err, league.ErrNotFound)
	})

	t.Run("rostered player is refused", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.SignupPlayer(league.Player{UserID: "U1", Name: "Alice"}))
		require.NoError(t, f.store.CreateTeam("Alpha", league.RosterSlot{Name: "Alice", UserID: "U1"}))

		rr := postForm(f.srv, "/slack/command/unsignup", url.Values{"user_id": {"U1"}})
		assert.Equal(t, 200, rr.Code)

		_, err := f.store.FindPlayer("U1")
		assert.NoError(t, err)
	})
}

func TestAdminCommand(t *testing.T) {
	t.Run("admin bans a player and scrubs the roster", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.SignupPlayer(league.Player{UserID: "U9", Name: "Mallory"}))
		require.NoError(t, f.store.CreateTeam("Alpha", league.RosterSlot{Name: "Mallory", UserID: "U9"}))

		rr := postForm(f.srv, "/slack/command/admin", url.Values{
			"user_id": {"U-ADMIN"}, "user_name": {"Root"}, "text": {"ban U9 smurfing"},
		})
		assert.Equal(t, 200, rr.Code)

		banned, err := f.store.IsBanned("U9")
		require.NoError(t, err)
		assert.True(t, banned)
		_, err = f.store.FindPlayer("U9")
		assert.ErrorIs(t, err, league.ErrNotFound)
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/slack/command/admin", url.Values{
			"user_id": {"U1"}, "user_name": {"Alice"}, "text": {"ban U9"},
		})
		assert.Equal(t, 200, rr.Code)
		assert.Contains(t, rr.Body.String(), "not allowed")
	})

	t.Run("disabled without a configured role", func(t *testing.T) {
		f := newFixture(t)
		f.srv.Cfg.Slack.AdminRoleID = ""
		rr := postForm(f.srv, "/slack/command/admin", url.Values{
			"user_id": {"U-ADMIN"}, "user_name": {"Root"}, "text": {"ban U9"},
		})
		assert.Equal(t, 200, rr.Code)
		assert.Contains(t, rr.Body.String(), "not enabled")
	})
}

func TestGenerateWeekly(t *testing.T) {
	t.Run("runs the engine and returns the cycle", func(t *testing.T) {
		f := newFixture(t)
		f.engine.RunWeeklyFunc = func(dryRun bool) (*matchmaking.CycleResult, error) {
			return &matchmaking.CycleResult{Week: 4}, nil
		}
		rr := postForm(f.srv, "/generate-weekly", url.Values{})
		assert.Equal(t, 200, rr.Code)
		assert.Equal(t, []bool{false}, f.engine.RunWeeklyCalls)
		assert.Contains(t, rr.Body.String(), "\"Week\":4")
	})

	t.Run("dry_run is passed through", func(t *testing.T) {
		f := newFixture(t)
		rr := postForm(f.srv, "/generate-weekly?dry_run=true", url.Values{})
		assert.Equal(t, 200, rr.Code)
		assert.Equal(t, []bool{true}, f.engine.RunWeeklyCalls)
	})

	t.Run("engine failure maps to conflict", func(t *testing.T) {
		f := newFixture(t)
		f.engine.RunWeeklyFunc = func(dryRun bool) (*matchmaking.CycleResult, error) {
			return nil, fmt.Errorf("only 1 eligible teams, need at least 2")
		}
		rr := postForm(f.srv, "/generate-weekly", url.Values{})
		assert.Equal(t, 409, rr.Code)
	})
}

func TestLeaderboardCommand(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ledger.ApplyTeamResult("Alpha", true))
	f.notifier.FormatLeaderboardResponseFunc = func(entries []ratings.TeamEntry) (any, error) {
		require.Len(t, entries, 1)
		return slackapi.NewBlockMessage(), nil
	}

	rr := postForm(f.srv, "/slack/command/leaderboard", url.Values{})
	assert.Equal(t, 200, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestMatchFinalizedPush(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ledger.ApplyTeamResult("Alpha", true))

	f.events.ProcessMessageFunc = func(data []byte, returnValue any) error {
		return msgpack.Unmarshal(data, returnValue)
	}

	raw, err := msgpack.Marshal(pubsub.MatchFinalizedEvent{MatchID: "Week3-M001", Winner: "Alpha"})
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{
		"subscription": "projects/test/subscriptions/match-finalized",
		"message":      map[string]string{"data": base64.StdEncoding.EncodeToString(raw)},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/pubsub/match-finalized", strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	f.srv.ServeHTTP(rr, req)

	assert.Equal(t, 200, rr.Code)
	assert.Len(t, f.notifier.SendLeaderboardCalls, 1)
	assert.Len(t, f.notifier.SendPlayerLeaderboardCalls, 1)
}
