package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/ratings"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc   func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
	openConversationContextFunc func(ctx context.Context, params *slackapi.OpenConversationParameters) (*slackapi.Channel, bool, bool, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func (m *mockSlackAPI) OpenConversationContext(ctx context.Context, params *slackapi.OpenConversationParameters) (*slackapi.Channel, bool, bool, error) {
	if m.openConversationContextFunc != nil {
		return m.openConversationContextFunc(ctx, params)
	}
	ch := &slackapi.Channel{}
	ch.ID = "D123"
	return ch, false, false, nil
}

func TestSendMessage_DryRun(t *testing.T) {
	m := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	n := NewNotifierWithAPI(nil, "C123", nil, m)

	err := n.SendMatchScheduled(&league.MatchRecord{MatchID: "Week3-M001", TeamA: "Alpha", TeamB: "Beta"}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", nil, m)

	err := n.SendFinalResult(&league.FinalScore{
		MatchID: "Week3-M001",
		TeamA:   "Alpha",
		TeamB:   "Beta",
		Maps:    []league.MapResult{{Gamemode: "Control", ScoreA: 2, ScoreB: 1}},
		TotalA:  2, TotalB: 1, MapsWonA: 1, MapsWonB: 0,
		Winner: "Alpha",
	}, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, m.NotifSent())
	assert.Equal(t, 0, m.NotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", errors.New("slack API is down")
		},
	}

	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", nil, m)

	err := n.AnnounceWeeklyMatchups(3, []*league.WeeklyAssignment{{Week: 3, TeamA: "Alpha", TeamB: "Beta", MatchID: "Week3-M001"}}, false)
	require.Error(t, err)
	assert.Equal(t, 1, m.NotifFailed())
}

func TestSendDirectMessage(t *testing.T) {
	var openedWith []string
	var postedTo string
	api := &mockSlackAPI{
		openConversationContextFunc: func(ctx context.Context, params *slackapi.OpenConversationParameters) (*slackapi.Channel, bool, bool, error) {
			openedWith = params.Users
			ch := &slackapi.Channel{}
			ch.ID = "D777"
			return ch, false, false, nil
		},
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postedTo = channelID
			return channelID, "ts1", nil
		},
	}
	n := NewNotifierWithAPI(api, "C123", nil, metrics.NewMock())

	require.NoError(t, n.SendDirectMessage("U42", "your match is scheduled", false))
	assert.Equal(t, []string{"U42"}, openedWith)
	assert.Equal(t, "D777", postedTo)
}

func TestFormatWeeklyMatchups_Mentions(t *testing.T) {
	mentions := func(teamName string) []string {
		if teamName == "Alpha" {
			return []string{"U1", "U2"}
		}
		return nil
	}
	n := NewNotifierWithAPI(nil, "C123", mentions, metrics.NewMock())

	msg := n.formatWeeklyMatchups(3, []*league.WeeklyAssignment{
		{Week: 3, TeamA: "Alpha", TeamB: "Beta", MatchID: "Week3-M001"},
	})
	// header + matchup + context
	require.Len(t, msg.Blocks.BlockSet, 3)
	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "<@U1> <@U2>")
	assert.Contains(t, section.Text.Text, "Week3-M001")
}

func TestFormatLeaderboard_Paging(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", nil, metrics.NewMock())

	entries := make([]ratings.TeamEntry, 30)
	for i := range entries {
		entries[i] = ratings.TeamEntry{Team: "T", Rating: 800}
	}
	pages := n.formatLeaderboard(entries)
	assert.Len(t, pages, 2)

	pages = n.formatLeaderboard(nil)
	require.Len(t, pages, 1)
}
