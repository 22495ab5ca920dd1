package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/ratings"
	"github.com/slack-go/slack"
)

// pageSize is the number of leaderboard entries per message.
const pageSize = 25

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	OpenConversationContext(ctx context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error)
}

// MentionLookup resolves a team name to the user IDs to ping. A nil lookup
// disables pings.
type MentionLookup func(teamName string) []string

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	mentions  MentionLookup
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier posting to the announce channel.
func NewNotifier(token, channelID string, mentions MentionLookup, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		mentions:  mentions,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, mentions MentionLookup, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		mentions:  mentions,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(channelID string, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel, timestamp, err := s.api.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channel, "timestamp", timestamp)
	return channel, timestamp, nil
}

func (s *Notifier) teamLine(teamName string) string {
	if s.mentions == nil {
		return teamName
	}
	ids := s.mentions(teamName)
	if len(ids) == 0 {
		return teamName
	}
	tags := make([]string, len(ids))
	for i, id := range ids {
		tags[i] = fmt.Sprintf("<@%s>", id)
	}
	return fmt.Sprintf("%s (%s)", teamName, strings.Join(tags, " "))
}

func (s *Notifier) AnnounceWeeklyMatchups(week int, assignments []*league.WeeklyAssignment, dryRun bool) error {
	msg := s.formatWeeklyMatchups(week, assignments)
	_, _, err := s.sendMessage(s.channelID, msg, dryRun)
	return err
}

func (s *Notifier) SendForfeitNotice(matchID, teamA, teamB, reason, winner string, dryRun bool) error {
	msg := s.formatForfeitNotice(matchID, teamA, teamB, reason, winner)
	_, _, err := s.sendMessage(s.channelID, msg, dryRun)
	return err
}

func (s *Notifier) SendMatchScheduled(m *league.MatchRecord, dryRun bool) error {
	msg := s.formatMatchScheduled(m)
	_, _, err := s.sendMessage(s.channelID, msg, dryRun)
	return err
}

func (s *Notifier) SendFinalResult(f *league.FinalScore, dryRun bool) error {
	msg := s.formatFinalResult(f)
	_, _, err := s.sendMessage(s.channelID, msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(entries []ratings.TeamEntry, dryRun bool) error {
	for _, msg := range s.formatLeaderboard(entries) {
		if _, _, err := s.sendMessage(s.channelID, msg, dryRun); err != nil {
			return err
		}
	}
	return nil
}

func (s *Notifier) SendPlayerLeaderboard(entries []ratings.PlayerEntry, dryRun bool) error {
	for _, msg := range s.formatPlayerLeaderboard(entries) {
		if _, _, err := s.sendMessage(s.channelID, msg, dryRun); err != nil {
			return err
		}
	}
	return nil
}

func (s *Notifier) SendDirectMessage(userID, text string, dryRun bool) error {
	if dryRun {
		log.Info("[Dry Run] Would send DM", "userID", userID, "text", text)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel, _, _, err := s.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{Users: []string{userID}})
	if err != nil {
		s.metrics.IncNotifFailed()
		return fmt.Errorf("failed to open conversation with %s: %w", userID, err)
	}
	msg := slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
	)
	_, _, err = s.sendMessage(channel.ID, msg, false)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(entries []ratings.TeamEntry) (any, error) {
	pages := s.formatLeaderboard(entries)
	if len(pages) == 0 {
		return slack.NewBlockMessage(), nil
	}
	return pages[0], nil
}

// FormatPlayerLeaderboardResponse formats a player leaderboard message for a slash command response.
func (s *Notifier) FormatPlayerLeaderboardResponse(entries []ratings.PlayerEntry) (any, error) {
	pages := s.formatPlayerLeaderboard(entries)
	if len(pages) == 0 {
		return slack.NewBlockMessage(), nil
	}
	return pages[0], nil
}
