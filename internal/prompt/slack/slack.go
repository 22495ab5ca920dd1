package slack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/prompt"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	DeleteMessageContext(ctx context.Context, channelID, timestamp string) (string, string, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

var _ prompt.Prompter = &Prompter{}

// Prompter posts interactive prompts to Slack.
type Prompter struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewPrompter creates a new Prompter posting to the given channel.
func NewPrompter(token, channelID string, metrics metrics.Metrics) *Prompter {
	api := slack.New(token)
	return &Prompter{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewPrompterWithAPI creates a new Prompter with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewPrompterWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Prompter {
	return &Prompter{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (p *Prompter) Present(kind prompt.Kind, matchID, text string) (league.PromptRef, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accept := slack.NewButtonBlockElement(
		fmt.Sprintf("%s_%s", kind, prompt.ActionAccept),
		matchID,
		slack.NewTextBlockObject(slack.PlainTextType, "Accept", false, false),
	)
	accept.Style = slack.StylePrimary
	decline := slack.NewButtonBlockElement(
		fmt.Sprintf("%s_%s", kind, prompt.ActionDecline),
		matchID,
		slack.NewTextBlockObject(slack.PlainTextType, "Decline", false, false),
	)
	decline.Style = slack.StyleDanger

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		slack.NewActionBlock(fmt.Sprintf("%s_%s", kind, matchID), accept, decline),
	}

	channelID, timestamp, err := p.api.PostMessageContext(ctx, p.channelID, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		p.metrics.IncNotifFailed()
		log.Error("Failed to post prompt", "error", err, "matchID", matchID)
		return league.PromptRef{}, fmt.Errorf("failed to post prompt: %w", err)
	}
	p.metrics.IncNotifSent()
	log.Info("Posted prompt", "kind", kind, "matchID", matchID, "timestamp", timestamp)
	return league.PromptRef{ChannelID: channelID, MessageID: timestamp}, nil
}

func (p *Prompter) Settle(ref league.PromptRef, text string) error {
	if ref.IsZero() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
	}
	_, _, _, err := p.api.UpdateMessageContext(ctx, ref.ChannelID, ref.MessageID, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		log.Error("Failed to settle prompt", "error", err, "channel", ref.ChannelID, "timestamp", ref.MessageID)
		return fmt.Errorf("failed to settle prompt: %w", err)
	}
	return nil
}

func (p *Prompter) Remove(ref league.PromptRef) error {
	if ref.IsZero() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _, err := p.api.DeleteMessageContext(ctx, ref.ChannelID, ref.MessageID)
	if err != nil {
		// The message may have been deleted by hand.
		if strings.Contains(err.Error(), "message_not_found") {
			log.Debug("Prompt already gone", "channel", ref.ChannelID, "timestamp", ref.MessageID)
			return nil
		}
		log.Error("Failed to delete prompt", "error", err, "channel", ref.ChannelID, "timestamp", ref.MessageID)
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	return nil
}

func (p *Prompter) Exists(ref league.PromptRef) (bool, error) {
	if ref.IsZero() {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := p.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: ref.ChannelID,
		Latest:    ref.MessageID,
		Oldest:    ref.MessageID,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up prompt: %w", err)
	}
	for _, msg := range resp.Messages {
		if msg.Timestamp == ref.MessageID {
			return true, nil
		}
	}
	return false, nil
}
