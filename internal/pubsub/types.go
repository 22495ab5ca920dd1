package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchScheduled  EventType = "match-scheduled"
	EventMatchFinalized  EventType = "match-finalized"
	EventForfeitResolved EventType = "forfeit-resolved"
	EventWeeklyGenerated EventType = "weekly-generated"
)

// MatchFinalizedEvent is the payload published when a score is confirmed.
type MatchFinalizedEvent struct {
	MatchID string `msgpack:"match_id"`
	Week    int    `msgpack:"week"`
	TeamA   string `msgpack:"team_a"`
	TeamB   string `msgpack:"team_b"`
	TotalA  int    `msgpack:"total_a"`
	TotalB  int    `msgpack:"total_b"`
	Winner  string `msgpack:"winner"`
}

// MatchScheduledEvent is the payload published when a match time is accepted.
type MatchScheduledEvent struct {
	MatchID       string `msgpack:"match_id"`
	TeamA         string `msgpack:"team_a"`
	TeamB         string `msgpack:"team_b"`
	ScheduledDate string `msgpack:"scheduled_date"`
}

// ForfeitResolvedEvent is the payload published per forfeit outcome.
type ForfeitResolvedEvent struct {
	MatchID string `msgpack:"match_id"`
	Reason  string `msgpack:"reason"`
	Winner  string `msgpack:"winner"`
}

// WeeklyGeneratedEvent is the payload published after a matchmaking cycle.
type WeeklyGeneratedEvent struct {
	Week     int `msgpack:"week"`
	Pairings int `msgpack:"pairings"`
	Forfeits int `msgpack:"forfeits"`
}
