package scoring

import "github.com/mauv0809/league-engine/internal/league"

// Decision is a responder's answer to a score proposal.
type Decision string

const (
	Accept  Decision = "accept"
	Decline Decision = "decline"
)

// ProposeRequest carries the inputs to ProposeScore.
type ProposeRequest struct {
	MatchID    string
	Maps       []league.MapResult
	ProposerID string
	SubA       *league.Substitute
	SubB       *league.Substitute
}

// Coordinator owns the score confirmation protocol: a captain reports map
// scores, the opposing captain confirms, and confirmation applies rating and
// history side effects exactly once.
type Coordinator interface {
	// ProposeScore validates the map list and persists a score proposal,
	// overwriting any prior proposal for the same match.
	ProposeScore(req ProposeRequest) (*league.ScoreProposal, error)
	// Respond applies the actor's decision. Responses after the proposal has
	// settled are silent no-ops.
	Respond(matchID string, decision Decision, actorID string) error
	// Expire settles the proposal as silently declined.
	Expire(matchID string) error
	// Rearm registers a latch and expiry timer for an existing durable score
	// proposal without re-persisting or re-prompting.
	Rearm(p *league.ScoreProposal)
	// LiveHandles lists the matchIDs with an armed handle.
	LiveHandles() []string
}
