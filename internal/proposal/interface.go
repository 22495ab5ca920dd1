package proposal

import (
	"time"

	"github.com/mauv0809/league-engine/internal/league"
)

// Decision is a responder's answer to a proposal.
type Decision string

const (
	Accept  Decision = "accept"
	Decline Decision = "decline"
)

// ProposeRequest carries the inputs to Propose.
type ProposeRequest struct {
	TeamA        string
	TeamB        string
	ProposedTime time.Time
	MatchType    league.MatchType
	ProposerID   string
}

// Coordinator owns the match-time proposal protocol: creation, the single
// authorized accept/decline, expiry, and cleanup. Every proposal is durable;
// in-memory state is only the response latch and the expiry timer, both of
// which Rearm rebuilds after a restart.
type Coordinator interface {
	// Propose validates and persists a new match-time proposal, presents the
	// prompt to the opposing team, and arms its expiry timer.
	Propose(req ProposeRequest) (*league.MatchProposal, error)
	// Respond applies the actor's decision. Responses after the proposal has
	// settled are silent no-ops.
	Respond(matchID string, decision Decision, actorID string) error
	// Expire settles the proposal as silently declined. No-op if already
	// settled.
	Expire(matchID string) error
	// Rearm registers a latch and expiry timer for an existing durable
	// proposal without re-persisting or re-prompting.
	Rearm(p *league.MatchProposal)
	// LiveHandles lists the matchIDs with an armed handle.
	LiveHandles() []string
}
