package rehydrate

import (
	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/prompt"
	"github.com/mauv0809/league-engine/internal/proposal"
	"github.com/mauv0809/league-engine/internal/scoring"
)

type service struct {
	store     league.Store
	prompter  prompt.Prompter
	proposals proposal.Coordinator
	scores    scoring.Coordinator
}

// New creates the rehydration Service.
func New(store league.Store, prompter prompt.Prompter, proposals proposal.Coordinator, scores scoring.Coordinator) Service {
	return &service{store: store, prompter: prompter, proposals: proposals, scores: scores}
}

// Run rearms a handle for every live proposal whose prompt still exists.
// Rows whose prompt message is gone are deleted rather than rehydrated.
// Malformed rows were already skipped by the store with a warning.
func (s *service) Run() (*Report, error) {
	report := &Report{}

	live, err := s.store.LiveProposals()
	if err != nil {
		return nil, err
	}
	for _, p := range live {
		if s.orphaned(p.MatchID, p.Prompt) {
			if err := s.store.DeleteProposal(p.MatchID); err != nil {
				log.Error("Failed to delete orphaned proposal", "error", err, "matchID", p.MatchID)
				continue
			}
			report.Orphans++
			continue
		}
		s.proposals.Rearm(p)
		report.MatchProposals++
	}

	scores, err := s.store.LiveScoreProposals()
	if err != nil {
		return nil, err
	}
	for _, p := range scores {
		if s.orphaned(p.MatchID, p.Prompt) {
			if err := s.store.DeleteScoreProposal(p.MatchID); err != nil {
				log.Error("Failed to delete orphaned score proposal", "error", err, "matchID", p.MatchID)
				continue
			}
			report.Orphans++
			continue
		}
		s.scores.Rearm(p)
		report.ScoreProposals++
	}

	log.Info("Rehydration complete",
		"matchProposals", report.MatchProposals,
		"scoreProposals", report.ScoreProposals,
		"orphans", report.Orphans)
	return report, nil
}

func (s *service) orphaned(matchID string, ref league.PromptRef) bool {
	if ref.IsZero() {
		return true
	}
	ok, err := s.prompter.Exists(ref)
	if err != nil {
		// When the lookup itself fails, keep the row and rehydrate; a
		// responder can still settle it.
		log.Warn("Could not verify prompt, rehydrating anyway", "error", err, "matchID", matchID)
		return false
	}
	return !ok
}
