package scoring

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/config"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/prompt"
	"github.com/mauv0809/league-engine/internal/pubsub"
	"github.com/mauv0809/league-engine/internal/ratings"
)

// handle is the in-memory at-most-once guard for one live score proposal.
type handle struct {
	matchID string
	settled atomic.Bool
	timer   clockwork.Timer
}

type coordinator struct {
	store    league.Store
	ledger   ratings.Ledger
	prompter prompt.Prompter
	notifier notifier.Notifier
	events   pubsub.PubSubClient
	roles    league.RoleChecker
	metrics  metrics.Metrics
	clock    clockwork.Clock
	cfg      config.LeagueConfig
	dryRun   bool

	mu      sync.Mutex
	handles map[string]*handle
}

// New creates a score confirmation Coordinator.
func New(store league.Store, ledger ratings.Ledger, prompter prompt.Prompter, n notifier.Notifier, events pubsub.PubSubClient, roles league.RoleChecker, m metrics.Metrics, clock clockwork.Clock, cfg config.LeagueConfig, dryRun bool) Coordinator {
	return &coordinator{
		store:    store,
		ledger:   ledger,
		prompter: prompter,
		notifier: n,
		events:   events,
		roles:    roles,
		metrics:  m,
		clock:    clock,
		cfg:      cfg,
		dryRun:   dryRun,
		handles:  make(map[string]*handle),
	}
}

func (c *coordinator) ProposeScore(req ProposeRequest) (*league.ScoreProposal, error) {
	m, err := c.store.FindMatch(req.MatchID)
	if err != nil {
		return nil, err
	}
	teamA, err := c.store.FindTeamByName(m.TeamA)
	if err != nil {
		return nil, err
	}
	teamB, err := c.store.FindTeamByName(m.TeamB)
	if err != nil {
		return nil, err
	}
	if !teamA.HasPlayer(req.ProposerID) && !teamB.HasPlayer(req.ProposerID) {
		return nil, fmt.Errorf("proposer %s is not rostered on either team: %w", req.ProposerID, league.ErrUnauthorized)
	}
	if m.Status.Terminal() {
		return nil, fmt.Errorf("match %s is already %s", m.MatchID, m.Status)
	}

	// Provisional validation only; the authoritative computation happens at
	// acceptance.
	if _, err := computeOutcome(m.MatchID, m.TeamA, m.TeamB, req.Maps); err != nil {
		return nil, err
	}

	p := league.ScoreProposal{
		MatchID:    m.MatchID,
		TeamA:      m.TeamA,
		TeamB:      m.TeamB,
		ProposerID: req.ProposerID,
		ProposedAt: c.clock.Now(),
		Maps:       req.Maps,
		SubA:       req.SubA,
		SubB:       req.SubB,
	}
	if err := c.store.SaveScoreProposal(p); err != nil {
		return nil, err
	}

	text := c.promptText(&p)
	ref, err := c.prompter.Present(prompt.KindScore, m.MatchID, text)
	if err != nil {
		log.Error("Failed to present score prompt", "error", err, "matchID", m.MatchID)
	} else {
		p.Prompt = ref
		if err := c.store.SaveScoreProposal(p); err != nil {
			log.Error("Failed to persist prompt ref", "error", err, "matchID", m.MatchID)
		}
	}

	c.Rearm(&p)
	c.metrics.IncProposalsCreated()
	log.Info("Created score proposal", "matchID", m.MatchID, "proposer", req.ProposerID, "maps", len(req.Maps))
	return &p, nil
}

func (c *coordinator) promptText(p *league.ScoreProposal) string {
	text := fmt.Sprintf("Score reported for *%s vs %s* (`%s`):", p.TeamA, p.TeamB, p.MatchID)
	for i, m := range p.Maps {
		text += fmt.Sprintf("\nMap %d (%s): %d - %d", i+1, m.Gamemode, m.ScoreA, m.ScoreB)
	}
	return text
}

func (c *coordinator) opposingTeam(p *league.ScoreProposal) (*league.Team, error) {
	teamA, err := c.store.FindTeamByName(p.TeamA)
	if err != nil {
		return nil, err
	}
	if !teamA.HasPlayer(p.ProposerID) {
		return teamA, nil
	}
	return c.store.FindTeamByName(p.TeamB)
}

func (c *coordinator) Respond(matchID string, decision Decision, actorID string) error {
	h := c.lookup(matchID)
	if h == nil {
		p, err := c.store.FindScoreProposal(matchID)
		if errors.Is(err, league.ErrNotFound) {
			c.metrics.IncDuplicateResponses()
			log.Debug("Ignoring response to settled score proposal", "matchID", matchID, "actor", actorID)
			return nil
		}
		if err != nil {
			return err
		}
		c.Rearm(p)
		h = c.lookup(matchID)
	}
	if h.settled.Load() {
		c.metrics.IncDuplicateResponses()
		return nil
	}

	p, err := c.store.FindScoreProposal(matchID)
	if err != nil {
		return err
	}
	opposing, err := c.opposingTeam(p)
	if err != nil {
		return err
	}
	if err := league.AuthorizeResponder(opposing, p.ProposerID, actorID, c.cfg.CoCaptainRoleID, c.roles); err != nil {
		return err
	}

	// Validation failures and store reads must precede the latch so the
	// responder can retry after the proposer fixes the report or a flaky
	// read clears. Once the latch is taken, acceptance is writes only.
	var acc *acceptContext
	if decision == Accept {
		acc, err = c.prepareAccept(p)
		if err != nil {
			return err
		}
	}

	if !h.settled.CompareAndSwap(false, true) {
		c.metrics.IncDuplicateResponses()
		return nil
	}
	h.stopTimer()
	c.metrics.IncProposalResponses()

	switch decision {
	case Accept:
		// Rating writes are not idempotent, so a failure here keeps the
		// latch; rehydration after restart re-arms it.
		return c.accept(p, acc, actorID)
	case Decline:
		if err := c.decline(p, actorID); err != nil {
			// Decline only performs idempotent deletes; release the latch
			// so the responder can try again.
			h.settled.Store(false)
			return err
		}
		return nil
	default:
		h.settled.Store(false)
		return fmt.Errorf("unknown decision %q", decision)
	}
}

// acceptContext carries everything acceptance needs, gathered before the
// latch is consumed so the write sequence performs no further reads.
type acceptContext struct {
	outcome *Outcome
	week    int
	match   *league.MatchRecord
	winner  *league.Team
	loser   *league.Team
}

func (c *coordinator) prepareAccept(p *league.ScoreProposal) (*acceptContext, error) {
	outcome, err := computeOutcome(p.MatchID, p.TeamA, p.TeamB, p.Maps)
	if err != nil {
		return nil, err
	}
	week, err := league.WeekFromMatchID(p.MatchID)
	if err != nil {
		return nil, err
	}
	m, err := c.store.FindMatch(p.MatchID)
	if err != nil {
		return nil, err
	}
	acc := &acceptContext{outcome: outcome, week: week, match: m}
	if outcome.Winner != "Tie" {
		loserName := p.TeamA
		if outcome.Winner == p.TeamA {
			loserName = p.TeamB
		}
		if acc.winner, err = c.store.FindTeamByName(outcome.Winner); err != nil {
			return nil, err
		}
		if acc.loser, err = c.store.FindTeamByName(loserName); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// accept finalizes the match. Rating writes come before row cleanup so a
// crash mid-sequence leaves re-runnable idempotent cleanup, not lost ratings.
func (c *coordinator) accept(p *league.ScoreProposal, acc *acceptContext, actorID string) error {
	o := acc.outcome

	if o.Winner != "Tie" {
		if err := c.applyRatings(p, acc.winner, acc.loser); err != nil {
			return err
		}
	}

	f := league.FinalScore{
		Week:     acc.week,
		MatchID:  p.MatchID,
		TeamA:    p.TeamA,
		TeamB:    p.TeamB,
		Maps:     o.Maps,
		TotalA:   o.TotalA,
		TotalB:   o.TotalB,
		MapsWonA: o.MapsWonA,
		MapsWonB: o.MapsWonB,
		Winner:   o.Winner,
	}
	if err := c.store.AppendFinalScore(f, acc.match.ProposedDate, acc.match.ScheduledDate); err != nil {
		return err
	}

	// All cleanup deletes are idempotent; rerunning after a partial failure
	// is safe.
	if err := c.store.DeleteScoreProposal(p.MatchID); err != nil {
		return err
	}
	if err := c.store.DeleteProposal(p.MatchID); err != nil {
		return err
	}
	if err := c.store.DeleteScheduledMatch(p.MatchID); err != nil {
		return err
	}
	if err := c.store.DeleteWeeklyAssignmentByMatch(p.MatchID); err != nil {
		return err
	}
	c.forget(p.MatchID)

	loser := ""
	if o.Winner == p.TeamA {
		loser = p.TeamB
	} else if o.Winner == p.TeamB {
		loser = p.TeamA
	}
	if err := c.store.SetMatchOutcome(p.MatchID, league.StatusFinished, o.Winner, loser); err != nil {
		return err
	}

	if err := c.prompter.Settle(p.Prompt, fmt.Sprintf("✅ Score confirmed for *%s vs %s*: %d - %d.", p.TeamA, p.TeamB, o.TotalA, o.TotalB)); err != nil {
		log.Warn("Failed to settle score prompt", "error", err, "matchID", p.MatchID)
	}
	if err := c.notifier.SendFinalResult(&f, c.dryRun); err != nil {
		log.Warn("Failed to announce final result", "error", err, "matchID", p.MatchID)
	}
	if err := c.events.SendMessage(pubsub.EventMatchFinalized, pubsub.MatchFinalizedEvent{
		MatchID: p.MatchID,
		Week:    acc.week,
		TeamA:   p.TeamA,
		TeamB:   p.TeamB,
		TotalA:  o.TotalA,
		TotalB:  o.TotalB,
		Winner:  o.Winner,
	}); err != nil {
		log.Warn("Failed to publish finalization event", "error", err, "matchID", p.MatchID)
	}

	c.metrics.IncScoresFinalized()
	log.Info("Score confirmed", "matchID", p.MatchID, "winner", o.Winner, "actor", actorID)
	return nil
}

// applyRatings credits both team ledger entries and every rostered player on
// each side, plus any declared substitutes. The rosters were read before the
// latch was consumed.
func (c *coordinator) applyRatings(p *league.ScoreProposal, winner, loser *league.Team) error {
	if err := c.ledger.ApplyTeamResult(winner.Name, true); err != nil {
		return err
	}
	if err := c.ledger.ApplyTeamResult(loser.Name, false); err != nil {
		return err
	}

	for _, team := range []*league.Team{winner, loser} {
		won := team == winner
		for _, slot := range team.Roster {
			if err := c.ledger.ApplyPlayerResult(slot.UserID, slot.Name, won); err != nil {
				return err
			}
		}
	}

	if p.SubA != nil {
		if err := c.ledger.ApplyPlayerResult(p.SubA.UserID, p.SubA.Name, winner.Name == p.TeamA); err != nil {
			return err
		}
	}
	if p.SubB != nil {
		if err := c.ledger.ApplyPlayerResult(p.SubB.UserID, p.SubB.Name, winner.Name == p.TeamB); err != nil {
			return err
		}
	}
	return nil
}

func (c *coordinator) decline(p *league.ScoreProposal, actorID string) error {
	// The match stays Scheduled so a corrected score can be reported.
	if err := c.store.DeleteScoreProposal(p.MatchID); err != nil {
		return err
	}
	c.forget(p.MatchID)

	if err := c.prompter.Settle(p.Prompt, fmt.Sprintf("❌ Score for *%s vs %s* was disputed.", p.TeamA, p.TeamB)); err != nil {
		log.Warn("Failed to settle score prompt", "error", err, "matchID", p.MatchID)
	}
	if err := c.notifier.SendDirectMessage(p.ProposerID,
		fmt.Sprintf("Your reported score for `%s` was declined. Please agree on the result and resubmit.", p.MatchID), c.dryRun); err != nil {
		log.Warn("Failed to notify proposer of score decline", "error", err, "matchID", p.MatchID)
	}
	log.Info("Score declined", "matchID", p.MatchID, "actor", actorID)
	return nil
}

func (c *coordinator) Expire(matchID string) error {
	h := c.lookup(matchID)
	if h == nil || !h.settled.CompareAndSwap(false, true) {
		return nil
	}
	h.stopTimer()

	p, err := c.store.FindScoreProposal(matchID)
	if errors.Is(err, league.ErrNotFound) {
		c.forget(matchID)
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.store.DeleteScoreProposal(matchID); err != nil {
		return err
	}
	c.forget(matchID)

	if err := c.prompter.Remove(p.Prompt); err != nil {
		log.Warn("Failed to remove expired score prompt", "error", err, "matchID", matchID)
	}
	log.Info("Score proposal expired", "matchID", matchID)
	return nil
}

func (c *coordinator) Rearm(p *league.ScoreProposal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.handles[p.MatchID]; ok {
		return
	}
	h := &handle{matchID: p.MatchID}
	if c.cfg.ProposalTimeout > 0 {
		matchID := p.MatchID
		h.timer = c.clock.AfterFunc(c.cfg.ProposalTimeout, func() {
			if err := c.Expire(matchID); err != nil {
				log.Error("Failed to expire score proposal", "error", err, "matchID", matchID)
			}
		})
	}
	c.handles[p.MatchID] = h
}

func (c *coordinator) LiveHandles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.handles))
	for id := range c.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *coordinator) lookup(matchID string) *handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles[matchID]
}

func (c *coordinator) forget(matchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handles, matchID)
}

func (h *handle) stopTimer() {
	if h.timer != nil {
		h.timer.Stop()
	}
}
