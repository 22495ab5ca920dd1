package proposal

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/config"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/prompt"
)

// handle is the in-memory guard for one live proposal. The settled latch is
// the at-most-once gate: whoever flips it first applies the side effects,
// every later response observes it and no-ops.
type handle struct {
	matchID string
	settled atomic.Bool
	timer   clockwork.Timer
}

type coordinator struct {
	store    league.Store
	prompter prompt.Prompter
	notifier notifier.Notifier
	roles    league.RoleChecker
	metrics  metrics.Metrics
	clock    clockwork.Clock
	cfg      config.LeagueConfig
	dryRun   bool

	mu      sync.Mutex
	handles map[string]*handle
}

// New creates a proposal Coordinator.
func New(store league.Store, prompter prompt.Prompter, n notifier.Notifier, roles league.RoleChecker, m metrics.Metrics, clock clockwork.Clock, cfg config.LeagueConfig, dryRun bool) Coordinator {
	return &coordinator{
		store:    store,
		prompter: prompter,
		notifier: n,
		roles:    roles,
		metrics:  m,
		clock:    clock,
		cfg:      cfg,
		dryRun:   dryRun,
		handles:  make(map[string]*handle),
	}
}

func (c *coordinator) Propose(req ProposeRequest) (*league.MatchProposal, error) {
	teamA, err := c.store.FindTeamByName(req.TeamA)
	if err != nil {
		return nil, err
	}
	teamB, err := c.store.FindTeamByName(req.TeamB)
	if err != nil {
		return nil, err
	}
	if !teamA.HasPlayer(req.ProposerID) && !teamB.HasPlayer(req.ProposerID) {
		return nil, fmt.Errorf("proposer %s is not rostered on either team: %w", req.ProposerID, league.ErrUnauthorized)
	}

	if existing, err := c.store.FindLiveProposalForPair(teamA.Name, teamB.Name); err == nil && existing != nil {
		return nil, fmt.Errorf("live proposal %s already exists for %s vs %s: %w",
			existing.MatchID, teamA.Name, teamB.Name, league.ErrDuplicateProposal)
	} else if err != nil && !errors.Is(err, league.ErrNotFound) {
		return nil, err
	}

	if err := c.validateWindow(req.ProposedTime); err != nil {
		return nil, err
	}

	week, err := c.store.CurrentWeek()
	if err != nil {
		return nil, err
	}

	var matchID string
	switch req.MatchType {
	case league.MatchAssigned:
		assignment, err := c.store.FindWeeklyAssignment(week, teamA.Name, teamB.Name)
		if err != nil {
			return nil, fmt.Errorf("no weekly assignment for %s vs %s: %w", teamA.Name, teamB.Name, err)
		}
		matchID = assignment.MatchID
	case league.MatchChallenge:
		matchID, err = c.allocateChallengeID(week, teamA.Name, teamB.Name)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown match type %q", req.MatchType)
	}

	p := league.MatchProposal{
		MatchID:      matchID,
		TeamA:        teamA.Name,
		TeamB:        teamB.Name,
		ProposerID:   req.ProposerID,
		ProposedTime: req.ProposedTime,
		MatchType:    req.MatchType,
		Week:         week,
	}
	if err := c.store.SaveProposal(p); err != nil {
		return nil, err
	}

	if req.MatchType == league.MatchChallenge {
		entry := league.ChallengeEntry{
			Week:         week,
			MatchID:      matchID,
			TeamA:        teamA.Name,
			TeamB:        teamB.Name,
			ProposerID:   req.ProposerID,
			ProposedDate: req.ProposedTime.UTC().Format(time.RFC3339),
			Status:       "Proposed",
		}
		if err := c.store.AppendChallenge(entry); err != nil {
			return nil, err
		}
	}

	text := fmt.Sprintf("*%s* proposes *%s vs %s* on %s.\nMatch ID: `%s`",
		c.proposerTeam(teamA, teamB, req.ProposerID).Name, teamA.Name, teamB.Name,
		req.ProposedTime.Format("Monday 02 Jan, 15:04 MST"), matchID)
	ref, err := c.prompter.Present(prompt.KindMatchTime, matchID, text)
	if err != nil {
		log.Error("Failed to present proposal prompt", "error", err, "matchID", matchID)
	} else {
		p.Prompt = ref
		if err := c.store.SetProposalPrompt(matchID, ref); err != nil {
			log.Error("Failed to persist prompt ref", "error", err, "matchID", matchID)
		}
	}

	c.Rearm(&p)
	c.metrics.IncProposalsCreated()
	log.Info("Created match-time proposal", "matchID", matchID, "type", req.MatchType, "proposer", req.ProposerID)
	return &p, nil
}

func (c *coordinator) validateWindow(t time.Time) error {
	if t.Before(c.clock.Now()) {
		return fmt.Errorf("proposed time %s is in the past: %w", t.Format(time.RFC3339), league.ErrInvalidWindow)
	}
	if !c.cfg.SeasonStart.IsZero() && t.Before(c.cfg.SeasonStart) {
		return fmt.Errorf("proposed time is before the season starts: %w", league.ErrInvalidWindow)
	}
	if !c.cfg.SeasonEnd.IsZero() && t.After(c.cfg.SeasonEnd) {
		return fmt.Errorf("proposed time is after the season ends: %w", league.ErrInvalidWindow)
	}
	return nil
}

func (c *coordinator) allocateChallengeID(week int, teamA, teamB string) (string, error) {
	if c.cfg.WeeklyChallengeLimit > 0 {
		for _, team := range []string{teamA, teamB} {
			count, err := c.store.CountChallengesByTeam(week, team)
			if err != nil {
				return "", err
			}
			if count >= c.cfg.WeeklyChallengeLimit {
				return "", fmt.Errorf("team %s has reached the weekly challenge limit (%d): %w",
					team, c.cfg.WeeklyChallengeLimit, league.ErrDuplicateProposal)
			}
		}
	}
	// The sequence scan covers live challenge rows, so concurrent proposals
	// for different pairs never share an ID.
	seq, err := c.store.MaxChallengeSequence(week)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Challenge%d-M%03d", week, seq+1), nil
}

func (c *coordinator) proposerTeam(teamA, teamB *league.Team, proposerID string) *league.Team {
	if teamA.HasPlayer(proposerID) {
		return teamA
	}
	return teamB
}

func (c *coordinator) opposingTeam(p *league.MatchProposal) (*league.Team, error) {
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
		// No live handle: either the proposal already settled or it never
		// existed. A durable row without a handle means a missed Rearm.
		p, err := c.store.FindProposal(matchID)
		if errors.Is(err, league.ErrNotFound) {
			c.metrics.IncDuplicateResponses()
			log.Debug("Ignoring response to settled proposal", "matchID", matchID, "actor", actorID)
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
		log.Debug("Ignoring response to settled proposal", "matchID", matchID, "actor", actorID)
		return nil
	}

	p, err := c.store.FindProposal(matchID)
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

	if !h.settled.CompareAndSwap(false, true) {
		c.metrics.IncDuplicateResponses()
		return nil
	}
	h.stopTimer()
	c.metrics.IncProposalResponses()

	switch decision {
	case Accept:
		err = c.accept(p, actorID)
	case Decline:
		err = c.decline(p, actorID)
	default:
		// Unknown decisions must not consume the latch.
		h.settled.Store(false)
		return fmt.Errorf("unknown decision %q", decision)
	}
	if err != nil {
		// Every write in accept and decline is an idempotent upsert or
		// delete, so the latch can be released for a retry.
		h.settled.Store(false)
	}
	return err
}

func (c *coordinator) accept(p *league.MatchProposal, actorID string) error {
	scheduled := p.ProposedTime.UTC().Format("2006-01-02 15:04")

	if err := c.store.UpsertScheduledMatch(league.ScheduledMatch{
		MatchID:       p.MatchID,
		TeamA:         p.TeamA,
		TeamB:         p.TeamB,
		ScheduledDate: scheduled,
	}); err != nil {
		return err
	}

	// Challenge matches have no canonical row until acceptance.
	if _, err := c.store.FindMatch(p.MatchID); errors.Is(err, league.ErrNotFound) {
		if err := c.store.AppendMatch(league.MatchRecord{
			MatchID:      p.MatchID,
			TeamA:        p.TeamA,
			TeamB:        p.TeamB,
			ProposedDate: scheduled,
			Status:       league.StatusAutoProposed,
			ProposedBy:   p.ProposerID,
		}); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if err := c.store.SetMatchSchedule(p.MatchID, scheduled, scheduled, league.StatusScheduled); err != nil {
		return err
	}
	if err := c.store.DeleteProposal(p.MatchID); err != nil {
		return err
	}
	c.forget(p.MatchID)

	if err := c.prompter.Settle(p.Prompt, fmt.Sprintf("✅ *%s vs %s* scheduled for %s.", p.TeamA, p.TeamB, scheduled)); err != nil {
		log.Warn("Failed to settle prompt", "error", err, "matchID", p.MatchID)
	}
	m, err := c.store.FindMatch(p.MatchID)
	if err != nil {
		return err
	}
	if err := c.notifier.SendMatchScheduled(m, c.dryRun); err != nil {
		log.Warn("Failed to announce scheduled match", "error", err, "matchID", p.MatchID)
	}
	log.Info("Proposal accepted", "matchID", p.MatchID, "actor", actorID)
	return nil
}

func (c *coordinator) decline(p *league.MatchProposal, actorID string) error {
	if err := c.store.DeleteProposal(p.MatchID); err != nil {
		return err
	}
	if p.MatchType == league.MatchChallenge {
		if err := c.store.DeleteChallengeByMatch(p.MatchID); err != nil {
			return err
		}
	}
	c.forget(p.MatchID)

	if err := c.prompter.Settle(p.Prompt, fmt.Sprintf("❌ Proposal for *%s vs %s* was declined.", p.TeamA, p.TeamB)); err != nil {
		log.Warn("Failed to settle prompt", "error", err, "matchID", p.MatchID)
	}
	// Declines are acknowledged privately, never announced.
	if err := c.notifier.SendDirectMessage(p.ProposerID,
		fmt.Sprintf("Your match proposal `%s` (%s vs %s) was declined.", p.MatchID, p.TeamA, p.TeamB), c.dryRun); err != nil {
		log.Warn("Failed to notify proposer of decline", "error", err, "matchID", p.MatchID)
	}
	log.Info("Proposal declined", "matchID", p.MatchID, "actor", actorID)
	return nil
}

func (c *coordinator) Expire(matchID string) error {
	h := c.lookup(matchID)
	if h == nil || !h.settled.CompareAndSwap(false, true) {
		return nil
	}
	h.stopTimer()

	p, err := c.store.FindProposal(matchID)
	if errors.Is(err, league.ErrNotFound) {
		c.forget(matchID)
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.store.DeleteProposal(matchID); err != nil {
		return err
	}
	if p.MatchType == league.MatchChallenge {
		if err := c.store.DeleteChallengeByMatch(matchID); err != nil {
			return err
		}
	}
	c.forget(matchID)

	if err := c.prompter.Remove(p.Prompt); err != nil {
		log.Warn("Failed to remove expired prompt", "error", err, "matchID", matchID)
	}
	log.Info("Proposal expired", "matchID", matchID)
	return nil
}

func (c *coordinator) Rearm(p *league.MatchProposal) {
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
				log.Error("Failed to expire proposal", "error", err, "matchID", matchID)
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
