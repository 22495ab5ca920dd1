package matchmaking

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-engine/internal/config"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/metrics"
	"github.com/mauv0809/league-engine/internal/notifier"
	"github.com/mauv0809/league-engine/internal/ratings"
)

type resolver struct {
	store    league.Store
	ledger   ratings.Ledger
	notifier notifier.Notifier
	metrics  metrics.Metrics
	cfg      config.LeagueConfig
}

// NewResolver creates the forfeit Resolver.
func NewResolver(store league.Store, ledger ratings.Ledger, n notifier.Notifier, m metrics.Metrics, cfg config.LeagueConfig) Resolver {
	return &resolver{store: store, ledger: ledger, notifier: n, metrics: m, cfg: cfg}
}

func (r *resolver) ResolvePrior(eligible map[string]bool, dryRun bool) ([]ForfeitOutcome, error) {
	matches, err := r.store.ListMatches()
	if err != nil {
		return nil, err
	}
	week, err := r.store.CurrentWeek()
	if err != nil {
		return nil, err
	}

	var outcomes []ForfeitOutcome
	for _, m := range matches {
		if m.Status.Terminal() {
			continue
		}
		o, err := r.resolve(m, eligible, week, dryRun)
		if err != nil {
			// A single stuck match must not abort the batch.
			log.Error("Failed to resolve unplayed match", "error", err, "matchID", m.MatchID)
			continue
		}
		outcomes = append(outcomes, *o)
		if !dryRun {
			r.metrics.IncForfeitsResolved()
		}
	}
	return outcomes, nil
}

func (r *resolver) resolve(m *league.MatchRecord, eligible map[string]bool, week int, dryRun bool) (*ForfeitOutcome, error) {
	aOK, bOK := eligible[m.TeamA], eligible[m.TeamB]

	o := ForfeitOutcome{MatchID: m.MatchID, TeamA: m.TeamA, TeamB: m.TeamB}
	switch {
	case aOK != bOK:
		o.Status = league.StatusForfeited
		loser := m.TeamB
		if bOK {
			o.Winner = m.TeamB
			loser = m.TeamA
		} else {
			o.Winner = m.TeamA
		}
		o.Reason = fmt.Sprintf("Forfeit: %s win by default", o.Winner)
		if dryRun {
			break
		}
		if r.cfg.ForfeitAffectsElo {
			if err := r.ledger.ApplyTeamResult(o.Winner, true); err != nil {
				return nil, err
			}
			if err := r.ledger.ApplyTeamResult(loser, false); err != nil {
				return nil, err
			}
		}
		if err := r.store.SetMatchOutcome(m.MatchID, league.StatusForfeited, o.Winner, loser); err != nil {
			return nil, err
		}
	default:
		// Neither team showed, or neither is still eligible.
		o.Status = league.StatusDoubleForfeit
		o.Reason = "Double forfeit: match was never played"
		if dryRun {
			break
		}
		if err := r.store.SetMatchOutcome(m.MatchID, league.StatusDoubleForfeit, "", ""); err != nil {
			return nil, err
		}
	}

	// A dry run reports the classification without touching the record.
	if dryRun {
		log.Info("Would resolve unplayed match", "matchID", m.MatchID, "status", o.Status, "winner", o.Winner)
		return &o, nil
	}

	if err := r.store.AppendForfeitHistory(week, m.MatchID, m.TeamA, m.TeamB, o.Winner, o.Reason); err != nil {
		return nil, err
	}

	// Any lingering proposal or schedule rows for the dead match go too.
	if err := r.store.DeleteProposal(m.MatchID); err != nil {
		return nil, err
	}
	if err := r.store.DeleteScoreProposal(m.MatchID); err != nil {
		return nil, err
	}
	if err := r.store.DeleteScheduledMatch(m.MatchID); err != nil {
		return nil, err
	}
	if err := r.store.DeleteWeeklyAssignmentByMatch(m.MatchID); err != nil {
		return nil, err
	}
	if err := r.store.DeleteChallengeByMatch(m.MatchID); err != nil {
		return nil, err
	}

	if err := r.notifier.SendForfeitNotice(m.MatchID, m.TeamA, m.TeamB, o.Reason, o.Winner, dryRun); err != nil {
		log.Warn("Failed to send forfeit notice", "error", err, "matchID", m.MatchID)
	}
	log.Info("Resolved unplayed match", "matchID", m.MatchID, "status", o.Status, "winner", o.Winner)
	return &o, nil
}
