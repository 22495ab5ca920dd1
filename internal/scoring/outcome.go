package scoring

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-engine/internal/league"
)

// Outcome is the authoritative result computed from a validated map list.
type Outcome struct {
	Maps     []league.MapResult
	TotalA   int
	TotalB   int
	MapsWonA int
	MapsWonB int
	// Winner is a team name, or "Tie" when totals are level.
	Winner string
}

// validMaps filters structurally broken entries. A bad entry is skipped with
// a warning, never fatal.
func validMaps(matchID string, maps []league.MapResult) []league.MapResult {
	kept := make([]league.MapResult, 0, len(maps))
	for i, m := range maps {
		if m.Gamemode == "" || m.ScoreA < 0 || m.ScoreB < 0 {
			log.Warn("Skipping invalid map result", "matchID", matchID, "index", i)
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// computeOutcome validates the map list and derives totals, per-map win
// counts, and the winner. A two-map series split one map each needs a third
// map before it can be scored.
func computeOutcome(matchID, teamA, teamB string, maps []league.MapResult) (*Outcome, error) {
	kept := validMaps(matchID, maps)
	if len(kept) < 2 || len(kept) > 3 {
		return nil, fmt.Errorf("a score report needs 2 or 3 maps, got %d", len(kept))
	}

	o := &Outcome{Maps: kept}
	for _, m := range kept {
		o.TotalA += m.ScoreA
		o.TotalB += m.ScoreB
		if m.ScoreA > m.ScoreB {
			o.MapsWonA++
		} else if m.ScoreB > m.ScoreA {
			o.MapsWonB++
		}
	}

	if len(kept) == 2 && o.MapsWonA == 1 && o.MapsWonB == 1 {
		return nil, fmt.Errorf("series is split 1-1 after two maps: %w", league.ErrTiebreakRequired)
	}

	switch {
	case o.TotalA > o.TotalB:
		o.Winner = teamA
	case o.TotalB > o.TotalA:
		o.Winner = teamB
	default:
		o.Winner = "Tie"
	}
	return o, nil
}
