package ratings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/tabular"
)

// Options carries the rating constants the ledger applies.
type Options struct {
	WinDelta            int
	LossDelta           int
	DefaultTeamRating   int
	DefaultPlayerRating int
}

type ledger struct {
	adapter tabular.Adapter
	teams   *tabular.Table
	players *tabular.Table
	opts    Options
}

// New creates a Ledger, creating the two leaderboard tables if missing.
func New(adapter tabular.Adapter, opts Options) (Ledger, error) {
	teams, err := adapter.GetOrCreateTable(TableLeaderboard, leaderboardHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to open leaderboard: %w", err)
	}
	players, err := adapter.GetOrCreateTable(TablePlayerLeaderboard, playerLeaderboardHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to open player leaderboard: %w", err)
	}
	return &ledger{adapter: adapter, teams: teams, players: players, opts: opts}, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func (l *ledger) teamEntries() ([]TeamEntry, error) {
	rows, err := l.adapter.ReadAll(l.teams)
	if err != nil {
		return nil, err
	}
	entries := make([]TeamEntry, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Get(0))
		if name == "" {
			continue
		}
		entries = append(entries, TeamEntry{
			Team:    name,
			Rating:  atoiOr(row.Get(1), l.opts.DefaultTeamRating),
			Wins:    atoiOr(row.Get(2), 0),
			Losses:  atoiOr(row.Get(3), 0),
			Matches: atoiOr(row.Get(4), 0),
			pos:     row.Pos,
		})
	}
	return entries, nil
}

func (l *ledger) TeamEntries() ([]TeamEntry, error) {
	entries, err := l.teamEntries()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Rating > entries[j].Rating })
	return entries, nil
}

func (l *ledger) playerEntries() ([]PlayerEntry, error) {
	rows, err := l.adapter.ReadAll(l.players)
	if err != nil {
		return nil, err
	}
	entries := make([]PlayerEntry, 0, len(rows))
	for _, row := range rows {
		userID := strings.TrimSpace(row.Get(1))
		if userID == "" {
			continue
		}
		entries = append(entries, PlayerEntry{
			Name:    strings.TrimSpace(row.Get(0)),
			UserID:  userID,
			Rating:  atoiOr(row.Get(2), l.opts.DefaultPlayerRating),
			Wins:    atoiOr(row.Get(3), 0),
			Losses:  atoiOr(row.Get(4), 0),
			Matches: atoiOr(row.Get(5), 0),
			pos:     row.Pos,
		})
	}
	return entries, nil
}

func (l *ledger) PlayerEntries() ([]PlayerEntry, error) {
	entries, err := l.playerEntries()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Rating > entries[j].Rating })
	return entries, nil
}

func (l *ledger) TeamRating(teamName string) (int, error) {
	entries, err := l.teamEntries()
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Team, teamName) {
			return e.Rating, nil
		}
	}
	return l.opts.DefaultTeamRating, nil
}

func (l *ledger) delta(won bool) int {
	if won {
		return l.opts.WinDelta
	}
	return l.opts.LossDelta
}

func (l *ledger) ApplyTeamResult(teamName string, won bool) error {
	entries, err := l.teamEntries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !strings.EqualFold(e.Team, teamName) {
			continue
		}
		e.Rating += l.delta(won)
		if won {
			e.Wins++
		} else {
			e.Losses++
		}
		e.Matches++
		return l.adapter.UpdateRow(l.teams, e.pos, teamEntryCells(e))
	}
	e := TeamEntry{Team: teamName, Rating: l.opts.DefaultTeamRating + l.delta(won), Matches: 1}
	if won {
		e.Wins = 1
	} else {
		e.Losses = 1
	}
	log.Info("Creating leaderboard entry", "team", teamName, "rating", e.Rating)
	_, err = l.adapter.AppendRow(l.teams, teamEntryCells(e))
	return err
}

func (l *ledger) ApplyPlayerResult(userID, name string, won bool) error {
	entries, err := l.playerEntries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		e.Rating += l.delta(won)
		if won {
			e.Wins++
		} else {
			e.Losses++
		}
		e.Matches++
		if name != "" {
			e.Name = name
		}
		return l.adapter.UpdateRow(l.players, e.pos, playerEntryCells(e))
	}
	e := PlayerEntry{Name: name, UserID: userID, Rating: l.opts.DefaultPlayerRating + l.delta(won), Matches: 1}
	if won {
		e.Wins = 1
	} else {
		e.Losses = 1
	}
	log.Info("Creating player leaderboard entry", "userID", userID, "rating", e.Rating)
	_, err = l.adapter.AppendRow(l.players, playerEntryCells(e))
	return err
}

// SyncTeams reconciles the leaderboard against the live team roster: missing
// teams get a default entry, entries for disbanded teams are dropped.
func (l *ledger) SyncTeams(teams []*league.Team) error {
	entries, err := l.teamEntries()
	if err != nil {
		return err
	}
	byName := make(map[string]TeamEntry, len(entries))
	for _, e := range entries {
		byName[strings.ToLower(e.Team)] = e
	}
	live := make(map[string]bool, len(teams))
	for _, team := range teams {
		live[strings.ToLower(team.Name)] = true
		if _, ok := byName[strings.ToLower(team.Name)]; ok {
			continue
		}
		e := TeamEntry{Team: team.Name, Rating: l.opts.DefaultTeamRating}
		if _, err := l.adapter.AppendRow(l.teams, teamEntryCells(e)); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if live[strings.ToLower(e.Team)] {
			continue
		}
		log.Info("Dropping leaderboard entry for disbanded team", "team", e.Team)
		if err := l.adapter.DeleteRow(l.teams, e.pos); err != nil {
			return err
		}
	}
	return nil
}

func teamEntryCells(e TeamEntry) []string {
	return []string{
		e.Team,
		strconv.Itoa(e.Rating),
		strconv.Itoa(e.Wins),
		strconv.Itoa(e.Losses),
		strconv.Itoa(e.Matches),
	}
}

func playerEntryCells(e PlayerEntry) []string {
	return []string{
		e.Name,
		e.UserID,
		strconv.Itoa(e.Rating),
		strconv.Itoa(e.Wins),
		strconv.Itoa(e.Losses),
		strconv.Itoa(e.Matches),
	}
}
