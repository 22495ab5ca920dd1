package league

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/league-engine/internal/tabular"
)

// Row codecs between tabular rows and domain structs. Parsers return
// ErrMalformedRecord (wrapped) so batch readers can skip a bad row and keep
// going.

func malformed(table string, row tabular.Row, reason string) error {
	return fmt.Errorf("%w: %s row %d: %s", ErrMalformedRecord, table, row.Pos, reason)
}

func parseTeamRow(row tabular.Row) (*Team, error) {
	name := strings.TrimSpace(row.Get(0))
	if name == "" {
		return nil, malformed(TableTeams, row, "empty team name")
	}
	team := &Team{Name: name, pos: row.Pos}
	for i := 1; i <= maxRosterSize; i++ {
		cell := strings.TrimSpace(row.Get(i))
		if cell == "" {
			continue
		}
		team.Roster = append(team.Roster, ParseRosterSlot(cell))
	}
	status := strings.TrimSpace(row.Get(maxRosterSize + 1))
	if strings.EqualFold(status, string(TeamInactive)) {
		team.Status = TeamInactive
	} else {
		// Legacy rows without a status column count as active.
		team.Status = TeamActive
	}
	return team, nil
}

func teamCells(t *Team) []string {
	cells := make([]string, maxRosterSize+2)
	cells[0] = t.Name
	for i, slot := range t.Roster {
		if i >= maxRosterSize {
			break
		}
		cells[i+1] = slot.String()
	}
	cells[maxRosterSize+1] = string(t.Status)
	return cells
}

func parsePlayerRow(row tabular.Row) (*Player, error) {
	id := strings.TrimSpace(row.Get(0))
	if id == "" {
		return nil, malformed(TablePlayers, row, "empty user id")
	}
	role := PlayerRole(strings.TrimSpace(row.Get(2)))
	if role != RoleLeagueSub {
		role = RolePlayer
	}
	return &Player{
		UserID:   id,
		Name:     strings.TrimSpace(row.Get(1)),
		Role:     role,
		Timezone: strings.TrimSpace(row.Get(3)),
		pos:      row.Pos,
	}, nil
}

func playerCells(p *Player) []string {
	return []string{p.UserID, p.Name, string(p.Role), p.Timezone}
}

func parseMatchRow(row tabular.Row) (*MatchRecord, error) {
	id := strings.TrimSpace(row.Get(0))
	if id == "" {
		return nil, malformed(TableMatches, row, "empty match id")
	}
	return &MatchRecord{
		MatchID:       id,
		TeamA:         strings.TrimSpace(row.Get(1)),
		TeamB:         strings.TrimSpace(row.Get(2)),
		ProposedDate:  row.Get(3),
		ScheduledDate: row.Get(4),
		Status:        MatchStatus(strings.TrimSpace(row.Get(5))),
		Winner:        strings.TrimSpace(row.Get(6)),
		Loser:         strings.TrimSpace(row.Get(7)),
		ProposedBy:    strings.TrimSpace(row.Get(8)),
		pos:           row.Pos,
	}, nil
}

func matchCells(m *MatchRecord) []string {
	return []string{
		m.MatchID, m.TeamA, m.TeamB, m.ProposedDate, m.ScheduledDate,
		string(m.Status), m.Winner, m.Loser, m.ProposedBy,
	}
}

func parseProposalRow(row tabular.Row) (*MatchProposal, error) {
	id := strings.TrimSpace(row.Get(0))
	if id == "" {
		return nil, malformed(TableProposed, row, "empty match id")
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(row.Get(4)), 10, 64)
	if err != nil {
		return nil, malformed(TableProposed, row, "bad proposed time")
	}
	week, _ := strconv.Atoi(strings.TrimSpace(row.Get(6)))
	matchType := MatchType(strings.TrimSpace(row.Get(5)))
	if matchType != MatchChallenge {
		matchType = MatchAssigned
	}
	return &MatchProposal{
		MatchID:      id,
		TeamA:        strings.TrimSpace(row.Get(1)),
		TeamB:        strings.TrimSpace(row.Get(2)),
		ProposerID:   strings.TrimSpace(row.Get(3)),
		ProposedTime: time.Unix(ts, 0).UTC(),
		MatchType:    matchType,
		Week:         week,
		Prompt: PromptRef{
			ChannelID: strings.TrimSpace(row.Get(7)),
			MessageID: strings.TrimSpace(row.Get(8)),
		},
		pos: row.Pos,
	}, nil
}

func proposalCells(p *MatchProposal) []string {
	return []string{
		p.MatchID, p.TeamA, p.TeamB, p.ProposerID,
		strconv.FormatInt(p.ProposedTime.Unix(), 10),
		string(p.MatchType), strconv.Itoa(p.Week),
		p.Prompt.ChannelID, p.Prompt.MessageID,
	}
}

func parseScoreProposalRow(row tabular.Row) (*ScoreProposal, error) {
	id := strings.TrimSpace(row.Get(0))
	if id == "" {
		return nil, malformed(TableProposedScores, row, "empty match id")
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(row.Get(4)), 10, 64)
	if err != nil {
		return nil, malformed(TableProposedScores, row, "bad proposed-at time")
	}
	var maps []MapResult
	if raw := row.Get(5); raw != "" {
		if err := json.Unmarshal([]byte(raw), &maps); err != nil {
			return nil, malformed(TableProposedScores, row, "bad map results")
		}
	}
	return &ScoreProposal{
		MatchID:    id,
		TeamA:      strings.TrimSpace(row.Get(1)),
		TeamB:      strings.TrimSpace(row.Get(2)),
		ProposerID: strings.TrimSpace(row.Get(3)),
		ProposedAt: time.Unix(ts, 0).UTC(),
		Maps:       maps,
		SubA:       parseSubstitute(row.Get(6)),
		SubB:       parseSubstitute(row.Get(7)),
		Prompt: PromptRef{
			ChannelID: strings.TrimSpace(row.Get(8)),
			MessageID: strings.TrimSpace(row.Get(9)),
		},
		pos: row.Pos,
	}, nil
}

func scoreProposalCells(p *ScoreProposal) []string {
	encoded, _ := json.Marshal(p.Maps)
	return []string{
		p.MatchID, p.TeamA, p.TeamB, p.ProposerID,
		strconv.FormatInt(p.ProposedAt.Unix(), 10),
		string(encoded),
		formatSubstitute(p.SubA), formatSubstitute(p.SubB),
		p.Prompt.ChannelID, p.Prompt.MessageID,
	}
}

func parseSubstitute(cell string) *Substitute {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	name, id, ok := strings.Cut(cell, "|")
	if !ok {
		return &Substitute{Name: name}
	}
	return &Substitute{Name: strings.TrimSpace(name), UserID: strings.TrimSpace(id)}
}

func formatSubstitute(s *Substitute) string {
	if s == nil {
		return ""
	}
	return s.Name + "|" + s.UserID
}

func parseWeeklyRow(row tabular.Row) (*WeeklyAssignment, error) {
	week, err := strconv.Atoi(strings.TrimSpace(row.Get(0)))
	if err != nil {
		return nil, malformed(TableWeekly, row, "bad week number")
	}
	return &WeeklyAssignment{
		Week:          week,
		TeamA:         strings.TrimSpace(row.Get(1)),
		TeamB:         strings.TrimSpace(row.Get(2)),
		MatchID:       strings.TrimSpace(row.Get(3)),
		ScheduledDate: row.Get(4),
	}, nil
}

func weeklyCells(a *WeeklyAssignment) []string {
	return []string{strconv.Itoa(a.Week), a.TeamA, a.TeamB, a.MatchID, a.ScheduledDate}
}

func parseChallengeRow(row tabular.Row) (*ChallengeEntry, error) {
	week, err := strconv.Atoi(strings.TrimSpace(row.Get(0)))
	if err != nil {
		return nil, malformed(TableChallenges, row, "bad week number")
	}
	return &ChallengeEntry{
		Week:           week,
		MatchID:        strings.TrimSpace(row.Get(1)),
		TeamA:          strings.TrimSpace(row.Get(2)),
		TeamB:          strings.TrimSpace(row.Get(3)),
		ProposerID:     strings.TrimSpace(row.Get(4)),
		ProposedDate:   row.Get(5),
		CompletionDate: row.Get(6),
		Status:         strings.TrimSpace(row.Get(7)),
		pos:            row.Pos,
	}, nil
}

func challengeCells(c *ChallengeEntry) []string {
	return []string{
		strconv.Itoa(c.Week), c.MatchID, c.TeamA, c.TeamB,
		c.ProposerID, c.ProposedDate, c.CompletionDate, c.Status,
	}
}

func scoringCells(f *FinalScore) []string {
	cells := []string{f.MatchID, f.TeamA, f.TeamB}
	cells = append(cells, mapCells(f.Maps)...)
	cells = append(cells,
		strconv.Itoa(f.TotalA), strconv.Itoa(f.TotalB),
		strconv.Itoa(f.MapsWonA), strconv.Itoa(f.MapsWonB), f.Winner,
	)
	return cells
}

func historyCells(f *FinalScore, proposedDate, scheduledDate string) []string {
	cells := []string{strconv.Itoa(f.Week), f.MatchID, f.TeamA, f.TeamB, proposedDate, scheduledDate}
	cells = append(cells, mapCells(f.Maps)...)
	cells = append(cells,
		strconv.Itoa(f.TotalA), strconv.Itoa(f.TotalB),
		strconv.Itoa(f.MapsWonA), strconv.Itoa(f.MapsWonB), f.Winner,
	)
	return cells
}

// mapCells renders up to three maps as mode/scoreA/scoreB triples, padding
// the third with blanks for two-map series.
func mapCells(maps []MapResult) []string {
	cells := make([]string, 0, 9)
	for i := 0; i < 3; i++ {
		if i < len(maps) {
			cells = append(cells, maps[i].Gamemode, strconv.Itoa(maps[i].ScoreA), strconv.Itoa(maps[i].ScoreB))
		} else {
			cells = append(cells, "", "", "")
		}
	}
	return cells
}
