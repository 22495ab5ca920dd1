package league

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-engine/internal/tabular"
)

// store implements Store over the tabular adapter. All lookups are linear
// scans of a full table read; table handles are resolved once at startup.
type store struct {
	adapter tabular.Adapter
	tables  map[string]*tabular.Table
}

// New creates a new Store, creating any missing tables.
func New(adapter tabular.Adapter) (Store, error) {
	s := &store{
		adapter: adapter,
		tables:  make(map[string]*tabular.Table, len(tableHeaders)),
	}
	for name, header := range tableHeaders {
		t, err := adapter.GetOrCreateTable(name, header)
		if err != nil {
			return nil, fmt.Errorf("failed to open table %s: %w", name, err)
		}
		s.tables[name] = t
	}
	return s, nil
}

func (s *store) table(name string) *tabular.Table {
	return s.tables[name]
}

// --- Players ---

func (s *store) SignupPlayer(p Player) error {
	existing, err := s.FindPlayer(p.UserID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return s.adapter.UpdateRow(s.table(TablePlayers), existing.pos, playerCells(&p))
	}
	_, err = s.adapter.AppendRow(s.table(TablePlayers), playerCells(&p))
	return err
}

func (s *store) FindPlayer(userID string) (*Player, error) {
	rows, err := s.adapter.ReadAll(s.table(TablePlayers))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		p, err := parsePlayerRow(row)
		if err != nil {
			log.Warn("Skipping malformed player row", "error", err)
			continue
		}
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", userID, ErrNotFound)
}

func (s *store) UnsignupPlayer(userID string) error {
	if team, err := s.TeamForPlayer(userID); err == nil && team != nil {
		return fmt.Errorf("player %s is rostered on team %s", userID, team.Name)
	}
	p, err := s.FindPlayer(userID)
	if err != nil {
		return err
	}
	return s.adapter.DeleteRow(s.table(TablePlayers), p.pos)
}

func (s *store) BanPlayer(userID, reason, bannedBy, date string) error {
	p, err := s.FindPlayer(userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	name := userID
	if p != nil {
		name = p.Name
	}
	if _, err := s.adapter.AppendRow(s.table(TableBanned), []string{userID, name, reason, bannedBy, date}); err != nil {
		return err
	}
	// Scrub the player from any roster, then drop the signup row.
	if team, err := s.TeamForPlayer(userID); err == nil && team != nil {
		if err := s.RemovePlayerFromTeam(team.Name, userID); err != nil {
			log.Error("Failed to remove banned player from roster", "error", err, "userID", userID, "team", team.Name)
		}
	}
	if p != nil {
		return s.adapter.DeleteRow(s.table(TablePlayers), p.pos)
	}
	return nil
}

func (s *store) IsBanned(userID string) (bool, error) {
	rows, err := s.adapter.ReadAll(s.table(TableBanned))
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if strings.TrimSpace(row.Get(0)) == userID {
			return true, nil
		}
	}
	return false, nil
}

// --- Teams ---

func (s *store) ListTeams() ([]*Team, error) {
	rows, err := s.adapter.ReadAll(s.table(TableTeams))
	if err != nil {
		return nil, err
	}
	var teams []*Team
	for _, row := range rows {
		team, err := parseTeamRow(row)
		if err != nil {
			log.Warn("Skipping malformed team row", "error", err)
			continue
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (s *store) FindTeamByName(name string) (*Team, error) {
	teams, err := s.ListTeams()
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		if strings.EqualFold(team.Name, name) {
			return team, nil
		}
	}
	return nil, fmt.Errorf("team %q: %w", name, ErrNotFound)
}

func (s *store) TeamForPlayer(userID string) (*Team, error) {
	teams, err := s.ListTeams()
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		if team.HasPlayer(userID) {
			return team, nil
		}
	}
	return nil, fmt.Errorf("no team for player %s: %w", userID, ErrNotFound)
}

func (s *store) CreateTeam(name string, captain RosterSlot) error {
	if _, err := s.FindTeamByName(name); err == nil {
		return fmt.Errorf("team name %q is already taken", name)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if team, err := s.TeamForPlayer(captain.UserID); err == nil && team != nil {
		return fmt.Errorf("player %s is already rostered on team %s", captain.UserID, team.Name)
	}
	team := &Team{Name: name, Roster: []RosterSlot{captain}, Status: TeamActive}
	_, err := s.adapter.AppendRow(s.table(TableTeams), teamCells(team))
	return err
}

func (s *store) DisbandTeam(name string) error {
	team, err := s.FindTeamByName(name)
	if err != nil {
		return err
	}
	return s.adapter.DeleteRow(s.table(TableTeams), team.pos)
}

func (s *store) AddPlayerToTeam(teamName string, slot RosterSlot) error {
	team, err := s.FindTeamByName(teamName)
	if err != nil {
		return err
	}
	if len(team.Roster) >= maxRosterSize {
		return fmt.Errorf("team %s roster is full", team.Name)
	}
	if other, err := s.TeamForPlayer(slot.UserID); err == nil && other != nil {
		return fmt.Errorf("player %s is already rostered on team %s", slot.UserID, other.Name)
	}
	team.Roster = append(team.Roster, slot)
	return s.adapter.UpdateRow(s.table(TableTeams), team.pos, teamCells(team))
}

func (s *store) RemovePlayerFromTeam(teamName, userID string) error {
	team, err := s.FindTeamByName(teamName)
	if err != nil {
		return err
	}
	kept := team.Roster[:0]
	found := false
	for _, slot := range team.Roster {
		if slot.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, slot)
	}
	if !found {
		return fmt.Errorf("player %s on team %s: %w", userID, teamName, ErrNotFound)
	}
	team.Roster = kept
	return s.adapter.UpdateRow(s.table(TableTeams), team.pos, teamCells(team))
}

// PromotePlayer moves the player to slot 0, shifting the old captain down.
func (s *store) PromotePlayer(teamName, userID string) error {
	team, err := s.FindTeamByName(teamName)
	if err != nil {
		return err
	}
	idx := -1
	for i, slot := range team.Roster {
		if slot.UserID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("player %s on team %s: %w", userID, teamName, ErrNotFound)
	}
	if idx == 0 {
		return nil
	}
	promoted := team.Roster[idx]
	team.Roster = append(team.Roster[:idx], team.Roster[idx+1:]...)
	team.Roster = append([]RosterSlot{promoted}, team.Roster...)
	return s.adapter.UpdateRow(s.table(TableTeams), team.pos, teamCells(team))
}

func (s *store) SetTeamStatus(teamName string, status TeamStatus) error {
	team, err := s.FindTeamByName(teamName)
	if err != nil {
		return err
	}
	team.Status = status
	return s.adapter.UpdateRow(s.table(TableTeams), team.pos, teamCells(team))
}

func (s *store) RenameTeam(oldName, newName string) error {
	if existing, err := s.FindTeamByName(newName); err == nil && !strings.EqualFold(existing.Name, oldName) {
		return fmt.Errorf("team name %q is already taken", newName)
	}
	team, err := s.FindTeamByName(oldName)
	if err != nil {
		return err
	}
	team.Name = newName
	return s.adapter.UpdateRow(s.table(TableTeams), team.pos, teamCells(team))
}

// --- Week counter ---

func (s *store) CurrentWeek() (int, error) {
	rows, err := s.adapter.ReadAll(s.table(TableLeagueWeek))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	week, err := strconv.Atoi(strings.TrimSpace(rows[0].Get(0)))
	if err != nil {
		return 0, fmt.Errorf("%w: bad league week %q", ErrMalformedRecord, rows[0].Get(0))
	}
	return week, nil
}

func (s *store) SetCurrentWeek(week int) error {
	rows, err := s.adapter.ReadAll(s.table(TableLeagueWeek))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := s.adapter.AppendRow(s.table(TableLeagueWeek), []string{strconv.Itoa(week)})
		return err
	}
	return s.adapter.UpdateCell(s.table(TableLeagueWeek), rows[0].Pos, 0, strconv.Itoa(week))
}

// --- Canonical match rows ---

func (s *store) ListMatches() ([]*MatchRecord, error) {
	rows, err := s.adapter.ReadAll(s.table(TableMatches))
	if err != nil {
		return nil, err
	}
	var matches []*MatchRecord
	for _, row := range rows {
		m, err := parseMatchRow(row)
		if err != nil {
			log.Warn("Skipping malformed match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *store) FindMatch(matchID string) (*MatchRecord, error) {
	matches, err := s.ListMatches()
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if strings.EqualFold(m.MatchID, matchID) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
}

func (s *store) AppendMatch(m MatchRecord) error {
	_, err := s.adapter.AppendRow(s.table(TableMatches), matchCells(&m))
	return err
}

func (s *store) SetMatchSchedule(matchID, proposedDate, scheduledDate string, status MatchStatus) error {
	m, err := s.FindMatch(matchID)
	if err != nil {
		return err
	}
	m.ProposedDate = proposedDate
	m.ScheduledDate = scheduledDate
	m.Status = status
	return s.adapter.UpdateRow(s.table(TableMatches), m.pos, matchCells(m))
}

func (s *store) SetMatchOutcome(matchID string, status MatchStatus, winner, loser string) error {
	m, err := s.FindMatch(matchID)
	if err != nil {
		return err
	}
	m.Status = status
	m.Winner = winner
	m.Loser = loser
	return s.adapter.UpdateRow(s.table(TableMatches), m.pos, matchCells(m))
}

// MaxChallengeSequence returns the highest sequence number carried by any
// challenge ID for the week, across the challenge rows (which exist from
// propose time, so live proposals reserve their sequence) and the canonical
// match rows. Zero when the week has no challenges yet.
func (s *store) MaxChallengeSequence(week int) (int, error) {
	prefix := fmt.Sprintf("Challenge%d-M", week)
	highest := 0
	challenges, err := s.ListChallenges()
	if err != nil {
		return 0, err
	}
	for _, c := range challenges {
		highest = maxChallengeSeq(highest, c.MatchID, prefix)
	}
	matches, err := s.ListMatches()
	if err != nil {
		return 0, err
	}
	for _, m := range matches {
		highest = maxChallengeSeq(highest, m.MatchID, prefix)
	}
	return highest, nil
}

func maxChallengeSeq(current int, matchID, prefix string) int {
	if !strings.HasPrefix(matchID, prefix) {
		return current
	}
	n, err := strconv.Atoi(strings.TrimPrefix(matchID, prefix))
	if err != nil || n <= current {
		return current
	}
	return n
}

// --- Match-time proposals ---

func (s *store) LiveProposals() ([]*MatchProposal, error) {
	rows, err := s.adapter.ReadAll(s.table(TableProposed))
	if err != nil {
		return nil, err
	}
	var proposals []*MatchProposal
	for _, row := range rows {
		p, err := parseProposalRow(row)
		if err != nil {
			log.Warn("Skipping malformed proposal row", "error", err)
			continue
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

func (s *store) FindProposal(matchID string) (*MatchProposal, error) {
	proposals, err := s.LiveProposals()
	if err != nil {
		return nil, err
	}
	for _, p := range proposals {
		if strings.EqualFold(p.MatchID, matchID) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("proposal %s: %w", matchID, ErrNotFound)
}

func (s *store) FindLiveProposalForPair(teamA, teamB string) (*MatchProposal, error) {
	proposals, err := s.LiveProposals()
	if err != nil {
		return nil, err
	}
	for _, p := range proposals {
		if (strings.EqualFold(p.TeamA, teamA) && strings.EqualFold(p.TeamB, teamB)) ||
			(strings.EqualFold(p.TeamA, teamB) && strings.EqualFold(p.TeamB, teamA)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("proposal for %s vs %s: %w", teamA, teamB, ErrNotFound)
}

func (s *store) SaveProposal(p MatchProposal) error {
	existing, err := s.FindProposal(p.MatchID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return s.adapter.UpdateRow(s.table(TableProposed), existing.pos, proposalCells(&p))
	}
	_, err = s.adapter.AppendRow(s.table(TableProposed), proposalCells(&p))
	return err
}

func (s *store) SetProposalPrompt(matchID string, ref PromptRef) error {
	p, err := s.FindProposal(matchID)
	if err != nil {
		return err
	}
	p.Prompt = ref
	return s.adapter.UpdateRow(s.table(TableProposed), p.pos, proposalCells(p))
}

func (s *store) DeleteProposal(matchID string) error {
	p, err := s.FindProposal(matchID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.adapter.DeleteRow(s.table(TableProposed), p.pos)
}

// --- Score proposals ---

func (s *store) LiveScoreProposals() ([]*ScoreProposal, error) {
	rows, err := s.adapter.ReadAll(s.table(TableProposedScores))
	if err != nil {
		return nil, err
	}
	var proposals []*ScoreProposal
	for _, row := range rows {
		p, err := parseScoreProposalRow(row)
		if err != nil {
			log.Warn("Skipping malformed score proposal row", "error", err)
			continue
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

func (s *store) FindScoreProposal(matchID string) (*ScoreProposal, error) {
	proposals, err := s.LiveScoreProposals()
	if err != nil {
		return nil, err
	}
	for _, p := range proposals {
		if strings.EqualFold(p.MatchID, matchID) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("score proposal %s: %w", matchID, ErrNotFound)
}

// SaveScoreProposal overwrites any prior proposal for the same match instead
// of duplicating it.
func (s *store) SaveScoreProposal(p ScoreProposal) error {
	existing, err := s.FindScoreProposal(p.MatchID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return s.adapter.UpdateRow(s.table(TableProposedScores), existing.pos, scoreProposalCells(&p))
	}
	_, err = s.adapter.AppendRow(s.table(TableProposedScores), scoreProposalCells(&p))
	return err
}

func (s *store) DeleteScoreProposal(matchID string) error {
	p, err := s.FindScoreProposal(matchID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.adapter.DeleteRow(s.table(TableProposedScores), p.pos)
}

// --- Scheduled matches ---

func (s *store) ListScheduledMatches() ([]*ScheduledMatch, error) {
	rows, err := s.adapter.ReadAll(s.table(TableScheduled))
	if err != nil {
		return nil, err
	}
	var matches []*ScheduledMatch
	for _, row := range rows {
		matches = append(matches, &ScheduledMatch{
			MatchID:       strings.TrimSpace(row.Get(0)),
			TeamA:         strings.TrimSpace(row.Get(1)),
			TeamB:         strings.TrimSpace(row.Get(2)),
			ScheduledDate: row.Get(3),
		})
	}
	return matches, nil
}

func (s *store) UpsertScheduledMatch(m ScheduledMatch) error {
	rows, err := s.adapter.ReadAll(s.table(TableScheduled))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row.Get(0)), m.MatchID) {
			return s.adapter.UpdateCell(s.table(TableScheduled), row.Pos, 3, m.ScheduledDate)
		}
	}
	_, err = s.adapter.AppendRow(s.table(TableScheduled), []string{m.MatchID, m.TeamA, m.TeamB, m.ScheduledDate})
	return err
}

func (s *store) DeleteScheduledMatch(matchID string) error {
	rows, err := s.adapter.ReadAll(s.table(TableScheduled))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row.Get(0)), matchID) {
			return s.adapter.DeleteRow(s.table(TableScheduled), row.Pos)
		}
	}
	return nil
}

// --- Weekly assignments ---

func (s *store) ListWeeklyAssignments() ([]*WeeklyAssignment, error) {
	rows, err := s.adapter.ReadAll(s.table(TableWeekly))
	if err != nil {
		return nil, err
	}
	var assignments []*WeeklyAssignment
	for _, row := range rows {
		a, err := parseWeeklyRow(row)
		if err != nil {
			log.Warn("Skipping malformed weekly assignment row", "error", err)
			continue
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (s *store) FindWeeklyAssignment(week int, teamA, teamB string) (*WeeklyAssignment, error) {
	assignments, err := s.ListWeeklyAssignments()
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		if a.Week != week {
			continue
		}
		if (strings.EqualFold(a.TeamA, teamA) && strings.EqualFold(a.TeamB, teamB)) ||
			(strings.EqualFold(a.TeamA, teamB) && strings.EqualFold(a.TeamB, teamA)) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("weekly assignment for %s vs %s in week %d: %w", teamA, teamB, week, ErrNotFound)
}

func (s *store) AppendWeeklyAssignment(a WeeklyAssignment) error {
	_, err := s.adapter.AppendRow(s.table(TableWeekly), weeklyCells(&a))
	return err
}

func (s *store) DeleteWeeklyAssignmentByMatch(matchID string) error {
	rows, err := s.adapter.ReadAll(s.table(TableWeekly))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row.Get(3)), matchID) {
			return s.adapter.DeleteRow(s.table(TableWeekly), row.Pos)
		}
	}
	return nil
}

func (s *store) ClearWeeklyAssignments() error {
	return s.adapter.Clear(s.table(TableWeekly))
}

// --- Challenge tracking ---

func (s *store) ListChallenges() ([]*ChallengeEntry, error) {
	rows, err := s.adapter.ReadAll(s.table(TableChallenges))
	if err != nil {
		return nil, err
	}
	var challenges []*ChallengeEntry
	for _, row := range rows {
		c, err := parseChallengeRow(row)
		if err != nil {
			log.Warn("Skipping malformed challenge row", "error", err)
			continue
		}
		challenges = append(challenges, c)
	}
	return challenges, nil
}

func (s *store) CountChallengesByTeam(week int, teamName string) (int, error) {
	challenges, err := s.ListChallenges()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range challenges {
		if c.Week != week {
			continue
		}
		if strings.EqualFold(c.TeamA, teamName) || strings.EqualFold(c.TeamB, teamName) {
			count++
		}
	}
	return count, nil
}

func (s *store) AppendChallenge(c ChallengeEntry) error {
	_, err := s.adapter.AppendRow(s.table(TableChallenges), challengeCells(&c))
	return err
}

func (s *store) DeleteChallengeByMatch(matchID string) error {
	challenges, err := s.ListChallenges()
	if err != nil {
		return err
	}
	for _, c := range challenges {
		if strings.EqualFold(c.MatchID, matchID) {
			return s.adapter.DeleteRow(s.table(TableChallenges), c.pos)
		}
	}
	return nil
}

// ArchiveChallenges copies every challenge entry to history as a minimal row
// and resets the challenge table for the next cycle.
func (s *store) ArchiveChallenges() error {
	challenges, err := s.ListChallenges()
	if err != nil {
		return err
	}
	for _, c := range challenges {
		cells := []string{
			strconv.Itoa(c.Week), c.MatchID, c.TeamA, c.TeamB,
			"", c.CompletionDate,
			"", "", "", "", "", "", "", "", "",
			"", "", "", "", "",
		}
		if _, err := s.adapter.AppendRow(s.table(TableHistory), cells); err != nil {
			return err
		}
	}
	return s.adapter.Clear(s.table(TableChallenges))
}

// --- Finalized results and history ---

func (s *store) AppendFinalScore(f FinalScore, proposedDate, scheduledDate string) error {
	if _, err := s.adapter.AppendRow(s.table(TableScoring), scoringCells(&f)); err != nil {
		return err
	}
	_, err := s.adapter.AppendRow(s.table(TableHistory), historyCells(&f, proposedDate, scheduledDate))
	return err
}

func (s *store) AppendForfeitHistory(week int, matchID, teamA, teamB, winner, reason string) error {
	cells := []string{
		strconv.Itoa(week), matchID, teamA, teamB,
		"", "",
		"", "", "", "", "", "", "", "", "",
		"", "", "", "", winner, reason,
	}
	_, err := s.adapter.AppendRow(s.table(TableHistory), cells)
	return err
}
