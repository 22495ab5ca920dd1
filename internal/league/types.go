package league

import (
	"fmt"
	"strings"
	"time"
)

// TeamStatus marks whether a team takes part in matchmaking.
type TeamStatus string

const (
	TeamActive   TeamStatus = "Active"
	TeamInactive TeamStatus = "Inactive"
)

// MatchStatus is the lifecycle state of the canonical match row.
type MatchStatus string

const (
	StatusAutoProposed  MatchStatus = "Auto Proposed"
	StatusScheduled     MatchStatus = "Scheduled"
	StatusFinished      MatchStatus = "Finished"
	StatusForfeited     MatchStatus = "Forfeited"
	StatusDoubleForfeit MatchStatus = "Double Forfeit"
	StatusCancelled     MatchStatus = "Cancelled"
)

// Terminal reports whether the status ends the match's life. Non-terminal
// matches left over from a previous cycle go through forfeit resolution.
func (s MatchStatus) Terminal() bool {
	switch s {
	case StatusFinished, StatusForfeited, StatusDoubleForfeit, StatusCancelled:
		return true
	}
	return false
}

// MatchType distinguishes league-assigned weekly matches from challenges.
type MatchType string

const (
	MatchAssigned  MatchType = "assigned"
	MatchChallenge MatchType = "challenge"
)

// WeekFromMatchID extracts the cycle week encoded in a "Week%d-M%03d" or
// "Challenge%d-M%03d" match ID. The week a result belongs to is fixed by its
// ID, not by whatever the current week is when the score is confirmed.
func WeekFromMatchID(matchID string) (int, error) {
	var week, seq int
	if _, err := fmt.Sscanf(matchID, "Week%d-M%d", &week, &seq); err == nil {
		return week, nil
	}
	if _, err := fmt.Sscanf(matchID, "Challenge%d-M%d", &week, &seq); err == nil {
		return week, nil
	}
	return 0, fmt.Errorf("%w: match ID %q carries no week", ErrMalformedRecord, matchID)
}

// PlayerRole is the signup role of a player.
type PlayerRole string

const (
	RolePlayer    PlayerRole = "Player"
	RoleLeagueSub PlayerRole = "League Sub"
)

// RosterSlot is one occupied roster position: a display name plus the
// identity-platform user ID. The durable cell format is "Name (ID)".
type RosterSlot struct {
	Name   string
	UserID string
}

// String renders the durable cell format.
func (s RosterSlot) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.UserID)
}

// ParseRosterSlot decodes a "Name (ID)" cell. A cell without an ID suffix is
// kept as a bare display name.
func ParseRosterSlot(cell string) RosterSlot {
	cell = strings.TrimSpace(cell)
	open := strings.LastIndex(cell, "(")
	if open == -1 || !strings.HasSuffix(cell, ")") {
		return RosterSlot{Name: cell}
	}
	return RosterSlot{
		Name:   strings.TrimSpace(cell[:open]),
		UserID: strings.TrimSpace(cell[open+1 : len(cell)-1]),
	}
}

// Team is a signed-up team. Slot 0 of the roster is the captain, slot 1 the
// co-captain-eligible position.
type Team struct {
	Name   string
	Roster []RosterSlot
	Status TeamStatus

	pos int64
}

// Captain returns the slot-0 player, if any.
func (t *Team) Captain() (RosterSlot, bool) {
	if len(t.Roster) == 0 {
		return RosterSlot{}, false
	}
	return t.Roster[0], true
}

// CoCaptain returns the slot-1 player, if any. Co-captain authority also
// requires the configured role on the identity platform.
func (t *Team) CoCaptain() (RosterSlot, bool) {
	if len(t.Roster) < 2 {
		return RosterSlot{}, false
	}
	return t.Roster[1], true
}

// HasPlayer reports whether the user occupies any roster slot.
func (t *Team) HasPlayer(userID string) bool {
	for _, s := range t.Roster {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// Player is a signed-up league member.
type Player struct {
	UserID   string
	Name     string
	Role     PlayerRole
	Timezone string

	pos int64
}

// MatchRecord is the canonical row per match across its whole life.
type MatchRecord struct {
	MatchID       string
	TeamA         string
	TeamB         string
	ProposedDate  string
	ScheduledDate string
	Status        MatchStatus
	Winner        string
	Loser         string
	ProposedBy    string

	pos int64
}

// ScheduledMatch is created when a match-time proposal is accepted.
type ScheduledMatch struct {
	MatchID       string
	TeamA         string
	TeamB         string
	ScheduledDate string
}

// WeeklyAssignment is one generated weekly pairing.
type WeeklyAssignment struct {
	Week          int
	TeamA         string
	TeamB         string
	MatchID       string
	ScheduledDate string
}

// PromptRef is the durable location of an interactive prompt: the channel and
// message the accept/decline buttons live on. It is persisted alongside each
// proposal so outstanding prompts survive a restart.
type PromptRef struct {
	ChannelID string
	MessageID string
}

// IsZero reports whether the ref points nowhere.
func (r PromptRef) IsZero() bool {
	return r.ChannelID == "" && r.MessageID == ""
}

// MatchProposal is a pending match-time proposal awaiting the opposing
// captain's response.
type MatchProposal struct {
	MatchID      string
	TeamA        string
	TeamB        string
	ProposerID   string
	ProposedTime time.Time
	MatchType    MatchType
	Week         int
	Prompt       PromptRef

	pos int64
}

// MapResult is one map of a score proposal.
type MapResult struct {
	Gamemode string `json:"gamemode"`
	ScoreA   int    `json:"score_a"`
	ScoreB   int    `json:"score_b"`
}

// Substitute is a declared stand-in credited alongside the roster on
// finalization. The durable cell format is "Name|ID".
type Substitute struct {
	Name   string
	UserID string
}

// ScoreProposal is a pending score report awaiting the opposing captain's
// confirmation.
type ScoreProposal struct {
	MatchID    string
	TeamA      string
	TeamB      string
	ProposerID string
	ProposedAt time.Time
	Maps       []MapResult
	SubA       *Substitute
	SubB       *Substitute
	Prompt     PromptRef

	pos int64
}

// ChallengeEntry tracks a challenge match against the weekly challenge limit.
type ChallengeEntry struct {
	Week           int
	MatchID        string
	TeamA          string
	TeamB          string
	ProposerID     string
	ProposedDate   string
	CompletionDate string
	Status         string

	pos int64
}

// FinalScore is a fully validated, finalized score line appended to the
// Scoring and Match History tables.
type FinalScore struct {
	Week     int
	MatchID  string
	TeamA    string
	TeamB    string
	Maps     []MapResult
	TotalA   int
	TotalB   int
	MapsWonA int
	MapsWonB int
	Winner   string
}
