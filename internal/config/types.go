package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	Turso     TursoConfig
	ProjectID string
	League    LeagueConfig
}

type SlackConfig struct {
	Token         string
	SigningSecret string
	// AnnounceChannelID receives public announcements: weekly matchups,
	// scheduled matches and final results.
	AnnounceChannelID string
	// PromptChannelID hosts the interactive accept/decline prompts.
	PromptChannelID string
	// AdminRoleID is the usergroup allowed to run /admin commands. Empty
	// disables the admin surface.
	AdminRoleID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// LeagueConfig is the rules surface of the league. It is built once at
// startup and passed explicitly into every coordinator and engine.
type LeagueConfig struct {
	TeamMinPlayers       int
	TeamMaxPlayers       int
	MinimumTeamsStart    int
	EloWinPoints         int
	EloLossPoints        int
	ForfeitAffectsElo    bool
	WeeklyChallengeLimit int
	SeasonStart          time.Time
	SeasonEnd            time.Time
	DefaultTeamRating    int
	DefaultPlayerRating  int
	CoCaptainRoleID      string
	RosterLockTimestamp  time.Time
	// ProposalTimeout bounds how long a match or score proposal waits for a
	// response before it expires.
	ProposalTimeout time.Duration
}
