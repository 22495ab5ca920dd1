package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	getEnvInt := func(key string, fallback int) int {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s must be an integer, got %q.", key, value)
		}
		return n
	}

	getEnvBool := func(key string, fallback bool) bool {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s must be a boolean, got %q.", key, value)
		}
		return b
	}

	getEnvTime := func(key string) time.Time {
		value := getEnv(key)
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s must be an ISO timestamp, got %q.", key, value)
		}
		return t
	}

	getEnvDuration := func(key string, fallback time.Duration) time.Duration {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s must be a duration, got %q.", key, value)
		}
		return d
	}

	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Slack: SlackConfig{
			Token:             getEnv("SLACK_BOT_TOKEN"),
			SigningSecret:     getEnv("SLACK_SIGNING_SECRET"),
			AnnounceChannelID: getEnv("SLACK_ANNOUNCE_CHANNEL_ID"),
			PromptChannelID:   getEnv("SLACK_PROMPT_CHANNEL_ID"),
			AdminRoleID:       os.Getenv("ADMIN_ROLE_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		League: LeagueConfig{
			TeamMinPlayers:       getEnvInt("TEAM_MIN_PLAYERS", 3),
			TeamMaxPlayers:       getEnvInt("TEAM_MAX_PLAYERS", 6),
			MinimumTeamsStart:    getEnvInt("MINIMUM_TEAMS_START", 2),
			EloWinPoints:         getEnvInt("ELO_WIN_POINTS", 25),
			EloLossPoints:        getEnvInt("ELO_LOSS_POINTS", -25),
			ForfeitAffectsElo:    getEnvBool("FORFEIT_AFFECTS_ELO", true),
			WeeklyChallengeLimit: getEnvInt("WEEKLY_CHALLENGE_LIMIT", 1),
			SeasonStart:          getEnvTime("SEASON_START"),
			SeasonEnd:            getEnvTime("SEASON_END"),
			DefaultTeamRating:    getEnvInt("DEFAULT_TEAM_RATING", 800),
			DefaultPlayerRating:  getEnvInt("DEFAULT_PLAYER_RATING", 800),
			CoCaptainRoleID:      os.Getenv("CO_CAPTAIN_ROLE_ID"),
			RosterLockTimestamp:  parseOptionalTime(os.Getenv("ROSTER_LOCK_TIMESTAMP")),
			ProposalTimeout:      getEnvDuration("PROPOSAL_TIMEOUT", 48*time.Hour),
		},
	}
	return cfg
}

func parseOptionalTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Fatalf("Error: ROSTER_LOCK_TIMESTAMP must be an ISO timestamp, got %q.", value)
	}
	return t
}
