package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/league-engine/internal/database"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/ratings"
	"github.com/mauv0809/league-engine/internal/tabular"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME": "league.db",
	}
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

var teamNames = []string{
	"Crimson Owls", "Static Veil", "Night Lattice", "Iron Falcons",
	"Glass Anchors", "Violet Syntax", "Hollow Compass", "Sable Tide",
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	adapter := tabular.New(db)
	store, err := league.New(adapter)
	if err != nil {
		log.Fatalf("Failed to initialize league store: %s", err)
	}
	ledger, err := ratings.New(adapter, ratings.Options{
		WinDelta:            25,
		LossDelta:           -25,
		DefaultTeamRating:   800,
		DefaultPlayerRating: 800,
	})
	if err != nil {
		log.Fatalf("Failed to initialize rating ledger: %s", err)
	}

	startTime := time.Now()
	const rosterSize = 3

	for _, name := range teamNames {
		roster := make([]league.RosterSlot, 0, rosterSize)
		for i := 0; i < rosterSize; i++ {
			slot := league.RosterSlot{
				Name:   fmt.Sprintf("%s Player %d", name, i+1),
				UserID: "U" + uuid.NewString(),
			}
			if err := store.SignupPlayer(league.Player{
				UserID:   slot.UserID,
				Name:     slot.Name,
				Role:     league.RolePlayer,
				Timezone: "UTC",
			}); err != nil {
				log.Fatalf("Failed to sign up player %s: %s", slot.Name, err)
			}
			roster = append(roster, slot)
		}

		if err := store.CreateTeam(name, roster[0]); err != nil {
			log.Fatalf("Failed to create team %s: %s", name, err)
		}
		for _, slot := range roster[1:] {
			if err := store.AddPlayerToTeam(name, slot); err != nil {
				log.Fatalf("Failed to roster %s on %s: %s", slot.Name, name, err)
			}
		}
		log.Info("Seeded team", "name", name, "roster", rosterSize)
	}

	teams, err := store.ListTeams()
	if err != nil {
		log.Fatalf("Failed to list seeded teams: %s", err)
	}
	if err := ledger.SyncTeams(teams); err != nil {
		log.Fatalf("Failed to sync rating entries: %s", err)
	}

	// Spread the teams across rating bands so the first weekly cycle has
	// something to bucket.
	const seededResults = 40
	for i := 0; i < seededResults; i++ {
		team := teams[rand.Intn(len(teams))]
		won := rand.Intn(2) == 0
		if err := ledger.ApplyTeamResult(team.Name, won); err != nil {
			log.Fatalf("Failed to apply seeded result for %s: %s", team.Name, err)
		}
	}

	if err := store.SetCurrentWeek(0); err != nil {
		log.Fatalf("Failed to reset week counter: %s", err)
	}

	log.Info("Seeding complete.",
		"teams", len(teams),
		"results", seededResults,
		"duration", time.Since(startTime))
}
