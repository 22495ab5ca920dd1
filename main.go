package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/config"
	"github.com/mauv0809/league-engine/internal/database"
	server "github.com/mauv0809/league-engine/internal/http"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/matchmaking"
	"github.com/mauv0809/league-engine/internal/metrics"
	notifierslack "github.com/mauv0809/league-engine/internal/notifier/slack"
	promptslack "github.com/mauv0809/league-engine/internal/prompt/slack"
	"github.com/mauv0809/league-engine/internal/proposal"
	"github.com/mauv0809/league-engine/internal/pubsub"
	"github.com/mauv0809/league-engine/internal/ratings"
	"github.com/mauv0809/league-engine/internal/rehydrate"
	"github.com/mauv0809/league-engine/internal/scoring"
	"github.com/mauv0809/league-engine/internal/slack"
	"github.com/mauv0809/league-engine/internal/tabular"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	adapter := tabular.New(db)
	store, err := league.New(adapter)
	if err != nil {
		log.Fatalf("Failed to initialize league store: %s", err)
	}
	ledger, err := ratings.New(adapter, ratings.Options{
		WinDelta:            cfg.League.EloWinPoints,
		LossDelta:           cfg.League.EloLossPoints,
		DefaultTeamRating:   cfg.League.DefaultTeamRating,
		DefaultPlayerRating: cfg.League.DefaultPlayerRating,
	})
	if err != nil {
		log.Fatalf("Failed to initialize rating ledger: %s", err)
	}

	clock := clockwork.NewRealClock()
	metricsStore := metrics.New(db)
	metricsSvc := metrics.NewService().WithStore(metricsStore)
	metricsHandler := metrics.NewMetricsHandler()

	// Weekly announcements mention every rostered player of the named team.
	mentions := func(teamName string) []string {
		team, err := store.FindTeamByName(teamName)
		if err != nil {
			return nil
		}
		ids := make([]string, 0, len(team.Roster))
		for _, slot := range team.Roster {
			ids = append(ids, slot.UserID)
		}
		return ids
	}

	notifier := notifierslack.NewNotifier(cfg.Slack.Token, cfg.Slack.AnnounceChannelID, mentions, metricsSvc)
	prompter := promptslack.NewPrompter(cfg.Slack.Token, cfg.Slack.PromptChannelID, metricsSvc)
	roles := slack.NewRoleChecker(cfg.Slack.Token, clock)
	events := pubsub.New(cfg.ProjectID)

	proposals := proposal.New(store, prompter, notifier, roles, metricsSvc, clock, cfg.League, false)
	scores := scoring.New(store, ledger, prompter, notifier, events, roles, metricsSvc, clock, cfg.League, false)
	resolver := matchmaking.NewResolver(store, ledger, notifier, metricsSvc, cfg.League)
	engine := matchmaking.New(store, ledger, resolver, notifier, events, metricsSvc, clock, cfg.League)

	// Live proposals from before the restart get their expiry handles back
	// before any traffic is accepted.
	report, err := rehydrate.New(store, prompter, proposals, scores).Run()
	if err != nil {
		log.Fatalf("Failed to rehydrate proposals: %s", err)
	}
	log.Info("Rehydrated proposal handles",
		"matchProposals", report.MatchProposals,
		"scoreProposals", report.ScoreProposals,
		"orphans", report.Orphans)

	s := server.NewServer(
		store,
		ledger,
		metricsSvc,
		metricsHandler,
		metricsStore,
		cfg,
		notifier,
		roles,
		proposals,
		scores,
		engine,
		events,
		clock,
	)

	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
