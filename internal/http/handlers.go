package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/prompt"
	"github.com/mauv0809/league-engine/internal/proposal"
	"github.com/mauv0809/league-engine/internal/pubsub"
	"github.com/mauv0809/league-engine/internal/scoring"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := s.Store.ListTeams()
		if err != nil {
			http.Error(w, "Failed to list teams", http.StatusInternalServerError)
			log.Error("Failed to list teams", "error", err)
			return
		}
		respondWithJSON(w, teams)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.ListMatches()
		if err != nil {
			http.Error(w, "Failed to list matches", http.StatusInternalServerError)
			log.Error("Failed to list matches", "error", err)
			return
		}
		respondWithJSON(w, matches)
	}
}

// LifetimeMetricsHandler serves the durable counters, which survive restarts
// unlike the Prometheus registry.
func (s *Server) LifetimeMetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MetricsStore == nil {
			http.Error(w, "Lifetime metrics not configured", http.StatusServiceUnavailable)
			return
		}
		all, err := s.MetricsStore.GetAll()
		if err != nil {
			http.Error(w, "Failed to read lifetime metrics", http.StatusInternalServerError)
			log.Error("Failed to read lifetime metrics", "error", err)
			return
		}
		respondWithJSON(w, all)
	}
}

func (s *Server) GenerateWeeklyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		result, err := s.Engine.RunWeekly(isDryRun)
		if err != nil {
			http.Error(w, fmt.Sprintf("Weekly run failed: %v", err), http.StatusConflict)
			log.Error("Weekly run failed", "error", err)
			return
		}
		respondWithJSON(w, result)
	}
}

// InteractivityHandler routes button clicks on accept/decline prompts to the
// owning coordinator. Slack expects a 200 regardless of the business
// outcome; user-facing errors go back as ephemeral text.
func (s *Server) InteractivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}

		var payload slack.InteractionCallback
		if err := json.Unmarshal([]byte(r.FormValue("payload")), &payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			log.Error("Failed to unmarshal interaction payload", "error", err)
			return
		}
		if payload.Type != slack.InteractionTypeBlockActions || len(payload.ActionCallback.BlockActions) == 0 {
			w.WriteHeader(http.StatusOK)
			return
		}

		action := payload.ActionCallback.BlockActions[0]
		matchID := action.Value
		actorID := payload.User.ID

		err := s.dispatchAction(action.ActionID, matchID, actorID)
		if err != nil {
			log.Warn("Interaction rejected", "actionID", action.ActionID, "matchID", matchID, "actor", actorID, "error", err)
			respondEphemeral(w, userFacing(err))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) dispatchAction(actionID, matchID, actorID string) error {
	var kind, decision string
	switch {
	case strings.HasSuffix(actionID, "_"+prompt.ActionAccept):
		kind = strings.TrimSuffix(actionID, "_"+prompt.ActionAccept)
		decision = prompt.ActionAccept
	case strings.HasSuffix(actionID, "_"+prompt.ActionDecline):
		kind = strings.TrimSuffix(actionID, "_"+prompt.ActionDecline)
		decision = prompt.ActionDecline
	default:
		return fmt.Errorf("unknown action ID %q", actionID)
	}

	switch prompt.Kind(kind) {
	case prompt.KindMatchTime:
		return s.Proposals.Respond(matchID, proposal.Decision(decision), actorID)
	case prompt.KindScore:
		return s.Scores.Respond(matchID, scoring.Decision(decision), actorID)
	default:
		return fmt.Errorf("unknown prompt kind %q", kind)
	}
}

func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Ledger.TeamEntries()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to read team leaderboard", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(entries)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}
		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

func (s *Server) PlayerLeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Ledger.PlayerEntries()
		if err != nil {
			http.Error(w, "Failed to get player leaderboard", http.StatusInternalServerError)
			log.Error("Failed to read player leaderboard", "error", err)
			return
		}

		msg, err := s.Notifier.FormatPlayerLeaderboardResponse(entries)
		if err != nil {
			http.Error(w, "Failed to format player leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format player leaderboard", "error", err)
			return
		}
		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// ProposeCommandHandler handles `/propose-match <opponent> <YYYY-MM-DD> <HH:MM>`.
// The match becomes the pair's weekly assignment when one exists, otherwise
// a challenge match.
func (s *Server) ProposeCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		userID := r.FormValue("user_id")

		fields := strings.Fields(r.FormValue("text"))
		if len(fields) < 3 {
			respondEphemeral(w, "Usage: /propose-match <opponent team> <YYYY-MM-DD> <HH:MM>")
			return
		}
		opponent := strings.Join(fields[:len(fields)-2], " ")
		proposedTime, err := time.Parse("2006-01-02 15:04", fields[len(fields)-2]+" "+fields[len(fields)-1])
		if err != nil {
			respondEphemeral(w, "Could not read the date. Use YYYY-MM-DD HH:MM.")
			return
		}

		team, err := s.Store.TeamForPlayer(userID)
		if err != nil {
			respondEphemeral(w, "You are not on a team.")
			return
		}

		matchType, err := s.matchTypeFor(team.Name, opponent)
		if err != nil {
			respondEphemeral(w, userFacing(err))
			return
		}

		p, err := s.Proposals.Propose(proposal.ProposeRequest{
			TeamA:        team.Name,
			TeamB:        opponent,
			ProposedTime: proposedTime,
			MatchType:    matchType,
			ProposerID:   userID,
		})
		if err != nil {
			respondEphemeral(w, userFacing(err))
			return
		}
		respondEphemeral(w, fmt.Sprintf("Proposal `%s` sent to %s for %s.", p.MatchID, opponent, proposedTime.Format("Mon 02 Jan 15:04")))
	}
}

func (s *Server) matchTypeFor(teamName, opponent string) (league.MatchType, error) {
	week, err := s.Store.CurrentWeek()
	if err != nil {
		return "", err
	}
	if _, err := s.Store.FindWeeklyAssignment(week, teamName, opponent); err == nil {
		return league.MatchAssigned, nil
	} else if !errors.Is(err, league.ErrNotFound) {
		return "", err
	}
	return league.MatchChallenge, nil
}

// ScoreCommandHandler handles
// `/report-score <matchID> <gamemode> <a>-<b> ... [subA=Name|UID] [subB=Name|UID]`.
func (s *Server) ScoreCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		userID := r.FormValue("user_id")

		req, err := parseScoreText(r.FormValue("text"))
		if err != nil {
			respondEphemeral(w, err.Error())
			return
		}
		req.ProposerID = userID

		p, err := s.Scores.ProposeScore(*req)
		if err != nil {
			respondEphemeral(w, userFacing(err))
			return
		}
		respondEphemeral(w, fmt.Sprintf("Score for `%s` sent to the opposing captain for confirmation.", p.MatchID))
	}
}

func parseScoreText(text string) (*scoring.ProposeRequest, error) {
	usage := "Usage: /report-score <matchID> <gamemode> <a>-<b> ... [subA=Name|UID] [subB=Name|UID]"
	fields := strings.Fields(text)
	if len(fields) < 1 {
		return nil, errors.New(usage)
	}

	req := &scoring.ProposeRequest{MatchID: fields[0]}
	rest := fields[1:]
	for i := 0; i < len(rest); {
		token := rest[i]
		if sub, ok := strings.CutPrefix(token, "subA="); ok {
			s, err := parseSub(sub)
			if err != nil {
				return nil, err
			}
			req.SubA = s
			i++
			continue
		}
		if sub, ok := strings.CutPrefix(token, "subB="); ok {
			s, err := parseSub(sub)
			if err != nil {
				return nil, err
			}
			req.SubB = s
			i++
			continue
		}
		if i+1 >= len(rest) {
			return nil, errors.New(usage)
		}
		var a, b int
		if _, err := fmt.Sscanf(rest[i+1], "%d-%d", &a, &b); err != nil {
			return nil, fmt.Errorf("could not read score %q, expected <a>-<b>", rest[i+1])
		}
		req.Maps = append(req.Maps, league.MapResult{Gamemode: token, ScoreA: a, ScoreB: b})
		i += 2
	}
	if len(req.Maps) == 0 {
		return nil, errors.New(usage)
	}
	return req, nil
}

func parseSub(value string) (*league.Substitute, error) {
	name, id, ok := strings.Cut(value, "|")
	if !ok || name == "" || id == "" {
		return nil, errors.New("substitutes are written as sub<A|B>=Name|UserID")
	}
	return &league.Substitute{Name: name, UserID: id}, nil
}

// SignupCommandHandler handles `/signup [sub] [timezone]`.
func (s *Server) SignupCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		userID := r.FormValue("user_id")
		userName := r.FormValue("user_name")

		banned, err := s.Store.IsBanned(userID)
		if err != nil {
			respondEphemeral(w, "Signup failed, try again later.")
			log.Error("Failed to check ban list", "error", err, "user", userID)
			return
		}
		if banned {
			respondEphemeral(w, "You are not allowed to sign up.")
			return
		}

		role := league.RolePlayer
		timezone := ""
		for _, token := range strings.Fields(r.FormValue("text")) {
			if strings.EqualFold(token, "sub") {
				role = league.RoleLeagueSub
				continue
			}
			timezone = token
		}

		if err := s.Store.SignupPlayer(league.Player{
			UserID: userID, Name: userName, Role: role, Timezone: timezone,
		}); err != nil {
			respondEphemeral(w, userFacing(err))
			return
		}
		respondEphemeral(w, fmt.Sprintf("Signed up as %s. Welcome!", role))
	}
}

// TeamCommandHandler handles `/team create <name>`, `/team add <userID> <name>`,
// `/team kick <userID>`, `/team promote <userID>`, `/team rename <name>`,
// `/team status <active|inactive>` and `/team disband`. Roster mutations are
// refused once the roster lock has passed.
func (s *Server) TeamCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		userID := r.FormValue("user_id")
		userName := r.FormValue("user_name")

		fields := strings.Fields(r.FormValue("text"))
		if len(fields) == 0 {
			respondEphemeral(w, "Usage: /team <create|add|kick|promote|rename|status|disband> ...")
			return
		}

		// A captain may toggle activity even while the roster is locked;
		// inactive teams simply sit out the weekly cycle.
		if fields[0] == "status" {
			if len(fields) != 2 {
				respondEphemeral(w, "Usage: /team status <active|inactive>")
				return
			}
			status := league.TeamInactive
			if strings.EqualFold(fields[1], "active") {
				status = league.TeamActive
			}
			err := s.withCaptain(userID, func(team *league.Team) error {
				return s.Store.SetTeamStatus(team.Name, status)
			})
			if err != nil {
				respondEphemeral(w, userFacing(err))
				return
			}
			respondEphemeral(w, fmt.Sprintf("Team status set to %s.", status))
			return
		}

		if s.rosterLocked() {
			respondEphemeral(w, "The roster is locked for this season.")
			return
		}

		var err error
		var reply string
		switch fields[0] {
		case "create":
			name := strings.Join(fields[1:], " ")
			if name == "" {
				respondEphemeral(w, "Usage: /team create <name>")
				return
			}
			err = s.Store.CreateTeam(name, league.RosterSlot{Name: userName, UserID: userID})
			reply = fmt.Sprintf("Team *%s* created. You are the captain.", name)
		case "add":
			if len(fields) < 3 {
				respondEphemeral(w, "Usage: /team add <userID> <name>")
				return
			}
			err = s.withCaptain(userID, func(team *league.Team) error {
				return s.Store.AddPlayerToTeam(team.Name, league.RosterSlot{
					UserID: fields[1], Name: strings.Join(fields[2:], " "),
				})
			})
			reply = "Player added to your roster."
		case "kick":
			if len(fields) != 2 {
				respondEphemeral(w, "Usage: /team kick <userID>")
				return
			}
			err = s.withCaptain(userID, func(team *league.Team) error {
				return s.Store.RemovePlayerFromTeam(team.Name, fields[1])
			})
			reply = "Player removed from your roster."
		case "promote":
			if len(fields) != 2 {
				respondEphemeral(w, "Usage: /team promote <userID>")
				return
			}
			err = s.withCaptain(userID, func(team *league.Team) error {
				return s.Store.PromotePlayer(team.Name, fields[1])
			})
			reply = "Player promoted to captain."
		case "rename":
			name := strings.Join(fields[1:], " ")
			if name == "" {
				respondEphemeral(w, "Usage: /team rename <new name>")
				return
			}
			err = s.withCaptain(userID, func(team *league.Team) error {
				return s.Store.RenameTeam(team.Name, name)
			})
			reply = fmt.Sprintf("Team renamed to *%s*.", name)
		case "disband":
			err = s.withCaptain(userID, func(team *league.Team) error {
				return s.Store.DisbandTeam(team.Name)
			})
			reply = "Team disbanded."
		default:
			respondEphemeral(w, "Usage: /team <create|add|kick|promote|rename|status|disband> ...")
			return
		}

		if err != nil {
			respondEphemeral(w, userFacing(err))
			return
		}
		respondEphemeral(w, reply)
	}
}

// UnsignupCommandHandler handles `/unsignup`. Rostered players must leave
// their team first.
func (s *Server) UnsignupCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		userID := r.FormValue("user_id")
		if err := s.Store.UnsignupPlayer(userID); err != nil {
			respondEphemeral(w, userFacing(err))
			log.Info("Unsignup refused", "error", err, "user", userID)
			return
		}
		respondEphemeral(w, "You have left the league. See you next season!")
	}
}

// AdminCommandHandler handles `/admin ban <userID> [reason...]`. The actor
// must carry the admin usergroup; an empty AdminRoleID disables the surface.
func (s *Server) AdminCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		actorID := r.FormValue("user_id")
		actorName := r.FormValue("user_name")

		if s.Cfg.Slack.AdminRoleID == "" {
			respondEphemeral(w, "Admin commands are not enabled.")
			return
		}
		isAdmin, err := s.Roles.HasRole(actorID, s.Cfg.Slack.AdminRoleID)
		if err != nil {
			respondEphemeral(w, "Could not verify your role, try again later.")
			log.Error("Failed to check admin role", "error", err, "user", actorID)
			return
		}
		if !isAdmin {
			respondEphemeral(w, "You are not allowed to do that.")
			return
		}

		fields := strings.Fields(r.FormValue("text"))
		if len(fields) < 2 || fields[0] != "ban" {
			respondEphemeral(w, "Usage: /admin ban <userID> [reason...]")
			return
		}
		userID := fields[1]
		reason := strings.Join(fields[2:], " ")
		date := s.Clock.Now().UTC().Format("2006-01-02")
		if err := s.Store.BanPlayer(userID, reason, actorName, date); err != nil {
			respondEphemeral(w, userFacing(err))
			log.Error("Failed to ban player", "error", err, "user", userID)
			return
		}
		log.Info("Player banned", "user", userID, "by", actorID, "reason", reason)
		respondEphemeral(w, fmt.Sprintf("Banned <@%s>.", userID))
	}
}

// withCaptain runs fn with the actor's team after checking they hold the
// captain slot.
func (s *Server) withCaptain(userID string, fn func(team *league.Team) error) error {
	team, err := s.Store.TeamForPlayer(userID)
	if err != nil {
		return fmt.Errorf("you are not on a team: %w", err)
	}
	if len(team.Roster) == 0 || team.Roster[0].UserID != userID {
		return fmt.Errorf("only the captain may do that: %w", league.ErrUnauthorized)
	}
	return fn(team)
}

func (s *Server) rosterLocked() bool {
	lock := s.Cfg.League.RosterLockTimestamp
	return !lock.IsZero() && s.Clock.Now().After(lock)
}

// MatchFinalizedPushHandler consumes the Pub/Sub push for finalized matches
// and republishes the refreshed leaderboards.
func (s *Server) MatchFinalizedPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received match finalized push", "body", string(bodyBytes))

		var pushMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}
		if err := json.Unmarshal(bodyBytes, &pushMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event pubsub.MatchFinalizedEvent
		if err := s.PubSub.ProcessMessage(rawData, &event); err != nil {
			log.Error("Failed to decode match finalized event", "error", err)
			http.Error(w, "Invalid event data", http.StatusBadRequest)
			return
		}
		log.Info("Refreshing leaderboards", "matchID", event.MatchID, "winner", event.Winner)
		isDryRun := isDryRunFromContext(r)

		if entries, err := s.Ledger.TeamEntries(); err != nil {
			log.Error("Failed to read team leaderboard", "error", err)
		} else if err := s.Notifier.SendLeaderboard(entries, isDryRun); err != nil {
			log.Warn("Failed to send leaderboard", "error", err)
		}
		if entries, err := s.Ledger.PlayerEntries(); err != nil {
			log.Error("Failed to read player leaderboard", "error", err)
		} else if err := s.Notifier.SendPlayerLeaderboard(entries, isDryRun); err != nil {
			log.Warn("Failed to send player leaderboard", "error", err)
		}

		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func respondWithJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondEphemeral writes a message only the acting user sees.
func respondEphemeral(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := map[string]string{"response_type": "ephemeral", "text": text}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to encode ephemeral response", "error", err)
	}
}

// userFacing maps the validation errors to short user messages; anything
// unexpected gets a generic line and the detail stays in the logs.
func userFacing(err error) string {
	switch {
	case errors.Is(err, league.ErrUnauthorized):
		return "You are not allowed to do that."
	case errors.Is(err, league.ErrDuplicateProposal):
		return "There is already a live proposal for this matchup."
	case errors.Is(err, league.ErrInvalidWindow):
		return "That time is outside the season window."
	case errors.Is(err, league.ErrTiebreakRequired):
		return "The series is split 1-1, report a third map."
	case errors.Is(err, league.ErrNotFound):
		return "Could not find that; check team name or match ID."
	default:
		log.Error("Unexpected error in slack command", "error", err)
		return "Something went wrong, try again later."
	}
}
