package slack

import (
	"fmt"
	"strings"

	"github.com/mauv0809/league-engine/internal/league"
	"github.com/mauv0809/league-engine/internal/ratings"
	"github.com/slack-go/slack"
)

// formatWeeklyMatchups creates the weekly matchup announcement using Block Kit.
func (s *Notifier) formatWeeklyMatchups(week int, assignments []*league.WeeklyAssignment) slack.Message {
	blocks := make([]slack.Block, 0, len(assignments)+2)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("📢 Week %d matchups", week), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(assignments) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "No matchups generated this week.", false, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, a := range assignments {
		text := fmt.Sprintf("*%s vs %s*\n%s vs %s\nMatch ID: `%s`",
			a.TeamA, a.TeamB, s.teamLine(a.TeamA), s.teamLine(a.TeamB), a.MatchID)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject("plain_text", "Captains: propose a match time with /propose.", true, false)))
	return slack.NewBlockMessage(blocks...)
}

// formatForfeitNotice creates the forfeit resolution message.
func (s *Notifier) formatForfeitNotice(matchID, teamA, teamB, reason, winner string) slack.Message {
	blocks := make([]slack.Block, 0, 2)

	headerText := slack.NewTextBlockObject("plain_text", "⚠️ Match forfeited", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	text := fmt.Sprintf("*%s vs %s* (`%s`)\n%s", teamA, teamB, matchID, reason)
	if winner != "" {
		text += fmt.Sprintf("\n%s wins by forfeit.", winner)
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil))
	return slack.NewBlockMessage(blocks...)
}

// formatMatchScheduled creates the message announcing an accepted match time.
func (s *Notifier) formatMatchScheduled(m *league.MatchRecord) slack.Message {
	blocks := make([]slack.Block, 0, 2)

	headerText := slack.NewTextBlockObject("plain_text", "📅 Match scheduled", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	text := fmt.Sprintf("*%s vs %s*\nTime: %s\nMatch ID: `%s`",
		m.TeamA, m.TeamB, m.ScheduledDate, m.MatchID)
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil))
	return slack.NewBlockMessage(blocks...)
}

// formatFinalResult creates the message announcing a confirmed final score.
func (s *Notifier) formatFinalResult(f *league.FinalScore) slack.Message {
	blocks := make([]slack.Block, 0, 4)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Match finished", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var result string
	if f.Winner == "Tie" {
		result = fmt.Sprintf("*%s vs %s* ended in a tie.", f.TeamA, f.TeamB)
	} else {
		loser := f.TeamA
		if f.Winner == f.TeamA {
			loser = f.TeamB
		}
		result = fmt.Sprintf("*%s* defeats *%s*!", f.Winner, loser)
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, result, false, false), nil, nil))

	var mapLines []string
	for i, m := range f.Maps {
		mapLines = append(mapLines, fmt.Sprintf("Map %d (%s): %d - %d", i+1, m.Gamemode, m.ScoreA, m.ScoreB))
	}
	mapLines = append(mapLines, fmt.Sprintf("Total: %d - %d (maps %d - %d)", f.TotalA, f.TotalB, f.MapsWonA, f.MapsWonB))
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, strings.Join(mapLines, "\n"), false, false), nil, nil))

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("Match ID: %s", f.MatchID), true, false)))
	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates the team leaderboard, paged to keep within block limits.
func (s *Notifier) formatLeaderboard(entries []ratings.TeamEntry) []slack.Message {
	pages := make([]slack.Message, 0, 1)
	for start := 0; start < len(entries) || start == 0; start += pageSize {
		end := start + pageSize
		if end > len(entries) {
			end = len(entries)
		}

		blocks := make([]slack.Block, 0, end-start+1)
		title := "🏆 League Leaderboard"
		if len(entries) > pageSize {
			title = fmt.Sprintf("%s (page %d)", title, start/pageSize+1)
		}
		blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", title, true, false)))

		if len(entries) == 0 {
			blocks = append(blocks, slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, "Leaderboard is currently empty.", false, false), nil, nil))
			return []slack.Message{slack.NewBlockMessage(blocks...)}
		}

		var lines []string
		for i, e := range entries[start:end] {
			lines = append(lines, fmt.Sprintf("*#%d* [%s] `%s` — 🎯 %d | ✅ %d ❌ %d 📊 %d",
				start+i+1, ratings.TierFor(e.Rating).Name, e.Team, e.Rating, e.Wins, e.Losses, e.Matches))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, strings.Join(lines, "\n"), false, false), nil, nil))
		pages = append(pages, slack.NewBlockMessage(blocks...))
	}
	return pages
}

// formatPlayerLeaderboard creates the player leaderboard with the tier legend
// on the first page.
func (s *Notifier) formatPlayerLeaderboard(entries []ratings.PlayerEntry) []slack.Message {
	pages := make([]slack.Message, 0, 1)
	for start := 0; start < len(entries) || start == 0; start += pageSize {
		end := start + pageSize
		if end > len(entries) {
			end = len(entries)
		}

		blocks := make([]slack.Block, 0, end-start+2)
		title := "🏆 Player Leaderboard"
		if len(entries) > pageSize {
			title = fmt.Sprintf("%s (page %d)", title, start/pageSize+1)
		}
		blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", title, true, false)))

		if start == 0 {
			var legend []string
			for _, t := range ratings.Tiers {
				if t.Name == "Master" {
					legend = append(legend, fmt.Sprintf("%-8s %d+", t.Name, t.Low))
					continue
				}
				legend = append(legend, fmt.Sprintf("%-8s %d–%d", t.Name, t.Low, t.High))
			}
			blocks = append(blocks, slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, "```"+strings.Join(legend, "\n")+"```", false, false), nil, nil))
		}

		if len(entries) == 0 {
			blocks = append(blocks, slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, "Leaderboard is currently empty.", false, false), nil, nil))
			return []slack.Message{slack.NewBlockMessage(blocks...)}
		}

		var lines []string
		for i, e := range entries[start:end] {
			lines = append(lines, fmt.Sprintf("*#%d* [%s %s] `%s` — 🎯 %d | ✅ %d ❌ %d 📊 %d",
				start+i+1, ratings.TierFor(e.Rating).Name, ratings.DivisionFor(e.Rating), e.Name,
				e.Rating, e.Wins, e.Losses, e.Matches))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, strings.Join(lines, "\n"), false, false), nil, nil))
		pages = append(pages, slack.NewBlockMessage(blocks...))
	}
	return pages
}
