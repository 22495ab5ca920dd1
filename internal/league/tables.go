package league

// Table names and headers. The headers mirror the live spreadsheet layout the
// league ran on, so an export of the old sheet loads without translation.
const (
	TablePlayers        = "Players"
	TableTeams          = "Teams"
	TableMatches        = "Matches"
	TableScoring        = "Scoring"
	TableProposed       = "Match Proposed"
	TableProposedScores = "Proposed Scores"
	TableScheduled      = "Match Scheduled"
	TableWeekly         = "Weekly Matches"
	TableChallenges     = "Challenge Matches"
	TableBanned         = "Banned"
	TableHistory        = "Match History"
	TableLeagueWeek     = "LeagueWeek"
)

var tableHeaders = map[string][]string{
	TablePlayers: {"User ID", "Username", "Role", "Timezone"},
	TableTeams:   {"Team Name", "Player 1", "Player 2", "Player 3", "Player 4", "Player 5", "Player 6", "Status"},
	TableMatches: {"Match ID", "Team A", "Team B", "Proposed Date", "Scheduled Date", "Status", "Winner", "Loser", "Proposed By"},
	TableScoring: {
		"Match ID", "Team A", "Team B",
		"Map 1 Mode", "Map 1 A", "Map 1 B",
		"Map 2 Mode", "Map 2 A", "Map 2 B",
		"Map 3 Mode", "Map 3 A", "Map 3 B",
		"Total A", "Total B", "Maps Won A", "Maps Won B", "Winner",
	},
	TableProposed:       {"Match ID", "Team A", "Team B", "Proposer ID", "Proposed Time", "Match Type", "Week", "Channel ID", "Message ID"},
	TableProposedScores: {"Match ID", "Team A", "Team B", "Proposer ID", "Proposed At", "Maps", "Sub A", "Sub B", "Channel ID", "Message ID"},
	TableScheduled:      {"Match ID", "Team A", "Team B", "Scheduled Date"},
	TableWeekly:         {"Week", "Team A", "Team B", "Match ID", "Scheduled Date"},
	TableChallenges:     {"Week", "Match ID", "Team A", "Team B", "Proposer ID", "Proposed Date", "Completion Date", "Status"},
	TableBanned:         {"User ID", "Username", "Reason", "Banned By", "Date"},
	TableHistory: {
		"Week", "Match ID", "Team A", "Team B", "Proposed Date", "Scheduled Date",
		"Map 1 Mode", "Map 1 A", "Map 1 B",
		"Map 2 Mode", "Map 2 A", "Map 2 B",
		"Map 3 Mode", "Map 3 A", "Map 3 B",
		"Total A", "Total B", "Maps Won A", "Maps Won B", "Winner", "Notes",
	},
	TableLeagueWeek: {"League Week"},
}

// maxRosterSize is the number of roster slot columns on the Teams table.
const maxRosterSize = 6
