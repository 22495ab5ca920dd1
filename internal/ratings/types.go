package ratings

// Table names and headers for the two rating ledgers.
const (
	TableLeaderboard       = "Leaderboard"
	TablePlayerLeaderboard = "Player Leaderboard"
)

var (
	leaderboardHeader       = []string{"Team Name", "Rating", "Wins", "Losses", "Matches Played"}
	playerLeaderboardHeader = []string{"Username", "User ID", "Rating", "Wins", "Losses", "Matches Played"}
)

// TeamEntry is one row of the team leaderboard.
type TeamEntry struct {
	Team    string
	Rating  int
	Wins    int
	Losses  int
	Matches int

	pos int64
}

// PlayerEntry is one row of the player leaderboard.
type PlayerEntry struct {
	Name    string
	UserID  string
	Rating  int
	Wins    int
	Losses  int
	Matches int

	pos int64
}

// Tier is a named rating band. Bands are contiguous and cover all ratings.
type Tier struct {
	Name string
	Low  int
	High int
}

// Tiers lists the rating bands from strongest to weakest. The same bands
// drive matchmaking buckets and leaderboard labels.
var Tiers = []Tier{
	{Name: "Master", Low: 1450, High: 1<<31 - 1},
	{Name: "Diamond", Low: 1250, High: 1449},
	{Name: "Platinum", Low: 1050, High: 1249},
	{Name: "Gold", Low: 900, High: 1049},
	{Name: "Silver", Low: 750, High: 899},
	{Name: "Bronze", Low: 0, High: 749},
}

// TierFor returns the band a rating falls in.
func TierFor(rating int) Tier {
	for _, t := range Tiers {
		if rating >= t.Low && rating <= t.High {
			return t
		}
	}
	return Tiers[len(Tiers)-1]
}

// DivisionFor splits a band into four divisions, I (bottom) through IV
// (top), for player leaderboard labels.
func DivisionFor(rating int) string {
	t := TierFor(rating)
	high := t.High
	if t.Name == "Master" {
		high = 1600
	}
	if rating >= high {
		return "IV"
	}
	span := high - t.Low + 1
	switch q := (rating - t.Low) * 4 / span; q {
	case 0:
		return "I"
	case 1:
		return "II"
	case 2:
		return "III"
	default:
		return "IV"
	}
}
