package prompt

import "github.com/mauv0809/league-engine/internal/league"

// Kind identifies which protocol a prompt belongs to. It is encoded into the
// button action IDs so interaction callbacks can be routed back.
type Kind string

const (
	KindMatchTime Kind = "match_time"
	KindScore     Kind = "score"
)

// Action IDs carried on prompt buttons, suffixed onto the Kind.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// Prompter presents interactive accept/decline prompts and manages their
// lifecycle. Present returns a durable ref so a prompt posted before a crash
// can still be settled or removed after a restart.
type Prompter interface {
	// Present posts a prompt with Accept and Decline buttons. The matchID is
	// carried in the button values.
	Present(kind Kind, matchID, text string) (league.PromptRef, error)
	// Settle replaces the prompt's buttons with a final outcome line.
	Settle(ref league.PromptRef, text string) error
	// Remove deletes the prompt message. Removing an already-deleted prompt
	// is not an error.
	Remove(ref league.PromptRef) error
	// Exists reports whether the prompt message is still present at its
	// location. Used on startup to detect orphaned proposal rows.
	Exists(ref league.PromptRef) (bool, error)
}
