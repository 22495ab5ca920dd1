package league

import "errors"

// Expected validation outcomes are sentinel errors so callers can branch with
// errors.Is and render a user-facing message. Anything else bubbling out of
// the store is an unexpected I/O failure and is logged at the action boundary.
var (
	// ErrDuplicateProposal means a live proposal already exists for the
	// unordered team pair (or, for scores, the match).
	ErrDuplicateProposal = errors.New("a proposal between these teams already exists")
	// ErrInvalidWindow means the proposed time is in the past or outside the
	// configured season window.
	ErrInvalidWindow = errors.New("proposed time is outside the season window")
	// ErrTiebreakRequired means a two-map score proposal is split 1-1 and a
	// third map is mandatory.
	ErrTiebreakRequired = errors.New("a third map is required to break the 1-1 tie")
	// ErrUnauthorized means the actor is not the designated responder's
	// captain or co-captain.
	ErrUnauthorized = errors.New("only the opposing captain or co-captain may respond")
	// ErrNotFound means a referenced proposal, match, team or player row is
	// absent.
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable wraps transient persistence failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrMalformedRecord marks a durable row that failed to parse. Batch
	// operations skip such rows with a warning rather than aborting.
	ErrMalformedRecord = errors.New("malformed record")
)
