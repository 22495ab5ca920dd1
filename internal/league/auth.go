package league

import "fmt"

// RoleChecker answers whether a user carries a platform role. Roles live on
// the chat platform, not in the store.
type RoleChecker interface {
	HasRole(userID, roleID string) (bool, error)
}

// AuthorizeResponder enforces the response rule shared by both proposal
// protocols: the actor must belong to the opposing team and be its captain,
// or its co-captain (slot 1) carrying the co-captain role. The proposer can
// never respond to their own proposal.
func AuthorizeResponder(opposing *Team, proposerID, actorID, coCaptainRoleID string, roles RoleChecker) error {
	if actorID == proposerID {
		return fmt.Errorf("proposer cannot respond to their own proposal: %w", ErrUnauthorized)
	}
	captain, ok := opposing.Captain()
	if ok && captain.UserID == actorID {
		return nil
	}
	co, ok := opposing.CoCaptain()
	if ok && co.UserID == actorID && coCaptainRoleID != "" && roles != nil {
		hasRole, err := roles.HasRole(actorID, coCaptainRoleID)
		if err != nil {
			return fmt.Errorf("failed to check co-captain role: %w", err)
		}
		if hasRole {
			return nil
		}
	}
	return fmt.Errorf("user %s may not respond for team %s: %w", actorID, opposing.Name, ErrUnauthorized)
}
