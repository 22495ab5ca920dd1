package slack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/league-engine/internal/league"
	"github.com/slack-go/slack"
)

// slackAPI is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackAPI interface {
	GetUserGroupMembersContext(ctx context.Context, userGroup string, opts ...slack.GetUserGroupMembersOption) ([]string, error)
}

// memberTTL bounds how stale a cached usergroup member list may get.
const memberTTL = 5 * time.Minute

var _ league.RoleChecker = &RoleChecker{}

// RoleChecker answers role membership questions from Slack usergroups. The
// co-captain authorization role is a usergroup ID. Member lists are cached
// briefly so a burst of button clicks does not hammer the API.
type RoleChecker struct {
	api   slackAPI
	clock clockwork.Clock

	mu    sync.Mutex
	cache map[string]cachedMembers
}

type cachedMembers struct {
	members   map[string]bool
	fetchedAt time.Time
}

// NewRoleChecker creates a RoleChecker backed by the Slack API.
func NewRoleChecker(token string, clock clockwork.Clock) *RoleChecker {
	return NewRoleCheckerWithAPI(slack.New(token), clock)
}

// NewRoleCheckerWithAPI creates a RoleChecker with a specific API client.
// Useful for tests that need to intercept API calls.
func NewRoleCheckerWithAPI(api slackAPI, clock clockwork.Clock) *RoleChecker {
	return &RoleChecker{
		api:   api,
		clock: clock,
		cache: make(map[string]cachedMembers),
	}
}

func (r *RoleChecker) HasRole(userID, roleID string) (bool, error) {
	if roleID == "" {
		return false, nil
	}

	r.mu.Lock()
	entry, ok := r.cache[roleID]
	r.mu.Unlock()
	if ok && r.clock.Since(entry.fetchedAt) < memberTTL {
		return entry.members[userID], nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ids, err := r.api.GetUserGroupMembersContext(ctx, roleID)
	if err != nil {
		// Serve stale members over failing the authorization check outright.
		if ok {
			log.Warn("Usergroup fetch failed, using cached members", "error", err, "roleID", roleID)
			return entry.members[userID], nil
		}
		return false, fmt.Errorf("failed to fetch usergroup members: %w", err)
	}

	members := make(map[string]bool, len(ids))
	for _, id := range ids {
		members[id] = true
	}
	r.mu.Lock()
	r.cache[roleID] = cachedMembers{members: members, fetchedAt: r.clock.Now()}
	r.mu.Unlock()

	return members[userID], nil
}
