package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSlackAPI struct {
	getUserGroupMembersContextFunc func(ctx context.Context, userGroup string) ([]string, error)
	calls                          int
}

func (m *mockSlackAPI) GetUserGroupMembersContext(ctx context.Context, userGroup string, opts ...slackapi.GetUserGroupMembersOption) ([]string, error) {
	m.calls++
	if m.getUserGroupMembersContextFunc != nil {
		return m.getUserGroupMembersContextFunc(ctx, userGroup)
	}
	return nil, nil
}

func TestHasRole(t *testing.T) {
	t.Run("member of the usergroup has the role", func(t *testing.T) {
		api := &mockSlackAPI{
			getUserGroupMembersContextFunc: func(ctx context.Context, userGroup string) ([]string, error) {
				assert.Equal(t, "S123", userGroup)
				return []string{"U1", "U2"}, nil
			},
		}
		r := NewRoleCheckerWithAPI(api, clockwork.NewFakeClock())

		ok, err := r.HasRole("U1", "S123")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.HasRole("U9", "S123")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty role ID never matches", func(t *testing.T) {
		r := NewRoleCheckerWithAPI(&mockSlackAPI{}, clockwork.NewFakeClock())
		ok, err := r.HasRole("U1", "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("members are cached within the TTL", func(t *testing.T) {
		api := &mockSlackAPI{
			getUserGroupMembersContextFunc: func(ctx context.Context, userGroup string) ([]string, error) {
				return []string{"U1"}, nil
			},
		}
		clock := clockwork.NewFakeClock()
		r := NewRoleCheckerWithAPI(api, clock)

		_, err := r.HasRole("U1", "S123")
		require.NoError(t, err)
		_, err = r.HasRole("U2", "S123")
		require.NoError(t, err)
		assert.Equal(t, 1, api.calls)

		clock.Advance(memberTTL + time.Second)
		_, err = r.HasRole("U1", "S123")
		require.NoError(t, err)
		assert.Equal(t, 2, api.calls)
	})

	t.Run("stale cache is served when the API fails", func(t *testing.T) {
		failing := false
		api := &mockSlackAPI{
			getUserGroupMembersContextFunc: func(ctx context.Context, userGroup string) ([]string, error) {
				if failing {
					return nil, errors.New("slack API is down")
				}
				return []string{"U1"}, nil
			},
		}
		clock := clockwork.NewFakeClock()
		r := NewRoleCheckerWithAPI(api, clock)

		_, err := r.HasRole("U1", "S123")
		require.NoError(t, err)

		failing = true
		clock.Advance(memberTTL + time.Second)
		ok, err := r.HasRole("U1", "S123")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("API failure with no cache is an error", func(t *testing.T) {
		api := &mockSlackAPI{
			getUserGroupMembersContextFunc: func(ctx context.Context, userGroup string) ([]string, error) {
				return nil, errors.New("slack API is down")
			},
		}
		r := NewRoleCheckerWithAPI(api, clockwork.NewFakeClock())
		_, err := r.HasRole("U1", "S123")
		assert.Error(t, err)
	})
}
