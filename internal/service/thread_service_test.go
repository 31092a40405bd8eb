package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seniorweb/internal/domain"
	"seniorweb/internal/service"
)

func TestListThreadsMatchScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.user(t, "Alice"), f.user(t, "Bob")
	matches := f.matchService(service.NopNotifier{})
	threads := f.threadService()

	_, err := matches.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)

	list, err := threads.ListThreads(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "a one-sided like is invisible to the liked user")

	_, err = matches.Like(ctx, b.ID, a.ID)
	require.NoError(t, err)

	for _, pair := range [][2]*domain.User{{a, b}, {b, a}} {
		list, err := threads.ListThreads(ctx, pair[0].ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		th := list[0]
		assert.Equal(t, pair[1].ID, th.CounterpartID)
		assert.Equal(t, pair[1].DisplayName, th.DisplayName)
		assert.Equal(t, domain.SeedContent, th.LastMessage)
		require.NotNil(t, th.Source)
		assert.Equal(t, domain.SourceMatch, *th.Source)
	}
}

func TestListThreadsPlaceholderWithoutSeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.user(t, "Alice"), f.user(t, "Bob")

	// Mutual edges written directly, as an older deployment without seeding would have left them.
	_, err := f.matches.Upsert(ctx, a.ID, b.ID, true)
	require.NoError(t, err)
	_, err = f.matches.Upsert(ctx, b.ID, a.ID, true)
	require.NoError(t, err)

	list, err := f.threadService().ListThreads(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PreviewNotStarted, list[0].LastMessage)
	assert.Zero(t, list[0].UnreadCount)
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b, c := f.user(t, "Alice"), f.user(t, "Bob"), f.user(t, "Carol")

	_, err := f.matchService(nil).Like(ctx, a.ID, b.ID)
	require.NoError(t, err)

	users, err := service.NewUserService(f.users, 20).Discover(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, c.ID, users[0].ID)
}
