//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seniorweb/internal/domain"
)

// Run with: POSTGRES_TEST_DSN=postgres://... go test -tags integration ./internal/store/postgres/
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func createUsers(t *testing.T, users *UserRepo, names ...string) []*domain.User {
	t.Helper()
	res := make([]*domain.User, 0, len(names))
	for _, name := range names {
		u := &domain.User{ID: uuid.NewString(), DisplayName: name}
		require.NoError(t, users.Create(context.Background(), u))
		res = append(res, u)
	}
	return res
}

func seedFor(a, b string) *domain.Message {
	source := domain.SourceMatch
	return &domain.Message{SenderID: a, ReceiverID: b, Content: domain.SeedContent, Source: &source}
}

func TestUserRepoGetByIDs(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	ctx := context.Background()
	created := createUsers(t, users, "Alice", "Bob")

	got, err := users.GetByIDs(ctx, []string{created[0].ID, created[1].ID, uuid.NewString()})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[created[0].ID].DisplayName)
	assert.Equal(t, "Bob", got[created[1].ID].DisplayName)

	empty, err := users.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMatchRepoUpsertAndFlip(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	matches := NewMatchRepo(db)
	ctx := context.Background()
	u := createUsers(t, users, "Alice", "Bob")
	a, b := u[0].ID, u[1].ID

	first, err := matches.Upsert(ctx, a, b, false)
	require.NoError(t, err)
	_, err = matches.Upsert(ctx, b, a, false)
	require.NoError(t, err)

	n, err := matches.MarkMutual(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = matches.MarkMutual(ctx, b, a)
	require.NoError(t, err)
	assert.Zero(t, n)

	again, err := matches.Upsert(ctx, a, b, false)
	require.NoError(t, err)
	assert.True(t, again.IsMutual, "upsert must not downgrade")
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, first.CreatedAt.Equal(again.CreatedAt))

	mutual, err := matches.ListMutual(ctx, a)
	require.NoError(t, err)
	assert.Len(t, mutual, 2)
}

func TestMessageRepoCreateSeed(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	messages := NewMessageRepo(db)
	ctx := context.Background()

	t.Run("OncePerPairUnderRace", func(t *testing.T) {
		u := createUsers(t, users, "Alice", "Bob")
		a, b := u[0].ID, u[1].ID

		var wg sync.WaitGroup
		created := make([]bool, 10)
		for i := range created {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				from, to := a, b
				if i%2 == 1 {
					from, to = b, a
				}
				ok, err := messages.CreateSeed(ctx, seedFor(from, to))
				assert.NoError(t, err)
				created[i] = ok
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, ok := range created {
			if ok {
				wins++
			}
		}
		assert.Equal(t, 1, wins)

		history, err := messages.ListBetween(ctx, a, b, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.SeedContent, history[0].Content)
		require.NotNil(t, history[0].Source)
		assert.Equal(t, domain.SourceMatch, *history[0].Source)
	})

	t.Run("SkippedWhenPairAlreadyTalked", func(t *testing.T) {
		u := createUsers(t, users, "Carol", "Dave")
		c, d := u[0].ID, u[1].ID
		require.NoError(t, messages.Create(ctx, &domain.Message{SenderID: c, ReceiverID: d, Content: "hi"}))

		ok, err := messages.CreateSeed(ctx, seedFor(d, c))
		require.NoError(t, err)
		assert.False(t, ok)

		history, err := messages.ListBetween(ctx, c, d, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "hi", history[0].Content)
		assert.Nil(t, history[0].Source)
	})

	t.Run("MarkReadAndCount", func(t *testing.T) {
		u := createUsers(t, users, "Erin", "Frank")
		e, f := u[0].ID, u[1].ID
		require.NoError(t, messages.Create(ctx, &domain.Message{SenderID: e, ReceiverID: f, Content: "one"}))
		require.NoError(t, messages.Create(ctx, &domain.Message{SenderID: e, ReceiverID: f, Content: "two"}))

		unread, err := messages.CountUnread(ctx, f, e)
		require.NoError(t, err)
		assert.Equal(t, 2, unread)

		n, err := messages.MarkRead(ctx, f, e)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		unread, err = messages.CountUnread(ctx, f, e)
		require.NoError(t, err)
		assert.Zero(t, unread)
	})
}
