package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"seniorweb/internal/domain"
	"seniorweb/internal/obs"
	"seniorweb/internal/service"
)

func TestLike(t *testing.T) {
	ctx := context.Background()

	t.Run("RepeatedLikeKeepsOneRow", func(t *testing.T) {
		f := newFixture(t)
		a, b := f.user(t, "Alice"), f.user(t, "Bob")
		svc := f.matchService(service.NopNotifier{})

		first, err := svc.Like(ctx, a.ID, b.ID)
		require.NoError(t, err)
		second, err := svc.Like(ctx, a.ID, b.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Match.ID, second.Match.ID)
		assert.Equal(t, first.Match.CreatedAt, second.Match.CreatedAt)
		assert.False(t, second.Mutual)
		assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM matches WHERE liker_id = ? AND liked_id = ?`, a.ID, b.ID))
		assert.Equal(t, 0, f.count(t, `SELECT COUNT(*) FROM messages`))
	})

	t.Run("ReciprocalLikeSeedsOnce", func(t *testing.T) {
		for _, order := range []string{"ab", "ba"} {
			t.Run(order, func(t *testing.T) {
				f := newFixture(t)
				a, b := f.user(t, "Alice"), f.user(t, "Bob")
				first, second := a, b
				if order == "ba" {
					first, second = b, a
				}
				svc := f.matchService(service.NopNotifier{})

				_, err := svc.Like(ctx, first.ID, second.ID)
				require.NoError(t, err)
				res, err := svc.Like(ctx, second.ID, first.ID)
				require.NoError(t, err)

				assert.True(t, res.Mutual)
				assert.True(t, res.NewlyMutual)
				assert.True(t, res.SeedCreated)

				ab, err := f.matches.Find(ctx, a.ID, b.ID)
				require.NoError(t, err)
				ba, err := f.matches.Find(ctx, b.ID, a.ID)
				require.NoError(t, err)
				assert.True(t, ab.IsMutual)
				assert.True(t, ba.IsMutual)

				msgs, err := f.messages.ListBetween(ctx, a.ID, b.ID, 10)
				require.NoError(t, err)
				require.Len(t, msgs, 1)
				assert.Equal(t, domain.SeedContent, msgs[0].Content)
				assert.False(t, msgs[0].Read)
				require.NotNil(t, msgs[0].Source)
				assert.Equal(t, domain.SourceMatch, *msgs[0].Source)
			})
		}
	})

	t.Run("ConcurrentReciprocalLikes", func(t *testing.T) {
		f := newFixture(t)
		svc := f.matchService(service.NopNotifier{})

		for i := 0; i < 20; i++ {
			a, b := f.user(t, "A"), f.user(t, "B")

			var wg sync.WaitGroup
			errs := make([]error, 2)
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, errs[0] = svc.Like(ctx, a.ID, b.ID)
			}()
			go func() {
				defer wg.Done()
				_, errs[1] = svc.Like(ctx, b.ID, a.ID)
			}()
			wg.Wait()
			require.NoError(t, errs[0])
			require.NoError(t, errs[1])

			assert.Equal(t, 2, f.count(t,
				`SELECT COUNT(*) FROM matches
				 WHERE is_mutual = TRUE
				   AND ((liker_id = ? AND liked_id = ?) OR (liker_id = ? AND liked_id = ?))`,
				a.ID, b.ID, b.ID, a.ID), "both edges mutual")
			assert.Equal(t, 1, f.count(t,
				`SELECT COUNT(*) FROM messages WHERE pair_key = ?`, domain.PairKey(a.ID, b.ID)), "exactly one seed")
		}
	})

	t.Run("AlreadyMutualIsIdempotent", func(t *testing.T) {
		f := newFixture(t)
		a, b := f.user(t, "Alice"), f.user(t, "Bob")
		n := new(MockNotifier)
		n.On("MutualMatch", mock.Anything, mock.AnythingOfType("*domain.Match")).Return(nil).Once()
		n.On("MessageCreated", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil).Once()
		svc := f.matchService(n)

		_, err := svc.Like(ctx, a.ID, b.ID)
		require.NoError(t, err)
		first, err := svc.Like(ctx, b.ID, a.ID)
		require.NoError(t, err)
		again, err := svc.Like(ctx, b.ID, a.ID)
		require.NoError(t, err)
		_, err = svc.Like(ctx, a.ID, b.ID)
		require.NoError(t, err)

		assert.True(t, again.Mutual)
		assert.False(t, again.NewlyMutual)
		assert.False(t, again.SeedCreated)
		assert.Equal(t, first.Match.CreatedAt, again.Match.CreatedAt)
		assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM messages`))
		n.AssertExpectations(t)
	})

	t.Run("Rejections", func(t *testing.T) {
		f := newFixture(t)
		a := f.user(t, "Alice")
		svc := f.matchService(service.NopNotifier{})

		_, err := svc.Like(ctx, a.ID, a.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)

		_, err = svc.Like(ctx, "", a.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)

		_, err = svc.Like(ctx, a.ID, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.Equal(t, 0, f.count(t, `SELECT COUNT(*) FROM matches`))
	})

	t.Run("CallerGoneAfterFlipStillNotifies", func(t *testing.T) {
		f := newFixture(t)
		a, b := f.user(t, "Alice"), f.user(t, "Bob")
		reqCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		live := mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil })
		n := new(MockNotifier)
		n.On("MutualMatch", live, mock.Anything).Return(nil).Once()
		n.On("MessageCreated", live, mock.Anything).Return(nil).Once()
		svc := service.NewMatchService(f.users, f.matches, cancelAfterCreate{MessageRepo: f.messages, cancel: cancel}, n, obs.Discard())

		_, err := svc.Like(reqCtx, a.ID, b.ID)
		require.NoError(t, err)
		res, err := svc.Like(reqCtx, b.ID, a.ID)
		require.NoError(t, err)
		assert.True(t, res.SeedCreated)
		n.AssertExpectations(t)
	})

	t.Run("NotifierErrorDoesNotFail", func(t *testing.T) {
		f := newFixture(t)
		a, b := f.user(t, "Alice"), f.user(t, "Bob")
		n := new(MockNotifier)
		n.On("MutualMatch", mock.Anything, mock.Anything).Return(errors.New("bus down"))
		n.On("MessageCreated", mock.Anything, mock.Anything).Return(errors.New("bus down"))
		svc := f.matchService(n)

		_, err := svc.Like(ctx, a.ID, b.ID)
		require.NoError(t, err)
		res, err := svc.Like(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.True(t, res.SeedCreated)
	})
}

func TestListMutual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b, c, d := f.user(t, "Alice"), f.user(t, "Bob"), f.user(t, "Carol"), f.user(t, "Dan")
	svc := f.matchService(service.NopNotifier{})

	for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}, {c.ID, a.ID}, {a.ID, c.ID}, {a.ID, d.ID}} {
		_, err := svc.Like(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	got, err := svc.ListMutual(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	ids := []string{got[0].User.ID, got[1].User.ID}
	assert.ElementsMatch(t, []string{b.ID, c.ID}, ids)
	assert.False(t, got[0].Since.Before(got[1].Since))
}
