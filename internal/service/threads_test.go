package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seniorweb/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func msg(id int64, from, to string, at time.Duration, content string) *domain.Message {
	return &domain.Message{ID: id, SenderID: from, ReceiverID: to, Content: content, CreatedAt: t0.Add(at)}
}

func mutualEdge(liker, liked string, at time.Duration) *domain.Match {
	return &domain.Match{LikerID: liker, LikedID: liked, IsMutual: true, CreatedAt: t0.Add(at)}
}

func TestBuildThreads(t *testing.T) {
	activity := domain.SourceActivityCard
	profiles := map[string]*domain.User{
		"bob":   {ID: "bob", DisplayName: "Bob"},
		"carol": {ID: "carol", DisplayName: "Carol"},
		"dan":   {ID: "dan", DisplayName: "Dan"},
	}

	t.Run("FoldsLatestMessagePerCounterpart", func(t *testing.T) {
		late := msg(3, "me", "bob", 3*time.Minute, "see you")
		late.Source = &activity
		msgs := []*domain.Message{
			msg(1, "bob", "me", time.Minute, "hi"),
			msg(2, "bob", "me", 2*time.Minute, "there"),
			late,
		}

		threads := BuildThreads("me", msgs, nil, profiles)
		require.Len(t, threads, 1)
		th := threads[0]
		assert.Equal(t, "bob", th.CounterpartID)
		assert.Equal(t, "Bob", th.DisplayName)
		assert.Equal(t, "see you", th.LastMessage)
		assert.Equal(t, t0.Add(3*time.Minute), th.LastTimestamp)
		assert.Equal(t, 2, th.UnreadCount)
		require.NotNil(t, th.Source)
		assert.Equal(t, domain.SourceActivityCard, *th.Source)
	})

	t.Run("LaterNullSourceOverrides", func(t *testing.T) {
		first := msg(1, "bob", "me", time.Minute, "hi")
		first.Source = &activity
		threads := BuildThreads("me", []*domain.Message{first, msg(2, "me", "bob", 2*time.Minute, "yo")}, nil, profiles)
		require.Len(t, threads, 1)
		assert.Nil(t, threads[0].Source)
	})

	t.Run("SameTimestampUsesInsertionOrder", func(t *testing.T) {
		msgs := []*domain.Message{
			msg(8, "bob", "me", time.Minute, "second"),
			msg(7, "me", "bob", time.Minute, "first"),
		}
		threads := BuildThreads("me", msgs, nil, profiles)
		require.Len(t, threads, 1)
		assert.Equal(t, "second", threads[0].LastMessage)
	})

	t.Run("ReadAndOutboundMessagesNotCounted", func(t *testing.T) {
		read := msg(1, "bob", "me", time.Minute, "old")
		read.Read = true
		threads := BuildThreads("me", []*domain.Message{read, msg(2, "me", "bob", 2*time.Minute, "mine")}, nil, profiles)
		require.Len(t, threads, 1)
		assert.Zero(t, threads[0].UnreadCount)
	})

	t.Run("MessageThreadWinsOverMatch", func(t *testing.T) {
		msgs := []*domain.Message{msg(1, "bob", "me", time.Minute, "hello")}
		mutual := []*domain.Match{mutualEdge("me", "bob", 10*time.Minute), mutualEdge("bob", "me", 9*time.Minute)}

		threads := BuildThreads("me", msgs, mutual, profiles)
		require.Len(t, threads, 1)
		assert.Equal(t, "hello", threads[0].LastMessage)
		assert.Equal(t, t0.Add(time.Minute), threads[0].LastTimestamp)
	})

	t.Run("PlaceholderForSilentMatch", func(t *testing.T) {
		mutual := []*domain.Match{mutualEdge("carol", "me", 4*time.Minute), mutualEdge("me", "carol", 5*time.Minute)}

		threads := BuildThreads("me", nil, mutual, profiles)
		require.Len(t, threads, 1)
		th := threads[0]
		assert.Equal(t, "carol", th.CounterpartID)
		assert.Equal(t, domain.PreviewNotStarted, th.LastMessage)
		assert.Equal(t, t0.Add(5*time.Minute), th.LastTimestamp)
		assert.Zero(t, th.UnreadCount)
		require.NotNil(t, th.Source)
		assert.Equal(t, domain.SourceMatch, *th.Source)
	})

	t.Run("NonMutualEdgeIgnored", func(t *testing.T) {
		edge := mutualEdge("dan", "me", time.Minute)
		edge.IsMutual = false
		assert.Empty(t, BuildThreads("me", nil, []*domain.Match{edge}, profiles))
	})

	t.Run("OrderedNewestFirstWithIDTieBreak", func(t *testing.T) {
		msgs := []*domain.Message{
			msg(1, "bob", "me", time.Minute, "a"),
			msg(2, "dan", "me", 3*time.Minute, "b"),
		}
		mutual := []*domain.Match{mutualEdge("me", "carol", 3*time.Minute)}

		threads := BuildThreads("me", msgs, mutual, profiles)
		require.Len(t, threads, 3)
		assert.Equal(t, []string{"carol", "dan", "bob"},
			[]string{threads[0].CounterpartID, threads[1].CounterpartID, threads[2].CounterpartID})
		for i := 1; i < len(threads); i++ {
			assert.False(t, threads[i-1].LastTimestamp.Before(threads[i].LastTimestamp))
		}
	})

	t.Run("AttachmentPreview", func(t *testing.T) {
		img := "https://cdn/x.jpg"
		m := msg(1, "bob", "me", time.Minute, "")
		m.ImageURL = &img
		threads := BuildThreads("me", []*domain.Message{m}, nil, profiles)
		require.Len(t, threads, 1)
		assert.Equal(t, domain.PreviewPhoto, threads[0].LastMessage)
	})

	t.Run("NoDuplicateCounterparts", func(t *testing.T) {
		msgs := []*domain.Message{
			msg(1, "bob", "me", time.Minute, "a"),
			msg(2, "me", "bob", 2*time.Minute, "b"),
			msg(3, "carol", "me", 3*time.Minute, "c"),
			msg(4, "bob", "carol", 4*time.Minute, "not mine"),
		}
		mutual := []*domain.Match{
			mutualEdge("me", "bob", 0), mutualEdge("bob", "me", 0),
			mutualEdge("me", "dan", 0), mutualEdge("dan", "me", 0),
		}
		threads := BuildThreads("me", msgs, mutual, profiles)

		seen := map[string]bool{}
		for _, th := range threads {
			assert.False(t, seen[th.CounterpartID], "duplicate %s", th.CounterpartID)
			seen[th.CounterpartID] = true
		}
		assert.Len(t, threads, 3)
	})
}

func TestThreadCounterparts(t *testing.T) {
	msgs := []*domain.Message{msg(1, "bob", "me", 0, "x"), msg(2, "me", "bob", 0, "y")}
	mutual := []*domain.Match{mutualEdge("carol", "me", 0), mutualEdge("me", "carol", 0)}
	assert.Equal(t, []string{"bob", "carol"}, threadCounterparts("me", msgs, mutual))
}
