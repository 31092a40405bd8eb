package service

import (
	"sort"

	"seniorweb/internal/domain"
)

type threadFold struct {
	last   *domain.Message
	unread int
}

// BuildThreads derives the viewer's conversation list from every message
// touching the viewer, the viewer's mutual matches and the counterpart
// profiles. It keeps no state: the same inputs always give the same list.
//
// One thread exists per counterpart. A counterpart with at least one message
// is described by its latest message; a mutual match without messages yields
// a placeholder. The result is ordered by last activity, newest first, with
// counterpart id as the tie-break.
func BuildThreads(
	viewerID string,
	msgs []*domain.Message,
	mutual []*domain.Match,
	profiles map[string]*domain.User,
) []*domain.Thread {
	folds := make(map[string]*threadFold)
	for _, m := range msgs {
		if !m.Touches(viewerID) {
			continue
		}
		other := m.Counterpart(viewerID)
		if other == viewerID {
			continue
		}
		f, ok := folds[other]
		if !ok {
			f = &threadFold{}
			folds[other] = f
		}
		if f.last == nil || f.last.Before(m) {
			f.last = m
		}
		if m.ReceiverID == viewerID && !m.Read {
			f.unread++
		}
	}

	threads := make([]*domain.Thread, 0, len(folds))
	for other, f := range folds {
		threads = append(threads, &domain.Thread{
			CounterpartID: other,
			LastMessage:   f.last.Preview(),
			LastTimestamp: f.last.CreatedAt,
			UnreadCount:   f.unread,
			Source:        f.last.Source,
		})
	}

	placeholders := make(map[string]*domain.Thread)
	for _, mt := range mutual {
		if !mt.IsMutual {
			continue
		}
		other := mt.Counterpart(viewerID)
		if other == viewerID {
			continue
		}
		if _, ok := folds[other]; ok {
			continue
		}
		if p, ok := placeholders[other]; ok {
			if mt.CreatedAt.After(p.LastTimestamp) {
				p.LastTimestamp = mt.CreatedAt
			}
			continue
		}
		source := domain.SourceMatch
		p := &domain.Thread{
			CounterpartID: other,
			LastMessage:   domain.PreviewNotStarted,
			LastTimestamp: mt.CreatedAt,
			Source:        &source,
		}
		placeholders[other] = p
		threads = append(threads, p)
	}

	for _, t := range threads {
		if u, ok := profiles[t.CounterpartID]; ok {
			t.DisplayName = u.DisplayName
			t.Email = u.Email
			t.AvatarURL = u.AvatarURL
		}
	}

	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].LastTimestamp.Equal(threads[j].LastTimestamp) {
			return threads[i].LastTimestamp.After(threads[j].LastTimestamp)
		}
		return threads[i].CounterpartID < threads[j].CounterpartID
	})
	return threads
}

// threadCounterparts lists the distinct counterpart ids BuildThreads will
// need profiles for.
func threadCounterparts(viewerID string, msgs []*domain.Message, mutual []*domain.Match) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == viewerID {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, m := range msgs {
		if m.Touches(viewerID) {
			add(m.Counterpart(viewerID))
		}
	}
	for _, mt := range mutual {
		if mt.IsMutual {
			add(mt.Counterpart(viewerID))
		}
	}
	return ids
}
