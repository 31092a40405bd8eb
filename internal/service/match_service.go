package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"seniorweb/internal/domain"
)

// MatchService turns likes into mutual matches and seeds the first message
// of a newly matched pair.
type MatchService struct {
	users    domain.UserRepository
	matches  domain.MatchRepository
	messages domain.MessageRepository
	notifier Notifier
	log      *slog.Logger
}

func NewMatchService(
	users domain.UserRepository,
	matches domain.MatchRepository,
	messages domain.MessageRepository,
	notifier Notifier,
	log *slog.Logger,
) *MatchService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MatchService{
		users:    users,
		matches:  matches,
		messages: messages,
		notifier: notifier,
		log:      log,
	}
}

// MatchResult is the outcome of a like.
type MatchResult struct {
	Match *domain.Match `json:"match"`
	// Mutual is true when the reverse edge exists.
	Mutual bool `json:"mutual"`
	// NewlyMutual is true only for the call that flipped the pair.
	NewlyMutual bool `json:"newlyMutual"`
	SeedCreated bool `json:"seedCreated"`
}

// Like records likerID's interest in likedID. The forward edge is written
// before the reverse edge is read, so of two concurrent reciprocal likes at
// least one observes the other and performs the flip.
func (s *MatchService) Like(ctx context.Context, likerID, likedID string) (*MatchResult, error) {
	likerID, likedID = strings.TrimSpace(likerID), strings.TrimSpace(likedID)
	if likerID == "" || likedID == "" {
		return nil, fmt.Errorf("%w: liker and liked ids are required", domain.ErrInvalidOperation)
	}
	if likerID == likedID {
		return nil, fmt.Errorf("%w: cannot like yourself", domain.ErrInvalidOperation)
	}
	if _, err := s.users.GetByID(ctx, likedID); err != nil {
		return nil, fmt.Errorf("get liked user: %w", err)
	}

	forward, err := s.matches.Upsert(ctx, likerID, likedID, false)
	if err != nil {
		return nil, err
	}
	res := &MatchResult{Match: forward, Mutual: forward.IsMutual}

	if _, err := s.matches.Find(ctx, likedID, likerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return res, nil
		}
		return nil, fmt.Errorf("find reverse match: %w", err)
	}

	flipped, err := s.matches.MarkMutual(ctx, likerID, likedID)
	if err != nil {
		return nil, err
	}
	forward.IsMutual = true
	res.Mutual = true
	res.NewlyMutual = flipped > 0

	source := domain.SourceMatch
	seed := &domain.Message{
		SenderID:   likerID,
		ReceiverID: likedID,
		Content:    domain.SeedContent,
		Source:     &source,
	}
	created, err := s.messages.CreateSeed(ctx, seed)
	if err != nil {
		return nil, err
	}
	res.SeedCreated = created

	// The rows are committed; fan-out must not depend on the caller staying.
	notifyCtx := context.WithoutCancel(ctx)
	if res.NewlyMutual {
		logNotifyErr(s.log, "mutual-match", s.notifier.MutualMatch(notifyCtx, forward))
	}
	if created {
		logNotifyErr(s.log, "message-created", s.notifier.MessageCreated(notifyCtx, seed))
	}
	return res, nil
}

// MatchedUser is a mutual counterpart with the time the pair first connected.
type MatchedUser struct {
	User  *domain.User `json:"user"`
	Since time.Time    `json:"since"`
}

// ListMutual returns every mutual counterpart of userID once, newest first.
func (s *MatchService) ListMutual(ctx context.Context, userID string) ([]*MatchedUser, error) {
	edges, err := s.matches.ListMutual(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := make(map[string]time.Time, len(edges))
	for _, e := range edges {
		other := e.Counterpart(userID)
		if t, ok := since[other]; !ok || e.CreatedAt.Before(t) {
			since[other] = e.CreatedAt
		}
	}
	ids := make([]string, 0, len(since))
	for id := range since {
		ids = append(ids, id)
	}

	profiles, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]*MatchedUser, 0, len(ids))
	for _, id := range ids {
		u, ok := profiles[id]
		if !ok {
			continue
		}
		res = append(res, &MatchedUser{User: u, Since: since[id]})
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Since.Equal(res[j].Since) {
			return res[i].Since.After(res[j].Since)
		}
		return res[i].User.ID < res[j].User.ID
	})
	return res, nil
}
