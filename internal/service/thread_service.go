package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"seniorweb/internal/domain"
)

// ThreadService resolves a viewer's conversation list.
type ThreadService struct {
	users    domain.UserRepository
	matches  domain.MatchRepository
	messages domain.MessageRepository
}

func NewThreadService(
	users domain.UserRepository,
	matches domain.MatchRepository,
	messages domain.MessageRepository,
) *ThreadService {
	return &ThreadService{
		users:    users,
		matches:  matches,
		messages: messages,
	}
}

func (s *ThreadService) ListThreads(ctx context.Context, viewerID string) ([]*domain.Thread, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("%w: viewer id is required", domain.ErrInvalidOperation)
	}

	var (
		msgs   []*domain.Message
		mutual []*domain.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		msgs, err = s.messages.ListTouching(gctx, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		mutual, err = s.matches.ListMutual(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load threads: %w", err)
	}

	profiles, err := s.users.GetByIDs(ctx, threadCounterparts(viewerID, msgs, mutual))
	if err != nil {
		return nil, fmt.Errorf("load thread profiles: %w", err)
	}
	return BuildThreads(viewerID, msgs, mutual, profiles), nil
}
