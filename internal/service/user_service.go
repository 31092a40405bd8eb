package service

import (
	"context"
	"fmt"

	"seniorweb/internal/domain"
)

// UserService provides read access to profiles.
type UserService struct {
	users domain.UserRepository

	DiscoveryLimit int
}

func NewUserService(users domain.UserRepository, discoveryLimit int) *UserService {
	return &UserService{users: users, DiscoveryLimit: discoveryLimit}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Discover lists users the viewer has not liked yet, newest first.
func (s *UserService) Discover(ctx context.Context, viewerID string) ([]*domain.User, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("%w: viewer id is required", domain.ErrInvalidOperation)
	}
	limit := s.DiscoveryLimit
	if limit <= 0 {
		limit = 20
	}
	users, err := s.users.ListCandidates(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}
