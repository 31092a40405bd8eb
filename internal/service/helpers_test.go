package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"seniorweb/internal/domain"
	"seniorweb/internal/obs"
	"seniorweb/internal/service"
	"seniorweb/internal/store/sqlite"
)

type fixture struct {
	db       *sql.DB
	users    *sqlite.UserRepo
	matches  *sqlite.MatchRepo
	messages *sqlite.MessageRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return &fixture{
		db:       db,
		users:    sqlite.NewUserRepo(db),
		matches:  sqlite.NewMatchRepo(db),
		messages: sqlite.NewMessageRepo(db),
	}
}

func (f *fixture) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.NewString(), DisplayName: name}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) matchService(n service.Notifier) *service.MatchService {
	return service.NewMatchService(f.users, f.matches, f.messages, n, obs.Discard())
}

func (f *fixture) messageService(n service.Notifier) *service.MessageService {
	return service.NewMessageService(f.users, f.messages, n, obs.Discard(), 100)
}

func (f *fixture) threadService() *service.ThreadService {
	return service.NewThreadService(f.users, f.matches, f.messages)
}

func (f *fixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(query, args...).Scan(&n))
	return n
}

// MockNotifier records fan-out calls.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) MessageCreated(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockNotifier) ConversationRead(ctx context.Context, readerID, otherID string) error {
	args := m.Called(ctx, readerID, otherID)
	return args.Error(0)
}

func (m *MockNotifier) MutualMatch(ctx context.Context, match *domain.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

// cancelAfterCreate cancels the request context once the insert has
// committed, as a client hanging up mid-request would.
type cancelAfterCreate struct {
	*sqlite.MessageRepo
	cancel context.CancelFunc
}

func (r cancelAfterCreate) Create(ctx context.Context, m *domain.Message) error {
	err := r.MessageRepo.Create(ctx, m)
	r.cancel()
	return err
}

func (r cancelAfterCreate) CreateSeed(ctx context.Context, m *domain.Message) (bool, error) {
	created, err := r.MessageRepo.CreateSeed(ctx, m)
	r.cancel()
	return created, err
}
