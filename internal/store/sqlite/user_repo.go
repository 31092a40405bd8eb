package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"seniorweb/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

const userColumns = `id, display_name, email, avatar_url, created_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, avatar_url, created_at)
		VALUES (?, ?, ?, ?, `+now+`)
	`, u.ID, u.DisplayName, u.Email, u.AvatarURL); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	created, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	u.CreatedAt = created.CreatedAt
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).Scan(
		&u.ID,
		&u.DisplayName,
		&u.Email,
		&u.AvatarURL,
		&u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	res := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		res[u.ID] = u
	}
	return res, nil
}

func (r *UserRepo) ListCandidates(ctx context.Context, viewerID string, limit int) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE u.id <> ?
		  AND NOT EXISTS (
			SELECT 1 FROM matches m WHERE m.liker_id = ? AND m.liked_id = u.id
		  )
		ORDER BY u.created_at DESC, u.id ASC
		LIMIT ?
	`, viewerID, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]*domain.User, error) {
	defer rows.Close()
	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(
			&u.ID,
			&u.DisplayName,
			&u.Email,
			&u.AvatarURL,
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
