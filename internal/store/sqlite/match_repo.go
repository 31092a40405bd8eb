package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"seniorweb/internal/domain"
)

type MatchRepo struct {
	db *sql.DB
}

func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

var _ domain.MatchRepository = (*MatchRepo)(nil)

const matchColumns = `id, liker_id, liked_id, is_mutual, created_at`

func (r *MatchRepo) Find(ctx context.Context, likerID, likedID string) (*domain.Match, error) {
	m := &domain.Match{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE liker_id = ? AND liked_id = ?
	`, likerID, likedID).Scan(&m.ID, &m.LikerID, &m.LikedID, &m.IsMutual, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	return m, nil
}

func (r *MatchRepo) Upsert(ctx context.Context, likerID, likedID string, isMutual bool) (*domain.Match, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (liker_id, liked_id, is_mutual, created_at)
		VALUES (?, ?, ?, `+now+`)
		ON CONFLICT (liker_id, liked_id)
		DO UPDATE SET is_mutual = matches.is_mutual OR excluded.is_mutual
	`, likerID, likedID, isMutual); err != nil {
		return nil, fmt.Errorf("upsert match: %w", err)
	}
	return r.Find(ctx, likerID, likedID)
}

func (r *MatchRepo) MarkMutual(ctx context.Context, a, b string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE matches SET is_mutual = TRUE
		WHERE is_mutual = FALSE
		  AND ((liker_id = ? AND liked_id = ?) OR (liker_id = ? AND liked_id = ?))
	`, a, b, b, a)
	if err != nil {
		return 0, fmt.Errorf("mark mutual: %w", err)
	}
	return res.RowsAffected()
}

func (r *MatchRepo) ListMutual(ctx context.Context, userID string) ([]*domain.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE is_mutual = TRUE AND (liker_id = ? OR liked_id = ?)
		ORDER BY created_at DESC, id DESC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list mutual matches: %w", err)
	}
	defer rows.Close()

	var res []*domain.Match
	for rows.Next() {
		m := &domain.Match{}
		if err := rows.Scan(&m.ID, &m.LikerID, &m.LikedID, &m.IsMutual, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
