package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"seniorweb/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

const messageColumns = `id, sender_id, receiver_id, content, image_url, audio_url, is_read, source, created_at`

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, pair_key, content, image_url, audio_url, is_read, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, FALSE, ?, `+now+`)
	`,
		m.SenderID,
		m.ReceiverID,
		domain.PairKey(m.SenderID, m.ReceiverID),
		m.Content,
		m.ImageURL,
		m.AudioURL,
		sourceArg(m.Source),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return r.reload(ctx, id, m)
}

func (r *MessageRepo) CreateSeed(ctx context.Context, m *domain.Message) (bool, error) {
	pair := domain.PairKey(m.SenderID, m.ReceiverID)
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages (sender_id, receiver_id, pair_key, content, is_read, source, seed_key, created_at)
		SELECT ?, ?, ?, ?, FALSE, ?, ?, `+now+`
		WHERE NOT EXISTS (SELECT 1 FROM messages WHERE pair_key = ?)
	`, m.SenderID, m.ReceiverID, pair, m.Content, sourceArg(m.Source), pair, pair)
	if err != nil {
		return false, fmt.Errorf("insert seed message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("last insert id: %w", err)
	}
	return true, r.reload(ctx, id, m)
}

func (r *MessageRepo) ListBetween(ctx context.Context, a, b string, limit int) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE pair_key = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, domain.PairKey(a, b), limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	// Reverse to chronological order (DB returns DESC)
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *MessageRepo) ListTouching(ctx context.Context, userID string) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages for user: %w", err)
	}
	return scanMessages(rows)
}

func (r *MessageRepo) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE receiver_id = ? AND sender_id = ? AND is_read = FALSE
	`, receiverID, senderID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return res.RowsAffected()
}

func (r *MessageRepo) CountUnread(ctx context.Context, receiverID, senderID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = ? AND sender_id = ? AND is_read = FALSE
	`, receiverID, senderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *MessageRepo) reload(ctx context.Context, id int64, m *domain.Message) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("reload message: %w", err)
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return domain.ErrNotFound
	}
	*m = *msgs[0]
	return nil
}

func scanMessages(rows *sql.Rows) ([]*domain.Message, error) {
	defer rows.Close()
	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		var source sql.NullString
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Content,
			&m.ImageURL,
			&m.AudioURL,
			&m.Read,
			&source,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if source.Valid {
			m.Source = domain.ParseSource(source.String)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func sourceArg(s *domain.Source) any {
	if s == nil {
		return nil
	}
	return string(*s)
}
