package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/StoryBuilderAi/storybuilder/internal/database"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
)

// SessionRepo persists sessions keyed by the hash of their opaque token.
type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a session row and fills in its ID and creation time.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, expires_at) VALUES (?,?,?)",
		s.UserID, s.TokenHash, s.ExpiresAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

// GetValid returns the session for tokenHash if it exists and has not
// expired. Expired or unknown tokens yield ErrNotFound.
func (r *SessionRepo) GetValid(ctx context.Context, tokenHash string) (*model.Session, error) {
	var s model.Session
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at, created_at FROM sessions WHERE token=? LIMIT 1",
		tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.Expired(time.Now().UTC()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

// DeleteByHash ends one session. It reports whether the session existed.
func (r *SessionRepo) DeleteByHash(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE token=?", tokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAllForUser ends every session of a user.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	return err
}

// DeleteExpired purges sessions past their expiry and returns how many
// rows were removed.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
