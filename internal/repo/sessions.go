package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tscrond/signin/internal/session"
)

const (
	getSessionQuery = `SELECT id, email, oauth_state, created_at, updated_at, expires_at
FROM sessions
WHERE id = $1 AND expires_at > $2`

	saveSessionQuery = `INSERT INTO sessions (id, email, oauth_state, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET email = EXCLUDED.email,
    oauth_state = EXCLUDED.oauth_state,
    updated_at = EXCLUDED.updated_at,
    expires_at = EXCLUDED.expires_at`

	deleteSessionQuery = `DELETE FROM sessions WHERE id = $1`

	purgeSessionsQuery = `DELETE FROM sessions WHERE expires_at <= $1`
)

func (repo *Repository) Get(ctx context.Context, id string) (*session.User, error) {
	var u session.User
	err := repo.db.QueryRowContext(ctx, getSessionQuery, id, time.Now().UTC()).Scan(
		&u.ID,
		&u.Email,
		&u.OAuthState,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (repo *Repository) Save(ctx context.Context, u *session.User) error {
	if u == nil || u.ID == "" {
		return errors.New("session id is empty")
	}

	_, err := repo.db.ExecContext(ctx, saveSessionQuery,
		u.ID,
		u.Email,
		u.OAuthState,
		u.CreatedAt,
		u.UpdatedAt,
		u.ExpiresAt,
	)
	return err
}

func (repo *Repository) Delete(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, deleteSessionQuery, id)
	return err
}

func (repo *Repository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := repo.db.ExecContext(ctx, purgeSessionsQuery, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
