package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/model"
	"github.com/sakif/studybuddy/internal/repository"
)

// compile-time check that *DB implements repository.SessionRepository
var _ repository.SessionRepository = (*DB)(nil)

// Create inserts a fresh anonymous session row.
func (db *DB) Create(ctx context.Context) (*model.UserSession, error) {
	now := time.Now()
	session := &model.UserSession{
		ID:        xid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, oauth_state, user_email, credentials, created_at, updated_at)
		 VALUES (?, '', '', NULL, ?, ?)`,
		session.ID,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting session: %w", err)
	}

	return session, nil
}

// GetByID retrieves a session by its ID.
// Returns apperror.ErrNotFound if no row exists — the middleware treats that
// as an anonymous request, the callback handler as a rejected replay.
func (db *DB) GetByID(ctx context.Context, id string) (*model.UserSession, error) {
	var (
		s     model.UserSession
		creds sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, oauth_state, user_email, credentials, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(
		&s.ID,
		&s.OAuthState,
		&s.UserEmail,
		&creds,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}

	if creds.Valid && creds.String != "" {
		var c model.OAuthCredentials
		if err := json.Unmarshal([]byte(creds.String), &c); err != nil {
			return nil, fmt.Errorf("sqlite: decoding credentials for session %s: %w", id, err)
		}
		s.Credentials = &c
	}

	return &s, nil
}

// Update persists the mutable fields (state, email, credentials).
func (db *DB) Update(ctx context.Context, session *model.UserSession) error {
	var creds any
	if session.Credentials != nil {
		raw, err := json.Marshal(session.Credentials)
		if err != nil {
			return fmt.Errorf("sqlite: encoding credentials for session %s: %w", session.ID, err)
		}
		creds = string(raw)
	}

	session.UpdatedAt = time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET oauth_state = ?, user_email = ?, credentials = ?, updated_at = ?
		 WHERE id = ?`,
		session.OAuthState,
		session.UserEmail,
		creds,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating session %s: %w", session.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("session", session.ID)
	}

	return nil
}

// Delete removes a session row. Deleting an already-absent session is not an
// error — logout must be idempotent.
func (db *DB) Delete(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}
	return nil
}
