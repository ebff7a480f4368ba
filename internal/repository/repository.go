package repository

import (
	"context"

	"github.com/sakif/studybuddy/internal/model"
)

// SessionRepository is the server-side user-session store. The sqlite
// implementation backs production; tests use in-memory fakes.
type SessionRepository interface {
	// Create inserts a fresh, anonymous session and returns it with its ID
	// and timestamps populated.
	Create(ctx context.Context) (*model.UserSession, error)
	GetByID(ctx context.Context, id string) (*model.UserSession, error)
	// Update persists state, email and credentials changes.
	Update(ctx context.Context, session *model.UserSession) error
	Delete(ctx context.Context, id string) error
}

// HistoryStore persists extraction/summary artifacts per user, keyed by a
// filesystem-safe user key and a record ID. Implemented by fsstore over a
// per-user directory tree.
type HistoryStore interface {
	// Save writes the record's three files, filling in rec.ID and
	// rec.Timestamp. format is recorded in metadata.json when non-empty.
	Save(ctx context.Context, userKey string, rec *model.StudySession, format string) error
	// List returns all records newest-first. Records with unreadable text
	// files degrade to empty strings; directories without metadata.json are
	// skipped.
	List(ctx context.Context, userKey string) ([]model.StudySession, error)
	Get(ctx context.Context, userKey, id string) (*model.StudySession, error)
	Delete(ctx context.Context, userKey, id string) error
	// WriteCombined adds the human-readable export file to an existing
	// record directory.
	WriteCombined(ctx context.Context, userKey, id, filename string, content []byte) error
}
