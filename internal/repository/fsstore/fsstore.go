// Package fsstore implements repository.HistoryStore on a per-user directory
// tree.
//
// Layout (fixed — the combined file is served back to browsers verbatim):
//
//	<root>/<user-key>/session_<YYYYMMDD>_<HHMMSS>_<xid>/
//	    extracted.txt
//	    summary.txt
//	    metadata.json        {"title","timestamp","format"}
//	    StudyNotes.md|.txt   (only for records created via /download)
//
// The record ID is its directory name. The zero-padded timestamp prefix makes
// a descending name sort equal to newest-first, and the xid suffix makes two
// saves within the same second land in different directories instead of
// racing on one.
package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/model"
	"github.com/sakif/studybuddy/internal/repository"
)

const (
	extractedFile = "extracted.txt"
	summaryFile   = "summary.txt"
	metadataFile  = "metadata.json"

	recordPrefix = "session_"
	timeLayout   = "20060102_150405"
)

// compile-time check that *Store implements repository.HistoryStore
var _ repository.HistoryStore = (*Store)(nil)

// Store is a HistoryStore rooted at a single directory.
type Store struct {
	root string
	now  func() time.Time // swapped in tests for deterministic record IDs
}

func New(root string) *Store {
	return &Store{root: root, now: time.Now}
}

// UserKey derives the filesystem directory name for a user email.
// Lowercased, and anything outside a conservative character set becomes '_'
// so an email can never influence the path structure.
func UserKey(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	var b strings.Builder
	for _, r := range email {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == '@':
			b.WriteString("_at_")
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}

// validID accepts only names this store could have generated: a single path
// element with the record prefix. Everything else (traversal attempts, stray
// files) reads as "no such record".
func validID(id string) bool {
	return id != "" &&
		strings.HasPrefix(id, recordPrefix) &&
		!strings.ContainsAny(id, `/\`) &&
		filepath.Base(id) == id
}

// Save writes a new record directory and fills in rec.ID and rec.Timestamp.
func (s *Store) Save(_ context.Context, userKey string, rec *model.StudySession, format string) error {
	ts := s.now().Format(timeLayout)
	rec.ID = fmt.Sprintf("%s%s_%s", recordPrefix, ts, xid.New().String())
	rec.Timestamp = ts

	dir := filepath.Join(s.root, userKey, rec.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fsstore: creating record dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, extractedFile), []byte(rec.Extracted), 0o644); err != nil {
		return fmt.Errorf("fsstore: writing %s: %w", extractedFile, err)
	}
	if err := os.WriteFile(filepath.Join(dir, summaryFile), []byte(rec.Summary), 0o644); err != nil {
		return fmt.Errorf("fsstore: writing %s: %w", summaryFile, err)
	}

	meta := model.RecordMetadata{
		Title:     rec.Title,
		Timestamp: ts,
		Format:    format,
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("fsstore: encoding metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), raw, 0o644); err != nil {
		return fmt.Errorf("fsstore: writing %s: %w", metadataFile, err)
	}

	return nil
}

// List returns every record under the user's directory, newest-first.
// A user with no directory yet simply has no history.
func (s *Store) List(_ context.Context, userKey string) ([]model.StudySession, error) {
	userDir := filepath.Join(s.root, userKey)

	entries, err := os.ReadDir(userDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.StudySession{}, nil
		}
		return nil, fmt.Errorf("fsstore: reading user dir: %w", err)
	}

	records := make([]model.StudySession, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(userDir, entry.Name())

		raw, err := os.ReadFile(filepath.Join(dir, metadataFile))
		if err != nil {
			continue // not a record directory
		}
		var meta model.RecordMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}

		title := meta.Title
		if title == "" {
			title = entry.Name()
		}

		records = append(records, model.StudySession{
			ID:        entry.Name(),
			Title:     title,
			Timestamp: meta.Timestamp,
			Extracted: readOrEmpty(filepath.Join(dir, extractedFile)),
			Summary:   readOrEmpty(filepath.Join(dir, summaryFile)),
		})
	}

	// Name-descending: the timestamp prefix makes this newest-first.
	sort.Slice(records, func(i, j int) bool { return records[i].ID > records[j].ID })

	return records, nil
}

// Get reads the two text files of one record.
func (s *Store) Get(_ context.Context, userKey, id string) (*model.StudySession, error) {
	if !validID(id) {
		return nil, apperror.NotFound("session", id)
	}

	dir := filepath.Join(s.root, userKey, id)
	if _, err := os.Stat(dir); err != nil {
		return nil, apperror.NotFound("session", id)
	}

	extracted, err := os.ReadFile(filepath.Join(dir, extractedFile))
	if err != nil {
		return nil, apperror.NotFound("session", id)
	}
	summary, err := os.ReadFile(filepath.Join(dir, summaryFile))
	if err != nil {
		return nil, apperror.NotFound("session", id)
	}

	return &model.StudySession{
		ID:        id,
		Extracted: string(extracted),
		Summary:   string(summary),
	}, nil
}

// Delete removes the record directory recursively.
func (s *Store) Delete(_ context.Context, userKey, id string) error {
	if !validID(id) {
		return apperror.NotFound("session", id)
	}

	dir := filepath.Join(s.root, userKey, id)
	if _, err := os.Stat(dir); err != nil {
		return apperror.NotFound("session", id)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("fsstore: deleting record %s: %w", id, err)
	}

	return nil
}

// WriteCombined writes the downloadable export file into an existing record.
func (s *Store) WriteCombined(_ context.Context, userKey, id, filename string, content []byte) error {
	if !validID(id) {
		return apperror.NotFound("session", id)
	}

	dir := filepath.Join(s.root, userKey, id)
	if _, err := os.Stat(dir); err != nil {
		return apperror.NotFound("session", id)
	}

	if err := os.WriteFile(filepath.Join(dir, filepath.Base(filename)), content, 0o644); err != nil {
		return fmt.Errorf("fsstore: writing combined file: %w", err)
	}

	return nil
}

func readOrEmpty(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(raw)
}
