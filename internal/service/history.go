package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/studybuddy/internal/model"
	"github.com/sakif/studybuddy/internal/repository"
	"github.com/sakif/studybuddy/internal/repository/fsstore"
)

// DefaultSessionTitle names records saved without a title.
const DefaultSessionTitle = "Untitled Session"

// downloadTemplate is the human-readable export the user downloads and that
// gets written alongside the record.
const downloadTemplate = "📚 Extracted Notes\n\n%s\n\n---\n\n📌 Summary\n\n%s"

// DownloadFile is a named attachment produced by DownloadExport.
type DownloadFile struct {
	Name    string
	Content []byte
}

// HistoryService manages the per-user study-session archive.
type HistoryService struct {
	store  repository.HistoryStore
	logger *slog.Logger
}

func NewHistoryService(store repository.HistoryStore, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		store:  store,
		logger: logger,
	}
}

// Save archives one study session for the user and returns the stored record
// with its generated ID.
func (s *HistoryService) Save(ctx context.Context, email, title, extracted, summary string) (*model.StudySession, error) {
	rec := &model.StudySession{
		Title:     normalizeTitle(title),
		Extracted: extracted,
		Summary:   summary,
	}
	if err := s.store.Save(ctx, fsstore.UserKey(email), rec, ""); err != nil {
		return nil, err
	}
	s.logger.Info("session saved", "email", email, "id", rec.ID)
	return rec, nil
}

// List returns the user's records, newest first.
func (s *HistoryService) List(ctx context.Context, email string) ([]model.StudySession, error) {
	return s.store.List(ctx, fsstore.UserKey(email))
}

// Get returns one record with its full text.
func (s *HistoryService) Get(ctx context.Context, email, id string) (*model.StudySession, error) {
	return s.store.Get(ctx, fsstore.UserKey(email), id)
}

// Delete removes a record.
func (s *HistoryService) Delete(ctx context.Context, email, id string) error {
	if err := s.store.Delete(ctx, fsstore.UserKey(email), id); err != nil {
		return err
	}
	s.logger.Info("session deleted", "email", email, "id", id)
	return nil
}

// DownloadExport archives the session like Save, writes the combined notes
// file into the record and returns it as a downloadable attachment. format
// "md" yields StudyNotes.md; anything else falls back to StudyNotes.txt.
func (s *HistoryService) DownloadExport(ctx context.Context, email, title, extracted, summary, format string) (*DownloadFile, error) {
	userKey := fsstore.UserKey(email)
	rec := &model.StudySession{
		Title:     normalizeTitle(title),
		Extracted: extracted,
		Summary:   summary,
	}
	if err := s.store.Save(ctx, userKey, rec, format); err != nil {
		return nil, err
	}

	ext := "txt"
	if format == "md" {
		ext = "md"
	}
	file := &DownloadFile{
		Name:    "StudyNotes." + ext,
		Content: []byte(fmt.Sprintf(downloadTemplate, extracted, summary)),
	}
	if err := s.store.WriteCombined(ctx, userKey, rec.ID, file.Name, file.Content); err != nil {
		return nil, err
	}
	s.logger.Info("notes downloaded", "email", email, "id", rec.ID, "format", ext)
	return file, nil
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultSessionTitle
	}
	return title
}
