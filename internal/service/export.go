package service

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/auth"
	"github.com/sakif/studybuddy/internal/gdocs"
	"github.com/sakif/studybuddy/internal/model"
	"github.com/sakif/studybuddy/internal/repository"
)

// DefaultExportTitle is used when the request carries no document title.
const DefaultExportTitle = "StudyBuddy Notes"

// DocsCreator creates a titled document with a body and returns its ID.
// Implemented by gdocs.Client; tests substitute a fake.
type DocsCreator interface {
	CreateDocument(ctx context.Context, title, body string) (string, error)
}

// DocsFactory builds a DocsCreator bound to an authenticated http.Client.
// A factory (rather than a single injected client) because each export runs
// with a different user's credentials.
type DocsFactory func(ctx context.Context, client *http.Client) (DocsCreator, error)

// NewGoogleDocsFactory returns the production factory backed by gdocs.
func NewGoogleDocsFactory() DocsFactory {
	return func(ctx context.Context, client *http.Client) (DocsCreator, error) {
		return gdocs.New(ctx, client)
	}
}

// ExportService creates Google Docs from extracted notes using the session's
// stored OAuth credentials.
type ExportService struct {
	oauth    *oauth2.Config
	sessions repository.SessionRepository
	newDocs  DocsFactory
	logger   *slog.Logger
}

func NewExportService(oauth *oauth2.Config, sessions repository.SessionRepository, newDocs DocsFactory, logger *slog.Logger) *ExportService {
	return &ExportService{
		oauth:    oauth,
		sessions: sessions,
		newDocs:  newDocs,
		logger:   logger,
	}
}

// ExportToDocs creates a document titled title containing extracted and
// summary joined by Separator, and returns its viewer URL. The stored access
// token refreshes transparently through the TokenSource; a refreshed token is
// persisted back so the next export does not refresh again.
func (s *ExportService) ExportToDocs(ctx context.Context, session *model.UserSession, title, extracted, summary string) (string, error) {
	if !session.HasCredentials() {
		return "", apperror.Forbidden("Google account not connected")
	}

	stored := auth.TokenFromCredentials(session.Credentials)
	source := s.oauth.TokenSource(ctx, stored)
	token, err := source.Token()
	if err != nil {
		s.logger.Error("token refresh failed", "email", session.UserEmail, "error", err)
		return "", apperror.Upstream("could not refresh Google credentials", err)
	}
	if token.AccessToken != stored.AccessToken {
		session.Credentials = auth.CredentialsFromToken(token)
		if err := s.sessions.Update(ctx, session); err != nil {
			// The export can still proceed with the fresh token.
			s.logger.Warn("persisting refreshed token failed", "email", session.UserEmail, "error", err)
		}
	}

	if title == "" {
		title = DefaultExportTitle
	}
	body := extracted + Separator + summary

	docs, err := s.newDocs(ctx, oauth2.NewClient(ctx, source))
	if err != nil {
		return "", apperror.Upstream("could not reach Google Docs", err)
	}
	docID, err := docs.CreateDocument(ctx, title, body)
	if err != nil {
		s.logger.Error("docs export failed", "email", session.UserEmail, "error", err)
		return "", apperror.Upstream("could not create the Google Doc", err)
	}

	url := gdocs.ViewerURL(docID)
	s.logger.Info("exported to google docs", "email", session.UserEmail, "doc_id", docID)
	return url, nil
}
