package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/model"
)

type mockSessions struct {
	sessions  map[string]*model.UserSession
	updated   *model.UserSession
	updateErr error
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[string]*model.UserSession)}
}

func (m *mockSessions) Create(_ context.Context) (*model.UserSession, error) {
	s := &model.UserSession{ID: "mock-session"}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *mockSessions) GetByID(_ context.Context, id string) (*model.UserSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	return s, nil
}

func (m *mockSessions) Update(_ context.Context, session *model.UserSession) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = session
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessions) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

type mockDocs struct {
	title string
	body  string
	err   error
}

func (m *mockDocs) CreateDocument(_ context.Context, title, body string) (string, error) {
	m.title = title
	m.body = body
	return "doc-1", m.err
}

func exportFixture(docs *mockDocs) (*ExportService, *mockSessions) {
	sessions := newMockSessions()
	factory := func(_ context.Context, _ *http.Client) (DocsCreator, error) {
		return docs, nil
	}
	cfg := &oauth2.Config{ClientID: "id", ClientSecret: "secret"}
	return NewExportService(cfg, sessions, factory, discardLogger()), sessions
}

func connectedSession() *model.UserSession {
	return &model.UserSession{
		ID:        "sess-1",
		UserEmail: "student@example.com",
		Credentials: &model.OAuthCredentials{
			AccessToken:  "live-token",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour),
		},
	}
}

func TestExportWithoutCredentials(t *testing.T) {
	svc, _ := exportFixture(&mockDocs{})

	_, err := svc.ExportToDocs(context.Background(),
		&model.UserSession{ID: "sess-1", UserEmail: "student@example.com"},
		"Title", "notes", "summary")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestExportCreatesDocument(t *testing.T) {
	docs := &mockDocs{}
	svc, sessions := exportFixture(docs)

	url, err := svc.ExportToDocs(context.Background(), connectedSession(),
		"Biology Notes", "notes", "summary")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/document/d/doc-1/edit", url)
	assert.Equal(t, "Biology Notes", docs.title)
	assert.Equal(t, "notes"+Separator+"summary", docs.body)
	assert.Nil(t, sessions.updated, "unexpired token should not be rewritten")
}

func TestExportDefaultTitle(t *testing.T) {
	docs := &mockDocs{}
	svc, _ := exportFixture(docs)

	_, err := svc.ExportToDocs(context.Background(), connectedSession(), "", "notes", "summary")
	require.NoError(t, err)
	assert.Equal(t, DefaultExportTitle, docs.title)
}

func TestExportDocsFailure(t *testing.T) {
	docs := &mockDocs{err: errors.New("insufficient scope")}
	svc, _ := exportFixture(docs)

	_, err := svc.ExportToDocs(context.Background(), connectedSession(), "Title", "notes", "summary")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}
