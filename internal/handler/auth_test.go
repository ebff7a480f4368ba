package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/auth"
	"github.com/sakif/studybuddy/internal/model"
)

type sessionStub struct {
	rows    map[string]*model.UserSession
	created int
}

func newSessionStub() *sessionStub {
	return &sessionStub{rows: make(map[string]*model.UserSession)}
}

func (s *sessionStub) Create(_ context.Context) (*model.UserSession, error) {
	s.created++
	row := &model.UserSession{ID: "sess-1"}
	s.rows[row.ID] = row
	return row, nil
}

func (s *sessionStub) GetByID(_ context.Context, id string) (*model.UserSession, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	return row, nil
}

func (s *sessionStub) Update(_ context.Context, session *model.UserSession) error {
	s.rows[session.ID] = session
	return nil
}

func (s *sessionStub) Delete(_ context.Context, id string) error {
	delete(s.rows, id)
	return nil
}

func authFixture(t *testing.T) (*AuthHandler, *sessionStub) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)
	provider := auth.NewGoogleProvider("client-id", "client-secret", "http://localhost:8080/callback")
	sessions := newSessionStub()
	return NewAuthHandler(provider, tokens, sessions, "http://localhost:5173", testLogger()), sessions
}

func TestAuthorizeCreatesSessionAndRedirects(t *testing.T) {
	h, sessions := authFixture(t)

	rec := httptest.NewRecorder()
	h.HandleAuthorize(rec, httptest.NewRequest(http.MethodGet, "/authorize", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, 1, sessions.created)

	stored := sessions.rows["sess-1"]
	require.NotEmpty(t, stored.OAuthState)
	assert.Contains(t, rec.Header().Get("Location"), "state="+stored.OAuthState)
	assert.Contains(t, rec.Header().Get("Location"), "access_type=offline")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthorizeReusesExistingSession(t *testing.T) {
	h, sessions := authFixture(t)
	existing := &model.UserSession{ID: "sess-9"}
	sessions.rows[existing.ID] = existing

	req := httptest.NewRequest(http.MethodGet, "/authorize", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(), existing))
	rec := httptest.NewRecorder()
	h.HandleAuthorize(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, 0, sessions.created)
	assert.NotEmpty(t, sessions.rows["sess-9"].OAuthState)
	assert.Empty(t, rec.Result().Cookies(), "existing sessions keep their cookie")
}

func TestCallbackWithoutSession(t *testing.T) {
	h, _ := authFixture(t)

	rec := httptest.NewRecorder()
	h.HandleCallback(rec, httptest.NewRequest(http.MethodGet, "/callback?state=abc&code=xyz", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCallbackStateMismatch(t *testing.T) {
	h, sessions := authFixture(t)
	session := &model.UserSession{ID: "sess-1", OAuthState: "expected"}
	sessions.rows[session.ID] = session

	req := httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=xyz", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(), session))
	rec := httptest.NewRecorder()
	h.HandleCallback(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "state mismatch")
}

func TestMe(t *testing.T) {
	h, _ := authFixture(t)

	rec := httptest.NewRecorder()
	h.HandleMe(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(),
		&model.UserSession{ID: "sess-1", UserEmail: "student@example.com"}))
	rec = httptest.NewRecorder()
	h.HandleMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"student@example.com"}`, rec.Body.String())
}

func TestLogout(t *testing.T) {
	h, sessions := authFixture(t)
	session := &model.UserSession{ID: "sess-1", UserEmail: "student@example.com"}
	sessions.rows[session.ID] = session

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(), session))
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out."}`, rec.Body.String())
	assert.NotContains(t, sessions.rows, "sess-1")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLogoutWithoutSession(t *testing.T) {
	h, _ := authFixture(t)

	rec := httptest.NewRecorder()
	h.HandleLogout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
