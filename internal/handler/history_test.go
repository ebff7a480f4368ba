package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/studybuddy/internal/auth"
	"github.com/sakif/studybuddy/internal/model"
	"github.com/sakif/studybuddy/internal/repository/fsstore"
	"github.com/sakif/studybuddy/internal/service"
)

func historyRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store := fsstore.New(t.TempDir())
	h := NewHistoryHandler(service.NewHistoryService(store, testLogger()), testLogger())

	r := chi.NewRouter()
	r.Get("/history", h.HandleList)
	r.Get("/history/{id}", h.HandleGet)
	r.Post("/history/save", h.HandleSave)
	r.Delete("/history/delete/{id}", h.HandleDelete)
	r.Post("/download", h.HandleDownload)
	return r
}

func authedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	session := &model.UserSession{ID: "sess-1", UserEmail: "student@example.com"}
	return req.WithContext(auth.ContextWithSession(req.Context(), session))
}

func TestHistorySaveAndList(t *testing.T) {
	router := historyRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/history/save",
		`{"title":"Biology","extracted":"cells","summary":"- cells"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Session saved."}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/history", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Biology"`)
	assert.Contains(t, rec.Body.String(), `"session_id":"session_`)
}

func TestHistoryGetRoundTrip(t *testing.T) {
	router := historyRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/history/save",
		`{"title":"Chem","extracted":"atoms","summary":"- atoms"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/history", ""))
	var list []model.StudySession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/history/"+list[0].ID, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"extracted":"atoms","summary":"- atoms"}`, rec.Body.String())
}

func TestHistoryGetMissing(t *testing.T) {
	router := historyRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/history/session_20260101_000000_missing", ""))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestHistoryDelete(t *testing.T) {
	router := historyRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/history/save",
		`{"title":"Bio","extracted":"x","summary":"y"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/history", ""))
	var list []model.StudySession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodDelete, "/history/delete/"+list[0].ID, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Deleted successfully."}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodDelete, "/history/delete/"+list[0].ID, ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadAttachment(t *testing.T) {
	router := historyRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/download",
		`{"extracted":"my notes","summary":"my summary","format":"md"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="StudyNotes.md"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "📚 Extracted Notes\n\nmy notes\n\n---\n\n📌 Summary\n\nmy summary", rec.Body.String())

	// The download also lands in history.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/history", ""))
	var list []model.StudySession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestHistoryRequiresSession(t *testing.T) {
	router := historyRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
