package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/auth"
	"github.com/sakif/studybuddy/internal/service"
)

// HistoryHandler serves the per-user study-session archive.
type HistoryHandler struct {
	history *service.HistoryService
	logger  *slog.Logger
}

func NewHistoryHandler(history *service.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

type saveRequest struct {
	Title     string `json:"title"`
	Extracted string `json:"extracted"`
	Summary   string `json:"summary"`
}

type downloadRequest struct {
	Title     string `json:"title"`
	Extracted string `json:"extracted"`
	Summary   string `json:"summary"`
	Format    string `json:"format"`
}

func sessionEmail(r *http.Request) (string, bool) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok || !session.Authenticated() {
		return "", false
	}
	return session.UserEmail, true
}

// HandleList responds with every saved session, newest first.
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	email, ok := sessionEmail(r)
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	records, err := h.history.List(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleGet responds {extracted, summary} for one saved session.
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	email, ok := sessionEmail(r)
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	rec, err := h.history.Get(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"extracted": rec.Extracted,
		"summary":   rec.Summary,
	})
}

// HandleSave archives a session.
func (h *HistoryHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	email, ok := sessionEmail(r)
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if _, err := h.history.Save(r.Context(), email, req.Title, req.Extracted, req.Summary); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session saved."})
}

// HandleDelete removes a saved session.
func (h *HistoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := sessionEmail(r)
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	if err := h.history.Delete(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully."})
}

// HandleDownload archives the session and streams the combined notes file as
// an attachment.
func (h *HistoryHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	email, ok := sessionEmail(r)
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	file, err := h.history.DownloadExport(r.Context(), email, req.Title, req.Extracted, req.Summary, req.Format)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Content)
}
