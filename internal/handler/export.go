package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/auth"
	"github.com/sakif/studybuddy/internal/service"
)

// ExportHandler sends extracted notes to Google Docs.
type ExportHandler struct {
	export *service.ExportService
	logger *slog.Logger
}

func NewExportHandler(export *service.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{export: export, logger: logger}
}

type exportRequest struct {
	Title     string `json:"title"`
	Extracted string `json:"extracted"`
	Summary   string `json:"summary"`
}

// HandleExportDocs creates a Google Doc from the submitted notes and
// responds {message, doc_url}.
func (h *ExportHandler) HandleExportDocs(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	url, err := h.export.ExportToDocs(r.Context(), session, req.Title, req.Extracted, req.Summary)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Exported to Google Docs.",
		"doc_url": url,
	})
}
