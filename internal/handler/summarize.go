package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/service"
)

// SummarizeHandler wraps the summarization service. Its errors are
// summary-shaped rather than the standard ErrorResponse: the front-end
// renders the summary field directly, errors included.
type SummarizeHandler struct {
	summarize *service.SummarizeService
	logger    *slog.Logger
}

func NewSummarizeHandler(summarize *service.SummarizeService, logger *slog.Logger) *SummarizeHandler {
	return &SummarizeHandler{summarize: summarize, logger: logger}
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// HandleSummarize responds {summary} on success, and on failure a
// {summary: "❌ ..."} body with the matching status code.
func (h *SummarizeHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A body that cannot be parsed is a request failure, not missing
		// input; it reports like any other summarization failure.
		writeJSON(w, http.StatusInternalServerError, summarizeResponse{Summary: "❌ Summarization failed: " + err.Error()})
		return
	}

	summary, err := h.summarize.Summarize(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, summarizeResponse{Summary: "❌ No input text to summarize"})
			return
		}
		var appErr *apperror.AppError
		msg := "internal error"
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		writeJSON(w, http.StatusInternalServerError, summarizeResponse{Summary: "❌ Summarization failed: " + msg})
		return
	}

	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}
