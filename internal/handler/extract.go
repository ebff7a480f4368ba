package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/service"
)

// maxUploadBytes bounds one /extract request (multi-page PDFs included).
const maxUploadBytes = 32 << 20 // 32 MB

// ExtractHandler accepts uploads and returns the OCR'd text.
type ExtractHandler struct {
	extract *service.ExtractService
	logger  *slog.Logger
}

func NewExtractHandler(extract *service.ExtractService, logger *slog.Logger) *ExtractHandler {
	return &ExtractHandler{extract: extract, logger: logger}
}

// HandleExtract reads the multipart field "files" and responds {text}.
func (h *ExtractHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperror.ValidationFailed("files", "invalid multipart request"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var files []service.UploadedFile
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			writeError(w, apperror.ValidationFailed("files", "could not read upload "+header.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, apperror.ValidationFailed("files", "could not read upload "+header.Filename))
			return
		}
		files = append(files, service.UploadedFile{Name: header.Filename, Data: data})
	}

	text, err := h.extract.Extract(r.Context(), files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}
