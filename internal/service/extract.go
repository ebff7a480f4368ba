// Package service contains the business logic layer: OCR orchestration,
// summarization, Docs export and history bookkeeping. Handlers parse HTTP and
// delegate here; this layer knows nothing about requests or responses.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sakif/studybuddy/internal/apperror"
	"github.com/sakif/studybuddy/internal/pdf"
)

// Separator joins independently extracted text segments (one per image, or
// one per PDF page) into a single blob the front-end displays as one note.
const Separator = "\n\n---\n\n"

// OCRClient extracts text from a single image. Implemented by vision.Client.
type OCRClient interface {
	DetectDocumentText(ctx context.Context, image []byte) (string, error)
}

// UploadedFile is one multipart upload, already read into memory.
type UploadedFile struct {
	Name string
	Data []byte
}

// ExtractService turns a batch of uploads into one text blob. PDFs are
// rasterized page by page first; everything else goes to OCR as-is.
type ExtractService struct {
	ocr    OCRClient
	raster pdf.Rasterizer // nil when pdftoppm is unavailable
	logger *slog.Logger
}

func NewExtractService(ocr OCRClient, raster pdf.Rasterizer, logger *slog.Logger) *ExtractService {
	return &ExtractService{
		ocr:    ocr,
		raster: raster,
		logger: logger,
	}
}

// Extract OCRs every upload in order and joins the results with Separator,
// one segment per page or image. Any upstream failure aborts the whole
// batch: partial results would silently lose pages the user believes were
// captured.
func (s *ExtractService) Extract(ctx context.Context, files []UploadedFile) (string, error) {
	if len(files) == 0 {
		return "", apperror.ValidationFailed("files", "no files uploaded")
	}

	var segments []string
	for _, f := range files {
		images, err := s.images(ctx, f)
		if err != nil {
			return "", err
		}
		for _, img := range images {
			text, err := s.ocr.DetectDocumentText(ctx, img)
			if err != nil {
				s.logger.Error("ocr failed", "file", f.Name, "error", err)
				return "", apperror.Upstream(fmt.Sprintf("text extraction failed for %s", f.Name), err)
			}
			// One segment per page, even when the page has no text. The
			// front-end relies on segment count matching page count.
			segments = append(segments, text)
		}
	}

	s.logger.Info("extraction complete", "files", len(files), "segments", len(segments))
	return strings.Join(segments, Separator), nil
}

// images expands a PDF into its page images; other files pass through.
func (s *ExtractService) images(ctx context.Context, f UploadedFile) ([][]byte, error) {
	if strings.ToLower(filepath.Ext(f.Name)) != ".pdf" {
		return [][]byte{f.Data}, nil
	}
	if s.raster == nil {
		return nil, apperror.Upstream("PDF support is not available on this server", nil)
	}
	pages, err := s.raster.Rasterize(ctx, f.Data)
	if err != nil {
		s.logger.Error("pdf rasterization failed", "file", f.Name, "error", err)
		return nil, apperror.Upstream(fmt.Sprintf("could not read PDF %s", f.Name), err)
	}
	return pages, nil
}
