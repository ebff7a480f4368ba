package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/studybuddy/internal/apperror"
)

// summaryPrompt is prepended to the notes on every summarization call.
const summaryPrompt = "Summarize the following study notes into bullet points:\n\n"

// EmptySummary is returned when the model answers with an empty or
// unexpectedly shaped response. The front-end renders it as-is.
const EmptySummary = "⚠️ No summary returned."

// Generator produces text from a prompt. Implemented by genai.Client.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type SummarizeService struct {
	gen    Generator
	logger *slog.Logger
}

func NewSummarizeService(gen Generator, logger *slog.Logger) *SummarizeService {
	return &SummarizeService{
		gen:    gen,
		logger: logger,
	}
}

// Summarize sends the notes to the model and returns its bullet-point
// summary. Empty input is a validation error; an empty model answer is not an
// error and yields EmptySummary.
func (s *SummarizeService) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperror.ValidationFailed("text", "no input text to summarize")
	}

	summary, err := s.gen.GenerateContent(ctx, summaryPrompt+text)
	if err != nil {
		s.logger.Error("summarization failed", "error", err)
		return "", apperror.Upstream(err.Error(), nil)
	}
	if strings.TrimSpace(summary) == "" {
		s.logger.Warn("model returned no summary")
		return EmptySummary, nil
	}
	return summary, nil
}
