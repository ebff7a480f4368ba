package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/studybuddy/internal/apperror"
)

type mockGenerator struct {
	reply  string
	err    error
	prompt string
}

func (m *mockGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.reply, m.err
}

func TestSummarizeEmptyInput(t *testing.T) {
	svc := NewSummarizeService(&mockGenerator{}, discardLogger())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Summarize(context.Background(), text)
		assert.ErrorIs(t, err, apperror.ErrValidation, "input %q", text)
	}
}

func TestSummarizePromptPrefix(t *testing.T) {
	gen := &mockGenerator{reply: "- point one"}
	svc := NewSummarizeService(gen, discardLogger())

	summary, err := svc.Summarize(context.Background(), "  photosynthesis notes  ")
	require.NoError(t, err)
	assert.Equal(t, "- point one", summary)
	assert.True(t, strings.HasPrefix(gen.prompt, "Summarize the following study notes into bullet points:\n\n"))
	assert.True(t, strings.HasSuffix(gen.prompt, "photosynthesis notes"))
}

func TestSummarizeEmptyReply(t *testing.T) {
	svc := NewSummarizeService(&mockGenerator{reply: "  "}, discardLogger())

	summary, err := svc.Summarize(context.Background(), "some notes")
	require.NoError(t, err)
	assert.Equal(t, EmptySummary, summary)
}

func TestSummarizeUpstreamError(t *testing.T) {
	svc := NewSummarizeService(&mockGenerator{err: errors.New("gemini: status 429")}, discardLogger())

	_, err := svc.Summarize(context.Background(), "some notes")
	require.ErrorIs(t, err, apperror.ErrUpstream)
	assert.Contains(t, err.Error(), "status 429")
}
