// Package genai is a minimal client for the Gemini generateContent REST
// endpoint.
//
// The request/response structs model just the slice of the API this app
// consumes: one user turn in, first candidate's first part out.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
)

// Client calls the Gemini REST API with API-key authentication.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string // overridden in tests
}

func New(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    defaultBaseURL,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content *content `json:"content"`
}

// GenerateContent sends a single-turn prompt and returns the first
// candidate's first part. A well-formed response with an unexpected shape
// (no candidates, empty content) returns "" with a nil error — the caller
// decides what a missing answer means.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("genai: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: calling generateContent: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("genai: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genai: generateContent returned status %d: %s", resp.StatusCode, raw)
	}

	var generated generateResponse
	if err := json.Unmarshal(raw, &generated); err != nil {
		return "", fmt.Errorf("genai: decoding response: %w", err)
	}

	if len(generated.Candidates) == 0 ||
		generated.Candidates[0].Content == nil ||
		len(generated.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	return generated.Candidates[0].Content.Parts[0].Text, nil
}
