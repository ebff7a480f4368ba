// Package vision is a minimal client for the Cloud Vision images:annotate
// REST endpoint, using API-key authentication.
//
// One call per image, one feature (DOCUMENT_TEXT_DETECTION), first response's
// full-text annotation out. That is the entire contract the extract pipeline
// needs, so the request/response structs below model only those fields.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "https://vision.googleapis.com"

// Client calls the Vision REST API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string // overridden in tests
}

func New(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"` // base64-encoded image bytes
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type imageResponse struct {
	FullTextAnnotation *textAnnotation `json:"fullTextAnnotation"`
	Error              *status         `json:"error"`
}

type textAnnotation struct {
	Text string `json:"text"`
}

type status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DetectDocumentText runs full-document OCR on one image and returns the
// detected text. An image in which Vision finds no text yields "" — that is
// a valid result, not an error.
func (c *Client) DetectDocumentText(ctx context.Context, image []byte) (string, error) {
	payload := annotateRequest{
		Requests: []imageRequest{{
			Image:    imageContent{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []feature{{Type: "DOCUMENT_TEXT_DETECTION"}},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("vision: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/images:annotate?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("vision: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision: calling images:annotate: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("vision: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision: images:annotate returned status %d: %s", resp.StatusCode, raw)
	}

	var annotated annotateResponse
	if err := json.Unmarshal(raw, &annotated); err != nil {
		return "", fmt.Errorf("vision: decoding response: %w", err)
	}

	if len(annotated.Responses) == 0 {
		return "", nil
	}

	first := annotated.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("vision: annotation error: %s", first.Error.Message)
	}
	if first.FullTextAnnotation == nil {
		return "", nil
	}

	return first.FullTextAnnotation.Text, nil
}
