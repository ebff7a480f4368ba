package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func fakeGemini(t *testing.T, status int, body string, gotBody *generateRequest) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing x-goog-api-key header")
		}
		if gotBody != nil {
			if err := json.NewDecoder(r.Body).Decode(gotBody); err != nil {
				t.Errorf("decoding request body: %v", err)
			}
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	c := New(ts.Client(), "test-key")
	c.baseURL = ts.URL
	return c
}

func TestGenerateContent(t *testing.T) {
	var got generateRequest
	c := fakeGemini(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"- point one\n- point two"}]}}]}`, &got)

	text, err := c.GenerateContent(context.Background(), "Summarize this")
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if text != "- point one\n- point two" {
		t.Errorf("text = %q, want bullet list", text)
	}

	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 1 {
		t.Fatalf("request shape = %+v, want one content with one part", got)
	}
	if got.Contents[0].Parts[0].Text != "Summarize this" {
		t.Errorf("prompt = %q, want %q", got.Contents[0].Parts[0].Text, "Summarize this")
	}
}

func TestGenerateContent_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates":[]}`},
		{"nil content", `{"candidates":[{}]}`},
		{"empty parts", `{"candidates":[{"content":{"parts":[]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeGemini(t, http.StatusOK, tt.body, nil)
			text, err := c.GenerateContent(context.Background(), "x")
			if err != nil {
				t.Fatalf("GenerateContent() error = %v, want nil (defensive default)", err)
			}
			if text != "" {
				t.Errorf("text = %q, want empty string", text)
			}
		})
	}
}

func TestGenerateContent_HTTPError(t *testing.T) {
	c := fakeGemini(t, http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, nil)

	_, err := c.GenerateContent(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v, want status error", err)
	}
}
