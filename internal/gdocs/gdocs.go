// Package gdocs adapts the Google Docs API for the export flow: create a
// document, insert the composed notes, hand back a viewer URL.
package gdocs

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// Client wraps a docs.Service bound to one user's authenticated http.Client.
type Client struct {
	svc *docs.Service
}

// New creates a Docs client. httpClient must already carry the user's OAuth
// credentials (typically built from an oauth2 TokenSource). Extra options are
// for tests pointing the service at a fake endpoint.
func New(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gdocs: creating docs service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CreateDocument creates a titled document and inserts body at index 1 —
// the first position after the document's implicit root — via a single batch
// update. Returns the new document's ID.
func (c *Client) CreateDocument(ctx context.Context, title, body string) (string, error) {
	doc, err := c.svc.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gdocs: creating document: %w", err)
	}

	if body != "" {
		_, err = c.svc.Documents.BatchUpdate(doc.DocumentId, &docs.BatchUpdateDocumentRequest{
			Requests: []*docs.Request{{
				InsertText: &docs.InsertTextRequest{
					Text:     body,
					Location: &docs.Location{Index: 1},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("gdocs: inserting text into document %s: %w", doc.DocumentId, err)
		}
	}

	return doc.DocumentId, nil
}

// ViewerURL assembles the browser URL for a created document.
func ViewerURL(docID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", docID)
}
