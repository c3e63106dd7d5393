package robodash

import (
	"context"

	"github.com/jdziat/robodash/pkg/metadoc"
)

// Well-known repository paths.
const (
	InfoPath  = "meta/info.json"
	StatsPath = "meta/stats.json"
)

// FilesClient resolves raw repository files.
type FilesClient struct {
	client *Client
}

// Raw fetches a repository file at the configured revision.
func (c *FilesClient) Raw(ctx context.Context, ref DatasetRef, path string) ([]byte, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, NewValidationError("path", "is required")
	}
	return c.client.http.getBytes(ctx, c.client.ResolveURL(ref, path))
}

// Document fetches a repository file and parses it as a JSON object.
func (c *FilesClient) Document(ctx context.Context, ref DatasetRef, path string) (metadoc.Document, error) {
	data, err := c.Raw(ctx, ref, path)
	if err != nil {
		return nil, err
	}
	doc, err := metadoc.Parse(data)
	if err != nil {
		return nil, &DecodeError{URL: c.client.ResolveURL(ref, path), Err: err}
	}
	return doc, nil
}

// Info fetches the metadata document, meta/info.json.
func (c *FilesClient) Info(ctx context.Context, ref DatasetRef) (metadoc.Document, error) {
	return c.Document(ctx, ref, InfoPath)
}

// Stats fetches the dataset-wide statistics, meta/stats.json.
func (c *FilesClient) Stats(ctx context.Context, ref DatasetRef) (metadoc.Document, error) {
	return c.Document(ctx, ref, StatsPath)
}
