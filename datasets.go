package robodash

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// DatasetsClient handles the listing and detail endpoints.
type DatasetsClient struct {
	client *Client
}

// Sort orders accepted by the listing endpoint.
const (
	SortLastModified = "lastModified"
	SortDownloads    = "downloads"
	SortLikes        = "likes"
	SortCreatedAt    = "createdAt"
)

// DatasetsListParams represents parameters for listing datasets.
type DatasetsListParams struct {
	// Author defaults to the client namespace.
	Author string
	// Search is a server-side substring filter on the dataset id.
	Search string
	// Sort defaults to SortLastModified. The hub sorts descending.
	Sort string
	// Limit caps the number of results; zero leaves it to the hub.
	Limit int
	// Full requests tags and card data.
	Full bool
}

// ToQuery converts the parameters to URL query values.
func (p *DatasetsListParams) ToQuery(defaultAuthor string) url.Values {
	q := url.Values{}
	author, sort := defaultAuthor, SortLastModified
	if p != nil {
		if p.Author != "" {
			author = p.Author
		}
		if p.Sort != "" {
			sort = p.Sort
		}
		if p.Search != "" {
			q.Set("search", p.Search)
		}
		if p.Limit > 0 {
			q.Set("limit", strconv.Itoa(p.Limit))
		}
		if p.Full {
			q.Set("full", "true")
		}
	}
	q.Set("author", author)
	q.Set("sort", sort)
	return q
}

// List retrieves the datasets of a namespace in a single request.
func (c *DatasetsClient) List(ctx context.Context, params *DatasetsListParams) ([]Dataset, error) {
	if params != nil && params.Limit < 0 {
		return nil, NewValidationError("Limit", "must not be negative")
	}
	u := withQuery(c.client.hubURL("api", "datasets"), params.ToQuery(c.client.Namespace()))

	var result []Dataset
	if err := c.client.http.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []Dataset{}
	}
	return result, nil
}

// Get retrieves one dataset's detail record.
func (c *DatasetsClient) Get(ctx context.Context, ref DatasetRef) (*Dataset, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	var result Dataset
	if err := c.client.http.getJSON(ctx, c.client.hubURL("api", "datasets", ref.Owner, ref.Name), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Files retrieves the repository file listing with sizes.
func (c *DatasetsClient) Files(ctx context.Context, ref DatasetRef) ([]Sibling, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	u := withQuery(c.client.hubURL("api", "datasets", ref.Owner, ref.Name), url.Values{"files_metadata": {"true"}})

	var result Dataset
	if err := c.client.http.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return result.Siblings, nil
}

// Videos returns the dataset's .mp4 files with playback URLs, in listing
// order. A failed listing is logged and yields an empty list; a dataset
// without videos is not an error.
func (c *DatasetsClient) Videos(ctx context.Context, ref DatasetRef) []Video {
	files, err := c.Files(ctx, ref)
	if err != nil {
		c.client.Logger().Warn("video listing failed", "dataset", ref.String(), "error", err)
		return []Video{}
	}
	videos := make([]Video, 0)
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f.RFilename), ".mp4") {
			videos = append(videos, newVideo(f.RFilename, c.client.ResolveURL(ref, f.RFilename), f.Size))
		}
	}
	return videos
}

func validateRef(ref DatasetRef) error {
	if ref.Owner == "" || ref.Name == "" {
		return NewValidationError("ref", "owner and name are required")
	}
	return nil
}
