package robodash

import (
	"context"
	"net/url"
	"strconv"
)

// RowsClient samples rows from the dataset viewer.
type RowsClient struct {
	client *Client
}

// RowsParams selects one page of rows.
type RowsParams struct {
	// Config defaults to "default".
	Config string
	// Split defaults to "train".
	Split  string
	Offset int
	// Length defaults to DefaultRowsLength and may not exceed MaxRowsLength.
	Length int
}

func (p *RowsParams) withDefaults() RowsParams {
	out := RowsParams{Config: "default", Split: "train", Length: DefaultRowsLength}
	if p == nil {
		return out
	}
	if p.Config != "" {
		out.Config = p.Config
	}
	if p.Split != "" {
		out.Split = p.Split
	}
	if p.Length != 0 {
		out.Length = p.Length
	}
	out.Offset = p.Offset
	return out
}

// Get fetches one page of rows. Only a single request is made; callers that
// need more rows page with Offset themselves.
func (c *RowsClient) Get(ctx context.Context, ref DatasetRef, params *RowsParams) (*RowsResponse, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	p := params.withDefaults()
	if p.Offset < 0 {
		return nil, NewValidationError("Offset", "must not be negative")
	}
	if p.Length < 1 || p.Length > MaxRowsLength {
		return nil, NewValidationError("Length", "must be between 1 and "+strconv.Itoa(MaxRowsLength))
	}

	q := url.Values{}
	q.Set("dataset", ref.String())
	q.Set("config", p.Config)
	q.Set("split", p.Split)
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("length", strconv.Itoa(p.Length))

	var result RowsResponse
	if err := c.client.http.getJSON(ctx, withQuery(joinURL(c.client.config.RowsURL, "rows"), q), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
