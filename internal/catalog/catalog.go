// Package catalog lists the datasets of a namespace with their format
// versions and filters them for display.
package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/format"
)

// DefaultConcurrency bounds parallel version lookups.
const DefaultConcurrency = 8

// Catalog loads dataset listings.
type Catalog struct {
	client      *robodash.Client
	concurrency int
	limit       int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithConcurrency bounds parallel version lookups.
func WithConcurrency(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLimit caps the number of listed datasets.
func WithLimit(n int) Option {
	return func(c *Catalog) {
		if n >= 0 {
			c.limit = n
		}
	}
}

// New creates a Catalog backed by client.
func New(client *robodash.Client, opts ...Option) *Catalog {
	c := &Catalog{client: client, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load lists the client's namespace, most recently modified first, and fills
// in each dataset's codebase version. A dataset whose version cannot be read
// keeps an empty Version.
func (c *Catalog) Load(ctx context.Context) ([]robodash.Dataset, error) {
	start := time.Now()
	datasets, err := c.client.Datasets().List(ctx, &robodash.DatasetsListParams{
		Sort:  robodash.SortLastModified,
		Limit: c.limit,
	})
	if err != nil {
		return nil, err
	}

	logger := c.client.Logger()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range datasets {
		g.Go(func() error {
			ref := datasets[i].Ref()
			info, err := c.client.Files().Info(gctx, ref)
			if err != nil {
				logger.Debug("version lookup failed", "dataset", ref.String(), "error", err)
				return nil
			}
			datasets[i].Version = info.Version()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.client.Metrics().RecordDuration("catalog.load.duration", time.Since(start))
	c.client.Metrics().SetGauge("catalog.datasets", float64(len(datasets)))
	return datasets, nil
}

// Version filter values.
const (
	VersionAll = "all"
	VersionV2  = string(format.FamilyV2)
	VersionV3  = string(format.FamilyV3)
)

// Order values.
const (
	OrderRecent    = "recent"
	OrderDownloads = "downloads"
	OrderLikes     = "likes"
)

// Query selects and orders catalog entries.
type Query struct {
	Search  string `json:"search,omitempty"`
	Version string `json:"version,omitempty"`
	Order   string `json:"order,omitempty"`
}

// ValidVersion reports whether v is a known version filter.
func ValidVersion(v string) bool {
	return v == VersionAll || v == VersionV2 || v == VersionV3
}

// ValidOrder reports whether o is a known order.
func ValidOrder(o string) bool {
	return o == OrderRecent || o == OrderDownloads || o == OrderLikes
}

// Normalize replaces unknown filter values with the defaults.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if !ValidVersion(q.Version) {
		q.Version = VersionAll
	}
	if !ValidOrder(q.Order) {
		q.Order = OrderRecent
	}
	return q
}

// Filter returns the entries matching q in q's order. The input is not
// modified. No match yields an empty, non-nil slice.
func Filter(entries []robodash.Dataset, q Query) []robodash.Dataset {
	q = q.Normalize()
	search := strings.ToLower(q.Search)

	out := make([]robodash.Dataset, 0, len(entries))
	for _, d := range entries {
		if search != "" && !strings.Contains(strings.ToLower(d.ID), search) {
			continue
		}
		if q.Version != VersionAll && !strings.HasPrefix(d.Version, q.Version) {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch q.Order {
		case OrderDownloads:
			return out[i].Downloads > out[j].Downloads
		case OrderLikes:
			return out[i].Likes > out[j].Likes
		default:
			return out[i].LastModified.After(out[j].LastModified)
		}
	})
	return out
}

// DefaultSuggestions is the number of suggestions shown by default.
const DefaultSuggestions = 8

// Suggestions returns up to n dataset ids containing input, ids whose name
// starts with input first. Empty input yields none.
func Suggestions(entries []robodash.Dataset, input string, n int) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || n <= 0 {
		return []string{}
	}

	var prefix, contains []string
	for _, d := range entries {
		id := strings.ToLower(d.ID)
		switch {
		case strings.HasPrefix(strings.ToLower(d.Name()), input), strings.HasPrefix(id, input):
			prefix = append(prefix, d.ID)
		case strings.Contains(id, input):
			contains = append(contains, d.ID)
		}
	}
	out := append(prefix, contains...)
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// Resolve finds the entry whose id, or failing that whose name, equals query
// case-insensitively.
func Resolve(entries []robodash.Dataset, query string) (robodash.Dataset, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return robodash.Dataset{}, false
	}
	for _, d := range entries {
		if strings.EqualFold(d.ID, query) {
			return d, true
		}
	}
	for _, d := range entries {
		if strings.EqualFold(d.Name(), query) {
			return d, true
		}
	}
	return robodash.Dataset{}, false
}
