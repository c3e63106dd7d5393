package viz

import (
	"context"

	"github.com/jdziat/robodash"
)

// Source fetches the raw inputs of the pipeline.
type Source interface {
	// File returns a repository file.
	File(ctx context.Context, ref robodash.DatasetRef, path string) ([]byte, error)
	// Rows returns the first length rows of the train split.
	Rows(ctx context.Context, ref robodash.DatasetRef, length int) (*robodash.RowsResponse, error)
}

// ClientSource adapts a *robodash.Client to Source.
type ClientSource struct {
	Client *robodash.Client
}

// File implements Source.
func (s ClientSource) File(ctx context.Context, ref robodash.DatasetRef, path string) ([]byte, error) {
	return s.Client.Files().Raw(ctx, ref, path)
}

// Rows implements Source.
func (s ClientSource) Rows(ctx context.Context, ref robodash.DatasetRef, length int) (*robodash.RowsResponse, error) {
	return s.Client.Rows().Get(ctx, ref, &robodash.RowsParams{Length: length})
}
