package robodash

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// DatasetRef identifies a dataset repository as owner/name.
type DatasetRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ParseRef parses "owner/name".
func ParseRef(s string) (DatasetRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return DatasetRef{}, NewValidationError("ref", "expected owner/name, got "+strconv.Quote(s))
	}
	if strings.ContainsAny(owner+name, " \t?#") {
		return DatasetRef{}, NewValidationError("ref", "owner/name contains invalid characters")
	}
	return DatasetRef{Owner: owner, Name: name}, nil
}

// MustParseRef is like ParseRef but panics on error. It is meant for
// constants in tests and examples.
func MustParseRef(s string) DatasetRef {
	ref, err := ParseRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// String returns "owner/name".
func (r DatasetRef) String() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether r is unset.
func (r DatasetRef) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// Dataset is a dataset record from the listing or detail endpoint.
type Dataset struct {
	ID           string         `json:"id"`
	Author       string         `json:"author,omitempty"`
	Description  string         `json:"description,omitempty"`
	LastModified time.Time      `json:"lastModified"`
	CreatedAt    time.Time      `json:"createdAt,omitempty"`
	Likes        int            `json:"likes"`
	Downloads    int            `json:"downloads"`
	Tags         []string       `json:"tags,omitempty"`
	Private      bool           `json:"private,omitempty"`
	Disabled     bool           `json:"disabled,omitempty"`
	SHA          string         `json:"sha,omitempty"`
	CardData     map[string]any `json:"cardData,omitempty"`
	Siblings     []Sibling      `json:"siblings,omitempty"`

	// Version is the codebase version from meta/info.json. The hub does not
	// return it; the catalog fills it in.
	Version string `json:"codebase_version,omitempty"`
}

// Ref returns the dataset's owner/name reference.
func (d Dataset) Ref() DatasetRef {
	if owner, name, ok := strings.Cut(d.ID, "/"); ok {
		return DatasetRef{Owner: owner, Name: name}
	}
	return DatasetRef{Owner: d.Author, Name: d.ID}
}

// Name returns the display name, the part of the ID after the owner.
func (d Dataset) Name() string {
	if _, name, ok := strings.Cut(d.ID, "/"); ok {
		return name
	}
	return d.ID
}

// Sibling is one file of a dataset repository.
type Sibling struct {
	RFilename string `json:"rfilename"`
	Size      int64  `json:"size,omitempty"`
	BlobID    string `json:"blobId,omitempty"`
}

// Video is a playable video file of a dataset.
type Video struct {
	// Path is the repository-relative path.
	Path string `json:"path"`
	// Name is the file name without directories.
	Name string `json:"name"`
	// URL resolves the file for playback.
	URL  string `json:"url"`
	Size int64  `json:"size,omitempty"`
}

func newVideo(repoPath, url string, size int64) Video {
	return Video{Path: repoPath, Name: path.Base(repoPath), URL: url, Size: size}
}

// Row is one row of the rows endpoint.
type Row struct {
	RowIdx         int            `json:"row_idx"`
	Row            map[string]any `json:"row"`
	TruncatedCells []string       `json:"truncated_cells,omitempty"`
}

// RowFeature describes one column of the rows endpoint.
type RowFeature struct {
	FeatureIdx int            `json:"feature_idx"`
	Name       string         `json:"name"`
	Type       map[string]any `json:"type,omitempty"`
}

// RowsResponse is the rows endpoint response.
type RowsResponse struct {
	Features       []RowFeature `json:"features"`
	Rows           []Row        `json:"rows"`
	NumRowsTotal   int          `json:"num_rows_total"`
	NumRowsPerPage int          `json:"num_rows_per_page"`
	Partial        bool         `json:"partial"`
}

// Values returns the inner row objects.
func (r *RowsResponse) Values() []map[string]any {
	if r == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.Row != nil {
			out = append(out, row.Row)
		}
	}
	return out
}
