package robodashtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jdziat/robodash"
)

// MockServer is a fake hub that records requests for verification.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*RecordedRequest
	datasets []robodash.Dataset
	files    map[string][]byte
	rows     map[string][]map[string]any

	// ResponseFunc, when set, is consulted before the registered content.
	// Returning a zero status falls through to it.
	ResponseFunc func(r *http.Request) (int, any)
}

// RecordedRequest represents a recorded HTTP request.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
}

// NewMockServer creates a new mock server for testing.
func NewMockServer() *MockServer {
	ms := &MockServer{
		requests: make([]*RecordedRequest, 0),
		files:    make(map[string][]byte),
		rows:     make(map[string][]map[string]any),
	}
	ms.Server = httptest.NewServer(http.HandlerFunc(ms.serve))
	return ms
}

func (ms *MockServer) serve(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	ms.requests = append(ms.requests, &RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	})
	respond := ms.ResponseFunc
	ms.mu.Unlock()

	if respond != nil {
		if status, body := respond(r); status != 0 {
			writeJSON(w, status, body)
			return
		}
	}

	switch {
	case r.URL.Path == "/api/datasets":
		writeJSON(w, http.StatusOK, ms.list(r.URL.Query()))
	case strings.HasPrefix(r.URL.Path, "/api/datasets/"):
		ms.serveDetail(w, r)
	case strings.HasPrefix(r.URL.Path, "/datasets/"):
		ms.serveFile(w, r)
	case r.URL.Path == "/rows":
		ms.serveRows(w, r)
	default:
		notFound(w)
	}
}

func (ms *MockServer) list(q url.Values) []robodash.Dataset {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	author, search := q.Get("author"), strings.ToLower(q.Get("search"))
	out := make([]robodash.Dataset, 0, len(ms.datasets))
	for _, d := range ms.datasets {
		if author != "" && d.Ref().Owner != author {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.ID), search) {
			continue
		}
		out = append(out, d)
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (ms *MockServer) serveDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/datasets/")

	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, d := range ms.datasets {
		if d.ID != id {
			continue
		}
		if r.URL.Query().Get("files_metadata") == "true" && len(d.Siblings) == 0 {
			d.Siblings = ms.siblings(id)
		}
		writeJSON(w, http.StatusOK, d)
		return
	}
	notFound(w)
}

// siblings lists the registered files of a dataset. ms.mu must be held.
func (ms *MockServer) siblings(id string) []robodash.Sibling {
	prefix := id + "/"
	var out []robodash.Sibling
	for key, body := range ms.files {
		if p, ok := strings.CutPrefix(key, prefix); ok {
			out = append(out, robodash.Sibling{RFilename: p, Size: int64(len(body))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RFilename < out[j].RFilename })
	return out
}

// serveFile answers /datasets/{owner}/{name}/resolve/{revision}/{path}.
func (ms *MockServer) serveFile(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/datasets/"), "/", 5)
	if len(parts) != 5 || parts[2] != "resolve" {
		notFound(w)
		return
	}
	key := parts[0] + "/" + parts[1] + "/" + parts[4]

	ms.mu.Lock()
	body, ok := ms.files[key]
	ms.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (ms *MockServer) serveRows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ms.mu.Lock()
	all, ok := ms.rows[q.Get("dataset")]
	ms.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}

	offset, _ := strconv.Atoi(q.Get("offset"))
	length, err := strconv.Atoi(q.Get("length"))
	if err != nil || length <= 0 {
		length = robodash.DefaultRowsLength
	}
	offset = min(max(offset, 0), len(all))
	end := min(offset+length, len(all))

	page := make([]robodash.Row, 0, end-offset)
	for i := offset; i < end; i++ {
		page = append(page, robodash.Row{RowIdx: i, Row: all[i]})
	}
	writeJSON(w, http.StatusOK, robodash.RowsResponse{
		Rows:           page,
		NumRowsTotal:   len(all),
		NumRowsPerPage: length,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Entry not found"})
}

// Content registration

// AddDataset registers a dataset for the listing and detail endpoints.
// Datasets are listed in the order they were added.
func (ms *MockServer) AddDataset(d robodash.Dataset) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.datasets = append(ms.datasets, d)
}

// SetFile registers a raw file of dataset id ("owner/name") at path. It is
// served at any revision.
func (ms *MockServer) SetFile(id, path string, body []byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.files[id+"/"+strings.TrimPrefix(path, "/")] = body
}

// SetJSONFile registers v, encoded as JSON, as a raw file.
func (ms *MockServer) SetJSONFile(id, path string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	ms.SetFile(id, path, body)
}

// SetJSONLines registers one JSON line per value as a raw file.
func (ms *MockServer) SetJSONLines(id, path string, values ...any) {
	var b strings.Builder
	for _, v := range values {
		line, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	ms.SetFile(id, path, []byte(b.String()))
}

// RemoveFile unregisters a raw file.
func (ms *MockServer) RemoveFile(id, path string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.files, id+"/"+strings.TrimPrefix(path, "/"))
}

// SetRows registers the rows served for dataset id by the rows endpoint.
func (ms *MockServer) SetRows(id string, rows []map[string]any) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rows[id] = rows
}

// Response scenarios

// SetResponseFunc sets the response function for customizing responses.
func (ms *MockServer) SetResponseFunc(fn func(r *http.Request) (int, any)) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.ResponseFunc = fn
}

// RespondWithError makes every request fail with status and message.
func (ms *MockServer) RespondWithError(statusCode int, message string) {
	ms.SetResponseFunc(func(r *http.Request) (int, any) {
		return statusCode, map[string]string{"error": message}
	})
}

// FailPath makes requests for exactly path fail with statusCode. Other
// requests are served normally.
func (ms *MockServer) FailPath(path string, statusCode int) {
	ms.SetResponseFunc(func(r *http.Request) (int, any) {
		if r.URL.Path == path {
			return statusCode, map[string]string{"error": http.StatusText(statusCode)}
		}
		return 0, nil
	})
}

// Recorded requests

// Requests returns all recorded requests.
func (ms *MockServer) Requests() []*RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]*RecordedRequest{}, ms.requests...)
}

// RequestCount returns the number of recorded requests.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// Reset clears all recorded requests. Registered content is kept.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = make([]*RecordedRequest, 0)
}

// LastRequest returns the most recent request, or nil if none.
func (ms *MockServer) LastRequest() *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	return ms.requests[len(ms.requests)-1]
}

// HasRequestWithPath returns true if any request matched the given path.
func (ms *MockServer) HasRequestWithPath(path string) bool {
	return len(ms.RequestsWithPath(path)) > 0
}

// RequestsWithPath returns all requests that matched the given path.
func (ms *MockServer) RequestsWithPath(path string) []*RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var matched []*RecordedRequest
	for _, req := range ms.requests {
		if req.Path == path {
			matched = append(matched, req)
		}
	}
	return matched
}

// HasRequestWithPathSuffix reports whether any request path ends in suffix,
// e.g. "/meta/episodes.jsonl".
func (ms *MockServer) HasRequestWithPathSuffix(suffix string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, req := range ms.requests {
		if strings.HasSuffix(req.Path, suffix) {
			return true
		}
	}
	return false
}
