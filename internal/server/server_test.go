package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/internal/prefs"
	"github.com/jdziat/robodash/internal/telemetry"
	"github.com/jdziat/robodash/pkg/viz"
	"github.com/jdziat/robodash/robodashtest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

const (
	pushtID = "lerobot/pusht"
	alohaID = "lerobot/aloha_sim"
)

type fixture struct {
	srv   *Server
	ts    *httptest.Server
	hub   *robodashtest.MockServer
	store *prefs.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	collector := telemetry.NewCollector()
	client, hub := robodashtest.NewTestClientWithConfig(t, robodash.WithMetrics(collector))

	hub.AddDataset(robodash.Dataset{
		ID:           pushtID,
		LastModified: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Likes:        3,
		Downloads:    10,
	})
	hub.SetJSONFile(pushtID, "meta/info.json", map[string]any{"codebase_version": "v2.0", "fps": 10})
	hub.SetJSONLines(pushtID, "meta/episodes.jsonl",
		map[string]any{"episode_index": 0, "length": 5, "tasks": []string{"push"}},
		map[string]any{"episode_index": 1, "length": 15, "tasks": []string{"push"}},
	)
	hub.SetFile(pushtID, "videos/chunk-000/observation.image/episode_000000.mp4", []byte("mp4"))

	hub.AddDataset(robodash.Dataset{
		ID:           alohaID,
		LastModified: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	hub.SetJSONFile(alohaID, "meta/info.json", map[string]any{"codebase_version": "v3.0", "fps": 50})

	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.yaml"))
	require.NoError(t, err)

	srv, err := New(client, WithPrefs(store), WithCollector(collector), WithLoadTimeout(10*time.Second))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return &fixture{srv: srv, ts: ts, hub: hub, store: store}
}

func (f *fixture) do(t *testing.T, client *http.Client, method, path, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, f.ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if client == nil {
		client = f.ts.Client()
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return f.do(t, nil, http.MethodGet, path, "")
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Equal(t, robodash.ErrCodeValidation, robodash.CodeOf(err))
}

func TestCatalogPage(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<h3>pusht</h3>")
	assert.Contains(t, body, "<h3>aloha_sim</h3>")
	// Most recently modified first.
	assert.Less(t, strings.Index(body, "aloha_sim</h3>"), strings.Index(body, "pusht</h3>"))

	resp, body = f.get(t, "/?version=v3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h3>aloha_sim</h3>")
	assert.NotContains(t, body, "<h3>pusht</h3>")
	assert.Equal(t, "v3", f.store.State().Version)

	// The filter is remembered.
	_, body = f.get(t, "/")
	assert.NotContains(t, body, "<h3>pusht</h3>")
}

func TestCatalogPage_SearchAndRedirect(t *testing.T) {
	f := newFixture(t)

	_, body := f.get(t, "/?q=push")
	assert.Contains(t, body, "<h3>pusht</h3>")
	assert.NotContains(t, body, "<h3>aloha_sim</h3>")

	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, _ := f.do(t, noFollow, http.MethodGet, "/?q=PushT", "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/dataset/lerobot/pusht?"))
}

func TestCatalogPage_HubDown(t *testing.T) {
	f := newFixture(t)
	f.hub.RespondWithError(http.StatusInternalServerError, "down")

	resp, body := f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "could not list datasets")
	assert.Contains(t, body, "No datasets match.")
}

func TestDashboardPage(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/dataset/lerobot/pusht")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "lerobot/pusht")
	assert.Contains(t, body, "Episode lengths")
	assert.Contains(t, body, "episode_000000.mp4")
	assert.NotContains(t, body, viz.NothingToDisplay)
}

func TestDashboardPage_V3WithoutStats(t *testing.T) {
	f := newFixture(t)

	_, body := f.get(t, "/dataset/lerobot/aloha_sim")
	assert.Contains(t, body, viz.NoGlobalStats)
}

func TestAPI_List(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/datasets?version=v2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got listResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Equal(t, 1, got.Total)
	assert.Equal(t, pushtID, got.Datasets[0].ID)
	assert.Equal(t, "v2.0", got.Datasets[0].Version)

	_, body = f.get(t, "/api/datasets?q=nothing")
	assert.Contains(t, body, `"datasets":[]`)
}

func TestDatasets_ListsOnEveryRequestByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.srv.datasets(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	f.hub.AddDataset(robodash.Dataset{ID: "lerobot/xarm"})
	all, err = f.srv.datasets(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDatasets_CatalogTTL(t *testing.T) {
	f := newFixture(t)
	srv, err := New(f.srv.client, WithCatalogTTL(time.Hour))
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	ctx := context.Background()

	all, err := srv.datasets(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	f.hub.AddDataset(robodash.Dataset{ID: "lerobot/xarm"})
	all, err = srv.datasets(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	all, err = srv.datasets(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDatasets_CancelledCallerLeavesSharedLoadRunning(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.srv.datasets(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)

	all, err := f.srv.datasets(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAPI_Detail(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/datasets/lerobot/pusht")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"id":"lerobot/pusht"`)

	resp, body = f.get(t, "/api/datasets/lerobot/missing")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var e errorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &e))
	assert.Equal(t, string(robodash.ErrCodeNotFound), e.Code)
}

func TestAPI_Meta(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/datasets/lerobot/pusht/meta")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"codebase_version": "v2.0"`)
}

func TestAPI_Viz(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/datasets/lerobot/pusht/viz")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "v2.0", got["version"])
	lengths := got["lengths"].(map[string]any)
	assert.Equal(t, "ready", lengths["status"])
}

func TestAPI_Videos(t *testing.T) {
	f := newFixture(t)

	_, body := f.get(t, "/api/datasets/lerobot/pusht/videos")
	var got videosResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got.Videos, 1)
	assert.Equal(t, "episode_000000.mp4", got.Videos[0].Name)
	assert.Contains(t, got.Videos[0].URL, "/resolve/")

	_, body = f.get(t, "/api/datasets/lerobot/aloha_sim/videos")
	assert.Contains(t, body, `"videos":[]`)
}

func TestAPI_Prefs(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, nil, http.MethodPost, "/api/prefs", `{"dark_mode":true,"order":"likes"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	want := prefs.State{DarkMode: true, Version: "all", Order: "likes"}
	assert.Equal(t, want, f.store.State())

	_, body = f.get(t, "/api/prefs")
	var got prefs.State
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, want, got)

	resp, _ = f.do(t, nil, http.MethodPost, "/api/prefs", `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, nil, http.MethodPost, "/api/prefs", `{"theme":"dark"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionPanel(t *testing.T) {
	f := newFixture(t)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{Jar: jar}

	resp, _ := f.do(t, browser, http.MethodGet, "/api/session/panel?dataset=lerobot/pusht", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())
	assert.Equal(t, SessionCookie, resp.Cookies()[0].Name)

	var got map[string]any
	require.Eventually(t, func() bool {
		_, body := f.do(t, browser, http.MethodGet, "/api/session/panel", "")
		got = nil
		return json.Unmarshal([]byte(body), &got) == nil && got["loading"] == false
	}, 5*time.Second, 20*time.Millisecond)

	snap := got["snapshot"].(map[string]any)
	assert.Equal(t, "v2.0", snap["version"])
	ref := snap["ref"].(map[string]any)
	assert.Equal(t, "pusht", ref["name"])

	// Another browser has its own panel.
	_, body := f.get(t, "/api/session/panel")
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Nil(t, got["snapshot"].(map[string]any)["version"])

	resp, _ = f.do(t, browser, http.MethodGet, "/api/session/panel?dataset=nope", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsAndHealth(t *testing.T) {
	f := newFixture(t)
	f.get(t, "/api/datasets")

	resp, body := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `route="GET /api/datasets"`)
	assert.Contains(t, body, "robodash_events_total")
	assert.Contains(t, body, `name="robodash.http.requests"`)
	assert.Contains(t, body, `name="catalog.load.duration"`)

	resp, body = f.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "healthy")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/health", ln.Addr())
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	require.Eventually(t, func() bool {
		resp, err := client.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{robodash.NewValidationError("ref", "bad"), http.StatusBadRequest},
		{&robodash.APIError{StatusCode: http.StatusNotFound}, http.StatusNotFound},
		{&robodash.APIError{StatusCode: http.StatusTooManyRequests}, http.StatusTooManyRequests},
		{&robodash.APIError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway},
		{fmt.Errorf("load: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("dial tcp: refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}
