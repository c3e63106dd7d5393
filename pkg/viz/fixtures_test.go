package viz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/robodashtest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func filePath(id, path string) string {
	return "/datasets/" + id + "/resolve/main/" + path
}

func newPipeline(t *testing.T) (*Pipeline, *robodashtest.MockServer, *robodashtest.MockLogger) {
	t.Helper()
	client, server := robodashtest.NewTestClient(t)
	logger := robodashtest.NewMockLogger()
	p, err := NewClientPipeline(client, &Config{Logger: logger})
	if err != nil {
		t.Fatalf("NewClientPipeline: %v", err)
	}
	return p, server, logger
}

func stepRows() []map[string]any {
	return []map[string]any{
		{"timestamp": 0.0, "frame_index": 0, "episode_index": 0, "index": 0, "next.reward": 0.0, "action": []float64{3, 4}},
		{"timestamp": 0.5, "frame_index": 1, "episode_index": 0, "index": 1, "next.reward": 0.5, "action": []float64{0, 0}},
		{"timestamp": 1.0, "frame_index": 2, "episode_index": 0, "index": 2, "next.reward": 1.0, "action": []float64{0.6, 0.8}},
		{"timestamp": 1.5, "frame_index": 3, "episode_index": 0, "index": 3, "next.reward": 1.0, "action": []float64{1, 0}},
	}
}

func seedV21(ms *robodashtest.MockServer, id string) {
	ms.SetJSONFile(id, "meta/info.json", map[string]any{
		"codebase_version": "v2.1", "fps": 50, "total_episodes": 3,
	})
	ms.SetJSONLines(id, "meta/episodes.jsonl",
		map[string]any{"episode_index": 0, "length": 12, "tasks": []string{"pick"}},
		map[string]any{"episode_index": 1, "length": 25, "tasks": []string{"pick", "place"}},
		map[string]any{"episode_index": 2, "length": 18, "tasks": []string{"place"}},
	)
	ms.SetJSONLines(id, "meta/episodes_stats.jsonl",
		episodeStats(0, 0.5, 1, 2),
		episodeStats(1, 0.25, 3, 4),
		episodeStats(2, 1, 5, 6),
	)
	ms.SetRows(id, stepRows())
}

func episodeStats(episode int, reward float64, state ...float64) map[string]any {
	return map[string]any{
		"episode_index": episode,
		"stats": map[string]any{
			"next.reward":       map[string]any{"mean": []float64{reward}},
			"observation.state": map[string]any{"mean": state},
		},
	}
}

func seedV20(ms *robodashtest.MockServer, id string) {
	ms.SetJSONFile(id, "meta/info.json", map[string]any{"codebase_version": "v2.0"})
	ms.SetJSONLines(id, "meta/episodes.jsonl",
		map[string]any{"episode_index": 0, "length": 5, "tasks": []string{"push"}, "next_reward": 0.2, "action": []float64{3, 4}},
		map[string]any{"episode_index": 1, "length": 7, "tasks": []string{"push"}, "next_reward": 0.4, "action": []float64{0, 1}},
	)
	ms.SetJSONFile(id, "meta/stats.json", map[string]any{
		"next.reward": map[string]any{"mean": []float64{0.3}},
	})
	ms.SetRows(id, stepRows())
}

// fakeSource serves in-memory files and can hold File calls until released.
type fakeSource struct {
	mu      sync.Mutex
	files   map[string][]byte
	rows    map[string]*robodash.RowsResponse
	gates   map[string]chan struct{}
	entered map[string]chan struct{}
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		files:   make(map[string][]byte),
		rows:    make(map[string]*robodash.RowsResponse),
		gates:   make(map[string]chan struct{}),
		entered: make(map[string]chan struct{}),
		calls:   make(map[string]int),
	}
}

func (f *fakeSource) set(ref robodash.DatasetRef, path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[ref.String()+"/"+path] = []byte(body)
}

// hold makes File calls for ref block until the returned release is called.
// entered is closed once the first call is blocked.
func (f *fakeSource) hold(ref robodash.DatasetRef) (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate, in := make(chan struct{}), make(chan struct{})
	f.gates[ref.String()] = gate
	f.entered[ref.String()] = in
	var once sync.Once
	return in, func() { once.Do(func() { close(gate) }) }
}

func (f *fakeSource) File(ctx context.Context, ref robodash.DatasetRef, path string) ([]byte, error) {
	key := ref.String() + "/" + path
	f.mu.Lock()
	f.calls[key]++
	gate, in := f.gates[ref.String()], f.entered[ref.String()]
	delete(f.entered, ref.String())
	body, ok := f.files[key]
	f.mu.Unlock()

	if in != nil {
		close(in)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, &robodash.APIError{StatusCode: 404, Message: "Entry not found"}
	}
	return body, nil
}

func (f *fakeSource) Rows(ctx context.Context, ref robodash.DatasetRef, length int) (*robodash.RowsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[fmt.Sprintf("%s/rows?length=%d", ref, length)]++
	if resp, ok := f.rows[ref.String()]; ok {
		return resp, nil
	}
	return nil, &robodash.APIError{StatusCode: 404, Message: "not found"}
}

func (f *fakeSource) callCount(ref robodash.DatasetRef, suffix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k, c := range f.calls {
		if strings.HasPrefix(k, ref.String()+"/") && strings.HasSuffix(k, suffix) {
			n += c
		}
	}
	return n
}
