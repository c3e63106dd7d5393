package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/internal/catalog"
	"github.com/jdziat/robodash/internal/prefs"
	"github.com/jdziat/robodash/pkg/format"
	"github.com/jdziat/robodash/pkg/metadoc"
	"github.com/jdziat/robodash/pkg/stats"
	"github.com/jdziat/robodash/pkg/viz"
)

var ref = robodash.DatasetRef{Owner: "lerobot", Name: "pusht"}

func readyState[T any](data T) viz.State[T] {
	return viz.State[T]{Status: viz.StatusReady, Data: data}
}

func failedState[T any](msg string) viz.State[T] {
	return viz.State[T]{Status: viz.StatusFailed, Err: msg}
}

func renderDashboard(t *testing.T, view DashboardView) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Dashboard(&buf, view))
	return buf.String()
}

func TestDashboard_V2(t *testing.T) {
	snap := &viz.Snapshot{
		Ref:     ref,
		Version: "v2.1",
		Family:  format.FamilyV2,
		Meta:    readyState(metadoc.Document{"codebase_version": "v2.1", "fps": 10, "license": "mit"}),
		Lengths: readyState([]stats.Bucket{{Interval: "0-9", Count: 3}}),
		Rewards: failedState[[]stats.Bucket]("could not download meta/episodes.jsonl: boom"),
		Tasks:   readyState([]stats.TaskCount{{Task: "push the T", Count: 2}}),
		Joints:  readyState([]viz.JointMean{{Joint: "joint1", Mean: 0.5}}),
		Sample: readyState(&viz.Sample{
			Columns: []string{"episode_index", "action"},
			Rows:    []map[string]any{{"episode_index": 0, "action": []any{0.1, 0.2}}},
			Total:   1,
		}),
	}

	out := renderDashboard(t, DashboardView{
		Snapshot: snap,
		Videos:   []robodash.Video{{Path: "videos/a.mp4", Name: "a.mp4", URL: "https://example.test/a.mp4"}},
	})

	assert.Contains(t, out, "lerobot/pusht")
	assert.Contains(t, out, "Episode lengths")
	assert.Contains(t, out, "Most frequent tasks")
	assert.Contains(t, out, "Rewards:</strong> could not download meta/episodes.jsonl: boom")
	assert.Contains(t, out, `<div class="label">FPS</div>`)
	assert.Contains(t, out, "<th>license</th>")
	assert.Contains(t, out, "<th>episode_index</th>")
	assert.Contains(t, out, "a.mp4")
	assert.NotContains(t, out, viz.NothingToDisplay)
	assert.Less(t, strings.Index(out, "<body>"), strings.Index(out, "<header>"))
}

func TestDashboard_NothingToDisplay(t *testing.T) {
	snap := &viz.Snapshot{
		Ref:     ref,
		Family:  format.FamilyV2,
		Lengths: failedState[[]stats.Bucket]("episodes unavailable"),
	}
	out := renderDashboard(t, DashboardView{Snapshot: snap})
	assert.Contains(t, out, viz.NothingToDisplay)
	assert.Contains(t, out, "episodes unavailable")
}

func TestDashboard_V3WithoutStats(t *testing.T) {
	snap := &viz.Snapshot{
		Ref:     ref,
		Version: "v3.0",
		Family:  format.FamilyV3,
		Summary: failedState[*viz.Summary](viz.NoGlobalStats),
	}
	out := renderDashboard(t, DashboardView{Snapshot: snap})
	assert.Contains(t, out, viz.NoGlobalStats)
	assert.NotContains(t, out, viz.NothingToDisplay)
}

func TestDashboard_V3Summary(t *testing.T) {
	snap := &viz.Snapshot{
		Ref:    ref,
		Family: format.FamilyV3,
		Summary: readyState(&viz.Summary{
			Scalars:    []viz.ScalarStat{{Name: "next.reward", Label: "Reward", Mean: 0.5}},
			Vectors:    []viz.VectorStat{{Name: "action", Labels: []string{"A1"}, Mean: []float64{1}, Std: []float64{0}}},
			LengthsErr: "could not download meta/episodes/chunk-000/file-000.parquet: gone",
		}),
	}
	out := renderDashboard(t, DashboardView{Snapshot: snap})
	assert.NotContains(t, out, viz.NoGlobalStats)
	assert.Contains(t, out, "file-000.parquet: gone")
}

func TestDashboard_EscapesDatasetTextInCharts(t *testing.T) {
	hostile := "</script><script>alert(1)</script>"
	snap := &viz.Snapshot{
		Ref:     ref,
		Family:  format.FamilyV2,
		Lengths: readyState([]stats.Bucket{{Interval: "<b>0-9", Count: 1}}),
		Tasks:   readyState([]stats.TaskCount{{Task: hostile, Count: 2}}),
		Joints:  readyState([]viz.JointMean{{Joint: "<img src=x>", Mean: 0.5}}),
	}
	out := renderDashboard(t, DashboardView{Snapshot: snap})

	assert.NotContains(t, out, hostile)
	assert.NotContains(t, out, "<script>alert(1)")
	assert.NotContains(t, out, "<img src=x>")
	assert.NotContains(t, out, "<b>0-9")
	assert.Contains(t, out, "alert(1)")
}

func TestDashboard_DarkMode(t *testing.T) {
	snap := &viz.Snapshot{Ref: ref, Lengths: readyState([]stats.Bucket{{Interval: "0-9", Count: 1}})}

	dark := renderDashboard(t, DashboardView{Snapshot: snap, Prefs: prefs.State{DarkMode: true}})
	light := renderDashboard(t, DashboardView{Snapshot: snap})

	assert.Contains(t, dark, darkTheme)
	assert.Contains(t, dark, "#293441")
	assert.NotContains(t, light, "#293441")
	assert.Contains(t, dark, "dark=true")
}

func TestDashboard_LimitsSampleRows(t *testing.T) {
	rows := make([]map[string]any, MaxSampleRows+5)
	for i := range rows {
		rows[i] = map[string]any{"index": i}
	}
	snap := &viz.Snapshot{Ref: ref, Sample: readyState(&viz.Sample{Columns: []string{"index"}, Rows: rows, Total: 100})}
	out := renderDashboard(t, DashboardView{Snapshot: snap})
	assert.Contains(t, out, "20 of 100")
	assert.Contains(t, out, "<td>19</td>")
	assert.NotContains(t, out, "<td>20</td>")
}

func TestHeader(t *testing.T) {
	assert.Equal(t, HeaderView{}, Header(nil))

	h := Header(metadoc.Document{"total_episodes": 5, "robot_type": "aloha", "notes": "x"})
	require.Len(t, h.Boxes, 2)
	assert.Equal(t, "Episodes", h.Boxes[0].Label)
	require.Len(t, h.Extra, 1)
	assert.Equal(t, "notes", h.Extra[0].Key)
	assert.Contains(t, h.Pretty, `"robot_type": "aloha"`)
}

func TestCatalog(t *testing.T) {
	var buf bytes.Buffer
	err := Catalog(&buf, CatalogView{
		Namespace: "lerobot",
		Search:    "push",
		Prefs:     prefs.State{Version: catalog.VersionV2, Order: "bogus"},
		Datasets: []robodash.Dataset{{
			ID:           "lerobot/pusht",
			Version:      "v2.1",
			LastModified: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
			Likes:        7,
			Downloads:    1200,
		}},
		Suggestions: []string{"pusht"},
	})
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "<h3>pusht</h3>")
	assert.Contains(t, out, "updated 2025-03-04")
	assert.Contains(t, out, "7 likes &middot; 1200 downloads")
	assert.Contains(t, out, `href="/dataset/lerobot/pusht?dark=false&amp;order=recent&amp;version=v2"`)
	assert.Contains(t, out, `<option value="pusht">`)
	// Filter links keep the search and flip one parameter.
	assert.Contains(t, out, `order=likes&amp;q=push&amp;version=v2`)
	assert.Contains(t, out, `dark=true&amp;order=recent&amp;q=push&amp;version=v2`)
}

func TestCatalog_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Catalog(&buf, CatalogView{Namespace: "lerobot", Err: "listing failed"}))
	assert.Contains(t, buf.String(), "No datasets match.")
	assert.Contains(t, buf.String(), "listing failed")
}
