package viz

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/format"
	"github.com/jdziat/robodash/pkg/metadoc"
	"github.com/jdziat/robodash/pkg/stats"
)

type episodeRow struct {
	EpisodeIndex int64 `parquet:"episode_index"`
	Length       int64 `parquet:"length"`
}

func episodesParquet(t *testing.T, lengths ...int64) []byte {
	t.Helper()
	rows := make([]episodeRow, len(lengths))
	for i, n := range lengths {
		rows[i] = episodeRow{EpisodeIndex: int64(i), Length: n}
	}
	var buf bytes.Buffer
	require.NoError(t, parquet.Write(&buf, rows))
	return buf.Bytes()
}

func TestBuild_V3_NoGlobalStats(t *testing.T) {
	p, server, _ := newPipeline(t)
	const id = "lerobot/so100"
	server.SetJSONFile(id, "meta/info.json", map[string]any{"codebase_version": "v3.0", "total_episodes": 4})
	server.SetRows(id, stepRows())

	snap := p.Build(context.Background(), robodash.MustParseRef(id))

	assert.Equal(t, format.FamilyV3, snap.Family)
	assert.Equal(t, StatusFailed, snap.Summary.Status)
	assert.Equal(t, NoGlobalStats, snap.Summary.Err)
	assert.Equal(t, NoGlobalStats, snap.SummaryMessage())
	assert.Empty(t, snap.Fallback())

	assert.False(t, server.HasRequestWithPathSuffix("/meta/episodes.jsonl"))
	assert.False(t, server.HasRequestWithPathSuffix("/meta/episodes_stats.jsonl"))
	assert.False(t, server.HasRequestWithPathSuffix(".parquet"))
	for _, req := range server.RequestsWithPath("/rows") {
		assert.Equal(t, "100", req.Query.Get("length"))
	}
	for _, st := range []Status{snap.Lengths.Status, snap.Rewards.Status, snap.Deltas.Status, snap.Joints.Status} {
		assert.Equal(t, StatusIdle, st)
	}
}

func TestBuild_V3_Summary(t *testing.T) {
	p, server, _ := newPipeline(t)
	const id = "lerobot/so100"
	server.SetJSONFile(id, "meta/info.json", map[string]any{"codebase_version": "v3.0", "total_episodes": 3, "fps": 30})
	server.SetJSONFile(id, "meta/stats.json", map[string]any{
		"next.reward":       map[string]any{"mean": []float64{0.5}, "std": []float64{0.1}, "min": []float64{0}, "max": []float64{1}},
		"timestamp":         map[string]any{"mean": []float64{4}, "std": []float64{2}},
		"observation.state": map[string]any{"mean": []float64{1, 2, 3}, "std": []float64{0.1, 0.2}},
		"action":            map[string]any{"mean": []float64{0.5}, "std": []float64{0.05}},
	})
	server.SetFile(id, "meta/episodes/chunk-000/file-000.parquet", episodesParquet(t, 12, 15, 31))

	snap := p.Build(context.Background(), robodash.MustParseRef(id))

	require.True(t, snap.Summary.Ready(), snap.Summary.Err)
	sum := snap.Summary.Data
	require.Len(t, sum.Scalars, 2)
	assert.Equal(t, "next.reward", sum.Scalars[0].Name)
	assert.Equal(t, "Reward", sum.Scalars[0].Label)
	assert.Equal(t, 0.5, sum.Scalars[0].Mean)
	require.NotNil(t, sum.Scalars[0].Max)
	assert.Equal(t, 1.0, *sum.Scalars[0].Max)
	assert.Equal(t, "timestamp", sum.Scalars[1].Name)
	assert.Nil(t, sum.Scalars[1].Min)

	require.Len(t, sum.Vectors, 2)
	assert.Equal(t, []string{"S1", "S2", "S3"}, sum.Vectors[0].Labels)
	assert.Equal(t, []float64{0.1, 0.2, 0}, sum.Vectors[0].Std)
	assert.Equal(t, []string{"A1"}, sum.Vectors[1].Labels)

	assert.Equal(t, []stats.Bucket{{Interval: "10-19", Count: 2}, {Interval: "30-39", Count: 1}}, sum.Lengths)
	assert.Empty(t, sum.LengthsErr)
	assert.NotEmpty(t, sum.Boxes)

	assert.Empty(t, snap.SummaryMessage())
	assert.True(t, snap.HasAnyChart())
}

func TestBuild_V3_ParquetFailureKeepsSummary(t *testing.T) {
	p, server, _ := newPipeline(t)
	const id = "lerobot/so100"
	server.SetJSONFile(id, "meta/info.json", map[string]any{"codebase_version": "v3.0"})
	server.SetJSONFile(id, "meta/stats.json", map[string]any{
		"frame_index": map[string]any{"mean": 10, "std": 3},
	})
	server.SetFile(id, "meta/episodes/chunk-000/file-000.parquet", []byte("not parquet"))

	snap := p.Build(context.Background(), robodash.MustParseRef(id))

	require.True(t, snap.Summary.Ready())
	assert.Len(t, snap.Summary.Data.Scalars, 1)
	assert.Empty(t, snap.Summary.Data.Lengths)
	assert.Contains(t, snap.Summary.Data.LengthsErr, "episodes parquet")
}

func TestSummarize_NonFinite(t *testing.T) {
	sum := summarize(metadoc.Document{
		"timestamp":   map[string]any{"mean": math.NaN(), "std": math.Inf(1)},
		"frame_index": map[string]any{"mean": 1.0},
	})

	require.Len(t, sum.Scalars, 1)
	assert.Equal(t, 0.0, sum.Scalars[0].Mean)
	assert.Equal(t, 0.0, sum.Scalars[0].Std)
	assert.Empty(t, sum.Vectors)
	assert.False(t, sum.Empty())
	assert.True(t, (&Summary{}).Empty())
}

func TestReadParquetLengths(t *testing.T) {
	got, err := ReadParquetLengths(episodesParquet(t, 3, 4), []string{"length"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, got)

	_, err = ReadParquetLengths(episodesParquet(t, 3), []string{"duration"})
	assert.Error(t, err)
}
