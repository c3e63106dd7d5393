package viz

import (
	"fmt"
	"sort"

	rderrors "github.com/jdziat/robodash/pkg/errors"
	"github.com/jdziat/robodash/pkg/field"
	"github.com/jdziat/robodash/pkg/format"
	"github.com/jdziat/robodash/pkg/jsonl"
	"github.com/jdziat/robodash/pkg/metadoc"
	"github.com/jdziat/robodash/pkg/stats"
)

// mainColumns lead the preview table when present.
var mainColumns = []string{"timestamp", "frame_index", "episode_index", "index", "task_index"}

func (r *run) sample() {
	track(r, "sample", func(s *Snapshot) *State[*Sample] { return &s.Sample }, func() (*Sample, int, error) {
		resp, err := r.p.source.Rows(r.ctx, r.ref, r.p.config.TableSampleSize)
		if err != nil {
			return nil, 0, fmt.Errorf("could not sample rows: %w", err)
		}
		rows := resp.Values()
		if len(rows) == 0 {
			return nil, 0, &rderrors.EmptyResultError{What: "rows"}
		}
		return &Sample{Columns: columns(rows), Rows: rows, Total: resp.NumRowsTotal}, 0, nil
	})
}

func columns(rows []map[string]any) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for _, k := range mainColumns {
		if seen[k] {
			out = append(out, k)
			delete(seen, k)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// records returns the objects of a per-episode or per-step source along with
// the number of malformed lines.
func (r *run) records(src format.Source, rules format.Rules) ([]map[string]any, int, error) {
	switch src {
	case format.SourceRows:
		rows, err := r.stepRows()
		return rows, 0, err
	case format.SourceEpisodes:
		return r.lines(rules.EpisodesPath)
	case format.SourceEpisodeStats:
		return r.lines(rules.EpisodeStatsPath)
	default:
		return nil, 0, fmt.Errorf("source %s has no records", src)
	}
}

func (r *run) lines(path string) ([]map[string]any, int, error) {
	data, err := r.file(path)
	if err != nil {
		return nil, 0, err
	}
	res := jsonl.Collect(data, func(l jsonl.Line) (map[string]any, bool) {
		obj := l.Object()
		return obj, obj != nil
	})
	return res.Values, res.Skipped, nil
}

// extract applies get to every record. Records without the field count as
// skipped.
func extract[T any](records []map[string]any, skipped int, paths []string, get func(map[string]any, string) (T, bool)) ([]T, int) {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		v, ok := field.First(rec, paths, get)
		if !ok {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}

func (r *run) lengths(rules format.Rules) {
	track(r, "lengths", func(s *Snapshot) *State[[]stats.Bucket] { return &s.Lengths }, func() ([]stats.Bucket, int, error) {
		recs, skipped, err := r.records(rules.Lengths, rules)
		if err != nil {
			return nil, 0, err
		}
		values, skipped := extract(recs, skipped, rules.LengthFields, field.Int)
		if len(values) == 0 {
			return nil, skipped, &rderrors.EmptyResultError{What: "episode lengths", Skipped: skipped}
		}
		buckets, err := stats.Bucketize(values, r.p.config.LengthBinWidth)
		return buckets, skipped, err
	})
}

func (r *run) rewards(rules format.Rules) {
	track(r, "rewards", func(s *Snapshot) *State[[]stats.Bucket] { return &s.Rewards }, func() ([]stats.Bucket, int, error) {
		recs, skipped, err := r.records(rules.Rewards, rules)
		if err != nil {
			return nil, 0, err
		}
		values, skipped := extract(recs, skipped, rules.RewardFields, field.Scalar)
		if len(values) == 0 {
			return nil, skipped, &rderrors.EmptyResultError{What: "rewards", Skipped: skipped}
		}
		buckets, err := stats.BucketizeFloat(values, r.p.config.RewardBinWidth)
		return buckets, skipped, err
	})
}

func (r *run) meanRewards(rules format.Rules) {
	track(r, "mean_rewards", func(s *Snapshot) *State[[]MeanReward] { return &s.MeanRewards }, func() ([]MeanReward, int, error) {
		if rules.MeanRewards == format.SourceGlobalStats {
			return r.globalMeanReward(rules)
		}
		recs, skipped, err := r.records(rules.MeanRewards, rules)
		if err != nil {
			return nil, 0, err
		}
		out := make([]MeanReward, 0, len(recs))
		for i, rec := range recs {
			mean, ok := field.First(rec, rules.MeanRewardFields, field.Scalar)
			if !ok {
				skipped++
				continue
			}
			episode, ok := field.First(rec, rules.EpisodeKeyFields, field.Int)
			if !ok {
				episode = i
			}
			out = append(out, MeanReward{Episode: episode, Mean: mean})
		}
		if len(out) == 0 {
			return nil, skipped, &rderrors.EmptyResultError{What: "mean rewards", Skipped: skipped}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Episode < out[j].Episode })
		return out, skipped, nil
	})
}

// globalMeanReward reads the dataset-wide mean as a single point.
func (r *run) globalMeanReward(rules format.Rules) ([]MeanReward, int, error) {
	data, err := r.file(rules.StatsPath)
	if err != nil {
		return nil, 0, err
	}
	doc, err := metadoc.Parse(data)
	if err != nil {
		return nil, 0, fmt.Errorf("could not parse %s: %w", rules.StatsPath, err)
	}
	mean, ok := field.First(doc, rules.MeanRewardFields, field.Scalar)
	if !ok {
		return nil, 0, &rderrors.EmptyResultError{What: "global mean reward"}
	}
	return []MeanReward{{Episode: 0, Mean: mean}}, 0, nil
}

func (r *run) magnitudes(rules format.Rules) {
	track(r, "magnitudes", func(s *Snapshot) *State[[]stats.Bucket] { return &s.Magnitudes }, func() ([]stats.Bucket, int, error) {
		recs, skipped, err := r.records(rules.Actions, rules)
		if err != nil {
			return nil, 0, err
		}
		vectors, skipped := extract(recs, skipped, rules.ActionFields, field.Vector)
		if len(vectors) == 0 {
			return nil, skipped, &rderrors.EmptyResultError{What: "actions", Skipped: skipped}
		}
		buckets, err := stats.BucketizeFloat(stats.Magnitudes(vectors), r.p.config.MagnitudeBinWidth)
		return buckets, skipped, err
	})
}

func (r *run) tasks(rules format.Rules) {
	track(r, "tasks", func(s *Snapshot) *State[[]stats.TaskCount] { return &s.Tasks }, func() ([]stats.TaskCount, int, error) {
		recs, skipped, err := r.records(rules.Tasks, rules)
		if err != nil {
			return nil, 0, err
		}
		episodes, skipped := extract(recs, skipped, rules.TaskFields, field.Strings)
		counts := stats.TaskFrequency(episodes, r.p.config.TopTasks)
		if len(counts) == 0 {
			return nil, skipped, &rderrors.EmptyResultError{What: "tasks", Skipped: skipped}
		}
		return counts, skipped, nil
	})
}

func (r *run) deltas(rules format.Rules) {
	track(r, "deltas", func(s *Snapshot) *State[[]stats.Bucket] { return &s.Deltas }, func() ([]stats.Bucket, int, error) {
		recs, skipped, err := r.records(rules.TimeDeltas, rules)
		if err != nil {
			return nil, 0, err
		}
		timestamps, skipped := extract(recs, skipped, rules.TimestampFields, field.Number)
		deltas := stats.TimeDeltas(timestamps)
		if len(deltas) == 0 {
			return nil, skipped, &rderrors.EmptyResultError{What: "time deltas", Skipped: skipped}
		}
		buckets, err := stats.BucketizeFloat(deltas, r.p.config.DeltaBinWidth)
		return buckets, skipped, err
	})
}

func (r *run) joints(rules format.Rules) {
	track(r, "joints", func(s *Snapshot) *State[[]JointMean] { return &s.Joints }, func() ([]JointMean, int, error) {
		recs, skipped, err := r.records(rules.JointMeans, rules)
		if err != nil {
			return nil, 0, err
		}
		vectors, skipped := extract(recs, skipped, rules.StateMeanFields, field.Vector)
		mean, mismatched := stats.MeanVector(vectors)
		skipped += mismatched
		if len(mean) == 0 {
			return nil, skipped, &rderrors.EmptyResultError{What: "joint means", Skipped: skipped}
		}
		out := make([]JointMean, len(mean))
		for i, m := range mean {
			out[i] = JointMean{Joint: fmt.Sprintf("joint%d", i+1), Mean: m}
		}
		return out, skipped, nil
	})
}

func (r *run) tasksPerEpisode(rules format.Rules) {
	track(r, "tasks_per_episode", func(s *Snapshot) *State[[]stats.Bucket] { return &s.TasksPerEpisode }, func() ([]stats.Bucket, int, error) {
		recs, skipped, err := r.records(rules.TasksPerEpisode, rules)
		if err != nil {
			return nil, 0, err
		}
		counts, skipped := extract(recs, skipped, rules.TaskFields, field.Len)
		return stats.TasksPerEpisode(counts), skipped, nil
	})
}
