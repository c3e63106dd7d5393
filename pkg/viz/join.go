package viz

import (
	"sort"

	rderrors "github.com/jdziat/robodash/pkg/errors"
	"github.com/jdziat/robodash/pkg/field"
	"github.com/jdziat/robodash/pkg/format"
	"github.com/jdziat/robodash/pkg/jsonl"
)

// keyed is one usable record of a joined document.
type keyed struct {
	line    int
	episode int
	hasKey  bool
	value   float64
}

// join pairs episode lengths with per-episode mean rewards. Both outputs
// share one state transition: a failure sets the same message on both.
func (r *run) join(rules format.Rules) {
	r.apply(func(s *Snapshot) {
		s.LengthVsReward = loading[[]LengthReward]()
		s.TotalRewards = loading[[]TotalReward]()
	})

	pairs, skipped, err := r.joinRecords(rules)
	if err == nil && len(pairs) == 0 {
		err = &rderrors.EmptyResultError{What: "episodes to join", Skipped: skipped}
	}
	if err != nil {
		r.p.config.Logger.Debug("metric failed", "dataset", r.ref.String(), "metric", "join", "error", err)
		r.p.config.Metrics.IncrementCounter("viz.fetch.failures", 1)
		r.apply(func(s *Snapshot) {
			s.LengthVsReward = failed[[]LengthReward](err, skipped)
			s.TotalRewards = failed[[]TotalReward](err, skipped)
		})
		return
	}

	totals := make([]TotalReward, len(pairs))
	for i, p := range pairs {
		totals[i] = TotalReward{Episode: p.Episode, Total: p.MeanReward * float64(p.Length)}
	}
	r.apply(func(s *Snapshot) {
		s.LengthVsReward = ready(pairs, skipped)
		s.TotalRewards = ready(totals, skipped)
	})
}

func (r *run) joinRecords(rules format.Rules) ([]LengthReward, int, error) {
	episodes, err := r.file(rules.EpisodesPath)
	if err != nil {
		return nil, 0, err
	}
	episodeStats, err := r.file(rules.EpisodeStatsPath)
	if err != nil {
		return nil, 0, err
	}

	lengths := collectKeyed(episodes, rules.EpisodeKeyFields, func(obj map[string]any) (float64, bool) {
		n, ok := field.First(obj, rules.LengthFields, field.Int)
		return float64(n), ok
	})
	means := collectKeyed(episodeStats, rules.EpisodeKeyFields, func(obj map[string]any) (float64, bool) {
		return field.First(obj, rules.MeanRewardFields, field.Scalar)
	})
	skipped := lengths.Skipped + means.Skipped

	if allKeyed(lengths.Values) && allKeyed(means.Values) {
		return joinByEpisode(lengths.Values, means.Values), skipped, nil
	}
	r.p.config.Logger.Warn("episode_index missing, joining episodes by line position",
		"dataset", r.ref.String(),
		"episodes", len(lengths.Values),
		"episode_stats", len(means.Values),
	)
	return joinByLine(lengths.Values, means.Values), skipped, nil
}

func collectKeyed(data []byte, keyFields []string, value func(map[string]any) (float64, bool)) jsonl.Result[keyed] {
	return jsonl.Collect(data, func(l jsonl.Line) (keyed, bool) {
		obj := l.Object()
		v, ok := value(obj)
		if !ok {
			return keyed{}, false
		}
		k := keyed{line: l.Index, value: v}
		k.episode, k.hasKey = field.First(obj, keyFields, field.Int)
		return k, true
	})
}

func allKeyed(records []keyed) bool {
	for _, rec := range records {
		if !rec.hasKey {
			return false
		}
	}
	return true
}

// joinByEpisode pairs records with equal episode_index. Episodes present in
// only one document are dropped; a repeated index keeps its first record.
func joinByEpisode(lengths, means []keyed) []LengthReward {
	byEpisode := make(map[int]float64, len(means))
	for _, m := range means {
		if _, dup := byEpisode[m.episode]; !dup {
			byEpisode[m.episode] = m.value
		}
	}
	seen := make(map[int]bool, len(lengths))
	out := make([]LengthReward, 0, len(lengths))
	for _, l := range lengths {
		mean, ok := byEpisode[l.episode]
		if !ok || seen[l.episode] {
			continue
		}
		seen[l.episode] = true
		out = append(out, LengthReward{Episode: l.episode, Length: int(l.value), MeanReward: mean})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Episode < out[j].Episode })
	return out
}

// joinByLine pairs records from the same line position.
func joinByLine(lengths, means []keyed) []LengthReward {
	byLine := make(map[int]float64, len(means))
	for _, m := range means {
		byLine[m.line] = m.value
	}
	out := make([]LengthReward, 0, len(lengths))
	for _, l := range lengths {
		mean, ok := byLine[l.line]
		if !ok {
			continue
		}
		out = append(out, LengthReward{Episode: l.line, Length: int(l.value), MeanReward: mean})
	}
	return out
}
