package viz

import (
	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/format"
	"github.com/jdziat/robodash/pkg/metadoc"
	"github.com/jdziat/robodash/pkg/stats"
)

// Page-level messages.
const (
	// NothingToDisplay is shown when no chart could be built.
	NothingToDisplay = "nothing to display for this dataset"
	// NoGlobalStats is the summary message of a v3 dataset whose global
	// statistics could not be loaded.
	NoGlobalStats = "no global statistics available"
)

// MeanReward is one point of the mean reward series.
type MeanReward struct {
	Episode int     `json:"episode"`
	Mean    float64 `json:"mean"`
}

// LengthReward pairs an episode's length with its mean reward.
type LengthReward struct {
	Episode    int     `json:"episode"`
	Length     int     `json:"length"`
	MeanReward float64 `json:"mean_reward"`
}

// TotalReward is MeanReward times Length for one episode.
type TotalReward struct {
	Episode int     `json:"episode"`
	Total   float64 `json:"total"`
}

// JointMean is the dataset-wide mean of one joint position.
type JointMean struct {
	Joint string  `json:"joint"`
	Mean  float64 `json:"mean"`
}

// Sample is the row preview table.
type Sample struct {
	// Columns lists the well-known step fields first, then the rest sorted.
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	// Total is the number of rows in the split as reported by the endpoint.
	Total int `json:"total"`
}

// Snapshot is the dashboard state of one dataset.
type Snapshot struct {
	Key Key                 `json:"key"`
	Ref robodash.DatasetRef `json:"ref"`

	// Meta is the metadata document the version was read from.
	Meta    State[metadoc.Document] `json:"meta"`
	Version string                  `json:"version,omitempty"`
	Family  format.Family           `json:"family,omitempty"`

	Sample          State[*Sample]            `json:"sample"`
	Lengths         State[[]stats.Bucket]     `json:"lengths"`
	Rewards         State[[]stats.Bucket]     `json:"rewards"`
	MeanRewards     State[[]MeanReward]       `json:"mean_rewards"`
	Magnitudes      State[[]stats.Bucket]     `json:"magnitudes"`
	Tasks           State[[]stats.TaskCount]  `json:"tasks"`
	LengthVsReward  State[[]LengthReward]     `json:"length_vs_reward"`
	TotalRewards    State[[]TotalReward]      `json:"total_rewards"`
	Deltas          State[[]stats.Bucket]     `json:"deltas"`
	Joints          State[[]JointMean]        `json:"joints"`
	TasksPerEpisode State[[]stats.Bucket]     `json:"tasks_per_episode"`
	Summary         State[*Summary]           `json:"summary"`
}

func nonEmpty[T any](s State[[]T]) bool {
	return s.Ready() && len(s.Data) > 0
}

// HasAnyChart reports whether at least one chart has data.
func (s *Snapshot) HasAnyChart() bool {
	return nonEmpty(s.Lengths) ||
		nonEmpty(s.Rewards) ||
		nonEmpty(s.MeanRewards) ||
		nonEmpty(s.Magnitudes) ||
		nonEmpty(s.Tasks) ||
		nonEmpty(s.LengthVsReward) ||
		nonEmpty(s.TotalRewards) ||
		nonEmpty(s.Deltas) ||
		nonEmpty(s.Joints) ||
		nonEmpty(s.TasksPerEpisode) ||
		(s.Summary.Ready() && !s.Summary.Data.Empty())
}

// Loading reports whether any state is still in flight.
func (s *Snapshot) Loading() bool {
	return s.Meta.Loading() ||
		s.Sample.Loading() ||
		s.Lengths.Loading() ||
		s.Rewards.Loading() ||
		s.MeanRewards.Loading() ||
		s.Magnitudes.Loading() ||
		s.Tasks.Loading() ||
		s.LengthVsReward.Loading() ||
		s.TotalRewards.Loading() ||
		s.Deltas.Loading() ||
		s.Joints.Loading() ||
		s.TasksPerEpisode.Loading() ||
		s.Summary.Loading()
}

// Fallback returns the page-level message, or "" when there is something to
// show, loading is still in progress, or the dataset is in the v3 family,
// whose summary carries its own message.
func (s *Snapshot) Fallback() string {
	if s.Loading() || s.Family == format.FamilyV3 || s.HasAnyChart() {
		return ""
	}
	return NothingToDisplay
}

// SummaryMessage returns the message shown in place of the v3 summary, or "".
func (s *Snapshot) SummaryMessage() string {
	if s.Family != format.FamilyV3 {
		return ""
	}
	if s.Summary.Status == StatusFailed || (s.Summary.Ready() && s.Summary.Data.Empty()) {
		return NoGlobalStats
	}
	return ""
}
