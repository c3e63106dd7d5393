// Package format describes the on-disk layouts of the dataset formats the
// dashboard understands.
//
// A Version is a closed variant: the only values are V20, V21 and V30, and
// each carries its Rules as data. Fetchers consult the rules instead of
// comparing version strings, so supporting a new layout means adding one
// variant here.
package format

import (
	rderrors "github.com/jdziat/robodash/pkg/errors"
	"github.com/jdziat/robodash/pkg/metadoc"
)

// Family groups versions that share a dashboard layout.
type Family string

const (
	FamilyV2 Family = "v2"
	FamilyV3 Family = "v3"
)

// Source names where a metric's raw values come from.
type Source int

const (
	// SourceNone means the metric is not available for the version.
	SourceNone Source = iota
	// SourceRows is the rows endpoint sample.
	SourceRows
	// SourceEpisodes is the per-episode line-delimited file.
	SourceEpisodes
	// SourceEpisodeStats is the per-episode statistics file.
	SourceEpisodeStats
	// SourceGlobalStats is the dataset-wide statistics document.
	SourceGlobalStats
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceRows:
		return "rows"
	case SourceEpisodes:
		return "episodes"
	case SourceEpisodeStats:
		return "episode_stats"
	case SourceGlobalStats:
		return "global_stats"
	default:
		return "none"
	}
}

// Rules are the per-version file locations and field-access rules.
type Rules struct {
	Family Family

	// Repository-relative paths.
	EpisodesPath        string
	EpisodeStatsPath    string
	StatsPath           string
	EpisodesParquetPath string

	// Metric sources.
	Lengths         Source
	Rewards         Source
	MeanRewards     Source
	Actions         Source
	Tasks           Source
	TimeDeltas      Source
	JointMeans      Source
	TasksPerEpisode Source
	// LengthVsReward joins the episodes file with the episode stats file.
	LengthVsReward bool
	// GlobalSummary renders the dataset-wide statistics section.
	GlobalSummary bool

	// Field alias lists, tried in order.
	RewardFields     []string
	ActionFields     []string
	TimestampFields  []string
	LengthFields     []string
	TaskFields       []string
	EpisodeKeyFields []string
	MeanRewardFields []string
	StateMeanFields  []string
}

// Version is a supported dataset format version.
type Version struct {
	tag   string
	rules *Rules
}

// String returns the version tag, e.g. "v2.1".
func (v Version) String() string { return v.tag }

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool { return v.rules == nil }

// Rules returns a copy of the version's rules.
func (v Version) Rules() Rules {
	if v.rules == nil {
		return Rules{}
	}
	return *v.rules
}

// Family returns the version family.
func (v Version) Family() Family {
	if v.rules == nil {
		return ""
	}
	return v.rules.Family
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.tag), nil
}

const (
	episodesPath     = "meta/episodes.jsonl"
	episodeStatsPath = "meta/episodes_stats.jsonl"
	statsPath        = "meta/stats.json"
	v3EpisodesPath   = "meta/episodes/chunk-000/file-000.parquet"
)

var (
	rewardFields     = []string{"next_reward", "next.reward"}
	actionFields     = []string{"action"}
	timestampFields  = []string{"timestamp"}
	lengthFields     = []string{"length"}
	taskFields       = []string{"tasks"}
	episodeKeyFields = []string{"episode_index"}
	stateMeanFields  = []string{"stats.observation.state.mean"}
)

var (
	// V20 stores per-step values inline in the episodes file and only
	// dataset-wide statistics.
	V20 = Version{tag: "v2.0", rules: &Rules{
		Family:          FamilyV2,
		EpisodesPath:    episodesPath,
		StatsPath:       statsPath,
		Lengths:         SourceEpisodes,
		Rewards:         SourceEpisodes,
		MeanRewards:     SourceGlobalStats,
		Actions:         SourceEpisodes,
		Tasks:           SourceEpisodes,
		TimeDeltas:      SourceRows,
		TasksPerEpisode: SourceEpisodes,
		// No per-episode statistics file, so no joint radar and no join.
		RewardFields:     rewardFields,
		ActionFields:     actionFields,
		TimestampFields:  timestampFields,
		LengthFields:     lengthFields,
		TaskFields:       taskFields,
		EpisodeKeyFields: episodeKeyFields,
		MeanRewardFields: []string{"next_reward.mean", "next.reward.mean"},
		StateMeanFields:  stateMeanFields,
	}}

	// V21 adds the per-episode statistics file and moves per-step values
	// out of the episodes file, so they are sampled from the rows endpoint.
	V21 = Version{tag: "v2.1", rules: &Rules{
		Family:           FamilyV2,
		EpisodesPath:     episodesPath,
		EpisodeStatsPath: episodeStatsPath,
		StatsPath:        statsPath,
		Lengths:          SourceEpisodes,
		Rewards:          SourceRows,
		MeanRewards:      SourceEpisodeStats,
		Actions:          SourceRows,
		Tasks:            SourceEpisodes,
		TimeDeltas:       SourceRows,
		JointMeans:       SourceEpisodeStats,
		TasksPerEpisode:  SourceEpisodes,
		LengthVsReward:   true,
		RewardFields:     rewardFields,
		ActionFields:     actionFields,
		TimestampFields:  timestampFields,
		LengthFields:     lengthFields,
		TaskFields:       taskFields,
		EpisodeKeyFields: episodeKeyFields,
		MeanRewardFields: []string{"stats.next_reward.mean", "stats.next.reward.mean"},
		StateMeanFields:  stateMeanFields,
	}}

	// V30 moves episode metadata to parquet and exposes only global
	// statistics to the dashboard.
	V30 = Version{tag: "v3.0", rules: &Rules{
		Family:              FamilyV3,
		StatsPath:           statsPath,
		EpisodesParquetPath: v3EpisodesPath,
		GlobalSummary:       true,
		RewardFields:        rewardFields,
		ActionFields:        actionFields,
		TimestampFields:     timestampFields,
		LengthFields:        lengthFields,
		EpisodeKeyFields:    episodeKeyFields,
	}}
)

var known = []Version{V20, V21, V30}

// Known returns every supported version, oldest first.
func Known() []Version {
	return append([]Version(nil), known...)
}

// Parse resolves a codebase version tag. An empty tag returns
// errors.ErrNoVersion; an unknown one returns *errors.VersionError.
func Parse(tag string) (Version, error) {
	if tag == "" {
		return Version{}, rderrors.ErrNoVersion
	}
	for _, v := range known {
		if v.tag == tag {
			return v, nil
		}
	}
	return Version{}, &rderrors.VersionError{Tag: tag}
}

// Detect resolves the version of a metadata document. It reports false for a
// missing or unsupported tag.
func Detect(doc metadoc.Document) (Version, bool) {
	v, err := Parse(doc.Version())
	return v, err == nil
}

// FamilyOf returns the family a tag belongs to by prefix, including tags that
// Parse does not support, e.g. "v2.2" is in FamilyV2. It is used for list
// filtering, where unknown minor versions should still group sensibly.
func FamilyOf(tag string) Family {
	switch {
	case len(tag) >= 2 && tag[:2] == "v2":
		return FamilyV2
	case len(tag) >= 2 && tag[:2] == "v3":
		return FamilyV3
	default:
		return ""
	}
}
