package metadoc

import "strings"

// Box is one headline value of the metadata summary.
type Box struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
	Text  string `json:"text"`
}

type boxField struct {
	key   string
	label string
}

var boxFields = []boxField{
	{"total_episodes", "Episodes"},
	{"total_frames", "Frames"},
	{"fps", "FPS"},
	{KeyVersion, "Version"},
	{"total_tasks", "Tasks"},
	{"robot_type", "Robot"},
	{"chunks_size", "Chunk size"},
	{"files_size_in_mb", "Total size (MB)"},
	{"data_files_size_in_mb", "Data size (MB)"},
	{"video_files_size_in_mb", "Video size (MB)"},
	{"data_path", "Data path"},
	{"video_path", "Video path"},
}

// Only v2 layouts count videos and chunks at the top level.
var v2BoxFields = []boxField{
	{"total_videos", "Videos"},
	{"total_chunks", "Chunks"},
}

func (d Document) boxFields() []boxField {
	fields := boxFields
	if strings.HasPrefix(d.Version(), "v2") {
		fields = append(append([]boxField(nil), boxFields...), v2BoxFields...)
	}
	return fields
}

// Summary returns the headline boxes in display order: the well-known
// fields that are present, then one box per split.
func (d Document) Summary() []Box {
	var out []Box
	for _, f := range d.boxFields() {
		v, ok := d[f.key]
		if !ok {
			continue
		}
		out = append(out, Box{Key: f.key, Label: f.label, Value: v, Text: Text(v)})
	}
	if splits, ok := d[KeySplits].(map[string]any); ok {
		for _, name := range sortedKeys(splits) {
			v := splits[name]
			out = append(out, Box{
				Key:   "split_" + name,
				Label: "Split: " + name,
				Value: v,
				Text:  Text(v),
			})
		}
	}
	return out
}

// Entry is a key/value pair not shown as a summary box.
type Entry struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Extra returns the fields not covered by Summary, sorted by key. The
// features schema is excluded; see Features.
func (d Document) Extra() []Entry {
	shown := map[string]bool{KeySplits: true, KeyFeatures: true}
	for _, f := range d.boxFields() {
		shown[f.key] = true
	}
	var out []Entry
	for _, k := range sortedKeys(d) {
		if shown[k] {
			continue
		}
		out = append(out, Entry{Key: k, Text: Text(d[k])})
	}
	return out
}
