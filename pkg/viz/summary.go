package viz

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/parquet-go/parquet-go"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/field"
	"github.com/jdziat/robodash/pkg/format"
	"github.com/jdziat/robodash/pkg/metadoc"
	"github.com/jdziat/robodash/pkg/stats"
)

// ScalarStat is the dataset-wide distribution of one scalar feature.
type ScalarStat struct {
	Name  string   `json:"name"`
	Label string   `json:"label"`
	Mean  float64  `json:"mean"`
	Std   float64  `json:"std"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// VectorStat is the coordinate-wise mean and deviation of one vector
// feature.
type VectorStat struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels"`
	Mean   []float64 `json:"mean"`
	Std    []float64 `json:"std"`
}

// Summary is the dataset-wide statistics section of a v3 dataset.
type Summary struct {
	Boxes   []metadoc.Box `json:"boxes,omitempty"`
	Scalars []ScalarStat  `json:"scalars"`
	Vectors []VectorStat  `json:"vectors"`
	// Lengths histograms episode lengths from the episodes parquet file.
	Lengths []stats.Bucket `json:"lengths,omitempty"`
	// LengthsErr is set when the parquet file could not be read.
	LengthsErr string `json:"lengths_error,omitempty"`
}

// Empty reports whether the summary has no statistics to show.
func (s *Summary) Empty() bool {
	return s == nil || (len(s.Scalars) == 0 && len(s.Vectors) == 0 && len(s.Lengths) == 0)
}

type scalarSpec struct {
	label string
	paths []string
}

var summaryScalars = []scalarSpec{
	{"Reward", []string{"next.reward", "next_reward"}},
	{"Timestamp", []string{"timestamp"}},
	{"Frame index", []string{"frame_index"}},
}

type vectorSpec struct {
	name   string
	prefix string
}

var summaryVectors = []vectorSpec{
	{"observation.state", "S"},
	{"action", "A"},
}

func (r *run) summary(rules format.Rules) {
	r.apply(func(s *Snapshot) { s.Summary = loading[*Summary]() })

	data, err := r.file(rules.StatsPath)
	var doc metadoc.Document
	if err == nil {
		doc, err = metadoc.Parse(data)
	}
	if err != nil {
		r.p.config.Logger.Debug("global statistics unavailable", "dataset", r.ref.String(), "error", err)
		r.p.config.Metrics.IncrementCounter("viz.fetch.failures", 1)
		r.apply(func(s *Snapshot) { s.Summary = failed[*Summary](errors.New(NoGlobalStats), 0) })
		return
	}

	sum := summarize(doc)
	if info, err := r.file(robodash.InfoPath); err == nil {
		if meta, err := metadoc.Parse(info); err == nil {
			sum.Boxes = meta.Summary()
		}
	}

	lengths, err := r.parquetLengths(rules)
	if err == nil {
		sum.Lengths, err = stats.Bucketize(lengths, r.p.config.LengthBinWidth)
	}
	if err != nil {
		r.p.config.Logger.Debug("episode lengths unavailable", "dataset", r.ref.String(), "error", err)
		sum.LengthsErr = err.Error()
	}
	r.apply(func(s *Snapshot) { s.Summary = ready(sum, 0) })
}

func summarize(doc metadoc.Document) *Summary {
	sum := &Summary{}
	for _, def := range summaryScalars {
		for _, name := range def.paths {
			feature, ok := field.Object(doc, name)
			if !ok {
				continue
			}
			mean, okMean := field.Scalar(feature, "mean")
			std, okStd := field.Scalar(feature, "std")
			if !okMean || !okStd {
				continue
			}
			st := ScalarStat{Name: name, Label: def.label, Mean: finite(mean), Std: finite(std)}
			if v, ok := field.Scalar(feature, "min"); ok {
				v = finite(v)
				st.Min = &v
			}
			if v, ok := field.Scalar(feature, "max"); ok {
				v = finite(v)
				st.Max = &v
			}
			sum.Scalars = append(sum.Scalars, st)
			break
		}
	}

	for _, def := range summaryVectors {
		feature, ok := field.Object(doc, def.name)
		if !ok {
			continue
		}
		mean, okMean := field.Vector(feature, "mean")
		std, okStd := field.Vector(feature, "std")
		if !okMean && !okStd {
			continue
		}
		n := max(len(mean), len(std))
		if n == 0 {
			continue
		}
		st := VectorStat{
			Name:   def.name,
			Labels: make([]string, n),
			Mean:   make([]float64, n),
			Std:    make([]float64, n),
		}
		for i := 0; i < n; i++ {
			st.Labels[i] = fmt.Sprintf("%s%d", def.prefix, i+1)
			if i < len(mean) {
				st.Mean[i] = finite(mean[i])
			}
			if i < len(std) {
				st.Std[i] = finite(std[i])
			}
		}
		sum.Vectors = append(sum.Vectors, st)
	}
	return sum
}

// finite maps NaN and infinities to 0 so the summary stays encodable.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parquetLengths reads the length column of the episodes parquet file.
func (r *run) parquetLengths(rules format.Rules) ([]int, error) {
	data, err := r.file(rules.EpisodesParquetPath)
	if err != nil {
		return nil, err
	}
	return ReadParquetLengths(data, rules.LengthFields)
}

// ReadParquetLengths returns the integral values of the first of fields
// present in each row of a parquet file. Rows without one are ignored.
func ReadParquetLengths(data []byte, fields []string) ([]int, error) {
	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("could not open episodes parquet: %w", err)
	}
	reader := parquet.NewReader(pf)
	defer reader.Close()

	var lengths []int
	for {
		row := make(map[string]any)
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("could not read episodes parquet: %w", err)
		}
		for _, name := range fields {
			f, ok := field.AsNumber(row[name])
			if ok && f == math.Trunc(f) {
				lengths = append(lengths, int(f))
				break
			}
		}
	}
	if len(lengths) == 0 {
		return nil, fmt.Errorf("no episode lengths in episodes parquet")
	}
	return lengths, nil
}
