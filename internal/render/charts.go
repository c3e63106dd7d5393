package render

import (
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jdziat/robodash/pkg/stats"
	"github.com/jdziat/robodash/pkg/viz"
)

// Dark mode uses the chalk theme shipped with the echarts assets.
const darkTheme = "chalk"

// go-echarts writes chart options into an inline script without HTML
// escaping, so text taken from dataset files must not contain angle
// brackets. They are swapped for their fullwidth forms.
var scriptText = strings.NewReplacer("<", "\uFF1C", ">", "\uFF1E")

func safeText(s string) string {
	return scriptText.Replace(s)
}

func safeTexts(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = safeText(s)
	}
	return out
}

type chartStyle struct {
	theme string
}

func newStyle(dark bool) chartStyle {
	if dark {
		return chartStyle{theme: darkTheme}
	}
	return chartStyle{}
}

func (s chartStyle) common(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{
			Title:    safeText(title),
			Subtitle: safeText(subtitle),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithGridOpts(opts.Grid{
			Left:   "10%",
			Right:  "10%",
			Bottom: "20%",
			Top:    "80",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "100%",
			Height: "400px",
			Theme:  s.theme,
		}),
	}
}

func skippedNote(skipped int) string {
	if skipped == 0 {
		return ""
	}
	return fmt.Sprintf("%d records skipped", skipped)
}

// histogram draws buckets as a bar chart.
func (s chartStyle) histogram(title, xName string, buckets []stats.Bucket, skipped int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(s.common(title, skippedNote(skipped)),
		charts.WithXAxisOpts(opts.XAxis{
			Name: xName,
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Count",
			Type: "value",
		}),
	)...)

	labels := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = safeText(b.Interval)
		data[i] = opts.BarData{Value: b.Count}
	}
	bar.SetXAxis(labels)
	bar.AddSeries("Count", data,
		charts.WithBarChartOpts(opts.BarChart{
			BarGap: "10%",
		}),
	)
	return bar
}

func (s chartStyle) meanRewards(points []viz.MeanReward, skipped int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(s.common("Mean reward per episode", skippedNote(skipped)),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean reward", Type: "value"}),
	)...)

	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		labels[i] = fmt.Sprint(p.Episode)
		data[i] = opts.LineData{Value: p.Mean}
	}
	line.SetXAxis(labels)
	line.AddSeries("Mean reward", data)
	return line
}

func (s chartStyle) totalRewards(points []viz.TotalReward, skipped int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(s.common("Total reward per episode", skippedNote(skipped)),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Total reward", Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
	)...)

	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		labels[i] = fmt.Sprint(p.Episode)
		data[i] = opts.LineData{Value: p.Total}
	}
	line.SetXAxis(labels)
	line.AddSeries("Total reward", data)
	return line
}

func (s chartStyle) lengthVsReward(points []viz.LengthReward, skipped int) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(s.common("Episode length vs mean reward", skippedNote(skipped)),
		charts.WithXAxisOpts(opts.XAxis{Name: "Length", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean reward", Type: "value"}),
	)...)

	data := make([]opts.ScatterData, len(points))
	for i, p := range points {
		data[i] = opts.ScatterData{
			Name:  fmt.Sprintf("episode %d", p.Episode),
			Value: []any{p.Length, p.MeanReward},
		}
	}
	scatter.AddSeries("Episodes", data)
	return scatter
}

func (s chartStyle) tasks(counts []stats.TaskCount, skipped int) *charts.Bar {
	// Horizontal bars: the category axis is y, drawn bottom-up, so the most
	// frequent task goes last.
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		j := len(counts) - 1 - i
		labels[j] = safeText(c.Task)
		data[j] = opts.BarData{Value: c.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(s.common("Most frequent tasks", skippedNote(skipped)),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episodes", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: labels}),
	)...)
	bar.AddSeries("Episodes", data)
	return bar
}

func (s chartStyle) joints(means []viz.JointMean, skipped int) *charts.Radar {
	radar := charts.NewRadar()

	indicators := make([]*opts.Indicator, len(means))
	values := make([]float64, len(means))
	for i, m := range means {
		indicators[i] = &opts.Indicator{Name: safeText(m.Joint)}
		values[i] = m.Mean
	}
	radar.SetGlobalOptions(append(s.common("Mean joint positions", skippedNote(skipped)),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator: indicators,
			Shape:     "polygon",
		}),
	)...)
	radar.AddSeries("Mean", []opts.RadarData{{Name: "Mean", Value: values}})
	return radar
}

func (s chartStyle) summaryScalars(scalars []viz.ScalarStat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(s.common("Global statistics", "mean and standard deviation"),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)...)

	labels := make([]string, len(scalars))
	mean := make([]opts.BarData, len(scalars))
	std := make([]opts.BarData, len(scalars))
	for i, sc := range scalars {
		labels[i] = safeText(sc.Label)
		mean[i] = opts.BarData{Value: sc.Mean}
		std[i] = opts.BarData{Value: sc.Std}
	}
	bar.SetXAxis(labels)
	bar.AddSeries("Mean", mean)
	bar.AddSeries("Std", std)
	return bar
}

func (s chartStyle) summaryVector(v viz.VectorStat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(s.common(v.Name, "per-dimension mean and standard deviation"),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)...)

	mean := make([]opts.BarData, len(v.Mean))
	for i, m := range v.Mean {
		mean[i] = opts.BarData{Value: m}
	}
	std := make([]opts.BarData, len(v.Std))
	for i, m := range v.Std {
		std[i] = opts.BarData{Value: m}
	}
	bar.SetXAxis(safeTexts(v.Labels))
	bar.AddSeries("Mean", mean)
	bar.AddSeries("Std", std)
	return bar
}
