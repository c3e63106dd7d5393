// Package render draws the dashboard and catalog pages.
//
// Charts are go-echarts components collected on one page. The surrounding
// markup (metadata header, status notes, sample table, videos) comes from
// html/template and is placed after the page's <body> tag.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/internal/catalog"
	"github.com/jdziat/robodash/internal/prefs"
	"github.com/jdziat/robodash/pkg/format"
	"github.com/jdziat/robodash/pkg/metadoc"
	"github.com/jdziat/robodash/pkg/stats"
	"github.com/jdziat/robodash/pkg/viz"
)

// MaxSampleRows bounds the preview table.
const MaxSampleRows = 20

// HeaderView is the metadata header of a dashboard.
type HeaderView struct {
	Boxes  []metadoc.Box
	Extra  []metadoc.Entry
	Pretty string
}

// Header builds the metadata boxes and the pretty-printed document.
func Header(meta metadoc.Document) HeaderView {
	if meta == nil {
		return HeaderView{}
	}
	h := HeaderView{Boxes: meta.Summary(), Extra: meta.Extra()}
	if pretty, err := meta.Pretty(); err == nil {
		h.Pretty = string(pretty)
	}
	return h
}

// Note is a status sentence shown in place of a chart.
type Note struct {
	Section string
	Message string
}

// DashboardView is everything the dashboard page shows.
type DashboardView struct {
	Snapshot *viz.Snapshot
	Videos   []robodash.Video
	Prefs    prefs.State
}

type dashboardData struct {
	Title    string
	Version  string
	Header   HeaderView
	Fallback string
	Notes    []Note
	Columns  []string
	Rows     [][]string
	Total    int
	Videos   []robodash.Video
	Dark     bool
	Back     string
}

// Dashboard renders the dashboard page of one dataset.
func Dashboard(w io.Writer, view DashboardView) error {
	snap := view.Snapshot
	if snap == nil {
		snap = &viz.Snapshot{}
	}
	style := newStyle(view.Prefs.DarkMode)

	page := components.NewPage()
	page.PageTitle = safeText(snap.Ref.String())

	data := dashboardData{
		Title:    snap.Ref.String(),
		Version:  snap.Version,
		Fallback: snap.Fallback(),
		Videos:   view.Videos,
		Dark:     view.Prefs.DarkMode,
		Back:     "/?" + view.Prefs.Normalize().Query().Encode(),
	}
	if snap.Meta.Ready() {
		data.Header = Header(snap.Meta.Data)
	} else if snap.Meta.Status == viz.StatusFailed {
		data.Notes = append(data.Notes, Note{"Metadata", snap.Meta.Err})
	}

	b := &builder{page: page, notes: &data.Notes}
	if snap.Family == format.FamilyV3 {
		b.summary(style, snap)
	} else {
		section(b, "Episode lengths", snap.Lengths, func(d []stats.Bucket, n int) components.Charter {
			return style.histogram("Episode lengths", "Frames", d, n)
		})
		section(b, "Rewards", snap.Rewards, func(d []stats.Bucket, n int) components.Charter {
			return style.histogram("Reward distribution", "Reward", d, n)
		})
		section(b, "Mean reward", snap.MeanRewards, func(d []viz.MeanReward, n int) components.Charter {
			return style.meanRewards(d, n)
		})
		section(b, "Action magnitudes", snap.Magnitudes, func(d []stats.Bucket, n int) components.Charter {
			return style.histogram("Action magnitude", "|action|", d, n)
		})
		section(b, "Tasks", snap.Tasks, func(d []stats.TaskCount, n int) components.Charter {
			return style.tasks(d, n)
		})
		section(b, "Length vs reward", snap.LengthVsReward, func(d []viz.LengthReward, n int) components.Charter {
			return style.lengthVsReward(d, n)
		})
		section(b, "Total reward", snap.TotalRewards, func(d []viz.TotalReward, n int) components.Charter {
			return style.totalRewards(d, n)
		})
		section(b, "Time deltas", snap.Deltas, func(d []stats.Bucket, n int) components.Charter {
			return style.histogram("Time between frames", "Seconds", d, n)
		})
		section(b, "Joint means", snap.Joints, func(d []viz.JointMean, n int) components.Charter {
			return style.joints(d, n)
		})
		section(b, "Tasks per episode", snap.TasksPerEpisode, func(d []stats.Bucket, n int) components.Charter {
			return style.histogram("Tasks per episode", "Tasks", d, n)
		})
	}

	switch {
	case snap.Sample.Ready():
		data.Columns = snap.Sample.Data.Columns
		data.Total = snap.Sample.Data.Total
		data.Rows = sampleRows(snap.Sample.Data)
	case snap.Sample.Status == viz.StatusFailed:
		data.Notes = append(data.Notes, Note{"Sample rows", snap.Sample.Err})
	}

	var static bytes.Buffer
	if err := dashboardTmpl.Execute(&static, data); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return writePage(w, page, static.String(), view.Prefs.DarkMode)
}

type builder struct {
	page  *components.Page
	notes *[]Note
}

func (b *builder) note(section, msg string) {
	*b.notes = append(*b.notes, Note{Section: section, Message: msg})
}

// section adds the chart of one metric, or its status note.
func section[T any](b *builder, section string, st viz.State[[]T], chart func([]T, int) components.Charter) {
	switch st.Status {
	case viz.StatusReady:
		if len(st.Data) > 0 {
			b.page.AddCharts(chart(st.Data, st.Skipped))
		}
	case viz.StatusFailed:
		b.note(section, st.Err)
	case viz.StatusLoading:
		b.note(section, "loading")
	}
}

func (b *builder) summary(style chartStyle, snap *viz.Snapshot) {
	if msg := snap.SummaryMessage(); msg != "" {
		b.note("Global statistics", msg)
		return
	}
	if !snap.Summary.Ready() {
		if snap.Summary.Loading() {
			b.note("Global statistics", "loading")
		}
		return
	}
	sum := snap.Summary.Data
	if len(sum.Scalars) > 0 {
		b.page.AddCharts(style.summaryScalars(sum.Scalars))
	}
	for _, v := range sum.Vectors {
		b.page.AddCharts(style.summaryVector(v))
	}
	switch {
	case len(sum.Lengths) > 0:
		b.page.AddCharts(style.histogram("Episode lengths", "Frames", sum.Lengths, 0))
	case sum.LengthsErr != "":
		b.note("Episode lengths", sum.LengthsErr)
	}
}

func sampleRows(s *viz.Sample) [][]string {
	n := min(len(s.Rows), MaxSampleRows)
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(s.Columns))
		for j, col := range s.Columns {
			if v, ok := s.Rows[i][col]; ok {
				row[j] = metadoc.Text(v)
			}
		}
		out[i] = row
	}
	return out
}

// writePage renders the chart page and places static after <body>.
func writePage(w io.Writer, page *components.Page, static string, dark bool) error {
	var buf strings.Builder
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}

	html := buf.String()
	html = strings.Replace(html, "<body>", "<body>\n"+static, 1)
	html = strings.Replace(html, "</head>", stylesheet(dark)+"</head>", 1)

	_, err := io.WriteString(w, html)
	return err
}

func stylesheet(dark bool) string {
	bg, fg, card := "#ffffff", "#1f2328", "#f6f8fa"
	if dark {
		bg, fg, card = "#293441", "#e6edf3", "#1f2730"
	}
	return fmt.Sprintf(`<style>
body { background: %[1]s; color: %[2]s; font-family: sans-serif; margin: 1.5rem; }
a { color: inherit; }
.boxes, .cards { display: flex; flex-wrap: wrap; gap: .75rem; }
.box, .card { background: %[3]s; padding: .75rem 1rem; border-radius: 6px; min-width: 8rem; }
.box .label { font-size: .8rem; opacity: .7; }
.note { background: %[3]s; padding: .5rem 1rem; border-left: 4px solid #d29922; margin: .5rem 0; }
.fallback { font-size: 1.2rem; padding: 2rem; text-align: center; }
table { border-collapse: collapse; font-size: .85rem; }
td, th { border: 1px solid %[3]s; padding: .25rem .5rem; }
.item { background: %[1]s !important; }
</style>
`, bg, fg, card)
}

// CatalogView is everything the catalog page shows.
type CatalogView struct {
	Namespace   string
	Search      string
	Prefs       prefs.State
	Datasets    []robodash.Dataset
	Suggestions []string
	Err         string
}

type catalogLink struct {
	Label  string
	URL    string
	Active bool
}

type catalogCard struct {
	ID        string
	Name      string
	Version   string
	Updated   string
	Likes     int
	Downloads int
	URL       string
}

type catalogData struct {
	CatalogView
	Cards    []catalogCard
	Versions []catalogLink
	Orders   []catalogLink
	Theme    catalogLink
	Dark     bool
}

// Catalog renders the dataset listing page.
func Catalog(w io.Writer, view CatalogView) error {
	st := view.Prefs.Normalize()
	data := catalogData{CatalogView: view, Dark: st.DarkMode}
	data.Prefs = st

	link := func(change func(*prefs.State)) string {
		next := st
		change(&next)
		q := next.Query()
		if view.Search != "" {
			q.Set("q", view.Search)
		}
		return "/?" + q.Encode()
	}
	for _, v := range []string{catalog.VersionAll, catalog.VersionV2, catalog.VersionV3} {
		data.Versions = append(data.Versions, catalogLink{
			Label:  v,
			URL:    link(func(s *prefs.State) { s.Version = v }),
			Active: st.Version == v,
		})
	}
	for _, o := range []string{catalog.OrderRecent, catalog.OrderDownloads, catalog.OrderLikes} {
		data.Orders = append(data.Orders, catalogLink{
			Label:  o,
			URL:    link(func(s *prefs.State) { s.Order = o }),
			Active: st.Order == o,
		})
	}
	themeLabel := "dark mode"
	if st.DarkMode {
		themeLabel = "light mode"
	}
	data.Theme = catalogLink{Label: themeLabel, URL: link(func(s *prefs.State) { s.DarkMode = !s.DarkMode })}

	query := st.Query().Encode()
	for _, d := range view.Datasets {
		card := catalogCard{
			ID:        d.ID,
			Name:      d.Name(),
			Version:   d.Version,
			Likes:     d.Likes,
			Downloads: d.Downloads,
			URL:       "/dataset/" + d.ID + "?" + query,
		}
		if !d.LastModified.IsZero() {
			card.Updated = d.LastModified.Format("2006-01-02")
		}
		data.Cards = append(data.Cards, card)
	}

	var body bytes.Buffer
	if err := catalogTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render catalog: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n%s</head>\n<body>\n%s</body>\n</html>\n",
		template.HTMLEscapeString(view.Namespace+" datasets"), stylesheet(st.DarkMode), body.String())
	return err
}
