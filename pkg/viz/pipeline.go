package viz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/format"
	"github.com/jdziat/robodash/pkg/metadoc"
)

// Pipeline runs the fetchers of one dataset. It holds no per-dataset state
// and is safe for concurrent use.
type Pipeline struct {
	source Source
	config Config
}

// NewPipeline creates a Pipeline reading from source. A nil cfg uses the
// defaults.
func NewPipeline(source Source, cfg *Config) (*Pipeline, error) {
	if source == nil {
		return nil, robodash.NewValidationError("source", "is required")
	}
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &Pipeline{source: source, config: c}, nil
}

// NewClientPipeline creates a Pipeline backed by client. Logger and metrics
// default to the client's.
func NewClientPipeline(client *robodash.Client, cfg *Config) (*Pipeline, error) {
	if client == nil {
		return nil, robodash.NewValidationError("client", "is required")
	}
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.Logger == nil {
		c.Logger = client.Logger()
	}
	if c.Metrics == nil {
		c.Metrics = client.Metrics()
	}
	return NewPipeline(ClientSource{Client: client}, &c)
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() Config { return p.config }

// Build runs every fetcher for ref and returns the final snapshot.
func (p *Pipeline) Build(ctx context.Context, ref robodash.DatasetRef) *Snapshot {
	var mu sync.Mutex
	snap := &Snapshot{Ref: ref}
	p.Run(ctx, ref, func(mutate func(*Snapshot)) {
		mu.Lock()
		defer mu.Unlock()
		mutate(snap)
	})
	return snap
}

// Run executes the fetchers for ref and reports every state transition
// through apply. Calls to apply may come from several goroutines; the caller
// serializes them. Run returns once every fetcher has finished.
func (p *Pipeline) Run(ctx context.Context, ref robodash.DatasetRef, apply func(func(*Snapshot))) {
	start := time.Now()
	r := &run{
		ctx:   ctx,
		ref:   ref,
		p:     p,
		apply: apply,
		files: make(map[string]func() ([]byte, error)),
	}
	r.steps = sync.OnceValues(func() (*robodash.RowsResponse, error) {
		return p.source.Rows(ctx, ref, p.config.StepSampleSize)
	})

	var g errgroup.Group
	g.Go(func() error {
		r.sample()
		return nil
	})
	g.Go(func() error {
		version, ok := r.meta()
		if !ok {
			return nil
		}
		r.metrics(&g, version)
		return nil
	})
	_ = g.Wait()

	p.config.Metrics.RecordDuration("viz.run.duration", time.Since(start))
	p.config.Logger.Debug("dashboard built", "dataset", ref.String(), "duration", time.Since(start))
}

// run is the per-load scope. Documents fetched by several fetchers are
// downloaded once per run.
type run struct {
	ctx   context.Context
	ref   robodash.DatasetRef
	p     *Pipeline
	apply func(func(*Snapshot))

	mu    sync.Mutex
	files map[string]func() ([]byte, error)
	steps func() (*robodash.RowsResponse, error)
}

func (r *run) file(path string) ([]byte, error) {
	r.mu.Lock()
	get, ok := r.files[path]
	if !ok {
		get = sync.OnceValues(func() ([]byte, error) {
			return r.p.source.File(r.ctx, r.ref, path)
		})
		r.files[path] = get
	}
	r.mu.Unlock()

	data, err := get()
	if err != nil {
		return nil, fmt.Errorf("could not download %s: %w", path, err)
	}
	return data, nil
}

func (r *run) stepRows() ([]map[string]any, error) {
	resp, err := r.steps()
	if err != nil {
		return nil, fmt.Errorf("could not sample rows: %w", err)
	}
	return resp.Values(), nil
}

// meta loads the metadata document and resolves the version. It reports
// false when no metric fetcher should run.
func (r *run) meta() (format.Version, bool) {
	r.apply(func(s *Snapshot) { s.Meta = loading[metadoc.Document]() })

	data, err := r.file(robodash.InfoPath)
	if err == nil {
		var doc metadoc.Document
		if doc, err = metadoc.Parse(data); err == nil {
			return r.detect(doc)
		}
		err = fmt.Errorf("could not parse %s: %w", robodash.InfoPath, err)
	}
	r.p.config.Logger.Warn("metadata unavailable", "dataset", r.ref.String(), "error", err)
	r.p.config.Metrics.IncrementCounter("viz.fetch.failures", 1)
	r.apply(func(s *Snapshot) { s.Meta = failed[metadoc.Document](err, 0) })
	return format.Version{}, false
}

func (r *run) detect(doc metadoc.Document) (format.Version, bool) {
	tag := doc.Version()
	version, ok := format.Detect(doc)
	r.apply(func(s *Snapshot) {
		s.Meta = ready(doc, 0)
		s.Version = tag
		s.Family = version.Family()
	})
	if !ok {
		r.p.config.Logger.Info("unsupported codebase version", "dataset", r.ref.String(), "version", tag)
	}
	return version, ok
}

// metrics starts the fetchers the version's rules enable.
func (r *run) metrics(g *errgroup.Group, v format.Version) {
	rules := v.Rules()
	spawn := func(enabled bool, fn func(format.Rules)) {
		if !enabled {
			return
		}
		g.Go(func() error {
			fn(rules)
			return nil
		})
	}

	spawn(rules.Lengths != format.SourceNone, r.lengths)
	spawn(rules.Rewards != format.SourceNone, r.rewards)
	spawn(rules.MeanRewards != format.SourceNone, r.meanRewards)
	spawn(rules.Actions != format.SourceNone, r.magnitudes)
	spawn(rules.Tasks != format.SourceNone, r.tasks)
	spawn(rules.LengthVsReward, r.join)
	spawn(rules.TimeDeltas != format.SourceNone, r.deltas)
	spawn(rules.JointMeans != format.SourceNone, r.joints)
	spawn(rules.TasksPerEpisode != format.SourceNone, r.tasksPerEpisode)
	spawn(rules.GlobalSummary, r.summary)
}

// track moves one metric through loading to ready or failed.
func track[T any](r *run, name string, slot func(*Snapshot) *State[T], fetch func() (T, int, error)) {
	r.apply(func(s *Snapshot) { *slot(s) = loading[T]() })

	start := time.Now()
	data, skipped, err := fetch()
	r.p.config.Metrics.RecordDuration("viz.fetch."+name, time.Since(start))

	if err != nil {
		r.p.config.Logger.Debug("metric failed", "dataset", r.ref.String(), "metric", name, "error", err)
		r.p.config.Metrics.IncrementCounter("viz.fetch.failures", 1)
		r.apply(func(s *Snapshot) { *slot(s) = failed[T](err, skipped) })
		return
	}
	if skipped > 0 {
		r.p.config.Logger.Debug("records skipped", "dataset", r.ref.String(), "metric", name, "skipped", skipped)
	}
	r.apply(func(s *Snapshot) { *slot(s) = ready(data, skipped) })
}
