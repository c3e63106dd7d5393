package viz

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jdziat/robodash"
)

// Key identifies one load of a Panel. A result is applied only while its key
// is the panel's current key.
type Key struct {
	Ref        robodash.DatasetRef `json:"ref"`
	Generation uint64              `json:"generation"`
	LoadID     string              `json:"load_id"`
}

// Panel holds the snapshot of the most recently loaded dataset.
type Panel struct {
	pipeline *Pipeline

	mu      sync.Mutex
	gen     uint64
	key     Key
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewPanel creates an empty Panel.
func NewPanel(pipeline *Pipeline) *Panel {
	return &Panel{pipeline: pipeline, subs: make(map[int]func(Snapshot))}
}

// Load makes ref the current dataset and runs the pipeline for it, blocking
// until every fetcher finished. Results that arrive after a newer Load
// started are discarded.
func (p *Panel) Load(ctx context.Context, ref robodash.DatasetRef) Key {
	key := p.begin(ref)
	p.pipeline.Run(ctx, ref, p.applier(key))
	return key
}

// Start is Load without waiting. done, if not nil, is called when the run
// finished.
func (p *Panel) Start(ctx context.Context, ref robodash.DatasetRef, done func(Key)) Key {
	key := p.begin(ref)
	go func() {
		p.pipeline.Run(ctx, ref, p.applier(key))
		if done != nil {
			done(key)
		}
	}()
	return key
}

func (p *Panel) begin(ref robodash.DatasetRef) Key {
	p.mu.Lock()
	p.gen++
	key := Key{Ref: ref, Generation: p.gen, LoadID: uuid.NewString()}
	p.key = key
	p.snap = Snapshot{Key: key, Ref: ref}
	p.mu.Unlock()

	p.pipeline.config.Metrics.SetGauge("viz.panel.generation", float64(key.Generation))
	p.pipeline.config.Logger.Debug("panel load", "dataset", ref.String(), "generation", key.Generation, "load_id", key.LoadID)
	return key
}

func (p *Panel) applier(key Key) func(func(*Snapshot)) {
	return func(mutate func(*Snapshot)) {
		p.mu.Lock()
		if p.key != key {
			p.mu.Unlock()
			p.pipeline.config.Logger.Debug("dropping superseded result",
				"dataset", key.Ref.String(), "generation", key.Generation)
			p.pipeline.config.Metrics.IncrementCounter("viz.superseded", 1)
			return
		}
		mutate(&p.snap)
		snap := p.snap
		subs := make([]func(Snapshot), 0, len(p.subs))
		for _, fn := range p.subs {
			subs = append(subs, fn)
		}
		p.mu.Unlock()

		for _, fn := range subs {
			fn(snap)
		}
	}
}

// Key returns the current key.
func (p *Panel) Key() Key {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Snapshot returns a copy of the current snapshot. Chart data is shared and
// must not be modified.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Subscribe registers fn to receive the snapshot after every applied
// transition. It returns a function that removes the subscription.
func (p *Panel) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}
