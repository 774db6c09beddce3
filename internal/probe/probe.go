package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mirrorkit/mirrorkit/internal/catalog"
	"github.com/mirrorkit/mirrorkit/internal/locations"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

// DefaultTimeout bounds a single source read.
const DefaultTimeout = 5 * time.Second

// Kind classifies a probe result.
type Kind int

const (
	// Unconfigured means no source carries a mirror setting.
	Unconfigured Kind = iota
	// Matched means the first hit equals a catalog preset.
	Matched
	// Unrecognized means the first hit is a URL the catalog does not list.
	Unrecognized
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "preset"
	case Unrecognized:
		return "unrecognized"
	default:
		return "unconfigured"
	}
}

// Skip records a source that gave no signal because it failed.
type Skip struct {
	Source string
	Err    error
}

// State is the detected configuration of one target.
type State struct {
	Target mirror.Target
	Kind   Kind
	// Preset is set when Kind is Matched.
	Preset mirror.Preset
	// URL is the raw value found; empty when Unconfigured.
	URL string
	// Source names the location the value came from.
	Source  string
	Skipped []Skip
}

// Label is the short human form: the preset name, the raw URL, or
// "unconfigured".
func (s State) Label() string {
	switch s.Kind {
	case Matched:
		return s.Preset.Name
	case Unrecognized:
		return s.URL
	default:
		return Unconfigured.String()
	}
}

// Reading is the value of one source as seen by Trace.
type Reading struct {
	Source  string
	Scope   string
	URL     string
	Set     bool
	System  bool
	Err     error
	Elapsed time.Duration
}

// Prober reads target locations.
type Prober struct {
	catalog *catalog.Catalog
	layouts map[mirror.Target]locations.Layout
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the per-source timeout. Values above DefaultTimeout are
// clamped.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 && d <= DefaultTimeout {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger used for skipped sources.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Prober over layouts, matching values against c.
func New(c *catalog.Catalog, layouts map[mirror.Target]locations.Layout, opts ...Option) *Prober {
	p := &Prober{
		catalog: c,
		layouts: layouts,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe walks the sources of target in order and reports the first hit.
func (p *Prober) Probe(ctx context.Context, target mirror.Target) (State, error) {
	layout, ok := p.layouts[target]
	if !ok {
		return State{}, fmt.Errorf("%w %q", mirror.ErrUnknownTarget, target)
	}

	state := State{Target: target}
	for _, src := range layout.Sources {
		url, set, err := p.read(ctx, src)
		if err != nil {
			p.logger.Debug("probe source skipped", "target", target, "source", src.Name(), "err", err)
			state.Skipped = append(state.Skipped, Skip{Source: src.Name(), Err: err})
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if !set {
			continue
		}

		state.URL = url
		state.Source = src.Name()
		if preset, ok := p.catalog.Match(target, url); ok {
			state.Kind = Matched
			state.Preset = preset
		} else {
			state.Kind = Unrecognized
		}
		return state, nil
	}
	return state, nil
}

// ProbeAll probes every target concurrently.
func (p *Prober) ProbeAll(ctx context.Context) map[mirror.Target]State {
	var (
		mu  sync.Mutex
		out = make(map[mirror.Target]State, len(p.layouts))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, target := range mirror.AllTargets() {
		if _, ok := p.layouts[target]; !ok {
			continue
		}
		g.Go(func() error {
			state, _ := p.Probe(ctx, target)
			mu.Lock()
			out[target] = state
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Trace reads every source of target, then its machine-scope locations,
// without stopping at the first hit.
func (p *Prober) Trace(ctx context.Context, target mirror.Target) ([]Reading, error) {
	layout, ok := p.layouts[target]
	if !ok {
		return nil, fmt.Errorf("%w %q", mirror.ErrUnknownTarget, target)
	}

	var readings []Reading
	trace := func(src locations.Source, system bool) {
		start := time.Now()
		url, set, err := p.read(ctx, src)
		readings = append(readings, Reading{
			Source:  src.Name(),
			Scope:   src.Scope(),
			URL:     url,
			Set:     set,
			System:  system,
			Err:     err,
			Elapsed: time.Since(start),
		})
	}
	for _, src := range layout.Sources {
		trace(src, false)
	}
	for _, src := range layout.System {
		trace(src, true)
	}
	return readings, nil
}

// System returns the machine-scope locations of target that carry a value.
func (p *Prober) System(ctx context.Context, target mirror.Target) []Reading {
	layout, ok := p.layouts[target]
	if !ok {
		return nil
	}
	var hits []Reading
	for _, src := range layout.System {
		url, set, err := p.read(ctx, src)
		if err != nil {
			p.logger.Debug("system source skipped", "target", target, "source", src.Name(), "err", err)
			continue
		}
		if set {
			hits = append(hits, Reading{Source: src.Name(), Scope: src.Scope(), URL: url, Set: true, System: true})
		}
	}
	return hits
}

type result struct {
	url string
	set bool
	err error
}

// read runs src.Read under the per-source timeout. A source that does not
// answer in time is abandoned; its goroutine finishes into a buffered channel.
func (p *Prober) read(ctx context.Context, src locations.Source) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		url, set, err := src.Read(ctx)
		ch <- result{url: url, set: set, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return "", false, fmt.Errorf("%w: %s: %w", mirror.ErrProbeTimeout, src.Name(), r.err)
		}
		return r.url, r.set, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", false, fmt.Errorf("%w: %s after %s", mirror.ErrProbeTimeout, src.Name(), p.timeout)
		}
		return "", false, ctx.Err()
	}
}
