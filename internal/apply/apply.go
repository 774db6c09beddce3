package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mirrorkit/mirrorkit/internal/catalog"
	"github.com/mirrorkit/mirrorkit/internal/envstore"
	"github.com/mirrorkit/mirrorkit/internal/locations"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

// systemReadTimeout bounds each machine-scope check after an apply.
const systemReadTimeout = 5 * time.Second

// Status is the result of applying one target.
type Status string

const (
	Applied Status = "applied"
	Failed  Status = "failed"
)

// Outcome is the per-target result of an apply.
type Outcome struct {
	Target mirror.Target
	Preset mirror.Preset
	Status Status
	// Err is the failure reason when Status is Failed.
	Err error
	// Warnings are non-fatal problems: locations that could not be
	// cleared, machine-scope overrides, a failed change broadcast.
	Warnings []string
	// Cleared names the locations that held a value and were cleared.
	Cleared []string
	// Written names the locations the new value went to.
	Written []string

	userChanged bool
}

// Report maps each requested target to its outcome.
type Report map[mirror.Target]Outcome

// Failed reports whether any target failed.
func (r Report) Failed() bool {
	for _, o := range r {
		if o.Status == Failed {
			return true
		}
	}
	return false
}

// Targets returns the report's targets in display order.
func (r Report) Targets() []mirror.Target {
	var out []mirror.Target
	for _, t := range mirror.AllTargets() {
		if _, ok := r[t]; ok {
			out = append(out, t)
		}
	}
	var extra []mirror.Target
	for t := range r {
		if _, ok := indexOf(t); !ok {
			extra = append(extra, t)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func indexOf(t mirror.Target) (int, bool) {
	for i, known := range mirror.AllTargets() {
		if known == t {
			return i, true
		}
	}
	return -1, false
}

// Notifier announces a change of the persistent user store.
type Notifier interface {
	Notify() error
}

// Engine applies selections.
type Engine struct {
	catalog  *catalog.Catalog
	layouts  map[mirror.Target]locations.Layout
	notifier Notifier
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets who is told about user-store changes, normally the
// user envstore.Store.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine for the given catalog and layouts.
func New(c *catalog.Catalog, layouts map[mirror.Target]locations.Layout, opts ...Option) *Engine {
	e := &Engine{
		catalog: c,
		layouts: layouts,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply switches every target in selections to the named preset.
func (e *Engine) Apply(ctx context.Context, selections map[mirror.Target]string) Report {
	var (
		mu     sync.Mutex
		report = make(Report, len(selections))
	)

	g, gctx := errgroup.WithContext(ctx)
	for target, name := range selections {
		g.Go(func() error {
			o := e.applyTarget(gctx, target, name)
			mu.Lock()
			report[target] = o
			mu.Unlock()
			// Failures stay in the outcome so other targets keep running.
			return nil
		})
	}
	_ = g.Wait()

	e.notify(report)
	return report
}

// Start runs Apply in the background and delivers the report once.
func (e *Engine) Start(ctx context.Context, selections map[mirror.Target]string) <-chan Report {
	ch := make(chan Report, 1)
	go func() {
		defer close(ch)
		ch <- e.Apply(ctx, selections)
	}()
	return ch
}

func (e *Engine) applyTarget(ctx context.Context, target mirror.Target, name string) Outcome {
	o := Outcome{Target: target}

	layout, ok := e.layouts[target]
	if !ok {
		o.Status, o.Err = Failed, fmt.Errorf("%w %q", mirror.ErrUnknownTarget, target)
		return o
	}
	preset, err := e.catalog.Resolve(target, name)
	if err != nil {
		o.Status, o.Err = Failed, err
		return o
	}
	o.Preset = preset
	log := e.logger.With("target", target, "preset", preset.Name)

	for _, c := range layout.Clear {
		changed, err := c.Clear(ctx)
		if err != nil {
			log.Debug("clear failed", "location", c.Name(), "err", err)
			o.Warnings = append(o.Warnings, fmt.Sprintf("could not clear %s: %v", c.Name(), err))
			continue
		}
		if changed {
			o.Cleared = append(o.Cleared, c.Name())
			if c.Scope() == envstore.ScopeUser {
				o.userChanged = true
			}
		}
	}

	if preset.IsOriginal() {
		o.Warnings = append(o.Warnings, e.checkSystem(ctx, layout)...)
		o.Status = Applied
		return o
	}

	var written []locations.Writer
	for _, w := range layout.Write {
		if err := w.Write(ctx, preset.URL); err != nil {
			log.Debug("write failed, rolling back", "location", w.Name(), "err", err)
			// w itself may be half-written, as with the second of two git rules.
			e.rollback(ctx, &o, append(written, w))
			o.Status = Failed
			o.Err = fmt.Errorf("writing %s: %w", w.Name(), err)
			o.Written = nil
			return o
		}
		written = append(written, w)
		o.Written = append(o.Written, w.Name())
		if w.Scope() == envstore.ScopeUser {
			o.userChanged = true
		}
	}

	o.Warnings = append(o.Warnings, e.checkSystem(ctx, layout)...)
	o.Status = Applied
	return o
}

func (e *Engine) rollback(ctx context.Context, o *Outcome, written []locations.Writer) {
	for _, w := range written {
		if _, err := w.Clear(ctx); err != nil {
			o.Warnings = append(o.Warnings, fmt.Sprintf("could not roll back %s: %v", w.Name(), err))
		}
	}
}

// checkSystem reports machine-scope values that may override the new
// selection. The locations are only read.
func (e *Engine) checkSystem(ctx context.Context, layout locations.Layout) []string {
	var warnings []string
	for _, src := range layout.System {
		rctx, cancel := context.WithTimeout(ctx, systemReadTimeout)
		url, set, err := src.Read(rctx)
		cancel()
		if err != nil {
			e.logger.Debug("system check skipped", "location", src.Name(), "err", err)
			continue
		}
		if set {
			warnings = append(warnings, fmt.Sprintf("%s is set to %s; an administrator policy may restore it over this selection", src.Name(), url))
		}
	}
	return warnings
}

func (e *Engine) notify(report Report) {
	if e.notifier == nil {
		return
	}
	changed := false
	for _, o := range report {
		changed = changed || o.userChanged
	}
	if !changed {
		return
	}
	if err := e.notifier.Notify(); err != nil {
		e.logger.Debug("environment broadcast failed", "err", err)
		for t, o := range report {
			if o.userChanged {
				o.Warnings = append(o.Warnings, fmt.Sprintf("could not broadcast environment change: %v", err))
				report[t] = o
			}
		}
	}
}

// StepKind is the action of a planned step.
type StepKind string

const (
	StepClear StepKind = "clear"
	StepWrite StepKind = "write"
	StepCheck StepKind = "check"
)

// Step is one action Apply would take.
type Step struct {
	Target   mirror.Target
	Kind     StepKind
	Location string
	Value    string
}

// Plan lists the steps Apply would run for selections without touching
// anything. Unknown targets and presets are returned as errors.
func (e *Engine) Plan(selections map[mirror.Target]string) ([]Step, error) {
	var (
		steps []Step
		errs  []error
	)
	targets := make(Report, len(selections))
	for t := range selections {
		targets[t] = Outcome{}
	}
	for _, target := range targets.Targets() {
		layout, ok := e.layouts[target]
		if !ok {
			errs = append(errs, fmt.Errorf("%w %q", mirror.ErrUnknownTarget, target))
			continue
		}
		preset, err := e.catalog.Resolve(target, selections[target])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, c := range layout.Clear {
			steps = append(steps, Step{Target: target, Kind: StepClear, Location: c.Name()})
		}
		if !preset.IsOriginal() {
			for _, w := range layout.Write {
				steps = append(steps, Step{Target: target, Kind: StepWrite, Location: w.Name(), Value: preset.URL})
			}
		}
		for _, s := range layout.System {
			steps = append(steps, Step{Target: target, Kind: StepCheck, Location: s.Name()})
		}
	}
	return steps, errors.Join(errs...)
}
