package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/mirrorkit/mirrorkit/internal/envstore"
	"github.com/mirrorkit/mirrorkit/internal/gitcfg"
	"github.com/mirrorkit/mirrorkit/internal/pipcfg"
)

var errReadOnly = errors.New("location is read-only")

// envVar is one variable in one environment scope. Machine variables only
// carry a reader.
type envVar struct {
	store  envstore.Store
	reader envstore.Reader
	scope  string
	name   string
}

func (v *envVar) Name() string  { return v.scope + " " + v.name }
func (v *envVar) Scope() string { return v.scope }

func (v *envVar) Read(context.Context) (string, bool, error) {
	r := v.reader
	if v.store != nil {
		r = v.store
	}
	if r == nil {
		return "", false, nil
	}
	val, ok, err := r.Get(v.name)
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", v.Name(), err)
	}
	val = strings.TrimSpace(val)
	return val, ok && val != "", nil
}

func (v *envVar) Clear(context.Context) (bool, error) {
	if v.store == nil {
		return false, errReadOnly
	}
	changed, err := v.store.Unset(v.name)
	if err != nil {
		return false, fmt.Errorf("clearing %s: %w", v.Name(), err)
	}
	return changed, nil
}

func (v *envVar) Write(_ context.Context, url string) error {
	if v.store == nil {
		return errReadOnly
	}
	if err := v.store.Set(v.name, url); err != nil {
		return fmt.Errorf("writing %s: %w", v.Name(), err)
	}
	return nil
}

// gitRewrite is the set of insteadOf rules in one git config scope. When
// path is set the location is an explicit file that may not exist.
type gitRewrite struct {
	client *gitcfg.Client
	scope  gitcfg.Scope
	label  string
	from   []string
	fs     afero.Fs
	path   string
}

func (g *gitRewrite) Name() string {
	if g.path != "" {
		return "git config --file " + g.path
	}
	return "git config --" + g.scope.String()
}

func (g *gitRewrite) Scope() string { return g.label }

func (g *gitRewrite) missing() bool {
	if g.path == "" || g.fs == nil {
		return false
	}
	ok, err := afero.Exists(g.fs, g.path)
	return err == nil && !ok
}

func (g *gitRewrite) Read(ctx context.Context) (string, bool, error) {
	if g.missing() {
		return "", false, nil
	}
	return g.client.Active(ctx, g.scope, g.from)
}

func (g *gitRewrite) Clear(ctx context.Context) (bool, error) {
	if g.missing() {
		return false, nil
	}
	n, err := g.client.RemoveRewrites(ctx, g.scope, g.from)
	return n > 0, err
}

// Write registers the mirror for every source URL, with and without the
// trailing slash so both clone URL spellings are rewritten.
func (g *gitRewrite) Write(ctx context.Context, url string) error {
	for _, from := range g.from {
		from = strings.TrimRight(from, "/")
		for _, variant := range []string{from, from + "/"} {
			if err := g.client.AddRewrite(ctx, g.scope, url, variant); err != nil {
				return err
			}
		}
	}
	return nil
}

// pipFile is one pip configuration file.
type pipFile struct {
	fs    afero.Fs
	path  string
	scope string
}

func (p *pipFile) Name() string  { return p.path }
func (p *pipFile) Scope() string { return p.scope }

func (p *pipFile) Read(context.Context) (string, bool, error) {
	return pipcfg.Read(p.fs, p.path)
}

func (p *pipFile) Clear(context.Context) (bool, error) {
	return pipcfg.Clear(p.fs, p.path)
}
