package locations

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"github.com/mirrorkit/mirrorkit/internal/envstore"
	"github.com/mirrorkit/mirrorkit/internal/gitcfg"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/pipcfg"
)

// Variable names the tools read.
const (
	VarPipIndexURL   = "PIP_INDEX_URL"
	VarHFEndpoint    = "HF_ENDPOINT"
	VarHFHubEndpoint = "HF_HUB_ENDPOINT"
)

// Scope labels beyond the envstore scopes.
const (
	ScopeGitGlobal = "git-global"
	ScopeGitXDG    = "git-xdg"
	ScopeGitSystem = "git-system"
	ScopeFile      = "file"
	ScopeSystem    = "system-file"
)

// Source is a location that can be read.
type Source interface {
	Name() string
	Scope() string
	// Read returns the mirror URL stored at the location, if any.
	Read(ctx context.Context) (string, bool, error)
}

// Clearer is a Source whose setting can be removed. Removing an absent
// setting succeeds with changed == false.
type Clearer interface {
	Source
	Clear(ctx context.Context) (changed bool, err error)
}

// Writer is a Clearer that can store a new URL.
type Writer interface {
	Clearer
	Write(ctx context.Context, url string) error
}

// Layout is the full set of locations of one target.
type Layout struct {
	Target mirror.Target
	// Sources in probe precedence order.
	Sources []Source
	// Clear lists every location the clear phase reaches.
	Clear []Clearer
	// Write lists the writers of a new selection, in order.
	Write []Writer
	// System lists machine-scope locations. They are never modified.
	System []Source
}

// Env is the set of capabilities the layouts are built from.
type Env struct {
	Process envstore.Store
	User    envstore.Store
	Machine envstore.Reader
	Fs      afero.Fs
	Git     *gitcfg.Client
	// RewriteFrom lists the URLs Git rewrite rules replace.
	RewriteFrom []string
	Pip         pipcfg.Paths
	// GitXDGConfig is $XDG_CONFIG_HOME/git/config; skipped when empty.
	GitXDGConfig string
}

// GitXDGConfigPath returns the XDG git config file git itself reads.
func GitXDGConfigPath(getenv func(string) string, home string) string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "git", "config")
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "git", "config")
}

// DefaultPipPaths returns the pip files of the running platform.
func DefaultPipPaths(getenv func(string) string, home string) pipcfg.Paths {
	return pipcfg.ForPlatform(runtime.GOOS, getenv, home)
}

// Build returns the layout of every target.
func Build(env Env) map[mirror.Target]Layout {
	return map[mirror.Target]Layout{
		mirror.Git:         gitLayout(env),
		mirror.Pip:         pipLayout(env),
		mirror.HuggingFace: hfLayout(env),
	}
}

func gitLayout(env Env) Layout {
	global := &gitRewrite{client: env.Git, scope: gitcfg.Global(), label: ScopeGitGlobal, from: env.RewriteFrom}
	l := Layout{
		Target:  mirror.Git,
		Sources: []Source{global},
		Clear:   []Clearer{global},
		Write:   []Writer{global},
		System: []Source{
			&gitRewrite{client: env.Git, scope: gitcfg.System(), label: ScopeGitSystem, from: env.RewriteFrom},
		},
	}
	if env.GitXDGConfig != "" {
		xdg := &gitRewrite{client: env.Git, scope: gitcfg.File(env.GitXDGConfig), label: ScopeGitXDG, from: env.RewriteFrom, fs: env.Fs, path: env.GitXDGConfig}
		l.Sources = append(l.Sources, xdg)
		l.Clear = append(l.Clear, xdg)
	}
	return l
}

func pipLayout(env Env) Layout {
	process := &envVar{store: env.Process, scope: envstore.ScopeProcess, name: VarPipIndexURL}
	user := &envVar{store: env.User, scope: envstore.ScopeUser, name: VarPipIndexURL}

	l := Layout{
		Target:  mirror.Pip,
		Sources: []Source{process, user},
		Clear:   []Clearer{process, user},
		Write:   []Writer{process, user},
		System:  []Source{&envVar{reader: env.Machine, scope: envstore.ScopeMachine, name: VarPipIndexURL}},
	}
	for _, path := range env.Pip.User() {
		f := &pipFile{fs: env.Fs, path: path, scope: ScopeFile}
		l.Sources = append(l.Sources, f)
		l.Clear = append(l.Clear, f)
	}
	if env.Pip.Venv != "" {
		l.Clear = append(l.Clear, &pipFile{fs: env.Fs, path: env.Pip.Venv, scope: ScopeFile})
	}
	if env.Pip.System != "" {
		l.System = append(l.System, &pipFile{fs: env.Fs, path: env.Pip.System, scope: ScopeSystem})
	}
	return l
}

func hfLayout(env Env) Layout {
	l := Layout{Target: mirror.HuggingFace}
	var user []*envVar
	for _, name := range []string{VarHFEndpoint, VarHFHubEndpoint} {
		p := &envVar{store: env.Process, scope: envstore.ScopeProcess, name: name}
		l.Sources = append(l.Sources, p)
		l.Clear = append(l.Clear, p)
		l.Write = append(l.Write, p)
		user = append(user, &envVar{store: env.User, scope: envstore.ScopeUser, name: name})
		l.System = append(l.System, &envVar{reader: env.Machine, scope: envstore.ScopeMachine, name: name})
	}
	for _, u := range user {
		l.Sources = append(l.Sources, u)
		l.Clear = append(l.Clear, u)
		l.Write = append(l.Write, u)
	}
	return l
}
