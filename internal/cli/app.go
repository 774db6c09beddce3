package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/mirrorkit/mirrorkit/internal/apply"
	"github.com/mirrorkit/mirrorkit/internal/branding"
	"github.com/mirrorkit/mirrorkit/internal/catalog"
	"github.com/mirrorkit/mirrorkit/internal/config"
	"github.com/mirrorkit/mirrorkit/internal/envstore"
	"github.com/mirrorkit/mirrorkit/internal/gitcfg"
	"github.com/mirrorkit/mirrorkit/internal/locations"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/probe"
	"github.com/mirrorkit/mirrorkit/internal/reach"
)

// app wires the core packages against the real environment.
type app struct {
	settings config.Settings
	logger   *slog.Logger
	fs       afero.Fs
	catalog  *catalog.Catalog
	user     envstore.Store
	git      *gitcfg.ExecRunner
	layouts  map[mirror.Target]locations.Layout
}

func newApp() *app {
	settings, err := config.Current()
	logger := newLogger(settings.LogLevel, flagVerbose)
	if err != nil {
		logger.Warn("using default settings", "err", err)
	}

	fs := afero.NewOsFs()
	path := catalog.ResolvePath(fs, flagCatalog)
	cat := catalog.Load(fs, path)
	switch {
	case cat.Fallback && errors.Is(cat.Cause, mirror.ErrConfigNotFound):
		logger.Debug("no catalog file, using built-in presets", "path", path)
	case cat.Fallback:
		logger.Warn("catalog unusable, using built-in presets", "path", path, "err", cat.Cause)
	default:
		logger.Debug("catalog loaded", "path", cat.Source, "version", cat.Version)
	}

	a := &app{
		settings: settings,
		logger:   logger,
		fs:       fs,
		catalog:  cat,
		user:     envstore.User(fs, settings.UserStore),
		git: &gitcfg.ExecRunner{
			Binary:  settings.GitBinary,
			Timeout: settings.GitTimeout,
			Logger:  logger,
		},
	}

	home, _ := os.UserHomeDir()
	a.layouts = locations.Build(locations.Env{
		Process:      envstore.NewProcess(),
		User:         a.user,
		Machine:      envstore.Machine(fs),
		Fs:           fs,
		Git:          gitcfg.New(a.git),
		RewriteFrom:  settings.RewriteFrom,
		Pip:          locations.DefaultPipPaths(os.Getenv, home),
		GitXDGConfig: locations.GitXDGConfigPath(os.Getenv, home),
	})
	return a
}

func (a *app) prober() *probe.Prober {
	return probe.New(a.catalog, a.layouts, probe.WithTimeout(a.settings.ProbeTimeout), probe.WithLogger(a.logger))
}

func (a *app) tester() *reach.Tester {
	return reach.New(a.catalog,
		reach.WithTimeout(a.settings.TestTimeout),
		reach.WithUserAgent(branding.UserAgent(buildVersion)),
		reach.WithLogger(a.logger),
	)
}

func (a *app) engine() *apply.Engine {
	return apply.New(a.catalog, a.layouts, apply.WithNotifier(a.user), apply.WithLogger(a.logger))
}
