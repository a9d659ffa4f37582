// Package app owns the process-wide client context: the preference store,
// theme resolver, session store, and API client. One App is constructed at
// startup, passed down explicitly, and torn down on exit: single-instance
// semantics without hidden globals.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pillbox/internal/api"
	"pillbox/internal/config"
	"pillbox/internal/onboarding"
	"pillbox/internal/prefs"
	"pillbox/internal/session"
	"pillbox/internal/theme"
)

// App is the assembled client core.
type App struct {
	Config   *config.Config
	Prefs    prefs.Store
	Theme    *theme.Resolver
	Sessions *session.Store
	API      *api.Client
	Seen     *onboarding.Marker

	log     *zap.Logger
	source  theme.Source
	closers []func() error
}

// New assembles the client from config. log may be nil.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := prefs.NewSQLiteStore(filepath.Join(cfg.DataDir, "client.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}

	var source theme.Source
	var closers []func() error
	if cfg.Appearance.WatchFile != "" {
		fs := theme.NewFileSource(cfg.Appearance.WatchFile, log)
		source = fs
		closers = append(closers, fs.Close)
	} else {
		source = theme.TermSource{}
	}
	closers = append(closers, store.Close)

	return &App{
		Config:   cfg,
		Prefs:    store,
		Theme:    theme.NewResolver(store, source, log),
		Sessions: session.NewStore(store, log),
		API:      api.NewClient(cfg.API.BaseURL, cfg.API.TimeoutDuration(), log),
		Seen:     onboarding.NewMarker(store),
		log:      log,
		source:   source,
		closers:  closers,
	}, nil
}

// Init brings the core to a renderable state: the theme resolver is
// initialized and the persisted session restored. Dependent UI must not read
// the resolved appearance before Init returns; that sequencing is what
// prevents a first paint in the wrong theme.
func (a *App) Init(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Theme.Init(ctx) })
	g.Go(func() error {
		_, err := a.Sessions.Restore(ctx)
		return err
	})
	return g.Wait()
}

// Teardown releases the appearance subscription and closes the store.
func (a *App) Teardown() {
	a.Theme.Close()
	for _, close := range a.closers {
		if err := close(); err != nil {
			a.log.Warn("teardown close failed", zap.Error(err))
		}
	}
}
