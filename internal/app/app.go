package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfhand/shelfhand/internal/config"
	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/library"
	"github.com/shelfhand/shelfhand/internal/merge"
	"github.com/shelfhand/shelfhand/internal/prefs"
	"github.com/shelfhand/shelfhand/internal/progress"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
	"github.com/shelfhand/shelfhand/internal/ui"
)

// Options configure the shelfhand application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/shelfhand/prefs.toml
	RefreshEvery int    // seconds; zero uses default
}

// Run boots the shelfhand TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load shelfhand config: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	client, err := shelfd.NewClient(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init shelfd client: %w", err)
	}

	store := &state.Store{}
	bus := event.NewBus()

	loader := library.NewLoader(client, store, cfg.Timezone)
	mutator := library.NewMutator(client, store, bus)
	workflow := merge.NewWorkflow(client, bus)
	recorder := progress.NewRecorder(client, store, bus)

	interval := time.Duration(0)
	if opts.RefreshEvery > 0 {
		interval = time.Duration(opts.RefreshEvery) * time.Second
	}

	// The background refresher re-reads the page the user is looking at;
	// interactive sort and filter changes go through the UI's own loads.
	query := func() shelfd.ListQuery {
		snap := store.Snapshot()
		q := shelfd.ListQuery{
			Page:     snap.Page,
			PageSize: cfg.PageSize,
			Sort:     userPrefs.Sort,
			Status:   shelfd.Status(userPrefs.StatusFilter),
		}
		if q.Page <= 0 {
			q.Page = 1
		}
		if snap.PageSize > 0 {
			q.PageSize = snap.PageSize
		}
		return q
	}
	StartRefresher(ctx, store, loader, bus, interval, query)

	// Populate the first page before the UI starts so the initial frame
	// has content.
	loader.LoadList(ctx, query())

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Bus:       bus,
		Loader:    loader,
		Mutator:   mutator,
		Workflow:  workflow,
		Recorder:  recorder,
		PageSize:  cfg.PageSize,
		Timezone:  cfg.Timezone,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
}
