package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/library"
	"github.com/shelfhand/shelfhand/internal/merge"
	"github.com/shelfhand/shelfhand/internal/prefs"
	"github.com/shelfhand/shelfhand/internal/progress"
	"github.com/shelfhand/shelfhand/internal/state"
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	Store    *state.Store
	Bus      *event.Bus
	Loader   *library.Loader
	Mutator  *library.Mutator
	Workflow *merge.Workflow
	Recorder *progress.Recorder

	PageSize  int
	Timezone  string
	Prefs     prefs.Prefs
	PrefsPath string
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("ui requires a data store")
	}
	if opts.Bus == nil {
		return fmt.Errorf("ui requires an event bus")
	}
	if opts.Loader == nil || opts.Mutator == nil {
		return fmt.Errorf("ui requires a library loader and mutator")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	m := newModel(opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}
