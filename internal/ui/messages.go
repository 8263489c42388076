package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/library"
	"github.com/shelfhand/shelfhand/internal/progress"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

// The services mutate the shared store on their own goroutines; the model
// re-reads a snapshot whenever one of these messages arrives.

type snapshotTickMsg struct{}

type listLoadedMsg struct{}

type detailLoadedMsg struct {
	key string
}

type sectionLoadedMsg struct {
	section state.Section
}

type mutationDoneMsg struct {
	itemID  string
	field   string
	outcome library.Outcome
}

type mergePreviewedMsg struct {
	err error
}

type mergeAppliedMsg struct {
	err error
}

type logPreparedMsg struct {
	pending *progress.PendingLog
	err     error
}

type totalsSavedMsg struct {
	err error
}

type logSubmittedMsg struct {
	log *shelfd.ProgressLog
	err error
}

type busEventMsg struct {
	ev event.Event
}

const snapshotTickInterval = time.Second

func snapshotTick() tea.Cmd {
	return tea.Tick(snapshotTickInterval, func(time.Time) tea.Msg {
		return snapshotTickMsg{}
	})
}

func (m *Model) loadListCmd(query shelfd.ListQuery) tea.Cmd {
	return func() tea.Msg {
		m.opts.Loader.LoadList(m.opts.Context, query)
		return listLoadedMsg{}
	}
}

func (m *Model) loadDetailCmd(itemID string) tea.Cmd {
	m.detailToken = m.opts.Store.BeginLoad(itemID)
	tok := m.detailToken
	return func() tea.Msg {
		m.opts.Loader.LoadDetail(m.opts.Context, tok)
		return detailLoadedMsg{key: itemID}
	}
}

func (m *Model) retrySectionCmd(itemID string, section state.Section) tea.Cmd {
	// Retries reuse the epoch of the page that is open; a fresh BeginLoad
	// here would discard sibling sections still in flight.
	tok := m.detailToken
	return func() tea.Msg {
		m.opts.Loader.LoadSection(m.opts.Context, tok, section)
		return sectionLoadedMsg{section: section}
	}
}

func (m *Model) mutateCmd(itemID, field string, run func(ctx context.Context) library.Outcome) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{itemID: itemID, field: field, outcome: run(m.opts.Context)}
	}
}

func (m *Model) mergePreviewCmd() tea.Cmd {
	return func() tea.Msg {
		return mergePreviewedMsg{err: m.opts.Workflow.Preview(m.opts.Context)}
	}
}

func (m *Model) mergeApplyCmd() tea.Cmd {
	return func() tea.Msg {
		return mergeAppliedMsg{err: m.opts.Workflow.Apply(m.opts.Context)}
	}
}

func (m *Model) prepareLogCmd(itemID string, entry shelfd.ProgressEntry) tea.Cmd {
	return func() tea.Msg {
		pending, err := m.opts.Recorder.Prepare(itemID, entry)
		return logPreparedMsg{pending: pending, err: err}
	}
}

func (m *Model) saveTotalsCmd(pending *progress.PendingLog, patch shelfd.TotalsPatch) tea.Cmd {
	return func() tea.Msg {
		return totalsSavedMsg{err: pending.SaveTotals(m.opts.Context, patch)}
	}
}

func (m *Model) submitLogCmd(pending *progress.PendingLog) tea.Cmd {
	return func() tea.Msg {
		log, err := pending.Submit(m.opts.Context)
		return logSubmittedMsg{log: log, err: err}
	}
}

// watchBus forwards one bus event into the program; the update loop
// re-arms it after each delivery.
func (m *Model) watchBus() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.opts.Context.Done():
			return nil
		case ev, ok := <-m.events:
			if !ok {
				return nil
			}
			return busEventMsg{ev: ev}
		}
	}
}
