// Package ui provides the Bubble Tea terminal interface for shelfhand.
//
// # Architecture Overview
//
// The UI follows the Elm-style update loop Bubble Tea imposes: a single root
// Model holds all view state, every remote call runs inside a tea.Cmd closure,
// and results come back as typed messages. The Model never talks to shelfd
// directly; it reads state.Store snapshots and hands work to the library,
// merge and progress packages, which own the actual request lifecycles.
//
// # Package Structure
//
//   - ui.go: Options and the main Run function
//   - model.go: root Model, snapshot refresh, bus event routing
//   - messages.go: message types and the tea.Cmd constructors
//   - input.go: key handling for the list and detail views
//   - dialogs.go: merge, progress-log, dates, edit and delete dialog logic
//   - list.go, detail.go, dialogs_view.go: rendering
//   - theme.go, keys.go: palettes and key bindings
//
// # Views
//
// Two main views are available:
//
//   - List view: one page of the library with filter, sort and merge marks
//   - Detail view: a single book with its independently loaded sections
//
// Dialogs overlay the current view. The merge dialog is driven entirely by
// merge.Workflow and stays open on a failed apply so the same resolution can
// be retried; the progress-log dialog routes through progress.Recorder,
// including the blocked step that asks for a missing edition total.
//
// # Refresh Behavior
//
// A one-second tick re-reads the store snapshot so background loads and the
// app-level refresher surface without the UI polling the daemon itself. Bus
// events narrow that: a logged entry refreshes only the open detail's
// statistics and sessions, and a removed item re-resolves the open detail.
package ui
