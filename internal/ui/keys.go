package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Confirm    key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageNext key.Binding
	PagePrev key.Binding
	Open     key.Binding

	// List actions
	CycleFilter key.Binding
	CycleSort   key.Binding
	MarkMerge   key.Binding
	MergeDialog key.Binding

	// Item actions
	CycleStatus      key.Binding
	ToggleVisibility key.Binding
	Rate             key.Binding
	EditTags         key.Binding
	Delete           key.Binding
	LogProgress      key.Binding
	RetrySection     key.Binding
	NextSection      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back / close dialog"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Down"),
		),
		PageNext: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→/n", "Next page"),
		),
		PagePrev: key.NewBinding(
			key.WithKeys("left", "N"),
			key.WithHelp("←/N", "Previous page"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open book"),
		),

		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle status filter"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Cycle sort order"),
		),
		MarkMerge: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Mark for merge"),
		),
		MergeDialog: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "Merge marked books"),
		),

		CycleStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle reading status"),
		),
		ToggleVisibility: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Toggle private/public"),
		),
		Rate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rate"),
		),
		EditTags: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Edit tags"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete from library"),
		),
		LogProgress: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Log progress"),
		),
		RetrySection: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Retry section"),
		),
		NextSection: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next section"),
		),
	}
}
