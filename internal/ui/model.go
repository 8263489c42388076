package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/shelfhand/shelfhand/internal/event"
	"github.com/shelfhand/shelfhand/internal/merge"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

type view int

const (
	viewList view = iota
	viewDetail
)

type dialog int

const (
	dialogNone dialog = iota
	dialogMerge
	dialogLog
	dialogDates
	dialogInput
	dialogConfirmDelete
)

// statusFilters cycles through the reading-status list filter; empty means
// no filter.
var statusFilters = []shelfd.Status{"", shelfd.StatusToRead, shelfd.StatusReading, shelfd.StatusCompleted, shelfd.StatusAbandoned}

var sortOrders = []string{"last_read_at", "title", "created_at", "rating"}

// Model is the root bubbletea model. All remote work happens in commands;
// the model itself only reads store snapshots and routes key presses to the
// synchronization services.
type Model struct {
	opts   Options
	keys   keyMap
	styles Styles
	theme  string

	width  int
	height int

	snap   state.Snapshot
	view   view
	cursor int

	filterIdx int
	sortIdx   int

	detailID      string
	detailToken   state.Token
	activeSection state.Section

	mergeMarks map[string]bool
	dialog     dialog
	mergeUI    mergeDialog
	logUI      logDialog
	datesUI    datesDialog

	input      textinput.Model
	inputField string

	statusLine string
	showHelp   bool

	events    <-chan event.Event
	cancelSub func()
}

func newModel(opts Options) *Model {
	events, cancelSub := opts.Bus.Subscribe()

	input := textinput.New()
	input.CharLimit = 120

	themeName := opts.Prefs.Theme
	return &Model{
		opts:       opts,
		keys:       DefaultKeyMap(),
		styles:     GetTheme(themeName).Styles(),
		theme:      themeName,
		snap:       opts.Store.Snapshot(),
		sortIdx:    sortIndex(opts.Prefs.Sort),
		filterIdx:  filterIndex(shelfd.Status(opts.Prefs.StatusFilter)),
		mergeMarks: map[string]bool{},
		input:      input,
		events:     events,
		cancelSub:  cancelSub,
	}
}

func sortIndex(sort string) int {
	for i, s := range sortOrders {
		if s == sort {
			return i
		}
	}
	return 0
}

func filterIndex(status shelfd.Status) int {
	for i, s := range statusFilters {
		if s == status {
			return i
		}
	}
	return 0
}

func (m *Model) currentQuery() shelfd.ListQuery {
	q := shelfd.ListQuery{
		Page:     m.snap.Page,
		PageSize: m.opts.PageSize,
		Sort:     sortOrders[m.sortIdx],
		Status:   statusFilters[m.filterIdx],
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

func (m *Model) selectedItem() (shelfd.LibraryItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Items) {
		return shelfd.LibraryItem{}, false
	}
	return m.snap.Items[m.cursor], true
}

func (m *Model) refreshSnapshot() {
	m.snap = m.opts.Store.Snapshot()
	if m.cursor >= len(m.snap.Items) {
		m.cursor = len(m.snap.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Init starts the snapshot ticker and the bus watcher.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(snapshotTick(), m.watchBus())
}

// Update routes messages. Service completions all funnel through a snapshot
// refresh; the store is the single source of truth for displayed data.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotTickMsg:
		m.refreshSnapshot()
		return m, snapshotTick()

	case listLoadedMsg, sectionLoadedMsg:
		m.refreshSnapshot()
		return m, nil

	case detailLoadedMsg:
		m.refreshSnapshot()
		return m, nil

	case busEventMsg:
		return m.handleBusEvent(msg.ev)

	case mutationDoneMsg:
		return m.handleMutationDone(msg)

	case mergePreviewedMsg, mergeAppliedMsg:
		return m.handleMergeMsg(msg)

	case logPreparedMsg, totalsSavedMsg, logSubmittedMsg:
		return m.handleLogMsg(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleBusEvent(ev event.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.watchBus()}
	switch ev.Kind {
	case event.ItemRemoved:
		// The list reload is the background refresher's job; the detail
		// view only cares when it is showing the removed book. Reloading
		// under a fresh epoch lets the store record it as missing.
		if m.view == viewDetail && m.detailID == ev.ItemID {
			cmds = append(cmds, m.loadDetailCmd(ev.ItemID))
		}
	case event.ProgressLogged:
		if m.view == viewDetail && m.detailID == ev.ItemID {
			cmds = append(cmds,
				m.retrySectionCmd(ev.ItemID, state.SectionStatistics),
				m.retrySectionCmd(ev.ItemID, state.SectionCycles),
			)
		}
	case event.LibraryChanged:
		if m.dialog == dialogMerge && m.opts.Workflow.Phase() == merge.PhaseDone {
			m.closeMergeDialog()
		}
	}
	m.refreshSnapshot()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	m.refreshSnapshot()
	out := msg.outcome
	switch {
	case out.Err != "" && !out.NotFound:
		m.statusLine = out.Err
	case out.Dropped:
		m.statusLine = "That change is still being saved."
	case out.PromptReadingDates:
		m.openDatesDialog(msg.itemID)
	}
	return m, nil
}

// View renders the active screen plus any dialog overlay.
func (m *Model) View() string {
	var body string
	switch m.view {
	case viewDetail:
		body = m.renderDetail()
	default:
		body = m.renderList()
	}

	if m.dialog != dialogNone {
		body = m.renderDialogOver(body)
	}

	return body
}

// Close releases the bus subscription.
func (m *Model) Close() {
	if m.cancelSub != nil {
		m.cancelSub()
	}
}
