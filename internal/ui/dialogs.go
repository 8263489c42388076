package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfhand/shelfhand/internal/library"
	"github.com/shelfhand/shelfhand/internal/merge"
	"github.com/shelfhand/shelfhand/internal/progress"
	"github.com/shelfhand/shelfhand/internal/shelfd"
)

const dateLayout = "2006-01-02"

var logUnits = []shelfd.ProgressUnit{
	shelfd.UnitPagesRead,
	shelfd.UnitMinutesListened,
	shelfd.UnitPercentComplete,
}

// mergeDialog tracks the conflict-resolution cursor and the irreversibility
// acknowledgement step. The merge state itself lives in the workflow.
type mergeDialog struct {
	cursor int
	warned bool
}

// logDialog drives the progress-entry flow, including the missing-totals
// detour.
type logDialog struct {
	itemID  string
	edition shelfd.Edition
	unitIdx int

	value  textinput.Model
	note   textinput.Model
	totals textinput.Model

	askTotals bool
	pending   *progress.PendingLog
	focusIdx  int // 0 value, 1 note
}

// datesDialog captures started/finished reading dates after a status change.
type datesDialog struct {
	itemID   string
	started  textinput.Model
	finished textinput.Model
	focusIdx int
}

func (m *Model) openMergeDialog() tea.Cmd {
	if len(m.mergeMarks) < 2 {
		m.statusLine = "Mark at least two books with m before merging."
		return nil
	}
	ids := make([]string, 0, len(m.mergeMarks))
	for id := range m.mergeMarks {
		ids = append(ids, id)
	}
	target := ids[0]
	if item, ok := m.selectedItem(); ok && m.mergeMarks[item.ID] {
		target = item.ID
	}
	if err := m.opts.Workflow.Select(ids, target); err != nil {
		m.statusLine = err.Error()
		return nil
	}
	m.dialog = dialogMerge
	m.mergeUI = mergeDialog{}
	return m.mergePreviewCmd()
}

func (m *Model) closeMergeDialog() {
	m.dialog = dialogNone
	m.mergeUI = mergeDialog{}
	m.opts.Workflow.Reset()
	m.mergeMarks = map[string]bool{}
}

func (m *Model) openLogDialog(item shelfd.LibraryItem) {
	if item.Edition == nil {
		m.statusLine = "This book has no edition to log against."
		return
	}

	value := textinput.New()
	value.Placeholder = "amount"
	value.CharLimit = 12
	value.Focus()

	note := textinput.New()
	note.Placeholder = "note (optional)"
	note.CharLimit = 200

	totals := textinput.New()
	totals.CharLimit = 8

	m.dialog = dialogLog
	m.logUI = logDialog{
		itemID:  item.ID,
		edition: *item.Edition,
		value:   value,
		note:    note,
		totals:  totals,
	}
}

func (m *Model) openDatesDialog(itemID string) {
	started := textinput.New()
	started.Placeholder = dateLayout
	started.CharLimit = 10
	started.Focus()

	finished := textinput.New()
	finished.Placeholder = dateLayout + " (empty if still reading)"
	finished.CharLimit = 10

	m.dialog = dialogDates
	m.datesUI = datesDialog{itemID: itemID, started: started, finished: finished}
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.dialog {
	case dialogMerge:
		return m.handleMergeKey(msg)
	case dialogLog:
		return m.handleLogKey(msg)
	case dialogDates:
		return m.handleDatesKey(msg)
	case dialogInput:
		return m.handleInputKey(msg)
	case dialogConfirmDelete:
		return m.handleDeleteKey(msg)
	}
	return m, nil
}

func (m *Model) handleMergeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := m.opts.Workflow

	switch {
	case key.Matches(msg, m.keys.Escape):
		if w.Phase() == merge.PhaseApplying {
			return m, nil
		}
		m.closeMergeDialog()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.mergeUI.cursor > 0 {
			m.mergeUI.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.mergeUI.cursor < len(merge.MergeableFields())-1 {
			m.mergeUI.cursor++
		}
		return m, nil

	case msg.String() == "left", msg.String() == "right":
		return m, m.cycleResolution(msg.String() == "right")

	case msg.String() == "c":
		field := merge.MergeableFields()[m.mergeUI.cursor]
		if field == merge.FieldTags {
			if err := w.Resolve(field, shelfd.FieldResolution{CombineTags: true}); err != nil {
				m.statusLine = err.Error()
			}
		}
		return m, nil

	case msg.String() == "t":
		// Move the surviving entry to the next selected book. The
		// workflow drops back to idle, so a fresh preview follows.
		ids, target := w.Selection()
		if len(ids) == 0 || w.Phase() == merge.PhaseApplying {
			return m, nil
		}
		next := nextInSet(ids, target)
		if err := w.SetTarget(next); err != nil {
			m.statusLine = err.Error()
			return m, nil
		}
		m.mergeUI.warned = false
		return m, m.mergePreviewCmd()

	case key.Matches(msg, m.keys.Confirm):
		switch w.Phase() {
		case merge.PhaseIdle:
			// Preview failed earlier; enter retries it.
			return m, m.mergePreviewCmd()
		case merge.PhaseReady:
			if unresolved := w.Unresolved(); len(unresolved) > 0 {
				m.statusLine = "Unresolved conflicts: " + strings.Join(unresolved, ", ")
				return m, nil
			}
			if !m.mergeUI.warned {
				// First confirm shows the irreversibility warning;
				// the second one applies.
				m.mergeUI.warned = true
				w.Acknowledge()
				return m, nil
			}
			return m, m.mergeApplyCmd()
		}
		return m, nil
	}
	return m, nil
}

// cycleResolution assigns the highlighted conflict field to the previous or
// next selected book as its value source.
func (m *Model) cycleResolution(forward bool) tea.Cmd {
	w := m.opts.Workflow
	field := merge.MergeableFields()[m.mergeUI.cursor]
	ids, target := w.Selection()
	if len(ids) == 0 {
		return nil
	}
	_, _, resolution := w.Report()

	current := target
	if res, ok := resolution[field]; ok && res.FromItemID != "" {
		current = res.FromItemID
	}
	next := current
	if forward {
		next = nextInSet(ids, current)
	} else {
		next = prevInSet(ids, current)
	}
	if err := w.Resolve(field, shelfd.FieldResolution{FromItemID: next}); err != nil {
		m.statusLine = err.Error()
	}
	return nil
}

func nextInSet(ids []string, current string) string {
	for i, id := range ids {
		if id == current {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

func prevInSet(ids []string, current string) string {
	for i, id := range ids {
		if id == current {
			return ids[(i+len(ids)-1)%len(ids)]
		}
	}
	return ids[0]
}

func (m *Model) handleMergeMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mergePreviewedMsg:
		if msg.err != nil {
			m.statusLine = m.opts.Workflow.Err()
		}
	case mergeAppliedMsg:
		if msg.err != nil {
			// Dialog stays open; the workflow kept the resolutions for
			// a retry.
			m.statusLine = m.opts.Workflow.Err()
			m.mergeUI.warned = false
		} else {
			m.statusLine = "Books merged."
			m.closeMergeDialog()
		}
	}
	m.refreshSnapshot()
	return m, nil
}

func (m *Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := &m.logUI

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.dialog = dialogNone
		return m, nil

	case msg.String() == "ctrl+u":
		return m, m.switchLogUnit()

	case msg.String() == "tab" && !d.askTotals:
		d.focusIdx = (d.focusIdx + 1) % 2
		if d.focusIdx == 0 {
			d.value.Focus()
			d.note.Blur()
		} else {
			d.value.Blur()
			d.note.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if d.askTotals {
			return m, m.submitTotals()
		}
		return m, m.submitLogEntry()
	}

	var cmd tea.Cmd
	switch {
	case d.askTotals:
		d.totals, cmd = d.totals.Update(msg)
	case d.focusIdx == 1:
		d.note, cmd = d.note.Update(msg)
	default:
		d.value, cmd = d.value.Update(msg)
	}
	return m, cmd
}

// switchLogUnit cycles the entry unit, carrying the typed value through
// percent so the marked point of progress is preserved.
func (m *Model) switchLogUnit() tea.Cmd {
	d := &m.logUI
	from := logUnits[d.unitIdx]
	d.unitIdx = (d.unitIdx + 1) % len(logUnits)
	to := logUnits[d.unitIdx]

	raw := strings.TrimSpace(d.value.Value())
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	converted, err := progress.SwitchUnit(from, to, value, d.edition)
	if err != nil {
		var missing *progress.ErrMissingTotal
		if errors.As(err, &missing) {
			m.statusLine = missing.Error()
		}
		return nil
	}
	d.value.SetValue(strconv.FormatFloat(converted, 'f', -1, 64))
	return nil
}

func (m *Model) submitLogEntry() tea.Cmd {
	d := &m.logUI
	value, err := strconv.ParseFloat(strings.TrimSpace(d.value.Value()), 64)
	if err != nil {
		m.statusLine = "Enter a number first."
		return nil
	}
	entry := shelfd.ProgressEntry{
		LoggedAt: time.Now().UTC(),
		Unit:     logUnits[d.unitIdx],
		Value:    value,
		Note:     strings.TrimSpace(d.note.Value()),
	}
	return m.prepareLogCmd(d.itemID, entry)
}

func (m *Model) submitTotals() tea.Cmd {
	d := &m.logUI
	total, err := strconv.Atoi(strings.TrimSpace(d.totals.Value()))
	if err != nil || total <= 0 {
		m.statusLine = "Enter a whole number greater than zero."
		return nil
	}
	patch := shelfd.TotalsPatch{}
	if missing := d.pending.MissingTotal(); missing != nil && missing.Unit == shelfd.UnitMinutesListened {
		patch.TotalAudioMinutes = &total
	} else {
		patch.TotalPages = &total
	}
	return m.saveTotalsCmd(d.pending, patch)
}

func (m *Model) handleLogMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	d := &m.logUI

	switch msg := msg.(type) {
	case logPreparedMsg:
		if msg.err != nil {
			m.statusLine = msg.err.Error()
			return m, nil
		}
		d.pending = msg.pending
		if missing := d.pending.MissingTotal(); missing != nil {
			// Block the log and collect the total, pre-filled with the
			// provider's suggestion when one exists.
			d.askTotals = true
			if suggested := d.pending.Suggested(); suggested != nil {
				d.totals.SetValue(strconv.Itoa(*suggested))
			}
			d.totals.Focus()
			d.value.Blur()
			d.note.Blur()
			return m, nil
		}
		return m, m.submitLogCmd(d.pending)

	case totalsSavedMsg:
		if msg.err != nil {
			// Keep the dialog and the entered total; the save is
			// retryable.
			m.statusLine = shelfd.UserMessage(msg.err, "Couldn't save the edition totals.")
			return m, nil
		}
		d.askTotals = false
		m.refreshSnapshot()
		return m, m.submitLogCmd(d.pending)

	case logSubmittedMsg:
		if msg.err != nil {
			m.statusLine = shelfd.UserMessage(msg.err, "Couldn't log your progress.")
			return m, nil
		}
		m.dialog = dialogNone
		m.statusLine = "Progress logged."
		m.refreshSnapshot()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleDatesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := &m.datesUI

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.dialog = dialogNone
		return m, nil

	case msg.String() == "tab":
		d.focusIdx = (d.focusIdx + 1) % 2
		if d.focusIdx == 0 {
			d.started.Focus()
			d.finished.Blur()
		} else {
			d.started.Blur()
			d.finished.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		started, err := parseOptionalDate(d.started.Value())
		if err != nil {
			m.statusLine = "Started date must look like " + dateLayout + "."
			return m, nil
		}
		finished, err := parseOptionalDate(d.finished.Value())
		if err != nil {
			m.statusLine = "Finished date must look like " + dateLayout + "."
			return m, nil
		}
		itemID := d.itemID
		m.dialog = dialogNone
		return m, m.mutateCmd(itemID, library.FieldReadingDates, func(ctx context.Context) library.Outcome {
			return m.opts.Mutator.SetReadingDates(ctx, itemID, started, finished)
		})
	}

	var cmd tea.Cmd
	if d.focusIdx == 0 {
		d.started, cmd = d.started.Update(msg)
	} else {
		d.finished, cmd = d.finished.Update(msg)
	}
	return m, cmd
}

func parseOptionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.dialog = dialogNone
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		item, ok := m.actionItem()
		if !ok {
			m.dialog = dialogNone
			return m, nil
		}
		raw := strings.TrimSpace(m.input.Value())
		field := m.inputField
		m.dialog = dialogNone
		m.input.Blur()

		switch field {
		case library.FieldRating:
			var rating *float64
			if raw != "" {
				parsed, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					m.statusLine = "Ratings are numbers like 7 or 7.5."
					return m, nil
				}
				rating = &parsed
			}
			return m, m.mutateCmd(item.ID, library.FieldRating, func(ctx context.Context) library.Outcome {
				return m.opts.Mutator.SetRating(ctx, item.ID, rating)
			})
		case library.FieldTags:
			tags := splitTags(raw)
			return m, m.mutateCmd(item.ID, library.FieldTags, func(ctx context.Context) library.Outcome {
				return m.opts.Mutator.SetTags(ctx, item.ID, tags)
			})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (m *Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		item, ok := m.actionItem()
		m.dialog = dialogNone
		if !ok {
			return m, nil
		}
		if m.view == viewDetail {
			m.view = viewList
			m.detailID = ""
		}
		return m, m.mutateCmd(item.ID, "delete", func(ctx context.Context) library.Outcome {
			return m.opts.Mutator.RemoveItem(ctx, item.ID)
		})
	case "n", "N", "esc":
		m.dialog = dialogNone
	}
	return m, nil
}
