package ui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfhand/shelfhand/internal/library"
	"github.com/shelfhand/shelfhand/internal/prefs"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog != dialogNone {
		return m.handleDialogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		m.savePrefs()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = NextTheme(m.theme)
		m.styles = GetTheme(m.theme).Styles()
		return m, nil
	}

	if m.view == viewDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PageNext):
		q := m.currentQuery()
		if q.Page*q.PageSize < m.snap.Total {
			q.Page++
			return m, m.loadListCmd(q)
		}
	case key.Matches(msg, m.keys.PagePrev):
		q := m.currentQuery()
		if q.Page > 1 {
			q.Page--
			return m, m.loadListCmd(q)
		}
	case key.Matches(msg, m.keys.CycleFilter):
		m.filterIdx = (m.filterIdx + 1) % len(statusFilters)
		q := m.currentQuery()
		q.Page = 1
		return m, m.loadListCmd(q)
	case key.Matches(msg, m.keys.CycleSort):
		m.sortIdx = (m.sortIdx + 1) % len(sortOrders)
		q := m.currentQuery()
		q.Page = 1
		return m, m.loadListCmd(q)
	case key.Matches(msg, m.keys.Open):
		if item, ok := m.selectedItem(); ok {
			m.view = viewDetail
			m.detailID = item.ID
			m.activeSection = state.SectionCycles
			return m, m.loadDetailCmd(item.ID)
		}
	case key.Matches(msg, m.keys.MarkMerge):
		if item, ok := m.selectedItem(); ok {
			if m.mergeMarks[item.ID] {
				delete(m.mergeMarks, item.ID)
			} else {
				m.mergeMarks[item.ID] = true
			}
		}
	case key.Matches(msg, m.keys.MergeDialog):
		return m, m.openMergeDialog()
	default:
		return m.handleItemActionKey(msg)
	}
	return m, nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.view = viewList
		m.detailID = ""
		return m, nil
	case key.Matches(msg, m.keys.NextSection):
		sections := state.Sections()
		m.activeSection = sections[(int(m.activeSection)+1)%len(sections)]
		return m, nil
	case key.Matches(msg, m.keys.RetrySection):
		if m.detailID != "" {
			return m, m.retrySectionCmd(m.detailID, m.activeSection)
		}
		return m, nil
	}
	return m.handleItemActionKey(msg)
}

// handleItemActionKey covers edits that work from both the list row and the
// open detail.
func (m *Model) handleItemActionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := m.actionItem()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CycleStatus):
		next := nextStatus(item.Status)
		return m, m.mutateCmd(item.ID, library.FieldStatus, func(ctx context.Context) library.Outcome {
			return m.opts.Mutator.SetStatus(ctx, item.ID, next)
		})
	case key.Matches(msg, m.keys.ToggleVisibility):
		vis := shelfd.VisibilityPrivate
		if item.Visibility == shelfd.VisibilityPrivate {
			vis = shelfd.VisibilityPublic
		}
		return m, m.mutateCmd(item.ID, library.FieldVisibility, func(ctx context.Context) library.Outcome {
			return m.opts.Mutator.SetVisibility(ctx, item.ID, vis)
		})
	case key.Matches(msg, m.keys.Rate):
		m.openInputDialog(library.FieldRating, ratingText(item.Rating), "0-10 in half steps, empty clears")
	case key.Matches(msg, m.keys.EditTags):
		tags := append([]string(nil), item.Tags...)
		sort.Strings(tags)
		m.openInputDialog(library.FieldTags, strings.Join(tags, ", "), "comma-separated tags")
	case key.Matches(msg, m.keys.Delete):
		m.dialog = dialogConfirmDelete
	case key.Matches(msg, m.keys.LogProgress):
		m.openLogDialog(item)
	}
	return m, nil
}

// actionItem resolves which book an edit applies to: the open detail, else
// the highlighted list row.
func (m *Model) actionItem() (shelfd.LibraryItem, bool) {
	if m.view == viewDetail {
		if m.snap.Detail.Item != nil {
			return *m.snap.Detail.Item, true
		}
		return shelfd.LibraryItem{}, false
	}
	return m.selectedItem()
}

func nextStatus(s shelfd.Status) shelfd.Status {
	all := shelfd.Statuses()
	for i, candidate := range all {
		if candidate == s {
			return all[(i+1)%len(all)]
		}
	}
	return shelfd.StatusToRead
}

func ratingText(r *float64) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}

func (m *Model) openInputDialog(field, value, placeholder string) {
	m.dialog = dialogInput
	m.inputField = field
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.Focus()
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{
		Theme:        m.theme,
		Sort:         sortOrders[m.sortIdx],
		StatusFilter: string(statusFilters[m.filterIdx]),
	}
	if err := prefs.Save(m.opts.PrefsPath, p); err != nil {
		m.statusLine = fmt.Sprintf("Couldn't save preferences: %v", err)
	}
}
