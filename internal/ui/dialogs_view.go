package ui

import (
	"fmt"
	"strings"

	"github.com/shelfhand/shelfhand/internal/merge"
	"github.com/shelfhand/shelfhand/internal/shelfd"
)

func (m *Model) renderMergeDialog() string {
	w := m.opts.Workflow
	ids, target := w.Selection()
	preview, conflicts, resolution := w.Report()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Merge books"))
	b.WriteString("\n\n")

	for _, id := range ids {
		marker := "  "
		if id == target {
			marker = m.styles.SuccessText.Render("★ ")
		}
		b.WriteString(marker + m.itemLabel(id))
		if preview != nil {
			if tally, ok := preview.Tallies[id]; ok && tally.Total() > 0 {
				b.WriteString(m.styles.MutedText.Render(fmt.Sprintf("  (%s move to the target)", tallyLabel(tally))))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.MutedText.Render("★ marks the surviving book; t cycles it\n"))
	b.WriteString("\n")

	switch w.Phase() {
	case merge.PhasePreviewing:
		b.WriteString(m.styles.InfoText.Render("Previewing..."))
	case merge.PhaseIdle:
		if w.Err() != "" {
			b.WriteString(m.styles.DangerText.Render(w.Err()))
			b.WriteString("\n" + m.styles.MutedText.Render("enter retries the preview"))
		} else {
			b.WriteString(m.styles.MutedText.Render("Preparing preview..."))
		}
	case merge.PhaseReady, merge.PhaseApplying:
		b.WriteString(m.renderMergeFields(conflicts, resolution, target))
		b.WriteString("\n")
		if w.Err() != "" {
			b.WriteString("\n" + m.styles.DangerText.Render(w.Err()))
			b.WriteString("\n" + m.styles.MutedText.Render("enter retries with the same choices"))
		}
		if w.Phase() == merge.PhaseApplying {
			b.WriteString("\n" + m.styles.InfoText.Render("Merging..."))
		} else if m.mergeUI.warned {
			b.WriteString("\n" + m.styles.WarningText.Render("This cannot be undone: the other entries are deleted. Press enter again to merge."))
		} else {
			b.WriteString("\n" + m.styles.MutedText.Render("↑/↓ pick a field, ←/→ pick its source, c combines tags, enter merges"))
		}
	}

	return b.String()
}

func (m *Model) renderMergeFields(conflicts map[string]bool, resolution map[string]shelfd.FieldResolution, target string) string {
	var b strings.Builder
	for i, field := range merge.MergeableFields() {
		cursor := "  "
		if i == m.mergeUI.cursor {
			cursor = m.styles.AccentText.Render("▸ ")
		}

		label := pad(field, 18)
		var value string
		res, resolved := resolution[field]
		switch {
		case resolved && res.CombineTags:
			value = m.styles.SuccessText.Render("combine all tags")
		case resolved && res.FromItemID != "":
			value = m.styles.SuccessText.Render("keep " + m.itemLabel(res.FromItemID))
		case conflicts[field]:
			value = m.styles.WarningText.Render("conflict - choose a source")
		default:
			value = m.styles.MutedText.Render("keep " + m.itemLabel(target))
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, label, value))
	}
	return b.String()
}

func (m *Model) itemLabel(id string) string {
	if item, ok := m.opts.Store.ItemByID(id); ok {
		return item.Title
	}
	return id
}

func tallyLabel(tally shelfd.DependencyTally) string {
	parts := make([]string, 0, 5)
	add := func(n int, noun string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, noun))
		}
	}
	add(tally.ReadCycles, "sessions")
	add(tally.ProgressLogs, "logs")
	add(tally.Notes, "notes")
	add(tally.Highlights, "highlights")
	add(tally.Reviews, "reviews")
	return strings.Join(parts, ", ")
}

func (m *Model) renderLogDialog() string {
	d := &m.logUI

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Log progress"))
	b.WriteString("\n\n")

	if d.askTotals {
		missing := d.pending.MissingTotal()
		prompt := "How many pages does this edition have?"
		if missing != nil && missing.Unit == shelfd.UnitMinutesListened {
			prompt = "How many audio minutes does this edition run?"
		}
		b.WriteString(m.styles.WarningText.Render(prompt))
		b.WriteString("\n" + d.totals.View())
		b.WriteString("\n\n" + m.styles.MutedText.Render("enter saves the total and logs your entry"))
		return b.String()
	}

	unit := logUnits[d.unitIdx]
	b.WriteString(m.styles.Text.Render("unit: ") + m.styles.AccentText.Render(string(unit)))
	b.WriteString(m.styles.MutedText.Render("  (ctrl+u switches, keeping your place)"))
	b.WriteString("\n\n" + d.value.View())
	b.WriteString("\n" + d.note.View())
	b.WriteString("\n\n" + m.styles.MutedText.Render("tab moves between fields, enter logs, esc cancels"))
	return b.String()
}

func (m *Model) renderDatesDialog() string {
	d := &m.datesUI

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Reading dates"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Text.Render("started:  ") + d.started.View())
	b.WriteString("\n" + m.styles.Text.Render("finished: ") + d.finished.View())
	b.WriteString("\n\n" + m.styles.MutedText.Render("tab switches, enter saves, esc skips"))
	return b.String()
}

func (m *Model) renderInputDialog() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Edit " + m.inputField))
	b.WriteString("\n\n" + m.input.View())
	b.WriteString("\n\n" + m.styles.MutedText.Render("enter saves, esc cancels"))
	return b.String()
}

func (m *Model) renderDeleteDialog() string {
	title := "this book"
	if item, ok := m.actionItem(); ok {
		title = item.Title
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Delete from library"))
	b.WriteString("\n\n" + m.styles.Text.Render("Remove "+title+" and its notes, highlights and sessions?"))
	b.WriteString("\n\n" + m.styles.DangerText.Render("y deletes") + m.styles.MutedText.Render("   n cancels"))
	return b.String()
}
