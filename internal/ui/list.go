package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

const (
	titleWidth  = 38
	authorWidth = 24
	tagsWidth   = 26
)

func (m *Model) renderList() string {
	var b strings.Builder

	b.WriteString(m.renderListHeader())
	b.WriteString("\n")

	if len(m.snap.Items) == 0 {
		if m.snap.ListLoading {
			b.WriteString(m.styles.MutedText.Render("Loading your library..."))
		} else {
			b.WriteString(m.styles.MutedText.Render("Your library is empty."))
		}
		b.WriteString("\n")
	}

	for i, item := range m.snap.Items {
		b.WriteString(m.renderListRow(i, item))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderListHeader() string {
	filter := "all"
	if f := statusFilters[m.filterIdx]; f != "" {
		filter = string(f)
	}
	page := m.snap.Page
	if page <= 0 {
		page = 1
	}
	left := m.styles.Title.Render("shelfhand") + "  " +
		m.styles.MutedText.Render(fmt.Sprintf("filter:%s  sort:%s  page:%d  books:%d",
			filter, sortOrders[m.sortIdx], page, m.snap.Total))

	right := ""
	if m.snap.ListLoading {
		right = m.styles.InfoText.Render("refreshing...")
	} else if m.snap.ListErr != "" {
		right = m.styles.DangerText.Render(m.snap.ListErr)
	}

	if right == "" {
		return m.styles.Header.Render(left)
	}
	return m.styles.Header.Render(left + "  " + right)
}

func (m *Model) renderListRow(i int, item shelfd.LibraryItem) string {
	mark := "  "
	if m.mergeMarks[item.ID] {
		mark = m.styles.WarningText.Render("◆ ")
	}

	title := pad(item.Title, titleWidth)
	author := pad(item.Author, authorWidth)
	status := m.styles.StatusStyle(string(item.Status)).Render(string(item.Status))
	rating := pad(formatRating(item.Rating), 5)

	tags := append([]string(nil), item.Tags...)
	sort.Strings(tags)
	tagText := pad(strings.Join(tags, ","), tagsWidth)

	updating := ""
	if m.snap.FieldUpdating(item.ID, "status") ||
		m.snap.FieldUpdating(item.ID, "rating") ||
		m.snap.FieldUpdating(item.ID, "tags") ||
		m.snap.FieldUpdating(item.ID, "visibility") {
		updating = m.styles.InfoText.Render(" ~")
	}

	row := fmt.Sprintf("%s%s  %s  %s %s %s%s", mark, title, author, status, rating, m.styles.FaintText.Render(tagText), updating)
	if i == m.cursor {
		return m.styles.Selected.Render("> " + row)
	}
	return "  " + row
}

func (m *Model) renderFooter() string {
	var parts []string
	if m.statusLine != "" {
		parts = append(parts, m.statusLine)
	}
	for _, notice := range m.snap.Notices {
		text := notice.Text
		if notice.Info {
			parts = append(parts, m.styles.InfoText.Render(text))
		} else {
			parts = append(parts, m.styles.DangerText.Render(text))
		}
	}

	hints := "enter open  s status  p privacy  r rate  t tags  l log  m mark  M merge  f filter  o sort  ? help  q quit"
	if m.view == viewDetail {
		hints = "esc back  tab section  R retry  s status  r rate  l log  d delete  ? help"
	}
	if m.showHelp {
		hints = m.renderHelp()
	}

	footer := m.styles.Footer.Render(hints)
	if len(parts) == 0 {
		return footer
	}
	return strings.Join(parts, "  ") + "\n" + footer
}

func (m *Model) renderHelp() string {
	lines := []string{
		"navigation: ↑/k ↓/j move   ←/N →/n page   enter open   esc back",
		"edits: s cycle status   p toggle privacy   r rate   t tags   d delete",
		"reading: l log progress (ctrl+u switches unit)   tab next section   R retry section",
		"merge: m mark book   M open merge   ←/→ pick source   c combine tags   t cycle target",
		"other: f status filter   o sort order   T theme   q quit",
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDialogOver(body string) string {
	var dialogView string
	switch m.dialog {
	case dialogMerge:
		dialogView = m.renderMergeDialog()
	case dialogLog:
		dialogView = m.renderLogDialog()
	case dialogDates:
		dialogView = m.renderDatesDialog()
	case dialogInput:
		dialogView = m.renderInputDialog()
	case dialogConfirmDelete:
		dialogView = m.renderDeleteDialog()
	default:
		return body
	}

	boxed := m.styles.Dialog.Render(dialogView)
	if m.width == 0 || m.height == 0 {
		return boxed
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxed)
}

func formatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *r)
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}
