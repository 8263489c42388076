package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shelfhand/shelfhand/internal/progress"
	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

func (m *Model) renderDetail() string {
	detail := m.snap.Detail

	var b strings.Builder

	switch {
	case detail.Missing:
		b.WriteString(m.styles.InfoText.Render("This book is no longer in your library."))
		b.WriteString("\n" + m.styles.MutedText.Render("Press esc to go back."))
		b.WriteString("\n" + m.renderFooter())
		return b.String()
	case detail.Err != "":
		b.WriteString(m.styles.DangerText.Render(detail.Err))
		b.WriteString("\n" + m.styles.MutedText.Render("Press esc to go back."))
		b.WriteString("\n" + m.renderFooter())
		return b.String()
	case detail.Item == nil:
		b.WriteString(m.styles.MutedText.Render("Loading..."))
		b.WriteString("\n" + m.renderFooter())
		return b.String()
	}

	item := detail.Item
	b.WriteString(m.styles.Title.Render(item.Title))
	if item.Author != "" {
		b.WriteString(m.styles.MutedText.Render("  by " + item.Author))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.StatusStyle(string(item.Status)).Render(string(item.Status)))
	b.WriteString("  " + m.styles.Text.Render("rating "+formatRating(item.Rating)))
	b.WriteString("  " + m.styles.MutedText.Render(string(item.Visibility)))
	if len(item.Tags) > 0 {
		tags := append([]string(nil), item.Tags...)
		sort.Strings(tags)
		b.WriteString("  " + m.styles.FaintText.Render(strings.Join(tags, ", ")))
	}
	b.WriteString("\n")
	if item.Edition != nil {
		b.WriteString(m.styles.MutedText.Render(editionLine(item.Edition.TotalPages, item.Edition.TotalAudioMinutes)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, section := range state.Sections() {
		b.WriteString(m.renderSection(section))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func editionLine(pages, minutes *int) string {
	switch {
	case pages != nil && minutes != nil:
		return fmt.Sprintf("%d pages / %d audio minutes", *pages, *minutes)
	case pages != nil:
		return fmt.Sprintf("%d pages", *pages)
	case minutes != nil:
		return fmt.Sprintf("%d audio minutes", *minutes)
	default:
		return "totals unknown"
	}
}

func (m *Model) renderSection(section state.Section) string {
	var b strings.Builder

	title := section.String()
	if section == m.activeSection {
		b.WriteString(m.styles.AccentText.Render("▸ " + title))
	} else {
		b.WriteString(m.styles.MutedText.Render("  " + title))
	}

	status := m.snap.Detail.Sections[section]
	switch {
	case status.Loading:
		b.WriteString(m.styles.InfoText.Render("  loading..."))
		return b.String()
	case status.Err != "":
		b.WriteString(m.styles.DangerText.Render("  " + status.Err))
		b.WriteString(m.styles.MutedText.Render("  (R retries just this section)"))
		return b.String()
	}

	b.WriteString("\n")
	switch section {
	case state.SectionCycles:
		b.WriteString(m.renderTimeline())
	case state.SectionNotes:
		b.WriteString(m.renderCount(len(m.snap.Detail.Notes), "note"))
	case state.SectionHighlights:
		b.WriteString(m.renderCount(len(m.snap.Detail.Highlights), "highlight"))
	case state.SectionReviews:
		b.WriteString(m.renderCount(len(m.snap.Detail.Reviews), "review"))
	case state.SectionStatistics:
		b.WriteString(m.renderStats())
	}
	return b.String()
}

func (m *Model) renderCount(n int, noun string) string {
	if n == 0 {
		return m.styles.FaintText.Render("    none yet")
	}
	if n == 1 {
		return m.styles.Text.Render(fmt.Sprintf("    1 %s", noun))
	}
	return m.styles.Text.Render(fmt.Sprintf("    %d %ss", n, noun))
}

// renderTimeline shows the most recent reading days, newest first, with the
// session delta each log contributed.
func (m *Model) renderTimeline() string {
	days := progress.BuildTimeline(m.snap.Detail.Cycles, m.opts.Timezone)
	if len(days) == 0 {
		return m.styles.FaintText.Render("    no sessions logged")
	}

	const maxDays = 5
	if len(days) > maxDays {
		days = days[:maxDays]
	}

	var b strings.Builder
	for i, day := range days {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("    " + m.styles.AccentText.Render(day.Date.Format("Mon 02 Jan")))
		for _, entry := range day.Entries {
			b.WriteString("\n      ")
			b.WriteString(m.styles.Text.Render(timelineLine(entry)))
		}
	}
	return b.String()
}

func timelineLine(entry progress.Entry) string {
	percent := "—"
	if entry.Log.Percent != nil {
		percent = fmt.Sprintf("%.1f%%", *entry.Log.Percent)
	}
	line := fmt.Sprintf("%s  %s  %+.0f %s", entry.Log.LoggedAt.Format("15:04"), percent, entry.Delta, unitNoun(entry.Log.Unit))
	if entry.Log.Note != "" {
		line += "  " + entry.Log.Note
	}
	return line
}

func unitNoun(unit shelfd.ProgressUnit) string {
	switch unit {
	case shelfd.UnitPagesRead:
		return "pages"
	case shelfd.UnitMinutesListened:
		return "min"
	case shelfd.UnitPercentComplete:
		return "%"
	default:
		return string(unit)
	}
}

func (m *Model) renderStats() string {
	stats := m.snap.Detail.Stats
	if stats == nil {
		return m.styles.FaintText.Render("    no statistics yet")
	}

	var b strings.Builder
	b.WriteString("    " + m.styles.Text.Render(fmt.Sprintf("active days: %d   streak: %d   %.1f%% complete",
		stats.ActiveDayCount, stats.CurrentStreak, stats.PercentComplete)))
	if stats.LastActiveDay != "" {
		b.WriteString(m.styles.MutedText.Render("   last active " + stats.LastActiveDay))
	}
	b.WriteString("\n    " + m.styles.MutedText.Render(fmt.Sprintf("%d logs, %d pages, %d minutes listened",
		stats.TotalLogs, stats.TotalPagesRead, stats.TotalMinutes)))
	return b.String()
}
