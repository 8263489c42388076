package library

import (
	"context"
	"sync"

	"github.com/shelfhand/shelfhand/internal/shelfd"
	"github.com/shelfhand/shelfhand/internal/state"
)

// Loader fetches the catalogue list and the per-item detail sections into the
// shared store. Every detail write is gated by the run-guard token captured
// when the page began loading.
type Loader struct {
	client    shelfd.API
	store     *state.Store
	tz        string
	statsDays int
}

const defaultStatsDays = 90

// NewLoader builds a Loader. tz is the IANA zone name sent with statistics
// requests; empty means the server default.
func NewLoader(client shelfd.API, store *state.Store, tz string) *Loader {
	return &Loader{client: client, store: store, tz: tz, statsDays: defaultStatsDays}
}

// LoadList fetches one catalogue page. On failure the previous page stays
// visible next to the error message.
func (l *Loader) LoadList(ctx context.Context, query shelfd.ListQuery) {
	l.store.SetListLoading()
	page, err := l.client.ListItems(ctx, query)
	if err != nil {
		l.store.SetListError(shelfd.UserMessage(err, "Couldn't load your library."))
		return
	}
	l.store.SetList(page)
}

// LoadDetail resolves the item for the given epoch token and, when it exists,
// loads every detail section concurrently. It blocks until all sections have
// settled; callers run it on their own goroutine.
//
// The token must come from store.BeginLoad on the navigation that opened the
// page; a stale token makes every write here a silent no-op.
func (l *Loader) LoadDetail(ctx context.Context, tok state.Token) {
	itemID := tok.Key()
	item, err := l.client.FetchItem(ctx, itemID)
	if err != nil {
		if shelfd.IsNotFound(err) {
			// Nothing to fetch: the entity is not in the library.
			l.store.SetDetailMissing(tok)
			return
		}
		l.store.SetDetailError(tok, shelfd.UserMessage(err, "Couldn't load this book."))
		return
	}
	l.store.ResetDetail(tok, item)

	var wg sync.WaitGroup
	for _, section := range state.Sections() {
		wg.Add(1)
		go func(section state.Section) {
			defer wg.Done()
			l.LoadSection(ctx, tok, section)
		}(section)
	}
	wg.Wait()
}

// LoadSection fetches one section only. Retrying a failed section goes
// through here; siblings are never refetched.
func (l *Loader) LoadSection(ctx context.Context, tok state.Token, section state.Section) {
	itemID := tok.Key()
	l.store.SetSectionLoading(tok, section)

	switch section {
	case state.SectionCycles:
		cycles, err := l.client.FetchReadCycles(ctx, itemID)
		if err != nil {
			l.store.SetSectionError(tok, section, sectionFailure(err, section))
			return
		}
		l.store.SetCycles(tok, cycles)
	case state.SectionNotes:
		notes, err := l.client.FetchNotes(ctx, itemID)
		if err != nil {
			l.store.SetSectionError(tok, section, sectionFailure(err, section))
			return
		}
		l.store.SetNotes(tok, notes)
	case state.SectionHighlights:
		highlights, err := l.client.FetchHighlights(ctx, itemID)
		if err != nil {
			l.store.SetSectionError(tok, section, sectionFailure(err, section))
			return
		}
		l.store.SetHighlights(tok, highlights)
	case state.SectionReviews:
		reviews, err := l.client.FetchReviews(ctx, itemID)
		if err != nil {
			l.store.SetSectionError(tok, section, sectionFailure(err, section))
			return
		}
		l.store.SetReviews(tok, reviews)
	case state.SectionStatistics:
		stats, err := l.client.FetchStatistics(ctx, itemID, shelfd.StatsQuery{TZ: l.tz, Days: l.statsDays})
		if err != nil {
			l.store.SetSectionError(tok, section, sectionFailure(err, section))
			return
		}
		l.store.SetStats(tok, stats)
	}
}

func sectionFailure(err error, section state.Section) string {
	return shelfd.UserMessage(err, "Couldn't load "+section.String()+".")
}
