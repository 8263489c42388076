package state

import (
	"sync"
	"time"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

// Section identifies one independently loadable slice of the detail view.
type Section int

const (
	SectionCycles Section = iota
	SectionNotes
	SectionHighlights
	SectionReviews
	SectionStatistics
)

// String names the section for retry affordances and fallback messages.
func (s Section) String() string {
	switch s {
	case SectionCycles:
		return "reading sessions"
	case SectionNotes:
		return "notes"
	case SectionHighlights:
		return "highlights"
	case SectionReviews:
		return "reviews"
	case SectionStatistics:
		return "statistics"
	default:
		return "unknown"
	}
}

// Sections lists every detail section in display order.
func Sections() []Section {
	return []Section{SectionCycles, SectionNotes, SectionHighlights, SectionReviews, SectionStatistics}
}

// SectionStatus tracks one section's loading/error state, isolated from its
// siblings.
type SectionStatus struct {
	Loading  bool
	Err      string
	LoadedAt time.Time
}

// Detail is the state of the currently displayed item page. Missing marks an
// entity that is not in the library at all; sections never load for it.
type Detail struct {
	ItemID     string
	Item       *shelfd.LibraryItem
	Missing    bool
	Err        string
	Cycles     []shelfd.ReadCycle
	Notes      []shelfd.Note
	Highlights []shelfd.Highlight
	Reviews    []shelfd.Review
	Stats      *shelfd.Statistics
	Sections   map[Section]SectionStatus
}

// FieldKey identifies one (item, field) mutation slot.
type FieldKey struct {
	ItemID string
	Field  string
}

// Notice is a transient user-facing message. Info notices report
// eventual-consistency events; the rest are errors.
type Notice struct {
	Info bool
	Text string
	At   time.Time
}

const noticeLimit = 5

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Items       []shelfd.LibraryItem
	Page        int
	PageSize    int
	Total       int
	ListLoading bool
	ListErr     string
	LastUpdated time.Time
	Detail      Detail
	Updating    map[FieldKey]struct{}
	Notices     []Notice
}

// FieldUpdating reports whether a mutation for the given slot is in flight.
func (s Snapshot) FieldUpdating(itemID, field string) bool {
	_, ok := s.Updating[FieldKey{ItemID: itemID, Field: field}]
	return ok
}

// Store coordinates concurrent updates to the shared view state. It owns the
// run guard so section writes and epoch checks happen under one lock.
// The zero value is ready to use.
type Store struct {
	mu    sync.RWMutex
	guard Guard

	items       []shelfd.LibraryItem
	page        int
	pageSize    int
	total       int
	listLoading bool
	listErr     string
	lastUpdated time.Time

	detail   Detail
	updating map[FieldKey]struct{}
	notices  []Notice
}

// BeginLoad establishes a new navigation epoch for key. Loads started under
// any earlier epoch for the same key will have their results discarded.
func (s *Store) BeginLoad(key string) Token {
	return s.guard.Begin(key)
}

// Current reports whether tok still belongs to the latest navigation.
func (s *Store) Current(tok Token) bool {
	return s.guard.Current(tok)
}

// SetListLoading marks the catalogue list as loading without touching data.
func (s *Store) SetListLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listLoading = true
	s.listErr = ""
}

// SetList replaces the catalogue page. Prior list errors are cleared.
func (s *Store) SetList(page shelfd.ItemPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneItems(page.Items)
	s.page = page.Page
	s.pageSize = page.PageSize
	s.total = page.Total
	s.listLoading = false
	s.listErr = ""
	s.lastUpdated = time.Now()
}

// SetListError records a list fetch failure. Previous items are kept so the
// view can keep showing the last good page.
func (s *Store) SetListError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listLoading = false
	s.listErr = msg
	s.lastUpdated = time.Now()
}

// ItemByID looks an item up in the current page or the open detail.
func (s *Store) ItemByID(id string) (shelfd.LibraryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return cloneItem(item), true
		}
	}
	if s.detail.Item != nil && s.detail.Item.ID == id {
		return cloneItem(*s.detail.Item), true
	}
	return shelfd.LibraryItem{}, false
}

// MutateItem applies fn to every stored copy of the item (list page and open
// detail). It reports whether the item was present anywhere.
func (s *Store) MutateItem(id string, fn func(*shelfd.LibraryItem)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			fn(&s.items[i])
			found = true
		}
	}
	if s.detail.Item != nil && s.detail.Item.ID == id {
		fn(s.detail.Item)
		found = true
	}
	return found
}

// MergeItem replaces stored copies with the server's authoritative
// representation.
func (s *Store) MergeItem(item shelfd.LibraryItem) {
	s.MutateItem(item.ID, func(dst *shelfd.LibraryItem) {
		*dst = cloneItem(item)
	})
}

// RemoveItem drops an item from the list page (and closes its detail).
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	if s.detail.ItemID == id {
		s.detail = Detail{ItemID: id, Missing: true}
	}
}

// ResetDetail installs a freshly resolved item for the epoch's key, clearing
// all section data. Stale tokens are ignored.
func (s *Store) ResetDetail(tok Token, item *shelfd.LibraryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.guard.Current(tok) {
		return
	}
	detail := Detail{ItemID: tok.Key(), Sections: make(map[Section]SectionStatus)}
	if item != nil {
		cloned := cloneItem(*item)
		detail.Item = &cloned
	}
	s.detail = detail
}

// SetDetailMissing records that the epoch's entity is not in the library.
func (s *Store) SetDetailMissing(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.guard.Current(tok) {
		return
	}
	s.detail = Detail{ItemID: tok.Key(), Missing: true}
}

// SetDetailError records an item lookup failure for the epoch's entity.
func (s *Store) SetDetailError(tok Token, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.guard.Current(tok) {
		return
	}
	s.detail = Detail{ItemID: tok.Key(), Err: msg}
}

// SetSectionLoading marks one section as loading and clears its error.
func (s *Store) SetSectionLoading(tok Token, section Section) {
	s.writeSection(tok, section, func(d *Detail) {
		status := d.Sections[section]
		status.Loading = true
		status.Err = ""
		d.Sections[section] = status
	})
}

// SetSectionError records a section fetch failure. Previously loaded section
// data stays untouched.
func (s *Store) SetSectionError(tok Token, section Section, msg string) {
	s.writeSection(tok, section, func(d *Detail) {
		d.Sections[section] = SectionStatus{Err: msg}
	})
}

// SetCycles stores the read-cycles section result.
func (s *Store) SetCycles(tok Token, cycles []shelfd.ReadCycle) {
	s.writeSection(tok, SectionCycles, func(d *Detail) {
		d.Cycles = cloneCycles(cycles)
		d.Sections[SectionCycles] = SectionStatus{LoadedAt: time.Now()}
	})
}

// SetNotes stores the notes section result.
func (s *Store) SetNotes(tok Token, notes []shelfd.Note) {
	s.writeSection(tok, SectionNotes, func(d *Detail) {
		d.Notes = append([]shelfd.Note(nil), notes...)
		d.Sections[SectionNotes] = SectionStatus{LoadedAt: time.Now()}
	})
}

// SetHighlights stores the highlights section result.
func (s *Store) SetHighlights(tok Token, highlights []shelfd.Highlight) {
	s.writeSection(tok, SectionHighlights, func(d *Detail) {
		d.Highlights = append([]shelfd.Highlight(nil), highlights...)
		d.Sections[SectionHighlights] = SectionStatus{LoadedAt: time.Now()}
	})
}

// SetReviews stores the reviews section result.
func (s *Store) SetReviews(tok Token, reviews []shelfd.Review) {
	s.writeSection(tok, SectionReviews, func(d *Detail) {
		d.Reviews = append([]shelfd.Review(nil), reviews...)
		d.Sections[SectionReviews] = SectionStatus{LoadedAt: time.Now()}
	})
}

// SetStats stores the statistics section result.
func (s *Store) SetStats(tok Token, stats *shelfd.Statistics) {
	s.writeSection(tok, SectionStatistics, func(d *Detail) {
		d.Stats = cloneStats(stats)
		d.Sections[SectionStatistics] = SectionStatus{LoadedAt: time.Now()}
	})
}

// writeSection runs fn against the detail when the token is still current and
// the detail belongs to the token's key. Stale writes are discarded silently;
// abandonment is not a failure.
func (s *Store) writeSection(tok Token, _ Section, fn func(*Detail)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.guard.Current(tok) {
		return
	}
	if s.detail.ItemID != tok.Key() || s.detail.Missing {
		return
	}
	if s.detail.Sections == nil {
		s.detail.Sections = make(map[Section]SectionStatus)
	}
	fn(&s.detail)
}

// BeginFieldUpdate claims the mutation slot for one (item, field) pair. It
// returns false when a mutation for that slot is already in flight; the
// caller must drop the attempt, not queue it.
func (s *Store) BeginFieldUpdate(key FieldKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updating == nil {
		s.updating = make(map[FieldKey]struct{})
	}
	if _, busy := s.updating[key]; busy {
		return false
	}
	s.updating[key] = struct{}{}
	return true
}

// EndFieldUpdate releases the mutation slot.
func (s *Store) EndFieldUpdate(key FieldKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updating, key)
}

// PushNotice records a transient user-facing message, keeping the most
// recent few.
func (s *Store) PushNotice(info bool, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, Notice{Info: info, Text: text, At: time.Now()})
	if len(s.notices) > noticeLimit {
		s.notices = s.notices[len(s.notices)-noticeLimit:]
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Items:       cloneItems(s.items),
		Page:        s.page,
		PageSize:    s.pageSize,
		Total:       s.total,
		ListLoading: s.listLoading,
		ListErr:     s.listErr,
		LastUpdated: s.lastUpdated,
		Detail:      cloneDetail(s.detail),
		Notices:     append([]Notice(nil), s.notices...),
	}
	if len(s.updating) > 0 {
		snap.Updating = make(map[FieldKey]struct{}, len(s.updating))
		for k := range s.updating {
			snap.Updating[k] = struct{}{}
		}
	}
	return snap
}

func cloneItems(items []shelfd.LibraryItem) []shelfd.LibraryItem {
	if len(items) == 0 {
		return nil
	}
	dup := make([]shelfd.LibraryItem, len(items))
	for i, item := range items {
		dup[i] = cloneItem(item)
	}
	return dup
}

func cloneItem(item shelfd.LibraryItem) shelfd.LibraryItem {
	dup := item
	dup.Tags = append([]string(nil), item.Tags...)
	if item.Rating != nil {
		v := *item.Rating
		dup.Rating = &v
	}
	if item.PreferredEditionID != nil {
		v := *item.PreferredEditionID
		dup.PreferredEditionID = &v
	}
	if item.LastReadAt != nil {
		v := *item.LastReadAt
		dup.LastReadAt = &v
	}
	if item.Edition != nil {
		ed := *item.Edition
		ed.TotalPages = cloneIntPtr(item.Edition.TotalPages)
		ed.TotalAudioMinutes = cloneIntPtr(item.Edition.TotalAudioMinutes)
		ed.SuggestedPages = cloneIntPtr(item.Edition.SuggestedPages)
		ed.SuggestedAudioMinutes = cloneIntPtr(item.Edition.SuggestedAudioMinutes)
		dup.Edition = &ed
	}
	return dup
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneCycles(cycles []shelfd.ReadCycle) []shelfd.ReadCycle {
	if len(cycles) == 0 {
		return nil
	}
	dup := make([]shelfd.ReadCycle, len(cycles))
	for i, c := range cycles {
		dup[i] = c
		dup[i].Logs = append([]shelfd.ProgressLog(nil), c.Logs...)
	}
	return dup
}

func cloneStats(stats *shelfd.Statistics) *shelfd.Statistics {
	if stats == nil {
		return nil
	}
	dup := *stats
	dup.Days = append([]shelfd.DayStat(nil), stats.Days...)
	return &dup
}

func cloneDetail(d Detail) Detail {
	dup := d
	if d.Item != nil {
		item := cloneItem(*d.Item)
		dup.Item = &item
	}
	dup.Cycles = cloneCycles(d.Cycles)
	dup.Notes = append([]shelfd.Note(nil), d.Notes...)
	dup.Highlights = append([]shelfd.Highlight(nil), d.Highlights...)
	dup.Reviews = append([]shelfd.Review(nil), d.Reviews...)
	dup.Stats = cloneStats(d.Stats)
	if d.Sections != nil {
		dup.Sections = make(map[Section]SectionStatus, len(d.Sections))
		for k, v := range d.Sections {
			dup.Sections[k] = v
		}
	}
	return dup
}
