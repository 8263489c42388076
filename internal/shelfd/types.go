package shelfd

import "time"

// Status enumerates the reading states a library item can be in.
type Status string

const (
	StatusToRead    Status = "to_read"
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Statuses lists every valid status value in display order.
func Statuses() []Status {
	return []Status{StatusToRead, StatusReading, StatusCompleted, StatusAbandoned}
}

// Visibility controls whether an item or dependent record is shared.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// ProgressUnit identifies the unit a progress value was logged in.
type ProgressUnit string

const (
	UnitPagesRead       ProgressUnit = "pages_read"
	UnitMinutesListened ProgressUnit = "minutes_listened"
	UnitPercentComplete ProgressUnit = "percent_complete"
)

// Edition carries the per-edition totals needed to convert page and minute
// progress values into percent. Totals may be unknown; suggested values come
// from the server's bibliographic provider lookup when available.
type Edition struct {
	ID                    string `json:"id"`
	TotalPages            *int   `json:"total_pages"`
	TotalAudioMinutes     *int   `json:"total_audio_minutes"`
	SuggestedPages        *int   `json:"suggested_pages,omitempty"`
	SuggestedAudioMinutes *int   `json:"suggested_audio_minutes,omitempty"`
}

// LibraryItem is one catalogue entry in the user's library.
type LibraryItem struct {
	ID                 string     `json:"id"`
	WorkID             string     `json:"work_id"`
	Title              string     `json:"title"`
	Author             string     `json:"author,omitempty"`
	Status             Status     `json:"status"`
	Visibility         Visibility `json:"visibility"`
	Rating             *float64   `json:"rating"`
	PreferredEditionID *string    `json:"preferred_edition_id"`
	Tags               []string   `json:"tags"`
	Edition            *Edition   `json:"edition,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	LastReadAt         *time.Time `json:"last_read_at"`
}

// ItemPage mirrors one page of GET /library/items.
type ItemPage struct {
	Items    []LibraryItem `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
}

// ListQuery configures GET /library/items requests.
type ListQuery struct {
	Page       int
	PageSize   int
	Sort       string
	Status     Status
	Visibility Visibility
	Tag        string
}

// ItemPatch carries a single-field update for PATCH /library/items/{id}.
// Exactly one pointer is expected to be non-nil per request; the validate
// tags are enforced client-side before any request is issued.
type ItemPatch struct {
	Status             *Status     `json:"status,omitempty" validate:"omitempty,oneof=to_read reading completed abandoned"`
	Visibility         *Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=private public"`
	Rating             *float64    `json:"rating,omitempty" validate:"omitempty,min=0,max=10,halfstep"`
	PreferredEditionID *string     `json:"preferred_edition_id,omitempty"`
	Tags               []string    `json:"tags,omitempty"`
	StartedReadingAt   *time.Time  `json:"started_reading_at,omitempty"`
	FinishedReadingAt  *time.Time  `json:"finished_reading_at,omitempty"`
}

// ReadCycle is one attempt at reading an item. Progress logs are embedded in
// the read-cycles listing so a detail page needs a single fetch per section.
type ReadCycle struct {
	ID         string        `json:"id"`
	ItemID     string        `json:"item_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at"`
	Logs       []ProgressLog `json:"progress_logs"`
}

// Open reports whether the cycle has not been finished yet.
func (c ReadCycle) Open() bool { return c.FinishedAt == nil }

// ProgressLog is one recorded measurement within a cycle. Percent is the
// server-derived canonical 0-100 value; it is absent when the totals needed
// to derive it were unknown at log time.
type ProgressLog struct {
	ID       string       `json:"id"`
	CycleID  string       `json:"cycle_id"`
	LoggedAt time.Time    `json:"logged_at"`
	Unit     ProgressUnit `json:"unit"`
	Value    float64      `json:"value"`
	Percent  *float64     `json:"percent"`
	Note     string       `json:"note,omitempty"`
}

// ProgressEntry is the body for POST /read-cycles/{cycleId}/progress-logs.
type ProgressEntry struct {
	LoggedAt time.Time    `json:"logged_at"`
	Unit     ProgressUnit `json:"unit" validate:"oneof=pages_read minutes_listened percent_complete"`
	Value    float64      `json:"value" validate:"min=0"`
	Note     string       `json:"note,omitempty"`
}

// Note is a free-text annotation attached to one library item.
type Note struct {
	ID         string     `json:"id"`
	ItemID     string     `json:"item_id"`
	Body       string     `json:"body"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Highlight is a quoted passage attached to one library item.
type Highlight struct {
	ID         string     `json:"id"`
	ItemID     string     `json:"item_id"`
	Text       string     `json:"text"`
	Location   string     `json:"location,omitempty"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Review is the user's review of a work.
type Review struct {
	ID         string     `json:"id"`
	WorkID     string     `json:"work_id"`
	Body       string     `json:"body"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RecordPatch updates the body or visibility of a note, highlight, or review.
type RecordPatch struct {
	Body       *string     `json:"body,omitempty"`
	Visibility *Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=private public"`
}

// DayStat is one per-day aggregate from the statistics endpoint.
type DayStat struct {
	Date  string  `json:"date"`
	Delta float64 `json:"delta"`
}

// Statistics holds the server-computed reading aggregates for one item.
// The client consumes these read-only and refetches after every logged entry.
type Statistics struct {
	ActiveDayCount  int       `json:"active_day_count"`
	LastActiveDay   string    `json:"last_active_day"`
	CurrentStreak   int       `json:"current_streak"`
	TotalLogs       int       `json:"total_logs"`
	TotalPagesRead  int       `json:"total_pages_read"`
	TotalMinutes    int       `json:"total_minutes_listened"`
	PercentComplete float64   `json:"percent_complete"`
	Days            []DayStat `json:"days"`
}

// StatsQuery configures GET /library/items/{id}/statistics.
type StatsQuery struct {
	TZ   string
	Days int
}

// TotalsPatch is the body for PATCH /editions/{id}/totals.
type TotalsPatch struct {
	TotalPages        *int `json:"total_pages,omitempty" validate:"omitempty,min=1"`
	TotalAudioMinutes *int `json:"total_audio_minutes,omitempty" validate:"omitempty,min=1"`
}

// FieldResolution states how one mergeable field should be resolved: keep the
// value from one source item, or (tags only) combine every source's tags.
type FieldResolution struct {
	FromItemID  string `json:"from_item_id,omitempty"`
	CombineTags bool   `json:"combine_tags,omitempty"`
}

// MergeRequest is the shared body of merge preview and merge apply.
type MergeRequest struct {
	ItemIDs         []string                   `json:"item_ids"`
	TargetItemID    string                     `json:"target_item_id"`
	FieldResolution map[string]FieldResolution `json:"field_resolution"`
}

// ItemFieldValues is one source item's current mergeable-field values as
// reported by merge preview. Nil pointers mean the item does not define the
// field, which excludes it from conflict comparison.
type ItemFieldValues struct {
	ItemID             string      `json:"item_id"`
	Title              string      `json:"title"`
	Status             *Status     `json:"status"`
	Visibility         *Visibility `json:"visibility"`
	Rating             *float64    `json:"rating"`
	PreferredEditionID *string     `json:"preferred_edition_id"`
	Tags               []string    `json:"tags"`
}

// DependencyTally counts the dependent records of one source item that a
// merge would reassign to the target.
type DependencyTally struct {
	ReadCycles   int `json:"read_cycles"`
	ProgressLogs int `json:"progress_logs"`
	Notes        int `json:"notes"`
	Highlights   int `json:"highlights"`
	Reviews      int `json:"reviews"`
}

// Total sums the tally across record kinds.
func (t DependencyTally) Total() int {
	return t.ReadCycles + t.ProgressLogs + t.Notes + t.Highlights + t.Reviews
}

// MergePreview mirrors POST /library/items/merge/preview.
type MergePreview struct {
	Items   []ItemFieldValues          `json:"items"`
	Tallies map[string]DependencyTally `json:"tallies"`
}
