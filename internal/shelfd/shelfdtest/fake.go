// Package shelfdtest provides an in-memory shelfd.API fake for tests.
// Each method delegates to an optional func field; unset methods succeed
// with zero values so a test only wires the calls it cares about.
package shelfdtest

import (
	"context"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

// Fake implements shelfd.API with overridable behavior per method.
type Fake struct {
	ListItemsFunc       func(ctx context.Context, query shelfd.ListQuery) (shelfd.ItemPage, error)
	FetchItemFunc       func(ctx context.Context, id string) (*shelfd.LibraryItem, error)
	PatchItemFunc       func(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error)
	DeleteItemFunc      func(ctx context.Context, id string) error
	FetchReadCyclesFunc func(ctx context.Context, itemID string) ([]shelfd.ReadCycle, error)
	CreateReadCycleFunc func(ctx context.Context, itemID, idempotencyKey string) (*shelfd.ReadCycle, error)
	LogProgressFunc     func(ctx context.Context, cycleID string, entry shelfd.ProgressEntry, idempotencyKey string) (*shelfd.ProgressLog, error)
	FetchStatisticsFunc func(ctx context.Context, itemID string, query shelfd.StatsQuery) (*shelfd.Statistics, error)

	FetchNotesFunc func(ctx context.Context, itemID string) ([]shelfd.Note, error)
	CreateNoteFunc func(ctx context.Context, itemID string, body string, visibility shelfd.Visibility) (*shelfd.Note, error)
	PatchNoteFunc  func(ctx context.Context, noteID string, patch shelfd.RecordPatch) (*shelfd.Note, error)
	DeleteNoteFunc func(ctx context.Context, noteID string) error

	FetchHighlightsFunc func(ctx context.Context, itemID string) ([]shelfd.Highlight, error)
	PatchHighlightFunc  func(ctx context.Context, highlightID string, patch shelfd.RecordPatch) (*shelfd.Highlight, error)
	DeleteHighlightFunc func(ctx context.Context, highlightID string) error

	FetchReviewsFunc func(ctx context.Context, itemID string) ([]shelfd.Review, error)
	PatchReviewFunc  func(ctx context.Context, reviewID string, patch shelfd.RecordPatch) (*shelfd.Review, error)
	DeleteReviewFunc func(ctx context.Context, reviewID string) error

	MergePreviewFunc func(ctx context.Context, req shelfd.MergeRequest) (*shelfd.MergePreview, error)
	MergeApplyFunc   func(ctx context.Context, req shelfd.MergeRequest, idempotencyKey string) error

	UpdateEditionTotalsFunc func(ctx context.Context, editionID string, patch shelfd.TotalsPatch) (*shelfd.Edition, error)
}

var _ shelfd.API = (*Fake)(nil)

func (f *Fake) ListItems(ctx context.Context, query shelfd.ListQuery) (shelfd.ItemPage, error) {
	if f.ListItemsFunc != nil {
		return f.ListItemsFunc(ctx, query)
	}
	return shelfd.ItemPage{}, nil
}

func (f *Fake) FetchItem(ctx context.Context, id string) (*shelfd.LibraryItem, error) {
	if f.FetchItemFunc != nil {
		return f.FetchItemFunc(ctx, id)
	}
	return &shelfd.LibraryItem{ID: id}, nil
}

func (f *Fake) PatchItem(ctx context.Context, id string, patch shelfd.ItemPatch) (*shelfd.LibraryItem, error) {
	if f.PatchItemFunc != nil {
		return f.PatchItemFunc(ctx, id, patch)
	}
	return &shelfd.LibraryItem{ID: id}, nil
}

func (f *Fake) DeleteItem(ctx context.Context, id string) error {
	if f.DeleteItemFunc != nil {
		return f.DeleteItemFunc(ctx, id)
	}
	return nil
}

func (f *Fake) FetchReadCycles(ctx context.Context, itemID string) ([]shelfd.ReadCycle, error) {
	if f.FetchReadCyclesFunc != nil {
		return f.FetchReadCyclesFunc(ctx, itemID)
	}
	return nil, nil
}

func (f *Fake) CreateReadCycle(ctx context.Context, itemID, idempotencyKey string) (*shelfd.ReadCycle, error) {
	if f.CreateReadCycleFunc != nil {
		return f.CreateReadCycleFunc(ctx, itemID, idempotencyKey)
	}
	return &shelfd.ReadCycle{ID: "rc_fake", ItemID: itemID}, nil
}

func (f *Fake) LogProgress(ctx context.Context, cycleID string, entry shelfd.ProgressEntry, idempotencyKey string) (*shelfd.ProgressLog, error) {
	if f.LogProgressFunc != nil {
		return f.LogProgressFunc(ctx, cycleID, entry, idempotencyKey)
	}
	return &shelfd.ProgressLog{ID: "pl_fake", CycleID: cycleID, Unit: entry.Unit, Value: entry.Value}, nil
}

func (f *Fake) FetchStatistics(ctx context.Context, itemID string, query shelfd.StatsQuery) (*shelfd.Statistics, error) {
	if f.FetchStatisticsFunc != nil {
		return f.FetchStatisticsFunc(ctx, itemID, query)
	}
	return &shelfd.Statistics{}, nil
}

func (f *Fake) FetchNotes(ctx context.Context, itemID string) ([]shelfd.Note, error) {
	if f.FetchNotesFunc != nil {
		return f.FetchNotesFunc(ctx, itemID)
	}
	return nil, nil
}

func (f *Fake) CreateNote(ctx context.Context, itemID string, body string, visibility shelfd.Visibility) (*shelfd.Note, error) {
	if f.CreateNoteFunc != nil {
		return f.CreateNoteFunc(ctx, itemID, body, visibility)
	}
	return &shelfd.Note{ID: "n_fake", ItemID: itemID, Body: body, Visibility: visibility}, nil
}

func (f *Fake) PatchNote(ctx context.Context, noteID string, patch shelfd.RecordPatch) (*shelfd.Note, error) {
	if f.PatchNoteFunc != nil {
		return f.PatchNoteFunc(ctx, noteID, patch)
	}
	return &shelfd.Note{ID: noteID}, nil
}

func (f *Fake) DeleteNote(ctx context.Context, noteID string) error {
	if f.DeleteNoteFunc != nil {
		return f.DeleteNoteFunc(ctx, noteID)
	}
	return nil
}

func (f *Fake) FetchHighlights(ctx context.Context, itemID string) ([]shelfd.Highlight, error) {
	if f.FetchHighlightsFunc != nil {
		return f.FetchHighlightsFunc(ctx, itemID)
	}
	return nil, nil
}

func (f *Fake) PatchHighlight(ctx context.Context, highlightID string, patch shelfd.RecordPatch) (*shelfd.Highlight, error) {
	if f.PatchHighlightFunc != nil {
		return f.PatchHighlightFunc(ctx, highlightID, patch)
	}
	return &shelfd.Highlight{ID: highlightID}, nil
}

func (f *Fake) DeleteHighlight(ctx context.Context, highlightID string) error {
	if f.DeleteHighlightFunc != nil {
		return f.DeleteHighlightFunc(ctx, highlightID)
	}
	return nil
}

func (f *Fake) FetchReviews(ctx context.Context, itemID string) ([]shelfd.Review, error) {
	if f.FetchReviewsFunc != nil {
		return f.FetchReviewsFunc(ctx, itemID)
	}
	return nil, nil
}

func (f *Fake) PatchReview(ctx context.Context, reviewID string, patch shelfd.RecordPatch) (*shelfd.Review, error) {
	if f.PatchReviewFunc != nil {
		return f.PatchReviewFunc(ctx, reviewID, patch)
	}
	return &shelfd.Review{ID: reviewID}, nil
}

func (f *Fake) DeleteReview(ctx context.Context, reviewID string) error {
	if f.DeleteReviewFunc != nil {
		return f.DeleteReviewFunc(ctx, reviewID)
	}
	return nil
}

func (f *Fake) MergePreview(ctx context.Context, req shelfd.MergeRequest) (*shelfd.MergePreview, error) {
	if f.MergePreviewFunc != nil {
		return f.MergePreviewFunc(ctx, req)
	}
	return &shelfd.MergePreview{}, nil
}

func (f *Fake) MergeApply(ctx context.Context, req shelfd.MergeRequest, idempotencyKey string) error {
	if f.MergeApplyFunc != nil {
		return f.MergeApplyFunc(ctx, req, idempotencyKey)
	}
	return nil
}

func (f *Fake) UpdateEditionTotals(ctx context.Context, editionID string, patch shelfd.TotalsPatch) (*shelfd.Edition, error) {
	if f.UpdateEditionTotalsFunc != nil {
		return f.UpdateEditionTotalsFunc(ctx, editionID, patch)
	}
	return &shelfd.Edition{ID: editionID}, nil
}

// NotFound builds the 404-class error the sync layer special-cases.
func NotFound(message string) error {
	return &shelfd.APIError{Status: 404, Code: "NOT_FOUND", Message: message}
}

// ServerError builds a generic remote failure.
func ServerError(message string) error {
	return &shelfd.APIError{Status: 500, Code: "INTERNAL", Message: message}
}
