package merge

import (
	"reflect"
	"testing"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

func statusPtr(s shelfd.Status) *shelfd.Status      { return &s }
func visPtr(v shelfd.Visibility) *shelfd.Visibility { return &v }
func ratingPtr(r float64) *float64                  { return &r }
func editionPtr(id string) *string                  { return &id }

func TestComputeConflicts_UndefinedValuesAreExcluded(t *testing.T) {
	items := []shelfd.ItemFieldValues{
		{ItemID: "li_1", Status: statusPtr(shelfd.StatusReading), Rating: ratingPtr(8)},
		{ItemID: "li_2", Status: statusPtr(shelfd.StatusReading)}, // no rating: sits out
		{ItemID: "li_3"},                                          // defines nothing
	}

	conflicts := computeConflicts(items)

	if conflicts[FieldStatus] {
		t.Fatal("status flagged conflicting though all defined values agree")
	}
	if conflicts[FieldRating] {
		t.Fatal("rating flagged conflicting though only one item defines it")
	}
}

func TestComputeConflicts_TwoDefinedDisagreeingValuesConflict(t *testing.T) {
	items := []shelfd.ItemFieldValues{
		{ItemID: "li_1", Status: statusPtr(shelfd.StatusReading), Visibility: visPtr(shelfd.VisibilityPrivate)},
		{ItemID: "li_2", Status: statusPtr(shelfd.StatusCompleted), Visibility: visPtr(shelfd.VisibilityPrivate)},
		{ItemID: "li_3", Rating: ratingPtr(7), PreferredEditionID: editionPtr("ed_1")},
		{ItemID: "li_4", Rating: ratingPtr(7.5), PreferredEditionID: editionPtr("ed_2")},
	}

	conflicts := computeConflicts(items)

	if !conflicts[FieldStatus] {
		t.Fatal("status conflict not detected")
	}
	if conflicts[FieldVisibility] {
		t.Fatal("visibility flagged conflicting though equal")
	}
	if !conflicts[FieldRating] {
		t.Fatal("half-point rating difference not detected")
	}
	if !conflicts[FieldPreferredEdition] {
		t.Fatal("preferred edition conflict not detected")
	}
}

func TestComputeConflicts_TagSetsCompareAsSets(t *testing.T) {
	same := computeConflicts([]shelfd.ItemFieldValues{
		{ItemID: "li_1", Tags: []string{"sf", "classic"}},
		{ItemID: "li_2", Tags: []string{"classic", "sf"}},
	})
	if same[FieldTags] {
		t.Fatal("order-only difference flagged as tag conflict")
	}

	differ := computeConflicts([]shelfd.ItemFieldValues{
		{ItemID: "li_1", Tags: []string{"sf"}},
		{ItemID: "li_2", Tags: []string{"sf", "signed"}},
		{ItemID: "li_3"}, // untagged item sits out
	})
	if !differ[FieldTags] {
		t.Fatal("differing tag sets not flagged")
	}
}

func TestCombinedTags_SortedUnion(t *testing.T) {
	items := []shelfd.ItemFieldValues{
		{ItemID: "li_1", Tags: []string{"sf", "classic"}},
		{ItemID: "li_2", Tags: []string{"signed", "sf"}},
		{ItemID: "li_3"},
	}
	got := CombinedTags(items)
	want := []string{"classic", "sf", "signed"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CombinedTags = %v, want %v", got, want)
	}
}
