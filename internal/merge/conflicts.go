package merge

import (
	"sort"
	"strconv"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

// Mergeable field names shared by conflict reports and resolution maps.
const (
	FieldStatus           = "status"
	FieldVisibility       = "visibility"
	FieldRating           = "rating"
	FieldPreferredEdition = "preferred_edition"
	FieldTags             = "tags"
)

// MergeableFields lists every field a merge can carry over, in display order.
func MergeableFields() []string {
	return []string{FieldStatus, FieldVisibility, FieldRating, FieldPreferredEdition, FieldTags}
}

// computeConflicts flags each field that at least two defining items disagree
// on. Items without a value for a field sit out the comparison entirely; an
// undefined value is not a conflicting empty value.
func computeConflicts(items []shelfd.ItemFieldValues) map[string]bool {
	conflicts := make(map[string]bool, 5)

	conflicts[FieldStatus] = distinctDefined(items, func(v shelfd.ItemFieldValues) (string, bool) {
		if v.Status == nil {
			return "", false
		}
		return string(*v.Status), true
	})
	conflicts[FieldVisibility] = distinctDefined(items, func(v shelfd.ItemFieldValues) (string, bool) {
		if v.Visibility == nil {
			return "", false
		}
		return string(*v.Visibility), true
	})
	conflicts[FieldRating] = distinctDefined(items, func(v shelfd.ItemFieldValues) (string, bool) {
		if v.Rating == nil {
			return "", false
		}
		return ratingKey(*v.Rating), true
	})
	conflicts[FieldPreferredEdition] = distinctDefined(items, func(v shelfd.ItemFieldValues) (string, bool) {
		if v.PreferredEditionID == nil {
			return "", false
		}
		return *v.PreferredEditionID, true
	})
	conflicts[FieldTags] = distinctDefined(items, func(v shelfd.ItemFieldValues) (string, bool) {
		if len(v.Tags) == 0 {
			return "", false
		}
		return tagSetKey(v.Tags), true
	})

	return conflicts
}

// distinctDefined reports whether two items that define the field carry
// different values.
func distinctDefined(items []shelfd.ItemFieldValues, value func(shelfd.ItemFieldValues) (string, bool)) bool {
	var first string
	seen := false
	for _, item := range items {
		v, defined := value(item)
		if !defined {
			continue
		}
		if !seen {
			first = v
			seen = true
			continue
		}
		if v != first {
			return true
		}
	}
	return false
}

// CombinedTags returns the sorted union of every item's tags.
func CombinedTags(items []shelfd.ItemFieldValues) []string {
	set := make(map[string]struct{})
	for _, item := range items {
		for _, tag := range item.Tags {
			set[tag] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	combined := make([]string, 0, len(set))
	for tag := range set {
		combined = append(combined, tag)
	}
	sort.Strings(combined)
	return combined
}

func ratingKey(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func tagSetKey(tags []string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	key := ""
	for _, t := range sorted {
		key += t + "\x00"
	}
	return key
}
