package dataprocessing

import (
	"slices"
	"strings"

	"dhsclean/pkg/contracts/domain"
)

// SplitCharacteristic splits a "Category : Subcategory" label on its first
// colon. Both parts are trimmed and colons after the first stay in the
// subcategory. A label without a colon is both category and subcategory.
func SplitCharacteristic(characteristic string) (category, subcategory string) {
	s := strings.TrimSpace(characteristic)
	left, right, found := strings.Cut(s, ":")
	if !found {
		return s, s
	}
	return strings.TrimSpace(left), strings.TrimSpace(right)
}

// DecomposeCharacteristics fills Category and Subcategory from
// Characteristic. Null characteristics leave both fields null.
func DecomposeCharacteristics(records []domain.CleanRecord) []domain.CleanRecord {
	out := slices.Clone(records)
	for i := range out {
		if !out[i].Characteristic.Valid {
			out[i].Category = domain.Text{}
			out[i].Subcategory = domain.Text{}
			continue
		}
		category, subcategory := SplitCharacteristic(out[i].Characteristic.Value)
		out[i].Category = domain.TextOf(category)
		out[i].Subcategory = domain.TextOf(subcategory)
	}
	return out
}
