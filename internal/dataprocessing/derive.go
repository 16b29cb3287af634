package dataprocessing

import (
	"slices"

	"dhsclean/pkg/contracts/domain"
)

// DeriveFields sets Survey_Year from the start year and recomputes the
// completeness flags from the current metric values.
func DeriveFields(records []domain.CleanRecord) []domain.CleanRecord {
	out := slices.Clone(records)
	for i := range out {
		rec := &out[i]
		rec.SurveyYear = rec.SurveyStartYear

		all := true
		for _, kind := range domain.MetricKinds {
			rec.Complete[kind] = !rec.Metrics[kind].Missing()
			all = all && rec.Complete[kind]
		}
		rec.HasAllMetrics = all
	}
	return out
}
