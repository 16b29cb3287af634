package dataprocessing

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"dhsclean/pkg/contracts/domain"
)

// ParseNumber parses s as a decimal number after trimming surrounding
// space. It never fails loudly: unparseable input, NaN and infinities
// report false.
func ParseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CoerceMetric converts a metric cell to a Metric. Null and unparseable
// cells become the missing-value sentinel.
func CoerceMetric(t domain.Text) domain.Metric {
	if !t.Valid {
		return domain.Metric{}
	}
	v, ok := ParseNumber(t.Value)
	if !ok {
		return domain.Metric{}
	}
	return domain.MetricOf(v)
}

// NormalizeMetrics coerces the three metric cells of every record. The
// result depends only on the exported cell text, so applying it again
// yields the same table.
func NormalizeMetrics(records []domain.CleanRecord) []domain.CleanRecord {
	out := slices.Clone(records)
	for i := range out {
		for _, kind := range domain.MetricKinds {
			out[i].Metrics[kind] = CoerceMetric(out[i].RawMetrics[kind])
		}
	}
	return out
}
