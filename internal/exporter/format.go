package exporter

import (
	"strconv"
	"strings"

	"dhsclean/pkg/contracts/domain"
)

// formatMetric writes the shortest decimal form of a present metric, keeping
// a trailing ".0" on integral values. Missing metrics are empty.
func formatMetric(m domain.Metric) string {
	if m.Missing() {
		return ""
	}
	s := strconv.FormatFloat(m.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// formatYear formats a year as an integer, or empty for null
func formatYear(y domain.Year) string {
	if !y.Valid {
		return ""
	}
	return strconv.Itoa(y.Value)
}

// formatBool formats a flag as a boolean literal
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// formatRecord lays a record out in output column order
func formatRecord(r domain.CleanRecord) []string {
	return []string{
		r.Country.String(),
		r.Survey.String(),
		formatYear(r.SurveyYear),
		formatYear(r.SurveyStartYear),
		formatYear(r.SurveyEndYear),
		r.Category.String(),
		r.Subcategory.String(),
		r.Characteristic.String(),
		formatMetric(r.Metrics[domain.MetricChildren]),
		formatMetric(r.Metrics[domain.MetricWomen]),
		formatMetric(r.Metrics[domain.MetricMen]),
		formatBool(r.Complete[domain.MetricChildren]),
		formatBool(r.Complete[domain.MetricWomen]),
		formatBool(r.Complete[domain.MetricMen]),
		formatBool(r.HasAllMetrics),
	}
}
