package dataprocessing

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dhsclean/pkg/contracts/domain"
)

// QualityConfig holds options for the quality reporter.
type QualityConfig struct {
	SampleRows int // leading rows copied into the report
}

// CategoryCount is a row count for one Category label.
type CategoryCount struct {
	Category string
	Rows     int
}

// MissingStat describes missingness of one metric column.
type MissingStat struct {
	Column     string
	Missing    int
	Percent    float64
	ByCategory []CategoryCount // categories with at least one missing value
}

// FlagCount is the number of rows where a completeness flag is true.
type FlagCount struct {
	Column  string
	Count   int
	Percent float64
}

// MetricStats are distribution statistics over the non-missing values of
// one metric. StdDev is the sample standard deviation and is NaN for fewer
// than two values.
type MetricStats struct {
	Column string
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// TrendPoint is the national (Category Total) mean of each metric for one
// survey year.
type TrendPoint struct {
	Year  int
	Means [domain.MetricCount]domain.Metric
}

// StepSummary is the outcome of one pipeline step.
type StepSummary struct {
	Name     string
	Status   string
	Duration time.Duration
}

// QualityReport is the read-only summary of a cleaned table.
type QualityReport struct {
	GeneratedAt time.Time

	RawRows    int
	Removed    []RemovedRow
	Rows       int
	Columns    int
	FirstYear  domain.Year
	LastYear   domain.Year
	Surveys    []string
	Countries  []string
	Categories []CategoryCount
	Missing    [domain.MetricCount]MissingStat
	Complete   [domain.MetricCount]FlagCount
	AllMetrics FlagCount
	Stats      [domain.MetricCount]MetricStats
	Trend      []TrendPoint
	Sample     []domain.CleanRecord
	Steps      []StepSummary
}

// QualityReporter computes a QualityReport. It never modifies its input.
type QualityReporter struct {
	logger *slog.Logger
	config QualityConfig
	now    func() time.Time
}

// NewQualityReporter creates a quality reporter.
func NewQualityReporter(logger *slog.Logger, config QualityConfig) *QualityReporter {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SampleRows < 0 {
		config.SampleRows = 0
	}
	return &QualityReporter{logger: logger, config: config, now: time.Now}
}

// Report summarizes table.
func (q *QualityReporter) Report(table *domain.CleanTable) *QualityReport {
	report := &QualityReport{GeneratedAt: q.now()}
	if table == nil {
		return report
	}
	records := table.Records
	report.Rows = len(records)
	report.Columns = len(table.Columns)

	report.FirstYear, report.LastYear = yearRange(records)
	report.Surveys = distinct(records, func(r domain.CleanRecord) domain.Text { return r.Survey })
	report.Countries = distinct(records, func(r domain.CleanRecord) domain.Text { return r.Country })
	report.Categories = categoryCounts(records)

	for _, kind := range domain.MetricKinds {
		report.Missing[kind] = missingStat(records, kind)
		report.Complete[kind] = flagCount(records, kind.FlagColumn(), func(r domain.CleanRecord) bool { return r.Complete[kind] })
		report.Stats[kind] = metricStats(records, kind)
	}
	report.AllMetrics = flagCount(records, domain.ColumnHasAllMetrics, func(r domain.CleanRecord) bool { return r.HasAllMetrics })
	report.Trend = nationalTrend(records)

	n := min(q.config.SampleRows, len(records))
	report.Sample = append([]domain.CleanRecord(nil), records[:n]...)

	q.logger.Debug("Quality report computed",
		slog.Int("rows", report.Rows),
		slog.Int("categories", len(report.Categories)),
		slog.Int("surveys", len(report.Surveys)))
	return report
}

// yearRange returns the earliest start year and the latest end year.
func yearRange(records []domain.CleanRecord) (first, last domain.Year) {
	for _, r := range records {
		if r.SurveyStartYear.Valid && (!first.Valid || r.SurveyStartYear.Value < first.Value) {
			first = r.SurveyStartYear
		}
		if r.SurveyEndYear.Valid && (!last.Valid || r.SurveyEndYear.Value > last.Value) {
			last = r.SurveyEndYear
		}
	}
	return first, last
}

func distinct(records []domain.CleanRecord, field func(domain.CleanRecord) domain.Text) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		v := field(r)
		if v.Valid && !seen[v.Value] {
			seen[v.Value] = true
			out = append(out, v.Value)
		}
	}
	sort.Strings(out)
	return out
}

func categoryCounts(records []domain.CleanRecord) []CategoryCount {
	return countByCategory(records, func(domain.CleanRecord) bool { return true })
}

// countByCategory counts records matching keep per Category, sorted by label.
func countByCategory(records []domain.CleanRecord, keep func(domain.CleanRecord) bool) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Category.Valid && keep(r) {
			counts[r.Category.Value]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for category, n := range counts {
		out = append(out, CategoryCount{Category: category, Rows: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func missingStat(records []domain.CleanRecord, kind domain.MetricKind) MissingStat {
	isMissing := func(r domain.CleanRecord) bool { return r.Metrics[kind].Missing() }

	missing := 0
	for _, r := range records {
		if isMissing(r) {
			missing++
		}
	}
	return MissingStat{
		Column:     kind.OutputColumn(),
		Missing:    missing,
		Percent:    percent(missing, len(records)),
		ByCategory: countByCategory(records, isMissing),
	}
}

func flagCount(records []domain.CleanRecord, column string, flag func(domain.CleanRecord) bool) FlagCount {
	n := 0
	for _, r := range records {
		if flag(r) {
			n++
		}
	}
	return FlagCount{Column: column, Count: n, Percent: percent(n, len(records))}
}

func metricStats(records []domain.CleanRecord, kind domain.MetricKind) MetricStats {
	values := presentValues(records, kind)
	st := MetricStats{Column: kind.OutputColumn(), Count: len(values)}
	if len(values) == 0 {
		st.Min, st.Max, st.Mean, st.Median, st.StdDev = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return st
	}

	st.Min = floats.Min(values)
	st.Max = floats.Max(values)
	st.Mean = stat.Mean(values, nil)
	st.Median = median(values)
	if len(values) > 1 {
		st.StdDev = stat.StdDev(values, nil)
	} else {
		st.StdDev = math.NaN()
	}
	return st
}

func presentValues(records []domain.CleanRecord, kind domain.MetricKind) []float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if m := r.Metrics[kind]; m.Valid {
			values = append(values, m.Value)
		}
	}
	return values
}

// median averages the two middle values of an even-length sample.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// nationalTrend averages each metric per Survey_Year over Total rows.
func nationalTrend(records []domain.CleanRecord) []TrendPoint {
	byYear := make(map[int][]domain.CleanRecord)
	for _, r := range records {
		if r.InCategory(domain.CategoryTotal) && r.SurveyYear.Valid {
			byYear[r.SurveyYear.Value] = append(byYear[r.SurveyYear.Value], r)
		}
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	trend := make([]TrendPoint, 0, len(years))
	for _, y := range years {
		point := TrendPoint{Year: y}
		for _, kind := range domain.MetricKinds {
			if values := presentValues(byYear[y], kind); len(values) > 0 {
				point.Means[kind] = domain.MetricOf(stat.Mean(values, nil))
			}
		}
		trend = append(trend, point)
	}
	return trend
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
