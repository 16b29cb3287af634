package exporter

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"dhsclean/internal/dataprocessing"
	"dhsclean/pkg/contracts/domain"
)

// Color modes accepted by NewReportRenderer
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// UseColor decides whether output to out is colored. In auto mode only
// terminals get color.
func UseColor(out io.Writer, mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ReportRenderer prints a quality report as human-readable text
type ReportRenderer struct {
	out io.Writer

	title   *color.Color
	success *color.Color
	warning *color.Color
	failure *color.Color
}

// NewReportRenderer creates a renderer writing to out
func NewReportRenderer(out io.Writer, mode string) *ReportRenderer {
	r := &ReportRenderer{
		out:     out,
		title:   color.New(color.FgCyan, color.Bold),
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed),
	}
	enabled := UseColor(out, mode)
	for _, c := range []*color.Color{r.title, r.success, r.warning, r.failure} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render writes the full report
func (r *ReportRenderer) Render(report *dataprocessing.QualityReport) error {
	if report == nil {
		return fmt.Errorf("no report to render")
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, r.title.Sprint("DATA QUALITY REPORT"))
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&buf, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	}

	if report.RawRows > 0 || len(report.Removed) > 0 {
		r.renderFiltering(&buf, report)
	}
	r.renderOverview(&buf, report)
	r.renderCategories(&buf, report)
	r.renderMissing(&buf, report)
	r.renderCompleteness(&buf, report)
	r.renderStats(&buf, report)
	r.renderTrend(&buf, report)
	r.renderSample(&buf, report)
	r.renderSteps(&buf, report)

	_, err := r.out.Write(buf.Bytes())
	return err
}

func (r *ReportRenderer) section(buf *bytes.Buffer, name string) {
	fmt.Fprintf(buf, "\n%s\n", r.title.Sprint(name))
}

func (r *ReportRenderer) renderFiltering(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	r.section(buf, "Contamination")
	fmt.Fprintf(buf, "Rows before filtering: %d\n", report.RawRows)
	removed := strconv.Itoa(len(report.Removed))
	if len(report.Removed) > 0 {
		removed = r.warning.Sprint(removed)
	}
	fmt.Fprintf(buf, "Rows removed: %s\n", removed)
	fmt.Fprintf(buf, "Rows after filtering: %d\n", report.Rows)

	if len(report.Removed) == 0 {
		return
	}
	table := newTable(buf, "Row", "Country", "Survey", "Matched")
	for _, row := range report.Removed {
		table.Append([]string{
			strconv.Itoa(row.SourceIndex),
			row.Country,
			row.Survey,
			strings.Join(row.Predicates, ", "),
		})
	}
	table.Render()
}

func (r *ReportRenderer) renderOverview(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	r.section(buf, "Dataset")
	fmt.Fprintf(buf, "Rows: %d\n", report.Rows)
	fmt.Fprintf(buf, "Columns: %d\n", report.Columns)
	if report.FirstYear.Valid {
		fmt.Fprintf(buf, "Survey years: %d to %d\n", report.FirstYear.Value, report.LastYear.Value)
	} else {
		fmt.Fprintln(buf, "Survey years: n/a")
	}
	fmt.Fprintf(buf, "Surveys (%d): %s\n", len(report.Surveys), strings.Join(report.Surveys, "; "))
	fmt.Fprintf(buf, "Countries (%d): %s\n", len(report.Countries), strings.Join(report.Countries, "; "))
}

func (r *ReportRenderer) renderCategories(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	r.section(buf, "Categories")
	if len(report.Categories) == 0 {
		fmt.Fprintln(buf, "none")
		return
	}
	table := newTable(buf, "Category", "Rows")
	for _, c := range report.Categories {
		table.Append([]string{c.Category, strconv.Itoa(c.Rows)})
	}
	table.Render()
}

func (r *ReportRenderer) renderMissing(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	r.section(buf, "Missing values")
	table := newTable(buf, "Column", "Missing", "Percent")
	for _, m := range report.Missing {
		table.Append([]string{m.Column, strconv.Itoa(m.Missing), formatPercent(m.Percent)})
	}
	table.Render()

	for _, m := range report.Missing {
		if len(m.ByCategory) == 0 {
			continue
		}
		parts := make([]string, len(m.ByCategory))
		for i, c := range m.ByCategory {
			parts[i] = fmt.Sprintf("%s: %d", c.Category, c.Rows)
		}
		fmt.Fprintf(buf, "%s missing by category: %s\n", m.Column, strings.Join(parts, ", "))
	}
}

func (r *ReportRenderer) renderCompleteness(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	r.section(buf, "Completeness")
	table := newTable(buf, "Flag", "Rows", "Percent")
	for _, f := range report.Complete {
		table.Append([]string{f.Column, strconv.Itoa(f.Count), formatPercent(f.Percent)})
	}
	table.Append([]string{report.AllMetrics.Column, strconv.Itoa(report.AllMetrics.Count), formatPercent(report.AllMetrics.Percent)})
	table.Render()
}

func (r *ReportRenderer) renderStats(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	r.section(buf, "Metric statistics")
	table := newTable(buf, "Column", "Count", "Min", "Max", "Mean", "Median", "StdDev")
	for _, s := range report.Stats {
		table.Append([]string{
			s.Column,
			strconv.Itoa(s.Count),
			formatStat(s.Min),
			formatStat(s.Max),
			formatStat(s.Mean),
			formatStat(s.Median),
			formatStat(s.StdDev),
		})
	}
	table.Render()
}

func (r *ReportRenderer) renderTrend(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	r.section(buf, "National trend (Category Total)")
	if len(report.Trend) == 0 {
		fmt.Fprintln(buf, "none")
		return
	}
	table := newTable(buf, "Survey_Year", "Children", "Women", "Men")
	for _, p := range report.Trend {
		row := []string{strconv.Itoa(p.Year)}
		for _, m := range p.Means {
			row = append(row, formatStatMetric(m))
		}
		table.Append(row)
	}
	table.Render()
}

func (r *ReportRenderer) renderSample(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	if len(report.Sample) == 0 {
		return
	}
	r.section(buf, fmt.Sprintf("Sample (first %d rows)", len(report.Sample)))
	table := newTable(buf,
		domain.ColumnSurveyYear,
		domain.ColumnCategory,
		domain.ColumnSubcategory,
		domain.MetricChildren.OutputColumn(),
		domain.MetricWomen.OutputColumn(),
		domain.MetricMen.OutputColumn(),
		domain.ColumnHasAllMetrics,
	)
	for _, rec := range report.Sample {
		table.Append([]string{
			formatYear(rec.SurveyYear),
			rec.Category.String(),
			rec.Subcategory.String(),
			formatMetric(rec.Metrics[domain.MetricChildren]),
			formatMetric(rec.Metrics[domain.MetricWomen]),
			formatMetric(rec.Metrics[domain.MetricMen]),
			formatBool(rec.HasAllMetrics),
		})
	}
	table.Render()
}

func (r *ReportRenderer) renderSteps(buf *bytes.Buffer, report *dataprocessing.QualityReport) {
	if len(report.Steps) == 0 {
		return
	}
	r.section(buf, "Pipeline steps")
	table := newTable(buf, "Step", "Status", "Duration")
	for _, s := range report.Steps {
		table.Append([]string{s.Name, r.status(s.Status), s.Duration.Round(time.Microsecond).String()})
	}
	table.Render()
}

func (r *ReportRenderer) status(s string) string {
	switch s {
	case "completed":
		return r.success.Sprint(s)
	case "failed":
		return r.failure.Sprint(s)
	case "skipped":
		return r.warning.Sprint(s)
	}
	return s
}

func newTable(out io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", v)
}

func formatStatMetric(m domain.Metric) string {
	if m.Missing() {
		return "n/a"
	}
	return formatStat(m.Value)
}
