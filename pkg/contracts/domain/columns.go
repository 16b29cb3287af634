package domain

// Identifier columns of the raw export. They are bound by header name.
const (
	ColumnCountry        = "Country"
	ColumnSurvey         = "Survey"
	ColumnCharacteristic = "Characteristic"
)

// Columns synthesized by the cleaning stages.
const (
	ColumnSurveyYear      = "Survey_Year"
	ColumnSurveyStartYear = "Survey_Start_Year"
	ColumnSurveyEndYear   = "Survey_End_Year"
	ColumnCategory        = "Category"
	ColumnSubcategory     = "Subcategory"
	ColumnHasAllMetrics   = "Has_All_Metrics"
)

// MetricKind identifies one of the three overweight prevalence measures.
type MetricKind int

const (
	MetricChildren MetricKind = iota
	MetricWomen
	MetricMen
)

// MetricCount is the number of metric columns carried by every record.
const MetricCount = 3

// MetricKinds lists the metrics in output column order.
var MetricKinds = [MetricCount]MetricKind{MetricChildren, MetricWomen, MetricMen}

// metricSpec describes the naming of a metric across the raw and clean tables.
type metricSpec struct {
	source string // long descriptive header in the raw export
	output string // canonical short name in the clean table
	flag   string // completeness flag column
	marker string // header fragment that shows up in restated header rows
	label  string
}

var metricSpecs = [MetricCount]metricSpec{
	MetricChildren: {
		source: "Children overweight",
		output: "Children_Overweight_Pct",
		flag:   "Has_Complete_Children_Data",
		marker: "Children overweight",
		label:  "Children",
	},
	MetricWomen: {
		source: "Women who are overweight or obese according to BMI (>=25.0)",
		output: "Women_Overweight_Pct",
		flag:   "Has_Complete_Women_Data",
		marker: "Women who are overweight",
		label:  "Women",
	},
	MetricMen: {
		source: "Men who are overweight or obese according to BMI (>=25.0)",
		output: "Men_Overweight_Pct",
		flag:   "Has_Complete_Men_Data",
		marker: "Men who are overweight",
		label:  "Men",
	},
}

// SourceColumn returns the raw export header for the metric.
func (k MetricKind) SourceColumn() string { return metricSpecs[k].source }

// OutputColumn returns the clean table column name for the metric.
func (k MetricKind) OutputColumn() string { return metricSpecs[k].output }

// FlagColumn returns the completeness flag column for the metric.
func (k MetricKind) FlagColumn() string { return metricSpecs[k].flag }

// HeaderMarker returns the fragment used to recognise restated header rows.
func (k MetricKind) HeaderMarker() string { return metricSpecs[k].marker }

// String returns the population label (Children, Women, Men).
func (k MetricKind) String() string {
	if k < 0 || int(k) >= MetricCount {
		return "Unknown"
	}
	return metricSpecs[k].label
}

// OutputColumns is the authoritative column contract of the cleaned table.
// Downstream dashboards and handout generators depend on the exact order.
var OutputColumns = []string{
	ColumnCountry,
	ColumnSurvey,
	ColumnSurveyYear,
	ColumnSurveyStartYear,
	ColumnSurveyEndYear,
	ColumnCategory,
	ColumnSubcategory,
	ColumnCharacteristic,
	MetricChildren.OutputColumn(),
	MetricWomen.OutputColumn(),
	MetricMen.OutputColumn(),
	MetricChildren.FlagColumn(),
	MetricWomen.FlagColumn(),
	MetricMen.FlagColumn(),
	ColumnHasAllMetrics,
}

// Well-known Category labels. Consumers match on these verbatim.
const (
	CategoryTotal     = "Total"
	CategoryResidence = "Residence"
	CategoryWealth    = "Wealth quintile"
	CategoryStates    = "States"
	CategoryEducation = "Education"
	CategoryAgeGroups = "Age (5-year groups)"
)

// Well-known Subcategory labels.
const (
	SubcategoryUrban   = "Urban"
	SubcategoryRural   = "Rural"
	SubcategoryLowest  = "Lowest"
	SubcategorySecond  = "Second"
	SubcategoryMiddle  = "Middle"
	SubcategoryFourth  = "Fourth"
	SubcategoryHighest = "Highest"
)
