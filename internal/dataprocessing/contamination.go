package dataprocessing

import (
	"regexp"
	"strings"

	"dhsclean/pkg/contracts/domain"
)

// Predicate names, stable across runs. They appear in logs, the removal
// audit and the rows_removed metric.
const (
	PredicateCitationMarker      = "citation_marker"
	PredicateRestatedHeader      = "restated_header"
	PredicateDescriptionSentence = "description_sentence"
	PredicateNumericIdentifier   = "numeric_identifier"
)

// citationMarkers identify source attribution lines that the export tool
// appends below the data.
var citationMarkers = []string{"http", "icf", "usaid", "statcompiler"}

var descriptionPattern = regexp.MustCompile(`(?i)^percentage of`)

// RowFields are the identifier fields the contamination predicates inspect.
type RowFields struct {
	Country domain.Text
	Survey  domain.Text
}

// Predicate is a named contamination rule. Match must treat null fields as
// non-matching and must not fail on any input.
type Predicate struct {
	Name  string
	Match func(RowFields) bool
}

// DefaultPredicates returns the contamination rules in evaluation order.
func DefaultPredicates() []Predicate {
	return []Predicate{
		{Name: PredicateCitationMarker, Match: IsCitation},
		{Name: PredicateRestatedHeader, Match: IsRestatedHeader},
		{Name: PredicateDescriptionSentence, Match: IsDescriptionSentence},
		{Name: PredicateNumericIdentifier, Match: IsNumericIdentifier},
	}
}

// IsCitation reports whether Country carries a citation or provider marker.
func IsCitation(f RowFields) bool {
	if !f.Country.Valid {
		return false
	}
	return containsAnyFold(f.Country.Value, citationMarkers)
}

// IsRestatedHeader reports whether Country or Survey repeats one of the
// metric column headers.
func IsRestatedHeader(f RowFields) bool {
	markers := make([]string, 0, domain.MetricCount)
	for _, kind := range domain.MetricKinds {
		markers = append(markers, kind.HeaderMarker())
	}
	for _, field := range []domain.Text{f.Country, f.Survey} {
		if field.Valid && containsAnyFold(field.Value, markers) {
			return true
		}
	}
	return false
}

// IsDescriptionSentence reports whether Survey is an indicator description
// such as "Percentage of children who are overweight".
func IsDescriptionSentence(f RowFields) bool {
	if !f.Survey.Valid {
		return false
	}
	return descriptionPattern.MatchString(f.Survey.Value)
}

// IsNumericIdentifier reports whether Country parses as a number. Any
// numeric Country is treated as a value shifted into the identifier column.
func IsNumericIdentifier(f RowFields) bool {
	if !f.Country.Valid {
		return false
	}
	_, ok := ParseNumber(f.Country.Value)
	return ok
}

func containsAnyFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Verdict is the detector's result for one row.
type Verdict struct {
	Row     int
	Matched []string // names of the predicates that matched, in rule order
}

// Contaminated reports whether any predicate matched.
func (v Verdict) Contaminated() bool { return len(v.Matched) > 0 }

// Detector folds an ordered list of predicates over each row.
type Detector struct {
	predicates []Predicate
}

// NewDetector creates a detector. With no predicates it uses DefaultPredicates.
func NewDetector(predicates ...Predicate) *Detector {
	if len(predicates) == 0 {
		predicates = DefaultPredicates()
	}
	return &Detector{predicates: predicates}
}

// Predicates returns the detector's rules in evaluation order.
func (d *Detector) Predicates() []Predicate {
	return d.predicates
}

// Evaluate returns the verdict for a single row.
func (d *Detector) Evaluate(f RowFields) []string {
	var matched []string
	for _, p := range d.predicates {
		if p.Match(f) {
			matched = append(matched, p.Name)
		}
	}
	return matched
}

// Detect returns one verdict per row of table, in row order.
func (d *Detector) Detect(table *domain.RawTable) []Verdict {
	verdicts := make([]Verdict, len(table.Rows))
	for i, row := range table.Rows {
		verdicts[i] = Verdict{
			Row: i,
			Matched: d.Evaluate(RowFields{
				Country: table.Country(row),
				Survey:  table.Survey(row),
			}),
		}
	}
	return verdicts
}

// Mask converts verdicts to the boolean contamination mask.
func Mask(verdicts []Verdict) []bool {
	mask := make([]bool, len(verdicts))
	for i, v := range verdicts {
		mask[i] = v.Contaminated()
	}
	return mask
}
