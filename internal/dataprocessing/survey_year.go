package dataprocessing

import (
	"regexp"
	"slices"
	"strconv"

	"dhsclean/pkg/contracts/domain"
)

var surveyYearPattern = regexp.MustCompile(`(\d{4})-(\d{2,4})`)

// ParseSurveyYears extracts the year range embedded in a survey label,
// e.g. "2019-21 DHS" gives (2019, 2021). A two digit end year takes the
// century of the start year, so a range may not cross a century. No match
// gives two null years.
func ParseSurveyYears(survey domain.Text) (start, end domain.Year) {
	if !survey.Valid {
		return domain.Year{}, domain.Year{}
	}
	m := surveyYearPattern.FindStringSubmatch(survey.Value)
	if m == nil {
		return domain.Year{}, domain.Year{}
	}

	startYear, _ := strconv.Atoi(m[1])
	endYear, _ := strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		endYear += startYear / 100 * 100
	}
	return domain.YearOf(startYear), domain.YearOf(endYear)
}

// ExtractSurveyYears fills the start and end years of every record.
func ExtractSurveyYears(records []domain.CleanRecord) []domain.CleanRecord {
	out := slices.Clone(records)
	for i := range out {
		out[i].SurveyStartYear, out[i].SurveyEndYear = ParseSurveyYears(out[i].Survey)
	}
	return out
}
