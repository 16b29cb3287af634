// Package dataprocessing implements the stages that turn a raw DHS obesity
// export into the cleaned survey table, and the quality report computed over
// the result.
//
// # Stages
//
// Each stage is a function from one typed table to a new one; inputs are
// never modified.
//
//	Loader.Load               raw file -> domain.RawTable
//	Detector.Detect           RawTable -> []Verdict (named predicate matches)
//	FilterRows                RawTable + verdicts -> []domain.CleanRecord + removal audit
//	DecomposeCharacteristics  Category / Subcategory from Characteristic
//	NormalizeMetrics          metric cells -> domain.Metric (missing when unparseable)
//	ExtractSurveyYears        start / end year from the Survey label
//	DeriveFields              Survey_Year and completeness flags
//	BindOutput                records -> domain.CleanTable in output column order
//	QualityReporter.Report    CleanTable -> QualityReport
//
// # Error Handling
//
// Only the loader and BindOutput fail. They return AppErrors of type
// SOURCE_UNAVAILABLE, MALFORMED_SOURCE or SCHEMA_MISMATCH. Per-row problems
// such as an unparseable metric or a survey label without a year range are
// recorded as missing values and never reported as errors.
package dataprocessing
