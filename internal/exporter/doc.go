// Package exporter writes the outputs of a cleaning run.
//
// CSVWriter produces the authoritative cleaned table: fifteen columns in the
// fixed contract order, booleans as True/False, metrics in their shortest
// decimal form and missing values as empty fields. XLSXWriter writes a typed
// spreadsheet copy of the same table. Both replace their target atomically
// through files.Manager.
//
// ReportRenderer prints a dataprocessing.QualityReport as console tables,
// colored when the destination is a terminal.
package exporter
