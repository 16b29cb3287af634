// Package services implements the pipeline driver of dhsclean.
//
// CleaningService owns one run end to end: it validates the raw source,
// registers the cleaning steps with an operations.Manager, executes them in
// order and, only after every step succeeds, persists the cleaned table
// (CSV, optional XLSX) and prints the quality report. A failed run leaves
// previously written outputs untouched.
//
//	svc, err := services.NewCleaningService(cfg, paths, logger, telemetry, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	result, err := svc.Run(ctx)
//
// CleaningService.Report prints the quality report of an existing cleaned
// table without re-running the pipeline.
package services
