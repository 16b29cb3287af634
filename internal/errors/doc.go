// Package errors defines the error taxonomy of dhsclean.
//
// Every fatal condition is an *AppError carrying an ErrorType: an
// unavailable or malformed raw source, a schema mismatch when the output
// columns are bound, a storage failure while persisting, or a configuration
// problem. Callers branch on the type with IsType, which sees through any
// wrapping:
//
//	if errors.IsType(err, errors.ErrTypeSchemaMismatch) {
//	    // the raw export changed its metric headers
//	}
//
// Per-row parse failures are not errors; the cleaning stages absorb them
// as missing values.
package errors
