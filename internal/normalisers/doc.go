// Package normalisers turns raw document bytes into text.
//
// Each subpackage provides an Extractor for one domain.Format. The Registry
// in this package dispatches by format and never fails: extraction errors
// are logged and yield "", and formats without an extractor yield a
// sentinel naming the format so callers can tell "tried and failed" from
// "never attempted".
package normalisers
