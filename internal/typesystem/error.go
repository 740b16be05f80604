package typesystem

import "github.com/ember-lang/ember/internal/diag"

// Error is a located type-checking diagnostic. Messages follow the fixed
// templates in the checker package so they are testable as string
// equalities.
type Error = diag.Error

// NewError builds a located Error from a message already formatted
// according to one of the checker's fixed templates.
func NewError(line, col int, format string, args ...interface{}) *Error {
	return diag.New(line, col, format, args...)
}
