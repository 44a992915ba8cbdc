// Package chk provides one-line error check helpers that log as they test,
// enabling the `if chk.E(err) { return }` form used across the codebase.
package chk

import (
	"roost.dev/pkg/utils/log"
)

// E logs a non-nil error at error level and reports whether it was non-nil.
func E(err error) bool {
	if err != nil {
		log.E.Ln(err.Error())
		return true
	}
	return false
}

// T logs a non-nil error at trace level and reports whether it was non-nil.
// Used where an error is an expected condition rather than a fault.
func T(err error) bool {
	if err != nil {
		log.T.Ln(err.Error())
		return true
	}
	return false
}

// D logs a non-nil error at debug level and reports whether it was non-nil.
func D(err error) bool {
	if err != nil {
		log.D.Ln(err.Error())
		return true
	}
	return false
}
