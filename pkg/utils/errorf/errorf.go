// Package errorf provides formatted error constructors.
package errorf

import "fmt"

// E returns a formatted error.
func E(format string, a ...any) error { return fmt.Errorf(format, a...) }

// W returns a formatted error intended as a warning-grade condition; it is
// distinguished at the call site, not in the type.
func W(format string, a ...any) error { return fmt.Errorf(format, a...) }
