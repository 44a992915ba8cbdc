// Package apputil holds small filesystem helpers shared by config and
// database setup.
package apputil

import (
	"os"
)

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
