package storage

import "strings"

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The modernc driver exposes constraint errors only through the
// message text, so this matches on it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
