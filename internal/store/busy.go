package store

import (
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isBusy reports whether err is a transient lock failure worth retrying:
// SQLite busy or locked, or a PostgreSQL serialization failure or deadlock.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		// Extended result codes carry the primary code in the low byte.
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	var perr *pq.Error
	if errors.As(err, &perr) {
		switch perr.Code {
		case "40001", "40P01":
			return true
		}
	}
	return false
}
