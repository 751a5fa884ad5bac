// Package sqlutil holds small helpers for the SQLite databases.
package sqlutil

import (
	"database/sql"
	"net/url"
	"strings"
)

// DSN builds a modernc.org/sqlite data source name that applies each
// pragma, e.g. DSN(path, "journal_mode(wal)", "busy_timeout(5000)").
func DSN(path string, pragmas ...string) string {
	if len(pragmas) == 0 {
		return path
	}
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, "_pragma="+url.QueryEscape(p))
	}
	return path + "?" + strings.Join(params, "&")
}

// ScanRows scans all rows into a slice using the provided scanner.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
