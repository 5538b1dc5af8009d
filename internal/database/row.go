package database

import "github.com/koustreak/tablescope/internal/errs"

// ScanValues reads the current row into n untyped values, leaving the driver
// to pick the Go-native representation of each column. Typed decoding is the
// caller's job; a scan failure is reported as a query failure.
func ScanValues(row Row, n int) ([]any, error) {
	dest := make([]any, n)
	destPtrs := make([]any, n)
	for i := range dest {
		destPtrs[i] = &dest[i]
	}

	if err := row.Scan(destPtrs...); err != nil {
		if errs.KindOf(err) != errs.ErrKindUnknown {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
	}
	return dest, nil
}

// ScanStrings reads every row of a single-text-column result set.
// ScanStrings always closes the Rows, so callers do not need to call Close().
func ScanStrings(rows Rows) ([]string, error) {
	defer rows.Close()

	list := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan text column", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}
	return list, nil
}
