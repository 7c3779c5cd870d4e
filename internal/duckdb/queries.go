package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/period"
)

// ErrUnknownColumn is returned when a mapping names a column the corpus lacks.
var ErrUnknownColumn = errors.New("duckdb: unknown corpus column")

// dangerousKeywordPattern matches dangerous SQL keywords at word boundaries.
// This avoids false positives like "RESET" matching "SET".
var dangerousKeywordPattern = regexp.MustCompile(
	`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|COPY|ATTACH|DETACH|LOAD|EXPORT|IMPORT|INSTALL|CALL|EXECUTE|PRAGMA|SET|UNION)\b`,
)

// blockCommentPattern matches C-style block comments (/* ... */).
var blockCommentPattern = regexp.MustCompile(`/\*[\s\S]*?\*/`)

// stripSQLComments removes -- line comments and /* */ block comments from a query.
func stripSQLComments(query string) string {
	cleaned := blockCommentPattern.ReplaceAllString(query, " ")
	var result strings.Builder
	for _, line := range strings.Split(cleaned, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		result.WriteString(line)
		result.WriteByte('\n')
	}
	return result.String()
}

// validateFilter accepts a single boolean predicate for a WHERE clause.
// Subqueries and statement chaining are rejected.
func validateFilter(where string) (string, error) {
	trimmed := strings.TrimSpace(where)
	if strings.Contains(trimmed, ";") {
		return "", fmt.Errorf("filter must not contain semicolons")
	}
	stripped := strings.TrimSpace(stripSQLComments(trimmed))
	if match := dangerousKeywordPattern.FindString(stripped); match != "" {
		return "", fmt.Errorf("filter contains disallowed keyword: %s", strings.ToUpper(match))
	}
	return stripped, nil
}

// queryCtx returns a context with the store's configured query timeout.
func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Columns returns the corpus columns in table order.
func (s *Store) Columns() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columnsLocked()
}

func (s *Store) columnsLocked() ([]string, error) {
	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		ORDER BY ordinal_position`, corpusTable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan corpus column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// RowCount returns the number of loaded posts.
func (s *Store) RowCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+corpusTable).Scan(&n)
	return n, err
}

// Rows projects the mapped columns of every corpus row, in load order.
// NULL cells are left out of Row.Fields. Without an IDField the row's
// 0-based load position becomes its ID.
func (s *Store) Rows(mapping model.RowMapping) ([]model.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	known, err := s.columnsLocked()
	if err != nil {
		return nil, err
	}
	if len(known) == 0 {
		return nil, ErrNoCorpus
	}
	have := make(map[string]struct{}, len(known))
	for _, c := range known {
		have[c] = struct{}{}
	}

	var cols []string
	seen := make(map[string]struct{})
	for _, c := range append([]string{mapping.IDField}, mapping.Fields...) {
		if c == "" {
			continue
		}
		if _, ok := have[c]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}

	selects := make([]string, 0, len(cols)+1)
	selects = append(selects, "rowid")
	for _, c := range cols {
		selects = append(selects, fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(c)))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), corpusTable)
	if mapping.Where != "" {
		where, err := validateFilter(mapping.Where)
		if err != nil {
			return nil, err
		}
		query += " WHERE " + where
	}
	query += " ORDER BY rowid"

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Row
	for rows.Next() {
		r, err := scanRow(rows, cols, mapping.IDField)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// rowScanner is the part of *sql.Rows scanRow needs.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRow reads one "rowid, cols..." result row. A failed scan is returned,
// never skipped, so no post silently drops out of the counts.
func scanRow(sc rowScanner, cols []string, idField string) (model.Row, error) {
	var rowid int64
	values := make([]sql.NullString, len(cols))
	dest := make([]any, 0, len(cols)+1)
	dest = append(dest, &rowid)
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := sc.Scan(dest...); err != nil {
		return model.Row{}, fmt.Errorf("scan corpus row: %w", err)
	}

	r := model.Row{ID: strconv.FormatInt(rowid, 10), Fields: make(map[string]string, len(cols))}
	for i, c := range cols {
		if values[i].Valid {
			r.Fields[c] = values[i].String
		}
	}
	if idField != "" {
		r.ID = r.Fields[idField]
	}
	return r, nil
}

// DateBounds returns the earliest and latest day in dateField, reduced to
// YYYY-MM-DD. Both are empty when the column holds no values.
func (s *Store) DateBounds(dateField string) (first, last string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	col := fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(dateField))
	query := fmt.Sprintf(`
		SELECT min(%[1]s), max(%[1]s)
		FROM %[2]s
		WHERE %[1]s IS NOT NULL AND trim(%[1]s) <> ''`, col, corpusTable)

	var lo, hi sql.NullString
	if err := s.db.QueryRowContext(ctx, query).Scan(&lo, &hi); err != nil {
		return "", "", err
	}
	if lo.Valid {
		first = period.NormalizeDay(lo.String)
	}
	if hi.Valid {
		last = period.NormalizeDay(hi.String)
	}
	return first, last, nil
}
