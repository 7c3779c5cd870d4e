package duckdb

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

// ErrNoCorpus is returned when rows are requested before a corpus is loaded.
var ErrNoCorpus = errors.New("duckdb: no corpus loaded")

// LoadCSV replaces the corpus with the CSV at path. Every column is read as
// text so multi-valued cells reach the extractor unchanged.
func (s *Store) LoadCSV(path string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("corpus file: %w", err)
	}

	s.mu.Lock()
	ctx, cancel := s.queryCtx()
	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header = true, all_varchar = true)",
		corpusTable, strings.ReplaceAll(path, "'", "''"),
	)
	_, err := s.db.ExecContext(ctx, query)
	cancel()
	s.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("load corpus %s: %w", path, err)
	}

	n, err := s.RowCount()
	if err != nil {
		return 0, err
	}
	log.Printf("duckdb: loaded %d rows from %s", n, path)
	return n, nil
}
