package model

// RowMapping names the corpus columns a reader must project into a Row.
// Empty names are skipped.
type RowMapping struct {
	IDField string
	Fields  []string
	// Where is an optional SQL boolean expression restricting the rows,
	// e.g. "lang = 'en'". Readers reject anything but a plain predicate.
	Where string
}

// CorpusReader provides read-only access to a loaded corpus.
type CorpusReader interface {
	Rows(mapping RowMapping) ([]Row, error)
	Columns() ([]string, error)
	DateBounds(dateField string) (first, last string, err error)
}
