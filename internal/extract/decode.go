package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MalformedFieldError reports a cell that cannot be decoded into a list of
// strings, or a weight cell that is not numeric.
type MalformedFieldError struct {
	Row   int // 0-based position in the corpus
	RowID string
	Field string
	Value string
	Err   error
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("row %d (id %s) field %q: cannot decode %.80q: %v", e.Row, e.RowID, e.Field, e.Value, e.Err)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }

var (
	errUnterminatedList   = errors.New("unterminated list")
	errUnterminatedString = errors.New("unterminated string")
	errExpectedString     = errors.New("list element is not a quoted string")
	errExpectedSeparator  = errors.New("expected ',' or ']'")
	errTrailingData       = errors.New("unexpected data after list")
)

// emptyCells are spreadsheet and dataframe spellings of a missing value.
var emptyCells = map[string]struct{}{
	"":     {},
	"nan":  {},
	"NaN":  {},
	"None": {},
	"null": {},
	"NULL": {},
}

// DecodeList decodes one cell into its terms.
//
// A cell starting with '[' is a serialized list of strings in Python literal
// or JSON form, e.g. ['#a', "#b"]. Any other non-empty cell is a single term.
// Missing-value spellings (empty, nan, None, null) decode to no terms.
// Elements are trimmed, NFC-normalized, and dropped when empty.
func DecodeList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if _, ok := emptyCells[s]; ok {
		return nil, nil
	}
	if s[0] != '[' {
		return []string{normalizeTerm(s)}, nil
	}

	p := listParser{src: s, pos: 1}
	return p.parse()
}

func normalizeTerm(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

type listParser struct {
	src string
	pos int
}

func (p *listParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *listParser) parse() ([]string, error) {
	var out []string
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, errUnterminatedList
		}
		if p.src[p.pos] == ']' {
			p.pos++
			break
		}

		item, err := p.parseString()
		if err != nil {
			return nil, err
		}
		if term := normalizeTerm(item); term != "" {
			out = append(out, term)
		}

		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, errUnterminatedList
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			p.skipSpace()
			if p.pos != len(p.src) {
				return nil, errTrailingData
			}
			return out, nil
		default:
			return nil, errExpectedSeparator
		}
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, errTrailingData
	}
	return out, nil
}

// parseString reads one quoted element. Python's u'' prefix is accepted.
func (p *listParser) parseString() (string, error) {
	if p.src[p.pos] == 'u' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '\'' || p.src[p.pos+1] == '"') {
		p.pos++
	}
	quote := p.src[p.pos]
	if quote != '\'' && quote != '"' {
		return "", errExpectedString
	}
	p.pos++

	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", errUnterminatedString
		}
		c := p.src[p.pos]
		if c == quote {
			p.pos++
			return b.String(), nil
		}
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
			continue
		}
		// JSON permits an escaped solidus; Go's unquoting does not.
		if strings.HasPrefix(p.src[p.pos:], `\/`) {
			b.WriteByte('/')
			p.pos += 2
			continue
		}
		value, _, tail, err := strconv.UnquoteChar(p.src[p.pos:], quote)
		if err != nil {
			return "", fmt.Errorf("bad escape at offset %d: %w", p.pos, err)
		}
		b.WriteRune(value)
		p.pos = len(p.src) - len(tail)
	}
}
