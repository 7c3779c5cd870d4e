// Package extract turns corpus rows into term observations.
package extract

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/period"
)

// Mode is the term-selection policy.
type Mode int

const (
	// ModeAll keeps every decoded term.
	ModeAll Mode = iota
	// ModeGroup keeps terms present in Policy.Allow.
	ModeGroup
	// ModeSingle keeps terms equal to Policy.Target.
	ModeSingle
	// ModeKeywordColumn keeps Policy.Allow terms from the structured fields and
	// additionally emits Policy.Keywords matches found in the free-text field.
	ModeKeywordColumn
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeGroup:
		return "group"
	case ModeSingle:
		return "single"
	case ModeKeywordColumn:
		return "keyword_column"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// KeywordSet maps a primary term to the free-text keywords that stand for it.
type KeywordSet struct {
	Term     string   `yaml:"term" mapstructure:"term"`
	Keywords []string `yaml:"keywords" mapstructure:"keywords"`
}

// Policy selects which decoded terms become observations.
type Policy struct {
	Mode     Mode
	Allow    []string     // ModeGroup, ModeKeywordColumn
	Target   string       // ModeSingle
	Keywords []KeywordSet // ModeKeywordColumn
}

// Config describes where terms come from.
type Config struct {
	// Fields are the multi-valued columns, scanned in order.
	Fields []string
	// DateField holds the post day; timestamps are reduced to YYYY-MM-DD.
	DateField string
	// TextField is the free-text column searched by ModeKeywordColumn.
	TextField string
	// WeightField optionally holds a numeric weight. Without it every
	// observation weighs 1; with it, rows missing the cell weigh 0.
	WeightField string
	Policy      Policy
}

// ErrInvalidConfig wraps every Config.Validate failure.
var ErrInvalidConfig = errors.New("extract: invalid config")

// Validate checks the mode-specific requirements of cfg.
func (cfg Config) Validate() error {
	if len(cfg.Fields) == 0 {
		return fmt.Errorf("%w: at least one source field is required", ErrInvalidConfig)
	}
	switch cfg.Policy.Mode {
	case ModeAll:
	case ModeGroup:
		if len(cfg.Policy.Allow) == 0 {
			return fmt.Errorf("%w: group mode requires an allow-list", ErrInvalidConfig)
		}
	case ModeSingle:
		if strings.TrimSpace(cfg.Policy.Target) == "" {
			return fmt.Errorf("%w: single mode requires a target term", ErrInvalidConfig)
		}
	case ModeKeywordColumn:
		if len(cfg.Policy.Allow) == 0 && len(cfg.Policy.Keywords) == 0 {
			return fmt.Errorf("%w: keyword+column mode requires an allow-list or keyword sets", ErrInvalidConfig)
		}
		if len(cfg.Policy.Keywords) > 0 && cfg.TextField == "" {
			return fmt.Errorf("%w: keyword+column mode requires a text field", ErrInvalidConfig)
		}
		for _, ks := range cfg.Policy.Keywords {
			if strings.TrimSpace(ks.Term) == "" {
				return fmt.Errorf("%w: keyword set with empty term", ErrInvalidConfig)
			}
			for _, kw := range ks.Keywords {
				if strings.TrimSpace(kw) == "" {
					return fmt.Errorf("%w: keyword set %q has an empty keyword", ErrInvalidConfig, ks.Term)
				}
			}
		}
	default:
		return fmt.Errorf("%w: unknown mode %v", ErrInvalidConfig, cfg.Policy.Mode)
	}
	return nil
}

// Vocabulary returns the terms a policy can emit, in declaration order.
// ModeAll has no fixed vocabulary and returns nil.
func (p Policy) Vocabulary() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(t string) {
		t = normalizeTerm(t)
		if _, dup := seen[t]; dup || t == "" {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	switch p.Mode {
	case ModeGroup:
		for _, t := range p.Allow {
			add(t)
		}
	case ModeSingle:
		add(p.Target)
	case ModeKeywordColumn:
		for _, t := range p.Allow {
			add(t)
		}
		for _, ks := range p.Keywords {
			add(ks.Term)
		}
	}
	return out
}

type keyedMatcher struct {
	term     string
	termRe   *regexp.Regexp
	keywords []string
	kwRes    []*regexp.Regexp
}

type selector struct {
	mode   Mode
	allow  map[string]struct{}
	target string
	keyed  []keyedMatcher
}

func newSelector(p Policy) (*selector, error) {
	s := &selector{mode: p.Mode, target: normalizeTerm(p.Target)}
	if len(p.Allow) > 0 {
		s.allow = make(map[string]struct{}, len(p.Allow))
		for _, t := range p.Allow {
			s.allow[normalizeTerm(t)] = struct{}{}
		}
	}
	if p.Mode != ModeKeywordColumn {
		return s, nil
	}
	for _, ks := range p.Keywords {
		term := normalizeTerm(ks.Term)
		termRe, err := WholeWord(term)
		if err != nil {
			return nil, err
		}
		km := keyedMatcher{term: term, termRe: termRe}
		for _, kw := range ks.Keywords {
			kw = normalizeTerm(kw)
			re, err := WholeWord(kw)
			if err != nil {
				return nil, err
			}
			km.keywords = append(km.keywords, kw)
			km.kwRes = append(km.kwRes, re)
		}
		s.keyed = append(s.keyed, km)
	}
	return s, nil
}

func (s *selector) accept(term string) bool {
	switch s.mode {
	case ModeAll:
		return true
	case ModeGroup, ModeKeywordColumn:
		_, ok := s.allow[term]
		return ok
	case ModeSingle:
		return term == s.target
	default:
		return false
	}
}

// wordClass is the set of runes that continue a word. It is Unicode-aware so
// "ana" is not a whole word inside "mañana".
const wordClass = `\p{L}\p{M}\p{N}_`

// WholeWord compiles a case-insensitive whole-word matcher for term. term
// must be bounded on both sides by a non-word rune or the text edge, which
// also holds for terms that start with '#' or '@'.
func WholeWord(term string) (*regexp.Regexp, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: empty match term", ErrInvalidConfig)
	}
	return regexp.Compile(`(?i)(?:^|[^` + wordClass + `])` + regexp.QuoteMeta(term) + `(?:[^` + wordClass + `]|$)`)
}

// Terms lazily walks rows once and yields observations in row order, then
// field order, then element order; a row's keyed matches follow its
// structured ones. The first decode error is yielded and ends the sequence.
func Terms(rows []model.Row, cfg Config) iter.Seq2[model.Observation, error] {
	return func(yield func(model.Observation, error) bool) {
		if err := cfg.Validate(); err != nil {
			yield(model.Observation{}, err)
			return
		}
		sel, err := newSelector(cfg.Policy)
		if err != nil {
			yield(model.Observation{}, err)
			return
		}

		for i, row := range rows {
			rowID := row.ID
			if rowID == "" {
				rowID = strconv.Itoa(i)
			}

			var date string
			if cfg.DateField != "" {
				if raw, ok := row.Get(cfg.DateField); ok {
					date = period.NormalizeDay(raw)
				}
			}

			weight := 1.0
			if cfg.WeightField != "" {
				weight = 0
				if raw, ok := row.Get(cfg.WeightField); ok {
					w, err := parseWeight(raw)
					if err != nil {
						yield(model.Observation{}, &MalformedFieldError{Row: i, RowID: rowID, Field: cfg.WeightField, Value: raw, Err: err})
						return
					}
					weight = w
				}
			}

			for _, field := range cfg.Fields {
				raw, ok := row.Get(field)
				if !ok {
					continue
				}
				terms, err := DecodeList(raw)
				if err != nil {
					yield(model.Observation{}, &MalformedFieldError{Row: i, RowID: rowID, Field: field, Value: raw, Err: err})
					return
				}
				for _, term := range terms {
					if !sel.accept(term) {
						continue
					}
					if !yield(model.Observation{Term: term, Date: date, Weight: weight, RowID: rowID}, nil) {
						return
					}
				}
			}

			if len(sel.keyed) == 0 {
				continue
			}
			text, ok := row.Get(cfg.TextField)
			if !ok {
				continue
			}
			text = norm.NFC.String(text)
			for _, km := range sel.keyed {
				if km.termRe.MatchString(text) {
					continue
				}
				for j, re := range km.kwRes {
					if !re.MatchString(text) {
						continue
					}
					obs := model.Observation{Term: km.term, Date: date, Weight: weight, RowID: rowID, Keyword: km.keywords[j]}
					if !yield(obs, nil) {
						return
					}
				}
			}
		}
	}
}

// ErrNegativeWeight is the cause of a MalformedFieldError for weights below 0.
var ErrNegativeWeight = errors.New("weight must not be negative")

// parseWeight accepts finite, non-negative numbers.
func parseWeight(raw string) (float64, error) {
	w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("weight %q is not finite", raw)
	}
	if w < 0 {
		return 0, ErrNegativeWeight
	}
	return w, nil
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[model.Observation, error]) ([]model.Observation, error) {
	var out []model.Observation
	for obs, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, nil
}
