// Package period expands named date ranges into per-day listings and answers
// which period a calendar day belongs to.
package period

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tinytelemetry/narrator/internal/model"
)

// DayLayout is the canonical calendar-day format.
const DayLayout = "2006-01-02"

// InvalidRangeError reports a period whose end precedes its start.
type InvalidRangeError struct {
	Name  string
	Begin string
	End   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("period %q: end %s precedes begin %s", e.Name, e.End, e.Begin)
}

// ErrDuplicateName is returned when two definitions share a name.
var ErrDuplicateName = errors.New("period: duplicate period name")

type entry struct {
	name   string
	days   []string
	member map[string]struct{}
}

// Index maps each period to the ordered days it covers. It is read-only after
// Build and safe for concurrent use.
//
// Overlapping definitions are accepted; Lookup resolves a day to the first
// matching period in definition order. Callers wanting unambiguous results
// must supply non-overlapping ranges.
type Index struct {
	entries []entry
	byName  map[string]int
}

// Build expands every definition into its inclusive list of days.
func Build(defs []model.PeriodDef) (*Index, error) {
	ix := &Index{
		entries: make([]entry, 0, len(defs)),
		byName:  make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("period: definition with empty name (%s..%s)", d.Begin, d.End)
		}
		if _, dup := ix.byName[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		days, err := expand(name, d.Begin, d.End)
		if err != nil {
			return nil, err
		}
		member := make(map[string]struct{}, len(days))
		for _, day := range days {
			member[day] = struct{}{}
		}
		ix.byName[name] = len(ix.entries)
		ix.entries = append(ix.entries, entry{name: name, days: days, member: member})
	}
	return ix, nil
}

// FromMap builds an index from an already expanded {period -> [day]} map.
// Map iteration order is not stable, so periods are ordered by name.
func FromMap(m map[string][]string) *Index {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	ix := &Index{
		entries: make([]entry, 0, len(names)),
		byName:  make(map[string]int, len(names)),
	}
	for _, name := range names {
		days := append([]string(nil), m[name]...)
		member := make(map[string]struct{}, len(days))
		for _, day := range days {
			member[day] = struct{}{}
		}
		ix.byName[name] = len(ix.entries)
		ix.entries = append(ix.entries, entry{name: name, days: days, member: member})
	}
	return ix
}

// Lookup returns the first period, in definition order, whose range contains
// day. ok is false when no period contains it.
func (ix *Index) Lookup(day string) (name string, ok bool) {
	if ix == nil {
		return "", false
	}
	for _, e := range ix.entries {
		if _, hit := e.member[day]; hit {
			return e.name, true
		}
	}
	return "", false
}

// Contains reports whether the named period covers day.
func (ix *Index) Contains(name, day string) bool {
	if ix == nil {
		return false
	}
	i, ok := ix.byName[name]
	if !ok {
		return false
	}
	_, hit := ix.entries[i].member[day]
	return hit
}

// Days returns a copy of the days covered by the named period.
func (ix *Index) Days(name string) ([]string, bool) {
	if ix == nil {
		return nil, false
	}
	i, ok := ix.byName[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), ix.entries[i].days...), true
}

// Names returns period names in definition order.
func (ix *Index) Names() []string {
	if ix == nil {
		return nil
	}
	names := make([]string, len(ix.entries))
	for i, e := range ix.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of periods.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// AllDays returns the ascending union of every period's days.
func (ix *Index) AllDays() []string {
	if ix == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var days []string
	for _, e := range ix.entries {
		for _, d := range e.days {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			days = append(days, d)
		}
	}
	sort.Strings(days)
	return days
}

// Map returns a copy of the index in {period -> [day]} form.
func (ix *Index) Map() map[string][]string {
	out := make(map[string][]string, ix.Len())
	if ix == nil {
		return out
	}
	for _, e := range ix.entries {
		out[e.name] = append([]string(nil), e.days...)
	}
	return out
}

// DateRange lists every day from begin to end inclusive.
func DateRange(begin, end string) ([]string, error) {
	return expand("", begin, end)
}

func expand(name, begin, end string) ([]string, error) {
	b, err := time.Parse(DayLayout, strings.TrimSpace(begin))
	if err != nil {
		return nil, fmt.Errorf("period %q: parsing begin date: %w", name, err)
	}
	e, err := time.Parse(DayLayout, strings.TrimSpace(end))
	if err != nil {
		return nil, fmt.Errorf("period %q: parsing end date: %w", name, err)
	}
	if e.Before(b) {
		return nil, &InvalidRangeError{Name: name, Begin: begin, End: end}
	}

	n := int(e.Sub(b).Hours()/24) + 1
	days := make([]string, 0, n)
	for d := b; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayLayout))
	}
	return days, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DayLayout,
}

// NormalizeDay reduces a timestamp to its YYYY-MM-DD calendar day. Strings
// that do not parse as a timestamp are returned trimmed but otherwise as-is.
func NormalizeDay(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DayLayout)
		}
	}
	return s
}
