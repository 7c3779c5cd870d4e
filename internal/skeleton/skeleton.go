// Package skeleton builds the zero-initialized count structures the grouper
// hydrates. A Skeleton is one of three shapes selected by its granularity:
//
//	day:        day -> term -> count
//	period_day: period -> day -> term -> count
//	period:     period -> term -> count
//
// Every vocabulary key exists with value 0 in every leaf of a fresh skeleton.
// Leaves are never created after construction.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/period"
)

var (
	// ErrMissingDays is returned when a day skeleton has no day range.
	ErrMissingDays = errors.New("skeleton: day granularity requires a day range")
	// ErrMissingIndex is returned when a period skeleton has no period index.
	ErrMissingIndex = errors.New("skeleton: period granularity requires a period index")
)

type leaf map[string]int64

// Skeleton is a tagged union over the three granularities. Only the maps
// belonging to its granularity are populated.
type Skeleton struct {
	granularity model.Granularity
	keys        []string

	// day
	days     []string
	dayLeafs map[string]leaf

	// period_day and period
	periods    []string
	periodDays map[string][]string
	pdLeafs    map[string]map[string]leaf
	pLeafs     map[string]leaf
}

// Config selects the granularity and its required input.
type Config struct {
	Granularity model.Granularity
	Keys        []string
	Days        []string      // required for GranularityDay
	Index       *period.Index // required for GranularityPeriodDay and GranularityPeriod
}

// Build creates a skeleton from cfg.
func Build(cfg Config) (*Skeleton, error) {
	switch cfg.Granularity {
	case model.GranularityDay:
		if len(cfg.Days) == 0 {
			return nil, ErrMissingDays
		}
		return NewDay(cfg.Days, cfg.Keys), nil
	case model.GranularityPeriodDay:
		if cfg.Index == nil {
			return nil, ErrMissingIndex
		}
		return NewPeriodDay(cfg.Index, cfg.Keys), nil
	case model.GranularityPeriod:
		if cfg.Index == nil {
			return nil, ErrMissingIndex
		}
		return NewPeriod(cfg.Index, cfg.Keys), nil
	default:
		return nil, fmt.Errorf("skeleton: unknown granularity %v", cfg.Granularity)
	}
}

// NewDay builds a day -> term skeleton over days.
func NewDay(days, keys []string) *Skeleton {
	s := &Skeleton{
		granularity: model.GranularityDay,
		keys:        dedupe(keys),
		days:        dedupe(days),
	}
	s.dayLeafs = make(map[string]leaf, len(s.days))
	for _, d := range s.days {
		s.dayLeafs[d] = s.newLeaf()
	}
	return s
}

// NewPeriodDay builds a period -> day -> term skeleton from ix.
func NewPeriodDay(ix *period.Index, keys []string) *Skeleton {
	s := &Skeleton{
		granularity: model.GranularityPeriodDay,
		keys:        dedupe(keys),
		periods:     ix.Names(),
	}
	s.periodDays = make(map[string][]string, len(s.periods))
	s.pdLeafs = make(map[string]map[string]leaf, len(s.periods))
	for _, p := range s.periods {
		days, _ := ix.Days(p)
		s.periodDays[p] = days
		byDay := make(map[string]leaf, len(days))
		for _, d := range days {
			byDay[d] = s.newLeaf()
		}
		s.pdLeafs[p] = byDay
	}
	return s
}

// NewPeriod builds a period -> term skeleton from ix. The index days are kept
// only so PeriodDays can report them.
func NewPeriod(ix *period.Index, keys []string) *Skeleton {
	s := &Skeleton{
		granularity: model.GranularityPeriod,
		keys:        dedupe(keys),
		periods:     ix.Names(),
	}
	s.periodDays = make(map[string][]string, len(s.periods))
	s.pLeafs = make(map[string]leaf, len(s.periods))
	for _, p := range s.periods {
		days, _ := ix.Days(p)
		s.periodDays[p] = days
		s.pLeafs[p] = s.newLeaf()
	}
	return s
}

func (s *Skeleton) newLeaf() leaf {
	l := make(leaf, len(s.keys))
	for _, k := range s.keys {
		l[k] = 0
	}
	return l
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Granularity reports which variant this skeleton is.
func (s *Skeleton) Granularity() model.Granularity { return s.granularity }

// Keys returns the vocabulary in construction order.
func (s *Skeleton) Keys() []string { return append([]string(nil), s.keys...) }

// Days returns the days of a day skeleton.
func (s *Skeleton) Days() []string { return append([]string(nil), s.days...) }

// Periods returns the period names of a period or period_day skeleton.
func (s *Skeleton) Periods() []string { return append([]string(nil), s.periods...) }

// PeriodDays returns the days belonging to a period.
func (s *Skeleton) PeriodDays(p string) []string {
	return append([]string(nil), s.periodDays[p]...)
}

// DayCount reads day -> term.
func (s *Skeleton) DayCount(day, term string) (int64, bool) {
	l, ok := s.dayLeafs[day]
	if !ok {
		return 0, false
	}
	v, ok := l[term]
	return v, ok
}

// PeriodDayCount reads period -> day -> term.
func (s *Skeleton) PeriodDayCount(p, day, term string) (int64, bool) {
	l, ok := s.pdLeafs[p][day]
	if !ok {
		return 0, false
	}
	v, ok := l[term]
	return v, ok
}

// PeriodCount reads period -> term.
func (s *Skeleton) PeriodCount(p, term string) (int64, bool) {
	l, ok := s.pLeafs[p]
	if !ok {
		return 0, false
	}
	v, ok := l[term]
	return v, ok
}

// SetDay overwrites day -> term. It reports false without writing when the
// leaf does not exist.
func (s *Skeleton) SetDay(day, term string, count int64) bool {
	l, ok := s.dayLeafs[day]
	if !ok {
		return false
	}
	if _, ok := l[term]; !ok {
		return false
	}
	l[term] = count
	return true
}

// SetPeriodDay overwrites period -> day -> term.
func (s *Skeleton) SetPeriodDay(p, day, term string, count int64) bool {
	l, ok := s.pdLeafs[p][day]
	if !ok {
		return false
	}
	if _, ok := l[term]; !ok {
		return false
	}
	l[term] = count
	return true
}

// AddPeriod accumulates into period -> term.
func (s *Skeleton) AddPeriod(p, term string, delta int64) bool {
	l, ok := s.pLeafs[p]
	if !ok {
		return false
	}
	if _, ok := l[term]; !ok {
		return false
	}
	l[term] += delta
	return true
}

// DayMap returns a copy of a day skeleton.
func (s *Skeleton) DayMap() map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(s.dayLeafs))
	for d, l := range s.dayLeafs {
		out[d] = copyLeaf(l)
	}
	return out
}

// PeriodDayMap returns a copy of a period_day skeleton.
func (s *Skeleton) PeriodDayMap() map[string]map[string]map[string]int64 {
	out := make(map[string]map[string]map[string]int64, len(s.pdLeafs))
	for p, byDay := range s.pdLeafs {
		days := make(map[string]map[string]int64, len(byDay))
		for d, l := range byDay {
			days[d] = copyLeaf(l)
		}
		out[p] = days
	}
	return out
}

// PeriodMap returns a copy of a period skeleton.
func (s *Skeleton) PeriodMap() map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(s.pLeafs))
	for p, l := range s.pLeafs {
		out[p] = copyLeaf(l)
	}
	return out
}

func copyLeaf(l leaf) map[string]int64 {
	m := make(map[string]int64, len(l))
	for k, v := range l {
		m[k] = v
	}
	return m
}
