// Package grouper writes tallied pairs into a skeleton.
package grouper

import (
	"errors"
	"fmt"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/period"
	"github.com/tinytelemetry/narrator/internal/skeleton"
)

// ErrNilSkeleton is returned when Hydrate is given no skeleton.
var ErrNilSkeleton = errors.New("grouper: nil skeleton")

// Options carries the period index used to resolve a pair's date at period
// granularity.
type Options struct {
	Index *period.Index
}

// Stats reports how many pairs landed in the skeleton.
type Stats struct {
	Applied int
	Dropped int
}

// Hydrate writes pairs into sk according to its granularity and returns sk.
//
//   - day: the count overwrites day -> term.
//   - period_day: the count overwrites period -> day -> term in every period
//     whose range contains the day.
//   - period: the count is added once to the first period containing the day.
//
// Pairs with no matching leaf (unknown term, day or period) are dropped and
// counted in Stats; they are not an error.
func Hydrate(sk *skeleton.Skeleton, pairs []model.CountPair, opts Options) (*skeleton.Skeleton, Stats, error) {
	var st Stats
	if sk == nil {
		return nil, st, ErrNilSkeleton
	}

	switch g := sk.Granularity(); g {
	case model.GranularityDay:
		for _, p := range pairs {
			st.record(sk.SetDay(p.Key.Date, p.Key.Term, p.Count))
		}

	case model.GranularityPeriodDay:
		periods := sk.Periods()
		for _, p := range pairs {
			hit := false
			for _, name := range periods {
				if sk.SetPeriodDay(name, p.Key.Date, p.Key.Term, p.Count) {
					hit = true
				}
			}
			st.record(hit)
		}

	case model.GranularityPeriod:
		if opts.Index == nil {
			return nil, st, skeleton.ErrMissingIndex
		}
		for _, p := range pairs {
			name, ok := opts.Index.Lookup(p.Key.Date)
			st.record(ok && sk.AddPeriod(name, p.Key.Term, p.Count))
		}

	default:
		return nil, st, fmt.Errorf("grouper: unknown granularity %v", g)
	}

	return sk, st, nil
}

func (s *Stats) record(applied bool) {
	if applied {
		s.Applied++
	} else {
		s.Dropped++
	}
}
