// Package tally counts term observations and ranks the result.
package tally

import (
	"math"
	"sort"

	"github.com/tinytelemetry/narrator/internal/model"
)

// Options controls Count.
type Options struct {
	// ByDate keys buckets by (term, date) instead of term alone.
	ByDate bool
	// Weighted sums observation weights instead of occurrences.
	Weighted bool
	Sort     model.SortPolicy
	// SampleSize keeps the first N pairs after sorting. N <= 0 keeps all.
	SampleSize int
}

// Count tallies obs into pairs in first-occurrence order, then applies the
// sort policy and sample size.
func Count(obs []model.Observation, opts Options) []model.CountPair {
	idx := make(map[model.Key]int)
	var pairs []model.CountPair
	var sums []float64

	for _, o := range obs {
		k := model.Key{Term: o.Term}
		if opts.ByDate {
			k.Date = o.Date
		}
		i, ok := idx[k]
		if !ok {
			i = len(pairs)
			idx[k] = i
			pairs = append(pairs, model.CountPair{Key: k})
			sums = append(sums, 0)
		}
		if opts.Weighted {
			sums[i] += o.Weight
		} else {
			pairs[i].Count++
		}
	}
	if opts.Weighted {
		for i := range pairs {
			pairs[i].Count = int64(math.Round(sums[i]))
		}
	}

	return Sample(pairs, opts.Sort, opts.SampleSize)
}

// Sample stable-sorts pairs by policy and truncates to n. Ties keep their
// input order. n <= 0 or n >= len(pairs) keeps every pair. pairs is not
// modified.
func Sample(pairs []model.CountPair, policy model.SortPolicy, n int) []model.CountPair {
	out := append([]model.CountPair(nil), pairs...)

	switch policy {
	case model.SortByCountDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	case model.SortByKeyAsc:
		sort.SliceStable(out, func(i, j int) bool { return keyLess(out[i].Key, out[j].Key, false) })
	case model.SortByKeyDesc:
		sort.SliceStable(out, func(i, j int) bool { return keyLess(out[i].Key, out[j].Key, true) })
	}

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// keyLess orders keys by (date, term), reversed when desc. Undated keys
// always follow dated ones, in either direction.
func keyLess(a, b model.Key, desc bool) bool {
	if (a.Date == "") != (b.Date == "") {
		return b.Date == ""
	}
	if a.Date != b.Date {
		return (a.Date < b.Date) != desc
	}
	if a.Term != b.Term {
		return (a.Term < b.Term) != desc
	}
	return false
}

// Totals folds pairs into per-term totals across dates.
func Totals(pairs []model.CountPair) map[string]int64 {
	out := make(map[string]int64)
	for _, p := range pairs {
		out[p.Key.Term] += p.Count
	}
	return out
}

// Terms returns the distinct terms of pairs in first-occurrence order.
func Terms(pairs []model.CountPair) []string {
	seen := make(map[string]struct{}, len(pairs))
	var out []string
	for _, p := range pairs {
		if _, ok := seen[p.Key.Term]; ok {
			continue
		}
		seen[p.Key.Term] = struct{}{}
		out = append(out, p.Key.Term)
	}
	return out
}
