// Package summarize runs aggregation requests end to end: extract terms,
// tally and rank them, and for temporal options group the counts into a
// day or period skeleton.
package summarize

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/narrator/internal/extract"
	"github.com/tinytelemetry/narrator/internal/grouper"
	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/period"
	"github.com/tinytelemetry/narrator/internal/skeleton"
	"github.com/tinytelemetry/narrator/internal/tally"
)

// Result is the outcome of one request.
type Result struct {
	Name   string
	Option Option
	// Observations is the number of extracted term occurrences.
	Observations int
	// Pairs is the ranked, sampled tally.
	Pairs []model.CountPair
	// Grouped is nil for non-temporal options.
	Grouped *skeleton.Skeleton
	Stats   grouper.Stats
}

// Report collects the results of one Run.
type Report struct {
	RunID       uuid.UUID
	StartedAt   time.Time
	PeriodDates map[string][]string
	Results     []*Result
}

// Result returns the result named name.
func (r *Report) Result(name string) (*Result, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return nil, false
}

// Summarizer runs requests against a fixed period index. The index may be
// nil when only day granularity and corpus-wide options are used.
type Summarizer struct {
	index *period.Index
}

// New returns a Summarizer over ix.
func New(ix *period.Index) *Summarizer {
	return &Summarizer{index: ix}
}

// Summarize runs req over rows. rows is only read.
func (s *Summarizer) Summarize(rows []model.Row, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	obs, err := extract.Collect(extract.Terms(rows, req.extractConfig()))
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", req.Name, err)
	}

	temporal := req.Option.Temporal()
	pairs := tally.Count(obs, tally.Options{
		ByDate:     temporal,
		Weighted:   req.Weighted,
		Sort:       req.Sort,
		SampleSize: req.SampleSize,
	})
	log.Printf("summarize: %s: %d observations, %d pairs kept", req.Name, len(obs), len(pairs))

	res := &Result{Name: req.Name, Option: req.Option, Observations: len(obs), Pairs: pairs}
	if !temporal {
		return res, nil
	}

	vocab := req.extractConfig().Policy.Vocabulary()
	if req.Option == AllTemporal {
		vocab = tally.Terms(pairs)
	}

	cfg := skeleton.Config{Granularity: req.Granularity, Keys: vocab, Index: s.index}
	if req.Granularity == model.GranularityDay {
		days, err := s.days(req, obs)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", req.Name, err)
		}
		cfg.Days = days
	}
	sk, err := skeleton.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", req.Name, err)
	}

	sk, st, err := grouper.Hydrate(sk, pairs, grouper.Options{Index: s.index})
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", req.Name, err)
	}
	if st.Dropped > 0 {
		log.Printf("summarize: %s: %d pairs outside the %s skeleton dropped", req.Name, st.Dropped, req.Granularity)
	}

	res.Grouped = sk
	res.Stats = st
	return res, nil
}

// days resolves the day range for a day skeleton: explicit days, then the
// period index, then the span of observed dates.
func (s *Summarizer) days(req Request, obs []model.Observation) ([]string, error) {
	if len(req.Days) > 0 {
		return req.Days, nil
	}
	if s.index.Len() > 0 {
		return s.index.AllDays(), nil
	}
	var first, last string
	for _, o := range obs {
		if o.Date == "" {
			continue
		}
		if first == "" || o.Date < first {
			first = o.Date
		}
		if o.Date > last {
			last = o.Date
		}
	}
	if first == "" {
		return nil, skeleton.ErrMissingDays
	}
	return period.DateRange(first, last)
}

// Run executes reqs concurrently over the shared corpus and returns their
// results in request order. The first failure cancels the rest.
func (s *Summarizer) Run(ctx context.Context, rows []model.Row, reqs []Request) (*Report, error) {
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if _, dup := seen[req.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate request name %q", ErrInvalidRequest, req.Name)
		}
		seen[req.Name] = struct{}{}
	}

	report := &Report{
		RunID:       uuid.New(),
		StartedAt:   time.Now(),
		PeriodDates: s.index.Map(),
		Results:     make([]*Result, len(reqs)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Summarize(rows, req)
			if err != nil {
				return err
			}
			report.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("summarize: run %s finished %d requests in %s", report.RunID, len(reqs), time.Since(report.StartedAt).Round(time.Millisecond))
	return report, nil
}
