package summarize

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/narrator/internal/extract"
	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/period"
	"github.com/tinytelemetry/narrator/internal/skeleton"
)

func post(id, date, hashtags, text string) model.Row {
	return model.Row{ID: id, Fields: map[string]string{
		"date":     date,
		"hashtags": hashtags,
		"text":     text,
	}}
}

func corpus() []model.Row {
	return []model.Row{
		post("1", "2019-01-01 08:00:00", "['#a', '#b']", "morning"),
		post("2", "2019-01-01 09:30:00", "['#a']", "again"),
		post("3", "2019-01-02", "['#b', '#c']", "ballot day"),
		post("4", "2019-01-03", "nan", "no tags, just a ballot"),
		post("5", "2019-01-04", "['#a']", "#a and a ballot"),
	}
}

func testIndex(t *testing.T) *period.Index {
	t.Helper()
	ix, err := period.Build([]model.PeriodDef{
		{Name: "1", Begin: "2019-01-01", End: "2019-01-02"},
		{Name: "2", Begin: "2019-01-03", End: "2019-01-04"},
	})
	require.NoError(t, err)
	return ix
}

func base(name string, opt Option) Request {
	return Request{Name: name, Option: opt, Fields: []string{"hashtags"}, DateField: "date"}
}

func TestSummarize_SumAll(t *testing.T) {
	t.Parallel()

	req := base("all", SumAll)
	req.Sort = model.SortByCountDesc
	req.SampleSize = 2

	res, err := New(nil).Summarize(corpus(), req)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Observations)
	assert.Equal(t, []model.CountPair{
		{Key: model.Key{Term: "#a"}, Count: 3},
		{Key: model.Key{Term: "#b"}, Count: 2},
	}, res.Pairs)
	assert.Nil(t, res.Grouped)
}

func TestSummarize_SumGroupAndSingle(t *testing.T) {
	t.Parallel()

	s := New(nil)

	req := base("group", SumGroup)
	req.Terms = []string{"#b", "#c"}
	res, err := s.Summarize(corpus(), req)
	require.NoError(t, err)
	assert.Equal(t, []model.CountPair{
		{Key: model.Key{Term: "#b"}, Count: 2},
		{Key: model.Key{Term: "#c"}, Count: 1},
	}, res.Pairs)

	req = base("single", SumSingle)
	req.Target = "#c"
	res, err = s.Summarize(corpus(), req)
	require.NoError(t, err)
	assert.Equal(t, []model.CountPair{{Key: model.Key{Term: "#c"}, Count: 1}}, res.Pairs)
}

func TestSummarize_SingleTemporalByDay(t *testing.T) {
	t.Parallel()

	req := base("a-daily", SingleTemporal)
	req.Target = "#a"
	req.Granularity = model.GranularityDay

	res, err := New(nil).Summarize(corpus(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Grouped)

	// day range falls back to the span of observed dates
	assert.Equal(t, map[string]map[string]int64{
		"2019-01-01": {"#a": 2},
		"2019-01-02": {"#a": 0},
		"2019-01-03": {"#a": 0},
		"2019-01-04": {"#a": 1},
	}, res.Grouped.DayMap())
}

func TestSummarize_GroupTemporalByPeriod(t *testing.T) {
	t.Parallel()

	req := base("ab-periods", GroupTemporal)
	req.Terms = []string{"#a", "#b"}
	req.Granularity = model.GranularityPeriod

	res, err := New(testIndex(t)).Summarize(corpus(), req)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]int64{
		"1": {"#a": 2, "#b": 2},
		"2": {"#a": 1, "#b": 0},
	}, res.Grouped.PeriodMap())
	assert.Zero(t, res.Stats.Dropped)
}

func TestSummarize_KeywordTemporal(t *testing.T) {
	t.Parallel()

	req := base("ballots", KeywordTemporal)
	req.TextField = "text"
	req.Terms = []string{"#c"}
	req.Keywords = []extract.KeywordSet{{Term: "#a", Keywords: []string{"ballot"}}}
	req.Granularity = model.GranularityPeriod

	res, err := New(testIndex(t)).Summarize(corpus(), req)
	require.NoError(t, err)
	// post 3: #c structured, ballot keyword; post 4: ballot keyword;
	// post 5: suppressed because #a itself appears in the text.
	assert.Equal(t, map[string]map[string]int64{
		"1": {"#c": 1, "#a": 1},
		"2": {"#c": 0, "#a": 1},
	}, res.Grouped.PeriodMap())
}

func TestSummarize_PeriodWithoutIndex(t *testing.T) {
	t.Parallel()

	req := base("x", AllTemporal)
	req.Granularity = model.GranularityPeriod
	_, err := New(nil).Summarize(corpus(), req)
	assert.ErrorIs(t, err, skeleton.ErrMissingIndex)
}

func TestSummarize_MalformedCorpus(t *testing.T) {
	t.Parallel()

	rows := append(corpus(), post("6", "2019-01-04", "['#a'", ""))
	_, err := New(nil).Summarize(rows, base("all", SumAll))

	var mfe *extract.MalformedFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "6", mfe.RowID)
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
	}{
		{name: "no name", req: Request{Option: SumAll, Fields: []string{"h"}}},
		{name: "unknown option", req: Request{Name: "x", Option: "sum_everything", Fields: []string{"h"}}},
		{name: "temporal without date", req: Request{Name: "x", Option: AllTemporal, Fields: []string{"h"}}},
		{name: "negative sample", req: Request{Name: "x", Option: SumAll, Fields: []string{"h"}, SampleSize: -1}},
		{name: "single without target", req: Request{Name: "x", Option: SumSingle, Fields: []string{"h"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.req.Validate(), ErrInvalidRequest)
		})
	}
}

func TestParseOption(t *testing.T) {
	t.Parallel()

	o, err := ParseOption(" Group_Temporal ")
	require.NoError(t, err)
	assert.Equal(t, GroupTemporal, o)

	o, err = ParseOption("sum_all_hash")
	require.NoError(t, err)
	assert.Equal(t, SumAll, o)

	_, err = ParseOption("bogus")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Parallel()

	ix := testIndex(t)
	top := base("top", SumAll)
	top.Sort = model.SortByCountDesc
	periods := base("periods", AllTemporal)
	periods.Granularity = model.GranularityPeriod

	report, err := New(ix).Run(context.Background(), corpus(), []Request{top, periods})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.Equal(t, ix.Map(), report.PeriodDates)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "top", report.Results[0].Name)
	assert.Equal(t, "periods", report.Results[1].Name)

	res, ok := report.Result("periods")
	require.True(t, ok)
	assert.Equal(t, []string{"#a", "#b", "#c"}, res.Grouped.Keys())
	_, ok = report.Result("missing")
	assert.False(t, ok)
}

func TestRun_FailsFast(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Run(context.Background(), corpus(), []Request{base("a", SumAll), base("a", SumAll)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	bad := base("bad", AllTemporal)
	bad.Granularity = model.GranularityPeriod
	_, err = New(nil).Run(context.Background(), corpus(), []Request{base("ok", SumAll), bad})
	assert.ErrorIs(t, err, skeleton.ErrMissingIndex)
}
