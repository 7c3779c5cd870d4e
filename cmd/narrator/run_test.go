package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/summarize"
)

const testCorpus = `id,date,hashtags,text
1,2019-01-01 08:00:00,"['#a', '#b']",morning
2,2019-01-01 09:00:00,"['#a']",hello
3,2019-01-02,"['#b']",my ballot is in
4,2019-01-03,,the polls are open
`

func testAppConfig(t *testing.T) appConfig {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	return appConfig{
		Corpus:      writeFile(t, dir, "corpus.csv", testCorpus),
		IDField:     "id",
		DateField:   "date",
		TextField:   "text",
		OutputDir:   filepath.Join(dir, "out"),
		TopN:        10,
		ChartWidth:  60,
		ChartHeight: 6,
		Color:       "never",
		Verbose:     true,
		Quiet:       true,
		Periods: []model.PeriodDef{
			{Name: "1", Begin: "2019-01-01", End: "2019-01-02"},
			{Name: "2", Begin: "2019-01-03", End: "2019-01-03"},
		},
		Aggregations: []aggregationConfig{
			{Name: "top tags", Option: "sum_all", Fields: []string{"hashtags"}, Sort: "count_desc"},
			{Name: "vote", Option: "keyword_temporal", Fields: []string{"hashtags"}, Terms: []string{"#b"}},
			{Name: "a daily", Option: "single_temporal", Fields: []string{"hashtags"}, Target: "#a", Granularity: "day"},
		},
	}
}

func TestSessionSummarize(t *testing.T) {
	cfg := testAppConfig(t)

	s, err := openSession(cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.EqualValues(t, 4, s.rows)

	report, err := s.summarize(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	top := report.Results[0]
	assert.Equal(t, []model.CountPair{
		{Key: model.Key{Term: "#a"}, Count: 2},
		{Key: model.Key{Term: "#b"}, Count: 2},
	}, top.Pairs)

	vote, ok := report.Result("vote")
	require.True(t, ok)
	assert.Equal(t, map[string]map[string]int64{
		"1": {"#b": 2},
		"2": {"#b": 0},
	}, vote.Grouped.PeriodMap())

	daily, ok := report.Result("a daily")
	require.True(t, ok)
	got, _ := daily.Grouped.DayCount("2019-01-01", "#a")
	assert.Equal(t, int64(2), got)
	assert.Equal(t, []string{"2019-01-01", "2019-01-02", "2019-01-03"}, daily.Grouped.Days())
}

func TestSessionDescribe(t *testing.T) {
	cfg := testAppConfig(t)
	s, err := openSession(cfg)
	require.NoError(t, err)
	defer s.Close()

	info, err := s.describe()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "date", "hashtags", "text"}, info.columns)
	assert.Equal(t, "2019-01-01", info.firstDay)
	assert.Equal(t, "2019-01-03", info.lastDay)
	assert.Equal(t, 2, info.periods)

	var buf bytes.Buffer
	printStartupBanner(&buf, cfg, info)
	assert.Contains(t, buf.String(), "2019-01-01 → 2019-01-03")
	assert.Contains(t, buf.String(), "id, date, hashtags, text")
}

func TestSessionSummarize_OnlyNamed(t *testing.T) {
	cfg := testAppConfig(t)
	s, err := openSession(cfg)
	require.NoError(t, err)
	defer s.Close()

	report, err := s.summarize(context.Background(), []string{"vote"})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, summarize.KeywordTemporal, report.Results[0].Option)

	_, err = s.summarize(context.Background(), []string{"nope"})
	assert.ErrorContains(t, err, "unknown aggregation")
}

func TestRunSummarize_WritesOutputs(t *testing.T) {
	cfg := testAppConfig(t)
	require.NoError(t, runSummarize(context.Background(), cfg, nil))

	for _, name := range []string{
		"top_tags.csv", "top_tags.txt",
		"vote.csv", "vote_grouped.csv", "vote_long.csv", "vote_wide.csv", "vote.txt",
		"a_daily.csv", "a_daily_grouped.csv", "a_daily.txt",
	} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}

	wide, err := os.ReadFile(filepath.Join(cfg.OutputDir, "vote_wide.csv"))
	require.NoError(t, err)
	assert.Equal(t, "period,#b\n1,2\n2,0\n", string(wide))
}

func TestRunSummarize_NoCorpus(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.Corpus = ""
	assert.ErrorContains(t, runSummarize(context.Background(), cfg, nil), "no corpus")
}

func TestRunPeriods(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.Quiet = false

	var buf bytes.Buffer
	require.NoError(t, runPeriods(cfg, &buf))
	out := buf.String()
	assert.Contains(t, out, "2019-01-02")
	assert.Contains(t, out, "2019-01-03")
}

func TestBrowserData(t *testing.T) {
	cfg := testAppConfig(t)
	s, err := openSession(cfg)
	require.NoError(t, err)
	defer s.Close()

	report, err := s.summarize(context.Background(), nil)
	require.NoError(t, err)

	data, err := browserData(cfg, report)
	require.NoError(t, err)
	require.Len(t, data.Sections, 3)
	assert.Empty(t, data.Sections[0].Table.Rows)
	assert.Equal(t, []string{"#b"}, data.Sections[1].Table.Terms)
	assert.True(t, strings.HasPrefix(data.Title, "narrator"))
}

func TestFileBase(t *testing.T) {
	assert.Equal(t, "top_tags", fileBase("top tags"))
	assert.Equal(t, "a-b.c", fileBase("a-b.c"))
	assert.Equal(t, "aggregation", fileBase("///"))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Version:    dev")
}
