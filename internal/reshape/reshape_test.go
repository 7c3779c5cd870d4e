package reshape

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/narrator/internal/model"
	"github.com/tinytelemetry/narrator/internal/period"
	"github.com/tinytelemetry/narrator/internal/skeleton"
)

func hydrated(t *testing.T) *skeleton.Skeleton {
	t.Helper()
	ix, err := period.Build([]model.PeriodDef{
		{Name: "1", Begin: "2019-01-01", End: "2019-01-01"},
		{Name: "2", Begin: "2019-01-02", End: "2019-01-02"},
	})
	require.NoError(t, err)
	sk := skeleton.NewPeriod(ix, []string{"#a", "#b"})
	require.True(t, sk.AddPeriod("1", "#a", 3))
	require.True(t, sk.AddPeriod("2", "#b", 5))
	return sk
}

func TestLongForm(t *testing.T) {
	t.Parallel()

	rows, err := LongForm(hydrated(t))
	require.NoError(t, err)
	assert.Equal(t, []model.LongRow{
		{Period: "1", PeriodNum: 1, Term: "#a", Count: 3},
		{Period: "1", PeriodNum: 1, Term: "#b", Count: 0},
		{Period: "2", PeriodNum: 2, Term: "#a", Count: 0},
		{Period: "2", PeriodNum: 2, Term: "#b", Count: 5},
	}, rows)
}

func TestLongForm_NonNumericPeriodNames(t *testing.T) {
	t.Parallel()

	ix := period.FromMap(map[string][]string{"spring": {"2019-03-01"}, "autumn": {"2019-09-01"}})
	rows, err := LongForm(skeleton.NewPeriod(ix, []string{"#a"}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "autumn", rows[0].Period)
	assert.Equal(t, 1, rows[0].PeriodNum)
	assert.Equal(t, 2, rows[1].PeriodNum)
}

func TestWideForm(t *testing.T) {
	t.Parallel()

	wide, err := WideForm(hydrated(t))
	require.NoError(t, err)
	assert.Equal(t, model.WideTable{
		Terms: []string{"#a", "#b"},
		Rows: []model.WideRow{
			{Period: "1", Counts: []int64{3, 0}},
			{Period: "2", Counts: []int64{0, 5}},
		},
	}, wide)
}

func TestLongToWideRoundTrip(t *testing.T) {
	t.Parallel()

	sk := hydrated(t)
	long, err := LongForm(sk)
	require.NoError(t, err)
	wide, err := WideForm(sk)
	require.NoError(t, err)

	assert.Equal(t, wide, Pivot(long))
}

func TestRejectsNonPeriodSkeleton(t *testing.T) {
	t.Parallel()

	sk := skeleton.NewDay([]string{"2019-01-01"}, []string{"#a"})
	_, err := LongForm(sk)
	assert.ErrorIs(t, err, ErrNotPeriod)
	_, err = WideForm(nil)
	assert.ErrorIs(t, err, ErrNotPeriod)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	sk := hydrated(t)
	long, err := LongForm(sk)
	require.NoError(t, err)
	wide, err := WideForm(sk)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteLongCSV(&buf, long))
	assert.Equal(t, "period,period_num,term,count\n1,1,#a,3\n1,1,#b,0\n2,2,#a,0\n2,2,#b,5\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteWideCSV(&buf, wide))
	assert.Equal(t, "period,#a,#b\n1,3,0\n2,0,5\n", buf.String())
}
