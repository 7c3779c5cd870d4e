package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowGet(t *testing.T) {
	r := Row{ID: "1", Fields: map[string]string{"tags": "['#a']", "blank": "  "}}

	v, ok := r.Get("tags")
	assert.True(t, ok)
	assert.Equal(t, "['#a']", v)

	_, ok = r.Get("blank")
	assert.False(t, ok, "whitespace-only cells count as missing")
	_, ok = r.Get("absent")
	assert.False(t, ok)
	_, ok = Row{}.Get("tags")
	assert.False(t, ok)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "#a", Key{Term: "#a"}.String())
	assert.Equal(t, "#a@2019-01-01", Key{Term: "#a", Date: "2019-01-01"}.String())
}

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		in   string
		want Granularity
	}{
		{"day", GranularityDay},
		{"Period_Day", GranularityPeriodDay},
		{"period-day", GranularityPeriodDay},
		{" period ", GranularityPeriod},
	}
	for _, tt := range tests {
		got, err := ParseGranularity(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		if tt.in == "day" {
			assert.Equal(t, "day", got.String())
		}
	}

	_, err := ParseGranularity("week")
	assert.Error(t, err)
	assert.Equal(t, "granularity(7)", Granularity(7).String())
}

func TestParseSortPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want SortPolicy
	}{
		{"", SortNone},
		{"none", SortNone},
		{"count_desc", SortByCountDesc},
		{"key_asc", SortByKeyAsc},
		{"date_desc", SortByKeyDesc},
	}
	for _, tt := range tests {
		got, err := ParseSortPolicy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSortPolicy("random")
	assert.Error(t, err)
	assert.Equal(t, "count_desc", SortByCountDesc.String())
}

func TestWideTable(t *testing.T) {
	wt := WideTable{
		Terms: []string{"#a", "#b"},
		Rows: []WideRow{
			{Period: "1", Counts: []int64{3, 0}},
			{Period: "2", Counts: []int64{1, 4}},
		},
	}

	assert.Equal(t, []string{"period", "#a", "#b"}, wt.Columns())

	v, ok := wt.Value("2", "#b")
	assert.True(t, ok)
	assert.Equal(t, int64(4), v)

	_, ok = wt.Value("3", "#a")
	assert.False(t, ok)
	_, ok = wt.Value("1", "#c")
	assert.False(t, ok)
}
