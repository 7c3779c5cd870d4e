package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinytelemetry/narrator/internal/model"
)

func obs(term, date string) model.Observation {
	return model.Observation{Term: term, Date: date, Weight: 1}
}

func TestCount_ByDateSortedByCount(t *testing.T) {
	t.Parallel()

	in := []model.Observation{
		obs("#a", "2019-01-01"),
		obs("#b", "2019-01-02"),
		obs("#a", "2019-01-01"),
	}
	got := Count(in, Options{ByDate: true, Sort: model.SortByCountDesc})

	assert.Equal(t, []model.CountPair{
		{Key: model.Key{Term: "#a", Date: "2019-01-01"}, Count: 2},
		{Key: model.Key{Term: "#b", Date: "2019-01-02"}, Count: 1},
	}, got)
}

func TestCount_FirstOccurrenceOrderWithoutSort(t *testing.T) {
	t.Parallel()

	in := []model.Observation{obs("#z", ""), obs("#a", ""), obs("#z", ""), obs("#m", "")}
	got := Count(in, Options{})

	assert.Equal(t, []model.CountPair{
		{Key: model.Key{Term: "#z"}, Count: 2},
		{Key: model.Key{Term: "#a"}, Count: 1},
		{Key: model.Key{Term: "#m"}, Count: 1},
	}, got)
}

func TestCount_IgnoresDateWhenNotByDate(t *testing.T) {
	t.Parallel()

	in := []model.Observation{obs("#a", "2019-01-01"), obs("#a", "2019-01-02")}
	got := Count(in, Options{})
	assert.Equal(t, []model.CountPair{{Key: model.Key{Term: "#a"}, Count: 2}}, got)
}

func TestCount_Weighted(t *testing.T) {
	t.Parallel()

	in := []model.Observation{
		{Term: "#a", Weight: 1.5},
		{Term: "#a", Weight: 2},
		{Term: "#b", Weight: 0},
	}
	got := Count(in, Options{Weighted: true, Sort: model.SortByCountDesc})
	assert.Equal(t, []model.CountPair{
		{Key: model.Key{Term: "#a"}, Count: 4},
		{Key: model.Key{Term: "#b"}, Count: 0},
	}, got)
}

func TestCount_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Count(nil, Options{SampleSize: 5}))
}

func TestSample(t *testing.T) {
	t.Parallel()

	pairs := []model.CountPair{
		{Key: model.Key{Term: "#a", Date: "2019-01-03"}, Count: 1},
		{Key: model.Key{Term: "#b", Date: "2019-01-01"}, Count: 5},
		{Key: model.Key{Term: "#c", Date: "2019-01-02"}, Count: 1},
		{Key: model.Key{Term: "#d", Date: "2019-01-01"}, Count: 3},
	}

	tests := []struct {
		name   string
		policy model.SortPolicy
		n      int
		want   []string
	}{
		{name: "count desc stable ties", policy: model.SortByCountDesc, n: 0, want: []string{"#b", "#d", "#a", "#c"}},
		{name: "count desc top 2", policy: model.SortByCountDesc, n: 2, want: []string{"#b", "#d"}},
		{name: "key asc", policy: model.SortByKeyAsc, n: 0, want: []string{"#b", "#d", "#c", "#a"}},
		{name: "key desc", policy: model.SortByKeyDesc, n: 0, want: []string{"#a", "#c", "#d", "#b"}},
		{name: "none keeps order", policy: model.SortNone, n: 3, want: []string{"#a", "#b", "#c"}},
		{name: "oversized sample keeps all", policy: model.SortNone, n: 100, want: []string{"#a", "#b", "#c", "#d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Terms(Sample(pairs, tt.policy, tt.n)))
		})
	}

	assert.Equal(t, "#a", pairs[0].Key.Term, "input must not be reordered")
}

func TestSample_UndatedKeysSortByTerm(t *testing.T) {
	t.Parallel()

	pairs := []model.CountPair{
		{Key: model.Key{Term: "#b"}}, {Key: model.Key{Term: "#a"}}, {Key: model.Key{Term: "#c"}},
	}
	assert.Equal(t, []string{"#a", "#b", "#c"}, Terms(Sample(pairs, model.SortByKeyAsc, 0)))
}

func TestSample_UndatedKeysSortLast(t *testing.T) {
	t.Parallel()

	pairs := []model.CountPair{
		{Key: model.Key{Term: "#z", Date: "2019-01-02"}},
		{Key: model.Key{Term: "#a"}},
		{Key: model.Key{Term: "#b", Date: "2019-01-01"}},
		{Key: model.Key{Term: "#a", Date: "2019-01-02"}},
		{Key: model.Key{Term: "#c"}},
	}
	keys := func(ps []model.CountPair) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Key.String()
		}
		return out
	}

	assert.Equal(t, []string{"#b@2019-01-01", "#a@2019-01-02", "#z@2019-01-02", "#a", "#c"},
		keys(Sample(pairs, model.SortByKeyAsc, 0)))
	assert.Equal(t, []string{"#z@2019-01-02", "#a@2019-01-02", "#b@2019-01-01", "#c", "#a"},
		keys(Sample(pairs, model.SortByKeyDesc, 0)))
}

func TestTotals(t *testing.T) {
	t.Parallel()

	pairs := []model.CountPair{
		{Key: model.Key{Term: "#a", Date: "2019-01-01"}, Count: 2},
		{Key: model.Key{Term: "#b", Date: "2019-01-01"}, Count: 1},
		{Key: model.Key{Term: "#a", Date: "2019-01-02"}, Count: 3},
	}
	assert.Equal(t, map[string]int64{"#a": 5, "#b": 1}, Totals(pairs))
}
