package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "python list", raw: `['#a', '#b']`, want: []string{"#a", "#b"}},
		{name: "json list", raw: `["@x","@y"]`, want: []string{"@x", "@y"}},
		{name: "empty list", raw: `[]`, want: nil},
		{name: "trailing comma", raw: `['#a',]`, want: []string{"#a"}},
		{name: "unicode prefix", raw: `[u'#caf\xe9']`, want: []string{"#café"}},
		{name: "escaped quote", raw: `['it\'s']`, want: []string{"it's"}},
		{name: "json solidus", raw: `["a\/b"]`, want: []string{"a/b"}},
		{name: "surrounding space", raw: "  [ ' #a ' ,\n'#b' ]  ", want: []string{"#a", "#b"}},
		{name: "empty elements dropped", raw: `['', '  ', '#a']`, want: []string{"#a"}},
		{name: "bare scalar", raw: `#solo`, want: []string{"#solo"}},
		{name: "blank", raw: "   ", want: nil},
		{name: "nan", raw: "nan", want: nil},
		{name: "None", raw: "None", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeList(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeList_NFC(t *testing.T) {
	t.Parallel()

	// "e" + combining acute composes to a single rune.
	got, err := DecodeList("['#cafe\u0301']")
	require.NoError(t, err)
	assert.Equal(t, []string{"#caf\u00e9"}, got)
}

func TestDecodeList_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want error
	}{
		{raw: `['#a'`, want: errUnterminatedList},
		{raw: `['#a`, want: errUnterminatedString},
		{raw: `[1, 2]`, want: errExpectedString},
		{raw: `['#a' '#b']`, want: errExpectedSeparator},
		{raw: `['#a'] extra`, want: errTrailingData},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeList(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestMalformedFieldError(t *testing.T) {
	t.Parallel()

	err := error(&MalformedFieldError{Row: 3, RowID: "p9", Field: "hashtags", Value: "[", Err: errUnterminatedList})
	assert.Contains(t, err.Error(), `field "hashtags"`)
	assert.Contains(t, err.Error(), "p9")
	assert.ErrorIs(t, err, errUnterminatedList)
}
