package sanitize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xKimutai/IDSnap/constants"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{
			name:  "name title cased",
			key:   constants.FieldName,
			value: "JOHN KIPCHOGE KAMAU",
			want:  "John Kipchoge Kamau",
		},
		{
			name:  "name artifacts stripped",
			key:   constants.FieldName,
			value: "|MARY   [ATIENO]`",
			want:  "Mary Atieno",
		},
		{
			name:  "name keeps apostrophe and hyphen",
			key:   constants.FieldName,
			value: "O'BRIEN SMITH-JONES",
			want:  "O'brien Smith-jones",
		},
		{
			name:  "id number keeps alphanumerics",
			key:   constants.FieldIDNumber,
			value: " 1234|5678 ",
			want:  "1234 5678",
		},
		{
			name:  "date already canonical",
			key:   constants.FieldDateOfBirth,
			value: "12/05/1990",
			want:  "12/05/1990",
		},
		{
			name:  "day over twelve moves to day slot",
			key:   constants.FieldDateOfBirth,
			value: "25-12-1990",
			want:  "12/25/1990",
		},
		{
			name:  "iso order",
			key:   constants.FieldDateOfBirth,
			value: "1990-12-25",
			want:  "12/25/1990",
		},
		{
			name:  "two digit year pivots forward",
			key:   constants.FieldDateOfIssue,
			value: "01/02/10",
			want:  "01/02/2010",
		},
		{
			name:  "two digit year pivots back",
			key:   constants.FieldDateOfBirth,
			value: "01/02/90",
			want:  "01/02/1990",
		},
		{
			name:  "impossible calendar date left alone",
			key:   constants.FieldDateOfBirth,
			value: "31/04/2020",
			want:  "31/04/2020",
		},
		{
			name:  "non date noise left alone",
			key:   constants.FieldDateOfBirth,
			value: "12/05",
			want:  "12/05",
		},
		{
			name:  "sex m expands",
			key:   constants.FieldSex,
			value: "M",
			want:  "Male",
		},
		{
			name:  "sex female word",
			key:   constants.FieldSex,
			value: "female",
			want:  "Female",
		},
		{
			name:  "sex unknown passes through",
			key:   constants.FieldSex,
			value: "X",
			want:  "X",
		},
		{
			name:  "address collapses noise",
			key:   constants.FieldAddress,
			value: "P.O. BOX 1234,  NAIROBI|",
			want:  "P.O. BOX 1234, NAIROBI",
		},
		{
			name:  "unknown key only strips artifacts",
			key:   "somethingElse",
			value: "  keep [this]  ",
			want:  "keep this",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(tt.key, tt.value))
		})
	}
}

func TestValueIdempotent(t *testing.T) {
	inputs := map[string]string{
		constants.FieldName:        "|J0HN   KAMAU`",
		constants.FieldIDNumber:    " 12-345678 ",
		constants.FieldDateOfBirth: "25.12.90",
		constants.FieldDateOfIssue: "not a date at all",
		constants.FieldSex:         "FEMALE",
		constants.FieldAddress:     "[P.O. BOX 99]",
		constants.FieldNationality: "kenyan",
	}
	for key, value := range inputs {
		once := Value(key, value)
		assert.Equal(t, once, Value(key, once), "key %s", key)
	}
}

func TestFieldsDropsEmpty(t *testing.T) {
	out := Fields(map[string]string{
		constants.FieldName:     "JANE DOE",
		constants.FieldIDNumber: "|[]{}",
	})
	assert.Equal(t, map[string]string{constants.FieldName: "Jane Doe"}, out)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("12/05/1990")
	require.True(t, ok)
	assert.Equal(t, time.Date(1990, time.December, 5, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("25-12-1990")
	require.True(t, ok)
	assert.Equal(t, time.Date(1990, time.December, 25, 0, 0, 0, 0, time.UTC), d)

	// Leap day round trip.
	d, ok = ParseDate("29/02/2020")
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "12/05", "31/04/2020", "29/02/2019", "13/13/2020", "12/05/19901"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, "%q should not parse", bad)
	}
}
