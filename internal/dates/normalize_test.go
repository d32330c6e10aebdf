package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FormatIndependence(t *testing.T) {
	want := Of(time.Date(2023, time.August, 2, 6, 7, 0, 0, time.UTC))

	inputs := []string{
		"2023-08-02 06:07:00",
		"2023-08-02 06:07",
		"2023/08/02 06:07",
		"02 Aug 2023 06:07",
		"2 aug 2023 06:07",
		"Aug 02, 2023 06:07",
		"08/02/23 06:07",
		"08/02/2023 06:07",
		"2023-08-02T06:07:00Z",
		"📅 2023-08-02 06:07:00",
		"2023-08-02 06:07:00 (GMT+08:00)",
		"2023-08-02 06:07:00 GMT+08:00",
		"2023-08-02 06:07 UTC+8",
		"2023-08-02 06:07 utc",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got := Parse(in)
			require.True(t, got.Valid(), "expected %q to parse", in)
			assert.True(t, want.Equal(got), "got %s, want %s", got, want)
		})
	}
}

func TestParse_DateOnlyDefaultsToMidnight(t *testing.T) {
	want := Of(time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC))

	for _, in := range []string{"2024-03-09", "9 Mar 2024", "Mar 9, 2024", "03/09/24", "03/09/2024"} {
		got := Parse(in)
		assert.True(t, want.Equal(got), "%q: got %s", in, got)
	}
}

func TestParse_AnnotatedDayFirst(t *testing.T) {
	got := Parse("(GMT+08:00) 13/02/23")
	require.True(t, got.Valid())
	assert.Equal(t, "13/02/23 00:00", got.String())
}

func TestParse_Unknown(t *testing.T) {
	for _, in := range []string{"", "   ", "unknown", "UNKNOWN", "(n/a)", "⚠️", "not a date", "2023-02-30 10:00"} {
		got := Parse(in)
		assert.False(t, got.Valid(), "%q should be unparseable", in)
		assert.Equal(t, UnknownText, got.String())
	}
}

func TestParse_SlashFallback(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"month first when ambiguous", "valid until 03/04/23 ok", "04/03/23 00:00"},
		{"swap when first group exceeds 12", "valid until 13/04/23 ok", "13/04/23 00:00"},
		{"four digit year", "until 1/2/2031!", "02/01/31 00:00"},
		{"pivot boundary below", "until 1/2/49!", "02/01/49 00:00"},
		{"pivot boundary at", "until 1/2/50!", "02/01/50 00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in).String())
		})
	}

	assert.Equal(t, 2049, Parse("until 1/2/49!").Time().Year())
	assert.Equal(t, 1950, Parse("until 1/2/50!").Time().Year())
}

func TestParse_SlashFallbackRejectsImpossibleDates(t *testing.T) {
	assert.False(t, Parse("until 31/31/23!").Valid())
	assert.False(t, Parse("until 2/30/23!").Valid())
}

func TestParse_IsoLikeFallbackValidates(t *testing.T) {
	got := Parse("issued 2023-8-2 at 6:07 local")
	assert.Equal(t, "02/08/23 06:07", got.String())

	assert.False(t, Parse("issued 2023-13-02 at 06:07 local").Valid())
}

func TestParse_IsoLikeFallbackSingleDigitTime(t *testing.T) {
	assert.Equal(t, "02/08/23 06:07", Parse("2023-08-02 6:7").String())
	assert.Equal(t, "02/08/23 06:07", Parse("2023/8/2 6:7").String())
	assert.Equal(t, "02/08/23 06:07", Parse("2023-08-02 06:07:00").String())
	assert.False(t, Parse("2023-08-02 6:75").Valid())
}

func TestNormalizer_CustomPolicy(t *testing.T) {
	n := NewNormalizer(Policy{
		Layouts:           []string{"02.01.2006"},
		TwoDigitYearPivot: 30,
	})

	assert.Equal(t, "05/06/24 00:00", n.Parse("05.06.2024").String())
	// Default layouts are replaced, not merged.
	assert.False(t, n.Parse("2023-08-02").Valid())
	assert.Equal(t, 1935, n.Parse("on 1/2/35 x").Time().Year())
	assert.Equal(t, 2029, n.Parse("on 1/2/29 x").Time().Year())
}

func TestExpandYear(t *testing.T) {
	assert.Equal(t, 2000, ExpandYear(0, 2, 50))
	assert.Equal(t, 2049, ExpandYear(49, 2, 50))
	assert.Equal(t, 1950, ExpandYear(50, 2, 50))
	assert.Equal(t, 1999, ExpandYear(99, 2, 50))
	assert.Equal(t, 2023, ExpandYear(2023, 4, 50))
}

func TestDate_Immutable(t *testing.T) {
	d := Parse("2023-08-02 06:07:30")
	require.True(t, d.Valid())

	tm := d.Time()
	tm = tm.Add(time.Hour)
	_ = tm

	assert.Equal(t, "02/08/23 06:07", d.String())
	assert.Equal(t, 0, d.Time().Second())
}
