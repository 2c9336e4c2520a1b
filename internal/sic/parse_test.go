package sic

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodes(t *testing.T) {
	e, _ := newTestEngine(t)

	tests := []struct {
		name string
		raw  string
		want Set
	}{
		{"single code", "86101", NewSet("86101")},
		{"bracketed list", "[86101, 86210]", NewSet("86101", "86210")},
		{"shorthand removed", "86101;8602x;4+", NewSet("86101", "8602x")},
		{"leading zero restored", "1420", NewSet("01420")},
		{"list with nan", "[8601x, 1410, nan]", NewSet("8601x", "01410")},
		{"upper wildcard", "86XXX", NewSet("86XXX")},
		{"dont know inside list", "86101;-9", NewSet("86101")},
		{"nested shorthand", "4-9+", Set{}},
		{"surrounding space", "  86210  ", NewSet("86210")},
		{"duplicates collapse", "86101 86101", NewSet("86101")},
		{"no digits", "NotACode", Set{}},
		{"long token kept", "123456789", NewSet("123456789")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ParseCodes(tt.raw))
		})
	}
}

func TestParseCodes_Sentinels(t *testing.T) {
	e, rec := newTestEngine(t)

	for _, raw := range []string{"-9", "4+", "", ".", " ", "nan", "NaN", "NAN", "None", "none", "Null", "NULL", "<NA>", "<na>", "  nan  "} {
		t.Run(strconv.Quote(raw), func(t *testing.T) {
			assert.Empty(t, e.ParseCodes(raw))
		})
	}
	assert.Empty(t, rec.Events())
}

func TestParseCodes_NumericInputMatchesString(t *testing.T) {
	e, _ := newTestEngine(t)

	fromNumber := e.ParseCodes(strconv.Itoa(1420))
	assert.Equal(t, e.ParseCodes("1420"), fromNumber)
	assert.Equal(t, NewSet("01420"), fromNumber)
}

func TestParseCodes_Padding(t *testing.T) {
	e, _ := newTestEngine(t, WithPadding(4))
	assert.Equal(t, NewSet("0142", "86101"), e.ParseCodes("142;86101"))
}

func TestParseCodes_BadPattern(t *testing.T) {
	e, rec := newTestEngine(t, WithPattern(`([`))
	require.Error(t, e.PatternErr())

	assert.Empty(t, e.ParseCodes("86101"))
	require.Len(t, rec.Events(), 1)
	assert.Equal(t, EventBadPattern, rec.Events()[0].Kind)
	assert.Equal(t, "86101", rec.Events()[0].Value)
}

func TestParseCodes_CustomInvalidValues(t *testing.T) {
	e, _ := newTestEngine(t, WithInvalidValues([]string{"99999"}))

	assert.Empty(t, e.ParseCodes("99999"))
	// "-9" is no longer a sentinel on its own but is still stripped as shorthand.
	assert.Empty(t, e.ParseCodes("-9"))
	assert.Equal(t, NewSet("86101"), e.ParseCodes("nan 86101"))
}

func TestZeroPad(t *testing.T) {
	assert.Equal(t, "01420", ZeroPad("1420", 5))
	assert.Equal(t, "86101", ZeroPad("86101", 5))
	assert.Equal(t, "861012", ZeroPad("861012", 5))
	assert.Equal(t, "00000", ZeroPad("", 5))
}
