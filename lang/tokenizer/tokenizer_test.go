package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldraconus/fifth/lang/value"
)

func TestNextClassifiesLexemes(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		want value.Value
	}{
		{"integer", "42", value.Int(42)},
		{"negative integer", "-7", value.Int(-7)},
		{"real", "3.5", value.Flt(3.5)},
		{"bare word", "swap", value.Str("swap")},
		{"operator word", "+", value.Str("+")},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			buf := c.in
			got, ok := Next(&buf)
			require.True(t, ok)
			assert.Equal(t, c.want, got)
			assert.Empty(t, buf)
		})
	}
}

func TestNextSkipsLeadingWhitespaceAndStopsAtNext(t *testing.T) {
	buf := "   1 2"
	got, ok := Next(&buf)
	require.True(t, ok)
	assert.Equal(t, value.Int(1), got)
	assert.Equal(t, " 2", buf)
}

func TestNextEmptyBuffer(t *testing.T) {
	buf := "   "
	_, ok := Next(&buf)
	assert.False(t, ok)
}

func TestNextQuotedStringWithEscapes(t *testing.T) {
	buf := `'a\nb\tc' rest`
	got, ok := Next(&buf)
	require.True(t, ok)
	assert.Equal(t, value.Str("a\nb\tc"), got)
	assert.Equal(t, " rest", buf)
}

func TestNextDoubleQuoted(t *testing.T) {
	buf := `"hello world"`
	got, ok := Next(&buf)
	require.True(t, ok)
	assert.Equal(t, value.Str("hello world"), got)
}

func TestNextUnterminatedQuoteMarksItself(t *testing.T) {
	buf := `'oops`
	got, ok := Next(&buf)
	require.True(t, ok)
	assert.Equal(t, value.Str("'oops"), got)
	assert.Empty(t, buf)
}
