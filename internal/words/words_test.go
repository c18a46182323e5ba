package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizes(t *testing.T) {
	w := New("Hola")
	assert.Equal(t, "hola", w.Text())
	assert.Equal(t, New("HOLA"), w)
	assert.False(t, w.IsSentinel())
}

func TestSentinels(t *testing.T) {
	assert.True(t, Initial().IsInitial())
	assert.True(t, Terminal().IsTerminal())
	assert.NotEqual(t, Initial(), Terminal())
	assert.Equal(t, "<start>", Initial().String())
	assert.Equal(t, "<end>", Terminal().String())
	assert.Empty(t, Initial().Text())
}

func TestKeyRoundTrip(t *testing.T) {
	cases := []Word{
		Initial(),
		Terminal(),
		New("perro"),
		New("init"),
		New("term"),
		New("_x"),
		New("prefixINITsuffix"),
		New("ñandú"),
		MustParse("_INIT"),
		MustParse("__TERM"),
	}
	for _, w := range cases {
		t.Run(w.Key(), func(t *testing.T) {
			got, err := Parse(w.Key())
			require.NoError(t, err)
			assert.Equal(t, w, got)
		})
	}
}

func TestReservedTokensNeverCollide(t *testing.T) {
	literal := MustParse("_INIT")
	assert.False(t, literal.IsSentinel())
	assert.Equal(t, "INIT", literal.Text())
	assert.NotEqual(t, Initial(), literal)
	assert.NotEqual(t, Initial().Key(), literal.Key())

	term := MustParse("_TERM")
	assert.NotEqual(t, Terminal(), term)
	assert.Equal(t, "_TERM", term.Key())
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.Panics(t, func() { MustParse("") })
}

func TestTokenize(t *testing.T) {
	got := Tokenize("  La casa\tBlanca \n")
	assert.Equal(t, []Word{Initial(), New("la"), New("casa"), New("blanca"), Terminal()}, got)

	assert.Equal(t, []Word{Initial(), Terminal()}, Tokenize("   "))
}

func TestRender(t *testing.T) {
	ws := []Word{Initial(), New("a"), New("b"), Terminal()}
	assert.Equal(t, "a b", Render(ws))
	assert.Equal(t, []string{"a", "b"}, Texts(ws))
	assert.Equal(t, "", Render([]Word{Initial()}))
	assert.Equal(t, "la casa", Render(Tokenize("La   casa")))
}
