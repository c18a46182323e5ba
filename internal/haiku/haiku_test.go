package haiku

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosbot/marcos/internal/metrics"
)

const poem = "la casa blanca el gato come pan su luna roja"

func TestExtendUntilValid(t *testing.T) {
	h := New(metrics.Spanish{})
	fields := strings.Fields(poem)
	for i, w := range fields {
		require.False(t, h.Valid(), "valid too early before %q", w)
		require.NoError(t, h.ExtendWith(w))
		if i < len(fields)-1 {
			assert.False(t, h.Valid())
		}
	}
	require.True(t, h.Valid())

	lines := h.Strings()
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"la casa blanca", "el gato come pan", "su luna roja"}, lines)
	assert.Equal(t, 5, h.Verses()[0].MetricLength())
	assert.Equal(t, 7, h.Verses()[1].MetricLength())
	assert.Equal(t, 5, h.Verses()[2].MetricLength())
}

func TestFitClassification(t *testing.T) {
	h := New(metrics.Spanish{})
	assert.Equal(t, FitPartial, h.Fit("la"))
	require.NoError(t, h.ExtendWith("la"))
	require.NoError(t, h.ExtendWith("casa"))

	assert.Equal(t, FitNone, h.Fit("gatito"), "la casa gatito is six syllables")
	assert.Equal(t, FitVerse, h.Fit("blanca"))
	assert.Equal(t, FitNone, h.Fit("psicología"))

	require.NoError(t, h.ExtendWith("blanca"))
	assert.Equal(t, FitPartial, h.Fit("el"), "opens the second verse")

	for _, w := range []string{"el", "gato", "come"} {
		require.NoError(t, h.ExtendWith(w))
	}
	assert.Equal(t, FitVerse, h.Fit("pan"))
	require.NoError(t, h.ExtendWith("pan"))

	require.NoError(t, h.ExtendWith("su"))
	require.NoError(t, h.ExtendWith("luna"))
	assert.Equal(t, FitPoem, h.Fit("roja"))
	require.NoError(t, h.ExtendWith("roja"))

	assert.Equal(t, FitNone, h.Fit("sol"), "no verse left")
}

func TestFitOverflowOnNewVerse(t *testing.T) {
	long := metrics.AnalyzerFunc(func(w string) (metrics.Analysis, error) {
		n := len(w)
		syl := make([]string, n)
		for i := range syl {
			syl[i] = "x"
		}
		return metrics.Analysis{Word: w, Syllables: syl, StressFromEnd: 1}, nil
	})
	h := New(long)
	require.NoError(t, h.ExtendWith("aaaaa"))
	assert.Equal(t, 5, h.Verses()[0].MetricLength())
	assert.Equal(t, FitNone, h.Fit("bbbbbbbb"), "eight syllables cannot open a 7-syllable verse")
	assert.Equal(t, FitVerse, h.Fit("ccccccc"))
}

func TestSpeculativeLengthDoesNotMutate(t *testing.T) {
	a, err := metrics.Analyze("la")
	require.NoError(t, err)
	b, err := metrics.Analyze("casa")
	require.NoError(t, err)

	v := NewVerse(a)
	assert.Equal(t, 2, v.MetricLength())
	assert.Equal(t, 3, v.MetricLengthWith(b))
	assert.Equal(t, 2, v.MetricLength())
	assert.Equal(t, []string{"la"}, v.Words())
}

func TestExtendWithUnanalyzableWord(t *testing.T) {
	h := New(metrics.Spanish{})
	err := h.ExtendWith("brrr")
	require.Error(t, err)
	assert.ErrorIs(t, err, metrics.ErrSyllabification)
	assert.Equal(t, []string{""}, h.Strings())
}

func TestOverfullHaikuIsInvalid(t *testing.T) {
	h := New(metrics.Spanish{})
	for _, w := range strings.Fields(poem + " sol") {
		require.NoError(t, h.ExtendWith(w))
	}
	assert.False(t, h.Valid())
	assert.Len(t, h.Strings(), 4)
}

func TestFitStrings(t *testing.T) {
	assert.Equal(t, "false", FitNone.String())
	assert.Equal(t, "incomplete", FitPartial.String())
	assert.Equal(t, "complete", FitPoem.String())
}
