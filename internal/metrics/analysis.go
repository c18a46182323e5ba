package metrics

import (
	"fmt"
	"strings"
	"unicode"
)

// #region types

// Analysis is what the metric engine needs to know about one word.
type Analysis struct {
	Word      string
	Syllables []string
	// StressFromEnd is the stressed syllable counted from the end:
	// 0 for oxytones, 1 for paroxytones, 2 for proparoxytones.
	StressFromEnd   int
	StartsWithVowel bool
	EndsWithVowel   bool
}

// SyllableCount is len(Syllables).
func (a Analysis) SyllableCount() int { return len(a.Syllables) }

// Analyzer turns a word into its metric description.
type Analyzer interface {
	Analyze(word string) (Analysis, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(word string) (Analysis, error)

func (f AnalyzerFunc) Analyze(word string) (Analysis, error) { return f(word) }

// Spanish analyzes words with Spanish phonotactics.
type Spanish struct{}

// #endregion types

// #region analyze

// Analyze implements Analyzer. Characters that are not letters are ignored,
// so "casa," analyzes as "casa".
func (Spanish) Analyze(word string) (Analysis, error) {
	return Analyze(word)
}

// Analyze syllabifies word and locates its stress.
func Analyze(word string) (Analysis, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, word)
	if clean == "" {
		return Analysis{}, fmt.Errorf("analyze %q: %w", word, ErrSyllabification)
	}

	syllables, err := Syllabify(clean)
	if err != nil {
		return Analysis{}, err
	}

	l := []rune(clean)
	first, last := l[0], l[len(l)-1]
	return Analysis{
		Word:            word,
		Syllables:       syllables,
		StressFromEnd:   stressFromEnd(l, syllables),
		StartsWithVowel: in(vowels, first) || (first == 'h' && len(l) > 1 && in(vowels, l[1])),
		EndsWithVowel:   in(vowels, last) || last == 'y',
	}, nil
}

// stressFromEnd finds the stressed syllable: an explicit accent mark wins;
// otherwise words ending in n, s or a vowel stress the penultimate syllable
// and the rest stress the last one.
func stressFromEnd(l []rune, syllables []string) int {
	stressed := -1
	for i, s := range syllables {
		if strings.ContainsAny(s, accented) {
			stressed = i
			break
		}
	}
	if stressed < 0 {
		if in(paroxytoneEnd, l[len(l)-1]) {
			stressed = len(syllables) - 2
		} else {
			stressed = len(syllables) - 1
		}
	}
	stressed = max(stressed, 0)
	return len(syllables) - stressed - 1
}

// #endregion analyze

// #region metric-length

// MetricLength counts the metric syllables of a verse made of words.
//
// Adjacent vowel sounds merge into one syllable (synalepha) unless the
// first word is stressed on its final syllable, and the last word adds
// max(-1, 1-StressFromEnd) so that counting ends one syllable past the
// last stress.
func MetricLength(words []Analysis) int {
	length := 0
	for i, w := range words {
		count := w.SyllableCount()
		if i > 0 {
			prev := words[i-1]
			if prev.EndsWithVowel && w.StartsWithVowel && prev.StressFromEnd != 0 {
				count--
			}
		}
		if i == len(words)-1 {
			count += max(-1, 1-w.StressFromEnd)
		}
		length += count
	}
	return length
}

// #endregion metric-length
