package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyllabification is returned when a word has a position where a vowel
// nucleus was expected and none was found.
var ErrSyllabification = errors.New("a vowel was expected")

// #region letter-classes

const (
	strongVowels  = "aeoáéóíú"
	weakVowels    = "iuü"
	liquids       = "lr"
	obstruents    = "bcdfgpt"
	vowels        = "aeiouáéíóúü"
	consonants    = "bcdfghjklmnpqrstvwxyzñ"
	accented      = "áéóíú"
	paroxytoneEnd = "nsaeiou"
)

func in(set string, r rune) bool { return strings.ContainsRune(set, r) }

type letters []rune

func (l letters) at(i int) rune {
	if i < 0 || i >= len(l) {
		return 0
	}
	return l[i]
}

func (l letters) vowel(i int) bool     { r := l.at(i); return r != 0 && in(vowels, r) }
func (l letters) consonant(i int) bool { r := l.at(i); return r != 0 && in(consonants, r) }
func (l letters) strong(i int) bool    { r := l.at(i); return r != 0 && in(strongVowels, r) }
func (l letters) weak(i int) bool      { r := l.at(i); return r != 0 && in(weakVowels, r) }

// group reports an inseparable consonant pair (bl, tr, ch, ll, rr, ...) at i.
func (l letters) group(i int) bool {
	a, b := l.at(i), l.at(i+1)
	if a == 0 || b == 0 {
		return false
	}
	if in(obstruents, a) && in(liquids, b) {
		return true
	}
	switch string([]rune{a, b}) {
	case "dr", "kr", "ll", "rr", "ch":
		return true
	}
	return false
}

// triphthong: weak + strong + (weak | y).
func (l letters) triphthong(i int) bool {
	return l.weak(i) && l.strong(i+1) && (l.weak(i+2) || l.at(i+2) == 'y')
}

// diphthong returns the rune length of a diphthong starting at i, or 0.
// A silent h may sit between the two vowels.
func (l letters) diphthong(i int) int {
	if l.at(i) == 'i' && l.at(i+1) == 'í' {
		return 0
	}
	switch {
	case l.strong(i) && l.weak(i+1), l.weak(i) && l.strong(i+1):
		return 2
	case l.strong(i) && l.at(i+1) == 'h' && l.weak(i+2),
		l.weak(i) && l.at(i+1) == 'h' && l.strong(i+2):
		return 3
	}
	switch string([]rune{l.at(i), l.at(i + 1)}) {
	case "ui", "iu", "uy", "yu":
		return 2
	}
	return 0
}

// #endregion letter-classes

// #region syllabify

// Syllabify splits a lower-case Spanish word into syllables.
func Syllabify(word string) ([]string, error) {
	l := letters([]rune(strings.ToLower(word)))
	n := len(l)
	var syllables []string

	for start, j := 0, 0; start < n; start = j {
		// Onset
		if l.group(j) {
			j += 2
		} else if l.consonant(j) {
			j++
		}

		// Nucleus
		if l.triphthong(j) {
			j += 3
		} else if d := l.diphthong(j); d > 0 {
			j += d
		} else if l.vowel(j) || l.at(j) == 'y' {
			j++
		} else {
			return nil, fmt.Errorf("syllabify %q at %d: %w", word, j, ErrSyllabification)
		}

		// Coda
		rem := n - j
		switch {
		case rem < 2 && l.consonant(j):
			j++
		case rem > 1 && l.group(j):
		case rem > 1 && l.consonant(j) && l.vowel(j+1):
		case rem > 2 && l.consonant(j) && l.consonant(j+1) && l.vowel(j+2):
			j++
		case rem > 3 && l.consonant(j) && l.group(j+1) && l.vowel(j+3):
			j++
		case rem > 3 && l.consonant(j) && l.consonant(j+1) && l.consonant(j+2) && l.vowel(j+3):
			j += 2
		case rem > 3 && l.consonant(j) && l.consonant(j+1) && l.consonant(j+2) && l.consonant(j+3):
			j += 2
		}

		syllables = append(syllables, string(l[start:j]))
	}
	return syllables, nil
}

// #endregion syllabify
