package haiku

import (
	"strings"

	"github.com/marcosbot/marcos/internal/metrics"
)

// Structure is the metric length of each verse.
var Structure = []int{5, 7, 5}

// #region fit

// Fit classifies how a candidate word would fit in a haiku.
type Fit int

const (
	FitNone    Fit = iota // overflows, cannot be analyzed, or no verse left
	FitPartial            // fits and leaves room
	FitVerse              // exactly fills a verse that is not the last one
	FitPoem               // exactly fills the last verse
)

func (f Fit) String() string {
	switch f {
	case FitPartial:
		return "incomplete"
	case FitVerse:
		return "verse"
	case FitPoem:
		return "complete"
	default:
		return "false"
	}
}

func classify(length, verseIndex int) Fit {
	target := Structure[verseIndex]
	switch {
	case length == target && verseIndex == len(Structure)-1:
		return FitPoem
	case length == target:
		return FitVerse
	case length < target:
		return FitPartial
	default:
		return FitNone
	}
}

// #endregion fit

// #region verse

// Verse is a line of analyzed words with a cached metric length.
type Verse struct {
	words  []metrics.Analysis
	length int
	cached bool
}

// NewVerse builds a verse from already analyzed words.
func NewVerse(ws ...metrics.Analysis) *Verse {
	v := &Verse{}
	v.Add(ws...)
	return v
}

// Add appends words and drops the cached length.
func (v *Verse) Add(ws ...metrics.Analysis) {
	v.words = append(v.words, ws...)
	v.cached = false
}

// MetricLength returns the verse's metric syllable count.
func (v *Verse) MetricLength() int {
	if !v.cached {
		v.length = metrics.MetricLength(v.words)
		v.cached = true
	}
	return v.length
}

// MetricLengthWith returns the length the verse would have with extra
// appended, leaving the verse untouched.
func (v *Verse) MetricLengthWith(extra metrics.Analysis) int {
	ws := make([]metrics.Analysis, 0, len(v.words)+1)
	ws = append(ws, v.words...)
	return metrics.MetricLength(append(ws, extra))
}

// Words returns the verse's words as written.
func (v *Verse) Words() []string {
	out := make([]string, len(v.words))
	for i, w := range v.words {
		out[i] = w.Word
	}
	return out
}

func (v *Verse) String() string { return strings.Join(v.Words(), " ") }

// #endregion verse

// #region haiku

// Haiku is a poem under construction, filled one word at a time.
type Haiku struct {
	analyzer metrics.Analyzer
	verses   []*Verse
}

// New returns an empty haiku whose words are measured by analyzer.
func New(analyzer metrics.Analyzer) *Haiku {
	return &Haiku{analyzer: analyzer, verses: []*Verse{NewVerse()}}
}

func (h *Haiku) current() (*Verse, int) {
	i := len(h.verses) - 1
	return h.verses[i], i
}

// open reports whether the current verse still has room.
func (h *Haiku) open() bool {
	v, i := h.current()
	return i < len(Structure) && v.MetricLength() < Structure[i]
}

// Fit tells how word would fit if it were the next word of the poem.
func (h *Haiku) Fit(word string) Fit {
	a, err := h.analyzer.Analyze(word)
	if err != nil {
		return FitNone
	}
	if h.open() {
		v, i := h.current()
		return classify(v.MetricLengthWith(a), i)
	}
	next := len(h.verses)
	if next >= len(Structure) {
		return FitNone
	}
	return classify(NewVerse(a).MetricLength(), next)
}

// ExtendWith appends word to the current verse, or opens a new verse when
// the current one is full.
func (h *Haiku) ExtendWith(word string) error {
	a, err := h.analyzer.Analyze(word)
	if err != nil {
		return err
	}
	if h.open() {
		v, _ := h.current()
		v.Add(a)
		return nil
	}
	h.verses = append(h.verses, NewVerse(a))
	return nil
}

// Valid reports whether the poem has exactly three verses of 5, 7 and 5.
func (h *Haiku) Valid() bool {
	if len(h.verses) != len(Structure) {
		return false
	}
	for i, v := range h.verses {
		if v.MetricLength() != Structure[i] {
			return false
		}
	}
	return true
}

// Verses returns the verses built so far.
func (h *Haiku) Verses() []*Verse { return h.verses }

// Strings renders each verse as a line.
func (h *Haiku) Strings() []string {
	out := make([]string, len(h.verses))
	for i, v := range h.verses {
		out[i] = v.String()
	}
	return out
}

// #endregion haiku
