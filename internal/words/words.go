package words

import (
	"errors"
	"fmt"
	"strings"
)

// #region kinds

type kind uint8

const (
	regular kind = iota
	initial
	terminal
)

const (
	initialKey  = "INIT"
	terminalKey = "TERM"
	escape      = "_"
)

// ErrEmptyKey is returned when parsing an empty serialized word.
var ErrEmptyKey = errors.New("empty word key")

// #endregion kinds

// #region word

// Word is a chain state: a normalized token, or one of the two phrase
// boundary sentinels. The zero value is the empty regular word.
type Word struct {
	kind kind
	text string
}

// New returns a regular word holding the lower-cased token.
func New(text string) Word {
	return Word{kind: regular, text: strings.ToLower(text)}
}

// Initial marks the beginning of a phrase.
func Initial() Word { return Word{kind: initial} }

// Terminal marks the end of a phrase.
func Terminal() Word { return Word{kind: terminal} }

func (w Word) IsInitial() bool  { return w.kind == initial }
func (w Word) IsTerminal() bool { return w.kind == terminal }
func (w Word) IsSentinel() bool { return w.kind != regular }

// Text returns the token of a regular word and "" for sentinels.
func (w Word) Text() string {
	if w.kind != regular {
		return ""
	}
	return w.text
}

// String is the printable form; sentinels show as <start> and <end>.
func (w Word) String() string {
	switch w.kind {
	case initial:
		return "<start>"
	case terminal:
		return "<end>"
	default:
		return w.text
	}
}

// #endregion word

// #region serialization

// Key returns the canonical storage form of the word.
// Regular tokens that would read back as a sentinel get an extra leading
// underscore.
func (w Word) Key() string {
	switch w.kind {
	case initial:
		return initialKey
	case terminal:
		return terminalKey
	}
	if reserved(w.text) {
		return escape + w.text
	}
	return w.text
}

// Parse is the inverse of Key.
func Parse(key string) (Word, error) {
	switch {
	case key == "":
		return Word{}, ErrEmptyKey
	case key == initialKey:
		return Initial(), nil
	case key == terminalKey:
		return Terminal(), nil
	case strings.HasPrefix(key, escape) && reserved(key[len(escape):]):
		return Word{kind: regular, text: key[len(escape):]}, nil
	}
	return Word{kind: regular, text: key}, nil
}

// MustParse is Parse for keys known to be valid.
func MustParse(key string) Word {
	w, err := Parse(key)
	if err != nil {
		panic(fmt.Sprintf("words: parse %q: %v", key, err))
	}
	return w
}

func reserved(text string) bool {
	bare := strings.TrimLeft(text, escape)
	return bare == initialKey || bare == terminalKey
}

// #endregion serialization

// #region phrase-codec

// Tokenize splits text on whitespace and brackets the words with the
// Initial and Terminal sentinels.
func Tokenize(text string) []Word {
	fields := strings.Fields(text)
	out := make([]Word, 0, len(fields)+2)
	out = append(out, Initial())
	for _, f := range fields {
		out = append(out, New(f))
	}
	return append(out, Terminal())
}

// Texts returns the tokens of the regular words, skipping sentinels.
func Texts(ws []Word) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		if !w.IsSentinel() {
			out = append(out, w.text)
		}
	}
	return out
}

// Render joins the regular words with single spaces.
func Render(ws []Word) string {
	return strings.Join(Texts(ws), " ")
}

// #endregion phrase-codec
