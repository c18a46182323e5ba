package config

import (
	"fmt"
	"maps"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Locale keys.
const (
	WelcomeMessage        = "WELCOME_MESSAGE"
	AvailableCommands     = "AVAILABLE_COMMANDS"
	ErrMalformedArguments = "ERR_MALFORMED_ARGUMENTS"
	ErrUnknownCommand     = "ERR_UNKNOWN_COMMAND"
	ErrImpossibleHaiku    = "ERR_IMPOSSIBLE_HAIKU"
	ErrNoTransitions      = "ERR_NO_TRANSITIONS"
	ErrNoSwords           = "ERR_NO_SWORDS"
)

// Locales maps a message key to the text the bot answers with.
type Locales map[string]string

// Get returns the text for key, or key itself when it is not translated.
func (l Locales) Get(key string) string {
	if s, ok := l[key]; ok && s != "" {
		return s
	}
	return key
}

// DefaultLocales returns the built-in English texts.
func DefaultLocales() Locales {
	return Locales{
		WelcomeMessage:        "Hello! I am Marcos the Bot. Talk to me and I will generate random messages based on the things you say.",
		AvailableCommands:     "Available commands",
		ErrMalformedArguments: "The arguments provided are not correct",
		ErrUnknownCommand:     "I don't understand that command",
		ErrImpossibleHaiku:    "I am not feeling inspired for poetry today, sorry :(",
		ErrNoTransitions:      "I have never seen that word",
		ErrNoSwords:           "There are no words in that set",
	}
}

// localesFile is the on-disk shape:
//
//	[locales]
//	WELCOME_MESSAGE = "Hola"
type localesFile struct {
	Locales map[string]string `toml:"locales"`
}

// LoadLocales reads a TOML locales file and merges it over the defaults.
func LoadLocales(path string) (Locales, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	var file localesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse locales %s: %w", path, err)
	}
	out := DefaultLocales()
	maps.Copy(out, file.Locales)
	return out, nil
}

// SaveLocales writes l as a TOML locales file.
func SaveLocales(path string, l Locales) error {
	data, err := toml.Marshal(localesFile{Locales: l})
	if err != nil {
		return fmt.Errorf("marshal locales: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
