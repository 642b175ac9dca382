// Package namefilter screens galaxy names before they go into the shared
// scenario archive.
package namefilter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNameNotAllowed is returned by Check for a rejected name.
var ErrNameNotAllowed = errors.New("galaxy name not allowed")

// Config lists the words and names the archive refuses.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// BannedWords match anywhere in a name, ignoring case and spacing.
	BannedWords []string `yaml:"banned_words"`

	// BannedNames match a whole name, ignoring case and spacing.
	BannedNames []string `yaml:"banned_names"`

	// MaxLength caps the name length in runes. 0 means no cap.
	MaxLength int `yaml:"max_length"`
}

// Filter checks names against a Config. A nil *Filter allows everything.
type Filter struct {
	bannedWords []string
	bannedNames []string
	maxLength   int
}

// New creates a Filter, or returns nil when cfg is nil or disabled.
func New(cfg *Config) *Filter {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	f := &Filter{maxLength: cfg.MaxLength}
	for _, w := range cfg.BannedWords {
		if w = normalize(w); w != "" {
			f.bannedWords = append(f.bannedWords, w)
		}
	}
	for _, n := range cfg.BannedNames {
		if n = normalize(n); n != "" {
			f.bannedNames = append(f.bannedNames, n)
		}
	}
	return f
}

// Check returns nil if name may be archived.
func (f *Filter) Check(name string) error {
	if f == nil {
		return nil
	}
	if f.maxLength > 0 && len([]rune(name)) > f.maxLength {
		return fmt.Errorf("%w: longer than %d characters", ErrNameNotAllowed, f.maxLength)
	}

	n := normalize(name)
	for _, banned := range f.bannedNames {
		if n == banned {
			return fmt.Errorf("%w: %q is reserved", ErrNameNotAllowed, name)
		}
	}
	for _, word := range f.bannedWords {
		if strings.Contains(n, word) {
			return fmt.Errorf("%w: contains a blocked word", ErrNameNotAllowed)
		}
	}
	return nil
}

// normalize lowercases s and collapses runs of whitespace, so "Bad  Word"
// and "bad word" compare equal.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
