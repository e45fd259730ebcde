package level

import (
	"regexp"
	"sort"
	"strings"
)

const maxKeyLength = 64

var (
	keyPattern     = regexp.MustCompile(`^[A-Z0-9А-ЯЁ]+$`)
	levelIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// NormalizeKey brings a submitted key into the form keys are stored and compared in.
func NormalizeKey(text string) string {
	return strings.ToUpper(strings.TrimSpace(text))
}

// IsKeyValid reports whether text is a syntactically valid key.
func IsKeyValid(text string) bool {
	key := NormalizeKey(text)
	if key == "" || len([]rune(key)) > maxKeyLength {
		return false
	}
	return keyPattern.MatchString(key)
}

// IsLevelIDValid reports whether a level name id may be used.
func IsLevelIDValid(id string) bool {
	return levelIDPattern.MatchString(id)
}

// KeySet is a set of normalized keys.
type KeySet map[string]struct{}

// NewKeySet builds a set from raw keys.
func NewKeySet(keys ...string) KeySet {
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set[NormalizeKey(k)] = struct{}{}
	}
	return set
}

// Contains reports whether the normalized key is in the set.
func (s KeySet) Contains(key string) bool {
	_, ok := s[NormalizeKey(key)]
	return ok
}

// Equal reports whether both sets hold exactly the same keys.
func (s KeySet) Equal(other KeySet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the keys in lexical order.
func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
