package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CapitalizeSentence upper-cases the first letter of s.
func CapitalizeSentence(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// CleanToValidUTF8 strips invalid UTF-8 sequences and NUL bytes so the text
// can be stored in a postgres text column.
func CleanToValidUTF8(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}

// CollapseWhitespace trims s and folds internal whitespace runs to single
// spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most max runes, appending an ellipsis when it
// was cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// ContainsString reports whether list contains target.
func ContainsString(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}
