package entity

import (
	"strings"
	"unicode"
)

// noteGlyphs are the bullet and dash runes stripped from both ends of a note.
const noteGlyphs = "•·‣▪◦●-–—"

// SanitizeNotes cleans a free-text notes list: non-strings are dropped, every
// string is trimmed of whitespace and bullet/dash glyphs, empties are dropped.
// Order is preserved and the result is never nil.
func SanitizeNotes(items []any) []string {
	clean := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if t := trimNote(s); t != "" {
			clean = append(clean, t)
		}
	}
	return clean
}

// SanitizeStrings is SanitizeNotes for an already typed list.
func SanitizeStrings(items []string) []string {
	clean := make([]string, 0, len(items))
	for _, s := range items {
		if t := trimNote(s); t != "" {
			clean = append(clean, t)
		}
	}
	return clean
}

func trimNote(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return isSpace(r) || strings.ContainsRune(noteGlyphs, r)
	})
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\u200b' || r == '\ufeff'
}
