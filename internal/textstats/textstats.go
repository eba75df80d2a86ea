// Package textstats computes simple character and word statistics.
package textstats

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// CountFeatures computes and returns byte, rune, word, and line counts for the input string.
func CountFeatures(s string) Features {
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: countWords(s),
		Lines: countLines(s),
	}
}

// countWords counts words split on Unicode whitespace.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}

// CharCounts classifies the runes of a string.
// Special is whatever is neither letter, digit nor whitespace.
type CharCounts struct {
	Total         int `json:"total_characters"`
	NonWhitespace int `json:"non_whitespace_characters"`
	Alphabetic    int `json:"alphabetic_characters"`
	Digits        int `json:"digit_characters"`
	Special       int `json:"special_characters"`
}

// CountCharacters classifies every rune of s.
func CountCharacters(s string) CharCounts {
	var c CharCounts
	spaces := 0
	for _, r := range s {
		c.Total++
		switch {
		case unicode.IsSpace(r):
			spaces++
		case unicode.IsLetter(r):
			c.Alphabetic++
		case unicode.IsDigit(r):
			c.Digits++
		}
	}
	c.NonWhitespace = c.Total - spaces
	c.Special = c.Total - c.Alphabetic - c.Digits - spaces
	return c
}
