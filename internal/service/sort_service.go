package service

import (
	"slices"
)

// SortChars returns the characters of s ordered by code point.
func SortChars(s string) []string {
	runes := []rune(s)
	slices.Sort(runes)

	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
