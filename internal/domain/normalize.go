package domain

import "strings"

// NormalizeName folds a person's name to the form uniqueness is checked on:
// lowercased, with every whitespace run collapsed to a single space.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
