package model

import "golang.org/x/text/cases"

// Fold returns s in Unicode case folded form, suitable for case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}
