package util

import "golang.org/x/text/unicode/norm"

// Normalize applies NFKC normalization so that visually identical credentials
// compare and validate identically regardless of input method.
func Normalize(s string) string {
	return norm.NFKC.String(s)
}
